package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/josinaldojr/news-chat-rag/internal/metrics"
)

const buildKey = "corpus"

// EmbeddingCache guarda o embedding de cada documento do corpus durante toda
// a vida do processo. O cálculo roda uma única vez, na primeira chamada a
// Ensure; chamadas concorrentes esperam o mesmo cálculo.
type EmbeddingCache struct {
	docs        []Document
	embedder    EmbeddingsClient
	concurrency int
	logger      *zap.Logger

	group singleflight.Group

	mu       sync.RWMutex
	ready    bool
	embedded []EmbeddedDocument
}

// NewEmbeddingCache creates the cache for docs. concurrency <= 0 means one
// in-flight embedding call per document.
func NewEmbeddingCache(docs []Document, embedder EmbeddingsClient, concurrency int, logger *zap.Logger) *EmbeddingCache {
	return &EmbeddingCache{
		docs:        docs,
		embedder:    embedder,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Ensure returns the embedded corpus, computing it on first use.
// ctx only bounds how long the caller waits: the build itself runs detached
// so an abandoned request does not leave the cache half built.
func (c *EmbeddingCache) Ensure(ctx context.Context) ([]EmbeddedDocument, error) {
	if docs, ok := c.cached(); ok {
		return docs, nil
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(buildKey, func() (any, error) {
		if docs, ok := c.cached(); ok {
			return docs, nil
		}
		docs := c.build(buildCtx)

		c.mu.Lock()
		c.embedded = docs
		c.ready = true
		c.mu.Unlock()

		return docs, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]EmbeddedDocument), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready reports whether the corpus embeddings are already in memory.
func (c *EmbeddingCache) Ready() bool {
	_, ok := c.cached()
	return ok
}

// Len returns the corpus size.
func (c *EmbeddingCache) Len() int {
	return len(c.docs)
}

func (c *EmbeddingCache) cached() ([]EmbeddedDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embedded, c.ready
}

// build faz o fan-out (uma chamada por documento) e espera todas.
// Falha de um documento só zera o vetor dele.
func (c *EmbeddingCache) build(ctx context.Context) []EmbeddedDocument {
	start := time.Now()
	metrics.CorpusCacheBuildsTotal.Inc()

	out := make([]EmbeddedDocument, len(c.docs))

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for i, doc := range c.docs {
		g.Go(func() error {
			if strings.TrimSpace(doc.FullText) == "" {
				c.logger.Warn("Corpus document has no text to embed",
					zap.Int("id", doc.ID),
					zap.String("title", doc.Title),
				)
				metrics.CorpusDocumentsEmbedded.WithLabelValues("failed").Inc()
				out[i] = EmbeddedDocument{Document: doc, Embedding: []float32{}}
				return nil
			}

			vec, err := c.embedder.Embed(ctx, doc.FullText)
			if err != nil {
				c.logger.Warn("Failed to embed corpus document",
					zap.Int("id", doc.ID),
					zap.String("title", doc.Title),
					zap.Error(err),
				)
				metrics.CorpusDocumentsEmbedded.WithLabelValues("failed").Inc()
				vec = []float32{}
			} else {
				metrics.CorpusDocumentsEmbedded.WithLabelValues("ok").Inc()
			}
			out[i] = EmbeddedDocument{Document: doc, Embedding: vec}
			return nil
		})
	}
	_ = g.Wait()

	duration := time.Since(start)
	metrics.CorpusCacheBuildDuration.Observe(duration.Seconds())

	failed := 0
	for _, d := range out {
		if len(d.Embedding) == 0 {
			failed++
		}
	}
	c.logger.Info("Corpus embeddings ready",
		zap.Int("documents", len(out)),
		zap.Int("failed", failed),
		zap.Duration("duration", duration),
	)

	return out
}
