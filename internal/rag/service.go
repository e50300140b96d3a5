package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/josinaldojr/news-chat-rag/internal/metrics"
)

// Temperature used for every generation call.
const Temperature float32 = 0.7

type Service struct {
	cache      *EmbeddingCache
	embeddings EmbeddingsClient
	generator  AnswerGenerator
	topK       int
	outlet     string
	logger     *zap.Logger
}

// Options configura o Service; zero values usam os defaults.
type Options struct {
	TopK   int
	Outlet string
}

func NewService(cache *EmbeddingCache, embeddings EmbeddingsClient, generator AnswerGenerator, opts Options, logger *zap.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Outlet == "" {
		opts.Outlet = "Kompas.id"
	}
	return &Service{
		cache:      cache,
		embeddings: embeddings,
		generator:  generator,
		topK:       opts.TopK,
		outlet:     opts.Outlet,
		logger:     logger,
	}
}

// Answer runs one chat turn: retrieve the top documents for the latest
// message and ask the generator to answer grounded on them. The generated
// text, citation tag included, is returned verbatim.
func (s *Service) Answer(ctx context.Context, history []Message) (string, error) {
	articles, err := s.cache.Ensure(ctx)
	if err != nil {
		return "", fmt.Errorf("ensure corpus embeddings: %w", err)
	}

	question := LatestQuestion(history)

	// Sem vetor da pergunta o ranking cai na ordem do corpus.
	queryVec, err := s.embeddings.Embed(ctx, question)
	if err != nil {
		metrics.QueryEmbeddingFallbacksTotal.Inc()
		s.logger.Warn("Query embedding unavailable, falling back to corpus order",
			zap.Int("question_len", len(question)),
			zap.Error(err),
		)
		queryVec = nil
	}

	top := Rank(queryVec, articles, s.topK)
	newsContext := AssembleContext(top)
	system := BuildSystemInstruction(s.outlet, newsContext)

	s.logger.Debug("Context assembled",
		zap.Ints("positions", Positions(top)),
		zap.Int("context_len", len(newsContext)),
	)

	answer, err := s.generator.Generate(ctx, system, history, Temperature)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return answer, nil
}

// Warm triggers the corpus embedding pass without serving a request.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.cache.Ensure(ctx); err != nil {
		return fmt.Errorf("warm corpus embeddings: %w", err)
	}
	return nil
}

// CorpusReady reports whether the embedding cache is populated.
func (s *Service) CorpusReady() bool {
	return s.cache.Ready()
}
