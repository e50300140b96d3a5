// Package corpus loads the fixed news corpus the chat answers from, and holds
// the text extraction helpers used to build it.
package corpus

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/josinaldojr/news-chat-rag/internal/rag"
)

// Source lists the corpus documents in corpus order.
type Source interface {
	ListDocuments(ctx context.Context) ([]rag.Document, error)
}

// Load reads the corpus from src once, renumbers documents 1..n in source
// order and trims the fields. Documents with empty text or whose detected
// language differs from lang are kept and only reported.
func Load(ctx context.Context, src Source, lang string, logger *zap.Logger) ([]rag.Document, error) {
	docs, err := src.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, rag.ErrEmptyCorpus
	}

	out := make([]rag.Document, len(docs))
	for i, d := range docs {
		d.ID = i + 1
		d.Title = strings.TrimSpace(d.Title)
		d.URL = strings.TrimSpace(d.URL)
		d.FullText = strings.TrimSpace(sanitizeUTF8(d.FullText))

		if d.FullText == "" {
			// fica no corpus; o cache não gera vetor e ele só aparece pela ordem do corpus
			logger.Warn("Corpus document has empty full_text",
				zap.Int("id", d.ID),
				zap.String("title", d.Title),
			)
		} else if lang != "" {
			if got := DetectLanguage(d.FullText); got != "" && got != lang {
				logger.Warn("Corpus document language differs from corpus language",
					zap.Int("id", d.ID),
					zap.String("title", d.Title),
					zap.String("expected", lang),
					zap.String("detected", got),
				)
			}
		}

		out[i] = d
	}

	logger.Info("Corpus loaded", zap.Int("documents", len(out)))
	return out, nil
}
