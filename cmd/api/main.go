package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/josinaldojr/news-chat-rag/internal/config"
	"github.com/josinaldojr/news-chat-rag/internal/corpus"
	"github.com/josinaldojr/news-chat-rag/internal/db"
	apphttp "github.com/josinaldojr/news-chat-rag/internal/http"
	"github.com/josinaldojr/news-chat-rag/internal/llm"
	logpkg "github.com/josinaldojr/news-chat-rag/internal/logger"
	"github.com/josinaldojr/news-chat-rag/internal/metrics"
	"github.com/josinaldojr/news-chat-rag/internal/rag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	src, closeSrc, err := openCorpusSource(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open corpus source", zap.String("source", cfg.CorpusSource), zap.Error(err))
	}
	docs, err := corpus.Load(ctx, src, cfg.CorpusLang, logger)
	closeSrc()
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}

	gemini, err := llm.NewGeminiClient(ctx, llm.Config{
		APIKey:         cfg.GoogleAPIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		EmbeddingDim:   cfg.EmbeddingDim,
		ChatModel:      cfg.ChatModel,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("Failed to init Gemini client", zap.Error(err))
	}

	cache := rag.NewEmbeddingCache(docs, gemini, cfg.EmbedConcurrency, logger)
	ragService := rag.NewService(cache, gemini, gemini, rag.Options{
		TopK:   cfg.TopK,
		Outlet: cfg.Outlet,
	}, logger)

	if cfg.WarmCache {
		go func() {
			if err := ragService.Warm(ctx); err != nil {
				logger.Warn("Corpus warm-up interrupted", zap.Error(err))
			}
		}()
	}

	h := apphttp.NewHandler(ragService, cfg.RequestTimeout)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apphttp.NewRouter(h, cfg.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("corpus_source", cfg.CorpusSource),
			zap.Int("documents", len(docs)),
			zap.String("chat_model", cfg.ChatModel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// openCorpusSource returns the configured source and a close func. The
// corpus is read once at startup, so the pool is closed right after.
func openCorpusSource(ctx context.Context, cfg *config.Config) (corpus.Source, func(), error) {
	switch cfg.CorpusSource {
	case config.CorpusSourcePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return rag.NewPgRepository(pool), pool.Close, nil
	default:
		return corpus.NewFileSource(cfg.CorpusPath), func() {}, nil
	}
}
