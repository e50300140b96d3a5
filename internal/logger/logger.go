package logger

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "news-chat-rag"

var (
	productionEnvs  = []string{"prod", "production"}
	developmentEnvs = []string{"local", "dev", "development"}
)

// KnownEnv reports whether env is an ENV value NewLogger accepts.
func KnownEnv(env string) bool {
	return slices.Contains(productionEnvs, env) || slices.Contains(developmentEnvs, env)
}

// NewLogger builds the API logger from ENV and LOG_LEVEL.
// Produção: JSON com timestamp ISO8601 e o campo service; local/dev: console
// colorido. level vazio mantém o default do ambiente (info / debug).
func NewLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch {
	case slices.Contains(productionEnvs, env):
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.InitialFields = map[string]any{"service": serviceName}
	case slices.Contains(developmentEnvs, env):
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown ENV %q (use one of %v or %v)", env, developmentEnvs, productionEnvs)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
