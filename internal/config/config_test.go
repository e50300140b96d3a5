package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ENV", "PORT", "LOG_LEVEL", "GOOGLE_API_KEY", "GEMINI_API_KEY",
		"EMBEDDING_MODEL", "EMBEDDING_DIM", "CHAT_MODEL",
		"CORPUS_SOURCE", "CORPUS_PATH", "CORPUS_LANG", "DATABASE_URL",
		"TOP_K", "EMBED_CONCURRENCY", "REQUEST_TIMEOUT", "WARM_CACHE",
		"NEWS_OUTLET", "ALLOWED_ORIGINS", "CONFIG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "key", cfg.GoogleAPIKey)
	assert.Equal(t, "models/text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.EmbeddingDim)
	assert.Equal(t, "gemini-2.0-flash", cfg.ChatModel)
	assert.Equal(t, CorpusSourceFile, cfg.CorpusSource)
	assert.Equal(t, filepath.Join("data", "news.json"), cfg.CorpusPath)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 0, cfg.EmbedConcurrency)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.False(t, cfg.WarmCache)
	assert.Equal(t, "Kompas.id", cfg.Outlet)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.AllowedOrigins)
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.GoogleAPIKey)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorContains(t, err, "GOOGLE_API_KEY")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("PORT", "9090")
	t.Setenv("TOP_K", "2")
	t.Setenv("EMBED_CONCURRENCY", "4")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("WARM_CACHE", "true")
	t.Setenv("CORPUS_SOURCE", "postgres")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2, cfg.TopK)
	assert.Equal(t, 4, cfg.EmbedConcurrency)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.WarmCache)
	assert.Equal(t, CorpusSourcePostgres, cfg.CorpusSource)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("NEWS_DIR", "/srv/news")

	path := filepath.Join(t.TempDir(), "rag.yaml")
	data := []byte(`
port: "7070"
corpus_path: ${NEWS_DIR}/kompas.json
chat_model: ${CHAT_MODEL_OVERRIDE:-gemini-2.5-flash}
request_timeout: 20s
allowed_origins:
  - https://chat.example
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "/srv/news/kompas.json", cfg.CorpusPath)
	assert.Equal(t, "gemini-2.5-flash", cfg.ChatModel)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://chat.example"}, cfg.AllowedOrigins)
	// untouched by the file
	assert.Equal(t, "key", cfg.GoogleAPIKey)
	assert.Equal(t, 3, cfg.TopK)
}

func TestLoad_MalformedEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"TOP_K", "abc"},
		{"EMBEDDING_DIM", "768d"},
		{"EMBED_CONCURRENCY", "many"},
		{"REQUEST_TIMEOUT", "5"},
		{"WARM_CACHE", "yes please"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GOOGLE_API_KEY", "key")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_TopKAboveMaxFromFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")

	path := filepath.Join(t.TempDir(), "rag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("top_k: 10\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorContains(t, err, "top_k")
}

func TestLoad_YAMLMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:          "local",
			Port:         "8080",
			GoogleAPIKey: "key",
			TopK:         MaxTopK,
			CorpusSource: CorpusSourceFile,
			CorpusPath:   "news.json",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown env", func(c *Config) { c.Env = "staging" }, "env"},
		{"bad port", func(c *Config) { c.Port = "http" }, "port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "port"},
		{"unknown source", func(c *Config) { c.CorpusSource = "s3" }, "corpus_source"},
		{"file without path", func(c *Config) { c.CorpusPath = "" }, "corpus_path"},
		{"postgres without url", func(c *Config) {
			c.CorpusSource = CorpusSourcePostgres
			c.DatabaseURL = ""
		}, "database_url"},
		{"top_k above max", func(c *Config) { c.TopK = MaxTopK + 1 }, "top_k"},
		{"top_k zero", func(c *Config) { c.TopK = 0 }, "top_k"},
		{"negative concurrency", func(c *Config) { c.EmbedConcurrency = -1 }, "embed_concurrency"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
