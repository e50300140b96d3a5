package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/josinaldojr/news-chat-rag/internal/metrics"
	"github.com/josinaldojr/news-chat-rag/internal/rag"
)

// Config holds the Gemini settings.
type Config struct {
	APIKey         string
	EmbeddingModel string
	EmbeddingDim   int
	ChatModel      string
	Logger         *zap.Logger
}

type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
	embedDim       int
	chatModel      string
	logger         *zap.Logger
}

func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GeminiClient{
		client:         c,
		embeddingModel: cfg.EmbeddingModel,
		embedDim:       cfg.EmbeddingDim,
		chatModel:      cfg.ChatModel,
		logger:         logger,
	}, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	clean := normalizeWhitespace(text)
	if clean == "" {
		return nil, fmt.Errorf("empty text for embedding")
	}

	start := time.Now()
	resp, err := g.client.Models.EmbedContent(
		ctx,
		g.embeddingModel,
		genai.Text(clean),
		&genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(g.embedDim)),
		},
	)
	metrics.EmbeddingRequestDuration.WithLabelValues(g.embeddingModel).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(g.embeddingModel, "error").Inc()
		return nil, fmt.Errorf("gemini embed error: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(g.embeddingModel, "error").Inc()
		return nil, fmt.Errorf("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) != g.embedDim {
		metrics.EmbeddingRequestsTotal.WithLabelValues(g.embeddingModel, "error").Inc()
		return nil, fmt.Errorf("unexpected embedding size %d (expected %d)", len(values), g.embedDim)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(g.embeddingModel, "success").Inc()

	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}

// Generate sends the system instruction and the conversation to the chat
// model and returns its text unchanged.
func (g *GeminiClient) Generate(
	ctx context.Context,
	systemInstruction string,
	history []rag.Message,
	temperature float32,
) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
	}

	contents := toContents(history)
	if len(contents) == 0 {
		// o Gemini rejeita conversa vazia
		contents = genai.Text(" ")
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.chatModel, contents, cfg)
	duration := time.Since(start)
	metrics.GenerationRequestDuration.WithLabelValues(g.chatModel).Observe(duration.Seconds())

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.chatModel, "error").Inc()
		return "", fmt.Errorf("gemini generateContent error: %w", err)
	}
	if resp == nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.chatModel, "error").Inc()
		return "", fmt.Errorf("empty response from gemini")
	}

	txt := resp.Text()
	if strings.TrimSpace(txt) == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(g.chatModel, "error").Inc()
		return "", fmt.Errorf("model returned empty text")
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.chatModel, "success").Inc()
	g.logger.Debug("Answer generated",
		zap.String("model", g.chatModel),
		zap.Int("messages", len(contents)),
		zap.Duration("duration", duration),
		zap.Int("answer_len", len(txt)),
	)

	return txt, nil
}

// toContents maps the chat history to Gemini turns. System messages are
// dropped (the instruction is the system turn) and so are empty ones.
func toContents(history []rag.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		var role genai.Role
		switch m.Role {
		case rag.RoleUser:
			role = genai.RoleUser
		case rag.RoleAssistant:
			role = genai.RoleModel
		default:
			continue
		}

		text := m.Content.Flatten()
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, genai.NewContentFromText(text, role))
	}
	return out
}

// -------- helpers --------

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ rag.EmbeddingsClient = (*GeminiClient)(nil)
var _ rag.AnswerGenerator = (*GeminiClient)(nil)
