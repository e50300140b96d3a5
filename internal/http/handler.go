package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/josinaldojr/news-chat-rag/internal/logger"
	"github.com/josinaldojr/news-chat-rag/internal/rag"
)

const maxBodyBytes = 1 << 20

// ChatService is what the handler needs from rag.Service.
type ChatService interface {
	Answer(ctx context.Context, history []rag.Message) (string, error)
	CorpusReady() bool
}

type Handler struct {
	chat    ChatService
	timeout time.Duration
}

// NewHandler creates the HTTP handler. timeout <= 0 disables the per-request deadline.
func NewHandler(chat ChatService, timeout time.Duration) *Handler {
	return &Handler{chat: chat, timeout: timeout}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports whether the corpus embeddings are already in memory.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := http.StatusOK
	if !h.chat.CorpusReady() {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]bool{"corpus_ready": status == http.StatusOK})
}

// Chat handles POST /api/chat: {messages:[{role, content}]} -> text/plain answer.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req rag.ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	answer, err := h.chat.Answer(ctx, req.Messages)
	if err != nil {
		status := statusFor(err)
		log.Error("Chat request failed",
			zap.Int("status", status),
			zap.Int("messages", len(req.Messages)),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(answer))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, rag.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
