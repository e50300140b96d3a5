package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/josinaldojr/news-chat-rag/internal/metrics"
)

// NewRouter wires the routes. CORS wraps the router so preflight requests
// are answered before route matching.
func NewRouter(h *Handler, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger(logger), metrics.Middleware)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)
	r.HandleFunc("/api/chat", h.Chat).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return corsMiddleware(allowedOrigins)(r)
}
