package metrics

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

// Handler exposes metrics over HTTP.
type Handler struct {
	metrics *Metrics
}

// NewHandler creates a metrics handler.
func NewHandler(m *Metrics) *Handler {
	return &Handler{metrics: m}
}

// RegisterRoutes registers the metrics routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /metrics", h.handlePrometheus)
	mux.HandleFunc("GET /v1/analytics/queries", h.handleTopQueries)
}

func (h *Handler) handlePrometheus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	h.metrics.WritePrometheus(w)
}

func (h *Handler) handleTopQueries(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			apperrors.WriteError(w, apperrors.ValidationError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	queries, err := h.metrics.TopQueries(r.Context(), limit)
	if err != nil {
		apperrors.WriteError(w, apperrors.InternalError("failed to load query analytics", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queries":   queries,
		"uptime_ms": h.metrics.Uptime().Milliseconds(),
	})
}
