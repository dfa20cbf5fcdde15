package summarizer

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

// Handler provides the HTTP endpoint for summarization.
type Handler struct {
	svc *Summarizer
}

// NewHandler creates a summarizer handler.
func NewHandler(svc *Summarizer) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the summarize route.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/summarize", h.handleSummarize)
}

// SummarizeRequest is the summarize request body.
type SummarizeRequest struct {
	Text      string `json:"text"`
	Query     string `json:"query,omitempty"`
	Sentences int    `json:"sentences,omitempty"`
}

// SummarizeResponse is the summarize response body.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

func (h *Handler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid request body"))
		return
	}
	if req.Text == "" {
		apperrors.WriteError(w, apperrors.ValidationError("text is required"))
		return
	}
	if req.Sentences <= 0 {
		req.Sentences = DefaultSentences
	}

	summary, err := h.svc.Summarize(r.Context(), req.Text, req.Sentences, req.Query)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SummarizeResponse{Summary: summary})
}
