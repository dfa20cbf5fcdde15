package search

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

// Handler provides HTTP handlers for search.
type Handler struct {
	svc *Service
}

// NewHandler creates a new search handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers search routes. Both endpoints accept GET with
// query parameters and POST with a JSON body.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/search", h.handleSemantic)
	mux.HandleFunc("POST /v1/search", h.handleSemantic)
	mux.HandleFunc("GET /v1/search/keyword", h.handleKeyword)
	mux.HandleFunc("POST /v1/search/keyword", h.handleKeyword)
}

func (h *Handler) handleSemantic(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	resp, err := h.svc.SemanticSearch(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, resp)
}

func (h *Handler) handleKeyword(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	resp, err := h.svc.KeywordSearch(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, resp)
}

func parseRequest(r *http.Request) (Request, error) {
	var req Request

	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, apperrors.InvalidRequestError("invalid request body")
		}
		return req, nil
	}

	q := r.URL.Query()
	req.Query = q.Get("q")
	req.Source = q.Get("source")
	req.Section = q.Get("section")
	if sizeStr := q.Get("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 1 {
			return req, apperrors.ValidationError("size must be a positive integer")
		}
		req.Size = size
	}

	return req, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
