// Package web provides the browser UI using templ components and HTMX.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sarkarisearch/sarkari-search/internal/bus"
	"github.com/sarkarisearch/sarkari-search/internal/metrics"
	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
	"github.com/sarkarisearch/sarkari-search/internal/search"
)

// Searcher is the slice of the search service the UI needs.
type Searcher interface {
	SemanticSearch(ctx context.Context, req search.Request) (*search.Response, error)
	KeywordSearch(ctx context.Context, req search.Request) (*search.Response, error)
}

// Stats provides query analytics for the stats page.
type Stats interface {
	TopQueries(ctx context.Context, limit int) ([]metrics.QueryCount, error)
}

// Handler handles all web UI requests.
type Handler struct {
	search Searcher
	stats  Stats
	bus    bus.Bus
	log    *logger.Logger
}

// NewHandler creates a web handler. stats and eventBus may be nil; the
// corresponding pages degrade gracefully.
func NewHandler(searcher Searcher, stats Stats, eventBus bus.Bus, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		search: searcher,
		stats:  stats,
		bus:    eventBus,
		log:    log,
	}
}

// RegisterRoutes registers all web routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("GET /", h.handleSearchPage)
	mux.HandleFunc("GET /stats", h.handleStatsPage)

	// HTMX fragments
	mux.HandleFunc("POST /search", h.handleSearch)
	mux.HandleFunc("GET /stats/refresh", h.handleStatsRefresh)

	// SSE activity stream
	mux.HandleFunc("GET /events", h.handleEvents)
}

// handleSearchPage renders the search page.
func (h *Handler) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	data := SearchPageData{
		Strategy: "semantic",
		Sources:  knownSources,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := SearchPage(data).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render search page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleSearch handles search requests from the form and renders the
// results fragment.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.renderResults(w, r, SearchPageData{Error: "invalid form data", Sources: knownSources})
		return
	}

	data := SearchPageData{
		Query:    strings.TrimSpace(r.FormValue("query")),
		Strategy: r.FormValue("strategy"),
		Source:   r.FormValue("source"),
		Sources:  knownSources,
	}
	if data.Strategy != "keyword" {
		data.Strategy = "semantic"
	}

	size := 0
	if v := r.FormValue("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}

	if data.Query == "" {
		h.renderResults(w, r, data)
		return
	}

	req := search.Request{
		Query:  data.Query,
		Size:   size,
		Source: data.Source,
	}

	var resp *search.Response
	var err error
	if data.Strategy == "keyword" {
		resp, err = h.search.KeywordSearch(ctx, req)
	} else {
		resp, err = h.search.SemanticSearch(ctx, req)
	}
	if err != nil {
		data.Error = userMessage(err)
		h.renderResults(w, r, data)
		return
	}

	data.Results = resp.Results
	data.Total = resp.Total
	data.TookMs = resp.TookMs
	h.renderResults(w, r, data)
}

// renderResults renders just the results section for HTMX.
func (h *Handler) renderResults(w http.ResponseWriter, r *http.Request, data SearchPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := SearchResults(data).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render search results", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleStatsPage renders the stats page.
func (h *Handler) handleStatsPage(w http.ResponseWriter, r *http.Request) {
	data := h.getStatsData(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := StatsPage(data).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render stats page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleStatsRefresh renders the stats content fragment for HTMX polling.
func (h *Handler) handleStatsRefresh(w http.ResponseWriter, r *http.Request) {
	data := h.getStatsData(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := StatsContent(data).Render(r.Context(), w); err != nil {
		h.log.Error("failed to render stats content", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) getStatsData(ctx context.Context) StatsPageData {
	data := StatsPageData{}
	if h.stats == nil {
		return data
	}

	queries, err := h.stats.TopQueries(ctx, 10)
	if err != nil {
		h.log.Warn("failed to load top queries", "error", err)
		data.Error = "query analytics unavailable"
		return data
	}
	data.TopQueries = queries
	return data
}

// userMessage maps an error to a message safe to show in the UI.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.CodeValidation {
		return appErr.Message
	}
	return "search failed, please try again"
}
