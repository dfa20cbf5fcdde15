// Package search provides semantic and keyword retrieval over the indexed
// document collection.
package search

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sarkarisearch/sarkari-search/internal/bus"
	"github.com/sarkarisearch/sarkari-search/internal/embedding"
	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/security"
	"github.com/sarkarisearch/sarkari-search/internal/qdrant"
)

// Store is the slice of the vector store the search service depends on.
type Store interface {
	DenseSearch(ctx context.Context, collection string, req qdrant.SearchRequest) ([]qdrant.SearchResult, error)
	ScrollMatching(ctx context.Context, collection string, filter *qdrant.SearchFilter, limit int) ([]qdrant.SearchResult, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
}

// Config configures the search service.
type Config struct {
	// Collection is the document collection to search (without prefix).
	Collection string

	// DefaultSize is the number of results returned when the request does
	// not specify one.
	DefaultSize int

	// KeywordCandidates caps how many full-text matches are pulled for
	// client-side keyword scoring.
	KeywordCandidates int

	// DedupeByDocument keeps only each document's best-scoring chunk.
	DedupeByDocument bool
}

// DefaultConfig returns search defaults for local development.
func DefaultConfig() Config {
	return Config{
		Collection:        "government_documents",
		DefaultSize:       10,
		KeywordCandidates: 200,
		DedupeByDocument:  true,
	}
}

// Recorder receives search outcomes for analytics.
type Recorder interface {
	RecordSearch(ctx context.Context, strategy, query string, latencyMs int64, results int)
	RecordSearchError(code string)
}

// Service runs the two retrieval strategies against the vector store.
type Service struct {
	embedder embedding.Embedder
	store    Store
	log      *logger.Logger
	cfg      Config

	recorder Recorder
	bus      bus.Bus
}

// NewService creates a search service.
func NewService(embedder embedding.Embedder, store Store, log *logger.Logger, cfg Config) *Service {
	if cfg.Collection == "" {
		cfg.Collection = DefaultConfig().Collection
	}
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = DefaultConfig().DefaultSize
	}
	if cfg.KeywordCandidates <= 0 {
		cfg.KeywordCandidates = DefaultConfig().KeywordCandidates
	}
	if log == nil {
		log = logger.Default()
	}

	return &Service{
		embedder: embedder,
		store:    store,
		log:      log,
		cfg:      cfg,
	}
}

// SetRecorder wires search analytics. Optional.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetBus wires the event bus for search.performed notifications. Optional.
func (s *Service) SetBus(b bus.Bus) {
	s.bus = b
}

// Request is a search request common to both strategies.
type Request struct {
	// Query is the free-text query.
	Query string `json:"query"`

	// Size is the number of results to return (0 = service default).
	Size int `json:"size,omitempty"`

	// Source restricts results to one agency (rbi, income_tax, caqm).
	Source string `json:"source,omitempty"`

	// Section restricts results to one document section.
	Section string `json:"section,omitempty"`
}

// Result is a single hit.
type Result struct {
	DocID   string  `json:"doc_id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	Source  string  `json:"source"`
	Section string  `json:"section"`
	Date    string  `json:"date,omitempty"`
	Text    string  `json:"text,omitempty"`
	Page    int     `json:"page,omitempty"`
}

// Response is a search response.
type Response struct {
	Query    string   `json:"query"`
	Strategy string   `json:"strategy"`
	Results  []Result `json:"results"`
	Total    int      `json:"total"`
	TookMs   int64    `json:"took_ms"`
}

// SemanticSearch embeds the query and runs a dense vector search.
func (s *Service) SemanticSearch(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := security.ValidateQuery(req.Query); err != nil {
		return nil, err
	}
	size := s.size(req)

	vectors, err := s.embedder.Embed(ctx, []string{req.Query})
	if err != nil {
		appErr := apperrors.EmbeddingError("failed to embed query", err)
		s.recordError(appErr)
		return nil, appErr
	}

	// Over-fetch when deduplicating so enough distinct documents survive
	// the per-document collapse.
	limit := uint64(size)
	if s.cfg.DedupeByDocument {
		limit *= 3
	}

	hits, err := s.store.DenseSearch(ctx, s.cfg.Collection, qdrant.SearchRequest{
		Vector:      vectors[0],
		Limit:       limit,
		Filter:      buildStoreFilter(req),
		WithPayload: true,
	})
	if err != nil {
		appErr := apperrors.SearchBackendError("semantic search failed", err)
		s.recordError(appErr)
		return nil, appErr
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, resultFromHit(h, float64(h.Score)))
	}
	results = s.finalize(results, size)

	took := time.Since(start).Milliseconds()
	s.observe(ctx, "semantic", req.Query, took, len(results))
	s.log.WithQuery(req.Query).Debug("semantic search complete",
		"results", len(results),
		"took_ms", took,
	)

	return &Response{
		Query:    req.Query,
		Strategy: "semantic",
		Results:  results,
		Total:    len(results),
		TookMs:   took,
	}, nil
}

// KeywordSearch gathers full-text candidates from the store and scores them
// by term frequency client-side.
func (s *Service) KeywordSearch(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := security.ValidateQuery(req.Query); err != nil {
		return nil, err
	}
	size := s.size(req)

	terms := tokenize(req.Query)
	if len(terms) == 0 {
		return &Response{
			Query:    req.Query,
			Strategy: "keyword",
			Results:  []Result{},
			TookMs:   time.Since(start).Milliseconds(),
		}, nil
	}

	filter := buildStoreFilter(req)
	if filter == nil {
		filter = &qdrant.SearchFilter{}
	}
	filter.TextContains = req.Query

	hits, err := s.store.ScrollMatching(ctx, s.cfg.Collection, filter, s.cfg.KeywordCandidates)
	if err != nil {
		appErr := apperrors.SearchBackendError("keyword search failed", err)
		s.recordError(appErr)
		return nil, appErr
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		score := termScore(terms, h.Payload.Text, h.Payload.Title)
		if score <= 0 {
			continue
		}
		results = append(results, resultFromHit(h, score))
	}
	results = s.finalize(results, size)

	took := time.Since(start).Milliseconds()
	s.observe(ctx, "keyword", req.Query, took, len(results))
	s.log.WithQuery(req.Query).Debug("keyword search complete",
		"candidates", len(hits),
		"results", len(results),
		"took_ms", took,
	)

	return &Response{
		Query:    req.Query,
		Strategy: "keyword",
		Results:  results,
		Total:    len(results),
		TookMs:   took,
	}, nil
}

// Ready reports whether the backing collection exists.
func (s *Service) Ready(ctx context.Context) (bool, error) {
	return s.store.CollectionExists(ctx, s.cfg.Collection)
}

func (s *Service) size(req Request) int {
	if req.Size > 0 {
		return req.Size
	}
	return s.cfg.DefaultSize
}

// buildStoreFilter converts request filters into a store filter, or nil when
// the request carries none.
func buildStoreFilter(req Request) *qdrant.SearchFilter {
	if req.Source == "" && req.Section == "" {
		return nil
	}
	f := &qdrant.SearchFilter{Section: req.Section}
	if req.Source != "" {
		f.Sources = []string{req.Source}
	}
	return f
}

func resultFromHit(h qdrant.SearchResult, score float64) Result {
	return Result{
		DocID:   h.Payload.DocID,
		Score:   score,
		Title:   h.Payload.Title,
		Source:  h.Payload.Source,
		Section: h.Payload.Section,
		Date:    h.Payload.Date,
		Text:    h.Payload.Text,
		Page:    h.Payload.Page,
	}
}

// observe reports a completed search to the recorder and the event bus.
func (s *Service) observe(ctx context.Context, strategy, query string, tookMs int64, results int) {
	if s.recorder != nil {
		s.recorder.RecordSearch(ctx, strategy, query, tookMs, results)
	}
	if s.bus != nil {
		event := bus.NewEvent(bus.TopicSearchPerformed, "search", map[string]any{
			"strategy": strategy,
			"query":    query,
			"results":  results,
			"took_ms":  tookMs,
		})
		if err := s.bus.Publish(ctx, bus.TopicSearchPerformed, event); err != nil {
			s.log.Debug("failed to publish search event", "error", err)
		}
	}
}

func (s *Service) recordError(err error) {
	if s.recorder == nil {
		return
	}
	code := apperrors.CodeInternal
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	s.recorder.RecordSearchError(code)
}

// finalize collapses chunks to their best-scoring document when configured,
// sorts by descending score and truncates to size.
func (s *Service) finalize(results []Result, size int) []Result {
	if s.cfg.DedupeByDocument {
		best := make(map[string]Result, len(results))
		order := make([]string, 0, len(results))
		for _, r := range results {
			prev, ok := best[r.DocID]
			if !ok {
				order = append(order, r.DocID)
			}
			if !ok || r.Score > prev.Score {
				best[r.DocID] = r
			}
		}
		results = results[:0]
		for _, id := range order {
			results = append(results, best[id])
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > size {
		results = results[:size]
	}
	return results
}
