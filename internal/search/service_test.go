package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sarkarisearch/sarkari-search/internal/bus"
	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
	"github.com/sarkarisearch/sarkari-search/internal/qdrant"
)

// fakeEmbedder returns a fixed vector for any input.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

// fakeStore records the last request and returns canned results.
type fakeStore struct {
	denseResults  []qdrant.SearchResult
	scrollResults []qdrant.SearchResult
	denseErr      error
	scrollErr     error

	lastDenseReq     qdrant.SearchRequest
	lastScrollFilter *qdrant.SearchFilter
	lastScrollLimit  int
}

func (f *fakeStore) DenseSearch(_ context.Context, _ string, req qdrant.SearchRequest) ([]qdrant.SearchResult, error) {
	f.lastDenseReq = req
	return f.denseResults, f.denseErr
}

func (f *fakeStore) ScrollMatching(_ context.Context, _ string, filter *qdrant.SearchFilter, limit int) ([]qdrant.SearchResult, error) {
	f.lastScrollFilter = filter
	f.lastScrollLimit = limit
	return f.scrollResults, f.scrollErr
}

func (f *fakeStore) CollectionExists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func hit(docID string, chunkID int, score float32, title, text string) qdrant.SearchResult {
	return qdrant.SearchResult{
		ID:    qdrant.PointID(docID, chunkID),
		Score: score,
		Payload: qdrant.PointPayload{
			DocID:   docID,
			ChunkID: chunkID,
			Title:   title,
			Source:  "rbi",
			Section: "Circulars",
			Text:    text,
		},
	}
}

func newTestService(store *fakeStore) *Service {
	return NewService(&fakeEmbedder{}, store, logger.New("error", "text"), Config{
		Collection:        "test",
		DefaultSize:       10,
		KeywordCandidates: 50,
		DedupeByDocument:  true,
	})
}

func TestSemanticSearch(t *testing.T) {
	store := &fakeStore{
		denseResults: []qdrant.SearchResult{
			hit("doc1", 0, 0.9, "KYC Master Direction", "banks must verify"),
			hit("doc2", 0, 0.8, "Deposit Insurance", "coverage limits"),
		},
	}
	svc := newTestService(store)

	resp, err := svc.SemanticSearch(context.Background(), Request{Query: "kyc norms"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Strategy != "semantic" {
		t.Errorf("strategy = %q, expected semantic", resp.Strategy)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, expected 2", resp.Total)
	}
	if resp.Results[0].DocID != "doc1" {
		t.Errorf("first result = %s, expected doc1", resp.Results[0].DocID)
	}
	if !store.lastDenseReq.WithPayload {
		t.Error("expected payload to be requested")
	}
	// Dedup over-fetch: 3x the requested size.
	if store.lastDenseReq.Limit != 30 {
		t.Errorf("limit = %d, expected 30", store.lastDenseReq.Limit)
	}
}

func TestSemanticSearchEmptyQuery(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.SemanticSearch(context.Background(), Request{})
	if !apperrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSemanticSearchFilters(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.SemanticSearch(context.Background(), Request{
		Query:   "grap restrictions",
		Source:  "caqm",
		Section: "Orders",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := store.lastDenseReq.Filter
	if f == nil {
		t.Fatal("expected a filter")
	}
	if len(f.Sources) != 1 || f.Sources[0] != "caqm" {
		t.Errorf("sources = %v, expected [caqm]", f.Sources)
	}
	if f.Section != "Orders" {
		t.Errorf("section = %q, expected Orders", f.Section)
	}
}

func TestSemanticSearchDedupesByDocument(t *testing.T) {
	store := &fakeStore{
		denseResults: []qdrant.SearchResult{
			hit("doc1", 0, 0.7, "KYC", "chunk a"),
			hit("doc1", 1, 0.9, "KYC", "chunk b"),
			hit("doc2", 0, 0.8, "Other", "chunk c"),
		},
	}
	svc := newTestService(store)

	resp, err := svc.SemanticSearch(context.Background(), Request{Query: "kyc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Total != 2 {
		t.Fatalf("total = %d, expected 2 after dedup", resp.Total)
	}
	if resp.Results[0].DocID != "doc1" || resp.Results[0].Score != 0.9 {
		t.Errorf("best doc1 chunk should win: %+v", resp.Results[0])
	}
	if resp.Results[1].DocID != "doc2" {
		t.Errorf("second result = %s, expected doc2", resp.Results[1].DocID)
	}
}

func TestSemanticSearchBackendError(t *testing.T) {
	store := &fakeStore{denseErr: context.DeadlineExceeded}
	svc := newTestService(store)

	_, err := svc.SemanticSearch(context.Background(), Request{Query: "kyc"})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeSearchBackend {
		t.Errorf("expected search backend error, got %v", err)
	}
}

func TestKeywordSearch(t *testing.T) {
	store := &fakeStore{
		scrollResults: []qdrant.SearchResult{
			hit("doc1", 0, 0, "Deposit Insurance Scheme", "deposit insurance covers bank deposits up to five lakh"),
			hit("doc2", 0, 0, "Annual Report", "the annual report discusses deposit trends"),
			hit("doc3", 0, 0, "Air Quality", "grap stage three restrictions"),
		},
	}
	svc := newTestService(store)

	resp, err := svc.KeywordSearch(context.Background(), Request{Query: "deposit insurance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Strategy != "keyword" {
		t.Errorf("strategy = %q, expected keyword", resp.Strategy)
	}
	// doc3 matches no terms and is dropped.
	if resp.Total != 2 {
		t.Fatalf("total = %d, expected 2", resp.Total)
	}
	if resp.Results[0].DocID != "doc1" {
		t.Errorf("first result = %s, expected doc1", resp.Results[0].DocID)
	}
	if store.lastScrollFilter == nil || store.lastScrollFilter.TextContains != "deposit insurance" {
		t.Errorf("expected full-text filter, got %+v", store.lastScrollFilter)
	}
	if store.lastScrollLimit != 50 {
		t.Errorf("candidate limit = %d, expected 50", store.lastScrollLimit)
	}
}

func TestKeywordSearchStopwordOnlyQuery(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	resp, err := svc.KeywordSearch(context.Background(), Request{Query: "what is the"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("total = %d, expected 0", resp.Total)
	}
	if store.lastScrollFilter != nil {
		t.Error("store should not be queried for stopword-only queries")
	}
}

func TestKeywordSearchPreservesFilters(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.KeywordSearch(context.Background(), Request{
		Query:  "tds rates",
		Source: "income_tax",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := store.lastScrollFilter
	if f == nil {
		t.Fatal("expected a filter")
	}
	if len(f.Sources) != 1 || f.Sources[0] != "income_tax" {
		t.Errorf("sources = %v, expected [income_tax]", f.Sources)
	}
	if f.TextContains != "tds rates" {
		t.Errorf("text filter = %q", f.TextContains)
	}
}

func TestEvalRetriever(t *testing.T) {
	store := &fakeStore{
		denseResults: []qdrant.SearchResult{
			hit("doc1", 0, 0.9, "KYC", "banks must verify"),
		},
		scrollResults: []qdrant.SearchResult{
			hit("doc2", 0, 0, "KYC norms", "kyc requirements for banks"),
		},
	}
	retriever := NewEvalRetriever(newTestService(store))

	semantic, err := retriever.Search(context.Background(), "kyc", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(semantic) != 1 || semantic[0].DocID != "doc1" {
		t.Errorf("semantic = %+v", semantic)
	}

	keyword, err := retriever.KeywordSearch(context.Background(), "kyc", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keyword) != 1 || keyword[0].DocID != "doc2" {
		t.Errorf("keyword = %+v", keyword)
	}
}

func TestHandlerSemanticGet(t *testing.T) {
	store := &fakeStore{
		denseResults: []qdrant.SearchResult{
			hit("doc1", 0, 0.9, "KYC", "banks must verify"),
		},
	}
	mux := http.NewServeMux()
	NewHandler(newTestService(store)).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=kyc&size=5&source=rbi", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].DocID != "doc1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandlerKeywordPost(t *testing.T) {
	store := &fakeStore{
		scrollResults: []qdrant.SearchResult{
			hit("doc1", 0, 0, "Deposit Insurance", "deposit insurance limits"),
		},
	}
	mux := http.NewServeMux()
	NewHandler(newTestService(store)).RegisterRoutes(mux)

	body := strings.NewReader(`{"query": "deposit insurance", "size": 3}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/search/keyword", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Strategy != "keyword" || resp.Total != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandlerMissingQuery(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(newTestService(&fakeStore{})).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/v1/search", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestHandlerBadSize(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(newTestService(&fakeStore{})).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/v1/search?q=kyc&size=abc", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

type countingRecorder struct {
	searches int
	strategy string
	errors   []string
}

func (c *countingRecorder) RecordSearch(_ context.Context, strategy, _ string, _ int64, _ int) {
	c.searches++
	c.strategy = strategy
}

func (c *countingRecorder) RecordSearchError(code string) {
	c.errors = append(c.errors, code)
}

func TestSearchObservesRecorder(t *testing.T) {
	store := &fakeStore{
		denseResults: []qdrant.SearchResult{hit("doc1", 0, 0.9, "KYC", "verify")},
	}
	svc := newTestService(store)
	rec := &countingRecorder{}
	svc.SetRecorder(rec)

	if _, err := svc.SemanticSearch(context.Background(), Request{Query: "kyc"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.searches != 1 || rec.strategy != "semantic" {
		t.Errorf("recorder = %+v", rec)
	}

	store.denseErr = context.DeadlineExceeded
	if _, err := svc.SemanticSearch(context.Background(), Request{Query: "kyc"}); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.errors) != 1 || rec.errors[0] != apperrors.CodeSearchBackend {
		t.Errorf("error codes = %v", rec.errors)
	}
}

func TestSearchPublishesEvent(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	mb := bus.NewMemoryBus(logger.New("error", "text"))
	defer mb.Close()

	var mu sync.Mutex
	var got []bus.Event
	if err := mb.Subscribe(context.Background(), bus.TopicSearchPerformed, func(_ context.Context, e bus.Event) error {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	svc.SetBus(mb)

	if _, err := svc.KeywordSearch(context.Background(), Request{Query: "air quality"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mb.Drain(2 * time.Second) {
		t.Fatal("bus did not drain")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("events = %d, expected 1", len(got))
	}
	payload, ok := got[0].Payload.(map[string]any)
	if !ok || payload["strategy"] != "keyword" {
		t.Errorf("payload = %+v", got[0].Payload)
	}
}
