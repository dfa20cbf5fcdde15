package summarizer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

func TestHandleSummarize(t *testing.T) {
	h := NewHandler(New(nil, logger.New("error", "text")))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	text := "The Reserve Bank issued revised guidelines for deposit insurance coverage. " +
		"All scheduled commercial banks must comply by the end of the quarter. " +
		"Customers should verify their account details with their branch. " +
		"Non-compliant institutions face penalties under the Banking Regulation Act."

	body, _ := json.Marshal(SummarizeRequest{Text: text, Sentences: 2})
	req := httptest.NewRequest(http.MethodPost, "/v1/summarize", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp SummarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Summary == "" {
		t.Error("empty summary")
	}
}

func TestHandleSummarizeValidation(t *testing.T) {
	h := NewHandler(New(nil, logger.New("error", "text")))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	tests := []struct {
		name string
		body string
	}{
		{"empty text", `{"text": ""}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/summarize", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400", rec.Code)
			}
		})
	}
}
