package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher() *Fetcher {
	return NewFetcher(FetcherConfig{
		MaxRetries:        3,
		RequestsPerSecond: 1000, // no throttling in tests
		Timeout:           5 * time.Second,
	})
}

func TestGetSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := testFetcher().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if gotUA != userAgent {
		t.Errorf("User-Agent = %q, want browser UA", gotUA)
	}
}

func TestGetNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testFetcher().Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Get() should fail on HTTP 403")
	}
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("%PDF-1.4 content"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "doc.pdf")

	if err := testFetcher().Download(context.Background(), srv.URL, path); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "%PDF-1.4 content" {
		t.Errorf("downloaded content = %q", data)
	}
}

func TestDownloadExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "doc.pdf")

	err := testFetcher().Download(context.Background(), srv.URL, path)
	if err == nil {
		t.Fatal("Download() should fail after exhausting retries")
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed download should not leave a file behind")
	}
}

func TestDownloadCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := testFetcher().Download(ctx, srv.URL, filepath.Join(t.TempDir(), "doc.pdf"))
	if err == nil {
		t.Fatal("Download() should respect cancelled context")
	}
}
