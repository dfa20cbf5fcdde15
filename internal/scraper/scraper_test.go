package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

const rbiListingHTML = `<html><body>
<table>
  <tr>
    <td>15-02-2024</td>
    <td><a href="/notification/kyc_direction.pdf">Master Direction on KYC for banks</a></td>
  </tr>
  <tr>
    <td>08-12-2023</td>
    <td><a href="https://rbidocs.rbi.org.in/circular/repo_rate.pdf">Circular on repo rate for customers</a></td>
  </tr>
  <tr>
    <td><a href="/about/board.html">About the central board</a></td>
  </tr>
  <tr>
    <td><a href="/internal/basel_framework.pdf">Basel III regulatory reporting specification</a></td>
  </tr>
</table>
</body></html>`

func TestRBIDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rbiListingHTML))
	}))
	defer srv.Close()

	s := NewRBIScraper(testFetcher())
	s.listingURL = srv.URL

	refs, err := s.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	// The .html link is not a document; the three PDFs are.
	if len(refs) != 3 {
		t.Fatalf("len(refs) = %d, want 3: %+v", len(refs), refs)
	}

	kyc := refs[0]
	if kyc.Title != "Master Direction on KYC for banks" {
		t.Errorf("Title = %q", kyc.Title)
	}
	if kyc.DownloadURL != rbiDocsHost+"/notification/kyc_direction.pdf" {
		t.Errorf("DownloadURL = %q", kyc.DownloadURL)
	}
	if kyc.Date != "2024-02-15" {
		t.Errorf("Date = %q, want 2024-02-15", kyc.Date)
	}
	if kyc.Source != "rbi" {
		t.Errorf("Source = %q, want rbi", kyc.Source)
	}

	if refs[1].DownloadURL != "https://rbidocs.rbi.org.in/circular/repo_rate.pdf" {
		t.Errorf("absolute URL should pass through, got %q", refs[1].DownloadURL)
	}

	// The filter (applied separately) rejects the Basel document.
	citizen, technical := s.Filter().Partition(refs)
	if len(citizen) != 2 || len(technical) != 1 {
		t.Errorf("Partition() = %d citizen, %d technical, want 2/1", len(citizen), len(technical))
	}
}

func TestCAQMDiscoverDeduplicates(t *testing.T) {
	html := `<html><body>
	<a href="/orders/direction_84.pdf">Direction No. 84 on construction dust</a>
	<a href="/orders/direction_84.pdf">Direction No. 84 on construction dust</a>
	<a href="/notifications/grap_stage3.pdf">GRAP Stage III order</a>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	s := NewCAQMScraper(testFetcher())
	s.baseURL = srv.URL
	s.listingURL = srv.URL

	refs, err := s.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("len(refs) = %d, want 2 after dedup", len(refs))
	}
}

func TestManagerRun(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
		<a href="` + srv.URL + `/docs/notice.pdf">Public notice on air quality</a>
		<a href="` + srv.URL + `/docs/memo.pdf">internal memo on staffing</a>
		<a href="` + srv.URL + `/docs/missing.pdf">Advisory for citizens on dust</a>
		</body></html>`))
	})
	mux.HandleFunc("/docs/notice.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF notice"))
	})
	mux.HandleFunc("/docs/missing.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	fetcher := NewFetcher(FetcherConfig{MaxRetries: 1, RequestsPerSecond: 1000})
	s := NewCAQMScraper(fetcher)
	s.baseURL = srv.URL
	s.listingURL = srv.URL + "/listing"

	dir := t.TempDir()
	m := NewManager(fetcher, dir, true, logger.New("error", "text"))

	downloaded, err := m.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Memo filtered out as technical; missing.pdf fails to download and is
	// skipped; only the notice lands.
	if len(downloaded) != 1 {
		t.Fatalf("len(downloaded) = %d, want 1: %+v", len(downloaded), downloaded)
	}

	got := downloaded[0]
	if !strings.Contains(got.Path, filepath.Join(dir, "caqm")) {
		t.Errorf("Path = %q, want under <dir>/caqm", got.Path)
	}
	if _, err := os.Stat(got.Path); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
}

func TestBySource(t *testing.T) {
	fetcher := testFetcher()

	for _, source := range []string{"rbi", "income_tax", "caqm"} {
		s, err := BySource(fetcher, source)
		if err != nil {
			t.Errorf("BySource(%q) error = %v", source, err)
			continue
		}
		if s.Source() != source {
			t.Errorf("Source() = %q, want %q", s.Source(), source)
		}
	}

	if _, err := BySource(fetcher, "unknown_agency"); err == nil {
		t.Error("BySource should fail for unknown source")
	}
}
