package scraper

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

// userAgent is a browser UA; several agency sites reject obvious bots.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// FetcherConfig holds HTTP politeness settings.
type FetcherConfig struct {
	MaxRetries        int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// DefaultFetcherConfig returns conservative defaults for government sites.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		MaxRetries:        3,
		RequestsPerSecond: 1,
		Timeout:           30 * time.Second,
	}
}

// Fetcher is a rate-limited, retrying HTTP client shared by all scrapers.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retries int
}

// NewFetcher creates a fetcher. Zero config fields fall back to defaults.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	def := DefaultFetcherConfig()
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retries: cfg.MaxRetries,
	}
}

// Get fetches a URL with rate limiting, without retries. The caller owns the
// response body.
func (f *Fetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.ScrapeError("building request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.ScrapeError(fmt.Sprintf("fetching %s", url), err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperrors.ScrapeError(fmt.Sprintf("fetching %s", url), fmt.Errorf("HTTP %d", resp.StatusCode)).
			WithDetail("status", resp.Status)
	}

	return resp, nil
}

// GetDocument fetches a URL and parses it with goquery.
func (f *Fetcher) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.ScrapeError(fmt.Sprintf("parsing %s", url), err)
	}
	return doc, nil
}

// Download fetches a URL to a local file with bounded retries and
// exponential backoff (1s, 2s, 4s...). A partially written file is removed
// on failure.
func (f *Fetcher) Download(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.ScrapeError("creating download dir", err)
	}

	var lastErr error
	for attempt := 0; attempt < f.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if lastErr = f.downloadOnce(ctx, url, path); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return apperrors.ScrapeError(fmt.Sprintf("downloading %s after %d attempts", url, f.retries), lastErr)
}

func (f *Fetcher) downloadOnce(ctx context.Context, url, path string) error {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}

	return out.Close()
}
