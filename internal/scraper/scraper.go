// Package scraper discovers and downloads public documents from Indian
// government agency websites.
package scraper

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

// DocumentRef is a document discovered on an agency listing page, before
// download.
type DocumentRef struct {
	Title       string `json:"title"`
	DownloadURL string `json:"download_link"`
	Date        string `json:"date,omitempty"`
	Section     string `json:"section,omitempty"`
	Source      string `json:"source"`
}

// Downloaded pairs a reference with the local path its file landed at.
type Downloaded struct {
	Ref  DocumentRef
	Path string
}

// Scraper lists candidate documents for one agency.
type Scraper interface {
	// Source is the agency tag used in paths and payloads (e.g., "rbi").
	Source() string

	// Discover fetches the agency's listing pages and returns candidate
	// document references.
	Discover(ctx context.Context) ([]DocumentRef, error)

	// Filter returns the agency-tuned relevance filter.
	Filter() *RelevanceFilter
}

// Manager runs scrapers: discover, filter, download.
type Manager struct {
	fetcher     *Fetcher
	downloadDir string
	citizenOnly bool
	log         *logger.Logger
}

// NewManager creates a scrape manager.
func NewManager(fetcher *Fetcher, downloadDir string, citizenOnly bool, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Default()
	}
	return &Manager{
		fetcher:     fetcher,
		downloadDir: downloadDir,
		citizenOnly: citizenOnly,
		log:         log,
	}
}

// Run discovers and downloads documents for one agency. Download failures
// skip the document and continue; an error is returned only when discovery
// itself fails.
func (m *Manager) Run(ctx context.Context, s Scraper) ([]Downloaded, error) {
	log := m.log.WithSource(s.Source())

	refs, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("discovered documents", "count", len(refs))

	if m.citizenOnly {
		citizen, technical := s.Filter().Partition(refs)
		log.Info("filtered documents", "citizen", len(citizen), "technical", len(technical))
		refs = citizen
	}

	dir := filepath.Join(m.downloadDir, s.Source())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var downloaded []Downloaded
	seen := make(map[string]bool)
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return downloaded, err
		}
		if seen[ref.DownloadURL] {
			continue
		}
		seen[ref.DownloadURL] = true

		path := filepath.Join(dir, BuildFilename(ref.Title, ref.Date, ref.Section, filepath.Ext(ref.DownloadURL)))
		if err := m.fetcher.Download(ctx, ref.DownloadURL, path); err != nil {
			log.WithError(err).Warn("download failed, skipping", "url", ref.DownloadURL)
			continue
		}

		downloaded = append(downloaded, Downloaded{Ref: ref, Path: path})
	}

	log.Info("download complete", "downloaded", len(downloaded), "of", len(refs))
	return downloaded, nil
}
