package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const caqmBaseURL = "https://caqm.nic.in"

// CAQMScraper scrapes the Commission for Air Quality Management site.
type CAQMScraper struct {
	fetcher    *Fetcher
	baseURL    string
	listingURL string
	filter     *RelevanceFilter
}

// NewCAQMScraper creates the CAQM scraper.
func NewCAQMScraper(fetcher *Fetcher) *CAQMScraper {
	return &CAQMScraper{
		fetcher:    fetcher,
		baseURL:    caqmBaseURL,
		listingURL: caqmBaseURL + "/index1.aspx?lsid=1070&lev=2&lid=1073&langid=1",
		filter: NewRelevanceFilter(
			[]string{
				"air quality", "pollution", "grap", "stubble",
				"construction", "dust", "emission", "direction",
			},
			nil,
		),
	}
}

// Source implements Scraper.
func (s *CAQMScraper) Source() string { return "caqm" }

// Filter implements Scraper.
func (s *CAQMScraper) Filter() *RelevanceFilter { return s.filter }

// Discover extracts order and direction PDFs from the CAQM listing page,
// deduplicating by URL (the listing repeats links across sections).
func (s *CAQMScraper) Discover(ctx context.Context) ([]DocumentRef, error) {
	doc, err := s.fetcher.GetDocument(ctx, s.listingURL)
	if err != nil {
		return nil, err
	}

	var refs []DocumentRef
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}

		full := href
		if !strings.HasPrefix(href, "http") {
			full = s.baseURL + "/" + strings.TrimPrefix(href, "/")
		}
		if seen[full] {
			return
		}
		seen[full] = true

		title := CleanTitle(link.Text())
		if title == "" {
			title = strings.TrimSuffix(pathBase(href), ".pdf")
		}

		refs = append(refs, DocumentRef{
			Title:       title,
			DownloadURL: full,
			Date:        ExtractDate(link.Text()),
			Section:     DetermineSection(title),
			Source:      s.Source(),
		})
	})

	return refs, nil
}
