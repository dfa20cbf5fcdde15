package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const incomeTaxBaseURL = "https://www.incometax.gov.in/iec/foportal/"

// IncomeTaxScraper scrapes the Income Tax Department portal's downloads
// pages.
type IncomeTaxScraper struct {
	fetcher *Fetcher
	baseURL string
	pages   []string
	filter  *RelevanceFilter
}

// NewIncomeTaxScraper creates the Income Tax scraper.
func NewIncomeTaxScraper(fetcher *Fetcher) *IncomeTaxScraper {
	return &IncomeTaxScraper{
		fetcher: fetcher,
		baseURL: incomeTaxBaseURL,
		pages: []string{
			incomeTaxBaseURL,
			incomeTaxBaseURL + "downloads",
		},
		filter: NewRelevanceFilter(
			[]string{
				"tax", "taxpayer", "return", "itr", "refund",
				"pan", "tds", "deduction", "exemption", "filing",
			},
			nil,
		),
	}
}

// Source implements Scraper.
func (s *IncomeTaxScraper) Source() string { return "income_tax" }

// Filter implements Scraper.
func (s *IncomeTaxScraper) Filter() *RelevanceFilter { return s.filter }

// Discover walks the portal pages for PDF links. A page that fails to load
// is skipped; discovery fails only when every page is unreachable.
func (s *IncomeTaxScraper) Discover(ctx context.Context) ([]DocumentRef, error) {
	var refs []DocumentRef
	var lastErr error
	reached := 0

	for _, page := range s.pages {
		doc, err := s.fetcher.GetDocument(ctx, page)
		if err != nil {
			lastErr = err
			continue
		}
		reached++

		doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
				return
			}

			title := CleanTitle(link.Text())
			if title == "" {
				title = strings.TrimSuffix(pathBase(href), ".pdf")
			}

			refs = append(refs, DocumentRef{
				Title:       title,
				DownloadURL: s.resolveURL(href),
				Date:        ExtractDate(link.Text()),
				Section:     DetermineSection(title),
				Source:      s.Source(),
			})
		})
	}

	if reached == 0 && lastErr != nil {
		return nil, lastErr
	}

	return refs, nil
}

func (s *IncomeTaxScraper) resolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func pathBase(href string) string {
	if idx := strings.LastIndexByte(href, '/'); idx != -1 {
		return href[idx+1:]
	}
	return href
}
