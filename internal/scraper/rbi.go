package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	rbiListingURL = "https://www.rbi.org.in/Scripts/BS_PressReleaseDisplay.aspx"
	rbiDocsHost   = "https://rbidocs.rbi.org.in"
)

// RBIScraper scrapes the Reserve Bank of India press release listing.
type RBIScraper struct {
	fetcher    *Fetcher
	listingURL string
	filter     *RelevanceFilter
}

// NewRBIScraper creates the RBI scraper.
func NewRBIScraper(fetcher *Fetcher) *RBIScraper {
	return &RBIScraper{
		fetcher:    fetcher,
		listingURL: rbiListingURL,
		filter: NewRelevanceFilter(
			[]string{
				"bank", "customer", "deposit", "loan",
				"interest rate", "kyc", "banking",
				"savings", "credit", "debit", "upi",
				"payment", "mobile banking", "protection",
			},
			[]string{
				`basel`, `regulatory\s+reporting`,
				`payment\s+system`, `settlement\s+system`,
			},
		),
	}
}

// Source implements Scraper.
func (s *RBIScraper) Source() string { return "rbi" }

// Filter implements Scraper.
func (s *RBIScraper) Filter() *RelevanceFilter { return s.filter }

// Discover fetches the press release listing and extracts PDF links.
func (s *RBIScraper) Discover(ctx context.Context) ([]DocumentRef, error) {
	doc, err := s.fetcher.GetDocument(ctx, s.listingURL)
	if err != nil {
		return nil, err
	}

	var refs []DocumentRef
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !s.looksLikeDocument(href) {
			return
		}

		title := CleanTitle(link.Text())
		cell := link.Closest("td, div")
		if title == "" && cell.Length() > 0 {
			title = CleanTitle(cell.Text())
		}
		if title == "" {
			return
		}

		// Dates usually sit in a sibling cell, so search the whole row.
		date := ""
		if row := link.Closest("tr"); row.Length() > 0 {
			date = ExtractDate(row.Text())
		} else if cell.Length() > 0 {
			date = ExtractDate(cell.Text())
		}
		if date == "" {
			date = ExtractDate(title)
		}

		refs = append(refs, DocumentRef{
			Title:       title,
			DownloadURL: s.fullURL(href),
			Date:        date,
			Section:     DetermineSection(title),
			Source:      s.Source(),
		})
	})

	return refs, nil
}

func (s *RBIScraper) looksLikeDocument(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasSuffix(lower, ".pdf") ||
		strings.Contains(lower, "notification") ||
		strings.Contains(lower, "circular") ||
		strings.Contains(lower, "pressrelease")
}

func (s *RBIScraper) fullURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return rbiDocsHost + href
	default:
		return rbiDocsHost + "/" + href
	}
}
