package scraper

import apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"

// All returns every known agency scraper sharing one fetcher.
func All(fetcher *Fetcher) []Scraper {
	return []Scraper{
		NewRBIScraper(fetcher),
		NewIncomeTaxScraper(fetcher),
		NewCAQMScraper(fetcher),
	}
}

// BySource returns the scraper for one agency tag.
func BySource(fetcher *Fetcher, source string) (Scraper, error) {
	for _, s := range All(fetcher) {
		if s.Source() == source {
			return s, nil
		}
	}
	return nil, apperrors.NotFoundError("scraper for source " + source)
}
