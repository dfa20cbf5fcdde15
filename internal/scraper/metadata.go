package scraper

import (
	"regexp"
	"strings"
	"time"
)

var (
	dmyPattern = regexp.MustCompile(`(\d{2})[/-](\d{2})[/-](\d{4})`)
	ymdPattern = regexp.MustCompile(`(\d{4})[/-](\d{2})[/-](\d{2})`)

	monthFirstPattern = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})`)
	dayFirstPattern   = regexp.MustCompile(`(\d{1,2})\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})`)
)

// ExtractDate finds a date in free text and normalizes it to YYYY-MM-DD.
// Returns "" when no recognizable date is present. Numeric two-part dates are
// read day-first, matching Indian government conventions.
func ExtractDate(text string) string {
	if m := dmyPattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("2006-01-02", m[3]+"-"+m[2]+"-"+m[1]); err == nil {
			return d.Format("2006-01-02")
		}
	}
	if m := ymdPattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
			return d.Format("2006-01-02")
		}
	}
	if m := monthFirstPattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return d.Format("2006-01-02")
		}
	}
	if m := dayFirstPattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("2 January 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return ""
}

// CleanTitle normalizes whitespace in a scraped title.
func CleanTitle(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// DetermineSection maps free text to a canonical document section.
func DetermineSection(text string) string {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "notification"):
		return "Notifications"
	case strings.Contains(text, "circular"):
		return "Circulars"
	case strings.Contains(text, "order"):
		return "Orders"
	case strings.Contains(text, "pressrelease"), strings.Contains(text, "press release"):
		return "Press Releases"
	case strings.Contains(text, "speech"):
		return "Speeches"
	default:
		return "Other"
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)

// BuildFilename standardizes download filenames as Section_Title_Date.ext,
// with the title stripped of unsafe characters and capped at 50 characters.
func BuildFilename(title, date, section, ext string) string {
	base := unsafeFilenameChars.ReplaceAllString(title, "")
	if len(base) > 50 {
		base = base[:50]
	}
	base = strings.ReplaceAll(strings.TrimSpace(base), " ", "_")

	if section == "" {
		section = "Document"
	}
	if date == "" {
		date = "NODATE"
	}
	if ext == "" {
		ext = ".pdf"
	}

	return section + "_" + base + "_" + date + ext
}

// Citizen-relevance filtering: the default keyword and exclusion lists, which
// individual scrapers extend for their agency.
var (
	baseCitizenKeywords = []string{
		"public", "citizen", "notification", "circular",
		"guide", "manual", "form", "instruction",
		"advisory", "notice", "guidelines", "regulation",
	}

	baseTechnicalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`internal\s+memo`),
		regexp.MustCompile(`technical\s+specification`),
		regexp.MustCompile(`maintenance`),
		regexp.MustCompile(`system\s+update`),
	}
)

// RelevanceFilter classifies documents as citizen-relevant or technical.
type RelevanceFilter struct {
	keywords  []string
	technical []*regexp.Regexp
}

// NewRelevanceFilter builds a filter from the base lists plus agency-specific
// extras.
func NewRelevanceFilter(extraKeywords []string, extraTechnical []string) *RelevanceFilter {
	f := &RelevanceFilter{
		keywords:  append(append([]string{}, baseCitizenKeywords...), extraKeywords...),
		technical: append([]*regexp.Regexp{}, baseTechnicalPatterns...),
	}
	for _, p := range extraTechnical {
		f.technical = append(f.technical, regexp.MustCompile(p))
	}
	return f
}

// IsCitizenRelevant reports whether a document looks relevant to the general
// public. Technical patterns veto before keywords admit.
func (f *RelevanceFilter) IsCitizenRelevant(doc DocumentRef) bool {
	title := strings.ToLower(doc.Title)
	link := strings.ToLower(doc.DownloadURL)
	section := strings.ToLower(doc.Section)

	for _, p := range f.technical {
		if p.MatchString(title) || p.MatchString(section) {
			return false
		}
	}

	for _, kw := range f.keywords {
		if strings.Contains(title, kw) || strings.Contains(link, kw) || strings.Contains(section, kw) {
			return true
		}
	}

	return false
}

// Partition splits documents into citizen-relevant and technical lists.
func (f *RelevanceFilter) Partition(docs []DocumentRef) (citizen, technical []DocumentRef) {
	for _, doc := range docs {
		if f.IsCitizenRelevant(doc) {
			citizen = append(citizen, doc)
		} else {
			technical = append(technical, doc)
		}
	}
	return citizen, technical
}
