package processor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

// TextExtractor pulls plain text out of a source file.
type TextExtractor interface {
	// Extract returns the document text with [Page N] markers, plus the page
	// count. An empty string with a nil error means a scanned document.
	Extract(path string) (string, int, error)
}

// PDFExtractor extracts text from PDF files.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads every page's plain text, prefixing each with a [Page N]
// marker so chunks can be traced back to their page.
func (e *PDFExtractor) Extract(path string) (string, int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, apperrors.ExtractionError(fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	pageCount := reader.NumPage()

	var parts []string
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf("[Page %d]\n%s\n", i, text))
	}

	return strings.Join(parts, "\n"), pageCount, nil
}

var (
	whitespaceRun = regexp.MustCompile(`[ \t]+`)
	newlineRun    = regexp.MustCompile(`\n{3,}`)
)

// CleanText collapses whitespace runs and excessive blank lines.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
