// Package security provides input validation and sensitive-value masking.
package security

import (
	"strings"
	"unicode/utf8"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
)

const (
	// MaxQueryLength bounds search query size.
	MaxQueryLength = 1000

	// MaxFilenameLength bounds generated filenames.
	MaxFilenameLength = 255
)

// ValidateQuery checks a search query for size and encoding problems.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return apperrors.ValidationError("query is required")
	}
	if len(query) > MaxQueryLength {
		return apperrors.ValidationError("query too long")
	}
	if !utf8.ValidString(query) {
		return apperrors.ValidationError("query contains invalid UTF-8")
	}
	if strings.ContainsRune(query, 0) {
		return apperrors.ValidationError("query contains null byte")
	}
	return nil
}

// MaskSecret replaces all but the last 4 characters of a secret, for safe
// logging of API keys and connection strings.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// SanitizeFilename strips path separators and control characters so a
// scraped title cannot escape the download directory.
func SanitizeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == 0:
			sb.WriteRune('_')
		case r < 0x20:
			// drop control characters
		default:
			sb.WriteRune(r)
		}
	}

	out := strings.TrimSpace(sb.String())
	if len(out) > MaxFilenameLength {
		out = out[:MaxFilenameLength]
	}
	return out
}
