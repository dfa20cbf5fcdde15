package web

import (
	"strings"
	"unicode/utf8"
)

// snippet truncates text to at most max bytes on a rune boundary, appending
// an ellipsis when cut.
func snippet(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	// Prefer breaking on a word boundary near the end.
	if idx := strings.LastIndexByte(text[:cut], ' '); idx > max/2 {
		cut = idx
	}
	return text[:cut] + "…"
}

// sourceLabel maps an agency key to its display name.
func sourceLabel(source string) string {
	for _, s := range knownSources {
		if s.Value == source && s.Value != "" {
			return s.Label
		}
	}
	if source == "" {
		return "Unknown source"
	}
	return source
}
