package search

import (
	"math"
	"strings"
	"unicode"
)

// titleBoost weights title matches over body matches when scoring keyword
// candidates.
const titleBoost = 2.0

// stopwords that carry no ranking signal for document queries.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "the": true, "to": true,
	"was": true, "what": true, "when": true, "which": true, "with": true,
}

// tokenize lowercases the query and splits it into scoring terms, dropping
// stopwords.
func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// termScore scores a candidate chunk against the query terms. Each term
// contributes a log-damped frequency from the chunk text, plus a boosted
// contribution from the title. The sum is normalized by chunk length so
// short, dense chunks outrank long, diluted ones.
func termScore(terms []string, text, title string) float64 {
	if len(terms) == 0 {
		return 0
	}

	textTokens := tokenize(text)
	titleTokens := tokenize(title)

	textFreq := make(map[string]int, len(textTokens))
	for _, t := range textTokens {
		textFreq[t]++
	}
	titleFreq := make(map[string]int, len(titleTokens))
	for _, t := range titleTokens {
		titleFreq[t]++
	}

	var score float64
	for _, term := range terms {
		if tf := textFreq[term]; tf > 0 {
			score += 1 + math.Log(float64(tf))
		}
		if tf := titleFreq[term]; tf > 0 {
			score += titleBoost * (1 + math.Log(float64(tf)))
		}
	}
	if score == 0 {
		return 0
	}

	// Length normalization; +1 guards empty chunks.
	return score / math.Sqrt(float64(len(textTokens)+1))
}
