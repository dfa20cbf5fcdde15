// Package summarizer produces extractive summaries of document text by
// selecting the most representative sentences. With a query, selection is
// biased towards query-relevant sentences; without one, sentences closest
// to the document centroid are picked.
package summarizer

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/sarkarisearch/sarkari-search/internal/embedding"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

const (
	// minSentenceLen drops extraction artifacts shorter than this.
	minSentenceLen = 20

	// maxInputChars caps the text fed into sentence embedding.
	maxInputChars = 5000

	// minTextLen below which the raw text is returned as-is.
	minTextLen = 50

	// DefaultSentences is the default summary length.
	DefaultSentences = 3
)

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

// Summarizer generates extractive summaries. The embedder is optional; when
// nil, summaries fall back to the leading sentences.
type Summarizer struct {
	embedder embedding.Embedder
	log      *logger.Logger
}

// New creates a summarizer.
func New(embedder embedding.Embedder, log *logger.Logger) *Summarizer {
	if log == nil {
		log = logger.Default()
	}
	return &Summarizer{embedder: embedder, log: log}
}

// SplitSentences splits text into sentences, dropping very short fragments.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	for _, s := range sentenceEnd.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) > minSentenceLen {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Summarize returns a numSentences-long extractive summary of text. A
// non-empty query biases selection towards query-similar sentences.
func (s *Summarizer) Summarize(ctx context.Context, text string, numSentences int, query string) (string, error) {
	if numSentences <= 0 {
		numSentences = DefaultSentences
	}

	text = strings.TrimSpace(text)
	if len(text) < minTextLen {
		if len(text) > 200 {
			return text[:200], nil
		}
		return text, nil
	}
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	sentences := SplitSentences(text)
	if len(sentences) <= numSentences {
		return strings.Join(sentences, " "), nil
	}

	if s.embedder == nil {
		return strings.Join(sentences[:numSentences], " "), nil
	}

	vectors, err := s.embedder.Embed(ctx, sentences)
	if err != nil {
		// Embedding failure degrades to leading sentences rather than
		// failing the whole response.
		s.log.WithError(err).Warn("sentence embedding failed, using leading sentences")
		return strings.Join(sentences[:numSentences], " "), nil
	}

	var selected []int
	if query != "" {
		queryVecs, err := s.embedder.Embed(ctx, []string{query})
		if err != nil {
			s.log.WithError(err).Warn("query embedding failed, using leading sentences")
			return strings.Join(sentences[:numSentences], " "), nil
		}
		selected = topByQuerySimilarity(vectors, queryVecs[0], numSentences)
	} else {
		selected = closestToCentroid(vectors, numSentences)
	}

	// Selected sentences keep their original document order.
	sort.Ints(selected)
	parts := make([]string, 0, len(selected))
	for _, i := range selected {
		parts = append(parts, sentences[i])
	}
	return strings.Join(parts, " "), nil
}

// SummarizeResult summarizes a chunk of text for display alongside a search
// hit, using the search query for bias.
func (s *Summarizer) SummarizeResult(ctx context.Context, text, query string) (string, error) {
	return s.Summarize(ctx, text, 2, query)
}

// topByQuerySimilarity returns the indexes of the n sentences most cosine-
// similar to the query vector.
func topByQuerySimilarity(vectors [][]float32, query []float32, n int) []int {
	type scored struct {
		idx   int
		score float64
	}

	queryNorm := norm(query)
	scores := make([]scored, len(vectors))
	for i, v := range vectors {
		var sim float64
		if vNorm := norm(v); vNorm > 0 && queryNorm > 0 {
			sim = dot(v, query) / (vNorm * queryNorm)
		}
		scores[i] = scored{idx: i, score: sim}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	return firstIndexes(scores, n, func(s scored) int { return s.idx })
}

// closestToCentroid returns the indexes of the n sentences nearest the mean
// of all sentence vectors.
func closestToCentroid(vectors [][]float32, n int) []int {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	centroid := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			centroid[i] += float64(x)
		}
	}
	for i := range centroid {
		centroid[i] /= float64(len(vectors))
	}

	type scored struct {
		idx  int
		dist float64
	}
	scores := make([]scored, len(vectors))
	for i, v := range vectors {
		var sum float64
		for j, x := range v {
			d := float64(x) - centroid[j]
			sum += d * d
		}
		scores[i] = scored{idx: i, dist: math.Sqrt(sum)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].dist < scores[j].dist
	})

	return firstIndexes(scores, n, func(s scored) int { return s.idx })
}

func firstIndexes[T any](scores []T, n int, idx func(T) int) []int {
	if n > len(scores) {
		n = len(scores)
	}
	out := make([]int, 0, n)
	for _, s := range scores[:n] {
		out = append(out, idx(s))
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
