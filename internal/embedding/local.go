package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// LocalEmbedder produces deterministic hashed bag-of-words vectors with no
// external service. Useful for development and tests; not a substitute for a
// real model in production.
type LocalEmbedder struct {
	dimension int
}

// NewLocalEmbedder creates a local embedder of the given width.
func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &LocalEmbedder{dimension: dimension}
}

// Dimension implements Embedder.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

// Embed implements Embedder. Each token hashes into a bucket; the resulting
// term-frequency vector is L2-normalized so cosine similarity behaves like
// it does for model embeddings.
func (e *LocalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embedOne(text)
	}
	return vectors, nil
}

func (e *LocalEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%e.dimension]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec
}
