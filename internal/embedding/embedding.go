// Package embedding turns document text into dense vectors for semantic
// search. The service is provider-agnostic: an OpenAI-compatible endpoint
// serving a sentence-transformer model, or a deterministic local fallback.
package embedding

import (
	"context"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/config"
)

// Embedder converts texts to vectors.
type Embedder interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension is the vector width this embedder produces.
	Dimension() int
}

// New builds the embedder selected by configuration.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(cfg)
	case "local":
		return NewLocalEmbedder(cfg.Dimension), nil
	default:
		return nil, apperrors.ValidationError("unknown embedding provider: " + cfg.Provider)
	}
}

// EmbedBatched embeds texts in fixed-size batches, preserving order. It
// exists so callers don't each reimplement the batching loop around provider
// request-size limits.
func EmbedBatched(ctx context.Context, e Embedder, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 32
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		batch, err := e.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}
