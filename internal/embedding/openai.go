package embedding

import (
	"context"
	"strconv"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/config"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. With
// BaseURL pointed at a local inference server it serves sentence-transformer
// models like all-MiniLM-L6-v2 without code changes.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates the client from config.
func NewOpenAIEmbedder(cfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, apperrors.ValidationError("embedding api_key or base_url is required for the openai provider")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}, nil
}

// Dimension implements Embedder.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, apperrors.EmbeddingError("creating embeddings", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, apperrors.EmbeddingError("embedding count mismatch", nil).
			WithDetail("requested", strconv.Itoa(len(texts))).
			WithDetail("received", strconv.Itoa(len(resp.Data)))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}

	return vectors, nil
}
