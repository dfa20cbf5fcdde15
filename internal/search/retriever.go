package search

import (
	"context"

	"github.com/sarkarisearch/sarkari-search/internal/evaluation"
)

// EvalRetriever adapts Service to the evaluation runner, so both retrieval
// strategies can be scored against labeled queries.
type EvalRetriever struct {
	svc *Service
}

// NewEvalRetriever wraps a search service for evaluation runs.
func NewEvalRetriever(svc *Service) *EvalRetriever {
	return &EvalRetriever{svc: svc}
}

// Search runs semantic retrieval.
func (r *EvalRetriever) Search(ctx context.Context, query string, size int) ([]evaluation.RankedResult, error) {
	resp, err := r.svc.SemanticSearch(ctx, Request{Query: query, Size: size})
	if err != nil {
		return nil, err
	}
	return toRanked(resp.Results), nil
}

// KeywordSearch runs term-matching retrieval.
func (r *EvalRetriever) KeywordSearch(ctx context.Context, query string, size int) ([]evaluation.RankedResult, error) {
	resp, err := r.svc.KeywordSearch(ctx, Request{Query: query, Size: size})
	if err != nil {
		return nil, err
	}
	return toRanked(resp.Results), nil
}

func toRanked(results []Result) []evaluation.RankedResult {
	ranked := make([]evaluation.RankedResult, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, evaluation.RankedResult{
			DocID:   r.DocID,
			Score:   r.Score,
			Source:  r.Source,
			Section: r.Section,
			Title:   r.Title,
		})
	}
	return ranked
}
