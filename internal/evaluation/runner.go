package evaluation

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

// ErrNoScoreableQueries is returned when a batch run finishes without a
// single query contributing metrics.
var ErrNoScoreableQueries = errors.New("evaluation: no queries with relevance judgments produced results")

// sampleLimit caps the raw results kept in BatchResult for report inspection.
const sampleLimit = 50

// Retriever produces ranked results for a query under the two strategies
// being compared. Implementations must return results in descending score
// order.
type Retriever interface {
	// Search runs semantic (dense vector) retrieval.
	Search(ctx context.Context, query string, size int) ([]RankedResult, error)

	// KeywordSearch runs term-matching retrieval.
	KeywordSearch(ctx context.Context, query string, size int) ([]RankedResult, error)
}

// Runner drives a batch evaluation over a set of labeled queries.
type Runner struct {
	retriever Retriever
	evaluator *Evaluator
	log       *logger.Logger
}

// NewRunner creates a batch runner. A nil logger falls back to the default.
func NewRunner(retriever Retriever, evaluator *Evaluator, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		retriever: retriever,
		evaluator: evaluator,
		log:       log,
	}
}

// Run evaluates every labeled query and aggregates the per-query records
// into a BatchResult.
//
// Queries with an empty query string or no relevance judgments are skipped
// with a warning and count toward TotalQueries only. A failure of one
// strategy's retrieval does not discard the other strategy's contribution
// for that query. Corpus-level metric averages are computed over the records
// that contain each metric, so a strategy that failed on some queries is
// averaged over its successful ones.
func (r *Runner) Run(ctx context.Context, queries []LabeledQuery) (*BatchResult, error) {
	result := &BatchResult{
		SemanticMetrics: make(map[string]float64),
		KeywordMetrics:  make(map[string]float64),
		BySource:        make(map[string]SourceCounts),
		TotalQueries:    len(queries),
	}

	size := r.evaluator.MaxK() * 2

	semanticSums := make(map[string]float64)
	semanticCounts := make(map[string]int)
	keywordSums := make(map[string]float64)
	keywordCounts := make(map[string]int)

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if q.Query == "" {
			r.log.Warn("skipping labeled query with empty query string")
			continue
		}
		if !q.HasJudgments() {
			r.log.WithQuery(q.Query).Warn("skipping query without relevance judgments")
			continue
		}

		qe := QueryEvaluation{Query: q.Query}
		qlog := r.log.WithQuery(q.Query)

		semantic, semErr := r.retriever.Search(ctx, q.Query, size)
		if semErr != nil {
			qlog.WithError(semErr).Error("semantic retrieval failed")
		} else {
			qe.Semantic = r.evaluator.Evaluate(semantic, q.RelevantDocIDs, 0)
			accumulate(semanticSums, semanticCounts, qe.Semantic.Scores)
			countBySource(result.BySource, semantic, true)
			result.SemanticSamples = appendSamples(result.SemanticSamples, semantic)
		}

		keyword, kwErr := r.retriever.KeywordSearch(ctx, q.Query, size)
		if kwErr != nil {
			qlog.WithError(kwErr).Error("keyword retrieval failed")
		} else {
			qe.Keyword = r.evaluator.Evaluate(keyword, q.RelevantDocIDs, 0)
			accumulate(keywordSums, keywordCounts, qe.Keyword.Scores)
			countBySource(result.BySource, keyword, false)
			result.KeywordSamples = appendSamples(result.KeywordSamples, keyword)
		}

		if semErr == nil && kwErr == nil {
			overlap := Compare(semantic, keyword, r.evaluator.MaxK())
			qe.Overlap = &overlap
			result.Comparison.Add(overlap)
		}

		if qe.Semantic != nil || qe.Keyword != nil {
			result.ScoredQueries++
		}
		result.PerQuery = append(result.PerQuery, qe)
	}

	if result.ScoredQueries == 0 {
		return nil, fmt.Errorf("%w (%d queries loaded)", ErrNoScoreableQueries, result.TotalQueries)
	}

	for name, sum := range semanticSums {
		result.SemanticMetrics[name] = sum / float64(semanticCounts[name])
	}
	for name, sum := range keywordSums {
		result.KeywordMetrics[name] = sum / float64(keywordCounts[name])
	}

	r.log.Info("batch evaluation complete",
		"scored", result.ScoredQueries,
		"total", result.TotalQueries,
	)

	return result, nil
}

// RunFromFile loads labeled queries from path and evaluates them.
func (r *Runner) RunFromFile(ctx context.Context, path string) (*BatchResult, error) {
	queries, err := LoadQueries(path)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, apperrors.ValidationError("query file contains no test queries")
	}
	return r.Run(ctx, queries)
}

func accumulate(sums map[string]float64, counts map[string]int, scores map[string]float64) {
	for name, v := range scores {
		sums[name] += v
		counts[name]++
	}
}

func countBySource(bySource map[string]SourceCounts, results []RankedResult, semantic bool) {
	for _, r := range results {
		source := r.Source
		if source == "" {
			source = "unknown"
		}
		counts := bySource[source]
		if semantic {
			counts.Semantic++
		} else {
			counts.Keyword++
		}
		bySource[source] = counts
	}
}

func appendSamples(samples, results []RankedResult) []RankedResult {
	for _, r := range results {
		if len(samples) >= sampleLimit {
			break
		}
		samples = append(samples, r)
	}
	return samples
}
