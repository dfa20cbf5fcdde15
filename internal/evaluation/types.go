// Package evaluation provides ranked-retrieval accuracy evaluation for the
// document search pipeline. It scores ranked result lists against manually
// curated relevance judgments and compares two retrieval strategies
// (semantic and keyword) over a shared set of labeled queries.
package evaluation

// RankedResult is a single entry in a retrieval response, ordered by
// descending relevance score.
type RankedResult struct {
	// DocID identifies the document. It is unique within the index but may
	// repeat across chunks of the same document.
	DocID string `json:"doc_id"`

	// Score is the strategy-defined relevance score (higher = more relevant).
	Score float64 `json:"score"`

	// Source is the originating agency (e.g., "rbi", "income_tax", "caqm").
	Source string `json:"source,omitempty"`

	// Section is the document section (e.g., "Circulars", "Notifications").
	Section string `json:"section,omitempty"`

	// Title is the document title, passed through for report samples.
	Title string `json:"title,omitempty"`
}

// LabeledQuery is a test case: a query plus its manually curated set of
// relevant document IDs. A query with no relevant IDs carries no signal and
// is excluded from scoring.
type LabeledQuery struct {
	Query          string   `json:"query"`
	RelevantDocIDs []string `json:"relevant_doc_ids,omitempty"`
}

// HasJudgments reports whether the query carries any relevance judgments.
func (q LabeledQuery) HasJudgments() bool {
	return len(q.RelevantDocIDs) > 0
}

// RelevantSet returns the relevance judgments as a set.
func (q LabeledQuery) RelevantSet() map[string]bool {
	set := make(map[string]bool, len(q.RelevantDocIDs))
	for _, id := range q.RelevantDocIDs {
		set[id] = true
	}
	return set
}

// MetricsRecord holds the metric scores for a single ranked list scored
// against one query's relevance judgments.
//
// Invariant: RelevantRetrieved <= min(TotalRetrieved, TotalRelevant).
type MetricsRecord struct {
	// Scores maps metric name (e.g., "Precision@10") to a value in [0,1].
	Scores map[string]float64 `json:"scores"`

	// RelevantRetrieved is the number of distinct relevant documents that
	// appear anywhere in the result list.
	RelevantRetrieved int `json:"relevant_retrieved"`

	// TotalRetrieved is the length of the result list.
	TotalRetrieved int `json:"total_retrieved"`

	// TotalRelevant is the size of the ground-truth set.
	TotalRelevant int `json:"total_relevant"`
}

// OverlapMatrix describes agreement between two ranked lists at a cutoff K.
//
// Invariants: Both + OnlyFirst == TotalFirst and Both + OnlySecond == TotalSecond.
type OverlapMatrix struct {
	// Both is the count of document IDs in the top-K of both lists.
	Both int `json:"both"`

	// OnlyFirst is the count of IDs in the first list's top-K only.
	OnlyFirst int `json:"only_first"`

	// OnlySecond is the count of IDs in the second list's top-K only.
	OnlySecond int `json:"only_second"`

	// TotalFirst is the number of distinct IDs in the first list's top-K.
	TotalFirst int `json:"total_first"`

	// TotalSecond is the number of distinct IDs in the second list's top-K.
	TotalSecond int `json:"total_second"`
}

// Add accumulates another matrix into this one. Overlap counts are extensive
// quantities and are combined by summation across a batch, unlike the
// intensive metric scores which are averaged.
func (m *OverlapMatrix) Add(other OverlapMatrix) {
	m.Both += other.Both
	m.OnlyFirst += other.OnlyFirst
	m.OnlySecond += other.OnlySecond
	m.TotalFirst += other.TotalFirst
	m.TotalSecond += other.TotalSecond
}

// QueryEvaluation holds all evaluation outputs for a single labeled query.
// A strategy's record is nil when the retrieval call for it failed.
type QueryEvaluation struct {
	Query    string         `json:"query"`
	Semantic *MetricsRecord `json:"semantic,omitempty"`
	Keyword  *MetricsRecord `json:"keyword,omitempty"`
	Overlap  *OverlapMatrix `json:"overlap,omitempty"`
}

// SourceCounts holds per-source retrieval volumes for each strategy. This is
// a coarse diagnostic: per-source precision/recall would require per-source
// ground truth, which is out of scope.
type SourceCounts struct {
	Semantic int `json:"semantic_count"`
	Keyword  int `json:"keyword_count"`
}

// BatchResult is the aggregate output of a batch evaluation run.
type BatchResult struct {
	// SemanticMetrics and KeywordMetrics are corpus-level averages: for each
	// metric name, the arithmetic mean across the per-query records that
	// contain that metric.
	SemanticMetrics map[string]float64 `json:"semantic_metrics"`
	KeywordMetrics  map[string]float64 `json:"keyword_metrics"`

	// Comparison is the per-query overlap matrices summed across the batch.
	Comparison OverlapMatrix `json:"comparison_matrix"`

	// BySource holds retrieval-volume counts partitioned by document source.
	BySource map[string]SourceCounts `json:"by_source"`

	// SemanticSamples and KeywordSamples hold limited raw results for
	// inspection in the report.
	SemanticSamples []RankedResult `json:"semantic_samples,omitempty"`
	KeywordSamples  []RankedResult `json:"keyword_samples,omitempty"`

	// PerQuery keeps each query's individual evaluation outputs.
	PerQuery []QueryEvaluation `json:"per_query,omitempty"`

	// TotalQueries is the number of labeled queries loaded; ScoredQueries is
	// the number that actually contributed metrics. The report must surface
	// both so a low score count is attributable to missing ground truth
	// rather than poor retrieval.
	TotalQueries  int `json:"total_queries"`
	ScoredQueries int `json:"scored_queries"`
}
