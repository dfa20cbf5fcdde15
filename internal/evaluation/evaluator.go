package evaluation

import "fmt"

// Evaluator scores ranked result lists against relevance judgments at a set
// of K cutoffs.
type Evaluator struct {
	kValues []int
}

// NewEvaluator creates an evaluator for the given K cutoffs. A nil or empty
// slice falls back to the standard 5/10/20 cutoffs.
func NewEvaluator(kValues []int) *Evaluator {
	if len(kValues) == 0 {
		kValues = []int{5, 10, 20}
	}
	return &Evaluator{kValues: kValues}
}

// KValues returns the configured cutoffs.
func (e *Evaluator) KValues() []int {
	return e.kValues
}

// MaxK returns the largest configured cutoff.
func (e *Evaluator) MaxK() int {
	max := 0
	for _, k := range e.kValues {
		if k > max {
			max = k
		}
	}
	return max
}

// Evaluate scores a single ranked list against one query's relevance set.
// totalRelevant lets callers supply a ground-truth count larger than the
// judged set; zero or negative defaults it to len(relevantIDs).
func (e *Evaluator) Evaluate(results []RankedResult, relevantIDs []string, totalRelevant int) *MetricsRecord {
	if totalRelevant <= 0 {
		totalRelevant = len(relevantIDs)
	}

	relevant := make(map[string]bool, len(relevantIDs))
	for _, id := range relevantIDs {
		relevant[id] = true
	}

	record := &MetricsRecord{
		Scores:         make(map[string]float64, 3*len(e.kValues)+2),
		TotalRetrieved: len(results),
		TotalRelevant:  totalRelevant,
	}

	found := make(map[string]bool)
	for _, r := range results {
		if relevant[r.DocID] {
			found[r.DocID] = true
		}
	}
	record.RelevantRetrieved = len(found)

	for _, k := range e.kValues {
		record.Scores[fmt.Sprintf("Precision@%d", k)] = PrecisionAtK(results, relevant, k)
		record.Scores[fmt.Sprintf("Recall@%d", k)] = RecallAtK(results, relevant, k, totalRelevant)
		record.Scores[fmt.Sprintf("F1@%d", k)] = F1AtK(results, relevant, k, totalRelevant)
		record.Scores[fmt.Sprintf("NDCG@%d", k)] = NDCGAtK(results, relevant, k)
	}
	record.Scores["MRR"] = MRR(results, relevant)
	record.Scores["MAP"] = MAPScore(results, relevant, 0)

	return record
}

// Compare builds the overlap matrix between two ranked lists at cutoff k,
// using distinct document IDs within each top-k.
func Compare(first, second []RankedResult, k int) OverlapMatrix {
	firstSet := topKSet(first, k)
	secondSet := topKSet(second, k)

	var m OverlapMatrix
	m.TotalFirst = len(firstSet)
	m.TotalSecond = len(secondSet)

	for id := range firstSet {
		if secondSet[id] {
			m.Both++
		} else {
			m.OnlyFirst++
		}
	}
	for id := range secondSet {
		if !firstSet[id] {
			m.OnlySecond++
		}
	}

	return m
}

func topKSet(results []RankedResult, k int) map[string]bool {
	set := make(map[string]bool, k)
	for _, r := range truncate(results, k) {
		set[r.DocID] = true
	}
	return set
}
