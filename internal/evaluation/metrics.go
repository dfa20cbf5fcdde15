package evaluation

import "math"

// Metric primitives over a ranked result list and a relevance set.
//
// None of these functions fail on degenerate input: an empty result list or
// an empty relevance set is a legitimate, scoreable state and yields 0.0.

// PrecisionAtK returns the fraction of the first k results whose DocID is in
// the relevant set. When fewer than k results were retrieved, the denominator
// is the number actually retrieved, not k.
func PrecisionAtK(results []RankedResult, relevant map[string]bool, k int) float64 {
	if len(results) == 0 || k == 0 {
		return 0.0
	}

	topK := truncate(results, k)
	hits := 0
	for _, r := range topK {
		if relevant[r.DocID] {
			hits++
		}
	}

	return float64(hits) / float64(len(topK))
}

// RecallAtK returns the number of relevant items found in the first k results
// divided by totalRelevant. A query with no known relevant documents yields
// no meaningful recall signal and scores 0.0; callers must exclude such
// queries from aggregate reporting.
func RecallAtK(results []RankedResult, relevant map[string]bool, k, totalRelevant int) float64 {
	if totalRelevant == 0 {
		return 0.0
	}
	if len(results) == 0 {
		return 0.0
	}

	hits := 0
	for _, r := range truncate(results, k) {
		if relevant[r.DocID] {
			hits++
		}
	}

	return float64(hits) / float64(totalRelevant)
}

// F1AtK returns the harmonic mean of PrecisionAtK and RecallAtK, or 0.0 when
// both are zero.
func F1AtK(results []RankedResult, relevant map[string]bool, k, totalRelevant int) float64 {
	precision := PrecisionAtK(results, relevant, k)
	recall := RecallAtK(results, relevant, k, totalRelevant)

	if precision+recall == 0 {
		return 0.0
	}

	return 2 * precision * recall / (precision + recall)
}

// NDCGAtK returns binary-relevance Normalized Discounted Cumulative Gain over
// the first k results. A relevant hit at 1-indexed rank i gains 1/log2(i+1).
// The ideal DCG places every relevant hit found in the top-k at the top.
func NDCGAtK(results []RankedResult, relevant map[string]bool, k int) float64 {
	if len(results) == 0 || k == 0 {
		return 0.0
	}

	topK := truncate(results, k)

	dcg := 0.0
	numRelevant := 0
	for i, r := range topK {
		if relevant[r.DocID] {
			dcg += 1.0 / math.Log2(float64(i+2))
			numRelevant++
		}
	}

	ideal := numRelevant
	if ideal > k {
		ideal = k
	}

	idcg := 0.0
	for i := 1; i <= ideal; i++ {
		idcg += 1.0 / math.Log2(float64(i+1))
	}

	if idcg == 0 {
		return 0.0
	}

	return dcg / idcg
}

// MRR returns the reciprocal of the 1-indexed rank of the first relevant hit
// anywhere in the list, or 0.0 when no relevant hit exists.
func MRR(results []RankedResult, relevant map[string]bool) float64 {
	for i, r := range results {
		if relevant[r.DocID] {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}

// MAPScore returns the mean of precision values taken at each rank where a
// relevant hit occurs, divided by the size of the relevance set. Unretrieved
// relevant documents still depress the score: the denominator is the full
// relevance set, not the number of hits found. A k of zero or less scans the
// whole list.
//
// With k truncation a query with more relevant documents than k can never
// reach 1.0 even with a perfect top-k ranking. That matches the standard MAP
// definition and is intentional.
func MAPScore(results []RankedResult, relevant map[string]bool, k int) float64 {
	if len(results) == 0 || len(relevant) == 0 {
		return 0.0
	}

	if k > 0 {
		results = truncate(results, k)
	}

	hits := 0
	precisionSum := 0.0
	for i, r := range results {
		if relevant[r.DocID] {
			hits++
			precisionSum += float64(hits) / float64(i+1)
		}
	}

	if hits == 0 {
		return 0.0
	}

	return precisionSum / float64(len(relevant))
}

// truncate returns at most the first k results.
func truncate(results []RankedResult, k int) []RankedResult {
	if k < len(results) {
		return results[:k]
	}
	return results
}
