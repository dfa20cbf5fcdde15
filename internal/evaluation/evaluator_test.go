package evaluation

import (
	"testing"
)

func TestEvaluate(t *testing.T) {
	e := NewEvaluator([]int{3})

	results := []RankedResult{
		{DocID: "A", Score: 0.9},
		{DocID: "B", Score: 0.8},
		{DocID: "C", Score: 0.5},
	}

	record := e.Evaluate(results, []string{"A", "C"}, 0)

	if !almostEqual(record.Scores["Precision@3"], 2.0/3.0) {
		t.Errorf("Precision@3 = %v, want %v", record.Scores["Precision@3"], 2.0/3.0)
	}
	if !almostEqual(record.Scores["Recall@3"], 1.0) {
		t.Errorf("Recall@3 = %v, want 1.0", record.Scores["Recall@3"])
	}
	if !almostEqual(record.Scores["MRR"], 1.0) {
		t.Errorf("MRR = %v, want 1.0", record.Scores["MRR"])
	}
	if record.RelevantRetrieved != 2 {
		t.Errorf("RelevantRetrieved = %d, want 2", record.RelevantRetrieved)
	}
	if record.TotalRetrieved != 3 {
		t.Errorf("TotalRetrieved = %d, want 3", record.TotalRetrieved)
	}
	if record.TotalRelevant != 2 {
		t.Errorf("TotalRelevant = %d, want 2", record.TotalRelevant)
	}
}

func TestEvaluateNoOverlap(t *testing.T) {
	e := NewEvaluator([]int{3})

	results := []RankedResult{
		{DocID: "A", Score: 0.9},
		{DocID: "B", Score: 0.8},
		{DocID: "C", Score: 0.5},
	}

	record := e.Evaluate(results, []string{"D"}, 0)

	for _, name := range []string{"Precision@3", "Recall@3", "F1@3", "NDCG@3", "MRR", "MAP"} {
		if record.Scores[name] != 0.0 {
			t.Errorf("%s = %v, want 0.0", name, record.Scores[name])
		}
	}
	if record.RelevantRetrieved != 0 {
		t.Errorf("RelevantRetrieved = %d, want 0", record.RelevantRetrieved)
	}
}

func TestEvaluateEmptyResults(t *testing.T) {
	e := NewEvaluator([]int{5})

	record := e.Evaluate(nil, []string{"A"}, 0)

	for name, v := range record.Scores {
		if v != 0.0 {
			t.Errorf("%s = %v, want 0.0 for empty results", name, v)
		}
	}
	if record.TotalRetrieved != 0 {
		t.Errorf("TotalRetrieved = %d, want 0", record.TotalRetrieved)
	}
}

func TestEvaluateTotalRelevantOverride(t *testing.T) {
	e := NewEvaluator([]int{2})

	results := []RankedResult{{DocID: "A", Score: 1.0}}

	// Judged set has one ID but ground truth says 4 relevant docs exist.
	record := e.Evaluate(results, []string{"A"}, 4)

	if !almostEqual(record.Scores["Recall@2"], 0.25) {
		t.Errorf("Recall@2 = %v, want 0.25", record.Scores["Recall@2"])
	}
	if record.TotalRelevant != 4 {
		t.Errorf("TotalRelevant = %d, want 4", record.TotalRelevant)
	}
}

func TestEvaluateRecordInvariant(t *testing.T) {
	e := NewEvaluator([]int{5, 10})

	results := rankedList("A", "B", "C", "A", "D")
	record := e.Evaluate(results, []string{"A", "B", "Z"}, 0)

	if record.RelevantRetrieved > record.TotalRetrieved {
		t.Errorf("RelevantRetrieved %d > TotalRetrieved %d", record.RelevantRetrieved, record.TotalRetrieved)
	}
	if record.RelevantRetrieved > record.TotalRelevant {
		t.Errorf("RelevantRetrieved %d > TotalRelevant %d", record.RelevantRetrieved, record.TotalRelevant)
	}
	// "A" appears twice in the list but counts once.
	if record.RelevantRetrieved != 2 {
		t.Errorf("RelevantRetrieved = %d, want 2", record.RelevantRetrieved)
	}
}

func TestCompare(t *testing.T) {
	first := rankedList("1", "2", "3")
	second := rankedList("2", "3", "4")

	m := Compare(first, second, 10)

	if m.Both != 2 {
		t.Errorf("Both = %d, want 2", m.Both)
	}
	if m.OnlyFirst != 1 {
		t.Errorf("OnlyFirst = %d, want 1", m.OnlyFirst)
	}
	if m.OnlySecond != 1 {
		t.Errorf("OnlySecond = %d, want 1", m.OnlySecond)
	}
	if m.TotalFirst != 3 {
		t.Errorf("TotalFirst = %d, want 3", m.TotalFirst)
	}
	if m.TotalSecond != 3 {
		t.Errorf("TotalSecond = %d, want 3", m.TotalSecond)
	}
}

func TestCompareInvariants(t *testing.T) {
	tests := []struct {
		name   string
		first  []RankedResult
		second []RankedResult
		k      int
	}{
		{"disjoint", rankedList("A", "B"), rankedList("C", "D"), 10},
		{"identical", rankedList("A", "B"), rankedList("A", "B"), 10},
		{"one empty", rankedList("A"), nil, 5},
		{"both empty", nil, nil, 5},
		{"k truncates", rankedList("A", "B", "C"), rankedList("C", "B", "A"), 2},
		{"duplicate ids counted once", rankedList("A", "A", "B"), rankedList("A"), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compare(tt.first, tt.second, tt.k)
			if m.Both+m.OnlyFirst != m.TotalFirst {
				t.Errorf("Both+OnlyFirst = %d, want TotalFirst %d", m.Both+m.OnlyFirst, m.TotalFirst)
			}
			if m.Both+m.OnlySecond != m.TotalSecond {
				t.Errorf("Both+OnlySecond = %d, want TotalSecond %d", m.Both+m.OnlySecond, m.TotalSecond)
			}
		})
	}
}

func TestOverlapMatrixAdd(t *testing.T) {
	m := OverlapMatrix{Both: 1, OnlyFirst: 2, OnlySecond: 3, TotalFirst: 3, TotalSecond: 4}
	m.Add(OverlapMatrix{Both: 2, OnlyFirst: 1, OnlySecond: 0, TotalFirst: 3, TotalSecond: 2})

	want := OverlapMatrix{Both: 3, OnlyFirst: 3, OnlySecond: 3, TotalFirst: 6, TotalSecond: 6}
	if m != want {
		t.Errorf("Add() = %+v, want %+v", m, want)
	}
}

func TestEvaluatorMaxK(t *testing.T) {
	e := NewEvaluator([]int{5, 20, 10})
	if got := e.MaxK(); got != 20 {
		t.Errorf("MaxK() = %d, want 20", got)
	}

	e = NewEvaluator(nil)
	if got := e.MaxK(); got != 20 {
		t.Errorf("MaxK() with defaults = %d, want 20", got)
	}
}
