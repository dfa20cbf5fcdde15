package evaluation

import (
	"math"
	"testing"
)

func rankedList(ids ...string) []RankedResult {
	results := make([]RankedResult, len(ids))
	for i, id := range ids {
		results[i] = RankedResult{DocID: id, Score: 1.0 - float64(i)*0.1}
	}
	return results
}

func set(ids ...string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPrecisionAtK(t *testing.T) {
	tests := []struct {
		name     string
		results  []RankedResult
		relevant map[string]bool
		k        int
		want     float64
	}{
		{"two of three relevant", rankedList("A", "B", "C"), set("A", "C"), 3, 2.0 / 3.0},
		{"no overlap", rankedList("A", "B", "C"), set("D"), 3, 0.0},
		{"empty results", nil, set("A"), 5, 0.0},
		{"k zero", rankedList("A"), set("A"), 0, 0.0},
		{"fewer results than k uses retrieved count", rankedList("A", "B"), set("A"), 10, 0.5},
		{"k truncates", rankedList("A", "B", "C", "D"), set("D"), 2, 0.0},
		{"all relevant", rankedList("A", "B"), set("A", "B"), 2, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrecisionAtK(tt.results, tt.relevant, tt.k)
			if !almostEqual(got, tt.want) {
				t.Errorf("PrecisionAtK() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("PrecisionAtK() = %v, outside [0,1]", got)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name          string
		results       []RankedResult
		relevant      map[string]bool
		k             int
		totalRelevant int
		want          float64
	}{
		{"all relevant found", rankedList("A", "B", "C"), set("A", "C"), 3, 2, 1.0},
		{"half found", rankedList("A", "B"), set("A", "Z"), 2, 2, 0.5},
		{"zero total relevant", rankedList("A"), nil, 5, 0, 0.0},
		{"empty results", nil, set("A"), 5, 1, 0.0},
		{"no overlap", rankedList("A", "B", "C"), set("D"), 3, 1, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecallAtK(tt.results, tt.relevant, tt.k, tt.totalRelevant)
			if !almostEqual(got, tt.want) {
				t.Errorf("RecallAtK() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecallMonotonicInK(t *testing.T) {
	results := rankedList("A", "B", "C", "D", "E", "F")
	relevant := set("B", "D", "F")

	prev := 0.0
	for k := 1; k <= len(results)+2; k++ {
		got := RecallAtK(results, relevant, k, len(relevant))
		if got < prev {
			t.Fatalf("recall decreased at k=%d: %v < %v", k, got, prev)
		}
		prev = got
	}
}

func TestF1AtK(t *testing.T) {
	results := rankedList("A", "B", "C", "D")
	relevant := set("A", "B")

	// Precision@4 = 0.5, Recall@4 = 1.0 -> F1 = 2*0.5*1.0/1.5
	got := F1AtK(results, relevant, 4, 2)
	want := 2 * 0.5 * 1.0 / 1.5
	if !almostEqual(got, want) {
		t.Errorf("F1AtK() = %v, want %v", got, want)
	}

	if got := F1AtK(nil, relevant, 4, 2); got != 0.0 {
		t.Errorf("F1AtK(empty) = %v, want 0.0", got)
	}
	if got := F1AtK(results, set("Z"), 4, 1); got != 0.0 {
		t.Errorf("F1AtK(no overlap) = %v, want 0.0", got)
	}
}

func TestNDCGAtK(t *testing.T) {
	t.Run("perfect ranking scores 1.0", func(t *testing.T) {
		results := rankedList("A", "B", "C")
		relevant := set("A", "B", "C")
		if got := NDCGAtK(results, relevant, 3); !almostEqual(got, 1.0) {
			t.Errorf("NDCGAtK() = %v, want 1.0", got)
		}
	})

	t.Run("relevant hit at rank 2 only", func(t *testing.T) {
		results := rankedList("A", "B")
		relevant := set("B")
		// DCG = 1/log2(3); IDCG = 1/log2(2) = 1
		want := 1.0 / math.Log2(3)
		if got := NDCGAtK(results, relevant, 2); !almostEqual(got, want) {
			t.Errorf("NDCGAtK() = %v, want %v", got, want)
		}
	})

	t.Run("later rank scores lower", func(t *testing.T) {
		relevant := set("X")
		early := NDCGAtK(rankedList("X", "A", "B"), relevant, 3)
		late := NDCGAtK(rankedList("A", "B", "X"), relevant, 3)
		if early <= late {
			t.Errorf("earlier hit should score higher: %v <= %v", early, late)
		}
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		if got := NDCGAtK(nil, set("A"), 5); got != 0.0 {
			t.Errorf("NDCGAtK(empty results) = %v, want 0.0", got)
		}
		if got := NDCGAtK(rankedList("A"), set("B"), 5); got != 0.0 {
			t.Errorf("NDCGAtK(no overlap) = %v, want 0.0", got)
		}
		if got := NDCGAtK(rankedList("A"), set("A"), 0); got != 0.0 {
			t.Errorf("NDCGAtK(k=0) = %v, want 0.0", got)
		}
	})
}

func TestMRR(t *testing.T) {
	tests := []struct {
		name     string
		results  []RankedResult
		relevant map[string]bool
		want     float64
	}{
		{"first result relevant", rankedList("A", "B"), set("A"), 1.0},
		{"third result relevant", rankedList("A", "B", "C"), set("C"), 1.0 / 3.0},
		{"no relevant", rankedList("A", "B"), set("Z"), 0.0},
		{"empty results", nil, set("A"), 0.0},
		{"hit beyond any k cutoff still counts", rankedList("A", "B", "C", "D", "E", "F", "G"), set("G"), 1.0 / 7.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MRR(tt.results, tt.relevant); !almostEqual(got, tt.want) {
				t.Errorf("MRR() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMAPScore(t *testing.T) {
	t.Run("contiguous relevant at top scores 1.0", func(t *testing.T) {
		results := rankedList("B", "A", "C", "D")
		relevant := set("A", "B")
		if got := MAPScore(results, relevant, 0); !almostEqual(got, 1.0) {
			t.Errorf("MAPScore() = %v, want 1.0", got)
		}
	})

	t.Run("interleaved hits", func(t *testing.T) {
		// Hits at ranks 1 and 3: (1/1 + 2/3) / 2
		results := rankedList("A", "X", "B")
		relevant := set("A", "B")
		want := (1.0 + 2.0/3.0) / 2.0
		if got := MAPScore(results, relevant, 0); !almostEqual(got, want) {
			t.Errorf("MAPScore() = %v, want %v", got, want)
		}
	})

	t.Run("denominator stays full relevance set under truncation", func(t *testing.T) {
		// Perfect top-2 but 4 relevant docs: k=2 caps the score at 0.5.
		results := rankedList("A", "B", "C", "D")
		relevant := set("A", "B", "C", "D")
		if got := MAPScore(results, relevant, 2); !almostEqual(got, 0.5) {
			t.Errorf("MAPScore() = %v, want 0.5", got)
		}
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		if got := MAPScore(nil, set("A"), 0); got != 0.0 {
			t.Errorf("MAPScore(empty results) = %v, want 0.0", got)
		}
		if got := MAPScore(rankedList("A"), nil, 0); got != 0.0 {
			t.Errorf("MAPScore(empty relevant) = %v, want 0.0", got)
		}
		if got := MAPScore(rankedList("A", "B"), set("Z"), 0); got != 0.0 {
			t.Errorf("MAPScore(no overlap) = %v, want 0.0", got)
		}
	})
}
