package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sarkarisearch/sarkari-search/internal/index"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

type fakeIndexer struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakeIndexer) IndexFiles(_ context.Context, paths []string) (*index.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, paths)
	return &index.Result{Indexed: len(paths)}, nil
}

func TestIndexable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"downloads/rbi/circular.pdf", true},
		{"downloads/rbi/CIRCULAR.PDF", true},
		{"downloads/rbi/circular.pdf.part", false},
		{"downloads/rbi/.hidden.pdf", false},
		{"downloads/rbi/notes.txt", false},
		{"downloads/rbi/archive.zip", false},
	}

	for _, tt := range tests {
		if got := Indexable(tt.path); got != tt.want {
			t.Errorf("Indexable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestBatchDebounce(t *testing.T) {
	indexer := &fakeIndexer{}
	w := New(Config{Dir: t.TempDir(), BatchDelay: 50 * time.Millisecond}, indexer, logger.New("error", "text"))

	// Duplicate events for one file collapse into a single entry.
	w.enqueue("downloads/rbi/a.pdf")
	w.enqueue("downloads/rbi/a.pdf")
	w.enqueue("downloads/rbi/b.pdf")

	deadline := time.After(2 * time.Second)
	for {
		indexer.mu.Lock()
		n := len(indexer.calls)
		indexer.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("batch never flushed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	indexer.mu.Lock()
	defer indexer.mu.Unlock()
	if len(indexer.calls) != 1 {
		t.Fatalf("calls = %d, expected 1 batch", len(indexer.calls))
	}
	if len(indexer.calls[0]) != 2 {
		t.Errorf("batch size = %d, expected 2 deduped paths", len(indexer.calls[0]))
	}
}

func TestFlushEmptyBatch(t *testing.T) {
	indexer := &fakeIndexer{}
	w := New(Config{Dir: t.TempDir()}, indexer, logger.New("error", "text"))

	w.flush()

	indexer.mu.Lock()
	defer indexer.mu.Unlock()
	if len(indexer.calls) != 0 {
		t.Errorf("empty flush should not call the indexer, got %d calls", len(indexer.calls))
	}
}
