package processor

import (
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestSplitEmptyText(t *testing.T) {
	c := NewChunker(DefaultChunkerConfig())
	if got := c.Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
}

func TestSplitSmallTextSingleChunk(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 100, ChunkOverlap: 20})

	text := words(50)
	chunks := c.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Error("single chunk should carry the full text")
	}
	if chunks[0].ChunkID != 0 {
		t.Errorf("ChunkID = %d, want 0", chunks[0].ChunkID)
	}
}

func TestSplitLargeText(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 100, ChunkOverlap: 20})

	chunks := c.Split(words(1000))

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want multiple chunks", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.ChunkID != i {
			t.Errorf("chunks[%d].ChunkID = %d, want %d", i, chunk.ChunkID, i)
		}
		if chunk.Text == "" {
			t.Errorf("chunks[%d] is empty", i)
		}
		if strings.TrimSpace(chunk.Text) != chunk.Text {
			t.Errorf("chunks[%d] has surrounding whitespace", i)
		}
	}
}

func TestSplitBreaksOnWordBoundaries(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 50, ChunkOverlap: 10})

	chunks := c.Split(words(500))

	for i, chunk := range chunks {
		for _, w := range strings.Fields(chunk.Text) {
			if w != "word" {
				t.Fatalf("chunks[%d] contains split word %q", i, w)
			}
		}
	}
}

func TestSplitCoversAllText(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 100, ChunkOverlap: 20})

	// Numbered words so coverage gaps are detectable.
	var b strings.Builder
	for i := 0; i < 800; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("w")
		b.WriteString(strings.Repeat("x", i%5))
	}
	text := b.String()

	chunks := c.Split(text)

	var total int
	for _, chunk := range chunks {
		total += len(strings.Fields(chunk.Text))
	}

	// Overlap means the sum exceeds the original word count; it must never
	// fall short of it.
	if original := len(strings.Fields(text)); total < original {
		t.Errorf("chunks cover %d words, original has %d", total, original)
	}
}

func TestSplitNoSpacesTerminates(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 50, ChunkOverlap: 10})

	// One giant token with no boundaries anywhere.
	chunks := c.Split(strings.Repeat("a", 5000))

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
}

func TestSplitCarriesPageMarker(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 100, ChunkOverlap: 10})

	chunks := c.Split("[Page 3]\n" + words(40))

	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].Page != 3 {
		t.Errorf("Page = %d, want 3", chunks[0].Page)
	}
}

func TestDefaultChunkerConfig(t *testing.T) {
	cfg := DefaultChunkerConfig()
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 100 {
		t.Errorf("DefaultChunkerConfig() = %+v, want {500 100}", cfg)
	}

	// Zero config falls back to defaults.
	c := NewChunker(ChunkerConfig{})
	if c.config.ChunkSize != 500 {
		t.Errorf("zero config ChunkSize = %d, want 500", c.config.ChunkSize)
	}
}
