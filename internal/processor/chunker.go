package processor

import "strings"

// avgCharsPerWord approximates one word as five characters plus a space, used
// to convert word-based sizing into character offsets without splitting the
// whole text into a word list.
const avgCharsPerWord = 6

const (
	backwardBoundarySearch = 200
	forwardBoundarySearch  = 100
)

// ChunkerConfig holds chunking settings, both in words.
type ChunkerConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultChunkerConfig returns the standard 500-word chunks with 100-word
// overlap.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize:    500,
		ChunkOverlap: 100,
	}
}

// Chunker splits document text into overlapping chunks on word boundaries.
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a chunker. A zero ChunkSize falls back to defaults.
func NewChunker(cfg ChunkerConfig) *Chunker {
	if cfg.ChunkSize == 0 {
		cfg = DefaultChunkerConfig()
	}
	return &Chunker{config: cfg}
}

// Split chunks text into overlapping pieces. It works on character offsets
// with boundary snapping rather than materializing a full word list, so large
// documents chunk in one pass over the text.
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	chunkChars := c.config.ChunkSize * avgCharsPerWord
	overlapChars := c.config.ChunkOverlap * avgCharsPerWord

	// Whole document fits in a single chunk.
	if (len(text)/avgCharsPerWord)+1 <= c.config.ChunkSize {
		return []Chunk{{ChunkID: 0, Text: text, Page: pageOf(text)}}
	}

	var chunks []Chunk
	chunkID := 0
	start := 0
	textLen := len(text)

	for start < textLen {
		end := min(start+chunkChars, textLen)

		// Snap the cut to a word boundary.
		if end < textLen {
			searchStart := max(start, end-backwardBoundarySearch)
			lastBreak := strings.LastIndexByte(text[searchStart:end], ' ')
			if lastBreak == -1 {
				lastBreak = strings.LastIndexByte(text[searchStart:end], '\n')
			}
			if lastBreak > 0 {
				end = searchStart + lastBreak + 1
			} else if next := indexByteWithin(text, ' ', end, forwardBoundarySearch); next != -1 {
				end = next + 1
			}
		}

		chunkText := strings.TrimSpace(text[start:end])
		if chunkText != "" {
			// Undersized chunks extend to the next boundary so tiny
			// fragments don't pollute the index.
			if len(strings.Fields(chunkText)) < c.config.ChunkSize/2 && end < textLen {
				if next := indexByteWithin(text, ' ', end, chunkChars); next != -1 {
					chunkText = strings.TrimSpace(text[start : next+1])
					end = next + 1
				}
			}

			chunks = append(chunks, Chunk{ChunkID: chunkID, Text: chunkText, Page: pageOf(chunkText)})
			chunkID++
		}

		if end >= textLen {
			break
		}

		// Step back by the overlap, snapped forward to a word start.
		overlapStart := max(start, end-overlapChars)
		nextStart := end
		if overlapStart < end {
			if space := indexByteWithin(text, ' ', overlapStart, backwardBoundarySearch); space != -1 && space < end {
				nextStart = space + 1
			} else if ws := firstNonSpaceWithin(text, overlapStart, backwardBoundarySearch); ws != -1 {
				nextStart = ws
			}
		}

		// Guard against a non-advancing window.
		if nextStart <= start {
			nextStart = end + 1
		}
		start = nextStart
	}

	if len(chunks) == 0 {
		return []Chunk{{ChunkID: 0, Text: text, Page: pageOf(text)}}
	}

	return chunks
}

// indexByteWithin finds b in text starting at from, scanning at most window
// bytes. Returns -1 when absent.
func indexByteWithin(text string, b byte, from, window int) int {
	to := min(from+window, len(text))
	if from >= to {
		return -1
	}
	idx := strings.IndexByte(text[from:to], b)
	if idx == -1 {
		return -1
	}
	return from + idx
}

// firstNonSpaceWithin finds the first non-whitespace byte at or after from,
// scanning at most window bytes.
func firstNonSpaceWithin(text string, from, window int) int {
	to := min(from+window, len(text))
	for i := from; i < to; i++ {
		if text[i] != ' ' && text[i] != '\n' && text[i] != '\t' {
			return i
		}
	}
	return -1
}
