// Package qdrant wraps the Qdrant Go client with simplified APIs for
// government-document storage and retrieval.
package qdrant

import "time"

// CollectionConfig defines the configuration for creating a collection.
type CollectionConfig struct {
	// Name is the collection name (stored with the configured prefix).
	Name string

	// VectorSize is the dense embedding dimension (384 for MiniLM models).
	VectorSize uint64

	// OnDiskPayload stores payload on disk to save RAM.
	OnDiskPayload bool

	// IndexingThreshold is the number of vectors before HNSW index is built.
	IndexingThreshold uint64
}

// DefaultCollectionConfig returns sensible defaults for a document collection.
func DefaultCollectionConfig(name string) CollectionConfig {
	return CollectionConfig{
		Name:              name,
		VectorSize:        384,
		OnDiskPayload:     true,
		IndexingThreshold: 20000,
	}
}

// Point is a chunk to upsert.
type Point struct {
	// ID is the unique point identifier (UUID derived from doc_id + chunk_id).
	ID string

	// Vector is the chunk's dense embedding.
	Vector []float32

	// Payload is the searchable chunk metadata.
	Payload PointPayload
}

// PointPayload is the searchable metadata stored with each chunk.
type PointPayload struct {
	DocID     string    `json:"doc_id"`
	ChunkID   int       `json:"chunk_id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Section   string    `json:"section"`
	Date      string    `json:"date,omitempty"`
	Text      string    `json:"text"`
	Page      int       `json:"page,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	IndexedAt time.Time `json:"indexed_at"`
}

// SearchFilter constrains searches and scrolls by document metadata.
type SearchFilter struct {
	// Sources filters by agency tag.
	Sources []string

	// Section filters by document section.
	Section string

	// DocID filters to one document's chunks.
	DocID string

	// TextContains applies a full-text match on the chunk text. Used to pull
	// keyword candidates for client-side scoring.
	TextContains string
}

// SearchRequest defines parameters for a dense search.
type SearchRequest struct {
	Vector         []float32
	Limit          uint64
	Filter         *SearchFilter
	WithPayload    bool
	ScoreThreshold *float32
}

// SearchResult is a single scored chunk.
type SearchResult struct {
	ID      string
	Score   float32
	Payload PointPayload
}

// DeleteFilter defines conditions for deleting points.
type DeleteFilter struct {
	// IDs deletes specific point IDs.
	IDs []string

	// DocID deletes every chunk of one document.
	DocID string

	// Source deletes every chunk from one agency.
	Source string
}

// CollectionInfo describes a collection's state.
type CollectionInfo struct {
	Name        string
	PointsCount uint64
	Status      string
}
