// Package bus provides event bus implementations for pipeline notifications.
// Stages of the scrape/process/index pipeline publish lifecycle events that
// other components (analytics, logging, external consumers via Kafka) can
// subscribe to.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type, usually the topic it is published to.
	Type string `json:"type"`

	// Source is the component that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created (unix milliseconds).
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// NewEvent creates an event with a fresh ID and timestamp.
func NewEvent(eventType, source string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
}

// Pipeline topics.
const (
	// Scraper topics.
	TopicDocumentDiscovered = "scrape.document.discovered"
	TopicDocumentDownloaded = "scrape.document.downloaded"
	TopicDocumentFiltered   = "scrape.document.filtered"

	// Processor topics.
	TopicDocumentProcessed = "process.document.processed"
	TopicDocumentSkipped   = "process.document.skipped"

	// Indexer topics.
	TopicDocumentIndexed = "index.document.indexed"
	TopicIndexingFailed  = "index.document.failed"

	// Search topics.
	TopicSearchPerformed = "search.performed"
)
