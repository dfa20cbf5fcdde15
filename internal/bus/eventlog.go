package bus

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

// LoggedEvent is one line of the on-disk event log.
type LoggedEvent struct {
	Event     Event     `json:"event"`
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

// EventLog appends events to a JSON-lines file, giving the pipeline an audit
// trail of what was scraped, processed and indexed.
type EventLog struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// OpenEventLog opens (or creates) an event log at path.
func OpenEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "failed to create event log directory", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "failed to open event log", err)
	}

	return &EventLog{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Append writes one event to the log.
func (l *EventLog) Append(topic string, event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return errors.New(errors.CodeUnavailable, "event log is closed")
	}

	return l.encoder.Encode(LoggedEvent{
		Event:     event,
		Topic:     topic,
		Timestamp: time.Now().UTC(),
	})
}

// Close closes the underlying file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ReadEventLog loads all events from a log file, for replay and debugging.
func ReadEventLog(path string) ([]LoggedEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, "failed to open event log", err)
	}
	defer file.Close()

	var events []LoggedEvent
	decoder := json.NewDecoder(file)
	for decoder.More() {
		var le LoggedEvent
		if err := decoder.Decode(&le); err != nil {
			return nil, errors.Wrap(errors.CodeInternal, "failed to decode event log entry", err)
		}
		events = append(events, le)
	}
	return events, nil
}

// LoggedBus wraps another Bus and records every published event to an
// EventLog. Logging is best-effort; a log failure never fails the publish.
type LoggedBus struct {
	inner Bus
	elog  *EventLog
	log   *logger.Logger
}

// NewLoggedBus wraps inner with event logging.
func NewLoggedBus(inner Bus, elog *EventLog, log *logger.Logger) *LoggedBus {
	if log == nil {
		log = logger.Default()
	}
	return &LoggedBus{inner: inner, elog: elog, log: log}
}

// Publish records the event and delegates to the inner bus.
func (b *LoggedBus) Publish(ctx context.Context, topic string, event Event) error {
	if err := b.elog.Append(topic, event); err != nil {
		b.log.WithError(err).Warn("failed to record event", "topic", topic)
	}
	return b.inner.Publish(ctx, topic, event)
}

// Subscribe delegates to the inner bus.
func (b *LoggedBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.inner.Subscribe(ctx, topic, handler)
}

// Close closes the event log and the inner bus.
func (b *LoggedBus) Close() error {
	logErr := b.elog.Close()
	if err := b.inner.Close(); err != nil {
		return err
	}
	return logErr
}
