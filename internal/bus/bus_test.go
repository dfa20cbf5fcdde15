package bus

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "text")
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(TopicDocumentIndexed, "indexer", map[string]int{"chunks": 5})

	if e.ID == "" {
		t.Error("event should get an ID")
	}
	if e.Type != TopicDocumentIndexed {
		t.Errorf("type = %q", e.Type)
	}
	if e.Source != "indexer" {
		t.Errorf("source = %q", e.Source)
	}
	if e.Timestamp == 0 {
		t.Error("event should get a timestamp")
	}
	if e.ID == NewEvent(TopicDocumentIndexed, "indexer", nil).ID {
		t.Error("event IDs should be unique")
	}
}

func TestMemoryBusPublishSubscribe(t *testing.T) {
	b := NewMemoryBus(testLogger())
	defer b.Close()

	var mu sync.Mutex
	var received []Event

	err := b.Subscribe(context.Background(), TopicDocumentDownloaded, func(_ context.Context, e Event) error {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	event := NewEvent(TopicDocumentDownloaded, "scraper", nil)
	if err := b.Publish(context.Background(), TopicDocumentDownloaded, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if !b.Drain(time.Second) {
		t.Fatal("handlers did not drain")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0].ID != event.ID {
		t.Errorf("received = %+v", received)
	}
}

func TestMemoryBusNoSubscribers(t *testing.T) {
	b := NewMemoryBus(testLogger())
	defer b.Close()

	if err := b.Publish(context.Background(), TopicSearchPerformed, NewEvent(TopicSearchPerformed, "search", nil)); err != nil {
		t.Errorf("publish without subscribers should succeed: %v", err)
	}
}

func TestMemoryBusFanOut(t *testing.T) {
	b := NewMemoryBus(testLogger())
	defer b.Close()

	var count sync.WaitGroup
	count.Add(3)
	for i := 0; i < 3; i++ {
		b.Subscribe(context.Background(), TopicDocumentProcessed, func(context.Context, Event) error {
			count.Done()
			return nil
		})
	}

	b.Publish(context.Background(), TopicDocumentProcessed, NewEvent(TopicDocumentProcessed, "processor", nil))

	done := make(chan struct{})
	go func() {
		count.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all subscribers received the event")
	}
}

func TestMemoryBusHandlerErrorDoesNotFailPublish(t *testing.T) {
	b := NewMemoryBus(testLogger())
	defer b.Close()

	b.Subscribe(context.Background(), TopicIndexingFailed, func(context.Context, Event) error {
		return errors.New("handler boom")
	})

	if err := b.Publish(context.Background(), TopicIndexingFailed, NewEvent(TopicIndexingFailed, "indexer", nil)); err != nil {
		t.Errorf("publish should not surface handler errors: %v", err)
	}
	b.Drain(time.Second)
}

func TestMemoryBusClosed(t *testing.T) {
	b := NewMemoryBus(testLogger())
	b.Close()

	if err := b.Publish(context.Background(), TopicDocumentIndexed, Event{}); err == nil {
		t.Error("publish on closed bus should fail")
	}
	if err := b.Subscribe(context.Background(), TopicDocumentIndexed, nil); err == nil {
		t.Error("subscribe on closed bus should fail")
	}
}

func TestEventLogAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events", "pipeline.jsonl")

	elog, err := OpenEventLog(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	first := NewEvent(TopicDocumentDownloaded, "scraper", map[string]string{"source": "rbi"})
	second := NewEvent(TopicDocumentIndexed, "indexer", nil)
	if err := elog.Append(TopicDocumentDownloaded, first); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := elog.Append(TopicDocumentIndexed, second); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := elog.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	events, err := ReadEventLog(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, expected 2", len(events))
	}
	if events[0].Event.ID != first.ID || events[0].Topic != TopicDocumentDownloaded {
		t.Errorf("first entry = %+v", events[0])
	}
	if events[1].Event.ID != second.ID {
		t.Errorf("second entry = %+v", events[1])
	}
}

func TestLoggedBusRecordsPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	elog, err := OpenEventLog(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	b := NewLoggedBus(NewMemoryBus(testLogger()), elog, testLogger())

	event := NewEvent(TopicDocumentProcessed, "processor", nil)
	if err := b.Publish(context.Background(), TopicDocumentProcessed, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	events, err := ReadEventLog(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(events) != 1 || events[0].Event.ID != event.ID {
		t.Errorf("events = %+v", events)
	}
}

// countingRecorder counts publish metrics for the instrumented bus test.
type countingRecorder struct {
	mu       sync.Mutex
	publishs int
	failures int
}

func (r *countingRecorder) RecordBusPublish(_ string, _ int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishs++
	if err != nil {
		r.failures++
	}
}

func TestInstrumentedBus(t *testing.T) {
	rec := &countingRecorder{}
	inner := NewMemoryBus(testLogger())
	b := NewInstrumentedBus(inner, rec)
	defer b.Close()

	b.Publish(context.Background(), TopicSearchPerformed, NewEvent(TopicSearchPerformed, "search", nil))

	inner.Close()
	b.Publish(context.Background(), TopicSearchPerformed, NewEvent(TopicSearchPerformed, "search", nil))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.publishs != 2 {
		t.Errorf("publishes = %d, expected 2", rec.publishs)
	}
	if rec.failures != 1 {
		t.Errorf("failures = %d, expected 1", rec.failures)
	}
}
