package bus

import (
	"context"
	"time"
)

// PublishRecorder records publish metrics. Declared here to avoid an import
// cycle with the metrics package.
type PublishRecorder interface {
	RecordBusPublish(topic string, latencyMs int64, err error)
}

// InstrumentedBus wraps a Bus and records publish latency and failures.
type InstrumentedBus struct {
	inner    Bus
	recorder PublishRecorder
}

// NewInstrumentedBus creates an instrumented bus.
func NewInstrumentedBus(inner Bus, recorder PublishRecorder) *InstrumentedBus {
	return &InstrumentedBus{inner: inner, recorder: recorder}
}

// Publish publishes an event and records the outcome.
func (b *InstrumentedBus) Publish(ctx context.Context, topic string, event Event) error {
	start := time.Now()
	err := b.inner.Publish(ctx, topic, event)

	if b.recorder != nil {
		b.recorder.RecordBusPublish(topic, time.Since(start).Milliseconds(), err)
	}

	return err
}

// Subscribe delegates to the inner bus.
func (b *InstrumentedBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.inner.Subscribe(ctx, topic, handler)
}

// Close delegates to the inner bus.
func (b *InstrumentedBus) Close() error {
	return b.inner.Close()
}
