// Package metrics provides lightweight application metrics and search
// analytics, exposed in Prometheus text format and as JSON.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Counter is a monotonically increasing counter.
type Counter struct {
	name   string
	help   string
	value  int64
	labels map[string]string
}

// NewCounter creates a counter.
func NewCounter(name, help string, labels map[string]string) *Counter {
	return &Counter{name: name, help: help, labels: labels}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	atomic.AddInt64(&c.value, 1)
}

// Add adds delta to the counter. Negative deltas are ignored.
func (c *Counter) Add(delta int64) {
	if delta < 0 {
		return
	}
	atomic.AddInt64(&c.value, delta)
}

// Value returns the current value.
func (c *Counter) Value() int64 {
	return atomic.LoadInt64(&c.value)
}

// Name returns the metric name.
func (c *Counter) Name() string { return c.name }

// Help returns the metric help text.
func (c *Counter) Help() string { return c.help }

// Gauge is a value that can go up and down.
type Gauge struct {
	name  string
	help  string
	value int64
}

// NewGauge creates a gauge.
func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

// Set sets the gauge value.
func (g *Gauge) Set(value int64) {
	atomic.StoreInt64(&g.value, value)
}

// Value returns the current value.
func (g *Gauge) Value() int64 {
	return atomic.LoadInt64(&g.value)
}

// Name returns the metric name.
func (g *Gauge) Name() string { return g.name }

// Help returns the metric help text.
func (g *Gauge) Help() string { return g.help }

// Histogram tracks value distribution in cumulative buckets.
type Histogram struct {
	name    string
	help    string
	buckets []float64
	labels  map[string]string

	mu     sync.Mutex
	counts []int64
	sum    float64
	count  int64
}

// NewHistogram creates a histogram. Nil buckets get millisecond defaults.
func NewHistogram(name, help string, buckets []float64) *Histogram {
	if len(buckets) == 0 {
		buckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}
	}
	sort.Float64s(buckets)

	return &Histogram{
		name:    name,
		help:    help,
		buckets: buckets,
		counts:  make([]int64, len(buckets)+1), // last slot is +Inf
	}
}

// Observe records one observation.
func (h *Histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += value
	h.count++

	idx := len(h.buckets)
	for i, bucket := range h.buckets {
		if value <= bucket {
			idx = i
			break
		}
	}
	for i := idx; i < len(h.counts); i++ {
		h.counts[i]++
	}
}

// Count returns the number of observations.
func (h *Histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Sum returns the sum of observed values.
func (h *Histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// Buckets returns the bucket upper bounds.
func (h *Histogram) Buckets() []float64 {
	out := make([]float64, len(h.buckets))
	copy(out, h.buckets)
	return out
}

// BucketCounts returns cumulative counts per bucket (last is +Inf).
func (h *Histogram) BucketCounts() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int64, len(h.counts))
	copy(out, h.counts)
	return out
}

// Name returns the metric name.
func (h *Histogram) Name() string { return h.name }

// Help returns the metric help text.
func (h *Histogram) Help() string { return h.help }

// CounterVec is a counter family keyed by label values.
type CounterVec struct {
	name       string
	help       string
	labelNames []string

	mu       sync.RWMutex
	counters map[string]*Counter
}

// NewCounterVec creates a counter vector.
func NewCounterVec(name, help string, labelNames []string) *CounterVec {
	return &CounterVec{
		name:       name,
		help:       help,
		labelNames: labelNames,
		counters:   make(map[string]*Counter),
	}
}

// WithLabels returns the counter for the given label values, creating it on
// first use.
func (cv *CounterVec) WithLabels(labelValues ...string) *Counter {
	if len(labelValues) != len(cv.labelNames) {
		panic(fmt.Sprintf("metric %s: expected %d label values, got %d", cv.name, len(cv.labelNames), len(labelValues)))
	}

	labels := make(map[string]string, len(cv.labelNames))
	for i, name := range cv.labelNames {
		labels[name] = labelValues[i]
	}
	key := labelsToKey(labels)

	cv.mu.RLock()
	counter, ok := cv.counters[key]
	cv.mu.RUnlock()
	if ok {
		return counter
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if counter, ok := cv.counters[key]; ok {
		return counter
	}
	counter = NewCounter(cv.name, cv.help, labels)
	cv.counters[key] = counter
	return counter
}

// All returns every counter in the family.
func (cv *CounterVec) All() []*Counter {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	out := make([]*Counter, 0, len(cv.counters))
	for _, c := range cv.counters {
		out = append(out, c)
	}
	return out
}

// Name returns the metric name.
func (cv *CounterVec) Name() string { return cv.name }

// Help returns the metric help text.
func (cv *CounterVec) Help() string { return cv.help }

// HistogramVec is a histogram family keyed by label values.
type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64

	mu         sync.RWMutex
	histograms map[string]*Histogram
}

// NewHistogramVec creates a histogram vector.
func NewHistogramVec(name, help string, labelNames []string, buckets []float64) *HistogramVec {
	return &HistogramVec{
		name:       name,
		help:       help,
		labelNames: labelNames,
		buckets:    buckets,
		histograms: make(map[string]*Histogram),
	}
}

// WithLabels returns the histogram for the given label values.
func (hv *HistogramVec) WithLabels(labelValues ...string) *Histogram {
	if len(labelValues) != len(hv.labelNames) {
		panic(fmt.Sprintf("metric %s: expected %d label values, got %d", hv.name, len(hv.labelNames), len(labelValues)))
	}

	labels := make(map[string]string, len(hv.labelNames))
	for i, name := range hv.labelNames {
		labels[name] = labelValues[i]
	}
	key := labelsToKey(labels)

	hv.mu.RLock()
	histogram, ok := hv.histograms[key]
	hv.mu.RUnlock()
	if ok {
		return histogram
	}

	hv.mu.Lock()
	defer hv.mu.Unlock()
	if histogram, ok := hv.histograms[key]; ok {
		return histogram
	}
	histogram = NewHistogram(hv.name, hv.help, hv.buckets)
	histogram.labels = labels
	hv.histograms[key] = histogram
	return histogram
}

// All returns every histogram in the family.
func (hv *HistogramVec) All() []*Histogram {
	hv.mu.RLock()
	defer hv.mu.RUnlock()
	out := make([]*Histogram, 0, len(hv.histograms))
	for _, h := range hv.histograms {
		out = append(out, h)
	}
	return out
}

// Name returns the metric name.
func (hv *HistogramVec) Name() string { return hv.name }

// Help returns the metric help text.
func (hv *HistogramVec) Help() string { return hv.help }

// labelsToKey builds a stable map key from labels.
func labelsToKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(labels[k])
	}
	return sb.String()
}
