package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

// Metrics holds the application's metrics.
type Metrics struct {
	// Search metrics.
	SearchRequests *CounterVec   // labels: strategy
	SearchLatency  *HistogramVec // labels: strategy
	SearchResults  *Histogram
	SearchErrors   *CounterVec // labels: code

	// Pipeline metrics.
	DocumentsDownloaded *CounterVec // labels: source
	DocumentsIndexed    *Counter
	ChunksIndexed       *Counter
	IndexErrors         *Counter

	// Bus metrics.
	BusEventsPublished *CounterVec   // labels: topic
	BusPublishLatency  *HistogramVec // labels: topic
	BusErrors          *CounterVec   // labels: topic

	// System metrics.
	Goroutines *Gauge

	analytics *QueryAnalytics
	startTime time.Time
}

// New creates a metrics instance with in-memory query analytics.
func New() *Metrics {
	return newMetrics(NewMemoryAnalytics())
}

// NewWithConfig creates a metrics instance with the configured analytics
// persistence ("memory" or "redis"). A failed Redis connection falls back to
// in-memory analytics.
func NewWithConfig(persistence, redisURL string, log *logger.Logger) *Metrics {
	if log == nil {
		log = logger.Default()
	}

	analytics := NewMemoryAnalytics()
	if persistence == "redis" && redisURL != "" {
		redisAnalytics, err := NewRedisAnalytics(redisURL)
		if err != nil {
			log.WithError(err).Warn("redis analytics unavailable, falling back to memory")
		} else {
			analytics = redisAnalytics
		}
	}

	return newMetrics(analytics)
}

func newMetrics(analytics *QueryAnalytics) *Metrics {
	return &Metrics{
		SearchRequests: NewCounterVec(
			"sarkari_search_requests_total",
			"Total number of search requests",
			[]string{"strategy"},
		),
		SearchLatency: NewHistogramVec(
			"sarkari_search_latency_ms",
			"Search request latency in milliseconds",
			[]string{"strategy"},
			[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		),
		SearchResults: NewHistogram(
			"sarkari_search_results",
			"Number of results per search",
			[]float64{0, 1, 5, 10, 20, 50, 100},
		),
		SearchErrors: NewCounterVec(
			"sarkari_search_errors_total",
			"Total number of search errors",
			[]string{"code"},
		),
		DocumentsDownloaded: NewCounterVec(
			"sarkari_documents_downloaded_total",
			"Total number of documents downloaded per agency",
			[]string{"source"},
		),
		DocumentsIndexed: NewCounter(
			"sarkari_documents_indexed_total",
			"Total number of documents indexed",
			nil,
		),
		ChunksIndexed: NewCounter(
			"sarkari_chunks_indexed_total",
			"Total number of chunks indexed",
			nil,
		),
		IndexErrors: NewCounter(
			"sarkari_index_errors_total",
			"Total number of indexing failures",
			nil,
		),
		BusEventsPublished: NewCounterVec(
			"sarkari_bus_events_published_total",
			"Total number of bus events published",
			[]string{"topic"},
		),
		BusPublishLatency: NewHistogramVec(
			"sarkari_bus_publish_latency_ms",
			"Bus publish latency in milliseconds",
			[]string{"topic"},
			[]float64{1, 2, 5, 10, 25, 50, 100, 250},
		),
		BusErrors: NewCounterVec(
			"sarkari_bus_errors_total",
			"Total number of bus publish failures",
			[]string{"topic"},
		),
		Goroutines: NewGauge(
			"sarkari_goroutines",
			"Number of running goroutines",
		),
		analytics: analytics,
		startTime: time.Now(),
	}
}

// RecordSearch records one search request.
func (m *Metrics) RecordSearch(ctx context.Context, strategy, query string, latencyMs int64, results int) {
	m.SearchRequests.WithLabels(strategy).Inc()
	m.SearchLatency.WithLabels(strategy).Observe(float64(latencyMs))
	m.SearchResults.Observe(float64(results))
	m.analytics.RecordQuery(ctx, query)
}

// RecordSearchError records one failed search request.
func (m *Metrics) RecordSearchError(code string) {
	m.SearchErrors.WithLabels(code).Inc()
}

// RecordDownload records one downloaded document.
func (m *Metrics) RecordDownload(source string) {
	m.DocumentsDownloaded.WithLabels(source).Inc()
}

// RecordIndexed records an indexing run's outcome.
func (m *Metrics) RecordIndexed(documents, chunks, failed int) {
	m.DocumentsIndexed.Add(int64(documents))
	m.ChunksIndexed.Add(int64(chunks))
	m.IndexErrors.Add(int64(failed))
}

// RecordBusPublish implements bus.PublishRecorder.
func (m *Metrics) RecordBusPublish(topic string, latencyMs int64, err error) {
	m.BusEventsPublished.WithLabels(topic).Inc()
	m.BusPublishLatency.WithLabels(topic).Observe(float64(latencyMs))
	if err != nil {
		m.BusErrors.WithLabels(topic).Inc()
	}
}

// TopQueries returns the most frequent search queries.
func (m *Metrics) TopQueries(ctx context.Context, limit int) ([]QueryCount, error) {
	return m.analytics.TopQueries(ctx, limit)
}

// Uptime returns time since the metrics instance was created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// UpdateSystem refreshes system gauges.
func (m *Metrics) UpdateSystem() {
	m.Goroutines.Set(int64(runtime.NumGoroutine()))
}

// Close releases analytics resources.
func (m *Metrics) Close() error {
	return m.analytics.Close()
}
