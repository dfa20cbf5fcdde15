package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WritePrometheus writes all metrics in Prometheus text exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.UpdateSystem()

	writeCounterVec(w, m.SearchRequests)
	writeHistogramVec(w, m.SearchLatency)
	writeHistogram(w, m.SearchResults)
	writeCounterVec(w, m.SearchErrors)
	writeCounterVec(w, m.DocumentsDownloaded)
	writeCounter(w, m.DocumentsIndexed)
	writeCounter(w, m.ChunksIndexed)
	writeCounter(w, m.IndexErrors)
	writeCounterVec(w, m.BusEventsPublished)
	writeHistogramVec(w, m.BusPublishLatency)
	writeCounterVec(w, m.BusErrors)
	writeGauge(w, m.Goroutines)
}

func writeCounter(w io.Writer, c *Counter) {
	fmt.Fprintf(w, "# HELP %s %s\n", c.Name(), c.Help())
	fmt.Fprintf(w, "# TYPE %s counter\n", c.Name())
	fmt.Fprintf(w, "%s%s %d\n", c.Name(), formatLabels(c.labels), c.Value())
}

func writeGauge(w io.Writer, g *Gauge) {
	fmt.Fprintf(w, "# HELP %s %s\n", g.Name(), g.Help())
	fmt.Fprintf(w, "# TYPE %s gauge\n", g.Name())
	fmt.Fprintf(w, "%s %d\n", g.Name(), g.Value())
}

func writeCounterVec(w io.Writer, cv *CounterVec) {
	fmt.Fprintf(w, "# HELP %s %s\n", cv.Name(), cv.Help())
	fmt.Fprintf(w, "# TYPE %s counter\n", cv.Name())
	for _, c := range sortedCounters(cv) {
		fmt.Fprintf(w, "%s%s %d\n", c.Name(), formatLabels(c.labels), c.Value())
	}
}

func writeHistogram(w io.Writer, h *Histogram) {
	fmt.Fprintf(w, "# HELP %s %s\n", h.Name(), h.Help())
	fmt.Fprintf(w, "# TYPE %s histogram\n", h.Name())
	writeHistogramSeries(w, h)
}

func writeHistogramVec(w io.Writer, hv *HistogramVec) {
	fmt.Fprintf(w, "# HELP %s %s\n", hv.Name(), hv.Help())
	fmt.Fprintf(w, "# TYPE %s histogram\n", hv.Name())
	for _, h := range hv.All() {
		writeHistogramSeries(w, h)
	}
}

func writeHistogramSeries(w io.Writer, h *Histogram) {
	buckets := h.Buckets()
	counts := h.BucketCounts()

	for i, upper := range buckets {
		fmt.Fprintf(w, "%s_bucket%s %d\n", h.Name(), formatLabelsWith(h.labels, "le", formatFloat(upper)), counts[i])
	}
	fmt.Fprintf(w, "%s_bucket%s %d\n", h.Name(), formatLabelsWith(h.labels, "le", "+Inf"), counts[len(counts)-1])
	fmt.Fprintf(w, "%s_sum%s %s\n", h.Name(), formatLabels(h.labels), formatFloat(h.Sum()))
	fmt.Fprintf(w, "%s_count%s %d\n", h.Name(), formatLabels(h.labels), h.Count())
}

func sortedCounters(cv *CounterVec) []*Counter {
	counters := cv.All()
	sort.Slice(counters, func(i, j int) bool {
		return labelsToKey(counters[i].labels) < labelsToKey(counters[j].labels)
	})
	return counters
}

func formatLabels(labels map[string]string) string {
	return formatLabelsWith(labels, "", "")
}

func formatLabelsWith(labels map[string]string, extraKey, extraValue string) string {
	pairs := make([]string, 0, len(labels)+1)

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	if extraKey != "" {
		pairs = append(pairs, fmt.Sprintf("%s=%q", extraKey, extraValue))
	}

	if len(pairs) == 0 {
		return ""
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
