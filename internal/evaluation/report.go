package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Reporter renders batch results. It never recomputes a metric: everything
// it prints comes straight from the BatchResult.
type Reporter struct {
	outputDir string
}

// NewReporter creates a reporter writing into outputDir.
func NewReporter(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

// WriteReport persists the batch result as a timestamped JSON file plus a
// human-readable text summary, and returns the JSON file path.
func (r *Reporter) WriteReport(result *BatchResult) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")

	jsonPath := filepath.Join(r.outputDir, fmt.Sprintf("search_evaluation_%s.json", stamp))
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	textPath := filepath.Join(r.outputDir, fmt.Sprintf("search_evaluation_%s.txt", stamp))
	f, err := os.Create(textPath)
	if err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	defer f.Close()

	WriteSummary(f, result)

	return jsonPath, nil
}

// WriteSummary renders the human-readable evaluation summary to w.
func WriteSummary(w io.Writer, result *BatchResult) {
	fmt.Fprintln(w, "SEARCH EVALUATION SUMMARY")
	fmt.Fprintf(w, "%d of %d queries evaluated\n\n", result.ScoredQueries, result.TotalQueries)

	writeMetricsTable(w, result)
	writeOverlap(w, result.Comparison)
	writeBySource(w, result.BySource)
}

// writeMetricsTable renders semantic and keyword averages side by side,
// metric names sorted lexically, values at 4-decimal precision. A metric a
// strategy never produced renders as "-".
func writeMetricsTable(w io.Writer, result *BatchResult) {
	names := metricNames(result.SemanticMetrics, result.KeywordMetrics)
	if len(names) == 0 {
		return
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)
	table.Header([]string{"Metric", "Semantic", "Keyword"})

	for _, name := range names {
		table.Append([]string{
			name,
			formatScore(result.SemanticMetrics, name),
			formatScore(result.KeywordMetrics, name),
		})
	}

	table.Render()
	fmt.Fprintln(w)
}

func writeOverlap(w io.Writer, m OverlapMatrix) {
	fmt.Fprintln(w, "Result overlap (semantic vs keyword, summed over queries):")
	fmt.Fprintf(w, "  both strategies:  %d\n", m.Both)
	fmt.Fprintf(w, "  semantic only:    %d\n", m.OnlyFirst)
	fmt.Fprintf(w, "  keyword only:     %d\n", m.OnlySecond)
	fmt.Fprintf(w, "  semantic total:   %d\n", m.TotalFirst)
	fmt.Fprintf(w, "  keyword total:    %d\n\n", m.TotalSecond)
}

func writeBySource(w io.Writer, bySource map[string]SourceCounts) {
	if len(bySource) == 0 {
		return
	}

	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	fmt.Fprintln(w, "Retrieval volume by source:")
	for _, s := range sources {
		c := bySource[s]
		fmt.Fprintf(w, "  %-14s semantic=%d keyword=%d\n", s, c.Semantic, c.Keyword)
	}
	fmt.Fprintln(w)
}

func metricNames(maps ...map[string]float64) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range maps {
		for name := range m {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func formatScore(scores map[string]float64, name string) string {
	v, ok := scores[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
