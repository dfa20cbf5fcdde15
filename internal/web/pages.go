package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/sarkarisearch/sarkari-search/internal/metrics"
	"github.com/sarkarisearch/sarkari-search/internal/search"
)

// knownSources lists the agencies exposed in the source filter dropdown.
var knownSources = []SourceOption{
	{Value: "", Label: "All sources"},
	{Value: "rbi", Label: "Reserve Bank of India"},
	{Value: "income_tax", Label: "Income Tax Department"},
	{Value: "caqm", Label: "CAQM"},
}

// SourceOption is one entry in the source filter dropdown.
type SourceOption struct {
	Value string
	Label string
}

// SearchPageData carries everything the search page and its results
// fragment render.
type SearchPageData struct {
	Query    string
	Strategy string
	Source   string
	Sources  []SourceOption
	Results  []search.Result
	Total    int
	TookMs   int64
	Error    string
}

// StatsPageData carries the stats page content.
type StatsPageData struct {
	TopQueries []metrics.QueryCount
	Error      string
}

// SearchPage renders the full search page.
func SearchPage(data SearchPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(ctx, w, "Sarkari Search", func() error {
			if err := writeSearchForm(w, data); err != nil {
				return err
			}
			_, err := io.WriteString(w, `<div id="results" class="mt-6"></div>`)
			return err
		})
	})
}

// SearchResults renders the results fragment swapped in by HTMX.
func SearchResults(data SearchPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.Error != "" {
			return renderComponent(ctx, w, ErrorMessage(data.Error))
		}

		if data.Query == "" {
			_, err := io.WriteString(w, `<p class="text-sm text-gray-500">Enter a query to search government documents.</p>`)
			return err
		}

		if len(data.Results) == 0 {
			fmt.Fprintf(w, `<p class="text-sm text-gray-500">No results for <span class="font-medium">%s</span>.</p>`,
				templ.EscapeString(data.Query))
			return nil
		}

		fmt.Fprintf(w, `<p class="text-xs text-gray-400 mb-3">%d results (%s, %dms)</p>`,
			data.Total, templ.EscapeString(data.Strategy), data.TookMs)

		if _, err := io.WriteString(w, `<ul class="space-y-4">`); err != nil {
			return err
		}
		for _, r := range data.Results {
			if err := writeResultCard(w, r); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

// StatsPage renders the full stats page.
func StatsPage(data StatsPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(ctx, w, "Sarkari Search — Stats", func() error {
			if _, err := io.WriteString(w,
				`<div id="stats" hx-get="/stats/refresh" hx-trigger="every 10s" hx-swap="innerHTML">`); err != nil {
				return err
			}
			if err := renderComponent(ctx, w, StatsContent(data)); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</div>`); err != nil {
				return err
			}
			return writeActivityFeed(w)
		})
	})
}

// StatsContent renders the refreshable stats fragment.
func StatsContent(data StatsPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.Error != "" {
			return renderComponent(ctx, w, ErrorMessage(data.Error))
		}

		if _, err := io.WriteString(w,
			`<h2 class="text-lg font-semibold mb-3">Top queries</h2>`); err != nil {
			return err
		}
		if len(data.TopQueries) == 0 {
			_, err := io.WriteString(w, `<p class="text-sm text-gray-500">No queries recorded yet.</p>`)
			return err
		}

		if _, err := io.WriteString(w,
			`<table class="w-full text-sm"><thead><tr class="text-left text-gray-400"><th class="py-1">Query</th><th class="py-1 text-right">Count</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, q := range data.TopQueries {
			fmt.Fprintf(w, `<tr class="border-t border-gray-700"><td class="py-1">%s</td><td class="py-1 text-right">%d</td></tr>`,
				templ.EscapeString(q.Query), q.Count)
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

// ErrorMessage renders an inline error banner.
func ErrorMessage(msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="rounded-md bg-red-500/10 border border-red-500/30 text-red-300 text-sm px-4 py-3">%s</div>`,
			templ.EscapeString(msg))
		return err
	})
}

func renderComponent(ctx context.Context, w io.Writer, c templ.Component) error {
	return c.Render(ctx, w)
}

// layout wraps page content in the shared HTML shell.
func layout(_ context.Context, w io.Writer, title string, body func() error) error {
	if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en" class="dark">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>%s</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-900 text-gray-100 min-h-screen">
<nav class="border-b border-gray-800 px-6 py-3 flex items-center gap-6">
<a href="/" class="font-semibold text-amber-400">Sarkari Search</a>
<a href="/" class="text-sm text-gray-400 hover:text-gray-200">Search</a>
<a href="/stats" class="text-sm text-gray-400 hover:text-gray-200">Stats</a>
</nav>
<main class="max-w-3xl mx-auto px-6 py-8">`, templ.EscapeString(title)); err != nil {
		return err
	}
	if err := body(); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</main></body></html>`)
	return err
}

func writeSearchForm(w io.Writer, data SearchPageData) error {
	if _, err := fmt.Fprintf(w, `<form hx-post="/search" hx-target="#results" hx-swap="innerHTML" class="space-y-3">
<input type="text" name="query" value="%s" placeholder="Search circulars, notifications, orders..." autofocus
 class="w-full rounded-md bg-gray-800 border border-gray-700 px-4 py-2 focus:outline-none focus:border-amber-400"/>
<div class="flex items-center gap-4 text-sm">`, templ.EscapeString(data.Query)); err != nil {
		return err
	}

	for _, strategy := range []string{"semantic", "keyword"} {
		checked := ""
		if data.Strategy == strategy {
			checked = " checked"
		}
		fmt.Fprintf(w, `<label class="flex items-center gap-1"><input type="radio" name="strategy" value="%s"%s/> %s</label>`,
			strategy, checked, strategy)
	}

	if _, err := io.WriteString(w, `<select name="source" class="rounded-md bg-gray-800 border border-gray-700 px-2 py-1">`); err != nil {
		return err
	}
	for _, s := range data.Sources {
		selected := ""
		if s.Value == data.Source {
			selected = " selected"
		}
		fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
			templ.EscapeString(s.Value), selected, templ.EscapeString(s.Label))
	}

	_, err := io.WriteString(w, `</select>
<button type="submit" class="ml-auto rounded-md bg-amber-500 text-gray-900 font-medium px-4 py-1.5 hover:bg-amber-400">Search</button>
</div>
</form>`)
	return err
}

func writeResultCard(w io.Writer, r search.Result) error {
	title := r.Title
	if title == "" {
		title = r.DocID
	}

	if _, err := fmt.Fprintf(w, `<li class="rounded-lg border border-gray-800 bg-gray-800/50 p-4">
<div class="flex items-baseline justify-between gap-4">
<h3 class="font-medium text-amber-300">%s</h3>
<span class="text-xs text-gray-500 whitespace-nowrap">%.3f</span>
</div>
<p class="text-xs text-gray-400 mt-0.5">%s`,
		templ.EscapeString(title), r.Score, templ.EscapeString(sourceLabel(r.Source))); err != nil {
		return err
	}
	if r.Section != "" {
		fmt.Fprintf(w, ` &middot; %s`, templ.EscapeString(r.Section))
	}
	if r.Date != "" {
		fmt.Fprintf(w, ` &middot; %s`, templ.EscapeString(r.Date))
	}
	if r.Page > 0 {
		fmt.Fprintf(w, ` &middot; p.%d`, r.Page)
	}
	if _, err := io.WriteString(w, `</p>`); err != nil {
		return err
	}

	if r.Text != "" {
		fmt.Fprintf(w, `<p class="text-sm text-gray-300 mt-2">%s</p>`,
			templ.EscapeString(snippet(r.Text, 300)))
	}
	_, err := io.WriteString(w, `</li>`)
	return err
}

// writeActivityFeed emits the SSE-fed pipeline activity panel.
func writeActivityFeed(w io.Writer) error {
	_, err := io.WriteString(w, `<div class="mt-8" hx-ext="sse" sse-connect="/events">
<h2 class="text-lg font-semibold mb-3">Pipeline activity</h2>
<ul id="activity" sse-swap="activity" hx-swap="afterbegin" class="space-y-1 text-sm text-gray-400"></ul>
</div>`)
	return err
}
