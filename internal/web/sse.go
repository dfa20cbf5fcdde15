package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/sarkarisearch/sarkari-search/internal/bus"
)

// activityTopics are the pipeline events streamed to the stats page.
var activityTopics = []string{
	bus.TopicDocumentDownloaded,
	bus.TopicDocumentProcessed,
	bus.TopicDocumentIndexed,
	bus.TopicIndexingFailed,
}

// handleEvents streams pipeline activity as server-sent events. Each event
// is an HTML list item the stats page prepends to its activity feed.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	eventChan := make(chan bus.Event, 16)
	if h.bus != nil {
		for _, topic := range activityTopics {
			if err := h.bus.Subscribe(ctx, topic, func(_ context.Context, event bus.Event) error {
				select {
				case eventChan <- event:
				default:
					// Slow client, drop rather than block the bus.
				}
				return nil
			}); err != nil {
				h.log.Error("failed to subscribe to activity topic", "topic", topic, "error", err)
			}
		}
	}

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event := <-eventChan:
			fmt.Fprintf(w, "event: activity\ndata: %s\n\n", activityItem(event))
			flusher.Flush()
		}
	}
}

// activityItem formats a bus event as a single feed entry.
func activityItem(event bus.Event) string {
	label := activityLabel(event.Type)
	detail := ""
	switch payload := event.Payload.(type) {
	case map[string]any:
		if title, ok := payload["title"].(string); ok && title != "" {
			detail = title
		} else if path, ok := payload["path"].(string); ok {
			detail = path
		}
	case map[string]string:
		if payload["title"] != "" {
			detail = payload["title"]
		} else {
			detail = payload["path"]
		}
	}

	ts := time.UnixMilli(event.Timestamp).Format("15:04:05")
	if detail != "" {
		return fmt.Sprintf(`<li><span class="text-gray-500">%s</span> %s — %s</li>`,
			ts, label, templ.EscapeString(snippet(detail, 80)))
	}
	return fmt.Sprintf(`<li><span class="text-gray-500">%s</span> %s</li>`, ts, label)
}

func activityLabel(eventType string) string {
	switch eventType {
	case bus.TopicDocumentDownloaded:
		return "downloaded"
	case bus.TopicDocumentProcessed:
		return "processed"
	case bus.TopicDocumentIndexed:
		return "indexed"
	case bus.TopicIndexingFailed:
		return `<span class="text-red-400">indexing failed</span>`
	default:
		return eventType
	}
}
