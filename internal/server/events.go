package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/hub"
)

// EventsHandler streams photo events as server-sent events.
type EventsHandler struct {
	bus      *hub.Bus
	interval time.Duration
}

// NewEventsHandler creates a new EventsHandler polling its subscription every interval.
func NewEventsHandler(bus *hub.Bus, interval time.Duration) *EventsHandler {
	return &EventsHandler{bus: bus, interval: interval}
}

// ServeHTTP subscribes for the lifetime of the request. The first message is
// an empty object so clients know the channel is open.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.bus.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, err := fmt.Fprint(w, "data: {}\n\n"); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		events := sub.Drain()
		for _, data := range events {
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
		}
		if len(events) > 0 {
			flusher.Flush()
		}
	}
}
