package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/hub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// writeWait bounds each websocket write.
const writeWait = 5 * time.Second

// EventsWSHandler delivers photo events over a WebSocket, one text message per event.
type EventsWSHandler struct {
	bus      *hub.Bus
	interval time.Duration
}

// NewEventsWSHandler creates a new EventsWSHandler polling its subscription every interval.
func NewEventsWSHandler(bus *hub.Bus, interval time.Duration) *EventsWSHandler {
	return &EventsWSHandler{bus: bus, interval: interval}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sub := h.bus.Subscribe()
	defer sub.Close()

	// Incoming messages are ignored; a read error means the client left
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}

		for _, data := range sub.Drain() {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
