package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/hub"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newEventServer(t *testing.T) (*hub.Bus, *httptest.Server) {
	t.Helper()
	bus := hub.NewBus(0)
	ts := httptest.NewServer(New(Config{Events: bus, EventInterval: 10 * time.Millisecond}))
	t.Cleanup(ts.Close)
	return bus, ts
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestAPI_PhotoEventsSSE(t *testing.T) {
	bus, ts := newEventServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, path := range []string{"/photo_events", "/api/events"} {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+path, nil)
		resp, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}

		if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
			t.Errorf("%s: Content-Type = %s, want text/event-stream", path, ct)
		}

		reader := bufio.NewReader(resp.Body)
		readEvent := func() string {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("%s: read error = %v", path, err)
			}
			reader.ReadString('\n') // blank separator
			return strings.TrimSpace(line)
		}

		if first := readEvent(); first != "data: {}" {
			t.Errorf("%s: first message = %q, want data: {}", path, first)
		}

		waitFor(t, "subscription", func() bool { return bus.Len() == 1 })
		event := gesture.NewPhotoEvent(time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local))
		if err := bus.Publish(event); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}

		got := readEvent()
		if !strings.HasPrefix(got, "data: ") {
			t.Fatalf("%s: unexpected line %q", path, got)
		}
		var received gesture.PhotoEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(got, "data: ")), &received); err != nil {
			t.Fatalf("%s: failed to decode event: %v", path, err)
		}
		if received.Action != gesture.ActionTakePhoto || received.Filename != event.Filename {
			t.Errorf("%s: unexpected event %+v", path, received)
		}

		// Disconnecting releases the subscription
		resp.Body.Close()
		waitFor(t, "unsubscribe", func() bool { return bus.Len() == 0 })
	}
}

func TestAPI_PhotoEventsWebSocket(t *testing.T) {
	bus, ts := newEventServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	waitFor(t, "subscription", func() bool { return bus.Len() == 1 })
	for i := 0; i < 3; i++ {
		bus.Publish(gesture.NewPhotoEvent(time.Unix(int64(1772600000+i), 0)))
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var last float64
	for i := 0; i < 3; i++ {
		var event gesture.PhotoEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if event.Timestamp <= last {
			t.Errorf("events out of order: %v after %v", event.Timestamp, last)
		}
		last = event.Timestamp
	}

	conn.Close()
	waitFor(t, "unsubscribe", func() bool { return bus.Len() == 0 })
}

func TestAPI_VideoFeed(t *testing.T) {
	frames := hub.NewFrames()
	ts := httptest.NewServer(New(Config{Frames: frames, StreamInterval: 5 * time.Millisecond}))
	defer ts.Close()

	first := []byte{0xFF, 0xD8, 0x01, 0xFF, 0xD9}
	second := []byte{0xFF, 0xD8, 0x02, 0x02, 0xFF, 0xD9}
	frames.Publish(first, 640, 480)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/video_feed", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /video_feed error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Fatalf("Content-Type = %s", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readPart := func() []byte {
		boundary, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read boundary error = %v", err)
		}
		if strings.TrimSpace(boundary) != "--frame" {
			t.Fatalf("unexpected boundary %q", boundary)
		}
		header, err := textproto.NewReader(reader).ReadMIMEHeader()
		if err != nil {
			t.Fatalf("read part header error = %v", err)
		}
		if header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("part Content-Type = %s", header.Get("Content-Type"))
		}
		n, _ := strconv.Atoi(header.Get("Content-Length"))
		data := make([]byte, n)
		if _, err := io.ReadFull(reader, data); err != nil {
			t.Fatalf("read part body error = %v", err)
		}
		reader.ReadString('\n')
		return data
	}

	if got := readPart(); !bytes.Equal(got, first) {
		t.Errorf("first part = %v, want %v", got, first)
	}

	// Each version is sent once, so the next part is the new frame
	frames.Publish(second, 640, 480)
	if got := readPart(); !bytes.Equal(got, second) {
		t.Errorf("second part = %v, want %v", got, second)
	}
}

func TestServer_ShutdownEndsStreams(t *testing.T) {
	bus := hub.NewBus(0)
	srv := New(Config{Events: bus, EventInterval: 10 * time.Millisecond})

	ts := httptest.NewUnstartedServer(srv)
	ts.Config = srv.http
	ts.Start()
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/photo_events")
	if err != nil {
		t.Fatalf("GET /photo_events error = %v", err)
	}
	defer resp.Body.Close()
	waitFor(t, "subscription", func() bool { return bus.Len() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	waitFor(t, "unsubscribe", func() bool { return bus.Len() == 0 })
}
