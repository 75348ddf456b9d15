package server

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/capture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/hub"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/render"
)

// Placeholder texts shown before the first frame is published.
const (
	WaitingText = "Waiting for camera..."
	NoFrameText = "No frame available"
)

// placeholder lazily encodes one placeholder image and reuses it.
type placeholder struct {
	text string
	once sync.Once
	data []byte
}

func (p *placeholder) get() []byte {
	p.once.Do(func() {
		data, err := render.PlaceholderJPEG(capture.DefaultWidth, capture.DefaultHeight, p.text)
		if err != nil {
			log.Printf("Error encoding placeholder: %v", err)
			return
		}
		p.data = data
	})
	return p.data
}

// StreamHandler serves the latest rendered frame as an MJPEG stream.
type StreamHandler struct {
	frames      *hub.Frames
	interval    time.Duration
	placeholder placeholder
}

// NewStreamHandler creates a new StreamHandler polling frames every interval.
func NewStreamHandler(frames *hub.Frames, interval time.Duration) *StreamHandler {
	return &StreamHandler{
		frames:      frames,
		interval:    interval,
		placeholder: placeholder{text: WaitingText},
	}
}

// ServeHTTP streams MJPEG frames to connected clients. Each frame version is
// sent once; the placeholder is repeated until the first frame exists.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var version uint64
	for {
		var data []byte
		if frame, ok := h.frames.LatestSince(version); ok {
			version = frame.Version
			data = frame.Data
		} else if version == 0 {
			data = h.placeholder.get()
		}

		if len(data) > 0 {
			if err := writePart(w, data); err != nil {
				return
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// writePart writes one multipart JPEG part and flushes it.
func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\r\n")); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// FrameHandler serves the latest rendered frame as a single JPEG.
type FrameHandler struct {
	frames      *hub.Frames
	placeholder placeholder
}

// NewFrameHandler creates a new FrameHandler.
func NewFrameHandler(frames *hub.Frames) *FrameHandler {
	return &FrameHandler{
		frames:      frames,
		placeholder: placeholder{text: NoFrameText},
	}
}

// ServeHTTP writes the latest frame, or the placeholder before the first one.
func (h *FrameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame, ok := h.frames.Latest()
	body := frame.Data
	if !ok {
		body = h.placeholder.get()
	}
	if len(body) == 0 {
		http.Error(w, NoFrameText, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	if ok {
		w.Header().Set("X-Frame-Version", fmt.Sprint(frame.Version))
	}
	w.Write(body)
}
