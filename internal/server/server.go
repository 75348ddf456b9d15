// Package server provides the viewer HTTP server: the live MJPEG stream,
// single-frame snapshots, photo events and the operator API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/hub"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/plugin"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/server/api"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/store"
)

// Default poll intervals of the viewer handlers.
const (
	DefaultStreamInterval = 50 * time.Millisecond
	DefaultEventInterval  = 100 * time.Millisecond
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Frames    *hub.Frames
	Events    *hub.Bus
	Pipeline  api.Pipeline
	Hooks     *plugin.Manager

	StreamInterval time.Duration
	EventInterval  time.Duration
}

// Server represents the HTTP server for the viewer.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	http       *http.Server
	cancelBase context.CancelFunc
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.StreamInterval <= 0 {
		config.StreamInterval = DefaultStreamInterval
	}
	if config.EventInterval <= 0 {
		config.EventInterval = DefaultEventInterval
	}

	// Streaming handlers end when the base context is cancelled
	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:     config,
		mux:        http.NewServeMux(),
		start:      time.Now(),
		cancelBase: cancel,
	}
	s.http = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Frames != nil {
		stream := NewStreamHandler(s.config.Frames, s.config.StreamInterval)
		s.mux.Handle("/video_feed", stream)
		s.mux.Handle("/api/stream", stream)

		frame := NewFrameHandler(s.config.Frames)
		s.mux.Handle("/frame", frame)
		s.mux.Handle("/api/frame", frame)
	}

	if s.config.Events != nil {
		events := NewEventsHandler(s.config.Events, s.config.EventInterval)
		s.mux.Handle("/photo_events", events)
		s.mux.Handle("/api/events", events)
		s.mux.Handle("/api/events/ws", NewEventsWSHandler(s.config.Events, s.config.EventInterval))
	}

	if s.config.Pipeline != nil {
		var viewers func() int
		if s.config.Events != nil {
			viewers = s.config.Events.Len
		}
		view := api.NewViewHandler(s.config.Pipeline, viewers)
		s.mux.HandleFunc("/api/reset", view.Reset)
		s.mux.HandleFunc("/api/state", view.State)
	}

	if s.config.Store != nil {
		photos := api.NewPhotoHandler(s.config.Store)
		s.mux.Handle("/api/photos", photos)
		s.mux.Handle("/api/photos/", photos)
	}

	if s.config.Hooks != nil {
		s.mux.Handle("/api/hooks", api.NewHookHandler(s.config.Hooks))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.Frames != nil {
		response["frames"] = s.config.Frames.Version()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address. It returns
// nil after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.http.Addr = addr
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and cancels streaming handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelBase()
	return s.http.Shutdown(ctx)
}
