// Package app runs the hand gesture pipeline: capture, pinch interpretation,
// view transform, photo trigger, rendering and publication to viewers.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/capture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/detector"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/hub"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/plugin"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/render"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/store"
)

// PhotoQueueSize bounds the photos waiting for the store and hooks.
const PhotoQueueSize = 8

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store // optional photo log and view persistence
	HooksDir       string
	HookTimeoutMs  int
	Capture        capture.SupervisorConfig
	Gesture        gesture.Settings // HandDepth 0 picks it from the opened device
	Trigger        gesture.TriggerSettings
	JPEGQuality    int
	EventQueueSize int
	ViewerURL      string // shown in the overlay footer

	// Detector overrides hand detection. Nil tries MediaPipe, then the mock.
	Detector detector.Detector
	// OpenCamera overrides how devices are opened.
	OpenCamera func(capture.Device) capture.Camera
	// Now overrides the trigger clock.
	Now func() time.Time
}

// Status is a snapshot of the pipeline for the operator API.
type Status struct {
	Zoom          float64 `json:"zoom"`
	Rotation      float64 `json:"rotation"`
	Tracking      bool    `json:"tracking"`
	GestureActive bool    `json:"gesture_active"`
	Hands         int     `json:"hands"`
	PhotoStatus   string  `json:"photo_status"`
	FPS           float64 `json:"fps"`
	Source        string  `json:"source"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Frames        uint64  `json:"frames"`
	Photos        uint64  `json:"photos"`
	Running       bool    `json:"running"`
}

// photoJob is a triggered photo waiting for its side effects.
type photoJob struct {
	event  gesture.PhotoEvent
	view   gesture.TransformState
	source string
	image  []byte
}

// App owns the pipeline goroutine and everything it publishes to.
type App struct {
	config     Config
	supervisor *capture.Supervisor
	detector   detector.Detector
	trigger    *gesture.PhotoTrigger
	frames     *hub.Frames
	events     *hub.Bus
	hooks      *plugin.Manager
	hookExec   *plugin.Executor

	mu         sync.RWMutex
	controller *gesture.Controller
	status     Status
	cancel     context.CancelFunc
	done       chan struct{}
	err        error

	photos     chan photoJob
	dispatchWG sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.JPEGQuality <= 0 {
		config.JPEGQuality = render.DefaultQuality
	}
	if config.Gesture.MaxZoom == 0 {
		depth := config.Gesture.HandDepth
		config.Gesture = gesture.DefaultSettings(depth)
		config.Gesture.HandDepth = depth
	}
	if config.Trigger.HistorySize == 0 {
		config.Trigger = gesture.DefaultTriggerSettings()
	}

	var sup *capture.Supervisor
	if config.OpenCamera != nil {
		sup = capture.NewSupervisorWithOpener(config.Capture, config.OpenCamera)
	} else {
		sup = capture.NewSupervisor(config.Capture)
	}

	a := &App{
		config:     config,
		supervisor: sup,
		detector:   config.Detector,
		trigger:    gesture.NewPhotoTrigger(config.Trigger, config.Now),
		frames:     hub.NewFrames(),
		events:     hub.NewBus(config.EventQueueSize),
		hooks:      plugin.NewManager(config.HooksDir),
		hookExec:   plugin.NewExecutor(config.HookTimeoutMs),
		controller: gesture.NewController(settingsFor(config.Gesture, config.Capture.Primary)),
		done:       make(chan struct{}),
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a
}

// settingsFor fills in the hand depth for device when it was left at zero.
func settingsFor(s gesture.Settings, device capture.Device) gesture.Settings {
	if s.HandDepth <= 0 {
		s.HandDepth = gesture.DepthFor(device.IsStream())
	}
	return s
}

// Start opens the capture source, restores the last view and starts the
// pipeline and photo dispatcher goroutines.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.cancel != nil {
		return nil
	}

	if err := a.hooks.Discover(); err != nil {
		log.Printf("Error discovering hooks: %v", err)
	}

	if err := a.supervisor.Start(); err != nil {
		return err
	}

	// The fallback device may have a different hand depth than the primary
	device := a.supervisor.Device()
	a.controller = gesture.NewController(settingsFor(a.config.Gesture, device))
	a.restoreView()
	a.status.Source = device.String()
	a.status.Running = true

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.err = nil
	a.photos = make(chan photoJob, PhotoQueueSize)

	a.dispatchWG.Add(1)
	go a.dispatchPhotos(a.photos)
	go a.runPipeline(ctx, a.controller, a.done)

	log.Printf("Pipeline started on %s (hand depth %.1f)", device, a.controller.Settings().HandDepth)
	return nil
}

// Stop halts the pipeline, saves the view and releases the capture source
// and detector. It waits for queued photos to be handled.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	close(a.photos)
	a.dispatchWG.Wait()

	a.mu.Lock()
	a.status.Running = false
	a.saveView()
	a.mu.Unlock()

	if err := a.supervisor.Close(); err != nil {
		log.Printf("Error closing capture: %v", err)
	}
	if err := a.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}

	log.Println("Pipeline stopped")
}

// Done is closed when the pipeline goroutine of the current run exits.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Err returns the error that stopped the pipeline, if any. A pipeline
// stopped by Stop has no error.
func (a *App) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

func (a *App) fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
	a.status.Running = false
	if errors.Is(err, capture.ErrSourceExhausted) {
		log.Printf("Capture source lost: %v", err)
		return
	}
	log.Printf("Pipeline failed: %v", err)
}

// ResetView returns the view to zoom 1 and rotation 0. It may be called from
// any goroutine.
func (a *App) ResetView() gesture.TransformState {
	a.mu.RLock()
	c := a.controller
	a.mu.RUnlock()

	state := c.Reset()
	log.Println("View reset")
	return state
}

// View returns the current view transform.
func (a *App) View() gesture.TransformState {
	a.mu.RLock()
	c := a.controller
	a.mu.RUnlock()
	return c.State()
}

// Status returns a snapshot of the pipeline.
func (a *App) Status() Status {
	view := a.View()

	a.mu.RLock()
	s := a.status
	a.mu.RUnlock()

	s.Zoom = view.Zoom
	s.Rotation = view.Rotation
	s.Tracking = view.Tracking
	s.Frames = a.frames.Version()
	return s
}

// Frames returns the hub holding the latest rendered frame.
func (a *App) Frames() *hub.Frames {
	return a.frames
}

// Events returns the photo event bus.
func (a *App) Events() *hub.Bus {
	return a.events
}

// Hooks returns the photo hook manager.
func (a *App) Hooks() *plugin.Manager {
	return a.hooks
}

// restoreView applies the persisted view. Caller holds a.mu.
func (a *App) restoreView() {
	if a.config.Store == nil {
		return
	}
	zoom, rotation, err := a.config.Store.Settings().View()
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to load saved view: %v", err)
		}
		return
	}
	state := a.controller.Restore(zoom, rotation)
	log.Printf("Restored view: zoom %.2fx, rotation %.1f deg", state.Zoom, state.Rotation)
}

// saveView persists the current view. Caller holds a.mu.
func (a *App) saveView() {
	if a.config.Store == nil {
		return
	}
	state := a.controller.State()
	if err := a.config.Store.Settings().SaveView(state.Zoom, state.Rotation); err != nil {
		log.Printf("Failed to save view: %v", err)
	}
}

func (a *App) setStatus(update func(s *Status)) {
	a.mu.Lock()
	update(&a.status)
	a.mu.Unlock()
}
