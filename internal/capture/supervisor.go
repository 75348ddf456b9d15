package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrSourceExhausted is returned once every reconnect attempt has failed.
var ErrSourceExhausted = errors.New("capture source exhausted")

// SupervisorConfig controls retry and reconnect behavior.
type SupervisorConfig struct {
	Primary  Device
	Fallback *Device // opened when Primary fails at startup

	MaxConsecutiveFailures int
	RetryDelay             time.Duration
	ReconnectBackoff       time.Duration // multiplied by the attempt number
	MaxReconnectAttempts   int
	StaleTimeout           time.Duration // streams only
}

// DefaultSupervisorConfig returns the standard retry policy for primary.
func DefaultSupervisorConfig(primary Device) SupervisorConfig {
	return SupervisorConfig{
		Primary:                primary,
		MaxConsecutiveFailures: 5,
		RetryDelay:             100 * time.Millisecond,
		ReconnectBackoff:       2 * time.Second,
		MaxReconnectAttempts:   3,
		StaleTimeout:           10 * time.Second,
	}
}

// Supervisor owns the active camera and hides transient read failures,
// stalled streams and reconnects from the frame loop. Start, Read and Close
// belong to the frame loop goroutine; Device may be called from anywhere.
type Supervisor struct {
	cfg  SupervisorConfig
	open func(Device) Camera
	cam  Camera

	mu     sync.Mutex
	device Device

	failures  int
	lastFrame time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSupervisor creates a supervisor that opens devices with NewDevice.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	return NewSupervisorWithOpener(cfg, NewDevice)
}

// NewSupervisorWithOpener creates a supervisor with a custom camera factory.
func NewSupervisorWithOpener(cfg SupervisorConfig, open func(Device) Camera) *Supervisor {
	def := DefaultSupervisorConfig(cfg.Primary)
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = def.MaxConsecutiveFailures
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = def.ReconnectBackoff
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
	if cfg.StaleTimeout <= 0 {
		cfg.StaleTimeout = def.StaleTimeout
	}

	return &Supervisor{
		cfg:    cfg,
		open:   open,
		device: cfg.Primary,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Start opens the primary device, falling back to the configured fallback.
func (s *Supervisor) Start() error {
	cam := s.open(s.cfg.Primary)
	err := cam.Open()
	if err == nil {
		s.setCamera(cam, s.cfg.Primary)
		log.Printf("capture: opened %s", s.cfg.Primary)
		return nil
	}

	if s.cfg.Fallback == nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	log.Printf("capture: %s unavailable (%v), falling back to %s", s.cfg.Primary, err, *s.cfg.Fallback)
	cam = s.open(*s.cfg.Fallback)
	if ferr := cam.Open(); ferr != nil {
		return fmt.Errorf("failed to start capture: %w (fallback: %v)", err, ferr)
	}
	s.setCamera(cam, *s.cfg.Fallback)
	log.Printf("capture: opened %s", *s.cfg.Fallback)
	return nil
}

// Device returns the device currently in use.
func (s *Supervisor) Device() Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Read blocks until a frame is available. Transient failures are retried;
// after MaxConsecutiveFailures the device is reopened with linear backoff.
// It returns ErrSourceExhausted when reconnecting fails, or ctx.Err().
// The caller must close the returned Mat.
func (s *Supervisor) Read(ctx context.Context) (*gocv.Mat, error) {
	device := s.Device()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.cam == nil {
			if err := s.reconnect(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if device.IsStream() && !s.lastFrame.IsZero() && s.now().Sub(s.lastFrame) > s.cfg.StaleTimeout {
			log.Printf("capture: no frame from %s for %v, reconnecting", device, s.now().Sub(s.lastFrame).Round(time.Second))
			if err := s.reconnect(ctx); err != nil {
				return nil, err
			}
			continue
		}

		frame, err := s.cam.ReadFrame()
		if err == nil {
			s.failures = 0
			s.lastFrame = s.now()
			return frame, nil
		}

		s.failures++
		if s.failures >= s.cfg.MaxConsecutiveFailures {
			log.Printf("capture: %d consecutive read failures from %s: %v", s.failures, device, err)
			if err := s.reconnect(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
			return nil, err
		}
	}
}

// Close releases the active camera.
func (s *Supervisor) Close() error {
	if s.cam == nil {
		return nil
	}
	err := s.cam.Close()
	s.cam = nil
	return err
}

func (s *Supervisor) reconnect(ctx context.Context) error {
	device := s.Device()
	if s.cam != nil {
		if err := s.cam.Close(); err != nil {
			log.Printf("capture: error closing %s: %v", device, err)
		}
		s.cam = nil
	}

	for attempt := 1; attempt <= s.cfg.MaxReconnectAttempts; attempt++ {
		wait := s.cfg.ReconnectBackoff * time.Duration(attempt)
		log.Printf("capture: reconnecting to %s in %v (attempt %d/%d)", device, wait, attempt, s.cfg.MaxReconnectAttempts)
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}

		cam := s.open(device)
		if err := cam.Open(); err != nil {
			log.Printf("capture: reconnect to %s failed: %v", device, err)
			continue
		}
		s.setCamera(cam, device)
		log.Printf("capture: reconnected to %s", device)
		return nil
	}

	return fmt.Errorf("%w: %s after %d attempts", ErrSourceExhausted, device, s.cfg.MaxReconnectAttempts)
}

func (s *Supervisor) setCamera(cam Camera, device Device) {
	s.mu.Lock()
	s.device = device
	s.mu.Unlock()

	s.cam = cam
	s.failures = 0
	s.lastFrame = s.now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
