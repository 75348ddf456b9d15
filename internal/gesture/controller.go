package gesture

import (
	"math"
	"sync"
)

// TransformState is a read-only snapshot of the controller.
type TransformState struct {
	Zoom     float64 `json:"zoom"`
	Rotation float64 `json:"rotation"` // degrees
	Tracking bool    `json:"tracking"`
}

// Controller integrates two-hand gestures into a smoothed zoom and rotation.
// Zoom and rotation are sticky: they keep their value when the hands drop.
type Controller struct {
	mu       sync.Mutex
	settings Settings

	zoom     float64
	rotation float64

	prevDistance *float64
	prevAngle    *float64
}

// NewController creates a controller at the identity view.
func NewController(settings Settings) *Controller {
	return &Controller{
		settings: settings,
		zoom:     clamp(1, settings.MinZoom, settings.MaxZoom),
		rotation: clamp(0, settings.MinRotation, settings.MaxRotation),
	}
}

// Settings returns the controller tuning.
func (c *Controller) Settings() Settings {
	return c.settings
}

// Update feeds one frame's gesture and returns the resulting state.
// The first active frame only records the reference distance and angle.
func (c *Controller) Update(g TwoHandGesture) TransformState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !g.Active {
		c.prevDistance = nil
		c.prevAngle = nil
		return c.stateLocked()
	}

	if c.prevDistance != nil && c.prevAngle != nil {
		s := c.settings

		distanceDelta := g.Distance - *c.prevDistance
		if math.Abs(distanceDelta) > s.DistanceDeadzone {
			inc := distanceDelta * s.EffectiveZoomSpeed() / zoomPixelScale
			c.zoom = smooth(c.zoom, inc, s.ZoomSmoothing)
		}

		angleDelta := NormalizeAngle(*c.prevAngle - g.Angle)
		if math.Abs(angleDelta) > s.AngleDeadzone {
			inc := angleDelta * s.EffectiveRotationSpeed()
			c.rotation = smooth(c.rotation, inc, s.RotationSmoothing)
		}

		c.zoom = clamp(c.zoom, s.MinZoom, s.MaxZoom)
		c.rotation = clamp(c.rotation, s.MinRotation, s.MaxRotation)
	}

	distance, angle := g.Distance, g.Angle
	c.prevDistance = &distance
	c.prevAngle = &angle

	return c.stateLocked()
}

// Reset returns to zoom 1 and rotation 0 and drops the gesture reference.
func (c *Controller) Reset() TransformState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.zoom = clamp(1, c.settings.MinZoom, c.settings.MaxZoom)
	c.rotation = clamp(0, c.settings.MinRotation, c.settings.MaxRotation)
	c.prevDistance = nil
	c.prevAngle = nil
	return c.stateLocked()
}

// Restore sets the view directly, clamped to the configured bounds.
func (c *Controller) Restore(zoom, rotation float64) TransformState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.zoom = clamp(zoom, c.settings.MinZoom, c.settings.MaxZoom)
	c.rotation = clamp(rotation, c.settings.MinRotation, c.settings.MaxRotation)
	return c.stateLocked()
}

// State returns the current state.
func (c *Controller) State() TransformState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() TransformState {
	return TransformState{
		Zoom:     c.zoom,
		Rotation: c.rotation,
		Tracking: c.prevDistance != nil,
	}
}

// NormalizeAngle maps an angle difference in degrees into (-180, 180].
func NormalizeAngle(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// smooth blends the current value with current+inc: (1-a)*v + a*(v+inc).
func smooth(v, inc, alpha float64) float64 {
	return (1-alpha)*v + alpha*(v+inc)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
