// Package gesture turns per-frame hand landmarks into pinch state, a
// smoothed zoom/rotation view transform and one-shot photo triggers.
package gesture

import "time"

// Hand depth factors compensate for how large hands appear to the camera.
const (
	// DepthStream is used for head-mounted stream sources, where hands are close.
	DepthStream = 1.5
	// DepthWebcam is used for desk webcams, where hands are further away.
	DepthWebcam = 2.0
)

// zoomPixelScale converts a change in pinch distance (pixels) into zoom units.
const zoomPixelScale = 200.0

// Settings tunes the pinch detector and the transform controller.
// Thresholds and speeds are given for a hand depth of 1 and divided by HandDepth.
type Settings struct {
	HandDepth         float64
	PinchThreshold    float64 // px
	DistanceDeadzone  float64 // px
	AngleDeadzone     float64 // degrees
	ZoomSpeed         float64
	RotationSpeed     float64
	ZoomSmoothing     float64 // alpha in (0,1]
	RotationSmoothing float64 // alpha in (0,1]
	MinZoom           float64
	MaxZoom           float64
	MinRotation       float64 // degrees
	MaxRotation       float64 // degrees
}

// DefaultSettings returns the tuning used for the given hand depth.
func DefaultSettings(depth float64) Settings {
	if depth <= 0 {
		depth = DepthWebcam
	}
	return Settings{
		HandDepth:         depth,
		PinchThreshold:    100,
		DistanceDeadzone:  5,
		AngleDeadzone:     0.5,
		ZoomSpeed:         1.6,
		RotationSpeed:     4.0,
		ZoomSmoothing:     0.2,
		RotationSmoothing: 0.15,
		MinZoom:           1.0,
		MaxZoom:           3.0,
		MinRotation:       -45,
		MaxRotation:       45,
	}
}

func (s Settings) depth() float64 {
	if s.HandDepth <= 0 {
		return 1
	}
	return s.HandDepth
}

// EffectivePinchThreshold is the pinch distance limit in pixels after depth scaling.
func (s Settings) EffectivePinchThreshold() float64 {
	return s.PinchThreshold / s.depth()
}

// EffectiveZoomSpeed is ZoomSpeed after depth scaling.
func (s Settings) EffectiveZoomSpeed() float64 {
	return s.ZoomSpeed / s.depth()
}

// EffectiveRotationSpeed is RotationSpeed after depth scaling.
func (s Settings) EffectiveRotationSpeed() float64 {
	return s.RotationSpeed / s.depth()
}

// TriggerSettings tunes the photo trigger.
type TriggerSettings struct {
	HistorySize          int
	MinSamples           int
	ConvergenceThreshold float64 // px the hands must close over the history window
	ProximityThreshold   float64 // px, hands must end closer than this
	CooldownFrames       int
	Refractory           time.Duration
}

// DefaultTriggerSettings returns the standard photo trigger tuning.
func DefaultTriggerSettings() TriggerSettings {
	return TriggerSettings{
		HistorySize:          5,
		MinSamples:           3,
		ConvergenceThreshold: 200,
		ProximityThreshold:   150,
		CooldownFrames:       15,
		Refractory:           time.Second,
	}
}

// DepthFor returns the hand depth factor for a stream or a webcam source.
func DepthFor(stream bool) float64 {
	if stream {
		return DepthStream
	}
	return DepthWebcam
}
