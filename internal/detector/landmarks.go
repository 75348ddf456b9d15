// Package detector defines the landmark provider boundary: hand keypoints
// reported per frame by an external hand detector.
package detector

import (
	"math"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/viewport"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Connections lists the skeleton edges drawn between landmarks.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{Wrist, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{Wrist, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, RingMCP}, {RingMCP, PinkyMCP},
}

// IsFingertip reports whether landmark i is the tip of a finger or thumb.
func IsFingertip(i int) bool {
	switch i {
	case ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip:
		return true
	}
	return false
}

// Point3D represents a landmark position. X and Y are normalized to [0,1]
// of the frame width and height; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixel returns landmark i in pixel coordinates of a width x height frame.
// Coordinates are truncated to whole pixels.
func (h *HandLandmarks) Pixel(i, width, height int) viewport.Point {
	p := h.Points[i]
	return viewport.Point{
		X: float64(int(p.X * float64(width))),
		Y: float64(int(p.Y * float64(height))),
	}
}

// Pixels returns all landmarks in pixel coordinates.
func (h *HandLandmarks) Pixels(width, height int) [NumLandmarks]viewport.Point {
	var out [NumLandmarks]viewport.Point
	for i := range h.Points {
		out[i] = h.Pixel(i, width, height)
	}
	return out
}

// Mirror returns a copy flipped horizontally, matching a mirrored frame.
func (h HandLandmarks) Mirror() HandLandmarks {
	for i := range h.Points {
		h.Points[i].X = 1 - h.Points[i].X
	}
	return h
}

// Valid reports whether every normalized coordinate is a finite number.
func (h *HandLandmarks) Valid() bool {
	for _, p := range h.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}
