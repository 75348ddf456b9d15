package gesture

import (
	"math"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/detector"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/viewport"
)

// HandObservation is one detected hand in pixel space of the original frame.
type HandObservation struct {
	Thumb         viewport.Point
	Index         viewport.Point
	Pinch         viewport.Point // midpoint of thumb and index tips
	PinchDistance float64
	Pinching      bool
	Handedness    string
	Landmarks     [detector.NumLandmarks]viewport.Point
}

// TwoHandGesture is the control signal produced while both hands pinch.
// A and B are the untransformed pinch points it was measured from.
type TwoHandGesture struct {
	Active   bool
	Distance float64
	Angle    float64 // degrees, atan2 of B relative to A
	A        viewport.Point
	B        viewport.Point
}

// Observe converts normalized landmarks into pixel observations and decides
// for each hand whether it pinches. threshold is in pixels.
func Observe(hands []detector.HandLandmarks, width, height int, threshold float64) []HandObservation {
	if len(hands) == 0 {
		return nil
	}

	obs := make([]HandObservation, 0, len(hands))
	for i := range hands {
		hand := &hands[i]
		if !hand.Valid() {
			continue
		}

		thumb := hand.Pixel(detector.ThumbTip, width, height)
		index := hand.Pixel(detector.IndexTip, width, height)
		d := distance(thumb, index)

		obs = append(obs, HandObservation{
			Thumb: thumb,
			Index: index,
			Pinch: viewport.Point{
				X: math.Floor((thumb.X + index.X) / 2),
				Y: math.Floor((thumb.Y + index.Y) / 2),
			},
			PinchDistance: d,
			Pinching:      d < threshold,
			Handedness:    hand.Handedness,
			Landmarks:     hand.Pixels(width, height),
		})
	}
	return obs
}

// Interpret derives the two-hand control signal. It is active only when
// exactly two hands are observed and both pinch. Measurements always use the
// original pinch points, never projected ones, so the signal does not feed
// back on its own effect.
func Interpret(obs []HandObservation) TwoHandGesture {
	if len(obs) != 2 || !obs[0].Pinching || !obs[1].Pinching {
		return TwoHandGesture{}
	}

	a, b := obs[0].Pinch, obs[1].Pinch
	return TwoHandGesture{
		Active:   true,
		Distance: distance(a, b),
		// atan2(0, 0) is 0, so coincident pinch points yield a zero angle.
		Angle: math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi,
		A:     a,
		B:     b,
	}
}

func distance(a, b viewport.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
