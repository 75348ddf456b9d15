// Package fixtures builds synthetic frames and hand poses for tests.
package fixtures

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/detector"
)

// Frame dimensions used by the fixtures.
const (
	Width  = 640
	Height = 480
)

// GridFrame returns a frame with a grid and a cross at its center, so that
// zoom and rotation change the encoded image. The caller must Close it.
func GridFrame() *gocv.Mat {
	mat := gocv.NewMatWithSize(Height, Width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(40, 40, 40, 0))

	line := color.RGBA{R: 200, G: 200, B: 200}
	for x := 0; x < Width; x += 40 {
		gocv.Line(&mat, image.Pt(x, 0), image.Pt(x, Height), line, 1)
	}
	for y := 0; y < Height; y += 40 {
		gocv.Line(&mat, image.Pt(0, y), image.Pt(Width, y), line, 1)
	}

	cross := color.RGBA{R: 255}
	gocv.Line(&mat, image.Pt(Width/2-30, Height/2), image.Pt(Width/2+30, Height/2), cross, 3)
	gocv.Line(&mat, image.Pt(Width/2, Height/2-30), image.Pt(Width/2, Height/2+30), cross, 3)
	return &mat
}

// TwoPinches returns two pinching hands d pixels apart on a Width wide
// frame, centered horizontally.
func TwoPinches(d float64) []detector.HandLandmarks {
	half := d / 2 / Width
	left := detector.PinchLandmarks(0.5-half, 0.5)
	left.Handedness = "Left"
	return []detector.HandLandmarks{
		left,
		detector.PinchLandmarks(0.5+half, 0.5),
	}
}

// PhotoSequence is a fast inward convergence of both pinching hands that
// fires the photo trigger at stream hand depth.
func PhotoSequence() [][]detector.HandLandmarks {
	distances := []float64{320, 260, 200, 150, 100}
	seq := make([][]detector.HandLandmarks, len(distances))
	for i, d := range distances {
		seq[i] = TwoPinches(d)
	}
	return seq
}

// ZoomSequence moves both pinching hands apart slowly, from 100 to 300
// pixels, which zooms in without firing a photo.
func ZoomSequence() [][]detector.HandLandmarks {
	var seq [][]detector.HandLandmarks
	for d := 100.0; d <= 300; d += 20 {
		seq = append(seq, TwoPinches(d))
	}
	return seq
}
