// Package render warps captured frames by the current view transform,
// draws the gesture overlay and encodes the result as JPEG.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/viewport"
)

// JPEG qualities for streamed frames and placeholders.
const (
	DefaultQuality     = 80
	PlaceholderQuality = 90
)

// Warp applies the view transform to src and returns a new Mat of the same
// size. The caller must close the result.
//
// The affine matrix is derived from viewport.Transform.Project, so overlay
// points projected with the same transform land on the same pixels.
func Warp(src gocv.Mat, t viewport.Transform) gocv.Mat {
	dst := gocv.NewMat()
	if t.IsIdentity() {
		src.CopyTo(&dst)
		return dst
	}

	m := t.Matrix()
	affine := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer affine.Close()
	for i, v := range m {
		affine.SetDoubleAt(i/3, i%3, v)
	}

	gocv.WarpAffineWithParams(src, &dst, affine, image.Pt(src.Cols(), src.Rows()),
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	return dst
}

// Mirror flips frame horizontally in place.
func Mirror(frame *gocv.Mat) {
	gocv.Flip(*frame, frame, 1)
}

// EncodeJPEG encodes mat at the given quality.
func EncodeJPEG(mat gocv.Mat, quality int) ([]byte, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("cannot encode empty frame")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close, so copy it out.
	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Placeholder returns a black frame with text, shown before the first
// camera frame arrives. The caller must close the result.
func Placeholder(width, height int, text string) gocv.Mat {
	if width <= 0 || height <= 0 {
		width, height = 640, 480
	}
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	gocv.PutText(&mat, text, image.Pt(50, height/2), gocv.FontHersheySimplex, 1, colorWhite, 2)
	return mat
}

// PlaceholderJPEG renders and encodes a placeholder frame.
func PlaceholderJPEG(width, height int, text string) ([]byte, error) {
	mat := Placeholder(width, height, text)
	defer mat.Close()
	return EncodeJPEG(mat, PlaceholderQuality)
}
