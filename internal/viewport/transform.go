// Package viewport holds the pure geometry shared by the image warp and the
// landmark overlay.
package viewport

import "math"

// RotationEpsilon is the smallest rotation, in degrees, that is applied to a frame.
const RotationEpsilon = 0.1

// Point is a position in frame pixel space.
type Point struct {
	X float64
	Y float64
}

// Transform describes the view applied to a Width x Height frame.
type Transform struct {
	Zoom     float64 // scale factor about the frame centre, >= 1
	Rotation float64 // degrees, positive turns the image counter-clockwise
	Width    int
	Height   int
}

// Center returns the fixed point of the transform.
func (t Transform) Center() Point {
	return Point{X: float64(t.Width) / 2, Y: float64(t.Height) / 2}
}

// IsIdentity reports whether the transform leaves the frame untouched.
// It holds exactly when Project returns every point unchanged.
func (t Transform) IsIdentity() bool {
	zoom := t.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return zoom == 1 && math.Abs(t.Rotation) <= RotationEpsilon
}

// Project maps a point of the original frame to where it appears in the
// transformed frame. The point is scaled about the centre by Zoom, then
// rotated about the centre by -Rotation (y grows downwards, so the inverse
// angle matches the counter-clockwise image rotation).
//
// Project is the only place this mapping exists; Matrix derives the image
// warp from it so overlays and pixels always agree.
func (t Transform) Project(p Point) Point {
	c := t.Center()
	zoom := t.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	dx := (p.X - c.X) * zoom
	dy := (p.Y - c.Y) * zoom

	if math.Abs(t.Rotation) <= RotationEpsilon {
		return Point{X: c.X + dx, Y: c.Y + dy}
	}

	rad := -t.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Point{
		X: c.X + dx*cos - dy*sin,
		Y: c.Y + dx*sin + dy*cos,
	}
}

// ProjectInt is Project truncated to integer pixel coordinates for drawing.
func (t Transform) ProjectInt(p Point) (int, int) {
	q := t.Project(p)
	return int(q.X), int(q.Y)
}

// Matrix returns the forward 2x3 affine matrix, row-major, that maps
// source pixels to destination pixels. It is built from the images of the
// origin and the two unit vectors under Project.
func (t Transform) Matrix() [6]float64 {
	o := t.Project(Point{X: 0, Y: 0})
	ex := t.Project(Point{X: 1, Y: 0})
	ey := t.Project(Point{X: 0, Y: 1})

	return [6]float64{
		ex.X - o.X, ey.X - o.X, o.X,
		ex.Y - o.Y, ey.Y - o.Y, o.Y,
	}
}

// Apply maps p through a matrix returned by Matrix.
func Apply(m [6]float64, p Point) Point {
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// CropRect returns the centred source rectangle, in original frame pixels,
// that fills the output after zooming. It is the region a crop-and-resize
// implementation would cut before rotation is taken into account.
func (t Transform) CropRect() (x, y, w, h int) {
	zoom := t.Zoom
	if zoom < 1 {
		zoom = 1
	}
	w = int(float64(t.Width) / zoom)
	h = int(float64(t.Height) / zoom)
	x = (t.Width - w) / 2
	y = (t.Height - h) / 2
	return x, y, w, h
}
