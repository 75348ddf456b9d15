package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/detector"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/viewport"
)

var (
	colorWhite   = color.RGBA{255, 255, 255, 0}
	colorRed     = color.RGBA{255, 0, 0, 0}
	colorGreen   = color.RGBA{0, 255, 0, 0}
	colorBlue    = color.RGBA{0, 0, 255, 0}
	colorCyan    = color.RGBA{0, 255, 255, 0}
	colorYellow  = color.RGBA{255, 255, 0, 0}
	colorMagenta = color.RGBA{255, 0, 255, 0}
	colorAmber   = color.RGBA{0, 200, 255, 0}
	colorGray    = color.RGBA{200, 200, 200, 0}
	colorDark    = color.RGBA{100, 100, 100, 0}
)

const (
	zoomBarWidth = 100
	arcRadius    = 50
)

// Overlay is everything drawn on top of a warped frame. It is a read-only
// view of the pipeline state for one frame.
type Overlay struct {
	Hands     []gesture.HandObservation
	Gesture   gesture.TwoHandGesture
	State     gesture.TransformState
	Status    gesture.PhotoStatus
	FPS       float64
	SourceW   int
	SourceH   int
	StreamURL string
}

// Bounds are the zoom and rotation ranges shown by the indicators.
type Bounds struct {
	MaxZoom     float64
	MinRotation float64
	MaxRotation float64
}

// DrawOverlay draws the hand skeletons, pinch markers, two-hand readouts and
// the status panel. All hand coordinates are projected with t so they match
// the warped image.
func DrawOverlay(img *gocv.Mat, t viewport.Transform, o Overlay, b Bounds) {
	for i := range o.Hands {
		drawSkeleton(img, t, &o.Hands[i])
	}
	for i := range o.Hands {
		drawPinch(img, t, &o.Hands[i], i)
	}
	if o.Gesture.Active {
		drawConnector(img, t, o)
	}
	drawPanel(img, o, b)
}

func pt(t viewport.Transform, p viewport.Point) image.Point {
	x, y := t.ProjectInt(p)
	return image.Pt(x, y)
}

func drawSkeleton(img *gocv.Mat, t viewport.Transform, h *gesture.HandObservation) {
	var pts [detector.NumLandmarks]image.Point
	for i, p := range h.Landmarks {
		pts[i] = pt(t, p)
	}

	for _, c := range detector.Connections {
		gocv.Line(img, pts[c[0]], pts[c[1]], colorWhite, 2)
	}

	for i, p := range pts {
		switch {
		case i == detector.Wrist:
			gocv.Circle(img, p, 5, colorBlue, -1)
		case detector.IsFingertip(i):
			gocv.Circle(img, p, 5, colorGreen, -1)
		default:
			gocv.Circle(img, p, 3, colorRed, -1)
		}
	}
}

func drawPinch(img *gocv.Mat, t viewport.Transform, h *gesture.HandObservation, idx int) {
	thumb, index, pinch := pt(t, h.Thumb), pt(t, h.Index), pt(t, h.Pinch)

	c, label, thickness := colorRed, "Not Pinched", 2
	if h.Pinching {
		c, label, thickness = colorGreen, "Pinched", -1
	}

	gocv.Line(img, thumb, index, c, 2)
	gocv.Circle(img, thumb, 8, colorBlue, -1)
	gocv.Circle(img, index, 8, colorRed, -1)
	gocv.Circle(img, pinch, 12, c, thickness)
	gocv.PutText(img, fmt.Sprintf("Hand %d: %s", idx+1, label),
		image.Pt(pinch.X-70, pinch.Y-15), gocv.FontHersheySimplex, 0.6, c, 2)
}

func drawConnector(img *gocv.Mat, t viewport.Transform, o Overlay) {
	a, b := pt(t, o.Gesture.A), pt(t, o.Gesture.B)
	gocv.Line(img, a, b, colorCyan, 2)

	mid := image.Pt((a.X+b.X)/2, (a.Y+b.Y)/2)
	gocv.PutText(img, fmt.Sprintf("Distance: %.0fpx", o.Gesture.Distance),
		image.Pt(mid.X-70, mid.Y), gocv.FontHersheySimplex, 0.7, colorCyan, 2)
	gocv.PutText(img, fmt.Sprintf("Angle: %.1f deg", o.Gesture.Angle),
		image.Pt(mid.X-70, mid.Y+25), gocv.FontHersheySimplex, 0.7, colorAmber, 2)

	if text := o.Status.String(); text != "" {
		gocv.PutText(img, text, image.Pt(mid.X-110, mid.Y+50),
			gocv.FontHersheySimplex, 0.7, statusColor(o.Status), 2)
	}
}

func statusColor(s gesture.PhotoStatus) color.RGBA {
	switch s {
	case gesture.StatusTaken:
		return colorYellow
	case gesture.StatusReady:
		return colorGreen
	default:
		return colorGray
	}
}

func drawPanel(img *gocv.Mat, o Overlay, b Bounds) {
	w, h := img.Cols(), img.Rows()
	active := o.Gesture.Active

	text := func(s string, y int, c color.RGBA) {
		gocv.PutText(img, s, image.Pt(10, y), gocv.FontHersheySimplex, 0.7, c, 2)
	}
	small := func(s string, y int, c color.RGBA) {
		gocv.PutText(img, s, image.Pt(10, y), gocv.FontHersheySimplex, 0.6, c, 2)
	}

	text(fmt.Sprintf("FPS: %.1f", o.FPS), 30, colorGreen)
	text(fmt.Sprintf("Res: %dx%d", o.SourceW, o.SourceH), 60, colorGreen)
	text(fmt.Sprintf("Hands: %d/2", len(o.Hands)), 90, colorMagenta)
	text(fmt.Sprintf("Zoom: %.2fx", o.State.Zoom), 120, colorYellow)
	text(fmt.Sprintf("Rotation: %.1f deg", o.State.Rotation), 150, colorAmber)
	if active {
		text("Gesture: Active", 180, colorCyan)
	} else {
		text("Gesture: Inactive", 180, colorGray)
	}

	// Zoom bar
	maxZoom := b.MaxZoom
	if maxZoom <= 0 {
		maxZoom = 1
	}
	fill := int(zoomBarWidth / maxZoom * o.State.Zoom)
	left := w - zoomBarWidth - 10
	gocv.Rectangle(img, image.Rect(left, 10, w-10, 30), colorDark, -1)
	barColor := color.RGBA{200, 200, 0, 0}
	if active {
		barColor = colorYellow
	}
	gocv.Rectangle(img, image.Rect(left, 10, left+fill, 30), barColor, -1)

	// Rotation arc: the top half circle spans the rotation range, zero at the top.
	center := image.Pt(w-arcRadius-10, arcRadius+50)
	axes := image.Pt(arcRadius, arcRadius)
	gocv.Ellipse(img, center, axes, 0, 180, 360, colorDark, -1)

	span := b.MaxRotation - b.MinRotation
	frac := 0.5
	if span > 0 {
		frac = (o.State.Rotation - b.MinRotation) / span
	}
	arcAngle := 180 + frac*180
	arcColor := color.RGBA{0, 150, 200, 0}
	if active {
		arcColor = colorAmber
	}
	gocv.Ellipse(img, center, axes, 0, 270, arcAngle, arcColor, -1)

	rad := (arcAngle - 90) * math.Pi / 180
	end := image.Pt(center.X+int(arcRadius*math.Cos(rad)), center.Y+int(arcRadius*math.Sin(rad)))
	gocv.Line(img, center, end, colorWhite, 2)
	gocv.Circle(img, image.Pt(center.X, center.Y-arcRadius), 3, colorWhite, -1)

	// Footer
	if o.StreamURL != "" {
		small("Streaming: "+o.StreamURL, h-50, colorYellow)
	}
	small("Pinch both hands: move apart = zoom, rotate = rotate", h-30, colorGray)
	small("Reset view from the tray or POST /api/reset", h-10, colorGray)
}
