package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns fixed hands, or steps through a scripted sequence one frame
// per Detect call.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	next     int
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence scripts per-frame results. Once exhausted the last entry repeats.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	if len(m.sequence) > 0 {
		i := m.next
		if i >= len(m.sequence) {
			i = len(m.sequence) - 1
		} else {
			m.next++
		}
		return m.sequence[i], nil
	}

	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PinchLandmarks returns a right hand whose thumb and index tips touch at
// the normalized position (x, y). The rest of the hand hangs below it.
func PinchLandmarks(x, y float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: x, Y: y + 0.30}

	landmarks.Points[ThumbCMC] = Point3D{X: x + 0.05, Y: y + 0.25}
	landmarks.Points[ThumbMCP] = Point3D{X: x + 0.07, Y: y + 0.18}
	landmarks.Points[ThumbIP] = Point3D{X: x + 0.05, Y: y + 0.08}
	landmarks.Points[ThumbTip] = Point3D{X: x + 0.002, Y: y}

	landmarks.Points[IndexMCP] = Point3D{X: x + 0.02, Y: y + 0.16}
	landmarks.Points[IndexPIP] = Point3D{X: x + 0.01, Y: y + 0.10}
	landmarks.Points[IndexDIP] = Point3D{X: x, Y: y + 0.05}
	landmarks.Points[IndexTip] = Point3D{X: x - 0.002, Y: y}

	landmarks.Points[MiddleMCP] = Point3D{X: x - 0.01, Y: y + 0.16}
	landmarks.Points[MiddlePIP] = Point3D{X: x - 0.02, Y: y + 0.08}
	landmarks.Points[MiddleDIP] = Point3D{X: x - 0.02, Y: y + 0.03}
	landmarks.Points[MiddleTip] = Point3D{X: x - 0.02, Y: y - 0.02}

	landmarks.Points[RingMCP] = Point3D{X: x - 0.04, Y: y + 0.17}
	landmarks.Points[RingPIP] = Point3D{X: x - 0.05, Y: y + 0.10}
	landmarks.Points[RingDIP] = Point3D{X: x - 0.05, Y: y + 0.05}
	landmarks.Points[RingTip] = Point3D{X: x - 0.05, Y: y + 0.01}

	landmarks.Points[PinkyMCP] = Point3D{X: x - 0.07, Y: y + 0.19}
	landmarks.Points[PinkyPIP] = Point3D{X: x - 0.08, Y: y + 0.13}
	landmarks.Points[PinkyDIP] = Point3D{X: x - 0.08, Y: y + 0.09}
	landmarks.Points[PinkyTip] = Point3D{X: x - 0.08, Y: y + 0.05}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm.
// The thumb and index tips are far apart, so it never counts as a pinch.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}
