// Package capture reads frames from webcams and network streams using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS        = 30
	DefaultWidth      = 640
	DefaultHeight     = 480
	DefaultBufferSize = 5
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Device identifies a capture source. A non-empty URL selects a network
// stream (RTMP, RTSP, HTTP); otherwise ID selects a local webcam.
type Device struct {
	ID         int
	URL        string
	Width      int
	Height     int
	FPS        int
	BufferSize int  // frames buffered by the backend, streams only
	Mirror     bool // flip horizontally for a selfie view
}

// Webcam returns the device settings for a local camera.
func Webcam(id int) Device {
	return Device{
		ID:     id,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		FPS:    DefaultFPS,
		Mirror: true,
	}
}

// Stream returns the device settings for a network stream.
func Stream(url string) Device {
	return Device{
		URL:        url,
		BufferSize: DefaultBufferSize,
	}
}

// IsStream reports whether the device is a network stream.
func (d Device) IsStream() bool {
	return d.URL != ""
}

func (d Device) String() string {
	if d.IsStream() {
		return d.URL
	}
	return fmt.Sprintf("webcam %d", d.ID)
}

// Camera defines the interface for capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a device or stream using GoCV.
type cameraImpl struct {
	device  Device
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a new Camera for a local webcam.
func NewCamera(deviceID int) Camera {
	return NewDevice(Webcam(deviceID))
}

// NewDevice creates a new Camera for any device.
func NewDevice(device Device) Camera {
	fps := device.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &cameraImpl{
		device: device,
		fps:    fps,
	}
}

// Open opens the device for capturing frames. Webcams are asked for the
// configured resolution; streams get a small backend buffer to absorb jitter.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.device.IsStream() {
		capture, err = gocv.OpenVideoCapture(c.device.URL)
	} else {
		capture, err = gocv.OpenVideoCapture(c.device.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("failed to open %s", c.device)
	}

	if c.device.IsStream() {
		if c.device.BufferSize > 0 {
			capture.Set(gocv.VideoCaptureBufferSize, float64(c.device.BufferSize))
		}
	} else {
		if c.device.Width > 0 && c.device.Height > 0 {
			capture.Set(gocv.VideoCaptureFrameWidth, float64(c.device.Width))
			capture.Set(gocv.VideoCaptureFrameHeight, float64(c.device.Height))
		}
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("failed to read frame from %s", c.device)
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil && !c.device.IsStream() {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
