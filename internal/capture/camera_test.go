package capture

import (
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name     string
		deviceID int
		wantFPS  int
	}{
		{
			name:     "default device",
			deviceID: 0,
			wantFPS:  DefaultFPS,
		},
		{
			name:     "device 1",
			deviceID: 1,
			wantFPS:  DefaultFPS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.deviceID)

			if cam == nil {
				t.Fatal("NewCamera returned nil")
			}

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d (default)", got, tt.wantFPS)
			}

			// Camera should not be running initially
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestDevice(t *testing.T) {
	tests := []struct {
		name       string
		device     Device
		wantStream bool
		wantMirror bool
		wantString string
	}{
		{
			name:       "webcam",
			device:     Webcam(1),
			wantStream: false,
			wantMirror: true,
			wantString: "webcam 1",
		},
		{
			name:       "rtmp stream",
			device:     Stream("rtmp://localhost/live/glasses"),
			wantStream: true,
			wantMirror: false,
			wantString: "rtmp://localhost/live/glasses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.IsStream(); got != tt.wantStream {
				t.Errorf("IsStream() = %v, want %v", got, tt.wantStream)
			}
			if tt.device.Mirror != tt.wantMirror {
				t.Errorf("Mirror = %v, want %v", tt.device.Mirror, tt.wantMirror)
			}
			if got := tt.device.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}

	if Stream("rtmp://x").BufferSize != DefaultBufferSize {
		t.Errorf("expected stream buffer size %d", DefaultBufferSize)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{
			name:    "set to 10",
			fps:     10,
			wantFPS: 10,
		},
		{
			name:    "set to 1",
			fps:     1,
			wantFPS: 1,
		},
		{
			name:    "set to 0 should keep previous",
			fps:     0,
			wantFPS: 1, // Previous value
		},
		{
			name:    "set to negative should keep previous",
			fps:     -5,
			wantFPS: 1, // Previous value
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			got := cam.FPS()
			if got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewDevice(Stream("rtmp://localhost/live/none"))

	if cam.IsOpen() {
		t.Error("IsOpen() should return false before Open() is called")
	}

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame() error = %v, want %v", err, ErrCameraNotOpen)
	}

	// Close on a camera that was never opened is a no-op
	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCamera_OpenClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping camera test in short mode")
	}

	cam := NewCamera(0)
	if err := cam.Open(); err != nil {
		t.Skipf("no camera available: %v", err)
	}
	defer cam.Close()

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer frame.Close()

	if frame.Empty() {
		t.Error("expected a non-empty frame")
	}
}
