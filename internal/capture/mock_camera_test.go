package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	// Create test frames
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	// Read both frames
	f1, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	f1.Close()

	f2, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	f2.Close()

	// Third read should fail (no loop)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("ReadFrame() error = %v, want %v", err, ErrNoMoreFrames)
	}
	if cam.Reads() != 2 {
		t.Errorf("Reads() = %d, want 2", cam.Reads())
	}
}

func TestMockCamera_Loop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	// Should loop indefinitely
	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_OpenError(t *testing.T) {
	cam := NewMockCamera(nil, false)
	cam.SetOpenError(errors.New("device busy"))

	if err := cam.Open(); err == nil {
		t.Fatal("expected Open() to fail")
	}
	if cam.IsOpen() {
		t.Error("camera should not be open after a failed Open()")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want %v", err, ErrCameraNotOpen)
	}
}

func TestMockCamera_ScriptedReads(t *testing.T) {
	cam := NewMockCamera(nil, false)
	broken := errors.New("decode failed")
	cam.ScriptReads(broken, nil, broken)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []error{broken, nil, broken, nil, nil}
	for i, w := range want {
		frame, err := cam.ReadFrame()
		if !errors.Is(err, w) {
			t.Errorf("read %d: error = %v, want %v", i, err, w)
		}
		if w == nil && frame == nil {
			t.Errorf("read %d: expected a frame", i)
		}
	}
	if cam.Reads() != 2 {
		t.Errorf("Reads() = %d, want 2", cam.Reads())
	}
}

func TestMockCamera_CountsOpensAndCloses(t *testing.T) {
	cam := NewMockCamera(nil, false)
	cam.SetOpenError(errors.New("device busy"))
	cam.Open()

	cam.SetOpenError(nil)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	cam.Close()

	if cam.Opens() != 2 || cam.Closes() != 1 {
		t.Errorf("Opens() = %d, Closes() = %d, want 2 and 1", cam.Opens(), cam.Closes())
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() after Close error = %v, want %v", err, ErrCameraNotOpen)
	}
}
