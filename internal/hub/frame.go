// Package hub distributes the latest rendered frame and published events
// from the single pipeline producer to any number of viewers.
package hub

import (
	"sync"
	"time"
)

// Frame is one encoded JPEG together with its metadata.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	Version    uint64
	CapturedAt time.Time
}

// Frames holds only the most recent frame. Slow readers skip frames rather
// than queue them.
type Frames struct {
	mu    sync.RWMutex
	frame Frame
}

// NewFrames creates an empty frame slot.
func NewFrames() *Frames {
	return &Frames{}
}

// Publish replaces the current frame with a copy of data and returns the new version.
func (f *Frames) Publish(data []byte, width, height int) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Reuse the slot buffer when it is large enough; readers only ever see copies.
	buf := f.frame.Data
	if cap(buf) < len(data) {
		buf = make([]byte, len(data))
	}
	buf = buf[:len(data)]
	copy(buf, data)

	f.frame = Frame{
		Data:       buf,
		Width:      width,
		Height:     height,
		Version:    f.frame.Version + 1,
		CapturedAt: time.Now(),
	}
	return f.frame.Version
}

// Latest returns a copy of the current frame. ok is false until the first Publish.
func (f *Frames) Latest() (Frame, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.frame.Version == 0 {
		return Frame{}, false
	}
	out := f.frame
	out.Data = make([]byte, len(f.frame.Data))
	copy(out.Data, f.frame.Data)
	return out, true
}

// LatestSince returns the current frame only when it is newer than version.
func (f *Frames) LatestSince(version uint64) (Frame, bool) {
	f.mu.RLock()
	current := f.frame.Version
	f.mu.RUnlock()

	if current == 0 || current == version {
		return Frame{}, false
	}
	return f.Latest()
}

// Version returns the version of the current frame, 0 before the first Publish.
func (f *Frames) Version() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frame.Version
}
