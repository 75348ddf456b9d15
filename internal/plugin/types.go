// Package plugin discovers and runs photo hooks: external executables that
// receive each photo event on stdin and persist or announce it.
package plugin

import "encoding/json"

// Manifest describes a hook's metadata and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	WantsImage  bool            `json:"wantsImage"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the hook subscribes to event. An empty event
// list subscribes to everything.
func (m *Manifest) Handles(event string) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request is the JSON document written to a hook's stdin.
type Request struct {
	Event     string          `json:"event"`
	Filename  string          `json:"filename"`
	Timestamp float64         `json:"timestamp"`
	Zoom      float64         `json:"zoom"`
	Rotation  float64         `json:"rotation"`
	Source    string          `json:"source"`
	Image     []byte          `json:"image,omitempty"` // JPEG, base64 in JSON
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response is the JSON document a hook writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered hook with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
