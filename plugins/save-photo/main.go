// Package main provides a photo hook that writes the transformed frame to disk.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Request represents the input from the hook executor.
type Request struct {
	Event    string          `json:"event"`
	Filename string          `json:"filename"`
	Zoom     float64         `json:"zoom"`
	Rotation float64         `json:"rotation"`
	Image    []byte          `json:"image"`
	Config   json.RawMessage `json:"config"`
}

// Response represents the output to the hook executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is read from plugin.json.
type Config struct {
	Dir string `json:"dir"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Event != "take_photo" {
		writeErrorResponse(fmt.Sprintf("unknown event: %s", req.Event))
		return
	}

	path, err := save(req)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	data, _ := json.Marshal(map[string]string{"path": path})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

// save writes the JPEG under the configured directory, "static" by default.
func save(req Request) (string, error) {
	if len(req.Image) == 0 {
		return "", fmt.Errorf("request carries no image")
	}

	// Only the base name is honoured so a request cannot escape the directory.
	name := filepath.Base(req.Filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", req.Filename)
	}

	cfg := Config{Dir: "static"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", cfg.Dir, err)
	}

	path := filepath.Join(cfg.Dir, name)
	if err := os.WriteFile(path, req.Image, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{
		Success: false,
		Error:   errMsg,
	})
}
