// Package main provides a photo hook that plays a camera shutter sound.
// It uses afplay on macOS and paplay elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the input from the hook executor.
type Request struct {
	Event  string          `json:"event"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the hook executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config is read from plugin.json. An empty Sound uses the platform default.
type Config struct {
	Sound string `json:"sound"`
}

var defaultSounds = map[string]string{
	"darwin": "/System/Library/Sounds/Glass.aiff",
	"linux":  "/usr/share/sounds/freedesktop/stereo/camera-shutter.oga",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(fmt.Errorf("failed to parse config: %w", err))
			return
		}
	}

	writeResponse(play(cfg.Sound))
}

// play runs the platform audio player and returns any error.
func play(sound string) error {
	if sound == "" {
		sound = defaultSounds[runtime.GOOS]
	}
	if sound == "" {
		return fmt.Errorf("no default sound on %s", runtime.GOOS)
	}

	player := "paplay"
	if runtime.GOOS == "darwin" {
		player = "afplay"
	}

	cmd := exec.Command(player, sound)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
