package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.StreamInterval() != 50*time.Millisecond {
		t.Errorf("expected stream interval 50ms, got %v", cfg.StreamInterval())
	}
	if cfg.EventInterval() != 100*time.Millisecond {
		t.Errorf("expected event interval 100ms, got %v", cfg.EventInterval())
	}
	if cfg.StreamSource() {
		t.Error("expected the webcam to be the default source")
	}
	if d := cfg.GestureSettings().HandDepth; d != 0 {
		t.Errorf("expected hand depth left to the pipeline, got %v", d)
	}
	if cfg.Hooks.TimeoutMs != 5000 {
		t.Errorf("expected hooks timeout 5000, got %d", cfg.Hooks.TimeoutMs)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := writeFile(t, dir, "config.yaml", `
source:
  rtmp_url: rtmp://10.0.0.215/live/glasses
  webcam_id: 1
server:
  port: 9090
  jpeg_quality: 70
gesture:
  max_zoom: 4
  max_rotation: 30
trigger:
  cooldown_frames: 20
  refractory_ms: 1500
tray: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Addr() != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Addr())
	}
	if cfg.Server.JPEGQuality != 70 {
		t.Errorf("expected quality 70, got %d", cfg.Server.JPEGQuality)
	}
	if cfg.Tray {
		t.Error("expected tray disabled")
	}
	if !cfg.StreamSource() {
		t.Fatal("expected a stream source")
	}

	sc := cfg.Supervisor()
	if sc.Primary.URL != "rtmp://10.0.0.215/live/glasses" {
		t.Errorf("unexpected primary %v", sc.Primary)
	}
	if sc.Fallback == nil || sc.Fallback.ID != 1 {
		t.Errorf("expected webcam 1 fallback, got %+v", sc.Fallback)
	}

	s := cfg.GestureSettings()
	if s.MaxZoom != 4 || s.MinZoom != 1 {
		t.Errorf("expected zoom bounds [1,4], got [%v,%v]", s.MinZoom, s.MaxZoom)
	}
	if s.MinRotation != -30 || s.MaxRotation != 30 {
		t.Errorf("expected rotation bounds [-30,30], got [%v,%v]", s.MinRotation, s.MaxRotation)
	}

	ts := cfg.TriggerSettings()
	if ts.CooldownFrames != 20 || ts.Refractory != 1500*time.Millisecond {
		t.Errorf("unexpected trigger settings %+v", ts)
	}
	if ts.ConvergenceThreshold != 200 {
		t.Errorf("expected default convergence threshold, got %v", ts.ConvergenceThreshold)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "server: [", "unmarshal yaml"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad quality", "server:\n  jpeg_quality: 101\n", "jpeg_quality"},
		{"inverted zoom", "gesture:\n  min_zoom: 2\n  max_zoom: 1.5\n", "max_zoom"},
		{"zoom out", "gesture:\n  min_zoom: 0.5\n", "min_zoom"},
		{"max below full frame", "gesture:\n  max_zoom: 0.8\n", "max_zoom"},
		{"bad rotation", "gesture:\n  max_rotation: 270\n", "max_rotation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "config.yaml", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "HANDGESTURES_PORT=7000\nHANDGESTURES_USE_WEBCAM=true\nHANDGESTURES_WEBCAM_ID=2\n")

	// Restored on cleanup; unset so the file can provide them
	for _, key := range []string{"HANDGESTURES_PORT", "HANDGESTURES_USE_WEBCAM"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	// Variables already in the environment take precedence over the file
	t.Setenv("HANDGESTURES_WEBCAM_ID", "3")
	t.Setenv("HANDGESTURES_RTMP_URL", "rtmp://example/live")
	t.Setenv("HANDGESTURES_TRAY", "not-a-bool")

	cfg := Default()
	if err := LoadEnv(cfg, envFile); err != nil {
		t.Fatalf("LoadEnv() failed: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("expected port from .env, got %d", cfg.Server.Port)
	}
	if cfg.Source.WebcamID != 3 {
		t.Errorf("expected webcam id from environment, got %d", cfg.Source.WebcamID)
	}
	if !cfg.Source.UseWebcam || cfg.StreamSource() {
		t.Error("expected use_webcam to override the stream URL")
	}
	if !cfg.Tray {
		t.Error("expected an unparsable bool to keep the default")
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	cfg := Default()
	if err := LoadEnv(cfg, filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}

func TestHandDepth_Override(t *testing.T) {
	cfg := Default()
	cfg.Source.HandDepth = 1.25
	s := cfg.GestureSettings()
	if s.HandDepth != 1.25 {
		t.Errorf("expected explicit depth 1.25, got %v", s.HandDepth)
	}
	if got := s.EffectivePinchThreshold(); got != 80 {
		t.Errorf("expected pinch threshold 80, got %v", got)
	}
}

func TestTriggerSettings_Cooldown(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := cfg.TriggerSettings().CooldownFrames; got != 15 {
		t.Errorf("expected default cooldown 15, got %d", got)
	}

	path := writeFile(t, dir, "config.yaml", "trigger:\n  cooldown_frames: 0\n")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := cfg.TriggerSettings().CooldownFrames; got != 0 {
		t.Errorf("expected configured cooldown 0 to be kept, got %d", got)
	}

	path = writeFile(t, dir, "config.yaml", "trigger:\n  cooldown_frames: -1\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "cooldown_frames") {
		t.Errorf("expected cooldown_frames error, got %v", err)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
