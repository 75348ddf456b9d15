// Package config loads the service configuration from a YAML file, a .env
// file and HANDGESTURES_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/capture"
	"github.com/PhilippeFerreiraDeSousa/hand-gestures/internal/gesture"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "HANDGESTURES_"

// SourceConfig selects the capture source.
type SourceConfig struct {
	RTMPURL   string  `yaml:"rtmp_url"`   // stream URL, empty selects the webcam
	UseWebcam bool    `yaml:"use_webcam"` // ignore RTMPURL
	WebcamID  int     `yaml:"webcam_id"`
	Fallback  bool    `yaml:"fallback"`   // open the webcam when the stream fails at startup
	HandDepth float64 `yaml:"hand_depth"` // 0 = pick from the source type
}

// ServerConfig holds the viewer HTTP settings.
type ServerConfig struct {
	Port             int    `yaml:"port"`
	StaticDir        string `yaml:"static_dir"`
	StreamIntervalMs int    `yaml:"stream_interval_ms"` // MJPEG poll
	EventIntervalMs  int    `yaml:"event_interval_ms"`  // SSE poll
	EventQueueSize   int    `yaml:"event_queue_size"`
	JPEGQuality      int    `yaml:"jpeg_quality"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// HooksConfig locates the photo hooks.
type HooksConfig struct {
	Dir       string `yaml:"dir"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// GestureConfig overrides the pinch and transform tuning. Zero keeps the default.
type GestureConfig struct {
	PinchThreshold float64 `yaml:"pinch_threshold"`
	ZoomSpeed      float64 `yaml:"zoom_speed"`
	RotationSpeed  float64 `yaml:"rotation_speed"`
	MinZoom        float64 `yaml:"min_zoom"`
	MaxZoom        float64 `yaml:"max_zoom"`
	MaxRotation    float64 `yaml:"max_rotation"` // symmetric bound in degrees
}

// TriggerConfig overrides the photo trigger tuning. Zero keeps the default,
// except for CooldownFrames, which starts at the default and may be set to 0.
type TriggerConfig struct {
	ConvergenceThreshold float64 `yaml:"convergence_threshold"`
	ProximityThreshold   float64 `yaml:"proximity_threshold"`
	CooldownFrames       int     `yaml:"cooldown_frames"`
	RefractoryMs         int     `yaml:"refractory_ms"`
}

// Config aggregates all application configuration.
type Config struct {
	Source    SourceConfig  `yaml:"source"`
	Server    ServerConfig  `yaml:"server"`
	Store     StoreConfig   `yaml:"store"`
	Hooks     HooksConfig   `yaml:"hooks"`
	Gesture   GestureConfig `yaml:"gesture"`
	Trigger   TriggerConfig `yaml:"trigger"`
	Tray      bool          `yaml:"tray"`
	Discovery bool          `yaml:"discovery"` // advertise the viewer over mDNS
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	dataDir := DataDir()
	return &Config{
		Source: SourceConfig{Fallback: true},
		Server: ServerConfig{
			Port:             8080,
			StreamIntervalMs: 50,
			EventIntervalMs:  100,
			EventQueueSize:   64,
			JPEGQuality:      80,
		},
		Store:     StoreConfig{Path: filepath.Join(dataDir, "handgestures.db")},
		Hooks:     HooksConfig{Dir: filepath.Join(dataDir, "hooks"), TimeoutMs: 5000},
		Trigger:   TriggerConfig{CooldownFrames: gesture.DefaultTriggerSettings().CooldownFrames},
		Tray:      true,
		Discovery: true,
	}
}

// DataDir returns ~/.handgestures, or the working directory when there is no home.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handgestures"
	}
	return filepath.Join(home, ".handgestures")
}

// Load reads a YAML file over the defaults. An empty path skips the file.
// Environment overrides are applied afterwards, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	}

	if err := LoadEnv(cfg, ".env"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads envFile into the process environment when it exists, then
// applies HANDGESTURES_* overrides to cfg. Variables already set win over the file.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg.Source.RTMPURL = getEnv("RTMP_URL", cfg.Source.RTMPURL)
	cfg.Source.UseWebcam = getEnvAsBool("USE_WEBCAM", cfg.Source.UseWebcam)
	cfg.Source.WebcamID = getEnvAsInt("WEBCAM_ID", cfg.Source.WebcamID)
	cfg.Source.Fallback = getEnvAsBool("FALLBACK", cfg.Source.Fallback)
	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Server.StaticDir = getEnv("STATIC_DIR", cfg.Server.StaticDir)
	cfg.Server.JPEGQuality = getEnvAsInt("JPEG_QUALITY", cfg.Server.JPEGQuality)
	cfg.Store.Path = getEnv("DB_PATH", cfg.Store.Path)
	cfg.Hooks.Dir = getEnv("HOOKS_DIR", cfg.Hooks.Dir)
	cfg.Hooks.TimeoutMs = getEnvAsInt("HOOKS_TIMEOUT_MS", cfg.Hooks.TimeoutMs)
	cfg.Trigger.CooldownFrames = getEnvAsInt("COOLDOWN_FRAMES", cfg.Trigger.CooldownFrames)
	cfg.Tray = getEnvAsBool("TRAY", cfg.Tray)
	cfg.Discovery = getEnvAsBool("DISCOVERY", cfg.Discovery)
	return nil
}

// Validate fills zero values with defaults and rejects impossible settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.JPEGQuality == 0 {
		c.Server.JPEGQuality = 80
	}
	if c.Server.JPEGQuality < 1 || c.Server.JPEGQuality > 100 {
		return fmt.Errorf("server.jpeg_quality must be between 1 and 100, got %d", c.Server.JPEGQuality)
	}
	if c.Server.StreamIntervalMs <= 0 {
		c.Server.StreamIntervalMs = 50
	}
	if c.Server.EventIntervalMs <= 0 {
		c.Server.EventIntervalMs = 100
	}
	if c.Server.EventQueueSize <= 0 {
		c.Server.EventQueueSize = 64
	}
	if c.Hooks.TimeoutMs <= 0 {
		c.Hooks.TimeoutMs = 5000
	}
	if c.Source.WebcamID < 0 {
		return fmt.Errorf("source.webcam_id must be >= 0, got %d", c.Source.WebcamID)
	}
	if c.Source.HandDepth < 0 {
		return fmt.Errorf("source.hand_depth must be >= 0, got %.2f", c.Source.HandDepth)
	}
	// The view is a centre crop, so zooming out past the full frame is not possible
	if c.Gesture.MinZoom != 0 && c.Gesture.MinZoom < 1 {
		return fmt.Errorf("gesture.min_zoom must be >= 1, got %.2f", c.Gesture.MinZoom)
	}
	minZoom := math.Max(c.Gesture.MinZoom, 1)
	if c.Gesture.MaxZoom != 0 && c.Gesture.MaxZoom < minZoom {
		return fmt.Errorf("gesture.max_zoom (%.2f) is below gesture.min_zoom (%.2f)", c.Gesture.MaxZoom, minZoom)
	}
	if c.Gesture.MaxRotation < 0 || c.Gesture.MaxRotation > 180 {
		return fmt.Errorf("gesture.max_rotation must be between 0 and 180, got %.2f", c.Gesture.MaxRotation)
	}
	if c.Trigger.CooldownFrames < 0 {
		return fmt.Errorf("trigger.cooldown_frames must be >= 0, got %d", c.Trigger.CooldownFrames)
	}
	return nil
}

// StreamSource reports whether the primary source is a network stream.
func (c *Config) StreamSource() bool {
	return !c.Source.UseWebcam && strings.TrimSpace(c.Source.RTMPURL) != ""
}

// Supervisor builds the capture supervisor configuration for the selected source.
func (c *Config) Supervisor() capture.SupervisorConfig {
	webcam := capture.Webcam(c.Source.WebcamID)
	if !c.StreamSource() {
		return capture.DefaultSupervisorConfig(webcam)
	}

	sc := capture.DefaultSupervisorConfig(capture.Stream(strings.TrimSpace(c.Source.RTMPURL)))
	if c.Source.Fallback {
		sc.Fallback = &webcam
	}
	return sc
}

// GestureSettings returns the controller tuning with overrides applied.
// HandDepth is left at zero unless source.hand_depth is set; the pipeline
// then picks it from the device it actually opened.
func (c *Config) GestureSettings() gesture.Settings {
	s := gesture.DefaultSettings(c.Source.HandDepth)
	s.HandDepth = c.Source.HandDepth
	g := c.Gesture
	if g.PinchThreshold > 0 {
		s.PinchThreshold = g.PinchThreshold
	}
	if g.ZoomSpeed > 0 {
		s.ZoomSpeed = g.ZoomSpeed
	}
	if g.RotationSpeed > 0 {
		s.RotationSpeed = g.RotationSpeed
	}
	if g.MinZoom > 0 {
		s.MinZoom = g.MinZoom
	}
	if g.MaxZoom > 0 {
		s.MaxZoom = g.MaxZoom
	}
	if g.MaxRotation > 0 {
		s.MinRotation = -g.MaxRotation
		s.MaxRotation = g.MaxRotation
	}
	return s
}

// TriggerSettings returns the photo trigger tuning with overrides applied.
func (c *Config) TriggerSettings() gesture.TriggerSettings {
	s := gesture.DefaultTriggerSettings()
	t := c.Trigger
	if t.ConvergenceThreshold > 0 {
		s.ConvergenceThreshold = t.ConvergenceThreshold
	}
	if t.ProximityThreshold > 0 {
		s.ProximityThreshold = t.ProximityThreshold
	}
	s.CooldownFrames = t.CooldownFrames
	if t.RefractoryMs > 0 {
		s.Refractory = time.Duration(t.RefractoryMs) * time.Millisecond
	}
	return s
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// StreamInterval returns the MJPEG poll interval.
func (c *Config) StreamInterval() time.Duration {
	return time.Duration(c.Server.StreamIntervalMs) * time.Millisecond
}

// EventInterval returns the SSE poll interval.
func (c *Config) EventInterval() time.Duration {
	return time.Duration(c.Server.EventIntervalMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
