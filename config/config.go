// Package config loads the oxy-trace TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/logger"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
)

// Config is the full application configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Camera   CameraConfig   `toml:"camera"`
	Render   RenderConfig   `toml:"render"`
	Log      LogConfig      `toml:"log"`
	Profiler ProfilerConfig `toml:"profiler"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// CameraConfig holds the arcball camera and zoom settings.
type CameraConfig struct {
	Distance    float32 `toml:"distance"`
	MinDistance float32 `toml:"min_distance"`
	MaxDistance float32 `toml:"max_distance"`
	ZoomSpeed   float32 `toml:"zoom_speed"`
	PanScale    float32 `toml:"pan_scale"`

	// ZoomSensitivity scales platform scroll units into camera zoom units.
	ZoomSensitivity float32 `toml:"zoom_sensitivity"`
	ZoomTimeStep    float32 `toml:"zoom_time_step"`
}

type RenderConfig struct {
	// PresentMode is one of fifo, immediate, mailbox.
	PresentMode          string     `toml:"present_mode"`
	ClearColor           [4]float64 `toml:"clear_color"`
	ForceFallbackAdapter bool       `toml:"force_fallback_adapter"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	Encoding    string `toml:"encoding"`
}

type ProfilerConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// Duration is a time.Duration written as a Go duration string such as "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var presentModes = map[string]gpu.PresentMode{
	"fifo":      gpu.PresentModeFifo,
	"immediate": gpu.PresentModeImmediate,
	"mailbox":   gpu.PresentModeMailbox,
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-trace",
			Width:  800,
			Height: 600,
		},
		Camera: CameraConfig{
			Distance:        2,
			MinDistance:     0.1,
			MaxDistance:     1000,
			ZoomSpeed:       1,
			PanScale:        1,
			ZoomSensitivity: 1,
			ZoomTimeStep:    1.0 / 60.0,
		},
		Render: RenderConfig{
			PresentMode: "fifo",
			ClearColor:  [4]float64{0, 0, 0, 1},
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Profiler: ProfilerConfig{
			Enabled:  false,
			Interval: Duration{2 * time.Second},
		},
	}
}

// Load reads the TOML file at path over Default and validates the result. An empty path or a
// missing file yields the defaults. Unknown keys are rejected.
//
// Parameters:
//   - path: the config file path, or ""
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read or decoded, or fails validation
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
//
// Returns:
//   - error: the combined validation errors, or nil
func (c Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Camera.Distance <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera distance must be positive, got %v", c.Camera.Distance))
	}
	if c.Camera.MinDistance <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera min_distance must be positive, got %v", c.Camera.MinDistance))
	}
	if c.Camera.MinDistance > c.Camera.Distance {
		err = multierr.Append(err, fmt.Errorf("camera min_distance %v exceeds distance %v", c.Camera.MinDistance, c.Camera.Distance))
	}
	if c.Camera.MaxDistance < c.Camera.Distance {
		err = multierr.Append(err, fmt.Errorf("camera max_distance %v is below distance %v", c.Camera.MaxDistance, c.Camera.Distance))
	}
	if c.Camera.ZoomSpeed <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera zoom_speed must be positive, got %v", c.Camera.ZoomSpeed))
	}
	if c.Camera.PanScale <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera pan_scale must be positive, got %v", c.Camera.PanScale))
	}
	if c.Camera.ZoomSensitivity <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera zoom_sensitivity must be positive, got %v", c.Camera.ZoomSensitivity))
	}
	if c.Camera.ZoomTimeStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("camera zoom_time_step must be positive, got %v", c.Camera.ZoomTimeStep))
	}
	if _, ok := presentModes[strings.ToLower(c.Render.PresentMode)]; !ok {
		err = multierr.Append(err, fmt.Errorf("unknown present_mode %q", c.Render.PresentMode))
	}
	if c.Profiler.Enabled && c.Profiler.Interval.Duration <= 0 {
		err = multierr.Append(err, fmt.Errorf("profiler interval must be positive, got %v", c.Profiler.Interval))
	}
	return err
}

// PresentMode returns the configured present mode, Fifo if unknown.
func (c Config) PresentMode() gpu.PresentMode {
	return presentModes[strings.ToLower(c.Render.PresentMode)]
}

// ClearColor returns the display clear color.
func (c Config) ClearColor() gpu.Color {
	cc := c.Render.ClearColor
	return gpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// Logger returns the logger configuration.
func (c Config) Logger() logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		Development: c.Log.Development,
		Encoding:    c.Log.Encoding,
	}
}
