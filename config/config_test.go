package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oxy-trace.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, gpu.PresentModeFifo, cfg.PresentMode())
	assert.Equal(t, gpu.Color{A: 1}, cfg.ClearColor())
	assert.Equal(t, float32(2), cfg.Camera.Distance)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "trace"
width = 1024

[camera]
zoom_sensitivity = 120.0
pan_scale = 0.5
max_distance = 40.0

[render]
present_mode = "Mailbox"
clear_color = [0.1, 0.2, 0.3, 1.0]

[log]
level = "debug"

[profiler]
enabled = true
interval = "500ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Window.Title)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, float32(120), cfg.Camera.ZoomSensitivity)
	assert.Equal(t, float32(1.0/60.0), cfg.Camera.ZoomTimeStep)
	assert.Equal(t, float32(0.5), cfg.Camera.PanScale)
	assert.Equal(t, float32(40), cfg.Camera.MaxDistance)
	assert.Equal(t, gpu.PresentModeMailbox, cfg.PresentMode())
	assert.Equal(t, gpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, cfg.ClearColor())
	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Profiler.Interval.Duration)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[window]\ncolour = 1\n"},
		{"bad syntax", "[window\n"},
		{"bad duration", "[profiler]\ninterval = \"soon\"\n"},
		{"negative size", "[window]\nwidth = -1\n"},
		{"unknown present mode", "[render]\npresent_mode = \"vsync\"\n"},
		{"zero pan scale", "[camera]\npan_scale = 0.0\n"},
		{"max below distance", "[camera]\ndistance = 5.0\nmax_distance = 4.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Window.Height = 0
	cfg.Camera.Distance = 0
	cfg.Camera.ZoomSensitivity = -1

	err := cfg.Validate()
	require.Error(t, err)
	// distance 0 also trips the min_distance ordering check
	assert.Len(t, multierr.Errors(err), 4)
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load("../oxy-trace.example.toml")
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Profiler.Interval.Duration)
	assert.Equal(t, gpu.PresentModeFifo, cfg.PresentMode())
	assert.Equal(t, float32(1), cfg.Camera.PanScale)
	assert.Equal(t, float32(1000), cfg.Camera.MaxDistance)
}
