package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.log")
	l, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"level", Config{Level: "loud"}},
		{"encoding", Config{Encoding: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(Config{Level: "warn", Encoding: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("surface outdated", zap.Uint32("width", 800))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "surface outdated", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, float64(800), entry["width"])
	assert.Contains(t, entry, "ts")
}

func TestConsoleDefault(t *testing.T) {
	var buf bytes.Buffer
	l, err := build(Config{}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("frame")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "info\tframe")
}
