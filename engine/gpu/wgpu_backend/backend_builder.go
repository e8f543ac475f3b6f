package wgpu_backend

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"go.uber.org/zap"
)

// BackendBuilderOption is a functional option applied during New.
type BackendBuilderOption func(*backend)

// WithPresentMode sets how finished frames are queued to the display. Defaults to Fifo.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - BackendBuilderOption: option function to apply
func WithPresentMode(mode gpu.PresentMode) BackendBuilderOption {
	return func(b *backend) {
		b.presentMode = mode
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - BackendBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) BackendBuilderOption {
	return func(b *backend) {
		b.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the debug label of the requested device.
func WithDeviceLabel(label string) BackendBuilderOption {
	return func(b *backend) {
		b.deviceLabel = label
	}
}

// WithLogger sets the logger used for negotiation diagnostics.
//
// Parameters:
//   - logger: the zap logger to use
//
// Returns:
//   - BackendBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) BackendBuilderOption {
	return func(b *backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}
