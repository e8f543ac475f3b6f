package engine

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the logger shared by the engine and its stages.
//
// Parameters:
//   - logger: the zap logger to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiler enables frame profiling. The profiler is ticked once per presented frame.
//
// Parameters:
//   - p: the profiler to tick, or nil to disable profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithCameraOptions passes options to the arcball camera the engine creates. The screen size
// is always taken from the initial framebuffer size.
//
// Parameters:
//   - options: the camera options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraOptions(options ...camera.ArcballCameraBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.cameraOptions = append(e.cameraOptions, options...)
	}
}

// WithControllerOptions passes options to the camera controller the engine creates.
//
// Parameters:
//   - options: the controller options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithControllerOptions(options ...camera.CameraControllerOption) EngineBuilderOption {
	return func(e *engine) {
		e.controlOptions = append(e.controlOptions, options...)
	}
}

// WithZoom sets the scroll sensitivity and time step applied to every scroll event.
// Non-positive values keep the defaults.
//
// Parameters:
//   - sensitivity: the multiplier applied to raw scroll deltas
//   - timeStep: the zoom time step
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithZoom(sensitivity, timeStep float32) EngineBuilderOption {
	return func(e *engine) {
		if sensitivity > 0 {
			e.zoomSensitivity = sensitivity
		}
		if timeStep > 0 {
			e.zoomTimeStep = timeStep
		}
	}
}

// WithClearColor sets the color the display pass clears the surface to.
func WithClearColor(color gpu.Color) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = &color
	}
}

// WithResetKey sets the key code that resets the camera. Defaults to common.KeyR.
func WithResetKey(code uint32) EngineBuilderOption {
	return func(e *engine) {
		e.resetKey = code
	}
}
