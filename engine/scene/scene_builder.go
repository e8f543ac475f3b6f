package scene

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"go.uber.org/zap"
)

// ComputeStageBuilderOption is a functional option for configuring a ComputeStage.
// Use the With* functions to create options.
type ComputeStageBuilderOption func(s *computeStage)

// WithCamera sets the arcball camera driven by the stage. Defaults to a camera built with
// camera.NewArcballCamera().
//
// Parameters:
//   - cam: the camera to own
//
// Returns:
//   - ComputeStageBuilderOption: option function to apply
func WithCamera(cam camera.ArcballCamera) ComputeStageBuilderOption {
	return func(s *computeStage) {
		s.cam = cam
	}
}

// WithZoom sets the factor applied to raw scroll deltas and the time step passed to the camera
// on every zoom. Non-positive values keep the defaults of 1 and DefaultZoomTimeStep.
//
// Parameters:
//   - sensitivity: the scroll delta multiplier
//   - timeStep: the zoom time step
//
// Returns:
//   - ComputeStageBuilderOption: option function to apply
func WithZoom(sensitivity, timeStep float32) ComputeStageBuilderOption {
	return func(s *computeStage) {
		if sensitivity > 0 {
			s.zoomSensitivity = sensitivity
		}
		if timeStep > 0 {
			s.zoomTimeStep = timeStep
		}
	}
}

// WithShaderSource replaces the embedded scene shader. The source must declare a render_target
// output_texture provider and a camera uniform in the same group.
//
// Parameters:
//   - source: the WGSL compute shader source
//
// Returns:
//   - ComputeStageBuilderOption: option function to apply
func WithShaderSource(source string) ComputeStageBuilderOption {
	return func(s *computeStage) {
		s.source = source
	}
}

// WithLogger sets the logger used for resize diagnostics.
//
// Parameters:
//   - logger: the zap logger to use
//
// Returns:
//   - ComputeStageBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) ComputeStageBuilderOption {
	return func(s *computeStage) {
		if logger != nil {
			s.logger = logger
		}
	}
}
