package display

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"go.uber.org/zap"
)

// DisplayStageBuilderOption is a functional option for configuring a DisplayStage.
type DisplayStageBuilderOption func(d *displayStage)

// WithClearColor sets the color the surface frame is cleared to before the quad is drawn.
// Defaults to opaque black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - DisplayStageBuilderOption: option function to apply
func WithClearColor(c gpu.Color) DisplayStageBuilderOption {
	return func(d *displayStage) {
		d.clearColor = c
	}
}

// WithSampler sets the sampler configuration. Zero fields take linear filtering and
// clamp-to-edge addressing.
//
// Parameters:
//   - desc: the sampler descriptor
//
// Returns:
//   - DisplayStageBuilderOption: option function to apply
func WithSampler(desc gpu.SamplerDescriptor) DisplayStageBuilderOption {
	return func(d *displayStage) {
		d.samplerDesc = desc
	}
}

// WithShaderSource replaces the embedded display shader. The source must declare render_target
// source_texture and source_sampler providers in the same group, plus vertex and fragment
// entry points.
//
// Parameters:
//   - source: the WGSL shader source
//
// Returns:
//   - DisplayStageBuilderOption: option function to apply
func WithShaderSource(source string) DisplayStageBuilderOption {
	return func(d *displayStage) {
		d.source = source
	}
}

// WithLogger sets the logger used for rebind diagnostics.
//
// Parameters:
//   - logger: the zap logger to use
//
// Returns:
//   - DisplayStageBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) DisplayStageBuilderOption {
	return func(d *displayStage) {
		if logger != nil {
			d.logger = logger
		}
	}
}
