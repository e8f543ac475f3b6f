package renderer

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger used for registration diagnostics.
//
// Parameters:
//   - logger: the zap logger to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTargetFormat sets the color target format for render pipelines instead of the surface
// format. Needed when the renderer runs without a surface.
//
// Parameters:
//   - format: the color target format
//
// Returns:
//   - RendererBuilderOption: a function that applies the target format option to a renderer
func WithTargetFormat(format gpu.TextureFormat) RendererBuilderOption {
	return func(r *renderer) {
		r.targetFormat = format
	}
}
