package display

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_target"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"go.uber.org/zap"
)

// ShaderSource is the default full-screen display shader.
//
//go:embed assets/display.wgsl
var ShaderSource string

// PipelineKey is the renderer cache key of the display render pipeline.
const PipelineKey = "display"

// QuadVertexCount is the number of vertices drawn per composite: two triangles built in the
// vertex shader from vertex_index.
const QuadVertexCount = 6

// ErrNotBound is returned by Composite when no render target is bound.
var ErrNotBound = errors.New("display: no render target bound")

// displayStage is the implementation of the DisplayStage interface.
type displayStage struct {
	r      renderer.Renderer
	logger *zap.Logger

	source      string
	pipeline    pipeline.Pipeline
	provider    bind_group_provider.BindGroupProvider
	samplerDesc gpu.SamplerDescriptor
	clearColor  gpu.Color

	group          int
	textureBinding int
	samplerBinding int
}

// DisplayStage composites the scene's RenderTarget onto a presentable surface frame with a
// full-screen textured quad. It owns the sampler and the display bind group and borrows the
// target's view; whenever the target is replaced the stage must be rebound.
type DisplayStage interface {
	// Composite records a render pass that clears the frame view, binds the display pipeline
	// and bind group, and draws the full-screen quad without vertex buffers.
	//
	// Parameters:
	//   - encoder: the frame's command encoder
	//   - view: the acquired surface frame's view
	//
	// Returns:
	//   - error: ErrNotBound if no target is bound, or an error ending the pass
	Composite(encoder gpu.CommandEncoder, view gpu.TextureView) error

	// Rebind rebuilds the display bind group over the target's view, releasing the previous
	// bind group. A nil target leaves the stage unbound.
	//
	// Parameters:
	//   - target: the render target to sample
	//
	// Returns:
	//   - error: an error if the bind group could not be created
	Rebind(target render_target.RenderTarget) error

	// Bound reports whether a bind group is live.
	//
	// Returns:
	//   - bool: true if Composite can draw
	Bound() bool

	ClearColor() gpu.Color
	Pipeline() pipeline.Pipeline
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Release frees the bind group and the sampler. The borrowed view is left to its target.
	Release()
}

var _ DisplayStage = &displayStage{}

// NewDisplayStage builds the display stage: it parses the vertex and fragment entry points of
// the shader, registers the render pipeline against the surface format, creates the sampler,
// and binds target if it is not nil.
//
// Parameters:
//   - r: the renderer used for pipeline, sampler, and bind group creation
//   - target: the initial render target, or nil to bind later with Rebind
//   - options: a variadic list of DisplayStageBuilderOption functions
//
// Returns:
//   - DisplayStage: the ready stage
//   - error: an error if the shader is invalid or GPU resources could not be created
func NewDisplayStage(r renderer.Renderer, target render_target.RenderTarget, options ...DisplayStageBuilderOption) (DisplayStage, error) {
	d := &displayStage{
		r:          r,
		logger:     zap.NewNop(),
		source:     ShaderSource,
		clearColor: gpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
	for _, opt := range options {
		opt(d)
	}

	vs, err := shader.NewShader(PipelineKey+"_vs", shader.ShaderTypeVertex, d.source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse display vertex shader: %w", err)
	}
	fs, err := shader.NewShader(PipelineKey+"_fs", shader.ShaderTypeFragment, d.source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse display fragment shader: %w", err)
	}

	var ok bool
	var samplerGroup int
	d.group, d.textureBinding, ok = fs.FindBinding(shader.AnnotationArgRenderTarget, shader.AnnotationArgSourceTexture)
	if !ok {
		return nil, errors.New("display shader declares no render_target source_texture binding")
	}
	samplerGroup, d.samplerBinding, ok = fs.FindBinding(shader.AnnotationArgRenderTarget, shader.AnnotationArgSourceSampler)
	if !ok {
		return nil, errors.New("display shader declares no render_target source_sampler binding")
	}
	if samplerGroup != d.group {
		return nil, fmt.Errorf("display shader binds the sampler in group %d and the texture in group %d", samplerGroup, d.group)
	}

	d.pipeline = pipeline.NewPipeline(PipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithTopology(gpu.PrimitiveTopologyTriangleList),
		pipeline.WithBlendEnabled(false),
		pipeline.WithWriteMask(gpu.ColorWriteMaskAll),
		pipeline.WithCullMode(gpu.CullModeNone),
	)
	if err := r.RegisterPipelines(d.pipeline); err != nil {
		return nil, err
	}
	d.pipeline = r.Pipeline(PipelineKey)

	d.provider = bind_group_provider.NewBindGroupProvider("Display")
	if err := r.InitSampler(d.provider, d.samplerBinding, d.samplerDesc); err != nil {
		return nil, err
	}

	if target != nil {
		if err := d.Rebind(target); err != nil {
			d.provider.Release()
			return nil, err
		}
	}
	return d, nil
}

func (d *displayStage) Composite(encoder gpu.CommandEncoder, view gpu.TextureView) error {
	bg := d.provider.BindGroup()
	if bg == nil {
		return ErrNotBound
	}

	pass := encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:      "Display Render Pass",
		View:       view,
		ClearColor: d.clearColor,
	})
	pass.SetPipeline(d.pipeline.RenderPipeline())
	pass.SetBindGroup(uint32(d.group), bg)
	pass.Draw(QuadVertexCount, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("failed to end display render pass: %w", err)
	}
	return nil
}

func (d *displayStage) Rebind(target render_target.RenderTarget) error {
	d.provider.ReleaseBindGroup()
	if target == nil || target.View() == nil {
		return nil
	}

	d.provider.SetTextureView(d.textureBinding, target.View())
	if err := d.r.InitBindGroup(d.provider, d.pipeline, d.group); err != nil {
		return fmt.Errorf("failed to rebuild display bind group: %w", err)
	}

	d.logger.Debug("display rebound", zap.Uint32("width", target.Width()), zap.Uint32("height", target.Height()))
	return nil
}

func (d *displayStage) Bound() bool {
	return d.provider.BindGroup() != nil
}

func (d *displayStage) ClearColor() gpu.Color {
	return d.clearColor
}

func (d *displayStage) Pipeline() pipeline.Pipeline {
	return d.pipeline
}

func (d *displayStage) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return d.provider
}

func (d *displayStage) Release() {
	d.provider.Release()
}
