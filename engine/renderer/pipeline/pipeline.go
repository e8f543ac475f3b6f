package pipeline

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	// Shaders must be set before the renderer registers the pipeline.
	vertexShader, fragmentShader, computeShader shader.Shader

	renderPipeline  gpu.RenderPipeline
	computePipeline gpu.ComputePipeline

	// bindGroupLayouts are indexed by group and created by the renderer on registration.
	bindGroupLayouts []gpu.BindGroupLayout

	// Render state. Compute pipelines keep the defaults and ignore them.
	blendEnabled bool
	cullMode     gpu.CullMode
	topology     gpu.PrimitiveTopology
	frontFace    gpu.FrontFace
	writeMask    gpu.ColorWriteMask
	blendState   *gpu.BlendState
}

// Pipeline is a GPU pipeline, either a render pipeline (vertex + fragment shaders) or a compute
// pipeline (compute shader), together with the configuration used to create it and the bind
// group layouts it was created against.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader associated with the specified type if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve (vertex, fragment, or compute)
	//
	// Returns:
	//   - shader.Shader: the shader associated with the specified type, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the created render pipeline, or nil for compute pipelines and
	// pipelines that have not been registered.
	//
	// Returns:
	//   - gpu.RenderPipeline: the render pipeline
	RenderPipeline() gpu.RenderPipeline

	// ComputePipeline returns the created compute pipeline, or nil for render pipelines and
	// pipelines that have not been registered.
	//
	// Returns:
	//   - gpu.ComputePipeline: the compute pipeline
	ComputePipeline() gpu.ComputePipeline

	// BindGroupLayout returns the layout the pipeline was created with for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - gpu.BindGroupLayout: the layout, or nil if the group is not declared
	BindGroupLayout(group int) gpu.BindGroupLayout

	BlendEnabled() bool
	CullMode() gpu.CullMode
	Topology() gpu.PrimitiveTopology
	FrontFace() gpu.FrontFace
	WriteMask() gpu.ColorWriteMask

	// BlendState returns the blend state used when blending is enabled.
	//
	// Returns:
	//   - *gpu.BlendState: the blend state, or nil when BlendEnabled is false
	BlendState() *gpu.BlendState

	// SetRenderPipeline sets the created render pipeline.
	//
	// Parameters:
	//   - p: the render pipeline
	SetRenderPipeline(p gpu.RenderPipeline)

	// SetComputePipeline sets the created compute pipeline.
	//
	// Parameters:
	//   - p: the compute pipeline
	SetComputePipeline(p gpu.ComputePipeline)

	// SetBindGroupLayouts sets the layouts the pipeline was created with, indexed by group.
	//
	// Parameters:
	//   - layouts: the bind group layouts
	SetBindGroupLayouts(layouts []gpu.BindGroupLayout)

	// Release frees the created pipeline and its bind group layouts.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline of the given type. Render pipelines default to a triangle
// list with counter-clockwise front faces, no culling, all channels written, and blending off.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: the type of pipeline to create (render or compute)
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified type and configuration
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		cullMode:     gpu.CullModeNone,
		topology:     gpu.PrimitiveTopologyTriangleList,
		frontFace:    gpu.FrontFaceCCW,
		writeMask:    gpu.ColorWriteMaskAll,
		blendState: &gpu.BlendState{
			Color: gpu.BlendComponent{
				SrcFactor: gpu.BlendFactorSrcAlpha,
				DstFactor: gpu.BlendFactorOneMinusSrcAlpha,
				Operation: gpu.BlendOperationAdd,
			},
			Alpha: gpu.BlendComponent{
				SrcFactor: gpu.BlendFactorOne,
				DstFactor: gpu.BlendFactorOneMinusSrcAlpha,
				Operation: gpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) RenderPipeline() gpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) ComputePipeline() gpu.ComputePipeline {
	return p.computePipeline
}

func (p *pipeline) BindGroupLayout(group int) gpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() gpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() gpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() gpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() gpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *gpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp gpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp gpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) SetBindGroupLayouts(layouts []gpu.BindGroupLayout) {
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}
