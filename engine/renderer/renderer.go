package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"go.uber.org/zap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	ctx    *gpu.Context
	logger *zap.Logger

	pipelineCache map[string]pipeline.Pipeline

	// targetFormat overrides the surface format for render pipeline color targets.
	targetFormat gpu.TextureFormat
}

// Renderer is the resource layer shared by the compute and display stages.
//
// It turns shaders into registered pipelines, builds bind groups for BindGroupProviders against a
// pipeline's layouts, creates samplers, and writes buffers through the device queue. It does not
// record commands; stages record their own passes into the frame's command encoder.
type Renderer interface {
	// Context returns the GPU context this renderer creates resources on.
	//
	// Returns:
	//   - *gpu.Context: the shared GPU context
	Context() *gpu.Context

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline objects (render or compute) and their bind group
	// layouts for one or more pipelines, then caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitBindGroup builds the bind group for one group index of a registered pipeline and stores
	// it on the provider. Texture views and samplers must already be set on the provider. Missing
	// buffers are created with their layout's minimum binding size and owned by the provider.
	// A bind group already held by the provider is released once the new one exists.
	//
	// Parameters:
	//   - provider: the BindGroupProvider holding the bound resources
	//   - p: the registered pipeline whose layout the bind group is created against
	//   - group: the bind group index
	//
	// Returns:
	//   - error: an error if a resource is missing or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int) error

	// InitSampler creates a sampler and stores it on the provider at the given binding, replacing
	// and releasing any sampler already there. Zero fields of the descriptor take linear filtering
	// and clamp-to-edge addressing.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the sampler on
	//   - binding: the binding index for this sampler
	//   - desc: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, desc gpu.SamplerDescriptor) error

	// WriteBuffers enqueues every buffer write on the device queue in order.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	//
	// Returns:
	//   - error: an error if a target buffer is missing or the queue rejects a write
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// Release frees every cached pipeline and empties the cache.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer over the given GPU context.
//
// Parameters:
//   - ctx: the GPU context used for all resource creation
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(ctx *gpu.Context, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		ctx:           ctx,
		logger:        zap.NewNop(),
		pipelineCache: make(map[string]pipeline.Pipeline),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) Context() *gpu.Context {
	return r.ctx
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		if _, exists := r.pipelineCache[p.PipelineKey()]; exists {
			continue
		}

		var err error
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			err = r.registerComputePipeline(p)
		case pipeline.PipelineTypeRender:
			err = r.registerRenderPipeline(p)
		default:
			err = fmt.Errorf("unknown pipeline type %d", p.Type())
		}
		if err != nil {
			return fmt.Errorf("failed to register pipeline %s: %w", p.PipelineKey(), err)
		}

		r.pipelineCache[p.PipelineKey()] = p
		r.logger.Debug("pipeline registered", zap.String("pipeline", p.PipelineKey()))
	}
	return nil
}

func (r *renderer) registerComputePipeline(p pipeline.Pipeline) error {
	computeShader := p.Shader(shader.ShaderTypeCompute)
	if computeShader == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	layouts, err := r.createBindGroupLayouts(p)
	if err != nil {
		return err
	}

	created, err := r.ctx.Device.CreateComputePipeline(&gpu.ComputePipelineDescriptor{
		Label:   p.PipelineKey() + " Compute Pipeline",
		Layouts: layouts,
		Compute: computeShader.Stage(),
	})
	if err != nil {
		releaseLayouts(layouts)
		return err
	}

	p.SetBindGroupLayouts(layouts)
	p.SetComputePipeline(created)
	return nil
}

func (r *renderer) registerRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	format := r.targetFormat
	if format == gpu.TextureFormatUndefined && r.ctx.Surface != nil {
		format = r.ctx.Surface.Format()
	}
	if format == gpu.TextureFormatUndefined {
		return errors.New("render pipeline needs a surface or an explicit target format")
	}

	layouts, err := r.createBindGroupLayouts(p)
	if err != nil {
		return err
	}

	created, err := r.ctx.Device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:        p.PipelineKey() + " Render Pipeline",
		Layouts:      layouts,
		Vertex:       vertexShader.Stage(),
		Fragment:     fragmentShader.Stage(),
		TargetFormat: format,
		Topology:     p.Topology(),
		FrontFace:    p.FrontFace(),
		CullMode:     p.CullMode(),
		Blend:        p.BlendState(),
		WriteMask:    p.WriteMask(),
	})
	if err != nil {
		releaseLayouts(layouts)
		return err
	}

	p.SetBindGroupLayouts(layouts)
	p.SetRenderPipeline(created)
	return nil
}

// createBindGroupLayouts creates one layout per group index up to the highest declared group.
// Undeclared groups below it get an empty layout so the pipeline layout has no holes.
func (r *renderer) createBindGroupLayouts(p pipeline.Pipeline) ([]gpu.BindGroupLayout, error) {
	descriptors := pipelineLayoutDescriptors(p)

	maxGroup := -1
	for g := range descriptors {
		if g > maxGroup {
			maxGroup = g
		}
	}

	layouts := make([]gpu.BindGroupLayout, maxGroup+1)
	for g := range layouts {
		desc, ok := descriptors[g]
		if !ok {
			desc = gpu.BindGroupLayoutDescriptor{Label: fmt.Sprintf("%s Group %d", p.PipelineKey(), g)}
		}
		layout, err := r.ctx.Device.CreateBindGroupLayout(&desc)
		if err != nil {
			releaseLayouts(layouts)
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		layouts[g] = layout
	}
	return layouts, nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, p pipeline.Pipeline, group int) error {
	layout := p.BindGroupLayout(group)
	if layout == nil {
		return fmt.Errorf("pipeline %s has no bind group layout for group %d", p.PipelineKey(), group)
	}
	descriptor := pipelineLayoutDescriptors(p)[group]

	entries := make([]gpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Type.IsTexture():
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no texture view", provider.Label(), binding)
			}
			entries[i] = gpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case entry.Type.IsSampler():
			s := provider.Sampler(binding)
			if s == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler, call InitSampler first", provider.Label(), binding)
			}
			entries[i] = gpu.BindGroupEntry{Binding: entry.Binding, Sampler: s}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				var err error
				buf, err = r.ctx.Device.CreateBuffer(&gpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  entry.MinBindingSize,
					Usage: bufferUsage(entry.Type),
				})
				if err != nil {
					return fmt.Errorf("%s: failed to create buffer for binding %d: %w", provider.Label(), binding, err)
				}
				provider.SetBuffer(binding, buf)
			}
			entries[i] = gpu.BindGroupEntry{Binding: entry.Binding, Buffer: buf}
		}
	}

	bindGroup, err := r.ctx.Device.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create bind group: %w", provider.Label(), err)
	}

	provider.ReleaseBindGroup()
	provider.SetBindGroup(bindGroup)
	return nil
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, desc gpu.SamplerDescriptor) error {
	s, err := r.ctx.Device.CreateSampler(&gpu.SamplerDescriptor{
		Label:        common.Coalesce(desc.Label, provider.Label()+" Sampler"),
		AddressModeU: common.Coalesce(desc.AddressModeU, gpu.AddressModeClampToEdge),
		AddressModeV: common.Coalesce(desc.AddressModeV, gpu.AddressModeClampToEdge),
		AddressModeW: common.Coalesce(desc.AddressModeW, gpu.AddressModeClampToEdge),
		MagFilter:    common.Coalesce(desc.MagFilter, gpu.FilterModeLinear),
		MinFilter:    common.Coalesce(desc.MinFilter, gpu.FilterModeLinear),
		LodMinClamp:  desc.LodMinClamp,
		LodMaxClamp:  common.Coalesce(desc.LodMaxClamp, 32.0),
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create sampler: %w", provider.Label(), err)
	}

	if old := provider.Sampler(binding); old != nil {
		old.Release()
	}
	provider.SetSampler(binding, s)
	return nil
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			return fmt.Errorf("%s: no buffer at binding %d", w.Provider.Label(), w.Binding)
		}
		if err := r.ctx.Queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("%s: failed to write binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
}

// pipelineLayoutDescriptors returns the bind group layout descriptors of every shader stage of p,
// merged by group index.
func pipelineLayoutDescriptors(p pipeline.Pipeline) map[int]gpu.BindGroupLayoutDescriptor {
	if p.Type() == pipeline.PipelineTypeCompute {
		if cs := p.Shader(shader.ShaderTypeCompute); cs != nil {
			return mergeBindGroupLayouts(cs.BindGroupLayoutDescriptors())
		}
		return nil
	}

	var stages []map[int]gpu.BindGroupLayoutDescriptor
	for _, t := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		if s := p.Shader(t); s != nil {
			stages = append(stages, s.BindGroupLayoutDescriptors())
		}
	}
	return mergeBindGroupLayouts(stages...)
}

func bufferUsage(t gpu.BindingType) gpu.BufferUsage {
	switch t {
	case gpu.BindingTypeStorageBuffer, gpu.BindingTypeReadOnlyStorageBuffer:
		return gpu.BufferUsageStorage | gpu.BufferUsageCopyDst
	default:
		return gpu.BufferUsageUniform | gpu.BufferUsageCopyDst
	}
}

func releaseLayouts(layouts []gpu.BindGroupLayout) {
	for _, l := range layouts {
		if l != nil {
			l.Release()
		}
	}
}
