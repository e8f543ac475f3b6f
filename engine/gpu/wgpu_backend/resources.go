package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

type texture struct {
	texture *wgpu.Texture
	width   uint32
	height  uint32
	format  gpu.TextureFormat
}

var _ gpu.Texture = &texture{}

func (t *texture) Width() uint32 {
	return t.width
}

func (t *texture) Height() uint32 {
	return t.height
}

func (t *texture) Format() gpu.TextureFormat {
	return t.format
}

func (t *texture) CreateView() (gpu.TextureView, error) {
	v, err := t.texture.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return &textureView{view: v}, nil
}

func (t *texture) Release() {
	t.texture.Release()
}

type textureView struct {
	view *wgpu.TextureView
}

var _ gpu.TextureView = &textureView{}

func (v *textureView) Release() {
	v.view.Release()
}

type buffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

var _ gpu.Buffer = &buffer{}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) Release() {
	b.buffer.Release()
}

type sampler struct {
	sampler *wgpu.Sampler
}

func (s *sampler) Release() {
	s.sampler.Release()
}

type bindGroupLayout struct {
	layout *wgpu.BindGroupLayout
}

func (l *bindGroupLayout) Release() {
	l.layout.Release()
}

type bindGroup struct {
	group *wgpu.BindGroup
}

func (b *bindGroup) Release() {
	b.group.Release()
}

// computePipeline keeps the pipeline layout alive for as long as the pipeline.
type computePipeline struct {
	pipeline *wgpu.ComputePipeline
	layout   *wgpu.PipelineLayout
}

func (p *computePipeline) Release() {
	p.pipeline.Release()
	p.layout.Release()
}

type renderPipeline struct {
	pipeline *wgpu.RenderPipeline
	layout   *wgpu.PipelineLayout
}

func (p *renderPipeline) Release() {
	p.pipeline.Release()
	p.layout.Release()
}

type commandBuffer struct {
	buffer *wgpu.CommandBuffer
}

func (c *commandBuffer) Release() {
	c.buffer.Release()
}

type commandEncoder struct {
	encoder *wgpu.CommandEncoder
}

var _ gpu.CommandEncoder = &commandEncoder{}

func (e *commandEncoder) BeginComputePass(label string) gpu.ComputePass {
	return &computePass{pass: e.encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})}
}

func (e *commandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	view := desc.View.(*textureView)
	pass := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view.view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: desc.ClearColor.R,
					G: desc.ClearColor.G,
					B: desc.ClearColor.B,
					A: desc.ClearColor.A,
				},
			},
		},
	})
	return &renderPass{pass: pass}
}

func (e *commandEncoder) Finish() (gpu.CommandBuffer, error) {
	cb, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &commandBuffer{buffer: cb}, nil
}

func (e *commandEncoder) Release() {
	e.encoder.Release()
}

type computePass struct {
	pass *wgpu.ComputePassEncoder
}

func (p *computePass) SetPipeline(cp gpu.ComputePipeline) {
	p.pass.SetPipeline(cp.(*computePipeline).pipeline)
}

func (p *computePass) SetBindGroup(index uint32, bg gpu.BindGroup) {
	p.pass.SetBindGroup(index, bg.(*bindGroup).group, nil)
}

func (p *computePass) DispatchWorkgroups(x, y, z uint32) {
	p.pass.DispatchWorkgroups(x, y, z)
}

func (p *computePass) End() error {
	defer p.pass.Release()
	return p.pass.End()
}

type renderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *renderPass) SetPipeline(rp gpu.RenderPipeline) {
	p.pass.SetPipeline(rp.(*renderPipeline).pipeline)
}

func (p *renderPass) SetBindGroup(index uint32, bg gpu.BindGroup) {
	p.pass.SetBindGroup(index, bg.(*bindGroup).group, nil)
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) End() error {
	defer p.pass.Release()
	return p.pass.End()
}

// device creates resources on a negotiated wgpu.Device and doubles as the gpu.Queue.
type device struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ gpu.Device = &device{}
var _ gpu.Queue = &device{}

func (d *device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	t, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        toTextureFormat(desc.Format),
		Usage:         toTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}
	return &texture{texture: t, width: desc.Width, height: desc.Height, format: desc.Format}, nil
}

func (d *device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Contents != nil {
		b, err := d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    desc.Label,
			Contents: desc.Contents,
			Usage:    toBufferUsage(desc.Usage),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
		}
		return &buffer{buffer: b, size: uint64(len(desc.Contents))}, nil
	}

	b, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
	}
	return &buffer{buffer: b, size: desc.Size}, nil
}

func (d *device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toAddressMode(desc.AddressModeU),
		AddressModeV:  toAddressMode(desc.AddressModeV),
		AddressModeW:  toAddressMode(desc.AddressModeW),
		MagFilter:     toFilterMode(desc.MagFilter),
		MinFilter:     toFilterMode(desc.MinFilter),
		MipmapFilter:  toMipmapFilterMode(desc.MinFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   desc.LodMaxClamp,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", desc.Label, err)
	}
	return &sampler{sampler: s}, nil
}

func (d *device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = toLayoutEntry(e)
	}
	l, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", desc.Label, err)
	}
	return &bindGroupLayout{layout: l}, nil
}

func (d *device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			entry.Buffer = e.Buffer.(*buffer).buffer
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		case e.TextureView != nil:
			entry.TextureView = e.TextureView.(*textureView).view
		case e.Sampler != nil:
			entry.Sampler = e.Sampler.(*sampler).sampler
		default:
			return nil, fmt.Errorf("bind group %q entry %d binds no resource", desc.Label, e.Binding)
		}
		entries[i] = entry
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout.(*bindGroupLayout).layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", desc.Label, err)
	}
	return &bindGroup{group: bg}, nil
}

func (d *device) CreateComputePipeline(desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipeline, error) {
	module, err := d.createShaderModule(desc.Compute)
	if err != nil {
		return nil, err
	}
	defer module.Release()

	layout, err := d.createPipelineLayout(desc.Label, desc.Layouts)
	if err != nil {
		return nil, err
	}

	p, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: desc.Compute.EntryPoint,
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("failed to create compute pipeline %q: %w", desc.Label, err)
	}
	return &computePipeline{pipeline: p, layout: layout}, nil
}

func (d *device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	vs, err := d.createShaderModule(desc.Vertex)
	if err != nil {
		return nil, err
	}
	defer vs.Release()

	fs, err := d.createShaderModule(desc.Fragment)
	if err != nil {
		return nil, err
	}
	defer fs.Release()

	layout, err := d.createPipelineLayout(desc.Label, desc.Layouts)
	if err != nil {
		return nil, err
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    toTextureFormat(desc.TargetFormat),
					Blend:     toBlendState(desc.Blend),
					WriteMask: toWriteMask(desc.WriteMask),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toTopology(desc.Topology),
			FrontFace: toFrontFace(desc.FrontFace),
			CullMode:  toCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("failed to create render pipeline %q: %w", desc.Label, err)
	}
	return &renderPipeline{pipeline: p, layout: layout}, nil
}

func (d *device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	e, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder %q: %w", label, err)
	}
	return &commandEncoder{encoder: e}, nil
}

func (d *device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok || b == nil {
		return fmt.Errorf("write to foreign buffer %T", buf)
	}
	return d.queue.WriteBuffer(b.buffer, offset, data)
}

func (d *device) Submit(buffers ...gpu.CommandBuffer) {
	native := make([]*wgpu.CommandBuffer, len(buffers))
	for i, cb := range buffers {
		native[i] = cb.(*commandBuffer).buffer
	}
	d.queue.Submit(native...)
}

func (d *device) createShaderModule(stage gpu.ProgrammableStage) (*wgpu.ShaderModule, error) {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: stage.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: stage.Code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %q: %w", stage.Label, err)
	}
	return m, nil
}

// createPipelineLayout orders layouts by group index. Gaps are not allowed here; the renderer
// fills them with empty layouts.
func (d *device) createPipelineLayout(label string, layouts []gpu.BindGroupLayout) (*wgpu.PipelineLayout, error) {
	native := make([]*wgpu.BindGroupLayout, len(layouts))
	for i, l := range layouts {
		bgl, ok := l.(*bindGroupLayout)
		if !ok || bgl == nil {
			return nil, fmt.Errorf("pipeline %q: missing bind group layout for group %d", label, i)
		}
		native[i] = bgl.layout
	}
	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: native,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout %q: %w", label, err)
	}
	return layout, nil
}
