// Package gputest provides an in-memory recording implementation of the gpu contracts for
// tests. Every device, queue, encoder, and surface call is appended to a shared ordered log,
// released resources are tracked, and use of a bind group that references released storage
// is counted as a stale use.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
)

// ErrZeroSized is returned when a zero-sized texture or surface configuration is requested.
var ErrZeroSized = errors.New("gputest: zero-sized allocation")

// Device is a recording fake implementing gpu.Device and gpu.Queue.
type Device struct {
	mu *sync.Mutex

	// Log holds every recorded call in order.
	Log []string
	// Submissions holds the command list of every submitted command buffer, in order.
	Submissions [][]string

	Textures   []*Texture
	Buffers    []*Buffer
	BindGroups []*BindGroup
	Samplers   []*Sampler

	// ZeroSizedRequests counts zero-sized texture or surface requests.
	ZeroSizedRequests int
	// StaleUses counts bind group uses that referenced released resources.
	StaleUses int

	// FailTextures makes CreateTexture fail.
	FailTextures bool
	// FailFinish makes CommandEncoder.Finish fail.
	FailFinish bool
}

var _ gpu.Device = &Device{}
var _ gpu.Queue = &Device{}

// NewDevice creates an empty recording device.
//
// Returns:
//   - *Device: the recording device
func NewDevice() *Device {
	return &Device{mu: &sync.Mutex{}}
}

// NewContext creates a gpu.Context backed by a fresh recording device and surface.
//
// Parameters:
//   - format: the surface format to report
//
// Returns:
//   - *gpu.Context: the context
//   - *Device: the recording device, also used as the queue
//   - *Surface: the recording surface
func NewContext(format gpu.TextureFormat) (*gpu.Context, *Device, *Surface) {
	d := NewDevice()
	s := NewSurface(d, format)
	return gpu.NewContext(d, d, s, nil), d, s
}

func (d *Device) record(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log = append(d.Log, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the log.
//
// Returns:
//   - []string: the recorded calls in order
func (d *Device) Entries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Log))
	copy(out, d.Log)
	return out
}

// ResetLog clears the log and submissions.
func (d *Device) ResetLog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Log = nil
	d.Submissions = nil
}

// LiveTextures returns the textures that have not been released.
//
// Returns:
//   - []*Texture: the unreleased textures
func (d *Device) LiveTextures() []*Texture {
	var live []*Texture
	for _, t := range d.Textures {
		if !t.Released {
			live = append(live, t)
		}
	}
	return live
}

// LiveBindGroups returns the bind groups that have not been released.
//
// Returns:
//   - []*BindGroup: the unreleased bind groups
func (d *Device) LiveBindGroups() []*BindGroup {
	var live []*BindGroup
	for _, bg := range d.BindGroups {
		if !bg.Released {
			live = append(live, bg)
		}
	}
	return live
}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		d.mu.Lock()
		d.ZeroSizedRequests++
		d.mu.Unlock()
		return nil, ErrZeroSized
	}
	if d.FailTextures {
		return nil, errors.New("gputest: texture allocation failed")
	}
	t := &Texture{
		Label:     desc.Label,
		W:         desc.Width,
		H:         desc.Height,
		Fmt:       desc.Format,
		Usage:     desc.Usage,
		device:    d,
		CreatedAt: len(d.Textures),
	}
	d.Textures = append(d.Textures, t)
	d.record("create_texture %s %dx%d", desc.Label, desc.Width, desc.Height)
	return t, nil
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	size := desc.Size
	if size == 0 {
		size = uint64(len(desc.Contents))
	}
	b := &Buffer{
		Label: desc.Label,
		Bytes: size,
		Usage: desc.Usage,
		Data:  make([]byte, size),
	}
	copy(b.Data, desc.Contents)
	d.Buffers = append(d.Buffers, b)
	d.record("create_buffer %s %d", desc.Label, size)
	return b, nil
}

func (d *Device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s := &Sampler{Label: desc.Label, Desc: *desc}
	d.Samplers = append(d.Samplers, s)
	d.record("create_sampler %s", desc.Label)
	return s, nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	l := &BindGroupLayout{Label: desc.Label, Entries: append([]gpu.BindGroupLayoutEntry(nil), desc.Entries...)}
	d.record("create_bind_group_layout %s %d", desc.Label, len(desc.Entries))
	return l, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok || layout == nil {
		return nil, errors.New("gputest: bind group requires a layout")
	}
	if len(layout.Entries) != len(desc.Entries) {
		return nil, fmt.Errorf("gputest: layout has %d entries, bind group has %d", len(layout.Entries), len(desc.Entries))
	}
	for _, e := range desc.Entries {
		if tv, ok := e.TextureView.(*TextureView); ok && tv.stale() {
			d.mu.Lock()
			d.StaleUses++
			d.mu.Unlock()
		}
	}
	bg := &BindGroup{Label: desc.Label, Layout: layout, Entries: append([]gpu.BindGroupEntry(nil), desc.Entries...)}
	d.BindGroups = append(d.BindGroups, bg)
	d.record("create_bind_group %s", desc.Label)
	return bg, nil
}

func (d *Device) CreateComputePipeline(desc *gpu.ComputePipelineDescriptor) (gpu.ComputePipeline, error) {
	if desc.Compute.EntryPoint == "" {
		return nil, errors.New("gputest: compute pipeline requires an entry point")
	}
	d.record("create_compute_pipeline %s", desc.Label)
	return &ComputePipeline{Label: desc.Label, Desc: *desc}, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if desc.Vertex.EntryPoint == "" || desc.Fragment.EntryPoint == "" {
		return nil, errors.New("gputest: render pipeline requires vertex and fragment entry points")
	}
	d.record("create_render_pipeline %s", desc.Label)
	return &RenderPipeline{Label: desc.Label, Desc: *desc}, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	d.record("create_encoder %s", label)
	return &CommandEncoder{device: d}, nil
}

func (d *Device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok || b == nil {
		return errors.New("gputest: unknown buffer")
	}
	if b.Released {
		return errors.New("gputest: write to released buffer")
	}
	if offset+uint64(len(data)) > b.Bytes {
		return fmt.Errorf("gputest: write of %d bytes at %d overflows buffer of %d", len(data), offset, b.Bytes)
	}
	copy(b.Data[offset:], data)
	b.Writes++
	d.record("write_buffer %s %d %d", b.Label, offset, len(data))
	return nil
}

func (d *Device) Submit(buffers ...gpu.CommandBuffer) {
	for _, cb := range buffers {
		c, ok := cb.(*CommandBuffer)
		if !ok {
			continue
		}
		d.mu.Lock()
		d.Submissions = append(d.Submissions, c.Commands)
		d.mu.Unlock()
	}
	d.record("submit %d", len(buffers))
}

func (d *Device) checkBindGroup(bg gpu.BindGroup) {
	b, ok := bg.(*BindGroup)
	if !ok || b == nil {
		return
	}
	if b.Stale() {
		d.mu.Lock()
		d.StaleUses++
		d.mu.Unlock()
	}
}

// Texture is a recorded texture allocation.
type Texture struct {
	Label     string
	W, H      uint32
	Fmt       gpu.TextureFormat
	Usage     gpu.TextureUsage
	Released  bool
	CreatedAt int

	device *Device
}

func (t *Texture) Width() uint32             { return t.W }
func (t *Texture) Height() uint32            { return t.H }
func (t *Texture) Format() gpu.TextureFormat { return t.Fmt }

func (t *Texture) CreateView() (gpu.TextureView, error) {
	if t.Released {
		return nil, errors.New("gputest: view of released texture")
	}
	return &TextureView{Texture: t}, nil
}

func (t *Texture) Release() {
	t.Released = true
	if t.device != nil {
		t.device.record("release_texture %s %dx%d", t.Label, t.W, t.H)
	}
}

// TextureView is a recorded view. Texture is nil for surface frame views.
type TextureView struct {
	Texture  *Texture
	Released bool
}

func (v *TextureView) Release() { v.Released = true }

func (v *TextureView) stale() bool {
	return v.Released || (v.Texture != nil && v.Texture.Released)
}

// Buffer is a recorded buffer allocation holding a CPU copy of its contents.
type Buffer struct {
	Label    string
	Bytes    uint64
	Usage    gpu.BufferUsage
	Data     []byte
	Writes   int
	Released bool
}

func (b *Buffer) Size() uint64 { return b.Bytes }
func (b *Buffer) Release()     { b.Released = true }

// Sampler is a recorded sampler.
type Sampler struct {
	Label    string
	Desc     gpu.SamplerDescriptor
	Released bool
}

func (s *Sampler) Release() { s.Released = true }

// BindGroupLayout is a recorded layout.
type BindGroupLayout struct {
	Label    string
	Entries  []gpu.BindGroupLayoutEntry
	Released bool
}

func (l *BindGroupLayout) Release() { l.Released = true }

// BindGroup is a recorded bind group.
type BindGroup struct {
	Label    string
	Layout   *BindGroupLayout
	Entries  []gpu.BindGroupEntry
	Released bool
}

func (b *BindGroup) Release() { b.Released = true }

// Stale reports whether the bind group, or any texture or buffer it references, was released.
//
// Returns:
//   - bool: true if the bind group references released storage
func (b *BindGroup) Stale() bool {
	if b.Released {
		return true
	}
	for _, e := range b.Entries {
		if tv, ok := e.TextureView.(*TextureView); ok && tv.stale() {
			return true
		}
		if buf, ok := e.Buffer.(*Buffer); ok && buf.Released {
			return true
		}
	}
	return false
}

// References reports whether the bind group binds a view of t.
//
// Parameters:
//   - t: the texture to look for
//
// Returns:
//   - bool: true if any entry views t
func (b *BindGroup) References(t *Texture) bool {
	for _, e := range b.Entries {
		if tv, ok := e.TextureView.(*TextureView); ok && tv.Texture == t {
			return true
		}
	}
	return false
}

// ComputePipeline is a recorded compute pipeline.
type ComputePipeline struct {
	Label    string
	Desc     gpu.ComputePipelineDescriptor
	Released bool
}

func (p *ComputePipeline) Release() { p.Released = true }

// RenderPipeline is a recorded render pipeline.
type RenderPipeline struct {
	Label    string
	Desc     gpu.RenderPipelineDescriptor
	Released bool
}

func (p *RenderPipeline) Release() { p.Released = true }

// CommandBuffer is a finished recorded command list.
type CommandBuffer struct {
	Commands []string
	Released bool
}

func (c *CommandBuffer) Release() { c.Released = true }

// CommandEncoder records pass commands until Finish.
type CommandEncoder struct {
	device   *Device
	commands []string
	open     bool
	finished bool
	Released bool
}

func (e *CommandEncoder) add(format string, args ...any) {
	cmd := fmt.Sprintf(format, args...)
	e.commands = append(e.commands, cmd)
	e.device.record("%s", cmd)
}

func (e *CommandEncoder) BeginComputePass(label string) gpu.ComputePass {
	e.open = true
	e.add("begin_compute_pass %s", label)
	return &ComputePass{encoder: e}
}

func (e *CommandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	e.open = true
	e.add("begin_render_pass %s clear", desc.Label)
	if tv, ok := desc.View.(*TextureView); ok && tv.stale() {
		e.device.mu.Lock()
		e.device.StaleUses++
		e.device.mu.Unlock()
	}
	return &RenderPass{encoder: e}
}

func (e *CommandEncoder) Finish() (gpu.CommandBuffer, error) {
	if e.device.FailFinish {
		return nil, errors.New("gputest: finish failed")
	}
	if e.open {
		return nil, errors.New("gputest: finish with an open pass")
	}
	e.finished = true
	e.device.record("finish")
	return &CommandBuffer{Commands: e.commands}, nil
}

func (e *CommandEncoder) Release() { e.Released = true }

// ComputePass records compute commands into its encoder.
type ComputePass struct {
	encoder *CommandEncoder
}

func (p *ComputePass) SetPipeline(cp gpu.ComputePipeline) {
	label := ""
	if c, ok := cp.(*ComputePipeline); ok {
		label = c.Label
	}
	p.encoder.add("set_compute_pipeline %s", label)
}

func (p *ComputePass) SetBindGroup(index uint32, bg gpu.BindGroup) {
	p.encoder.device.checkBindGroup(bg)
	label := ""
	if b, ok := bg.(*BindGroup); ok {
		label = b.Label
	}
	p.encoder.add("set_bind_group %d %s", index, label)
}

func (p *ComputePass) DispatchWorkgroups(x, y, z uint32) {
	p.encoder.add("dispatch %d %d %d", x, y, z)
}

func (p *ComputePass) End() error {
	p.encoder.open = false
	p.encoder.add("end_compute_pass")
	return nil
}

// RenderPass records draw commands into its encoder.
type RenderPass struct {
	encoder *CommandEncoder
}

func (p *RenderPass) SetPipeline(rp gpu.RenderPipeline) {
	label := ""
	if r, ok := rp.(*RenderPipeline); ok {
		label = r.Label
	}
	p.encoder.add("set_render_pipeline %s", label)
}

func (p *RenderPass) SetBindGroup(index uint32, bg gpu.BindGroup) {
	p.encoder.device.checkBindGroup(bg)
	label := ""
	if b, ok := bg.(*BindGroup); ok {
		label = b.Label
	}
	p.encoder.add("set_bind_group %d %s", index, label)
}

func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.encoder.add("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *RenderPass) End() error {
	p.encoder.open = false
	p.encoder.add("end_render_pass")
	return nil
}

// Surface is a recording fake implementing gpu.Surface.
type Surface struct {
	device *Device
	format gpu.TextureFormat

	Width, Height uint32
	Configures    int
	Presents      int

	// AcquireErrors is consumed front to back; a nil entry acquires successfully.
	AcquireErrors []error
}

var _ gpu.Surface = &Surface{}

// NewSurface creates a recording surface sharing the device log.
//
// Parameters:
//   - d: the recording device
//   - format: the format reported by Format
//
// Returns:
//   - *Surface: the recording surface
func NewSurface(d *Device, format gpu.TextureFormat) *Surface {
	return &Surface{device: d, format: format}
}

func (s *Surface) Configure(width, height uint32) error {
	if width == 0 || height == 0 {
		s.device.mu.Lock()
		s.device.ZeroSizedRequests++
		s.device.mu.Unlock()
		return ErrZeroSized
	}
	s.Width, s.Height = width, height
	s.Configures++
	s.device.record("configure %d %d", width, height)
	return nil
}

func (s *Surface) Format() gpu.TextureFormat {
	return s.format
}

func (s *Surface) Acquire() (gpu.SurfaceFrame, error) {
	if len(s.AcquireErrors) > 0 {
		err := s.AcquireErrors[0]
		s.AcquireErrors = s.AcquireErrors[1:]
		if err != nil {
			s.device.record("acquire_failed")
			return nil, err
		}
	}
	s.device.record("acquire")
	return &SurfaceFrame{surface: s, view: &TextureView{}}, nil
}

// SurfaceFrame is a recorded acquired frame.
type SurfaceFrame struct {
	surface   *Surface
	view      *TextureView
	Presented bool
	Discarded bool
}

func (f *SurfaceFrame) View() gpu.TextureView {
	return f.view
}

func (f *SurfaceFrame) Present() {
	f.Presented = true
	f.view.Release()
	f.surface.Presents++
	f.surface.device.record("present")
}

func (f *SurfaceFrame) Discard() {
	f.Discarded = true
	f.view.Release()
	f.surface.device.record("discard")
}
