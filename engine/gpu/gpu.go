// Package gpu defines the graphics device contract consumed by the renderer, the compute and
// display stages, and the frame orchestrator. Concrete implementations live in sub-packages
// (wgpu_backend for WebGPU, gputest for a recording fake).
package gpu

// Texture is a GPU image allocation.
type Texture interface {
	// Width returns the texture width in texels.
	//
	// Returns:
	//   - uint32: the width
	Width() uint32

	// Height returns the texture height in texels.
	//
	// Returns:
	//   - uint32: the height
	Height() uint32

	// Format returns the pixel format the texture was created with.
	//
	// Returns:
	//   - TextureFormat: the texture format
	Format() TextureFormat

	// CreateView creates a default full-resource view of the texture.
	//
	// Returns:
	//   - TextureView: the created view
	//   - error: an error if the view could not be created
	CreateView() (TextureView, error)

	// Release frees the texture storage. Views created from it become invalid.
	Release()
}

// TextureView is a view onto a texture, or onto the current surface frame.
type TextureView interface {
	Release()
}

// Buffer is a GPU buffer allocation.
type Buffer interface {
	// Size returns the buffer size in bytes.
	//
	// Returns:
	//   - uint64: the size in bytes
	Size() uint64

	Release()
}

// Sampler is a texture sampler.
type Sampler interface {
	Release()
}

// BindGroupLayout describes the slots of a bind group.
type BindGroupLayout interface {
	Release()
}

// BindGroup is a set of resources bound to the slots of a BindGroupLayout.
type BindGroup interface {
	Release()
}

// ComputePipeline is a created compute pipeline.
type ComputePipeline interface {
	Release()
}

// RenderPipeline is a created render pipeline.
type RenderPipeline interface {
	Release()
}

// CommandBuffer is a finished, submittable command stream.
type CommandBuffer interface {
	Release()
}

// ComputePass records compute commands into an encoder.
type ComputePass interface {
	SetPipeline(p ComputePipeline)
	SetBindGroup(index uint32, bg BindGroup)
	DispatchWorkgroups(x, y, z uint32)
	End() error
}

// RenderPass records draw commands into an encoder.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, bg BindGroup)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	End() error
}

// CommandEncoder records passes into a single command stream.
type CommandEncoder interface {
	// BeginComputePass opens a compute pass. The pass must be ended before another pass begins.
	//
	// Parameters:
	//   - label: a debug label for the pass
	//
	// Returns:
	//   - ComputePass: the open pass
	BeginComputePass(label string) ComputePass

	// BeginRenderPass opens a render pass over the descriptor's color attachment.
	//
	// Parameters:
	//   - desc: the render pass descriptor
	//
	// Returns:
	//   - RenderPass: the open pass
	BeginRenderPass(desc *RenderPassDescriptor) RenderPass

	// Finish closes the encoder and returns the recorded command buffer.
	//
	// Returns:
	//   - CommandBuffer: the finished command stream
	//   - error: an error if encoding failed
	Finish() (CommandBuffer, error)

	Release()
}

// Device creates GPU resources and command encoders.
type Device interface {
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateComputePipeline(desc *ComputePipelineDescriptor) (ComputePipeline, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
}

// Queue accepts buffer writes and command buffer submissions. A write enqueued before a
// submission is visible to every command in that submission.
type Queue interface {
	// WriteBuffer enqueues an in-place write of data into buf at offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset into buf
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write could not be enqueued
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// Submit submits finished command buffers for execution in order.
	//
	// Parameters:
	//   - buffers: the command buffers to submit
	Submit(buffers ...CommandBuffer)
}

// SurfaceFrame is a presentable image acquired from a Surface.
type SurfaceFrame interface {
	// View returns the render attachment view of the acquired image.
	//
	// Returns:
	//   - TextureView: the view to render into
	View() TextureView

	// Present queues the image for display and releases the frame.
	Present()

	// Discard releases the frame without presenting it.
	Discard()
}

// Surface is the platform presentable chain shown in the window.
type Surface interface {
	// Configure (re)configures the surface for the given size. Callers clamp to at least 1.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if configuration failed
	Configure(width, height uint32) error

	// Format returns the pixel format chosen for the surface.
	//
	// Returns:
	//   - TextureFormat: the surface format
	Format() TextureFormat

	// Acquire returns the next presentable frame. When the surface no longer matches the window
	// the returned error wraps ErrSurfaceOutdated.
	//
	// Returns:
	//   - SurfaceFrame: the acquired frame
	//   - error: ErrSurfaceOutdated, or a fatal acquisition error
	Acquire() (SurfaceFrame, error)
}
