package gpu

// TextureFormat identifies the pixel format of a texture or surface.
type TextureFormat int

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatRGBA16Float
	TextureFormatRGBA32Float
	TextureFormatR32Float
)

// TextureUsage is a bit set describing how a texture may be bound.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// BufferUsage is a bit set describing how a buffer may be bound or written.
type BufferUsage uint32

const (
	BufferUsageCopySrc BufferUsage = 1 << iota
	BufferUsageCopyDst
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageVertex
	BufferUsageIndex
)

// ShaderStage is a bit set of pipeline stages a binding is visible to.
type ShaderStage uint32

const (
	ShaderStageNone   ShaderStage = 0
	ShaderStageVertex ShaderStage = 1 << (iota - 1)
	ShaderStageFragment
	ShaderStageCompute
)

// BindingType classifies the resource behind a single bind group layout entry.
type BindingType int

const (
	BindingTypeUndefined BindingType = iota
	BindingTypeUniformBuffer
	BindingTypeStorageBuffer
	BindingTypeReadOnlyStorageBuffer
	BindingTypeFilteringSampler
	BindingTypeNonFilteringSampler
	BindingTypeSampledTexture
	BindingTypeStorageTexture
)

// IsBuffer reports whether the binding refers to a buffer resource.
func (t BindingType) IsBuffer() bool {
	return t == BindingTypeUniformBuffer || t == BindingTypeStorageBuffer || t == BindingTypeReadOnlyStorageBuffer
}

// IsSampler reports whether the binding refers to a sampler.
func (t BindingType) IsSampler() bool {
	return t == BindingTypeFilteringSampler || t == BindingTypeNonFilteringSampler
}

// IsTexture reports whether the binding refers to a sampled or storage texture view.
func (t BindingType) IsTexture() bool {
	return t == BindingTypeSampledTexture || t == BindingTypeStorageTexture
}

// StorageAccess is the access mode of a storage texture binding.
type StorageAccess int

const (
	StorageAccessUndefined StorageAccess = iota
	StorageAccessWriteOnly
	StorageAccessReadOnly
	StorageAccessReadWrite
)

// SampleType is the component type a sampled texture binding returns.
type SampleType int

const (
	SampleTypeUndefined SampleType = iota
	SampleTypeFloat
	SampleTypeUnfilterableFloat
	SampleTypeSint
	SampleTypeUint
	SampleTypeDepth
)

// ViewDimension is the dimensionality of a texture view binding.
type ViewDimension int

const (
	ViewDimensionUndefined ViewDimension = iota
	ViewDimension1D
	ViewDimension2D
	ViewDimension2DArray
	ViewDimension3D
	ViewDimensionCube
)

// AddressMode controls texture coordinate wrapping for samplers.
type AddressMode int

const (
	AddressModeUndefined AddressMode = iota
	AddressModeClampToEdge
	AddressModeRepeat
	AddressModeMirrorRepeat
)

// FilterMode controls texel filtering for samplers.
type FilterMode int

const (
	FilterModeUndefined FilterMode = iota
	FilterModeNearest
	FilterModeLinear
)

// PrimitiveTopology is the primitive assembly mode of a render pipeline.
type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
	PrimitiveTopologyPointList
)

// FrontFace is the winding order treated as front-facing.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// CullMode selects which faces are discarded during rasterization.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// ColorWriteMask is a bit set of color channels a render target accepts.
type ColorWriteMask uint32

const (
	ColorWriteMaskRed ColorWriteMask = 1 << iota
	ColorWriteMaskGreen
	ColorWriteMaskBlue
	ColorWriteMaskAlpha
	ColorWriteMaskNone ColorWriteMask = 0
	ColorWriteMaskAll                 = ColorWriteMaskRed | ColorWriteMaskGreen | ColorWriteMaskBlue | ColorWriteMaskAlpha
)

// BlendFactor is a blend equation operand.
type BlendFactor int

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
)

// BlendOperation combines the blend equation operands.
type BlendOperation int

const (
	BlendOperationAdd BlendOperation = iota
	BlendOperationSubtract
)

// BlendComponent describes the blend equation for either color or alpha.
type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Operation BlendOperation
}

// BlendState describes color and alpha blending. A nil *BlendState means replace.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// PresentMode selects how finished frames are queued to the display.
type PresentMode int

const (
	PresentModeFifo PresentMode = iota
	PresentModeImmediate
	PresentModeMailbox
)

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// TextureDescriptor describes a 2D texture allocation.
type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
	Usage  TextureUsage
}

// BufferDescriptor describes a buffer allocation. When Contents is non-nil the buffer is
// created with those bytes as its initial data and Size is taken from len(Contents) if zero.
type BufferDescriptor struct {
	Label    string
	Size     uint64
	Usage    BufferUsage
	Contents []byte
}

// SamplerDescriptor describes a sampler. Zero values are replaced with backend defaults.
type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32
}

// BindGroupLayoutEntry describes one binding slot of a bind group layout.
type BindGroupLayoutEntry struct {
	Binding        uint32
	Visibility     ShaderStage
	Type           BindingType
	MinBindingSize uint64
	SampleType     SampleType
	ViewDimension  ViewDimension
	StorageFormat  TextureFormat
	StorageAccess  StorageAccess
}

// BindGroupLayoutDescriptor describes all binding slots of one bind group.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds exactly one of Buffer, TextureView, or Sampler to a slot.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

// BindGroupDescriptor describes a bind group created against a layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// ProgrammableStage names the shader source and entry point for a pipeline stage.
type ProgrammableStage struct {
	Label      string
	Code       string
	EntryPoint string
}

// ComputePipelineDescriptor describes a compute pipeline. Layouts are indexed by group.
type ComputePipelineDescriptor struct {
	Label   string
	Layouts []BindGroupLayout
	Compute ProgrammableStage
}

// RenderPipelineDescriptor describes a render pipeline with a single color target and no
// vertex buffers or depth attachment.
type RenderPipelineDescriptor struct {
	Label        string
	Layouts      []BindGroupLayout
	Vertex       ProgrammableStage
	Fragment     ProgrammableStage
	TargetFormat TextureFormat
	Topology     PrimitiveTopology
	FrontFace    FrontFace
	CullMode     CullMode
	Blend        *BlendState
	WriteMask    ColorWriteMask
}

// RenderPassDescriptor describes a render pass with a single cleared color attachment.
type RenderPassDescriptor struct {
	Label      string
	View       TextureView
	ClearColor Color
}
