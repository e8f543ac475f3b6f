package wgpu_backend

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

var textureFormats = map[gpu.TextureFormat]wgpu.TextureFormat{
	gpu.TextureFormatRGBA8Unorm:     wgpu.TextureFormatRGBA8Unorm,
	gpu.TextureFormatRGBA8UnormSrgb: wgpu.TextureFormatRGBA8UnormSrgb,
	gpu.TextureFormatBGRA8Unorm:     wgpu.TextureFormatBGRA8Unorm,
	gpu.TextureFormatBGRA8UnormSrgb: wgpu.TextureFormatBGRA8UnormSrgb,
	gpu.TextureFormatRGBA16Float:    wgpu.TextureFormatRGBA16Float,
	gpu.TextureFormatRGBA32Float:    wgpu.TextureFormatRGBA32Float,
	gpu.TextureFormatR32Float:       wgpu.TextureFormatR32Float,
}

func toTextureFormat(f gpu.TextureFormat) wgpu.TextureFormat {
	if wf, ok := textureFormats[f]; ok {
		return wf
	}
	return wgpu.TextureFormatUndefined
}

// fromTextureFormat maps a native format back onto the device layer. The bool is false for
// formats the device layer does not name.
func fromTextureFormat(f wgpu.TextureFormat) (gpu.TextureFormat, bool) {
	for gf, wf := range textureFormats {
		if wf == f {
			return gf, true
		}
	}
	return gpu.TextureFormatUndefined, false
}

func toTextureUsage(u gpu.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gpu.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&gpu.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gpu.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gpu.TextureUsageStorageBinding != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u&gpu.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func toBufferUsage(u gpu.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gpu.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&gpu.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&gpu.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&gpu.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&gpu.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&gpu.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	return out
}

func toShaderStage(s gpu.ShaderStage) wgpu.ShaderStage {
	out := wgpu.ShaderStageNone
	if s&gpu.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&gpu.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	if s&gpu.ShaderStageCompute != 0 {
		out |= wgpu.ShaderStageCompute
	}
	return out
}

func toSampleType(t gpu.SampleType) wgpu.TextureSampleType {
	switch t {
	case gpu.SampleTypeFloat:
		return wgpu.TextureSampleTypeFloat
	case gpu.SampleTypeUnfilterableFloat:
		return wgpu.TextureSampleTypeUnfilterableFloat
	case gpu.SampleTypeSint:
		return wgpu.TextureSampleTypeSint
	case gpu.SampleTypeUint:
		return wgpu.TextureSampleTypeUint
	case gpu.SampleTypeDepth:
		return wgpu.TextureSampleTypeDepth
	default:
		return wgpu.TextureSampleTypeFloat
	}
}

func toViewDimension(d gpu.ViewDimension) wgpu.TextureViewDimension {
	switch d {
	case gpu.ViewDimension1D:
		return wgpu.TextureViewDimension1D
	case gpu.ViewDimension2DArray:
		return wgpu.TextureViewDimension2DArray
	case gpu.ViewDimension3D:
		return wgpu.TextureViewDimension3D
	case gpu.ViewDimensionCube:
		return wgpu.TextureViewDimensionCube
	default:
		return wgpu.TextureViewDimension2D
	}
}

func toStorageAccess(a gpu.StorageAccess) wgpu.StorageTextureAccess {
	switch a {
	case gpu.StorageAccessReadOnly:
		return wgpu.StorageTextureAccessReadOnly
	case gpu.StorageAccessReadWrite:
		return wgpu.StorageTextureAccessReadWrite
	default:
		return wgpu.StorageTextureAccessWriteOnly
	}
}

// toLayoutEntry fills exactly one of the buffer, sampler, texture or storage texture sub-layouts.
func toLayoutEntry(e gpu.BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: toShaderStage(e.Visibility),
	}
	switch e.Type {
	case gpu.BindingTypeUniformBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = e.MinBindingSize
	case gpu.BindingTypeStorageBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		entry.Buffer.MinBindingSize = e.MinBindingSize
	case gpu.BindingTypeReadOnlyStorageBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		entry.Buffer.MinBindingSize = e.MinBindingSize
	case gpu.BindingTypeFilteringSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case gpu.BindingTypeNonFilteringSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeNonFiltering
	case gpu.BindingTypeSampledTexture:
		entry.Texture.SampleType = toSampleType(e.SampleType)
		entry.Texture.ViewDimension = toViewDimension(e.ViewDimension)
		entry.Texture.Multisampled = false
	case gpu.BindingTypeStorageTexture:
		entry.StorageTexture.Access = toStorageAccess(e.StorageAccess)
		entry.StorageTexture.Format = toTextureFormat(e.StorageFormat)
		entry.StorageTexture.ViewDimension = toViewDimension(e.ViewDimension)
	}
	return entry
}

func toAddressMode(m gpu.AddressMode) wgpu.AddressMode {
	switch m {
	case gpu.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case gpu.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

func toFilterMode(m gpu.FilterMode) wgpu.FilterMode {
	if m == gpu.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func toMipmapFilterMode(m gpu.FilterMode) wgpu.MipmapFilterMode {
	if m == gpu.FilterModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

func toTopology(t gpu.PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case gpu.PrimitiveTopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case gpu.PrimitiveTopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case gpu.PrimitiveTopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toFrontFace(f gpu.FrontFace) wgpu.FrontFace {
	if f == gpu.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func toCullMode(c gpu.CullMode) wgpu.CullMode {
	switch c {
	case gpu.CullModeFront:
		return wgpu.CullModeFront
	case gpu.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func toWriteMask(m gpu.ColorWriteMask) wgpu.ColorWriteMask {
	var out wgpu.ColorWriteMask
	if m&gpu.ColorWriteMaskRed != 0 {
		out |= wgpu.ColorWriteMaskRed
	}
	if m&gpu.ColorWriteMaskGreen != 0 {
		out |= wgpu.ColorWriteMaskGreen
	}
	if m&gpu.ColorWriteMaskBlue != 0 {
		out |= wgpu.ColorWriteMaskBlue
	}
	if m&gpu.ColorWriteMaskAlpha != 0 {
		out |= wgpu.ColorWriteMaskAlpha
	}
	return out
}

func toBlendFactor(f gpu.BlendFactor) wgpu.BlendFactor {
	switch f {
	case gpu.BlendFactorZero:
		return wgpu.BlendFactorZero
	case gpu.BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case gpu.BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	default:
		return wgpu.BlendFactorOne
	}
}

func toBlendComponent(c gpu.BlendComponent) wgpu.BlendComponent {
	op := wgpu.BlendOperationAdd
	if c.Operation == gpu.BlendOperationSubtract {
		op = wgpu.BlendOperationSubtract
	}
	return wgpu.BlendComponent{
		SrcFactor: toBlendFactor(c.SrcFactor),
		DstFactor: toBlendFactor(c.DstFactor),
		Operation: op,
	}
}

// toBlendState returns nil for a nil state, which the pipeline treats as replace.
func toBlendState(b *gpu.BlendState) *wgpu.BlendState {
	if b == nil {
		return nil
	}
	return &wgpu.BlendState{
		Color: toBlendComponent(b.Color),
		Alpha: toBlendComponent(b.Alpha),
	}
}

func toPresentMode(m gpu.PresentMode) wgpu.PresentMode {
	switch m {
	case gpu.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	case gpu.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	default:
		return wgpu.PresentModeFifo
	}
}
