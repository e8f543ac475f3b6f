package wgpu_backend

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestTextureFormatRoundTrip(t *testing.T) {
	for gf := range textureFormats {
		back, ok := fromTextureFormat(toTextureFormat(gf))
		assert.True(t, ok)
		assert.Equal(t, gf, back)
	}

	_, ok := fromTextureFormat(wgpu.TextureFormatDepth24Plus)
	assert.False(t, ok)
	assert.Equal(t, wgpu.TextureFormatUndefined, toTextureFormat(gpu.TextureFormatUndefined))
}

func TestToLayoutEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry gpu.BindGroupLayoutEntry
		check func(t *testing.T, e wgpu.BindGroupLayoutEntry)
	}{
		{
			name:  "uniform buffer",
			entry: gpu.BindGroupLayoutEntry{Binding: 1, Visibility: gpu.ShaderStageCompute, Type: gpu.BindingTypeUniformBuffer, MinBindingSize: 48},
			check: func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
				assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
				assert.Equal(t, uint64(48), e.Buffer.MinBindingSize)
				assert.Equal(t, wgpu.ShaderStageCompute, e.Visibility)
			},
		},
		{
			name: "storage texture",
			entry: gpu.BindGroupLayoutEntry{
				Type:          gpu.BindingTypeStorageTexture,
				StorageFormat: gpu.TextureFormatRGBA8Unorm,
				StorageAccess: gpu.StorageAccessWriteOnly,
				ViewDimension: gpu.ViewDimension2D,
			},
			check: func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
				assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, e.StorageTexture.Access)
				assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, e.StorageTexture.Format)
				assert.Equal(t, wgpu.TextureViewDimension2D, e.StorageTexture.ViewDimension)
				assert.Equal(t, wgpu.BufferBindingTypeUndefined, e.Buffer.Type)
			},
		},
		{
			name:  "sampled texture",
			entry: gpu.BindGroupLayoutEntry{Type: gpu.BindingTypeSampledTexture, SampleType: gpu.SampleTypeFloat, Visibility: gpu.ShaderStageVertex | gpu.ShaderStageFragment},
			check: func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
				assert.Equal(t, wgpu.TextureSampleTypeFloat, e.Texture.SampleType)
				assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, e.Visibility)
			},
		},
		{
			name:  "filtering sampler",
			entry: gpu.BindGroupLayoutEntry{Type: gpu.BindingTypeFilteringSampler},
			check: func(t *testing.T, e wgpu.BindGroupLayoutEntry) {
				assert.Equal(t, wgpu.SamplerBindingTypeFiltering, e.Sampler.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, toLayoutEntry(tt.entry))
		})
	}
}

func TestToBlendState(t *testing.T) {
	assert.Nil(t, toBlendState(nil))

	b := toBlendState(&gpu.BlendState{
		Color: gpu.BlendComponent{SrcFactor: gpu.BlendFactorSrcAlpha, DstFactor: gpu.BlendFactorOneMinusSrcAlpha},
		Alpha: gpu.BlendComponent{SrcFactor: gpu.BlendFactorOne, DstFactor: gpu.BlendFactorZero},
	})
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, b.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, b.Color.DstFactor)
	assert.Equal(t, wgpu.BlendOperationAdd, b.Alpha.Operation)
}

func TestUsageMasks(t *testing.T) {
	assert.Equal(t, wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding,
		toTextureUsage(gpu.TextureUsageStorageBinding|gpu.TextureUsageTextureBinding))
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst,
		toBufferUsage(gpu.BufferUsageUniform|gpu.BufferUsageCopyDst))
	assert.Equal(t, wgpu.ColorWriteMaskAll, toWriteMask(gpu.ColorWriteMaskAll))
}

func TestClassifyAcquireError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"Surface is Outdated", gpu.ErrSurfaceOutdated},
		{"surface timeout", gpu.ErrSurfaceOutdated},
		{"Surface Lost", gpu.ErrSurfaceLost},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.ErrorIs(t, classifyAcquireError(errors.New(tt.msg)), tt.want)
		})
	}

	err := classifyAcquireError(errors.New("out of memory"))
	assert.NotErrorIs(t, err, gpu.ErrSurfaceOutdated)
	assert.NotErrorIs(t, err, gpu.ErrSurfaceLost)
}
