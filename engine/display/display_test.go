package display

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_target"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStage(t *testing.T, width, height uint32, options ...DisplayStageBuilderOption) (DisplayStage, render_target.RenderTarget, *gputest.Device) {
	t.Helper()
	ctx, dev, _ := gputest.NewContext(gpu.TextureFormatBGRA8UnormSrgb)
	target, err := render_target.NewRenderTarget(dev, "target", width, height)
	require.NoError(t, err)
	d, err := NewDisplayStage(renderer.NewRenderer(ctx), target, options...)
	require.NoError(t, err)
	return d, target, dev
}

func TestNewDisplayStagePipeline(t *testing.T) {
	d, target, dev := newStage(t, 64, 32)

	rp := d.Pipeline().RenderPipeline().(*gputest.RenderPipeline)
	assert.Equal(t, gpu.TextureFormatBGRA8UnormSrgb, rp.Desc.TargetFormat)
	assert.Equal(t, gpu.PrimitiveTopologyTriangleList, rp.Desc.Topology)
	assert.Equal(t, gpu.CullModeNone, rp.Desc.CullMode)
	assert.Equal(t, gpu.ColorWriteMaskAll, rp.Desc.WriteMask)
	assert.Nil(t, rp.Desc.Blend, "the quad replaces the frame contents")

	require.True(t, d.Bound())
	bg := d.BindGroupProvider().BindGroup().(*gputest.BindGroup)
	assert.True(t, bg.References(target.Texture().(*gputest.Texture)))

	require.Len(t, dev.Samplers, 1)
	assert.Equal(t, gpu.FilterModeLinear, dev.Samplers[0].Desc.MagFilter)
	assert.Equal(t, gpu.Color{A: 1}, d.ClearColor())
}

func TestComposite(t *testing.T) {
	clear := gpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	d, _, dev := newStage(t, 8, 8, WithClearColor(clear))
	dev.ResetLog()

	enc, err := dev.CreateCommandEncoder("frame")
	require.NoError(t, err)
	require.NoError(t, d.Composite(enc, &gputest.TextureView{}))

	assert.Equal(t, []string{
		"create_encoder frame",
		"begin_render_pass Display Render Pass clear",
		"set_render_pipeline display Render Pipeline",
		"set_bind_group 0 Display Bind Group",
		"draw 6 1 0 0",
		"end_render_pass",
	}, dev.Entries())
	assert.Equal(t, clear, d.ClearColor())
	assert.Zero(t, dev.StaleUses)
}

func TestCompositeUnbound(t *testing.T) {
	ctx, dev, _ := gputest.NewContext(gpu.TextureFormatBGRA8Unorm)
	d, err := NewDisplayStage(renderer.NewRenderer(ctx), nil)
	require.NoError(t, err)
	assert.False(t, d.Bound())

	enc, err := dev.CreateCommandEncoder("frame")
	require.NoError(t, err)
	dev.ResetLog()
	assert.ErrorIs(t, d.Composite(enc, &gputest.TextureView{}), ErrNotBound)
	assert.Empty(t, dev.Entries(), "nothing is recorded without a bind group")
}

func TestRebind(t *testing.T) {
	d, old, dev := newStage(t, 800, 600)
	oldBG := d.BindGroupProvider().BindGroup().(*gputest.BindGroup)
	sampler := d.BindGroupProvider().Sampler(1)

	old.Release()
	next, err := render_target.NewRenderTarget(dev, "target", 400, 300)
	require.NoError(t, err)
	require.NoError(t, d.Rebind(next))

	assert.True(t, oldBG.Released)
	assert.Same(t, sampler, d.BindGroupProvider().Sampler(1), "the sampler survives rebinds")

	live := dev.LiveBindGroups()
	require.Len(t, live, 1)
	assert.True(t, live[0].References(next.Texture().(*gputest.Texture)))
	assert.False(t, live[0].Stale())

	require.NoError(t, d.Rebind(nil))
	assert.False(t, d.Bound())
	assert.Empty(t, dev.LiveBindGroups())
}

func TestNewDisplayStageBadShader(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"no texture", "@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(); }\n@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(); }"},
		{"no fragment", "//@oxy:provider 0 0 render_target source_texture\n@group(0) @binding(0) var source: texture_2d<f32>;\n@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(); }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := gputest.NewContext(gpu.TextureFormatBGRA8Unorm)
			_, err := NewDisplayStage(renderer.NewRenderer(ctx), nil, WithShaderSource(tt.source))
			assert.Error(t, err)
		})
	}
}

func TestRelease(t *testing.T) {
	d, target, dev := newStage(t, 16, 16)
	d.Release()

	assert.Empty(t, dev.LiveBindGroups())
	assert.True(t, dev.Samplers[0].Released)
	assert.False(t, target.Texture().(*gputest.Texture).Released, "the target belongs to the scene")
}
