package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
)

func TestReleaseKeepsBorrowedViews(t *testing.T) {
	buf := &gputest.Buffer{Label: "uniform", Bytes: 48}
	s := &gputest.Sampler{Label: "sampler"}
	view := &gputest.TextureView{}
	bg := &gputest.BindGroup{Label: "bg"}

	p := NewBindGroupProvider("stage",
		WithBuffer(1, buf),
		WithSampler(2, s),
		WithTextureView(0, view),
	)
	p.SetBindGroup(bg)

	assert.Equal(t, "stage", p.Label())
	assert.Same(t, view, p.TextureView(0))
	assert.Len(t, p.TextureViews(), 1)
	assert.Len(t, p.Buffers(), 1)
	assert.Len(t, p.Samplers(), 1)

	p.Release()

	assert.True(t, bg.Released)
	assert.True(t, buf.Released)
	assert.True(t, s.Released)
	assert.False(t, view.Released, "borrowed views are owned by their texture")
	assert.Nil(t, p.BindGroup())
	assert.Empty(t, p.Buffers())
	assert.Empty(t, p.Samplers())
	assert.Empty(t, p.TextureViews())
}

func TestReleaseBindGroupKeepsResources(t *testing.T) {
	buf := &gputest.Buffer{Label: "uniform", Bytes: 48}
	bg := &gputest.BindGroup{Label: "bg"}

	p := NewBindGroupProvider("stage", WithBuffer(0, buf))
	p.SetBindGroup(bg)
	p.ReleaseBindGroup()
	p.ReleaseBindGroup()

	assert.True(t, bg.Released)
	assert.Nil(t, p.BindGroup())
	assert.False(t, buf.Released)
	assert.Same(t, buf, p.Buffer(0))
	assert.Nil(t, p.Sampler(3))
}
