package render_target

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderTargetClampsSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		wantW, wantH  uint32
	}{
		{"regular", 800, 600, 800, 600},
		{"minimized", 0, 0, 1, 1},
		{"zero width", 0, 300, 1, 300},
		{"zero height", 400, 0, 400, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.NewDevice()
			rt, err := NewRenderTarget(dev, "target", tt.width, tt.height)
			require.NoError(t, err)

			assert.Equal(t, tt.wantW, rt.Width())
			assert.Equal(t, tt.wantH, rt.Height())
			assert.Equal(t, 0, dev.ZeroSizedRequests)

			tex := rt.Texture().(*gputest.Texture)
			assert.Equal(t, tt.wantW, tex.W)
			assert.Equal(t, tt.wantH, tex.H)
			assert.Equal(t, gpu.TextureFormatRGBA8Unorm, tex.Fmt)
			assert.Equal(t, gpu.TextureUsageStorageBinding|gpu.TextureUsageTextureBinding, tex.Usage)
		})
	}
}

func TestRenderTargetRelease(t *testing.T) {
	dev := gputest.NewDevice()
	rt, err := NewRenderTarget(dev, "target", 16, 16)
	require.NoError(t, err)

	tex := rt.Texture().(*gputest.Texture)
	view := rt.View().(*gputest.TextureView)

	rt.Release()
	rt.Release()

	assert.True(t, tex.Released)
	assert.True(t, view.Released)
	assert.Nil(t, rt.Texture())
	assert.Nil(t, rt.View())
	assert.Empty(t, dev.LiveTextures())
}

func TestNewRenderTargetAllocationFailure(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailTextures = true

	_, err := NewRenderTarget(dev, "target", 8, 8)
	assert.Error(t, err)
}
