package scene

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStage(t *testing.T, width, height uint32, options ...ComputeStageBuilderOption) (ComputeStage, *gputest.Device) {
	t.Helper()
	ctx, dev, _ := gputest.NewContext(gpu.TextureFormatBGRA8Unorm)
	s, err := NewComputeStage(renderer.NewRenderer(ctx), width, height, options...)
	require.NoError(t, err)
	return s, dev
}

func float32At(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		tile          uint32
		want          [3]uint32
	}{
		{"single pixel", 1, 1, 8, [3]uint32{1, 1, 1}},
		{"exact tiles", 16, 16, 8, [3]uint32{2, 2, 1}},
		{"partial column", 17, 16, 8, [3]uint32{3, 2, 1}},
		{"window", 800, 600, 8, [3]uint32{100, 75, 1}},
		{"odd window", 801, 599, 8, [3]uint32{101, 75, 1}},
		{"default tile", 9, 9, 0, [3]uint32{2, 2, 1}},
		{"wide tile", 100, 1, 64, [3]uint32{2, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkgroupCount(tt.width, tt.height, tt.tile))
		})
	}
}

func TestNewComputeStage(t *testing.T) {
	s, dev := newStage(t, 800, 600)

	tx, ty := s.TileSize()
	assert.Equal(t, uint32(8), tx)
	assert.Equal(t, uint32(8), ty)

	target := s.Target()
	require.NotNil(t, target)
	assert.Equal(t, uint32(800), target.Width())
	assert.Equal(t, uint32(600), target.Height())

	bg := s.BindGroupProvider().BindGroup().(*gputest.BindGroup)
	assert.True(t, bg.References(target.Texture().(*gputest.Texture)))

	// initial pose is uploaded: the eye sits on +z at the default distance
	buf := s.BindGroupProvider().Buffer(1).(*gputest.Buffer)
	assert.Equal(t, uint64(48), buf.Bytes)
	assert.Equal(t, 1, buf.Writes)
	assert.InDelta(t, camera.DefaultDistance, float32At(buf.Data, 8), 1e-5)
	assert.InDelta(t, -1, float32At(buf.Data, 24), 1e-5)
	assert.InDelta(t, 1, float32At(buf.Data, 36), 1e-5)
	assert.Zero(t, dev.ZeroSizedRequests)
}

func TestNewComputeStageBadShader(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"no target", "//@oxy:include camera\n//@oxy:group 0 1 storage_uniform camera camera\n@compute fn main() {}"},
		{"no camera", "//@oxy:provider 0 0 render_target output_texture\n@group(0) @binding(0) var output: texture_storage_2d<rgba8unorm, write>;\n@compute fn main() {}"},
		{"split groups", "//@oxy:include camera\n//@oxy:provider 0 0 render_target output_texture\n@group(0) @binding(0) var output: texture_storage_2d<rgba8unorm, write>;\n//@oxy:group 1 0 storage_uniform camera camera\n@compute fn main() {}"},
		{"no entry point", strings.ReplaceAll(ShaderSource, "@compute", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := gputest.NewContext(gpu.TextureFormatBGRA8Unorm)
			_, err := NewComputeStage(renderer.NewRenderer(ctx), 8, 8, WithShaderSource(tt.source))
			assert.Error(t, err)
		})
	}
}

func TestDispatch(t *testing.T) {
	s, dev := newStage(t, 17, 16)
	dev.ResetLog()

	enc, err := dev.CreateCommandEncoder("frame")
	require.NoError(t, err)
	require.NoError(t, s.Dispatch(enc))

	assert.Equal(t, []string{
		"create_encoder frame",
		"begin_compute_pass Scene Compute Pass",
		"set_compute_pipeline scene Compute Pipeline",
		"set_bind_group 0 Scene Compute Bind Group",
		"dispatch 3 2 1",
		"end_compute_pass",
	}, dev.Entries())
	assert.Zero(t, dev.StaleUses)
}

func TestResizeRebuildsTargetAndBindGroup(t *testing.T) {
	s, dev := newStage(t, 800, 600)

	sizes := []struct {
		width, height uint32
		wantW, wantH  uint32
	}{
		{0, 0, 1, 1},
		{400, 300, 400, 300},
		{400, 0, 400, 1},
	}

	for _, sz := range sizes {
		old := s.Target().Texture().(*gputest.Texture)
		oldBG := s.BindGroupProvider().BindGroup().(*gputest.BindGroup)
		buf := s.BindGroupProvider().Buffer(1)

		require.NoError(t, s.Resize(sz.width, sz.height))

		assert.True(t, old.Released)
		assert.True(t, oldBG.Released)
		assert.Same(t, buf, s.BindGroupProvider().Buffer(1), "camera buffer is never reallocated")

		target := s.Target()
		assert.Equal(t, sz.wantW, target.Width())
		assert.Equal(t, sz.wantH, target.Height())

		live := dev.LiveBindGroups()
		require.Len(t, live, 1)
		assert.True(t, live[0].References(target.Texture().(*gputest.Texture)))
		assert.False(t, live[0].Stale())
		assert.Len(t, dev.LiveTextures(), 1)
	}
	assert.Zero(t, dev.ZeroSizedRequests)

	enc, err := dev.CreateCommandEncoder("frame")
	require.NoError(t, err)
	dev.ResetLog()
	require.NoError(t, s.Dispatch(enc))
	assert.Contains(t, dev.Entries(), "dispatch 50 1 1")
}

func TestResizeMovesCameraViewport(t *testing.T) {
	s, dev := newStage(t, 800, 600)
	buf := s.BindGroupProvider().Buffer(1).(*gputest.Buffer)
	writes := buf.Writes
	dev.ResetLog()

	require.NoError(t, s.Resize(100, 100))
	assert.Contains(t, dev.Entries(), "write_buffer Scene Compute Buffer 1 0 48")
	assert.Equal(t, writes+1, buf.Writes)

	// a 10 pixel pan across a 100 pixel viewport moves a tenth of the distance
	s.Camera().Pan(mgl32.Vec2{10, 0})
	assert.InDelta(t, -0.1*camera.DefaultDistance, s.Camera().Center().X(), 1e-5)
}

func TestResizeFailureLeavesStageUnbound(t *testing.T) {
	s, dev := newStage(t, 64, 64)
	dev.FailTextures = true

	require.Error(t, s.Resize(32, 32))
	assert.Nil(t, s.Target())

	enc, err := dev.CreateCommandEncoder("frame")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Dispatch(enc), ErrNotBound)
	assert.Zero(t, dev.StaleUses)
}

func TestZoomAndReset(t *testing.T) {
	s, _ := newStage(t, 100, 100, WithZoom(6, 0.5))
	buf := s.BindGroupProvider().Buffer(1).(*gputest.Buffer)

	// distance -= 0.5 * 6 * 0.5
	require.NoError(t, s.Zoom(0.5))
	assert.InDelta(t, 0.5, s.Camera().Distance(), 1e-5)
	assert.InDelta(t, 0.5, float32At(buf.Data, 8), 1e-5)

	// negative deltas move away from the center
	require.NoError(t, s.Zoom(-1))
	assert.InDelta(t, 3.5, s.Camera().Distance(), 1e-5)

	s.Camera().Rotate(mgl32.Vec2{50, 50}, mgl32.Vec2{70, 50})
	require.NoError(t, s.ResetCamera())
	assert.InDelta(t, camera.DefaultDistance, s.Camera().Distance(), 1e-5)
	assert.InDelta(t, -1, float32At(buf.Data, 24), 1e-5)
	assert.Equal(t, 4, buf.Writes)
}

func TestUpdateCameraWritesInPlace(t *testing.T) {
	s, dev := newStage(t, 10, 10)
	dev.ResetLog()

	require.NoError(t, s.UpdateCamera(camera.Pose{
		Origin:        mgl32.Vec3{1, 2, 3},
		ViewDirection: mgl32.Vec3{0, 0, -1},
		Up:            mgl32.Vec3{0, 1, 0},
	}))

	assert.Equal(t, []string{"write_buffer Scene Compute Buffer 1 0 48"}, dev.Entries())
	buf := s.BindGroupProvider().Buffer(1).(*gputest.Buffer)
	assert.InDelta(t, 1, float32At(buf.Data, 0), 1e-6)
	assert.InDelta(t, 3, float32At(buf.Data, 8), 1e-6)
	assert.Zero(t, float32At(buf.Data, 12), "w is zero")
}

func TestRelease(t *testing.T) {
	s, dev := newStage(t, 10, 10)
	s.Release()

	assert.Empty(t, dev.LiveTextures())
	assert.Empty(t, dev.LiveBindGroups())
	assert.Nil(t, s.Target())
}
