package engine

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-trace/engine/input"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const cameraWrite = "write_buffer Scene Compute Buffer 1 0 48"

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, *gputest.Device, *gputest.Surface) {
	t.Helper()
	ctx, dev, surf := gputest.NewContext(gpu.TextureFormatBGRA8Unorm)
	e, err := NewEngine(ctx, 800, 600, options...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	dev.ResetLog()
	return e, dev, surf
}

func indexOf(entries []string, entry string) int {
	return slices.Index(entries, entry)
}

func cameraBuffer(t *testing.T, dev *gputest.Device) *gputest.Buffer {
	t.Helper()
	for _, b := range dev.Buffers {
		if b.Label == "Scene Compute Buffer 1" {
			return b
		}
	}
	t.Fatal("camera uniform buffer not found")
	return nil
}

// fakeLoop mirrors the window message loop: deliver the tick's events, stop if a close was
// requested, otherwise run the update callback.
type fakeLoop struct {
	ticks         [][]input.Event
	width, height int
	maxIterations int

	onEvent       func(ev input.Event)
	onUpdate      func()
	running       bool
	iterations    int
	closeRequests int
}

func (l *fakeLoop) SetEventCallback(callback func(ev input.Event)) { l.onEvent = callback }
func (l *fakeLoop) SetUpdateCallback(callback func())              { l.onUpdate = callback }
func (l *fakeLoop) Width() int                                     { return l.width }
func (l *fakeLoop) Height() int                                    { return l.height }

func (l *fakeLoop) RequestClose() {
	l.running = false
	l.closeRequests++
}

func (l *fakeLoop) ProcessMessages() {
	l.running = true
	for l.running && l.iterations < l.maxIterations {
		if l.iterations < len(l.ticks) && l.onEvent != nil {
			for _, ev := range l.ticks[l.iterations] {
				l.onEvent(ev)
			}
		}
		l.iterations++
		if !l.running {
			break
		}
		if l.onUpdate != nil {
			l.onUpdate()
		}
	}
}

func TestNewEngineRequiresSurface(t *testing.T) {
	dev := gputest.NewDevice()
	_, err := NewEngine(gpu.NewContext(dev, dev, nil, nil), 800, 600)
	assert.Error(t, err)

	_, err = NewEngine(nil, 800, 600)
	assert.Error(t, err)
}

func TestNewEngineConfiguresSurface(t *testing.T) {
	e, _, surf := newTestEngine(t)

	assert.Equal(t, uint32(800), surf.Width)
	assert.Equal(t, uint32(600), surf.Height)
	w, h := e.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
	assert.True(t, e.DisplayStage().Bound())
	assert.Equal(t, uint32(800), e.ComputeStage().Target().Width())
	assert.Equal(t, camera.DefaultDistance, e.Camera().Distance())
}

func TestRedrawSubmitsOnce(t *testing.T) {
	e, dev, surf := newTestEngine(t)

	require.NoError(t, e.OnRedraw())

	assert.Equal(t, []string{
		"acquire",
		"create_encoder frame",
		"begin_compute_pass Scene Compute Pass",
		"set_compute_pipeline scene Compute Pipeline",
		"set_bind_group 0 Scene Compute Bind Group",
		"dispatch 100 75 1",
		"end_compute_pass",
		"begin_render_pass Display Render Pass clear",
		"set_render_pipeline display Render Pipeline",
		"set_bind_group 0 Display Bind Group",
		"draw 6 1 0 0",
		"end_render_pass",
		"finish",
		"submit 1",
		"present",
	}, dev.Entries())

	require.Len(t, dev.Submissions, 1)
	cmds := dev.Submissions[0]
	assert.Less(t, indexOf(cmds, "end_compute_pass"), indexOf(cmds, "begin_render_pass Display Render Pass clear"))
	assert.Equal(t, 1, surf.Presents)
	assert.Zero(t, dev.StaleUses)
}

func TestRedrawOutdatedSurfaceResizes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e, dev, surf := newTestEngine(t, WithLogger(zap.New(core)))
	surf.AcquireErrors = []error{gpu.ErrSurfaceOutdated}

	require.NoError(t, e.OnRedraw())
	entries := dev.Entries()
	assert.Equal(t, "acquire_failed", entries[0])
	assert.Contains(t, entries, "configure 800 600")
	assert.NotContains(t, entries, "submit 1")
	assert.Equal(t, 1, logs.FilterMessage("surface outdated, reconfiguring").Len())

	// the next tick renders normally
	dev.ResetLog()
	require.NoError(t, e.OnRedraw())
	assert.Contains(t, dev.Entries(), "submit 1")
	assert.Equal(t, 1, surf.Presents)
}

func TestRedrawFatalErrors(t *testing.T) {
	lost := errors.New("device lost")

	t.Run("acquire", func(t *testing.T) {
		e, dev, surf := newTestEngine(t)
		surf.AcquireErrors = []error{lost}

		err := e.OnRedraw()
		require.ErrorIs(t, err, lost)
		assert.NotContains(t, dev.Entries(), "submit 1")
	})

	t.Run("finish", func(t *testing.T) {
		e, dev, surf := newTestEngine(t)
		dev.FailFinish = true

		require.Error(t, e.OnRedraw())
		entries := dev.Entries()
		assert.Contains(t, entries, "discard")
		assert.NotContains(t, entries, "submit 1")
		assert.Zero(t, surf.Presents)
	})
}

func TestUniformWritePrecedesSubmit(t *testing.T) {
	e, dev, _ := newTestEngine(t)

	assert.True(t, e.OnInputEvent(input.Scroll(1)))
	require.NoError(t, e.OnRedraw())

	entries := dev.Entries()
	write := indexOf(entries, cameraWrite)
	require.GreaterOrEqual(t, write, 0)
	assert.Less(t, write, indexOf(entries, "submit 1"))
}

func TestPointerDragRotates(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	writes := cameraBuffer(t, dev).Writes

	assert.True(t, e.OnInputEvent(input.PointerButton(input.ButtonLeft, true, 400, 300)))
	assert.Equal(t, camera.OperationRotate, e.Controller().Operation())

	// the first sample after a press is only recorded
	assert.False(t, e.OnInputEvent(input.PointerMove(400, 300)))
	assert.Equal(t, mgl32.QuatIdent(), e.Camera().Rotation())

	assert.True(t, e.OnInputEvent(input.PointerMove(450, 300)))
	assert.NotEqual(t, mgl32.QuatIdent(), e.Camera().Rotation())
	assert.Equal(t, writes+1, cameraBuffer(t, dev).Writes)

	assert.True(t, e.OnInputEvent(input.PointerButton(input.ButtonLeft, false, 450, 300)))
	assert.False(t, e.Controller().Dragging())

	rotation := e.Camera().Rotation()
	assert.False(t, e.OnInputEvent(input.PointerMove(500, 350)))
	assert.Equal(t, rotation, e.Camera().Rotation())
	assert.Equal(t, writes+1, cameraBuffer(t, dev).Writes)
}

func TestPointerDragPans(t *testing.T) {
	for _, button := range []input.Button{input.ButtonRight, input.ButtonMiddle} {
		e, _, _ := newTestEngine(t)

		e.OnInputEvent(input.PointerButton(button, true, 100, 100))
		assert.Equal(t, camera.OperationPan, e.Controller().Operation())

		e.OnInputEvent(input.PointerMove(100, 100))
		assert.True(t, e.OnInputEvent(input.PointerMove(140, 100)))
		assert.NotEqual(t, mgl32.Vec3{}, e.Camera().Center())
		assert.Equal(t, mgl32.QuatIdent(), e.Camera().Rotation())
	}
}

func TestControllerPanScale(t *testing.T) {
	pan := func(options ...EngineBuilderOption) float32 {
		e, _, _ := newTestEngine(t, options...)
		e.OnInputEvent(input.PointerButton(input.ButtonRight, true, 100, 100))
		e.OnInputEvent(input.PointerMove(100, 100))
		e.OnInputEvent(input.PointerMove(140, 100))
		return e.Camera().Center().X()
	}

	base := pan()
	scaled := pan(WithControllerOptions(camera.WithPanScale(2)))
	require.NotZero(t, base)
	assert.InDelta(t, 2*base, scaled, 1e-5)
}

func TestResizeSequence(t *testing.T) {
	e, dev, surf := newTestEngine(t)

	require.NoError(t, e.OnResize(0, 0))
	assert.Equal(t, uint32(1), surf.Width)
	assert.Equal(t, uint32(1), surf.Height)
	require.NoError(t, e.OnRedraw())
	assert.Contains(t, dev.Entries(), "dispatch 1 1 1")

	dev.ResetLog()
	require.NoError(t, e.OnResize(400, 300))
	require.NoError(t, e.OnRedraw())
	assert.Contains(t, dev.Entries(), "dispatch 50 38 1")

	w, h := e.Size()
	assert.Equal(t, uint32(400), w)
	assert.Equal(t, uint32(300), h)

	assert.Zero(t, dev.ZeroSizedRequests)
	assert.Zero(t, dev.StaleUses)

	live := dev.LiveTextures()
	require.Len(t, live, 1)
	assert.Equal(t, uint32(400), live[0].W)
	for _, bg := range dev.LiveBindGroups() {
		assert.False(t, bg.Stale(), bg.Label)
	}
	assert.Len(t, dev.LiveBindGroups(), 2)
}

func TestResizeEventUploadsCamera(t *testing.T) {
	e, dev, _ := newTestEngine(t)

	assert.True(t, e.OnInputEvent(input.Resize(-5, 200)))
	entries := dev.Entries()
	assert.Equal(t, "configure 1 200", entries[0])
	assert.Contains(t, entries, cameraWrite)
}

func TestResizeFailureIsFatal(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	dev.FailTextures = true

	assert.True(t, e.OnInputEvent(input.Resize(640, 480)))
	assert.False(t, e.DisplayStage().Bound())

	err := e.OnRedraw()
	require.Error(t, err)
	assert.Zero(t, dev.StaleUses)
}

func TestScrollZoomsAndResetRestores(t *testing.T) {
	e, dev, _ := newTestEngine(t, WithZoom(6, 0.5))
	writes := cameraBuffer(t, dev).Writes

	// scrolling zooms regardless of drag state
	e.OnInputEvent(input.PointerButton(input.ButtonLeft, true, 10, 10))
	assert.True(t, e.OnInputEvent(input.Scroll(0.5)))
	assert.InDelta(t, 0.5, e.Camera().Distance(), 1e-6)

	assert.False(t, e.OnInputEvent(input.Key(common.KeyR, false)))
	assert.False(t, e.OnInputEvent(input.Key(common.KeyEsc, true)))
	assert.True(t, e.OnInputEvent(input.Key(common.KeyR, true)))
	assert.Equal(t, camera.DefaultDistance, e.Camera().Distance())
	assert.Equal(t, writes+2, cameraBuffer(t, dev).Writes)
}

func TestCustomResetKey(t *testing.T) {
	e, _, _ := newTestEngine(t, WithResetKey(common.KeyEsc), WithCameraOptions(camera.WithDistance(5)))

	e.OnInputEvent(input.Scroll(10))
	assert.False(t, e.OnInputEvent(input.Key(common.KeyR, true)))
	assert.True(t, e.OnInputEvent(input.Key(common.KeyEsc, true)))
	assert.Equal(t, float32(5), e.Camera().Distance())
}

func TestRunRendersUntilClose(t *testing.T) {
	e, dev, surf := newTestEngine(t)
	loop := &fakeLoop{
		width: 800, height: 600, maxIterations: 10,
		ticks: [][]input.Event{
			nil,
			{input.Scroll(1)},
			{input.Close()},
		},
	}

	require.NoError(t, e.Run(context.Background(), loop))
	assert.Equal(t, 3, loop.iterations)
	assert.Equal(t, 2, surf.Presents)
	assert.Len(t, dev.Submissions, 2)
	assert.Nil(t, loop.onEvent)
	assert.Nil(t, loop.onUpdate)
}

func TestRunOutdatedUsesWindowSize(t *testing.T) {
	e, dev, surf := newTestEngine(t)
	surf.AcquireErrors = []error{gpu.ErrSurfaceOutdated}
	loop := &fakeLoop{width: 1024, height: 768, maxIterations: 2}

	require.NoError(t, e.Run(context.Background(), loop))
	assert.Contains(t, dev.Entries(), "configure 1024 768")
	assert.Equal(t, 1, surf.Presents)
	assert.Equal(t, uint32(1024), e.ComputeStage().Target().Width())
}

func TestRunStopsOnFatalError(t *testing.T) {
	lost := errors.New("surface lost")
	e, _, surf := newTestEngine(t)
	surf.AcquireErrors = []error{nil, lost}
	loop := &fakeLoop{width: 800, height: 600, maxIterations: 10}

	err := e.Run(context.Background(), loop)
	require.ErrorIs(t, err, lost)
	assert.Equal(t, 1, surf.Presents)
	assert.Less(t, loop.iterations, 10)
	assert.ErrorIs(t, e.OnRedraw(), lost)
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _, surf := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loop := &fakeLoop{width: 800, height: 600, maxIterations: 10}

	require.NoError(t, e.Run(ctx, loop))
	assert.Zero(t, surf.Presents)
	assert.Equal(t, 1, loop.closeRequests)
}

func TestProfilerTicksPerFrame(t *testing.T) {
	base := time.Unix(0, 0)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 500 * time.Millisecond)
	}
	p := profiler.NewProfiler(profiler.WithClock(clock), profiler.WithInterval(time.Second))
	e, _, _ := newTestEngine(t, WithProfiler(p))

	require.NoError(t, e.OnRedraw())
	require.NoError(t, e.OnRedraw())
	assert.InDelta(t, 2.0, p.FPS(), 1e-9)
}

func TestReleaseIsIdempotent(t *testing.T) {
	ctx, dev, _ := gputest.NewContext(gpu.TextureFormatBGRA8Unorm)
	e, err := NewEngine(ctx, 320, 240)
	require.NoError(t, err)

	e.Release()
	e.Release()
	assert.Empty(t, dev.LiveTextures())
	assert.Empty(t, dev.LiveBindGroups())
}

func TestReleaseStopsProfiler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := profiler.NewProfiler(profiler.WithLogger(zap.New(core)))
	ctx, _, _ := gputest.NewContext(gpu.TextureFormatBGRA8Unorm)
	e, err := NewEngine(ctx, 320, 240, WithProfiler(p))
	require.NoError(t, err)

	e.Release()
	e.Release()
	assert.Equal(t, 1, logs.FilterMessage("profiler released").Len())
}
