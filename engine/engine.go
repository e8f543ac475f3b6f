package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/display"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/input"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_target"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"go.uber.org/zap"
)

// FrameEncoderLabel labels the single command encoder recorded per frame.
const FrameEncoderLabel = "frame"

// engine implements the Engine interface. All methods run on the control thread.
type engine struct {
	ctx      *gpu.Context
	r        renderer.Renderer
	scene    scene.ComputeStage
	display  display.DisplayStage
	control  camera.CameraController
	logger   *zap.Logger
	profiler *profiler.Profiler

	cameraOptions   []camera.ArcballCameraBuilderOption
	controlOptions  []camera.CameraControllerOption
	zoomSensitivity float32
	zoomTimeStep    float32
	clearColor      *gpu.Color
	resetKey        uint32

	// width and height are the last clamped size applied by OnResize.
	width  uint32
	height uint32

	// size reports the window's current framebuffer size for outdated surface recovery.
	size func() (uint32, uint32)

	loop     EventLoop
	closing  bool
	fatal    error
	released bool
}

// EventLoop is the part of window.Window the engine drives in Run.
type EventLoop interface {
	SetEventCallback(callback func(ev input.Event))
	SetUpdateCallback(callback func())
	ProcessMessages()
	RequestClose()
	Width() int
	Height() int
}

// Engine is the frame orchestrator. It owns the scene compute stage, the display stage, and
// the camera controller, and turns window events into camera edits, resizes, and frames.
type Engine interface {
	// OnResize reconfigures the surface for the clamped size, rebuilds the render target and both
	// bind groups as one unit, updates the camera viewport, and uploads the camera uniform.
	//
	// Parameters:
	//   - width: the new framebuffer width, 0 while minimized
	//   - height: the new framebuffer height, 0 while minimized
	//
	// Returns:
	//   - error: a fatal error if reconfiguration or reallocation failed
	OnResize(width, height uint32) error

	// OnInputEvent routes one event. Camera edits are uploaded immediately, so the write is
	// enqueued before the next frame's submit.
	//
	// Parameters:
	//   - ev: the event to handle
	//
	// Returns:
	//   - bool: true if the event was handled
	OnInputEvent(ev input.Event) bool

	// OnRedraw renders one frame: acquire, one encoder with the compute pass then the display
	// pass, one submit, present. An outdated surface triggers OnResize with the window's current
	// size instead, and the frame is rendered on the next tick.
	//
	// Returns:
	//   - error: a fatal error, wrapped with the failing step
	OnRedraw() error

	// Run drives loop until a close event, cancellation of ctx, or a fatal error. One redraw is
	// requested per loop iteration.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//   - loop: the window message loop
	//
	// Returns:
	//   - error: the fatal error that stopped the loop, or nil
	Run(ctx context.Context, loop EventLoop) error

	// Size returns the last size applied by OnResize.
	//
	// Returns:
	//   - uint32: the width
	//   - uint32: the height
	Size() (uint32, uint32)

	Camera() camera.ArcballCamera
	Controller() camera.CameraController
	ComputeStage() scene.ComputeStage
	DisplayStage() display.DisplayStage

	// Release frees both stages, the renderer's pipelines, and the GPU context. Safe to call
	// more than once.
	Release()
}

var _ Engine = &engine{}

// NewEngine configures the surface and builds the camera, the scene compute stage, and the
// display stage for an initial framebuffer size.
//
// Parameters:
//   - ctx: the GPU context; its surface is required
//   - width: the initial framebuffer width in pixels
//   - height: the initial framebuffer height in pixels
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the ready engine
//   - error: an error if any GPU resource could not be created
func NewEngine(ctx *gpu.Context, width, height uint32, options ...EngineBuilderOption) (Engine, error) {
	if ctx == nil || ctx.Surface == nil {
		return nil, errors.New("engine requires a gpu context with a surface")
	}
	e := &engine{
		ctx:             ctx,
		logger:          zap.NewNop(),
		zoomSensitivity: 1,
		zoomTimeStep:    scene.DefaultZoomTimeStep,
		resetKey:        common.KeyR,
	}
	for _, opt := range options {
		opt(e)
	}
	e.size = e.Size

	e.width, e.height = render_target.ClampSize(width, height)
	if err := ctx.Surface.Configure(e.width, e.height); err != nil {
		return nil, fmt.Errorf("failed to configure surface: %w", err)
	}

	e.r = renderer.NewRenderer(ctx, renderer.WithLogger(e.logger))

	cam := camera.NewArcballCamera(append(e.cameraOptions, camera.WithScreenSize(e.width, e.height))...)
	e.control = camera.NewCameraController(cam, e.controlOptions...)

	s, err := scene.NewComputeStage(e.r, e.width, e.height,
		scene.WithCamera(cam),
		scene.WithZoom(e.zoomSensitivity, e.zoomTimeStep),
		scene.WithLogger(e.logger),
	)
	if err != nil {
		e.r.Release()
		return nil, fmt.Errorf("failed to create scene compute stage: %w", err)
	}
	e.scene = s

	displayOptions := []display.DisplayStageBuilderOption{display.WithLogger(e.logger)}
	if e.clearColor != nil {
		displayOptions = append(displayOptions, display.WithClearColor(*e.clearColor))
	}
	d, err := display.NewDisplayStage(e.r, s.Target(), displayOptions...)
	if err != nil {
		s.Release()
		e.r.Release()
		return nil, fmt.Errorf("failed to create display stage: %w", err)
	}
	e.display = d

	e.logger.Info("engine ready", zap.Uint32("width", e.width), zap.Uint32("height", e.height))
	return e, nil
}

func (e *engine) OnResize(width, height uint32) error {
	w, h := render_target.ClampSize(width, height)

	if err := e.ctx.Surface.Configure(w, h); err != nil {
		return fmt.Errorf("failed to configure surface %dx%d: %w", w, h, err)
	}

	// Drop the display bind group before the scene releases the texture it samples.
	if err := e.display.Rebind(nil); err != nil {
		return err
	}
	if err := e.scene.Resize(w, h); err != nil {
		return fmt.Errorf("failed to resize scene to %dx%d: %w", w, h, err)
	}
	if err := e.display.Rebind(e.scene.Target()); err != nil {
		return err
	}

	e.width, e.height = w, h
	e.logger.Debug("resized",
		zap.Uint32("requested_width", width),
		zap.Uint32("requested_height", height),
		zap.Uint32("width", w),
		zap.Uint32("height", h),
	)
	return nil
}

func (e *engine) OnInputEvent(ev input.Event) bool {
	switch ev.Type {
	case input.EventPointerButton:
		if !ev.Pressed {
			e.control.End()
			return true
		}
		op := camera.OperationRotate
		if ev.Button != input.ButtonLeft {
			op = camera.OperationPan
		}
		e.control.Begin(op)
		return true

	case input.EventPointerMove:
		if !e.control.PointerMoved(ev.X, ev.Y) {
			return false
		}
		e.check(e.scene.FlushCamera())
		return true

	case input.EventScroll:
		e.check(e.scene.Zoom(ev.ScrollDelta))
		return true

	case input.EventKey:
		if !ev.Pressed || ev.Key != e.resetKey {
			return false
		}
		e.check(e.scene.ResetCamera())
		return true

	case input.EventResize:
		e.check(e.OnResize(uint32(max(ev.Width, 0)), uint32(max(ev.Height, 0))))
		return true

	case input.EventClose:
		e.requestClose()
		return true

	case input.EventRedrawRequest:
		e.check(e.OnRedraw())
		return true
	}
	return false
}

func (e *engine) OnRedraw() error {
	if e.fatal != nil {
		return e.fatal
	}

	frame, err := e.ctx.Surface.Acquire()
	if errors.Is(err, gpu.ErrSurfaceOutdated) {
		w, h := e.size()
		e.logger.Info("surface outdated, reconfiguring", zap.Uint32("width", w), zap.Uint32("height", h))
		return e.OnResize(w, h)
	}
	if err != nil {
		return fmt.Errorf("failed to acquire surface frame: %w", err)
	}

	if err := e.encodeAndSubmit(frame.View()); err != nil {
		frame.Discard()
		return err
	}
	frame.Present()

	if e.profiler != nil {
		e.profiler.Tick()
	}
	return nil
}

// encodeAndSubmit records the compute pass and the display pass into one encoder and submits
// it once.
func (e *engine) encodeAndSubmit(view gpu.TextureView) error {
	encoder, err := e.ctx.Device.CreateCommandEncoder(FrameEncoderLabel)
	if err != nil {
		return fmt.Errorf("failed to create frame encoder: %w", err)
	}
	defer encoder.Release()

	if err := e.scene.Dispatch(encoder); err != nil {
		return fmt.Errorf("failed to encode scene dispatch: %w", err)
	}
	if err := e.display.Composite(encoder, view); err != nil {
		return fmt.Errorf("failed to encode display pass: %w", err)
	}

	cb, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("failed to finish frame encoder: %w", err)
	}
	e.ctx.Queue.Submit(cb)
	cb.Release()
	return nil
}

func (e *engine) Run(ctx context.Context, loop EventLoop) error {
	e.loop = loop
	e.closing = false
	e.size = func() (uint32, uint32) {
		return uint32(max(loop.Width(), 0)), uint32(max(loop.Height(), 0))
	}
	defer func() {
		loop.SetEventCallback(nil)
		loop.SetUpdateCallback(nil)
		e.loop = nil
		e.size = e.Size
	}()

	loop.SetEventCallback(func(ev input.Event) {
		e.OnInputEvent(ev)
	})
	loop.SetUpdateCallback(func() {
		if ctx.Err() != nil || e.fatal != nil || e.closing {
			loop.RequestClose()
			return
		}
		e.OnInputEvent(input.RedrawRequest())
	})

	loop.ProcessMessages()

	if e.fatal != nil {
		e.logger.Error("engine stopped", zap.Error(e.fatal))
		return e.fatal
	}
	e.logger.Info("engine stopped")
	return nil
}

func (e *engine) Size() (uint32, uint32) {
	return e.width, e.height
}

func (e *engine) Camera() camera.ArcballCamera {
	return e.scene.Camera()
}

func (e *engine) Controller() camera.CameraController {
	return e.control
}

func (e *engine) ComputeStage() scene.ComputeStage {
	return e.scene
}

func (e *engine) DisplayStage() display.DisplayStage {
	return e.display
}

func (e *engine) Release() {
	if e.released {
		return
	}
	e.released = true
	e.display.Release()
	e.scene.Release()
	e.r.Release()
	e.ctx.Release()
	if e.profiler != nil {
		e.profiler.Release()
	}
	e.logger.Info("engine released")
}

// check records the first fatal error and stops the loop.
func (e *engine) check(err error) {
	if err == nil || e.fatal != nil {
		return
	}
	e.fatal = err
	e.requestClose()
}

func (e *engine) requestClose() {
	e.closing = true
	if e.loop != nil {
		e.loop.RequestClose()
	}
}
