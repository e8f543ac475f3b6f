package scene

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/Carmen-Shannon/oxy-trace/engine/render_target"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"go.uber.org/zap"
)

// ShaderSource is the default scene compute shader, a signed distance field ray marcher.
//
//go:embed assets/scene.wgsl
var ShaderSource string

// PipelineKey is the renderer cache key of the scene compute pipeline.
const PipelineKey = "scene"

// DefaultTileSize is the workgroup edge used when the shader does not declare one.
const DefaultTileSize = 8

// DefaultZoomTimeStep is the time step applied to every zoom request.
const DefaultZoomTimeStep = float32(1.0 / 60.0)

// ErrNotBound is returned by Dispatch when the compute bind group is missing, which only happens
// after a failed resize.
var ErrNotBound = errors.New("scene: compute bind group not initialized")

// computeStage is the implementation of the ComputeStage interface.
type computeStage struct {
	r      renderer.Renderer
	logger *zap.Logger

	source   string
	pipeline pipeline.Pipeline
	provider bind_group_provider.BindGroupProvider
	target   render_target.RenderTarget
	cam      camera.ArcballCamera

	// Binding locations discovered from the shader's declarations.
	group         int
	outputBinding int
	cameraBinding int

	tileX, tileY uint32

	zoomSensitivity float32
	zoomTimeStep    float32
}

// ComputeStage renders the scene into an off-screen RenderTarget with a compute shader.
//
// The stage owns the target, the camera uniform buffer, the compute bind group, and the arcball
// camera whose pose feeds the uniform. The target and the bind group are always rebuilt together,
// so the bind group never references a released texture.
type ComputeStage interface {
	// Dispatch records one compute pass into the frame's encoder: it sets the pipeline and the
	// compute bind group and dispatches one workgroup per tile of the target.
	//
	// Parameters:
	//   - encoder: the frame's command encoder
	//
	// Returns:
	//   - error: ErrNotBound if the bind group is missing, or an error ending the pass
	Dispatch(encoder gpu.CommandEncoder) error

	// UpdateCamera enqueues a full-size write of the pose into the existing camera uniform
	// buffer. The buffer is never reallocated.
	//
	// Parameters:
	//   - pose: the camera pose to upload
	//
	// Returns:
	//   - error: an error if the queue rejects the write
	UpdateCamera(pose camera.Pose) error

	// FlushCamera uploads the owned camera's current pose.
	//
	// Returns:
	//   - error: an error if the queue rejects the write
	FlushCamera() error

	// Resize releases the current target and allocates a new one of the clamped size, rebuilds
	// the compute bind group over the new view, then moves the camera viewport to the new size
	// and uploads the pose. Allocation failures are fatal.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the target or bind group could not be created
	Resize(width, height uint32) error

	// Zoom scales delta by the configured sensitivity, zooms the camera with the configured
	// time step, and uploads the resulting pose.
	//
	// Parameters:
	//   - delta: the raw scroll amount, positive moves the camera closer
	//
	// Returns:
	//   - error: an error if the queue rejects the write
	Zoom(delta float32) error

	// ResetCamera restores the camera's default distance and orientation and uploads the pose.
	//
	// Returns:
	//   - error: an error if the queue rejects the write
	ResetCamera() error

	// Camera returns the owned arcball camera.
	//
	// Returns:
	//   - camera.ArcballCamera: the camera
	Camera() camera.ArcballCamera

	// Target returns the current render target.
	//
	// Returns:
	//   - render_target.RenderTarget: the target, or nil after a failed resize
	Target() render_target.RenderTarget

	Pipeline() pipeline.Pipeline
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// TileSize returns the workgroup edge lengths used to size dispatches.
	//
	// Returns:
	//   - uint32: the tile width
	//   - uint32: the tile height
	TileSize() (uint32, uint32)

	// Release frees the bind group, the camera buffer, and the target.
	Release()
}

var _ ComputeStage = &computeStage{}

// WorkgroupCount returns the number of workgroups needed to cover a width x height image with
// square tiles, rounding up on both axes. A zero tile falls back to DefaultTileSize.
//
// Parameters:
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - tile: the tile edge in pixels
//
// Returns:
//   - [3]uint32: the workgroup counts in x, y, and z
func WorkgroupCount(width, height, tile uint32) [3]uint32 {
	if tile == 0 {
		tile = DefaultTileSize
	}
	return [3]uint32{ceilDiv(width, tile), ceilDiv(height, tile), 1}
}

func ceilDiv(n, d uint32) uint32 {
	return (n + d - 1) / d
}

// NewComputeStage builds the scene compute stage: it parses the shader, registers the compute
// pipeline, allocates a target of the clamped size, creates the camera uniform and the compute
// bind group, and uploads the initial camera pose.
//
// Parameters:
//   - r: the renderer used for pipeline and bind group creation
//   - width: the initial target width in pixels
//   - height: the initial target height in pixels
//   - options: a variadic list of ComputeStageBuilderOption functions
//
// Returns:
//   - ComputeStage: the ready stage
//   - error: an error if the shader is invalid or GPU resources could not be created
func NewComputeStage(r renderer.Renderer, width, height uint32, options ...ComputeStageBuilderOption) (ComputeStage, error) {
	s := &computeStage{
		r:               r,
		logger:          zap.NewNop(),
		source:          ShaderSource,
		zoomSensitivity: 1,
		zoomTimeStep:    DefaultZoomTimeStep,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.cam == nil {
		s.cam = camera.NewArcballCamera()
	}

	cs, err := shader.NewShader(PipelineKey, shader.ShaderTypeCompute, s.source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene shader: %w", err)
	}

	var ok bool
	var cameraGroup int
	s.group, s.outputBinding, ok = cs.FindBinding(shader.AnnotationArgRenderTarget, shader.AnnotationArgOutputTexture)
	if !ok {
		return nil, errors.New("scene shader declares no render_target output_texture binding")
	}
	cameraGroup, s.cameraBinding, ok = cs.FindBinding(shader.AnnotationArgCamera, "")
	if !ok {
		return nil, errors.New("scene shader declares no camera binding")
	}
	if cameraGroup != s.group {
		return nil, fmt.Errorf("scene shader binds the camera in group %d and the target in group %d", cameraGroup, s.group)
	}

	wg := cs.WorkgroupSize()
	s.tileX, s.tileY = max(wg[0], 1), max(wg[1], 1)

	s.pipeline = pipeline.NewPipeline(PipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(cs))
	if err := r.RegisterPipelines(s.pipeline); err != nil {
		return nil, err
	}
	s.pipeline = r.Pipeline(PipelineKey)

	s.provider = bind_group_provider.NewBindGroupProvider("Scene Compute")
	if err := s.Resize(width, height); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (s *computeStage) Dispatch(encoder gpu.CommandEncoder) error {
	bg := s.provider.BindGroup()
	if bg == nil || s.target == nil {
		return ErrNotBound
	}

	wg := [3]uint32{ceilDiv(s.target.Width(), s.tileX), ceilDiv(s.target.Height(), s.tileY), 1}

	pass := encoder.BeginComputePass("Scene Compute Pass")
	pass.SetPipeline(s.pipeline.ComputePipeline())
	pass.SetBindGroup(uint32(s.group), bg)
	pass.DispatchWorkgroups(wg[0], wg[1], wg[2])
	if err := pass.End(); err != nil {
		return fmt.Errorf("failed to end scene compute pass: %w", err)
	}
	return nil
}

func (s *computeStage) UpdateCamera(pose camera.Pose) error {
	uniform := camera.NewGPUCameraUniform(pose)
	return s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: s.provider, Binding: s.cameraBinding, Offset: 0, Data: uniform.Marshal()},
	})
}

func (s *computeStage) FlushCamera() error {
	return s.UpdateCamera(s.cam.Pose())
}

func (s *computeStage) Resize(width, height uint32) error {
	width, height = render_target.ClampSize(width, height)

	// The bind group goes first so it never outlives the view it references.
	s.provider.ReleaseBindGroup()
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}

	target, err := render_target.NewRenderTarget(s.r.Context().Device, "Scene Render Target", width, height)
	if err != nil {
		return err
	}
	s.target = target

	s.provider.SetTextureView(s.outputBinding, target.View())
	if err := s.r.InitBindGroup(s.provider, s.pipeline, s.group); err != nil {
		return fmt.Errorf("failed to rebuild scene bind group: %w", err)
	}

	s.cam.UpdateScreen(width, height)
	if err := s.FlushCamera(); err != nil {
		return fmt.Errorf("failed to upload camera after resize: %w", err)
	}

	s.logger.Debug("scene target resized", zap.Uint32("width", width), zap.Uint32("height", height))
	return nil
}

func (s *computeStage) Zoom(delta float32) error {
	s.cam.Zoom(delta*s.zoomSensitivity, s.zoomTimeStep)
	return s.FlushCamera()
}

func (s *computeStage) ResetCamera() error {
	s.cam.Reset()
	return s.FlushCamera()
}

func (s *computeStage) Camera() camera.ArcballCamera {
	return s.cam
}

func (s *computeStage) Target() render_target.RenderTarget {
	return s.target
}

func (s *computeStage) Pipeline() pipeline.Pipeline {
	return s.pipeline
}

func (s *computeStage) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return s.provider
}

func (s *computeStage) TileSize() (uint32, uint32) {
	return s.tileX, s.tileY
}

func (s *computeStage) Release() {
	s.provider.Release()
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}
}
