package render_target

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
)

// Format is the pixel format of every render target. It matches the rgba8unorm storage texture
// declared by the scene shader.
const Format = gpu.TextureFormatRGBA8Unorm

// Usage lets the compute stage write the target and the display stage sample it.
const Usage = gpu.TextureUsageStorageBinding | gpu.TextureUsageTextureBinding

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	label   string
	width   uint32
	height  uint32
	texture gpu.Texture
	view    gpu.TextureView
}

// RenderTarget is the off-screen image the compute stage writes and the display stage samples.
// Its dimensions are never zero. A target is never resized in place; the owner releases it and
// creates a new one, then rebuilds every bind group that referenced the old view.
type RenderTarget interface {
	Width() uint32
	Height() uint32
	Format() gpu.TextureFormat

	// Texture returns the backing texture.
	//
	// Returns:
	//   - gpu.Texture: the texture, or nil after Release
	Texture() gpu.Texture

	// View returns the full-resource view bound by the compute and display stages.
	//
	// Returns:
	//   - gpu.TextureView: the view, or nil after Release
	View() gpu.TextureView

	// Release frees the view and the texture. Safe to call more than once.
	Release()
}

var _ RenderTarget = &renderTarget{}

// ClampSize clamps each dimension to at least 1.
//
// Parameters:
//   - width: the requested width
//   - height: the requested height
//
// Returns:
//   - uint32: the clamped width
//   - uint32: the clamped height
func ClampSize(width, height uint32) (uint32, uint32) {
	return max(width, 1), max(height, 1)
}

// NewRenderTarget allocates a render target. Zero dimensions are clamped to 1, so a minimized
// window still gets a valid 1x1 target.
//
// Parameters:
//   - device: the device to allocate on
//   - label: a debug label for the texture
//   - width: the requested width in pixels
//   - height: the requested height in pixels
//
// Returns:
//   - RenderTarget: the allocated target
//   - error: an error if the texture or its view could not be created
func NewRenderTarget(device gpu.Device, label string, width, height uint32) (RenderTarget, error) {
	width, height = ClampSize(width, height)

	texture, err := device.CreateTexture(&gpu.TextureDescriptor{
		Label:  label,
		Width:  width,
		Height: height,
		Format: Format,
		Usage:  Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render target %dx%d: %w", width, height, err)
	}

	view, err := texture.CreateView()
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("failed to create render target view: %w", err)
	}

	return &renderTarget{
		label:   label,
		width:   width,
		height:  height,
		texture: texture,
		view:    view,
	}, nil
}

func (rt *renderTarget) Width() uint32 {
	return rt.width
}

func (rt *renderTarget) Height() uint32 {
	return rt.height
}

func (rt *renderTarget) Format() gpu.TextureFormat {
	return Format
}

func (rt *renderTarget) Texture() gpu.Texture {
	return rt.texture
}

func (rt *renderTarget) View() gpu.TextureView {
	return rt.view
}

func (rt *renderTarget) Release() {
	if rt.view != nil {
		rt.view.Release()
		rt.view = nil
	}
	if rt.texture != nil {
		rt.texture.Release()
		rt.texture = nil
	}
}
