package wgpu_backend

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// surface configures and acquires frames from a wgpu.Surface. The format and alpha mode are
// chosen once from the adapter capabilities.
type surface struct {
	mu          *sync.Mutex
	surface     *wgpu.Surface
	adapter     *wgpu.Adapter
	device      *wgpu.Device
	format      gpu.TextureFormat
	alphaMode   wgpu.CompositeAlphaMode
	presentMode wgpu.PresentMode
	configured  bool
}

var _ gpu.Surface = &surface{}

// newSurface picks the first capability format the device layer can name.
func newSurface(s *wgpu.Surface, adapter *wgpu.Adapter, device *wgpu.Device, presentMode wgpu.PresentMode) (*surface, error) {
	capabilities := s.GetCapabilities(adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface is not compatible with the adapter")
	}

	format := gpu.TextureFormatUndefined
	for _, f := range capabilities.Formats {
		if gf, ok := fromTextureFormat(f); ok {
			format = gf
			break
		}
	}
	if format == gpu.TextureFormatUndefined {
		return nil, fmt.Errorf("no supported surface format in %v", capabilities.Formats)
	}

	return &surface{
		mu:          &sync.Mutex{},
		surface:     s,
		adapter:     adapter,
		device:      device,
		format:      format,
		alphaMode:   capabilities.AlphaModes[0],
		presentMode: presentMode,
	}, nil
}

func (s *surface) Configure(width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width == 0 || height == 0 {
		return fmt.Errorf("cannot configure a %dx%d surface", width, height)
	}
	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      toTextureFormat(s.format),
		Width:       width,
		Height:      height,
		PresentMode: s.presentMode,
		AlphaMode:   s.alphaMode,
	})
	s.configured = true
	return nil
}

func (s *surface) Format() gpu.TextureFormat {
	return s.format
}

func (s *surface) Acquire() (gpu.SurfaceFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured {
		return nil, fmt.Errorf("acquire before configure: %w", gpu.ErrSurfaceOutdated)
	}

	// The binding drops the native acquire status, so an outdated surface may return a null
	// texture with no error. Only statuses reported through the error scope reach here.
	t, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifyAcquireError(err)
	}
	view, err := t.CreateView(nil)
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}
	return &surfaceFrame{surface: s.surface, texture: t, view: &textureView{view: view}}, nil
}

// classifyAcquireError maps the native acquisition status onto the device layer sentinels.
// The native binding reports the status only in the error text.
func classifyAcquireError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "outdated"), strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", gpu.ErrSurfaceOutdated, err)
	case strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %v", gpu.ErrSurfaceLost, err)
	default:
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
}

type surfaceFrame struct {
	surface *wgpu.Surface
	texture *wgpu.Texture
	view    *textureView
}

func (f *surfaceFrame) View() gpu.TextureView {
	return f.view
}

func (f *surfaceFrame) Present() {
	f.surface.Present()
	f.release()
}

func (f *surfaceFrame) Discard() {
	f.release()
}

func (f *surfaceFrame) release() {
	f.view.Release()
	f.texture.Release()
}
