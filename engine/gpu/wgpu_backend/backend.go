// Package wgpu_backend implements the engine/gpu device layer on cogentcore/webgpu.
package wgpu_backend

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// backend holds the negotiation options and the native handles released with the context.
type backend struct {
	logger               *zap.Logger
	presentMode          gpu.PresentMode
	forceFallbackAdapter bool
	deviceLabel          string

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface
}

// New negotiates an instance, adapter, device and queue for the given window surface and
// returns them as a gpu.Context. The calling goroutine is locked to its OS thread because the
// native surface must be driven from the thread that created the window.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - options: functional options applied before negotiation
//
// Returns:
//   - *gpu.Context: the device, queue and surface, released through Context.Release
//   - error: an error if any step of negotiation fails
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BackendBuilderOption) (*gpu.Context, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("surface descriptor is nil")
	}
	runtime.LockOSThread()

	b := &backend{
		logger:      zap.NewNop(),
		presentMode: gpu.PresentModeFifo,
		deviceLabel: "Main Device",
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: b.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	s, err := newSurface(b.surface, b.adapter, b.device, toPresentMode(b.presentMode))
	if err != nil {
		b.release()
		return nil, err
	}

	b.logger.Info("gpu device ready",
		zap.Bool("fallback_adapter", b.forceFallbackAdapter),
		zap.Int("present_mode", int(b.presentMode)),
		zap.Int("surface_format", int(s.Format())),
	)

	dev := &device{device: b.device, queue: b.queue}
	return gpu.NewContext(dev, dev, s, b.release), nil
}

// release tears down the native handles in reverse creation order.
func (b *backend) release() {
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.logger.Debug("gpu device released")
}
