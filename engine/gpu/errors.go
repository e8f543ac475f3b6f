package gpu

import "errors"

var (
	// ErrSurfaceOutdated reports that the surface no longer matches the window and must be
	// reconfigured before a frame can be acquired.
	ErrSurfaceOutdated = errors.New("gpu: surface outdated")

	// ErrSurfaceLost reports that the surface was lost and cannot be recovered by reconfiguring.
	ErrSurfaceLost = errors.New("gpu: surface lost")
)
