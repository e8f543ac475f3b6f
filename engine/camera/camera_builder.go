package camera

import "github.com/go-gl/mathgl/mgl32"

// ArcballCameraBuilderOption is a functional option for configuring an ArcballCamera.
type ArcballCameraBuilderOption func(*arcballCamera)

// WithCenter sets the point the camera orbits.
//
// Parameters:
//   - center: the world-space orbit center
//
// Returns:
//   - ArcballCameraBuilderOption: functional option to set the center
func WithCenter(center mgl32.Vec3) ArcballCameraBuilderOption {
	return func(c *arcballCamera) {
		c.center = center
	}
}

// WithDistance sets the default eye distance from the center. The camera starts at this
// distance and Reset returns to it.
//
// Parameters:
//   - distance: the default distance, clamped to the minimum distance
//
// Returns:
//   - ArcballCameraBuilderOption: functional option to set the default distance
func WithDistance(distance float32) ArcballCameraBuilderOption {
	return func(c *arcballCamera) {
		c.defaultDistance = distance
	}
}

// WithMinDistance sets the closest the eye may approach the center. Non-positive values keep
// DefaultMinDistance.
//
// Parameters:
//   - minDistance: the strictly positive minimum distance
//
// Returns:
//   - ArcballCameraBuilderOption: functional option to set the minimum distance
func WithMinDistance(minDistance float32) ArcballCameraBuilderOption {
	return func(c *arcballCamera) {
		c.minDistance = minDistance
	}
}

// WithMaxDistance sets the farthest the eye may move from the center. Values below the
// minimum distance, or non-finite values, keep DefaultMaxDistance.
//
// Parameters:
//   - maxDistance: the maximum distance
//
// Returns:
//   - ArcballCameraBuilderOption: functional option to set the maximum distance
func WithMaxDistance(maxDistance float32) ArcballCameraBuilderOption {
	return func(c *arcballCamera) {
		c.maxDistance = maxDistance
	}
}

// WithZoomSpeed sets the multiplier applied to every zoom delta.
//
// Parameters:
//   - speed: the zoom speed multiplier
//
// Returns:
//   - ArcballCameraBuilderOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) ArcballCameraBuilderOption {
	return func(c *arcballCamera) {
		c.zoomSpeed = speed
	}
}

// WithScreenSize sets the initial viewport size used to project gestures.
//
// Parameters:
//   - width: the viewport width in pixels
//   - height: the viewport height in pixels
//
// Returns:
//   - ArcballCameraBuilderOption: functional option to set the viewport size
func WithScreenSize(width, height uint32) ArcballCameraBuilderOption {
	return func(c *arcballCamera) {
		c.UpdateScreen(width, height)
	}
}
