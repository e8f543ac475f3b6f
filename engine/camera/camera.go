package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultDistance is the eye distance from the center a camera starts at and resets to.
	DefaultDistance float32 = 2.0

	// DefaultMinDistance is the closest the eye may approach the center.
	DefaultMinDistance float32 = 0.1

	// DefaultMaxDistance is the farthest the eye may move from the center. It keeps the
	// distance finite under any zoom delta.
	DefaultMaxDistance float32 = math.MaxFloat32
)

// Pose is the world-space camera frame derived from an ArcballCamera.
// ViewDirection and Up are unit length and mutually orthogonal.
type Pose struct {
	Origin        mgl32.Vec3
	ViewDirection mgl32.Vec3
	Up            mgl32.Vec3
}

type arcballCamera struct {
	center          mgl32.Vec3
	defaultDistance float32
	distance        float32
	minDistance     float32
	maxDistance     float32
	zoomSpeed       float32

	rotation mgl32.Quat

	// invScreen holds 1/width and 1/height of the viewport used to project gestures.
	invScreen mgl32.Vec2
}

// ArcballCamera maps pointer gestures onto a virtual ball inscribed in the viewport and
// accumulates them into an orientation around a center point. The camera has no GPU
// dependency; its Pose is pushed to the GPU by the scene compute stage.
type ArcballCamera interface {
	// Rotate composes the rotation dragging from prev to curr on the arcball with the current
	// orientation. Equal points leave the pose unchanged.
	//
	// Parameters:
	//   - prev: the previous pointer position in pixels
	//   - curr: the current pointer position in pixels
	Rotate(prev, curr mgl32.Vec2)

	// Pan translates the center in the view plane. The motion scales with the current distance
	// so panning covers the same fraction of the view at any zoom level.
	//
	// Parameters:
	//   - delta: the pointer motion in pixels
	Pan(delta mgl32.Vec2)

	// Zoom moves the eye along the view direction. Positive delta moves toward the center,
	// negative delta moves away. Distance stays within the minimum and maximum distance.
	//
	// Parameters:
	//   - delta: the signed scroll amount
	//   - timeStep: a velocity multiplier applied to delta
	Zoom(delta, timeStep float32)

	// UpdateScreen sets the viewport size used to project gestures. Orientation, center, and
	// distance are unchanged.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	UpdateScreen(width, height uint32)

	// Reset restores the default distance and identity orientation, keeping the current center.
	Reset()

	// EyePos returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	EyePos() mgl32.Vec3

	// EyeDir returns the unit world-space view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the view direction
	EyeDir() mgl32.Vec3

	// UpDir returns the unit world-space up direction.
	//
	// Returns:
	//   - mgl32.Vec3: the up direction
	UpDir() mgl32.Vec3

	// Pose returns the eye position, view direction, and up direction together.
	//
	// Returns:
	//   - Pose: the current camera pose
	Pose() Pose

	// Center returns the point the camera orbits.
	//
	// Returns:
	//   - mgl32.Vec3: the orbit center
	Center() mgl32.Vec3

	// Distance returns the current eye distance from the center.
	//
	// Returns:
	//   - float32: the eye distance
	Distance() float32

	// Rotation returns the current orientation quaternion.
	//
	// Returns:
	//   - mgl32.Quat: the orientation
	Rotation() mgl32.Quat

	// ViewMatrix returns the world-to-view transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4
}

var _ ArcballCamera = &arcballCamera{}

// NewArcballCamera creates an ArcballCamera looking down -Z at the center from the default
// distance, with a 1x1 viewport until UpdateScreen or WithScreenSize sets one.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - ArcballCamera: the newly created camera
func NewArcballCamera(options ...ArcballCameraBuilderOption) ArcballCamera {
	c := &arcballCamera{
		defaultDistance: DefaultDistance,
		minDistance:     DefaultMinDistance,
		maxDistance:     DefaultMaxDistance,
		zoomSpeed:       1,
		rotation:        mgl32.QuatIdent(),
		invScreen:       mgl32.Vec2{1, 1},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.minDistance <= 0 {
		c.minDistance = DefaultMinDistance
	}
	if c.maxDistance < c.minDistance || math.IsInf(float64(c.maxDistance), 0) || math.IsNaN(float64(c.maxDistance)) {
		c.maxDistance = DefaultMaxDistance
	}
	c.defaultDistance = mgl32.Clamp(c.defaultDistance, c.minDistance, c.maxDistance)
	c.distance = c.defaultDistance
	return c
}

func (c *arcballCamera) Rotate(prev, curr mgl32.Vec2) {
	if prev == curr {
		return
	}
	p := c.toNDC(prev)
	q := c.toNDC(curr)
	if p == q {
		return
	}
	from := screenToArcball(p)
	to := screenToArcball(q)

	// from and to are pure unit quaternions; to * conj(from) rotates from onto to.
	// Renormalizing after every composition keeps long drags from drifting off unit length.
	c.rotation = to.Mul(from.Conjugate()).Mul(c.rotation).Normalize()
}

func (c *arcballCamera) Pan(delta mgl32.Vec2) {
	if delta.X() == 0 && delta.Y() == 0 {
		return
	}
	motion := mgl32.Vec3{
		delta.X() * c.invScreen.X(),
		-delta.Y() * c.invScreen.Y(),
		0,
	}.Mul(c.distance)
	c.center = c.center.Sub(c.rotation.Conjugate().Rotate(motion))
}

func (c *arcballCamera) Zoom(delta, timeStep float32) {
	c.distance -= delta * c.zoomSpeed * timeStep
	switch {
	case math.IsNaN(float64(c.distance)):
		c.distance = c.minDistance
	case c.distance > c.maxDistance:
		// also catches +Inf from an overflowing subtraction
		c.distance = c.maxDistance
	case c.distance < c.minDistance:
		c.distance = c.minDistance
	}
}

func (c *arcballCamera) UpdateScreen(width, height uint32) {
	c.invScreen = mgl32.Vec2{1 / float32(max(width, 1)), 1 / float32(max(height, 1))}
}

func (c *arcballCamera) Reset() {
	c.distance = c.defaultDistance
	c.rotation = mgl32.QuatIdent()
}

func (c *arcballCamera) EyePos() mgl32.Vec3 {
	return c.Pose().Origin
}

func (c *arcballCamera) EyeDir() mgl32.Vec3 {
	return c.Pose().ViewDirection
}

func (c *arcballCamera) UpDir() mgl32.Vec3 {
	return c.Pose().Up
}

func (c *arcballCamera) Pose() Pose {
	// The directions come from the rotation alone, so no distance can leak NaN into them.
	inv := c.rotation.Conjugate()
	dir := inv.Rotate(mgl32.Vec3{0, 0, -1}).Normalize()
	return Pose{
		Origin:        c.center.Sub(dir.Mul(c.distance)),
		ViewDirection: dir,
		Up:            inv.Rotate(mgl32.Vec3{0, 1, 0}).Normalize(),
	}
}

func (c *arcballCamera) Center() mgl32.Vec3 {
	return c.center
}

func (c *arcballCamera) Distance() float32 {
	return c.distance
}

func (c *arcballCamera) Rotation() mgl32.Quat {
	return c.rotation
}

func (c *arcballCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -c.distance).
		Mul4(c.rotation.Mat4()).
		Mul4(mgl32.Translate3D(-c.center.X(), -c.center.Y(), -c.center.Z()))
}

// toNDC maps a pixel position to [-1, 1] on both axes with +Y up.
func (c *arcballCamera) toNDC(p mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		mgl32.Clamp(p.X()*2*c.invScreen.X()-1, -1, 1),
		mgl32.Clamp(1-2*p.Y()*c.invScreen.Y(), -1, 1),
	}
}

// screenToArcball lifts an NDC point onto the unit hemisphere facing the viewer. Points
// outside the ball land on its equator.
func screenToArcball(p mgl32.Vec2) mgl32.Quat {
	d := p.Dot(p)
	if d <= 1 {
		return mgl32.Quat{W: 0, V: mgl32.Vec3{p.X(), p.Y(), float32(math.Sqrt(float64(1 - d)))}}
	}
	n := p.Normalize()
	return mgl32.Quat{W: 0, V: mgl32.Vec3{n.X(), n.Y(), 0}}
}
