package camera

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertUnitOrthogonal(t *testing.T, p Pose) {
	t.Helper()
	assert.InDelta(t, 1.0, p.ViewDirection.Len(), 1e-4)
	assert.InDelta(t, 1.0, p.Up.Len(), 1e-4)
	assert.InDelta(t, 0.0, p.ViewDirection.Dot(p.Up), 1e-4)
}

func TestNewArcballCameraDefaults(t *testing.T) {
	c := NewArcballCamera()

	assert.Equal(t, DefaultDistance, c.Distance())
	assert.Equal(t, mgl32.Vec3{}, c.Center())
	assert.True(t, c.EyePos().ApproxEqual(mgl32.Vec3{0, 0, DefaultDistance}))
	assert.True(t, c.EyeDir().ApproxEqual(mgl32.Vec3{0, 0, -1}))
	assert.True(t, c.UpDir().ApproxEqual(mgl32.Vec3{0, 1, 0}))
}

func TestRotateSamePointIsIdentity(t *testing.T) {
	points := []mgl32.Vec2{{0, 0}, {100, 100}, {400, 300}, {799, 599}, {-50, 2000}}

	for _, p := range points {
		c := NewArcballCamera(WithScreenSize(800, 600))
		c.Rotate(mgl32.Vec2{10, 20}, mgl32.Vec2{200, 250})
		before := c.Pose()

		c.Rotate(p, p)

		assert.Equal(t, before, c.Pose(), "rotate(%v, %v) changed the pose", p, p)
	}
}

func TestRotateClampedToSameEdgeIsIdentity(t *testing.T) {
	c := NewArcballCamera(WithScreenSize(800, 600))
	before := c.Pose()

	// Both points clamp to the same NDC corner.
	c.Rotate(mgl32.Vec2{5000, -5000}, mgl32.Vec2{9000, -9000})

	assert.Equal(t, before, c.Pose())
}

func TestRotateDragRightTurnsAboutY(t *testing.T) {
	c := NewArcballCamera(WithScreenSize(800, 600))

	c.Rotate(mgl32.Vec2{400, 300}, mgl32.Vec2{500, 300})

	// The up vector is unaffected by a purely horizontal drag through the center.
	assert.True(t, c.UpDir().ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5))
	// The eye swings off the +Z axis.
	assert.NotEqual(t, float32(0), c.EyePos().X())
	assert.InDelta(t, float64(DefaultDistance), float64(c.EyePos().Len()), 1e-4)
	assertUnitOrthogonal(t, c.Pose())
}

func TestRotateOutsideBallUsesEquator(t *testing.T) {
	c := NewArcballCamera(WithScreenSize(100, 100))

	c.Rotate(mgl32.Vec2{0, 0}, mgl32.Vec2{100, 0})

	q := c.Rotation()
	assert.False(t, math.IsNaN(float64(q.W)))
	assert.InDelta(t, 1.0, q.Len(), 1e-5)
	assertUnitOrthogonal(t, c.Pose())
}

func TestRotateAccumulatesWithoutDrift(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := NewArcballCamera(WithScreenSize(1024, 768))

	prev := mgl32.Vec2{512, 384}
	for range 10000 {
		curr := mgl32.Vec2{prev.X() + rng.Float32()*20 - 10, prev.Y() + rng.Float32()*20 - 10}
		c.Rotate(prev, curr)
		prev = curr
	}

	assert.InDelta(t, 1.0, c.Rotation().Len(), 1e-5)
	assertUnitOrthogonal(t, c.Pose())
	assert.InDelta(t, float64(DefaultDistance), float64(c.EyePos().Len()), 1e-3)
}

func TestZoomDistanceStaysPositive(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float32
	}{
		{"single huge zoom in", []float32{1e9}},
		{"single huge zoom out then in", []float32{-1e6, 1e9}},
		{"many small zoom in", repeat(0.5, 1000)},
		{"alternating", []float32{-3, 100, -0.2, 50, 1e-3, 1e30}},
		{"large negative", repeat(-1e6, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewArcballCamera()
			for _, d := range tt.deltas {
				c.Zoom(d, 1)
				require.Greater(t, c.Distance(), float32(0))
				require.GreaterOrEqual(t, c.Distance(), DefaultMinDistance)
			}
		})
	}
}

func TestZoomOutStaysFinite(t *testing.T) {
	c := NewArcballCamera()

	c.Zoom(-math.MaxFloat32, 1)
	c.Zoom(-math.MaxFloat32, 1)

	assert.Equal(t, DefaultMaxDistance, c.Distance())
	p := c.Pose()
	assertUnitOrthogonal(t, p)
	assert.False(t, math.IsNaN(float64(p.Origin.Z())))
	assert.False(t, math.IsInf(float64(p.Origin.Z()), 0))

	// zooming back in from the bound moves the camera again
	c.Zoom(math.MaxFloat32/2, 1)
	assert.Less(t, c.Distance(), DefaultMaxDistance)
}

func TestZoomClampsToMaxDistance(t *testing.T) {
	c := NewArcballCamera(WithDistance(50), WithMaxDistance(10))
	assert.Equal(t, float32(10), c.Distance(), "default distance clamps to the maximum")

	c.Zoom(-100, 1)
	assert.Equal(t, float32(10), c.Distance())
	assertUnitOrthogonal(t, c.Pose())

	c = NewArcballCamera(WithMaxDistance(float32(math.Inf(1))))
	c.Zoom(-1e6, 1)
	assert.InDelta(t, 1e6+DefaultDistance, c.Distance(), 1)
}

func TestZoomUsesSpeedAndTimeStep(t *testing.T) {
	c := NewArcballCamera(WithDistance(5), WithZoomSpeed(2))

	c.Zoom(1, 0.5)

	assert.InDelta(t, 4.0, c.Distance(), 1e-6)
}

func TestUpdateScreenKeepsPose(t *testing.T) {
	c := NewArcballCamera(WithScreenSize(800, 600))
	c.Rotate(mgl32.Vec2{100, 100}, mgl32.Vec2{300, 250})
	c.Pan(mgl32.Vec2{15, -30})
	c.Zoom(0.5, 1)
	before := c.Pose()
	distance := c.Distance()
	center := c.Center()

	for _, size := range [][2]uint32{{1, 1}, {0, 0}, {1920, 1080}, {800, 600}} {
		c.UpdateScreen(size[0], size[1])
		assert.Equal(t, before, c.Pose())
		assert.Equal(t, distance, c.Distance())
		assert.Equal(t, center, c.Center())
	}
}

func TestUpdateScreenRescalesGestures(t *testing.T) {
	small := NewArcballCamera(WithScreenSize(200, 200))
	large := NewArcballCamera(WithScreenSize(200, 200))
	large.UpdateScreen(400, 400)

	// The same normalized drag in both viewports yields the same rotation.
	small.Rotate(mgl32.Vec2{100, 100}, mgl32.Vec2{150, 100})
	large.Rotate(mgl32.Vec2{200, 200}, mgl32.Vec2{300, 200})

	assert.True(t, small.Rotation().ApproxEqualThreshold(large.Rotation(), 1e-6))
}

func TestResetRestoresFreshPose(t *testing.T) {
	center := mgl32.Vec3{1, -2, 3}
	c := NewArcballCamera(WithCenter(center), WithDistance(3), WithScreenSize(640, 480))

	c.Rotate(mgl32.Vec2{10, 10}, mgl32.Vec2{600, 400})
	c.Zoom(-250, 1)
	c.Rotate(mgl32.Vec2{320, 240}, mgl32.Vec2{100, 40})
	c.Pan(mgl32.Vec2{40, 40})
	c.Zoom(1e6, 1)

	c.Reset()

	fresh := NewArcballCamera(WithCenter(c.Center()), WithDistance(3), WithScreenSize(640, 480))
	assert.Equal(t, fresh.EyePos(), c.EyePos())
	assert.Equal(t, fresh.EyeDir(), c.EyeDir())
	assert.Equal(t, fresh.UpDir(), c.UpDir())
	assert.Equal(t, float32(3), c.Distance())
}

func TestResetWithoutPanMatchesConstruction(t *testing.T) {
	center := mgl32.Vec3{0.5, 0.5, 0.5}
	c := NewArcballCamera(WithCenter(center))

	c.Rotate(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1})
	c.Zoom(-10, 1)
	c.Reset()

	fresh := NewArcballCamera(WithCenter(center))
	assert.Equal(t, fresh.Pose(), c.Pose())
	assert.Equal(t, center, c.Center())
}

func TestPanMovesCenterInViewPlane(t *testing.T) {
	c := NewArcballCamera(WithScreenSize(100, 100), WithDistance(4))
	c.Rotate(mgl32.Vec2{50, 50}, mgl32.Vec2{70, 30})
	dir := c.EyeDir()

	c.Pan(mgl32.Vec2{10, 0})

	moved := c.Center()
	assert.NotEqual(t, mgl32.Vec3{}, moved)
	assert.InDelta(t, 0.0, moved.Dot(dir), 1e-5)
	// 10 px of a 100 px viewport at distance 4.
	assert.InDelta(t, 0.4, moved.Len(), 1e-5)
}

func TestPanScalesWithDistance(t *testing.T) {
	near := NewArcballCamera(WithScreenSize(100, 100), WithDistance(1))
	far := NewArcballCamera(WithScreenSize(100, 100), WithDistance(8))

	near.Pan(mgl32.Vec2{0, 10})
	far.Pan(mgl32.Vec2{0, 10})

	assert.InDelta(t, float64(near.Center().Len()*8), float64(far.Center().Len()), 1e-5)
}

func TestZoomOutScenario(t *testing.T) {
	c := NewArcballCamera(WithCenter(mgl32.Vec3{}), WithDistance(1), WithScreenSize(800, 600))
	before := c.Distance()
	axis := c.EyeDir().Mul(-1)

	c.Zoom(-1.0, 1.0)

	assert.Greater(t, c.Distance(), before)
	assert.InDelta(t, 2.0, c.Distance(), 1e-6)
	assert.True(t, c.EyePos().ApproxEqual(axis.Mul(c.Distance())))
}

func TestViewMatrixInvertsEyePosition(t *testing.T) {
	c := NewArcballCamera(WithCenter(mgl32.Vec3{1, 2, 3}), WithScreenSize(300, 300))
	c.Rotate(mgl32.Vec2{150, 150}, mgl32.Vec2{200, 120})

	eyeInView := c.ViewMatrix().Mul4x1(c.EyePos().Vec4(1)).Vec3()

	assert.True(t, eyeInView.ApproxEqualThreshold(mgl32.Vec3{}, 1e-4))
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	u := NewGPUCameraUniform(Pose{
		Origin:        mgl32.Vec3{1, 2, 3},
		ViewDirection: mgl32.Vec3{0, 0, -1},
		Up:            mgl32.Vec3{0, 1, 0},
	})

	buf := u.Marshal()

	require.Len(t, buf, 48)
	assert.Equal(t, 48, u.Size())
	assert.Equal(t, float32(3), math.Float32frombits(leUint32(buf[8:])))
	assert.Equal(t, float32(0), math.Float32frombits(leUint32(buf[12:])))
	assert.Equal(t, float32(-1), math.Float32frombits(leUint32(buf[24:])))
	assert.Equal(t, float32(1), math.Float32frombits(leUint32(buf[36:])))
	assert.Contains(t, GPUCameraUniformSource, "struct CameraUniform")
}

func repeat(v float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
