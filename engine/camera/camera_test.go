package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestUpdateUsesViewportAspect(t *testing.T) {
	c := NewCamera(WithFov(mgl32.DegToRad(45)), WithNear(0.5), WithFar(50))

	c.Update(common.Viewport{Width: 1600, Height: 900}, false)

	assert.InDelta(t, 1600.0/900.0, c.Aspect(), 1e-6)
	want := mgl32.Perspective(mgl32.DegToRad(45), 1600.0/900.0, 0.5, 50)
	assert.True(t, want.ApproxEqual(c.ProjectionMatrix()))
	assert.True(t, c.ProjectionMatrix().Mul4(c.ViewMatrix()).ApproxEqual(c.ViewProjectionMatrix()))
}

func TestUpdateDepthZeroToOne(t *testing.T) {
	c := NewCamera(WithNear(1), WithFar(10), WithPosition(mgl32.Vec3{0, 0, 0}), WithTarget(mgl32.Vec3{0, 0, -1}))
	c.Update(common.Viewport{Width: 100, Height: 100}, true)

	near := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, -10, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)
}

func TestViewMovesTargetOntoAxis(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, 5}), WithTarget(mgl32.Vec3{0, 0, 0}))
	c.Update(common.Viewport{Width: 1, Height: 1}, false)

	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-5)
}

func TestOrbitControllerKeepsStartingPose(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 3, 4}), WithTarget(mgl32.Vec3{0, 0, 0}))
	oc := NewOrbitController(c)

	assert.InDelta(t, 5, oc.Radius(), 1e-5)
	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{0, 3, 4}, 1e-4))
}

func TestOrbitControllerClamps(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, 5}), WithTarget(mgl32.Vec3{}))
	oc := NewOrbitController(c, WithRadiusBounds(2, 6), WithElevationBounds(-0.1, 0.1), WithOrbitSpeed(0.08))

	oc.Zoom(-100)
	assert.Equal(t, float32(6), oc.Radius())
	oc.Zoom(100)
	assert.Equal(t, float32(2), oc.Radius())

	oc.OrbitUp()
	oc.OrbitUp()
	assert.Equal(t, float32(0.1), oc.Elevation())

	oc.OrbitRight()
	assert.InDelta(t, 0.08, oc.Azimuth(), 1e-6)
	assert.InDelta(t, 2, c.Position().Len(), 1e-5)
}

func TestOrbitControllerDrag(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, 5}), WithTarget(mgl32.Vec3{}))
	oc := NewOrbitController(c, WithDragSpeed(0.01), WithElevationBounds(-0.5, 0.5))

	oc.Drag(-10, 20)
	assert.InDelta(t, 0.1, oc.Azimuth(), 1e-6)
	assert.InDelta(t, 0.2, oc.Elevation(), 1e-6)
	assert.InDelta(t, 5, c.Position().Len(), 1e-5)
	assert.Greater(t, c.Position().Y(), float32(0))

	oc.Drag(0, 1000)
	assert.Equal(t, float32(0.5), oc.Elevation())
}
