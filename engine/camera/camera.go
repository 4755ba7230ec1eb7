package camera

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera holds the pose and projection parameters of the viewer.
// The matrices are recomputed by Update, once per frame, from the parameters and the live viewport.
type Camera interface {
	// Position retrieves the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target retrieves the world-space point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// Up retrieves the up direction used to orient the view.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov retrieves the vertical field of view in radians.
	//
	// Returns:
	//   - float32: the field of view
	Fov() float32

	// Aspect retrieves the aspect ratio used by the last Update.
	//
	// Returns:
	//   - float32: width divided by height
	Aspect() float32

	// Near retrieves the near clipping plane distance.
	Near() float32

	// Far retrieves the far clipping plane distance.
	Far() float32

	// ViewMatrix retrieves the world-to-view matrix computed by the last Update.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix retrieves the view-to-clip matrix computed by the last Update.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix retrieves projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Update recomputes the view and projection matrices.
	//
	// Parameters:
	//   - viewport: the live viewport, which supplies the aspect ratio
	//   - depthZeroToOne: true if the device's clip-space depth spans [0, 1]
	Update(viewport common.Viewport, depthZeroToOne bool)

	// SetPosition sets the eye position.
	SetPosition(position mgl32.Vec3)

	// SetTarget sets the look-at target.
	SetTarget(target mgl32.Vec3)

	// SetUp sets the up vector.
	SetUp(up mgl32.Vec3)

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (0, 3, 10) looking at (0, 1, 0) with a 60 degree field of view.
//
// Parameters:
//   - options: a variadic list of CameraBuilderOption functions to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		position:             mgl32.Vec3{0, 3, 10},
		target:               mgl32.Vec3{0, 1, 0},
		up:                   mgl32.Vec3{0, 1, 0},
		fov:                  mgl32.DegToRad(60),
		aspect:               1.0,
		near:                 0.1,
		far:                  1000.0,
		viewMatrix:           mgl32.Ident4(),
		projectionMatrix:     mgl32.Ident4(),
		viewProjectionMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	return c.viewProjectionMatrix
}

func (c *cameraImpl) SetPosition(position mgl32.Vec3) {
	c.position = position
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.target = target
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.up = up
}

func (c *cameraImpl) SetFov(fov float32) {
	c.fov = fov
}

func (c *cameraImpl) SetNear(near float32) {
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.far = far
}

func (c *cameraImpl) Update(viewport common.Viewport, depthZeroToOne bool) {
	c.aspect = viewport.Aspect()
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	if depthZeroToOne {
		c.projectionMatrix = common.PerspectiveZO(c.fov, c.aspect, c.near, c.far)
	} else {
		c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
