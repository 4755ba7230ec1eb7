package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the eye position.
//
// Parameters:
//   - position: the world-space eye position
//
// Returns:
//   - CameraBuilderOption: a function that applies the position option to a camera
func WithPosition(position mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithTarget sets the look-at target.
//
// Parameters:
//   - target: the world-space point to look at
//
// Returns:
//   - CameraBuilderOption: a function that applies the target option to a camera
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithUp sets the up vector.
//
// Parameters:
//   - up: the up direction
//
// Returns:
//   - CameraBuilderOption: a function that applies the up option to a camera
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFov sets the vertical field of view.
//
// Parameters:
//   - fov: the field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that applies the fov option to a camera
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithNear sets the near clipping plane distance.
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}
