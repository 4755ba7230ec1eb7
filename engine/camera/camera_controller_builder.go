package camera

// CameraControllerOption is a functional option for configuring an OrbitController.
type CameraControllerOption func(*orbitController)

// WithRadiusBounds sets the minimum and maximum orbit radius.
//
// Parameters:
//   - min: closest allowed distance to the target
//   - max: farthest allowed distance from the target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius bounds
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.minRadius = min
		oc.maxRadius = max
	}
}

// WithElevationBounds sets the minimum and maximum vertical angle.
//
// Parameters:
//   - min: lowest elevation in radians
//   - max: highest elevation in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation bounds
func WithElevationBounds(min, max float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.minElevation = min
		oc.maxElevation = max
	}
}

// WithOrbitSpeed sets the angle in radians moved by one orbit step.
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the distance moved by one zoom step.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.zoomSpeed = speed
	}
}

// WithDragSpeed sets the angle in radians moved per pixel of middle-drag.
func WithDragSpeed(speed float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.dragSpeed = speed
	}
}
