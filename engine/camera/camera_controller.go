package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// orbitController is the implementation of the OrbitController interface.
type orbitController struct {
	camera Camera

	radius    float32
	azimuth   float32 // horizontal angle around Y, 0 on +Z
	elevation float32 // vertical angle from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
	dragSpeed  float32 // radians per pixel
}

// OrbitController moves a camera on a sphere around its target. The application loop drives it from key,
// scroll and middle-drag input.
type OrbitController interface {
	// OrbitLeft rotates the camera left around the target by one orbit step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit step.
	OrbitRight()

	// OrbitUp raises the camera by one orbit step, clamped to the maximum elevation.
	OrbitUp()

	// OrbitDown lowers the camera by one orbit step, clamped to the minimum elevation.
	OrbitDown()

	// Drag orbits the camera by a cursor movement: horizontal pixels turn the azimuth and vertical pixels
	// the elevation, so dragging down raises the camera.
	//
	// Parameters:
	//   - dx: horizontal cursor movement in pixels
	//   - dy: vertical cursor movement in pixels
	Drag(dx, dy float32)

	// Zoom moves the camera toward (positive) or away from (negative) the target.
	//
	// Parameters:
	//   - delta: zoom steps, scaled by the zoom speed
	Zoom(delta float32)

	// Radius retrieves the distance from the target.
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// Azimuth retrieves the horizontal orbit angle in radians.
	Azimuth() float32

	// Elevation retrieves the vertical orbit angle in radians.
	Elevation() float32
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates a controller for cam whose sphere is derived from the camera's current position
// and target, so attaching it does not move the camera.
//
// Parameters:
//   - cam: the camera to move
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the controller
func NewOrbitController(cam Camera, options ...CameraControllerOption) OrbitController {
	offset := cam.Position().Sub(cam.Target())
	radius := offset.Len()

	oc := &orbitController{
		camera:       cam,
		radius:       radius,
		minRadius:    0.5,
		maxRadius:    500.0,
		minElevation: float32(-math.Pi/2 + 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),
		orbitSpeed:   0.03,
		zoomSpeed:    0.5,
		dragSpeed:    0.01,
	}
	if radius > 1e-6 {
		oc.azimuth = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
		oc.elevation = float32(math.Asin(float64(offset.Y() / radius)))
	}
	for _, option := range options {
		option(oc)
	}
	oc.clamp()
	oc.updatePosition()
	return oc
}

func (oc *orbitController) OrbitLeft() {
	oc.azimuth -= oc.orbitSpeed
	oc.updatePosition()
}

func (oc *orbitController) OrbitRight() {
	oc.azimuth += oc.orbitSpeed
	oc.updatePosition()
}

func (oc *orbitController) OrbitUp() {
	oc.elevation += oc.orbitSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) OrbitDown() {
	oc.elevation -= oc.orbitSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Drag(dx, dy float32) {
	oc.azimuth -= dx * oc.dragSpeed
	oc.elevation += dy * oc.dragSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Zoom(delta float32) {
	oc.radius -= delta * oc.zoomSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Radius() float32 {
	return oc.radius
}

func (oc *orbitController) Azimuth() float32 {
	return oc.azimuth
}

func (oc *orbitController) Elevation() float32 {
	return oc.elevation
}

func (oc *orbitController) clamp() {
	oc.radius = mgl32.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = mgl32.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
}

// updatePosition places the camera on the orbit sphere.
func (oc *orbitController) updatePosition() {
	cosElev := float32(math.Cos(float64(oc.elevation)))
	sinElev := float32(math.Sin(float64(oc.elevation)))
	cosAzim := float32(math.Cos(float64(oc.azimuth)))
	sinAzim := float32(math.Sin(float64(oc.azimuth)))

	t := oc.camera.Target()
	oc.camera.SetPosition(mgl32.Vec3{
		t[0] + oc.radius*cosElev*sinAzim,
		t[1] + oc.radius*sinElev,
		t[2] + oc.radius*cosElev*cosAzim,
	})
}
