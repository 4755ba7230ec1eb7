package light

import "github.com/go-gl/mathgl/mgl32"

// LightType represents the type of light source.
type LightType uint32

const (
	// LightTypeDirectional is a light infinitely far away, lighting along Direction.
	LightTypeDirectional LightType = iota

	// LightTypePoint is a light emitting in all directions from Position.
	LightTypePoint
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  mgl32.Vec3
	direction mgl32.Vec3
	color     mgl32.Vec3
	enabled   bool
}

// Light defines a light source contributing to the scene's global uniform block.
type Light interface {
	// Type returns the light type.
	//
	// Returns:
	//   - LightType: directional or point
	Type() LightType

	// Position returns the world-space position. Only used by point lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels. Only used by directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: the direction
	Direction() mgl32.Vec3

	// Color returns the linear RGB color.
	//
	// Returns:
	//   - mgl32.Vec3: the color
	Color() mgl32.Vec3

	// Enabled reports whether the light is written to the global block.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetPosition sets the world-space position.
	SetPosition(position mgl32.Vec3)

	// SetDirection sets the light direction. The vector is normalized.
	SetDirection(direction mgl32.Vec3)

	// SetColor sets the linear RGB color.
	SetColor(color mgl32.Vec3)

	// SetEnabled enables or disables the light.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a white, enabled light of the given type pointing down.
//
// Parameters:
//   - lightType: the type of light
//   - opts: functional options to configure the light
//
// Returns:
//   - Light: the configured light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: mgl32.Vec3{0, -1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(position mgl32.Vec3) {
	l.position = position
}

func (l *lightImpl) SetDirection(direction mgl32.Vec3) {
	l.direction = normalize(direction)
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
