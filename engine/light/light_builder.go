package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a functional option for configuring a Light via NewLight.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the world-space position of the light.
//
// Parameters:
//   - position: the light position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option
func WithPosition(position mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = position
	}
}

// WithDirection sets the direction the light travels. The vector is normalized.
//
// Parameters:
//   - direction: the light direction
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option
func WithDirection(direction mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize(direction)
	}
}

// WithColor sets the linear RGB color of the light.
//
// Parameters:
//   - color: the light color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = color
	}
}

// WithEnabled sets whether the light is initially enabled.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-8 {
		return mgl32.Vec3{0, -1, 0}
	}
	return v.Normalize()
}
