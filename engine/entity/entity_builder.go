package entity

import "github.com/go-gl/mathgl/mgl32"

// EntityBuilderOption is a functional option for configuring an Entity via NewEntity.
type EntityBuilderOption func(*Entity)

// WithName sets the entity name.
//
// Parameters:
//   - name: the entity identifier
//
// Returns:
//   - EntityBuilderOption: a function that applies the name option
func WithName(name string) EntityBuilderOption {
	return func(e *Entity) {
		e.Name = name
	}
}

// WithPosition sets the world-space position.
//
// Parameters:
//   - position: the position
//
// Returns:
//   - EntityBuilderOption: a function that applies the position option
func WithPosition(position mgl32.Vec3) EntityBuilderOption {
	return func(e *Entity) {
		e.Position = position
	}
}

// WithRotation sets the Euler rotation in radians.
func WithRotation(rotation mgl32.Vec3) EntityBuilderOption {
	return func(e *Entity) {
		e.Rotation = rotation
	}
}

// WithScale sets the per-axis scale.
func WithScale(scale mgl32.Vec3) EntityBuilderOption {
	return func(e *Entity) {
		e.Scale = scale
	}
}

// WithRotationSpeed sets the rotation added per second, in radians.
func WithRotationSpeed(speed mgl32.Vec3) EntityBuilderOption {
	return func(e *Entity) {
		e.RotationSpeed = speed
	}
}
