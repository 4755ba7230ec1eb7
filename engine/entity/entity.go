package entity

import (
	"github.com/Carmen-Shannon/oxy-forward/engine/model"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/constant_buffer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// LocalBlockSize is the size of {mat4 world; mat4 worldViewProjection;}.
	LocalBlockSize = 128

	// LocalBlockBinding is the uniform block binding of the local block.
	LocalBlockBinding = 1
)

// Entity is a model instance placed in the world.
// World is derived from Position, Rotation and Scale by UpdateWorld; LocalOffset and LocalSize locate the
// entity's local block in the current frame's constant buffer.
type Entity struct {
	Name  string
	Model model.ModelID

	Position mgl32.Vec3
	// Rotation holds Euler angles in radians, applied in Y, X, Z order.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	// RotationSpeed is added to Rotation every second.
	RotationSpeed mgl32.Vec3

	World mgl32.Mat4

	LocalOffset int
	LocalSize   int
}

// NewEntity creates an entity of the given model at the origin with unit scale.
//
// Parameters:
//   - modelID: the model to draw
//   - options: functional options to configure the entity
//
// Returns:
//   - Entity: the entity, with World already computed
func NewEntity(modelID model.ModelID, options ...EntityBuilderOption) Entity {
	e := &Entity{
		Model: modelID,
		Scale: mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(e)
	}
	e.UpdateWorld(0)
	return *e
}

// UpdateWorld advances the rotation by dt seconds of RotationSpeed and recomputes World.
//
// Parameters:
//   - dt: elapsed seconds since the last update
func (e *Entity) UpdateWorld(dt float32) {
	e.Rotation = e.Rotation.Add(e.RotationSpeed.Mul(dt))

	rotation := mgl32.HomogRotate3DY(e.Rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(e.Rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(e.Rotation.Z()))

	e.World = mgl32.Translate3D(e.Position.X(), e.Position.Y(), e.Position.Z()).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(e.Scale.X(), e.Scale.Y(), e.Scale.Z()))
}

// WriteLocalBlock aligns the constant buffer to its uniform offset alignment and writes the entity's
// local block: the world matrix followed by world * view * projection. The block's offset and size are
// recorded on the entity.
//
// Parameters:
//   - cb: the constant buffer, inside a frame
//   - viewProjection: the camera's projection * view matrix
func (e *Entity) WriteLocalBlock(cb constant_buffer.ConstantBuffer, viewProjection mgl32.Mat4) {
	cb.AlignTo(cb.Alignment())
	e.LocalOffset = cb.PushMat4(e.World)
	cb.PushMat4(viewProjection.Mul4(e.World))
	e.LocalSize = cb.Head() - e.LocalOffset
}
