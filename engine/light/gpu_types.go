package light

import (
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/constant_buffer"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// GlobalHeaderSize is the size of {vec3 cameraPosition; uint lightCount;}.
	GlobalHeaderSize = 16

	// GPULightSize is the std140 size of one light record:
	// vec3 color @0, vec3 direction @16, vec3 position @32, uint type @44.
	GPULightSize = 48

	// GlobalBlockBinding is the uniform block binding of the global block.
	GlobalBlockBinding = 0
)

// GlobalBlockSize returns the size of a global block holding n lights.
//
// Parameters:
//   - n: the number of lights
//
// Returns:
//   - int: the block size in bytes
func GlobalBlockSize(n int) int {
	return GlobalHeaderSize + n*GPULightSize
}

// WriteGlobalBlock writes the per-frame global block: the camera position, the number of enabled lights,
// then one 16-byte aligned record per enabled light. The block starts at the next offset aligned to the
// buffer's uniform offset alignment.
//
// Parameters:
//   - cb: the constant buffer, inside a frame
//   - cameraPosition: the world-space eye position
//   - lights: the scene lights; disabled lights are skipped
//
// Returns:
//   - offset: the block's start offset in the buffer
//   - size: the block's size in bytes
func WriteGlobalBlock(cb constant_buffer.ConstantBuffer, cameraPosition mgl32.Vec3, lights []Light) (offset, size int) {
	cb.AlignTo(cb.Alignment())
	offset = cb.Head()

	enabled := 0
	for _, l := range lights {
		if l.Enabled() {
			enabled++
		}
	}

	cb.PushVec3(cameraPosition)
	cb.PushUint32(uint32(enabled))

	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		cb.AlignTo(16)
		cb.PushVec3(l.Color())
		cb.AlignTo(16)
		cb.PushVec3(l.Direction())
		cb.AlignTo(16)
		cb.PushVec3(l.Position())
		cb.PushUint32(uint32(l.Type()))
	}

	return offset, cb.Head() - offset
}
