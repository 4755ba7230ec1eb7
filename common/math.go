package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Align rounds n up to the next multiple of alignment. An alignment of 0 or 1 returns n unchanged.
//
// Parameters:
//   - n: the value to align
//   - alignment: the alignment, any positive integer
//
// Returns:
//   - int: the smallest multiple of alignment that is >= n
func Align(n, alignment int) int {
	if alignment <= 1 {
		return n
	}
	if rem := n % alignment; rem != 0 {
		return n + alignment - rem
	}
	return n
}

// PerspectiveZO creates a right-handed perspective projection with clip-space depth in [0, 1],
// the WebGPU convention. mgl32.Perspective covers the OpenGL [-1, 1] convention.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}
