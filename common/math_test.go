package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		n, alignment, want int
	}{
		{0, 256, 0},
		{1, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{12, 16, 16},
		{7, 1, 7},
		{7, 0, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Align(tt.n, tt.alignment), "Align(%d, %d)", tt.n, tt.alignment)
	}
}

func TestPerspectiveZODepthRange(t *testing.T) {
	proj := PerspectiveZO(mgl32.DegToRad(60), 1.5, 0.1, 100)

	near := proj.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)
}

func TestViewportAspect(t *testing.T) {
	assert.InDelta(t, 16.0/9.0, Viewport{Width: 1920, Height: 1080}.Aspect(), 1e-6)
	assert.Equal(t, float32(1), Viewport{Width: 10}.Aspect())
}
