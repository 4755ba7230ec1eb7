package constant_buffer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/renderertest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuffer(t *testing.T, options ...ConstantBufferBuilderOption) (ConstantBuffer, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.New()
	cb, err := NewConstantBuffer(backend, options...)
	require.NoError(t, err)
	return cb, backend
}

func TestDefaultsFromDevice(t *testing.T) {
	cb, backend := newTestBuffer(t)
	assert.Equal(t, 65536, cb.Capacity())
	assert.Equal(t, 256, cb.Alignment())

	buf := backend.Buffer(cb.Buffer())
	require.NotNil(t, buf)
	assert.Equal(t, renderer.BufferUsageUniform, buf.Usage)
	assert.Len(t, buf.Data, 65536)
}

func TestPushAdvancesByValueSize(t *testing.T) {
	cb, _ := newTestBuffer(t)
	require.NoError(t, cb.BeginFrame())
	defer cb.EndFrame()

	tests := []struct {
		name string
		push func() int
		size int
	}{
		{"uint32", func() int { return cb.PushUint32(7) }, 4},
		{"float32", func() int { return cb.PushFloat32(1.5) }, 4},
		{"vec3", func() int { return cb.PushVec3(mgl32.Vec3{1, 2, 3}) }, 12},
		{"vec4", func() int { return cb.PushVec4(mgl32.Vec4{1, 2, 3, 4}) }, 16},
		{"mat4", func() int { return cb.PushMat4(mgl32.Ident4()) }, 64},
		{"bytes", func() int { return cb.PushBytes([]byte{1, 2, 3}) }, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := cb.Head()
			offset := tt.push()
			assert.Equal(t, before, offset)
			assert.Equal(t, before+tt.size, cb.Head())
		})
	}
}

func TestAlignTo(t *testing.T) {
	cb, _ := newTestBuffer(t)
	require.NoError(t, cb.BeginFrame())
	defer cb.EndFrame()

	assert.Equal(t, 0, cb.AlignTo(256))
	cb.PushUint32(1)
	assert.Equal(t, 16, cb.AlignTo(16))
	assert.Equal(t, 16, cb.AlignTo(16))
	assert.Equal(t, 256, cb.AlignTo(256))
	cb.PushBytes(make([]byte, 33))
	assert.Equal(t, 512, cb.AlignTo(256))
}

func TestBeginFrameResetsHead(t *testing.T) {
	cb, backend := newTestBuffer(t)
	require.NoError(t, cb.BeginFrame())
	cb.PushMat4(mgl32.Ident4())
	cb.EndFrame()
	assert.False(t, cb.InFrame())

	require.NoError(t, cb.BeginFrame())
	assert.Equal(t, 0, cb.Head())
	cb.EndFrame()

	buf := backend.Buffer(cb.Buffer())
	assert.Equal(t, 2, buf.MapCount)
	assert.False(t, buf.Mapped)
}

func TestWrittenBytesAreLittleEndian(t *testing.T) {
	cb, backend := newTestBuffer(t)
	require.NoError(t, cb.BeginFrame())
	cb.PushVec3(mgl32.Vec3{1, 2, 3})
	cb.PushUint32(2)
	cb.EndFrame()

	data := backend.Buffer(cb.Buffer()).Data
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[0:])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(data[8:])))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[12:]))
}

func TestCapacityOverflowPanics(t *testing.T) {
	cb, _ := newTestBuffer(t, WithCapacity(64))
	require.NoError(t, cb.BeginFrame())
	defer cb.EndFrame()

	cb.PushMat4(mgl32.Ident4())
	assert.Equal(t, 64, cb.Head())
	assert.Panics(t, func() { cb.PushUint32(1) })
	assert.Panics(t, func() { cb.AlignTo(128) })
}

func TestOverflowByPartialValuePanics(t *testing.T) {
	cb, _ := newTestBuffer(t, WithCapacity(70))
	require.NoError(t, cb.BeginFrame())
	defer cb.EndFrame()

	cb.PushMat4(mgl32.Ident4())
	assert.Panics(t, func() { cb.PushVec3(mgl32.Vec3{}) })
	assert.Equal(t, 64, cb.Head())
}

func TestWritesOutsideFramePanic(t *testing.T) {
	cb, _ := newTestBuffer(t)
	assert.Panics(t, func() { cb.PushUint32(1) })
	assert.Panics(t, func() { cb.AlignTo(16) })

	require.NoError(t, cb.BeginFrame())
	cb.EndFrame()
	assert.Panics(t, func() { cb.PushFloat32(1) })
}

func TestDoubleBeginFails(t *testing.T) {
	cb, _ := newTestBuffer(t)
	require.NoError(t, cb.BeginFrame())
	defer cb.EndFrame()
	assert.Error(t, cb.BeginFrame())
}

func TestWithAlignment(t *testing.T) {
	cb, _ := newTestBuffer(t, WithAlignment(64))
	assert.Equal(t, 64, cb.Alignment())
}
