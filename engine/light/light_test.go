package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/renderertest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint)
	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction())
	assert.True(t, l.Enabled())
}

func TestDirectionIsNormalized(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(mgl32.Vec3{0, 0, -4}))
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, l.Direction())

	l.SetDirection(mgl32.Vec3{3, 4, 0})
	assert.True(t, l.Direction().ApproxEqual(mgl32.Vec3{0.6, 0.8, 0}))
}

func TestGlobalBlockSize(t *testing.T) {
	assert.Equal(t, 16, GlobalBlockSize(0))
	assert.Equal(t, 112, GlobalBlockSize(2))
}

func TestWriteGlobalBlock(t *testing.T) {
	backend := renderertest.New()
	cb, err := constant_buffer.NewConstantBuffer(backend)
	require.NoError(t, err)
	require.NoError(t, cb.BeginFrame())

	lights := []Light{
		NewLight(LightTypeDirectional, WithColor(mgl32.Vec3{1, 0.5, 0.25}), WithDirection(mgl32.Vec3{0, -1, 0})),
		NewLight(LightTypePoint, WithEnabled(false)),
		NewLight(LightTypePoint, WithColor(mgl32.Vec3{0, 1, 0}), WithPosition(mgl32.Vec3{2, 3, 4})),
	}
	offset, size := WriteGlobalBlock(cb, mgl32.Vec3{7, 8, 9}, lights)
	cb.EndFrame()

	assert.Equal(t, 0, offset)
	assert.Equal(t, 112, size)

	data := backend.Buffer(cb.Buffer()).Data
	assert.Equal(t, float32(7), f32(data, 0))
	assert.Equal(t, float32(9), f32(data, 8))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[12:]))

	// first light
	assert.Equal(t, float32(0.5), f32(data, 16+4))
	assert.Equal(t, float32(-1), f32(data, 16+16+4))
	assert.Equal(t, uint32(LightTypeDirectional), binary.LittleEndian.Uint32(data[16+44:]))

	// second enabled light
	assert.Equal(t, float32(1), f32(data, 64+4))
	assert.Equal(t, float32(2), f32(data, 64+32))
	assert.Equal(t, float32(4), f32(data, 64+40))
	assert.Equal(t, uint32(LightTypePoint), binary.LittleEndian.Uint32(data[64+44:]))
}

func TestWriteGlobalBlockAlignsStart(t *testing.T) {
	backend := renderertest.New()
	cb, err := constant_buffer.NewConstantBuffer(backend)
	require.NoError(t, err)
	require.NoError(t, cb.BeginFrame())
	cb.PushUint32(1)

	offset, size := WriteGlobalBlock(cb, mgl32.Vec3{}, nil)
	cb.EndFrame()

	assert.Equal(t, 256, offset)
	assert.Equal(t, 16, size)
}
