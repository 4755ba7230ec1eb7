package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
	"github.com/stretchr/testify/assert"
)

var fallbacks = resource.Fallbacks{White: 0, Black: 1, Normal: 2, Error: 3}

func TestNewMaterialUsesFallbacks(t *testing.T) {
	m := NewMaterial(fallbacks, WithName("plain"))

	assert.Equal(t, "plain", m.Name)
	assert.Equal(t, common.Color{R: 1, G: 1, B: 1, A: 1}, m.AlbedoColor)
	assert.Equal(t, fallbacks.White, m.Albedo)
	assert.Equal(t, fallbacks.White, m.Specular)
	assert.Equal(t, fallbacks.Black, m.Emissive)
	assert.Equal(t, fallbacks.Black, m.Bump)
	assert.Equal(t, fallbacks.Normal, m.Normals)
}

func TestNewMaterialTextures(t *testing.T) {
	m := NewMaterial(fallbacks,
		WithAlbedo(7),
		WithNormals(resource.TextureNotFound),
		WithSmoothness(0.5),
		WithEmissiveColor(common.Color{R: 1}),
	)

	assert.Equal(t, resource.TextureID(7), m.Albedo)
	assert.Equal(t, fallbacks.Error, m.Normals)
	assert.Equal(t, float32(0.5), m.Smoothness)
	assert.Equal(t, common.Color{R: 1}, m.EmissiveColor)
}
