package material

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
)

// MaterialID indexes a material in the scene's material collection.
type MaterialID uint32

// Material holds the surface parameters and texture ids used when drawing a submesh.
// Every texture id is valid: absent textures point at the registry's fallback textures.
type Material struct {
	Name string

	AlbedoColor   common.Color
	EmissiveColor common.Color
	Smoothness    float32

	Albedo   resource.TextureID
	Emissive resource.TextureID
	Specular resource.TextureID
	Normals  resource.TextureID
	Bump     resource.TextureID
}

// NewMaterial creates a white, non-emissive material whose textures are the fallbacks:
// albedo and specular are white, emissive and bump are black, normals are the flat normal.
//
// Parameters:
//   - fallbacks: the registry's fallback textures
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the configured material
func NewMaterial(fallbacks resource.Fallbacks, options ...MaterialBuilderOption) Material {
	m := &Material{
		AlbedoColor: common.Color{R: 1, G: 1, B: 1, A: 1},
		Albedo:      fallbacks.White,
		Emissive:    fallbacks.Black,
		Specular:    fallbacks.White,
		Normals:     fallbacks.Normal,
		Bump:        fallbacks.Black,
	}
	for _, opt := range options {
		opt(m, fallbacks)
	}
	return *m
}
