package material

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
)

// MaterialBuilderOption is a functional option for configuring a Material via NewMaterial.
type MaterialBuilderOption func(*Material, resource.Fallbacks)

// WithName sets the material name.
//
// Parameters:
//   - name: the material identifier
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *Material, _ resource.Fallbacks) {
		m.Name = name
	}
}

// WithAlbedoColor sets the albedo tint.
func WithAlbedoColor(c common.Color) MaterialBuilderOption {
	return func(m *Material, _ resource.Fallbacks) {
		m.AlbedoColor = c
	}
}

// WithEmissiveColor sets the emissive color.
func WithEmissiveColor(c common.Color) MaterialBuilderOption {
	return func(m *Material, _ resource.Fallbacks) {
		m.EmissiveColor = c
	}
}

// WithSmoothness sets the specular smoothness.
func WithSmoothness(smoothness float32) MaterialBuilderOption {
	return func(m *Material, _ resource.Fallbacks) {
		m.Smoothness = smoothness
	}
}

// WithAlbedo sets the albedo texture. resource.TextureNotFound selects the error texture.
//
// Parameters:
//   - id: the texture id returned by the registry
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture to a material
func WithAlbedo(id resource.TextureID) MaterialBuilderOption {
	return func(m *Material, fb resource.Fallbacks) {
		m.Albedo = orError(id, fb)
	}
}

// WithEmissive sets the emissive texture. resource.TextureNotFound selects the error texture.
func WithEmissive(id resource.TextureID) MaterialBuilderOption {
	return func(m *Material, fb resource.Fallbacks) {
		m.Emissive = orError(id, fb)
	}
}

// WithSpecular sets the specular texture. resource.TextureNotFound selects the error texture.
func WithSpecular(id resource.TextureID) MaterialBuilderOption {
	return func(m *Material, fb resource.Fallbacks) {
		m.Specular = orError(id, fb)
	}
}

// WithNormals sets the normal map. resource.TextureNotFound selects the error texture.
func WithNormals(id resource.TextureID) MaterialBuilderOption {
	return func(m *Material, fb resource.Fallbacks) {
		m.Normals = orError(id, fb)
	}
}

// WithBump sets the bump map. resource.TextureNotFound selects the error texture.
func WithBump(id resource.TextureID) MaterialBuilderOption {
	return func(m *Material, fb resource.Fallbacks) {
		m.Bump = orError(id, fb)
	}
}

func orError(id resource.TextureID, fb resource.Fallbacks) resource.TextureID {
	if id == resource.TextureNotFound {
		return fb.Error
	}
	return id
}
