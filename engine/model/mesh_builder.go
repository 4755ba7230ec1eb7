package model

import "github.com/Carmen-Shannon/oxy-forward/engine/renderer"

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*Mesh)

// WithName sets the mesh name used in labels and diagnostics.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *Mesh) {
		m.Name = name
	}
}

// WithIndexFormat sets the index element type. Defaults to renderer.IndexFormatUint32.
//
// Parameters:
//   - format: the index format
//
// Returns:
//   - MeshBuilderOption: a function that applies the index format to a mesh
func WithIndexFormat(format renderer.IndexFormat) MeshBuilderOption {
	return func(m *Mesh) {
		m.IndexFormat = format
	}
}

// WithSubmeshes sets the submesh ranges.
//
// Parameters:
//   - submeshes: the submeshes, in draw order
//
// Returns:
//   - MeshBuilderOption: a function that applies the submeshes to a mesh
func WithSubmeshes(submeshes ...Submesh) MeshBuilderOption {
	return func(m *Mesh) {
		m.Submeshes = append([]Submesh(nil), submeshes...)
	}
}
