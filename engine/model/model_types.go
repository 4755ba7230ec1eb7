package model

import (
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
)

// MeshID indexes a mesh in the scene's mesh collection.
type MeshID uint32

// ModelID indexes a model in the scene's model collection.
type ModelID uint32

// VertexAttribute describes one attribute inside an interleaved vertex.
type VertexAttribute struct {
	Location       uint32
	ComponentCount uint32

	// Offset is the attribute's byte offset inside one vertex.
	Offset int
}

// VertexBufferLayout describes the interleaved vertex format of a submesh.
type VertexBufferLayout struct {
	Stride     int
	Attributes []VertexAttribute
}

// Attribute returns the attribute bound to a location.
//
// Parameters:
//   - location: the shader input location
//
// Returns:
//   - VertexAttribute: the attribute
//   - bool: false if no attribute uses the location
func (l VertexBufferLayout) Attribute(location uint32) (VertexAttribute, bool) {
	for _, a := range l.Attributes {
		if a.Location == location {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

// MeshLayout is the layout of GPUVertex: position at 0, normal at 1, texture coordinate at 2.
var MeshLayout = VertexBufferLayout{
	Stride: 32,
	Attributes: []VertexAttribute{
		{Location: 0, ComponentCount: 3, Offset: 0},
		{Location: 1, ComponentCount: 3, Offset: 12},
		{Location: 2, ComponentCount: 2, Offset: 24},
	},
}

// QuadLayout is the layout of GPUQuadVertex: position at 0, texture coordinate at 1.
var QuadLayout = VertexBufferLayout{
	Stride: 20,
	Attributes: []VertexAttribute{
		{Location: 0, ComponentCount: 3, Offset: 0},
		{Location: 1, ComponentCount: 2, Offset: 12},
	},
}

// VAO is a vertex binding built for one program generation.
type VAO struct {
	Program    resource.ProgramID
	Generation uint32
	Binding    renderer.VertexBindingHandle
}

// Submesh is a range of a mesh's shared vertex and index buffers drawn with one material.
type Submesh struct {
	// VertexOffset is the byte offset of the submesh's first vertex in the vertex buffer.
	VertexOffset int
	// IndexOffset is the byte offset of the submesh's first index in the index buffer.
	IndexOffset int
	IndexCount  int
	Layout      VertexBufferLayout

	vaos []VAO
}

// VAOs returns the submesh's cached vertex bindings.
func (s *Submesh) VAOs() []VAO {
	return s.vaos
}
