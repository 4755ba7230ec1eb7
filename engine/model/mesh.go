package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
)

// Mesh owns one vertex buffer and one index buffer shared by its submeshes.
type Mesh struct {
	Name         string
	VertexBuffer renderer.BufferHandle
	IndexBuffer  renderer.BufferHandle
	IndexFormat  renderer.IndexFormat
	Submeshes    []Submesh
}

// NewMesh uploads vertex and index data and returns a mesh whose submeshes index into it.
// Without WithSubmeshes the mesh has a single submesh covering every index, using MeshLayout.
//
// Parameters:
//   - backend: the renderer backend that creates the buffers
//   - vertexData: the interleaved vertex buffer contents
//   - indexData: the index buffer contents
//   - options: functional options to configure the mesh
//
// Returns:
//   - *Mesh: the uploaded mesh
//   - error: error if a buffer could not be created or a submesh lies outside the data
func NewMesh(backend renderer.RendererBackend, vertexData, indexData []byte, options ...MeshBuilderOption) (*Mesh, error) {
	m := &Mesh{IndexFormat: renderer.IndexFormatUint32}
	for _, opt := range options {
		opt(m)
	}
	if len(m.Submeshes) == 0 {
		m.Submeshes = []Submesh{{
			IndexCount: len(indexData) / m.IndexFormat.Size(),
			Layout:     MeshLayout,
		}}
	}

	for i, s := range m.Submeshes {
		if s.VertexOffset < 0 || s.VertexOffset > len(vertexData) {
			return nil, fmt.Errorf("mesh %q submesh %d: vertex offset %d outside %d bytes", m.Name, i, s.VertexOffset, len(vertexData))
		}
		if end := s.IndexOffset + s.IndexCount*m.IndexFormat.Size(); s.IndexOffset < 0 || end > len(indexData) {
			return nil, fmt.Errorf("mesh %q submesh %d: indices end at %d, outside %d bytes", m.Name, i, end, len(indexData))
		}
	}

	vb, err := backend.CreateBuffer(renderer.BufferUsageVertex, len(vertexData), vertexData)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for mesh %q: %w", m.Name, err)
	}
	ib, err := backend.CreateBuffer(renderer.BufferUsageIndex, len(indexData), indexData)
	if err != nil {
		return nil, fmt.Errorf("failed to create index buffer for mesh %q: %w", m.Name, err)
	}
	m.VertexBuffer = vb
	m.IndexBuffer = ib
	return m, nil
}

// Release deletes every cached vertex binding of the mesh.
func (m *Mesh) Release(backend renderer.RendererBackend) {
	for i := range m.Submeshes {
		for _, vao := range m.Submeshes[i].vaos {
			backend.DeleteVertexBinding(vao.Binding)
		}
		m.Submeshes[i].vaos = nil
	}
}
