package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadMesh(t *testing.T, backend *renderertest.Backend, submeshes ...Submesh) *Mesh {
	t.Helper()
	vertices := make([]byte, 4096)
	indices := make([]byte, 1024)
	m, err := NewMesh(backend, vertices, indices,
		WithName("quads"),
		WithIndexFormat(renderer.IndexFormatUint16),
		WithSubmeshes(submeshes...),
	)
	require.NoError(t, err)
	return m
}

func program(handle renderer.ProgramHandle, inputs ...renderer.VertexInput) *resource.Program {
	return &resource.Program{Handle: handle, Name: "QUAD", VertexInputs: inputs}
}

func TestGetVAOIsCached(t *testing.T) {
	backend := renderertest.New()
	mesh := quadMesh(t, backend, Submesh{IndexCount: 6, Layout: QuadLayout})
	p := program(1, renderer.VertexInput{Location: 0, ComponentCount: 3})

	first := GetVAO(backend, mesh, 0, 0, p)
	second := GetVAO(backend, mesh, 0, 0, p)

	assert.Equal(t, first, second)
	assert.Len(t, backend.Bindings, 1)
	assert.Len(t, mesh.Submeshes[0].VAOs(), 1)
}

func TestGetVAOPerProgram(t *testing.T) {
	backend := renderertest.New()
	mesh := quadMesh(t, backend, Submesh{IndexCount: 6, Layout: QuadLayout})
	p := program(1, renderer.VertexInput{Location: 0, ComponentCount: 3})

	a := GetVAO(backend, mesh, 0, 0, p)
	b := GetVAO(backend, mesh, 0, 1, p)

	assert.NotEqual(t, a, b)
	assert.Len(t, mesh.Submeshes[0].VAOs(), 2)
}

func TestGetVAOAppliesVertexOffset(t *testing.T) {
	backend := renderertest.New()
	mesh := quadMesh(t, backend,
		Submesh{IndexCount: 6, Layout: QuadLayout},
		Submesh{VertexOffset: 1024, IndexOffset: 12, IndexCount: 6, Layout: QuadLayout},
	)
	p := program(3,
		renderer.VertexInput{Location: 0, ComponentCount: 3},
		renderer.VertexInput{Location: 1, ComponentCount: 2},
	)

	h := GetVAO(backend, mesh, 1, 0, p)

	desc := backend.Bindings[h-1].Desc
	assert.Equal(t, renderer.ProgramHandle(3), desc.Program)
	assert.Equal(t, mesh.VertexBuffer, desc.VertexBuffer)
	assert.Equal(t, mesh.IndexBuffer, desc.IndexBuffer)
	assert.Equal(t, renderer.IndexFormatUint16, desc.IndexFormat)
	assert.Equal(t, 20, desc.Stride)
	assert.Equal(t, []renderer.AttributeBinding{
		{Location: 0, ComponentCount: 3, Offset: 1024},
		{Location: 1, ComponentCount: 2, Offset: 1036},
	}, desc.Attributes)
}

func TestGetVAOPanicsOnMissingAttribute(t *testing.T) {
	backend := renderertest.New()
	mesh := quadMesh(t, backend, Submesh{IndexCount: 6, Layout: QuadLayout})
	p := program(1, renderer.VertexInput{Location: 2, ComponentCount: 3})

	assert.PanicsWithValue(t,
		`program "QUAD" input at location 2 has no attribute in mesh "quads" submesh 0`,
		func() { GetVAO(backend, mesh, 0, 0, p) })
}

func TestGetVAORebuildsAfterReload(t *testing.T) {
	backend := renderertest.New()
	mesh := quadMesh(t, backend, Submesh{IndexCount: 6, Layout: QuadLayout})
	p := program(1, renderer.VertexInput{Location: 0, ComponentCount: 3})

	old := GetVAO(backend, mesh, 0, 0, p)
	p.Handle = 2
	p.Generation++
	rebuilt := GetVAO(backend, mesh, 0, 0, p)

	assert.NotEqual(t, old, rebuilt)
	assert.True(t, backend.Bindings[old-1].Deleted)
	assert.Equal(t, renderer.ProgramHandle(2), backend.Bindings[rebuilt-1].Desc.Program)
	require.Len(t, mesh.Submeshes[0].VAOs(), 1)
	assert.Equal(t, uint32(1), mesh.Submeshes[0].VAOs()[0].Generation)
}

func TestGetVAORetriesFailedBinding(t *testing.T) {
	backend := renderertest.New()
	mesh := quadMesh(t, backend, Submesh{IndexCount: 6, Layout: QuadLayout})
	p := program(1, renderer.VertexInput{Location: 0, ComponentCount: 3})
	vertexBuffer := mesh.VertexBuffer

	mesh.VertexBuffer = 999
	assert.Zero(t, GetVAO(backend, mesh, 0, 0, p))
	assert.Empty(t, mesh.Submeshes[0].VAOs())

	mesh.VertexBuffer = vertexBuffer
	binding := GetVAO(backend, mesh, 0, 0, p)
	assert.NotZero(t, binding)
	require.Len(t, mesh.Submeshes[0].VAOs(), 1)

	// a failed rebuild leaves the stale binding in place for the next attempt
	p.Generation++
	mesh.VertexBuffer = 999
	assert.Zero(t, GetVAO(backend, mesh, 0, 0, p))
	assert.False(t, backend.Bindings[binding-1].Deleted)
	assert.Equal(t, binding, mesh.Submeshes[0].VAOs()[0].Binding)

	mesh.VertexBuffer = vertexBuffer
	rebuilt := GetVAO(backend, mesh, 0, 0, p)
	assert.NotZero(t, rebuilt)
	assert.True(t, backend.Bindings[binding-1].Deleted)
	require.Len(t, mesh.Submeshes[0].VAOs(), 1)
	assert.Equal(t, rebuilt, mesh.Submeshes[0].VAOs()[0].Binding)
}

func TestNewMeshDefaultsToSingleSubmesh(t *testing.T) {
	backend := renderertest.New()
	v := GPUVertex{Position: [3]float32{1, 2, 3}}
	vertices := MarshalVertices([]*GPUVertex{&v, &v, &v})
	indices := MarshalIndices32([]uint32{0, 1, 2})

	mesh, err := NewMesh(backend, vertices, indices)
	require.NoError(t, err)

	require.Len(t, mesh.Submeshes, 1)
	assert.Equal(t, 3, mesh.Submeshes[0].IndexCount)
	assert.Equal(t, MeshLayout, mesh.Submeshes[0].Layout)
	assert.Equal(t, renderer.BufferUsageVertex, backend.Buffer(mesh.VertexBuffer).Usage)
	assert.Equal(t, vertices, backend.Buffer(mesh.VertexBuffer).Data)
	assert.Equal(t, renderer.BufferUsageIndex, backend.Buffer(mesh.IndexBuffer).Usage)
}

func TestNewMeshRejectsOutOfRangeSubmesh(t *testing.T) {
	backend := renderertest.New()
	_, err := NewMesh(backend, make([]byte, 64), make([]byte, 12),
		WithSubmeshes(Submesh{IndexOffset: 8, IndexCount: 2, Layout: MeshLayout}))
	assert.Error(t, err)
	assert.Empty(t, backend.Buffers)
}

func TestRelease(t *testing.T) {
	backend := renderertest.New()
	mesh := quadMesh(t, backend, Submesh{IndexCount: 6, Layout: QuadLayout})
	h := GetVAO(backend, mesh, 0, 0, program(1))

	mesh.Release(backend)

	assert.True(t, backend.Bindings[h-1].Deleted)
	assert.Empty(t, mesh.Submeshes[0].VAOs())
}

func TestVertexSizes(t *testing.T) {
	var v GPUVertex
	var q GPUQuadVertex
	assert.Equal(t, MeshLayout.Stride, v.Size())
	assert.Len(t, v.Marshal(), MeshLayout.Stride)
	assert.Equal(t, QuadLayout.Stride, q.Size())
	assert.Len(t, q.Marshal(), QuadLayout.Stride)
}
