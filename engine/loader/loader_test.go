package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOBJ = `mtllib scene.mtl
o first
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl red
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl textured
f 1/1/1 3/3/1 4/4/1
o second
v 0 0 1
v 1 0 1
v 0 1 1
usemtl red
f 5 6 7
`

const testMTL = `newmtl red
Kd 1 0 0
Ns 128
newmtl textured
Kd 1 1 1
map_Kd tex.png
`

func writeTexture(t *testing.T, dir string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	f, err := os.Create(filepath.Join(dir, "tex.png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newTestLoader(t *testing.T) (Loader, *renderertest.Backend, resource.Registry, resource.Fallbacks) {
	t.Helper()
	backend := renderertest.New()
	registry := resource.NewRegistry(backend)
	fallbacks := registry.LoadFallbacks()
	return NewLoader(BackendTypeOBJ, WithRenderer(backend), WithRegistry(registry, fallbacks)), backend, registry, fallbacks
}

func TestLoadReaderSubmeshOffsets(t *testing.T) {
	dir := t.TempDir()
	writeTexture(t, dir)
	l, backend, registry, fallbacks := newTestLoader(t)

	m, err := l.LoadReader("scene", strings.NewReader(testOBJ), strings.NewReader(testMTL), dir)
	require.NoError(t, err)

	require.Len(t, m.Mesh.Submeshes, 3)
	assert.Equal(t, renderer.IndexFormatUint32, m.Mesh.IndexFormat)

	first, second, third := m.Mesh.Submeshes[0], m.Mesh.Submeshes[1], m.Mesh.Submeshes[2]
	assert.Equal(t, 0, first.VertexOffset)
	assert.Equal(t, 0, first.IndexOffset)
	assert.Equal(t, 6, first.IndexCount)
	assert.Equal(t, 4*32, second.VertexOffset)
	assert.Equal(t, 6*4, second.IndexOffset)
	assert.Equal(t, 3, second.IndexCount)
	assert.Equal(t, 7*32, third.VertexOffset)
	assert.Equal(t, 9*4, third.IndexOffset)
	assert.Equal(t, 3, third.IndexCount)

	assert.Len(t, backend.Buffer(m.Mesh.VertexBuffer).Data, 10*32)
	assert.Len(t, backend.Buffer(m.Mesh.IndexBuffer).Data, 12*4)

	require.Len(t, m.Materials, 3)
	assert.Equal(t, "red", m.Materials[0].Name)
	assert.Equal(t, common.Color{R: 1, G: 0, B: 0, A: 1}, m.Materials[0].AlbedoColor)
	assert.Equal(t, float32(0.5), m.Materials[0].Smoothness)
	assert.Equal(t, fallbacks.White, m.Materials[0].Albedo)
	assert.Equal(t, fallbacks.Normal, m.Materials[0].Normals)
	assert.Equal(t, "red", m.Materials[2].Name)

	tex := registry.Texture(m.Materials[1].Albedo)
	require.NotNil(t, tex)
	assert.Equal(t, filepath.Join(dir, "tex.png"), tex.Path)
}

func TestImportIndicesAreSubmeshRelative(t *testing.T) {
	b := newOBJLoaderBackend()
	imported, err := b.LoadReader("scene", strings.NewReader(testOBJ), strings.NewReader(testMTL), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 1, 2, 0, 1, 2}, imported.Indices)
	assert.Len(t, imported.Materials, 2)
	assert.Equal(t, []int{0, 1, 0}, []int{imported.Submeshes[0].Material, imported.Submeshes[1].Material, imported.Submeshes[2].Material})

	// faces without normals get the flat face normal
	flat := imported.Vertices[7].Normal
	assert.InDelta(t, 0, flat[0], 1e-6)
	assert.InDelta(t, 0, flat[1], 1e-6)
	assert.InDelta(t, 1, flat[2], 1e-6)

	assert.Equal(t, [2]float32{1, 1}, imported.Vertices[2].TexCoord)
}

func TestMissingTextureUsesErrorFallback(t *testing.T) {
	l, _, _, fallbacks := newTestLoader(t)
	mtl := "newmtl broken\nKd 1 1 1\nmap_Kd missing.png\n"
	obj := "o tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl broken\nf 1 2 3\n"

	m, err := l.LoadReader("broken", strings.NewReader(obj), strings.NewReader(mtl), t.TempDir())
	require.NoError(t, err)

	require.Len(t, m.Materials, 1)
	assert.Equal(t, fallbacks.Error, m.Materials[0].Albedo)
}

func TestLoadFromDiskIsCached(t *testing.T) {
	dir := t.TempDir()
	writeTexture(t, dir)
	path := filepath.Join(dir, "scene.obj")
	require.NoError(t, os.WriteFile(path, []byte(testOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(testMTL), 0o644))
	l, backend, _, _ := newTestLoader(t)

	a, err := l.Load(path)
	require.NoError(t, err)
	b, err := l.Load(path)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, "scene", a.Name)
	assert.Len(t, a.Mesh.Submeshes, 3)
	assert.Len(t, backend.Buffers, 2)
	assert.Same(t, a, l.Get(path))
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	l, _, _, _ := newTestLoader(t)
	_, err := l.Import("model.gltf")
	assert.Error(t, err)
}
