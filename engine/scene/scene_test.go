package scene

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/camera"
	"github.com/Carmen-Shannon/oxy-forward/engine/entity"
	"github.com/Carmen-Shannon/oxy-forward/engine/light"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOBJ = `mtllib cube.mtl
o body
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
usemtl blue
f 1/1/1 3/3/1 4/4/1
`

const testMTL = `newmtl red
Kd 1 0 0
newmtl blue
Kd 0 0 1
`

type captureLog struct {
	lines []string
}

func (c *captureLog) Info(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

var testViewport = common.Viewport{Width: 800, Height: 600}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 255})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

type fixture struct {
	dir     string
	backend *renderertest.Backend
	log     *captureLog
	scene   Scene
}

// newFixture writes a shader, a quad texture and a two-material model to a temp dir and builds a scene
// over them. The model is only loaded when withModel is set.
func newFixture(t *testing.T, withModel bool, options ...SceneBuilderOption) *fixture {
	t.Helper()
	dir := t.TempDir()
	shader := writeFile(t, dir, "textured.glsl", "void main() {}\n")
	obj := writeFile(t, dir, "cube.obj", testOBJ)
	writeFile(t, dir, "cube.mtl", testMTL)
	quad := writePNG(t, dir, "dice.png")

	f := &fixture{dir: dir, backend: renderertest.New(), log: &captureLog{}}
	base := []SceneBuilderOption{
		WithInfoLog(f.log),
		WithShaderPath(shader),
		WithQuadTexture(quad),
		WithHotReloadMode(resource.HotReloadModePoll),
	}
	if withModel {
		base = append(base, WithModelPath(obj))
	}
	f.scene = NewScene("test", camera.NewCamera(), f.backend, append(base, options...)...)
	return f
}

func TestNewSceneRequiresCameraAndBackend(t *testing.T) {
	assert.Panics(t, func() { NewScene("x", nil, renderertest.New()) })
	assert.Panics(t, func() { NewScene("x", camera.NewCamera(), nil) })
}

func TestInitLoadsResourcesAndReportsDevice(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.scene.Init())

	require.GreaterOrEqual(t, len(f.log.lines), 4)
	assert.Equal(t, "Version: 4.3 fake", f.log.lines[0])
	assert.Equal(t, "Renderer: fake", f.log.lines[1])
	assert.Equal(t, "Vendor: renderertest", f.log.lines[2])
	assert.Equal(t, "Shading language: 4.30 fake", f.log.lines[3])

	assert.Equal(t, 2, f.scene.Registry().ProgramCount())
	// four fallbacks and the quad texture
	assert.Equal(t, 5, f.scene.Registry().TextureCount())
	assert.Empty(t, f.scene.Entities())

	assert.Error(t, f.scene.Init())
}

func TestInitMissingQuadTextureUsesErrorTexture(t *testing.T) {
	f := newFixture(t, false, WithQuadTexture("missing.png"), WithMode(ModeTexturedQuad))
	require.NoError(t, f.scene.Init())
	require.NoError(t, f.scene.Render(testViewport))

	require.Len(t, f.backend.Draws, 1)
	want := f.scene.Registry().Texture(f.scene.Fallbacks().Error).Handle
	assert.Equal(t, want, f.backend.Draws[0].Texture)
}

func TestUpdateAndRenderRequireInit(t *testing.T) {
	f := newFixture(t, false)
	assert.Error(t, f.scene.Update(0.016, testViewport))
	assert.Error(t, f.scene.Render(testViewport))
}

func TestRenderTexturedQuad(t *testing.T) {
	f := newFixture(t, false, WithMode(ModeTexturedQuad))
	require.NoError(t, f.scene.Init())
	require.NoError(t, f.scene.Update(0.016, testViewport))
	require.NoError(t, f.scene.Render(testViewport))

	require.Len(t, f.backend.Draws, 1)
	d := f.backend.Draws[0]
	assert.Equal(t, 6, d.Count)
	assert.Equal(t, 0, d.ByteOffset)
	assert.Equal(t, renderer.BlendModeAlpha, d.Blend)
	assert.NotZero(t, d.Binding)
	assert.NotZero(t, d.Texture)
	assert.Equal(t, "BeginFrame", f.backend.Calls[0])
	assert.Equal(t, "EndFrame", f.backend.Calls[len(f.backend.Calls)-1])
	assert.Equal(t, []string{"textured_quad"}, f.backend.DebugGroups)
	assert.Zero(t, f.backend.Presented)
}

func TestRenderTexturedMeshPerSubmesh(t *testing.T) {
	f := newFixture(t, true,
		WithMode(ModeTexturedMesh),
		WithEntity(entity.WithName("left"), entity.WithPosition(mgl32.Vec3{-2, 0, 0})),
		WithEntity(entity.WithName("right"), entity.WithPosition(mgl32.Vec3{2, 0, 0})),
		WithLights(light.NewLight(light.LightTypeDirectional)),
	)
	require.NoError(t, f.scene.Init())
	require.Len(t, f.scene.Entities(), 2)

	require.NoError(t, f.scene.Update(0.016, testViewport))
	require.NoError(t, f.scene.Render(testViewport))

	// two entities, two submeshes each
	require.Len(t, f.backend.Draws, 4)
	globalOffset, globalSize := f.scene.GlobalRange()
	assert.Equal(t, light.GlobalBlockSize(1), globalSize)

	for i, d := range f.backend.Draws {
		e := f.scene.Entity(i / 2)
		assert.Equal(t, renderer.BlendModeOpaque, d.Blend)
		assert.Equal(t, globalOffset, d.Uniforms[light.GlobalBlockBinding].Offset)
		assert.Equal(t, globalSize, d.Uniforms[light.GlobalBlockBinding].Size)
		assert.Equal(t, e.LocalOffset, d.Uniforms[entity.LocalBlockBinding].Offset)
		assert.Equal(t, entity.LocalBlockSize, d.Uniforms[entity.LocalBlockBinding].Size)
		assert.Zero(t, e.LocalOffset%256)
	}
	assert.Equal(t, 6, f.backend.Draws[0].Count)
	assert.Equal(t, 3, f.backend.Draws[1].Count)
	assert.Equal(t, 24, f.backend.Draws[1].ByteOffset)

	white := f.scene.Registry().Texture(f.scene.Fallbacks().White).Handle
	assert.Equal(t, white, f.backend.Draws[0].Texture)
	assert.NotEqual(t, f.backend.Draws[0].Binding, f.backend.Draws[1].Binding)
	assert.Equal(t, f.backend.Draws[0].Binding, f.backend.Draws[2].Binding)
}

func TestToggleMode(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, ModeTexturedQuad, f.scene.Mode())
	f.scene.ToggleMode()
	assert.Equal(t, ModeTexturedMesh, f.scene.Mode())
	f.scene.ToggleMode()
	assert.Equal(t, ModeTexturedQuad, f.scene.Mode())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{"quad", ModeTexturedQuad, false},
		{"textured_quad", ModeTexturedQuad, false},
		{"", ModeTexturedQuad, false},
		{"mesh", ModeTexturedMesh, false},
		{"wireframe", ModeTexturedQuad, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestUpdateReloadsChangedShader(t *testing.T) {
	f := newFixture(t, false, WithMode(ModeTexturedQuad))
	require.NoError(t, f.scene.Init())
	require.NoError(t, f.scene.Render(testViewport))
	before := f.backend.Draws[0]

	path := filepath.Join(f.dir, "textured.glsl")
	require.NoError(t, os.WriteFile(path, []byte("void main() { }\n"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	f.backend.ResetFrameLog()
	require.NoError(t, f.scene.Update(0.016, testViewport))
	require.NoError(t, f.scene.Render(testViewport))

	after := f.backend.Draws[0]
	assert.NotEqual(t, before.Program, after.Program)
	assert.NotEqual(t, before.Binding, after.Binding)
	assert.True(t, f.backend.Bindings[before.Binding-1].Deleted)
	assert.Equal(t, QuadProgramName, f.backend.Programs[after.Program-1].Name)
}

func TestReleaseDeletesResources(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.scene.Init())
	f.scene.Release()
	for _, p := range f.backend.Programs {
		assert.True(t, p.Deleted)
	}
}
