package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
mode = "textured_mesh"

[window]
title = "demo"
width = 800

[renderer]
backend = "wgpu"
debug_groups = true

[camera]
fov = 45.0

[assets]
model_path = "models/patrick.obj"

[hot_reload]
mode = "notify"

[[lights]]
type = "point"
color = [1.0, 0.0, 0.0]
position = [0.0, 5.0, 0.0]

[[entities]]
name = "left"
position = [-2.0, 0.0, 0.0]
scale = [1.0, 1.0, 1.0]
`

const yamlConfig = `
window:
  height: 600
renderer:
  clear_color: [0, 0, 0, 1]
entities:
  - name: spinner
    rotation_speed: [0, 1, 0]
`

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "textured_quad", cfg.Mode)
	assert.Equal(t, "opengl", cfg.Renderer.Backend)
	assert.Len(t, cfg.Lights, 2)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "oxy.toml", tomlConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "textured_mesh", cfg.Mode)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "wgpu", cfg.Renderer.Backend)
	assert.True(t, cfg.Renderer.DebugGroups)
	assert.Equal(t, float32(45), cfg.Camera.Fov)
	assert.Equal(t, float32(0.1), cfg.Camera.Near)
	assert.Equal(t, "notify", cfg.HotReload.Mode)

	require.Len(t, cfg.Lights, 1)
	assert.Equal(t, "point", cfg.Lights[0].Type)
	assert.Equal(t, [3]float32{0, 5, 0}, cfg.Lights[0].Position)

	require.Len(t, cfg.Entities, 1)
	assert.Equal(t, "left", cfg.Entities[0].Name)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "models/patrick.obj"), cfg.Assets.ModelPath)
	assert.Equal(t, "assets/shaders/textured.glsl", cfg.Assets.ShaderPath)
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "assets", "config", "oxy-forward.toml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Window, cfg.Window)
	assert.Len(t, cfg.Lights, 2)
	assert.Len(t, cfg.Entities, 3)
	assert.FileExists(t, cfg.Assets.ShaderPath)
	assert.FileExists(t, cfg.Assets.QuadTexture)
}

func TestLoadYAMLKeepsDefaultLights(t *testing.T) {
	cfg, err := Load(writeConfig(t, "oxy.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Renderer.ClearColor)
	assert.Len(t, cfg.Lights, 2)
	require.Len(t, cfg.Entities, 1)
	assert.Equal(t, [3]float32{0, 1, 0}, cfg.Entities[0].RotationSpeed)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Window, cfg.Window)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "oxy.json", "{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(writeConfig(t, "bad.toml", "[window]\nunknown_key = 1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "bad.yaml", "window:\n  width: -1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "bad.yml", "lights:\n  - type: spot\n"))
	assert.Error(t, err)
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	require.NoError(t, os.WriteFile(filepath.Join(home, "oxy.toml"), []byte("mode = \"textured_mesh\"\n"), 0o644))

	cfg, err := Load("~/oxy.toml")
	require.NoError(t, err)
	assert.Equal(t, "textured_mesh", cfg.Mode)
}
