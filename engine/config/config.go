package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// Config is the application configuration. Zero-valued fields keep their defaults when a file is loaded
// on top of Default().
type Config struct {
	Window    WindowConfig    `toml:"window" yaml:"window"`
	Renderer  RendererConfig  `toml:"renderer" yaml:"renderer"`
	Camera    CameraConfig    `toml:"camera" yaml:"camera"`
	Assets    AssetsConfig    `toml:"assets" yaml:"assets"`
	HotReload HotReloadConfig `toml:"hot_reload" yaml:"hot_reload"`
	Lights    []LightConfig   `toml:"lights" yaml:"lights"`
	Entities  []EntityConfig  `toml:"entities" yaml:"entities"`

	// Mode is the initial render mode, "textured_quad" or "textured_mesh".
	Mode string `toml:"mode" yaml:"mode"`
}

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

// RendererConfig configures the renderer backend.
type RendererConfig struct {
	// Backend is "opengl" or "wgpu".
	Backend     string     `toml:"backend" yaml:"backend"`
	ClearColor  [4]float32 `toml:"clear_color" yaml:"clear_color"`
	DebugGroups bool       `toml:"debug_groups" yaml:"debug_groups"`

	// UniformBufferSize overrides the constant buffer capacity; 0 uses the device maximum.
	UniformBufferSize int  `toml:"uniform_buffer_size" yaml:"uniform_buffer_size"`
	Profiling         bool `toml:"profiling" yaml:"profiling"`
}

// CameraConfig configures the scene camera. Fov is in degrees.
type CameraConfig struct {
	Eye    [3]float32 `toml:"eye" yaml:"eye"`
	Target [3]float32 `toml:"target" yaml:"target"`
	Up     [3]float32 `toml:"up" yaml:"up"`
	Fov    float32    `toml:"fov" yaml:"fov"`
	Near   float32    `toml:"near" yaml:"near"`
	Far    float32    `toml:"far" yaml:"far"`
}

// AssetsConfig locates the files loaded at startup. Relative paths resolve against the config file's directory.
type AssetsConfig struct {
	ShaderPath  string `toml:"shader_path" yaml:"shader_path"`
	QuadTexture string `toml:"quad_texture" yaml:"quad_texture"`
	ModelPath   string `toml:"model_path" yaml:"model_path"`
}

// HotReloadConfig configures shader hot reloading.
type HotReloadConfig struct {
	// Mode is "poll", "notify" or "off".
	Mode string `toml:"mode" yaml:"mode"`
}

// LightConfig describes one light.
type LightConfig struct {
	// Type is "directional" or "point".
	Type      string     `toml:"type" yaml:"type"`
	Color     [3]float32 `toml:"color" yaml:"color"`
	Direction [3]float32 `toml:"direction" yaml:"direction"`
	Position  [3]float32 `toml:"position" yaml:"position"`
	Disabled  bool       `toml:"disabled" yaml:"disabled"`
}

// EntityConfig places one instance of the model. Rotation and RotationSpeed are in radians; a zero Scale means 1.
type EntityConfig struct {
	Name          string     `toml:"name" yaml:"name"`
	Position      [3]float32 `toml:"position" yaml:"position"`
	Rotation      [3]float32 `toml:"rotation" yaml:"rotation"`
	Scale         [3]float32 `toml:"scale" yaml:"scale"`
	RotationSpeed [3]float32 `toml:"rotation_speed" yaml:"rotation_speed"`
}

// Default returns the configuration of the stock scene: the dice quad and a directional plus a point light.
//
// Returns:
//   - *Config: a fresh default configuration
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "oxy-forward",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Renderer: RendererConfig{
			Backend:    "opengl",
			ClearColor: [4]float32{0.1, 0.1, 0.1, 1},
		},
		Camera: CameraConfig{
			Eye:    [3]float32{0, 3, 10},
			Target: [3]float32{0, 1, 0},
			Up:     [3]float32{0, 1, 0},
			Fov:    60,
			Near:   0.1,
			Far:    1000,
		},
		Assets: AssetsConfig{
			ShaderPath:  "assets/shaders/textured.glsl",
			QuadTexture: "assets/textures/dice.png",
		},
		HotReload: HotReloadConfig{Mode: "poll"},
		Lights: []LightConfig{
			{Type: "directional", Color: [3]float32{1, 1, 1}, Direction: [3]float32{-1, -1, -1}},
			{Type: "point", Color: [3]float32{1, 0.8, 0.6}, Position: [3]float32{0, 2, 2}},
		},
		Mode: "textured_quad",
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file over Default(). A leading "~" is expanded to the user's
// home directory and relative asset paths given in the file are resolved against the file's directory.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - *Config: the merged configuration
//   - error: error if the file cannot be read, has an unknown extension or fails to parse
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	defaults := cfg.Assets
	if err := Decode(cfg, data, filepath.Ext(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	cfg.resolveAssets(filepath.Dir(expanded), defaults)
	return cfg, cfg.Validate()
}

// Decode unmarshals data in the format named by ext into cfg. Fields absent from data keep their value;
// a lights list present in data replaces cfg.Lights.
//
// Parameters:
//   - cfg: the destination, usually Default()
//   - data: the encoded config
//   - ext: ".toml", ".yaml" or ".yml"
//
// Returns:
//   - error: ErrUnknownFormat or the decoder's error
func Decode(cfg *Config, data []byte, ext string) error {
	// a lights list in data replaces the defaults instead of merging into them
	defaults := cfg.Lights
	cfg.Lights = nil
	defer func() {
		if cfg.Lights == nil {
			cfg.Lights = defaults
		}
	}()

	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Validate checks value ranges that would otherwise fail deep inside window or renderer setup.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("camera fov must be in (0, 180) degrees, got %v", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera planes must satisfy 0 < near < far, got near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	for i, l := range c.Lights {
		if l.Type != "directional" && l.Type != "point" {
			return fmt.Errorf("light %d: unknown type %q", i, l.Type)
		}
	}
	return nil
}

// resolveAssets makes asset paths set by the file relative to dir and expands "~". Paths still equal to
// their default stay relative to the working directory.
func (c *Config) resolveAssets(dir string, defaults AssetsConfig) {
	paths := []*string{&c.Assets.ShaderPath, &c.Assets.QuadTexture, &c.Assets.ModelPath}
	unchanged := []string{defaults.ShaderPath, defaults.QuadTexture, defaults.ModelPath}
	for i, p := range paths {
		if *p == "" || *p == unchanged[i] {
			continue
		}
		if expanded, err := homedir.Expand(*p); err == nil {
			*p = expanded
		}
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
