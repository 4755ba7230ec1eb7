package main

import (
	"cmp"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine"
	"github.com/Carmen-Shannon/oxy-forward/engine/camera"
	"github.com/Carmen-Shannon/oxy-forward/engine/config"
	"github.com/Carmen-Shannon/oxy-forward/engine/entity"
	"github.com/Carmen-Shannon/oxy-forward/engine/light"
	"github.com/Carmen-Shannon/oxy-forward/engine/overlay"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
	"github.com/Carmen-Shannon/oxy-forward/engine/scene"
	"github.com/Carmen-Shannon/oxy-forward/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// run builds the window, backend, scene and engine described by cfg and blocks until the window closes.
func run(cfg *config.Config) error {
	backendType, err := renderer.ParseBackendType(cfg.Renderer.Backend)
	if err != nil {
		return err
	}
	sceneOpts, err := sceneOptions(cfg)
	if err != nil {
		return err
	}
	sceneOpts = append(sceneOpts, scene.WithShaderPath(shaderPathFor(backendType, cfg.Assets.ShaderPath)))

	title := cmp.Or(cfg.Window.Title, "oxy-forward")

	// ── Window ──────────────────────────────────────────────────────────
	api := window.GraphicsAPINone
	if backendType == renderer.BackendTypeOpenGL {
		api = window.GraphicsAPIOpenGL
	}
	win := window.NewWindow(
		window.WithTitle(title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithMaxWidth(max(cfg.Window.Width, 3840)),
		window.WithMaxHeight(max(cfg.Window.Height, 2160)),
		window.WithGraphicsAPI(api),
		window.WithDebugContext(cfg.Renderer.DebugGroups),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	presentMode := renderer.PresentModeVSync
	if !cfg.Window.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	backend := renderer.NewRendererBackend(backendType, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithDebugGroups(cfg.Renderer.DebugGroups),
		renderer.WithUniformBlockSize(cfg.Renderer.UniformBufferSize),
	)

	// ── Scene ───────────────────────────────────────────────────────────
	info := overlay.NewOverlay(overlay.WithTitle(title))
	sc := scene.NewScene(title, cameraFromConfig(cfg.Camera), backend,
		append(sceneOpts, scene.WithInfoLog(info))...,
	)

	// ── Engine ──────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(backend),
		engine.WithScene(sc),
		engine.WithOverlay(info),
		engine.WithProfiling(cfg.Renderer.Profiling),
		engine.WithTickRate(60),
	)
	return eng.Run()
}

// sceneOptions translates the asset, mode, light and entity sections into scene options.
func sceneOptions(cfg *config.Config) ([]scene.SceneBuilderOption, error) {
	mode, err := scene.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	hotReload, err := resource.ParseHotReloadMode(cfg.HotReload.Mode)
	if err != nil {
		return nil, err
	}
	lights, err := lightsFromConfig(cfg.Lights)
	if err != nil {
		return nil, err
	}

	c := cfg.Renderer.ClearColor
	opts := []scene.SceneBuilderOption{
		scene.WithMode(mode),
		scene.WithHotReloadMode(hotReload),
		scene.WithQuadTexture(cfg.Assets.QuadTexture),
		scene.WithModelPath(cfg.Assets.ModelPath),
		scene.WithClearColor(common.Color{R: c[0], G: c[1], B: c[2], A: c[3]}),
		scene.WithLights(lights...),
	}
	for _, e := range cfg.Entities {
		opts = append(opts, scene.WithEntity(entityOptions(e)...))
	}
	return opts, nil
}

// shaderPathFor swaps a .glsl shader for its .wgsl sibling on the WebGPU backend and vice versa.
func shaderPathFor(backendType renderer.RendererBackendType, path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	switch {
	case backendType == renderer.BackendTypeWGPU && ext == ".glsl":
		return base + ".wgsl"
	case backendType == renderer.BackendTypeOpenGL && ext == ".wgsl":
		return base + ".glsl"
	default:
		return path
	}
}

func cameraFromConfig(c config.CameraConfig) camera.Camera {
	return camera.NewCamera(
		camera.WithPosition(c.Eye),
		camera.WithTarget(c.Target),
		camera.WithUp(c.Up),
		camera.WithFov(mgl32.DegToRad(c.Fov)),
		camera.WithNear(c.Near),
		camera.WithFar(c.Far),
	)
}

func lightsFromConfig(configs []config.LightConfig) ([]light.Light, error) {
	lights := make([]light.Light, 0, len(configs))
	for i, c := range configs {
		var lightType light.LightType
		switch c.Type {
		case "directional":
			lightType = light.LightTypeDirectional
		case "point":
			lightType = light.LightTypePoint
		default:
			return nil, fmt.Errorf("light %d: unknown type %q", i, c.Type)
		}

		opts := []light.LightBuilderOption{
			light.WithColor(c.Color),
			light.WithPosition(c.Position),
			light.WithEnabled(!c.Disabled),
		}
		if c.Direction != [3]float32{} {
			opts = append(opts, light.WithDirection(c.Direction))
		}
		lights = append(lights, light.NewLight(lightType, opts...))
	}
	return lights, nil
}

func entityOptions(c config.EntityConfig) []entity.EntityBuilderOption {
	opts := []entity.EntityBuilderOption{
		entity.WithName(c.Name),
		entity.WithPosition(c.Position),
		entity.WithRotation(c.Rotation),
		entity.WithRotationSpeed(c.RotationSpeed),
	}
	if c.Scale != [3]float32{} {
		opts = append(opts, entity.WithScale(c.Scale))
	}
	return opts
}
