package scene

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/entity"
	"github.com/Carmen-Shannon/oxy-forward/engine/light"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
)

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(s *scene)

// WithInfoLog sets the sink receiving device information and load diagnostics.
//
// Parameters:
//   - infoLog: the info log, usually the overlay
//
// Returns:
//   - SceneBuilderOption: option setting the info log
func WithInfoLog(infoLog resource.InfoLog) SceneBuilderOption {
	return func(s *scene) {
		s.infoLog = infoLog
	}
}

// WithShaderPath sets the shader file both programs are assembled from.
func WithShaderPath(path string) SceneBuilderOption {
	return func(s *scene) {
		s.shaderPath = path
	}
}

// WithQuadTexture sets the image drawn on the quad in ModeTexturedQuad.
func WithQuadTexture(path string) SceneBuilderOption {
	return func(s *scene) {
		s.quadTexPath = path
	}
}

// WithModelPath sets the model loaded by Init. Without it the scene starts with no entities.
func WithModelPath(path string) SceneBuilderOption {
	return func(s *scene) {
		s.modelPath = path
	}
}

// WithEntity places an instance of the model loaded by Init. Each call adds one entity; with none, a single
// entity is placed at the origin.
//
// Parameters:
//   - options: entity options applied to the instance
//
// Returns:
//   - SceneBuilderOption: option adding the entity
func WithEntity(options ...entity.EntityBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.entitySpecs = append(s.entitySpecs, options)
	}
}

// WithLights adds lights to the scene.
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithHotReloadMode sets how shader sources are watched.
func WithHotReloadMode(mode resource.HotReloadMode) SceneBuilderOption {
	return func(s *scene) {
		s.hotReloadMode = mode
	}
}

// WithClearColor sets the color the frame target is cleared to.
func WithClearColor(c common.Color) SceneBuilderOption {
	return func(s *scene) {
		s.clearColor = c
	}
}

// WithMode sets the initial render mode.
func WithMode(mode Mode) SceneBuilderOption {
	return func(s *scene) {
		s.mode = mode
	}
}

// WithRegistryOptions forwards options to the scene's resource registry.
func WithRegistryOptions(options ...resource.RegistryBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.registryOpts = append(s.registryOpts, options...)
	}
}
