package loader

import (
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRenderer sets the backend that creates mesh buffers.
//
// Parameters:
//   - r: the renderer backend
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option
func WithRenderer(r renderer.RendererBackend) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithRegistry sets the registry textures are loaded through and the fallbacks materials default to.
//
// Parameters:
//   - registry: the resource registry
//   - fallbacks: the registry's fallback textures
//
// Returns:
//   - LoaderBuilderOption: a function that applies the registry option
func WithRegistry(registry resource.Registry, fallbacks resource.Fallbacks) LoaderBuilderOption {
	return func(l *loader) {
		l.registry = registry
		l.fallbacks = fallbacks
	}
}

// WithModel pre-populates the cache.
//
// Parameters:
//   - key: the path or name the model is cached under
//   - m: the model
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache entry
func WithModel(key string, m *LoadedModel) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = m
	}
}
