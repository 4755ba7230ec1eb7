package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-forward/engine/model"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
)

// LoaderBackendType identifies a model file format.
type LoaderBackendType int

const (
	// BackendTypeOBJ decodes Wavefront OBJ files with MTL material libraries.
	BackendTypeOBJ LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	renderer  renderer.RendererBackend
	registry  resource.Registry
	fallbacks resource.Fallbacks

	modelCache map[string]*LoadedModel

	backend loaderBackend
}

// Loader imports model files, uploads their geometry into one shared vertex and index buffer per model,
// and resolves their materials' textures through the resource registry.
type Loader interface {
	// Load imports and uploads a model file. Loading the same path twice returns the cached model.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - *LoadedModel: the uploaded mesh and one material per submesh
	//   - error: error if the file cannot be decoded or the buffers cannot be created
	Load(path string) (*LoadedModel, error)

	// LoadReader imports and uploads a model from readers. The result is cached under name.
	//
	// Parameters:
	//   - name: the cache key and model name
	//   - r: the model data
	//   - materials: the material library, may be nil
	//   - dir: the directory texture paths are relative to
	//
	// Returns:
	//   - *LoadedModel: the uploaded mesh and one material per submesh
	//   - error: error if the data cannot be decoded or the buffers cannot be created
	LoadReader(name string, r io.Reader, materials io.Reader, dir string) (*LoadedModel, error)

	// Import decodes a model file without touching the GPU.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - *ImportedModel: the decoded model
	//   - error: error if the file cannot be decoded
	Import(path string) (*ImportedModel, error)

	// Get returns a cached model, or nil.
	Get(name string) *LoadedModel

	// Models returns every cached model keyed by path or name.
	Models() map[string]*LoadedModel
}

var _ Loader = &loader{}

// NewLoader creates a loader for the given file format. WithRenderer and WithRegistry are required for
// Load and LoadReader.
//
// Parameters:
//   - backendType: the model file format
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]*LoadedModel),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	default:
		panic(fmt.Sprintf("unsupported loader backend type: %d", backendType))
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*LoadedModel, error) {
	if cached, ok := l.modelCache[path]; ok {
		return cached, nil
	}

	imported, err := l.Import(path)
	if err != nil {
		return nil, err
	}
	m, err := l.upload(imported)
	if err != nil {
		return nil, err
	}
	l.modelCache[path] = m
	return m, nil
}

func (l *loader) LoadReader(name string, r io.Reader, materials io.Reader, dir string) (*LoadedModel, error) {
	if cached, ok := l.modelCache[name]; ok {
		return cached, nil
	}

	imported, err := l.backend.LoadReader(name, r, materials, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	m, err := l.upload(imported)
	if err != nil {
		return nil, err
	}
	l.modelCache[name] = m
	return m, nil
}

func (l *loader) Import(path string) (*ImportedModel, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".obj" {
		return nil, fmt.Errorf("unsupported model format %q for %s", ext, path)
	}
	imported, err := l.backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return imported, nil
}

func (l *loader) Get(name string) *LoadedModel {
	return l.modelCache[name]
}

func (l *loader) Models() map[string]*LoadedModel {
	return l.modelCache
}

// upload creates the mesh buffers and resolves material textures, decoding them in parallel.
func (l *loader) upload(imported *ImportedModel) (*LoadedModel, error) {
	if l.renderer == nil || l.registry == nil {
		return nil, fmt.Errorf("loader for %s has no renderer or registry", imported.Name)
	}

	submeshes := make([]model.Submesh, len(imported.Submeshes))
	for i, s := range imported.Submeshes {
		submeshes[i] = model.Submesh{
			VertexOffset: s.VertexOffset,
			IndexOffset:  s.IndexOffset,
			IndexCount:   s.IndexCount,
			Layout:       model.MeshLayout,
		}
	}

	vertices := make([]byte, 0, len(imported.Vertices)*model.MeshLayout.Stride)
	for i := range imported.Vertices {
		vertices = append(vertices, imported.Vertices[i].Marshal()...)
	}
	mesh, err := model.NewMesh(l.renderer, vertices, model.MarshalIndices32(imported.Indices),
		model.WithName(imported.Name),
		model.WithIndexFormat(renderer.IndexFormatUint32),
		model.WithSubmeshes(submeshes...),
	)
	if err != nil {
		return nil, err
	}

	materials := l.resolveMaterials(imported.Materials)
	loaded := &LoadedModel{Name: imported.Name, Mesh: mesh}
	for _, s := range imported.Submeshes {
		loaded.Materials = append(loaded.Materials, materials[s.Material])
	}
	return loaded, nil
}

func (l *loader) resolveMaterials(imported []ImportedMaterial) []material.Material {
	var paths []string
	for _, m := range imported {
		for _, p := range []string{m.AlbedoPath, m.EmissivePath, m.SpecularPath, m.NormalsPath, m.BumpPath} {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	ids := make(map[string]resource.TextureID, len(paths))
	for i, id := range l.registry.LoadTextures(paths) {
		ids[paths[i]] = id
	}

	texture := func(path string, with func(resource.TextureID) material.MaterialBuilderOption) []material.MaterialBuilderOption {
		if path == "" {
			return nil
		}
		return []material.MaterialBuilderOption{with(ids[path])}
	}

	out := make([]material.Material, len(imported))
	for i, m := range imported {
		options := []material.MaterialBuilderOption{
			material.WithName(m.Name),
			material.WithAlbedoColor(m.AlbedoColor),
			material.WithEmissiveColor(m.EmissiveColor),
			material.WithSmoothness(m.Smoothness),
		}
		options = append(options, texture(m.AlbedoPath, material.WithAlbedo)...)
		options = append(options, texture(m.EmissivePath, material.WithEmissive)...)
		options = append(options, texture(m.SpecularPath, material.WithSpecular)...)
		options = append(options, texture(m.NormalsPath, material.WithNormals)...)
		options = append(options, texture(m.BumpPath, material.WithBump)...)
		out[i] = material.NewMaterial(l.fallbacks, options...)
	}
	return out
}
