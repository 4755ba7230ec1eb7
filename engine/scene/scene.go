package scene

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/camera"
	"github.com/Carmen-Shannon/oxy-forward/engine/entity"
	"github.com/Carmen-Shannon/oxy-forward/engine/light"
	"github.com/Carmen-Shannon/oxy-forward/engine/loader"
	"github.com/Carmen-Shannon/oxy-forward/engine/model"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/constant_buffer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-forward/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// QuadProgramName is the define selecting the quad stages in the shader file.
	QuadProgramName = "TEXTURED_GEOMETRY"

	// MeshProgramName is the define selecting the mesh stages in the shader file.
	MeshProgramName = "TEXTURED_MESH"
)

// Scene is the engine's root context. It owns the resource registry and every arena-indexed collection
// (meshes, models, materials, entities, lights), and runs the per-frame Update and Render stages.
// All methods must be called from the goroutine that owns the renderer backend.
type Scene interface {
	// Init loads fallback textures, the embedded quad, both programs, the quad texture and the configured model,
	// and writes the device description to the info log.
	//
	// Returns:
	//   - error: error if a GPU buffer or the model could not be created
	Init() error

	// Update polls for shader changes, recomputes the camera from the viewport and refills the constant buffer
	// with the global block and one local block per entity.
	//
	// Parameters:
	//   - dt: elapsed seconds since the last frame
	//   - viewport: the live viewport
	//
	// Returns:
	//   - error: error if the constant buffer could not be mapped
	Update(dt float32, viewport common.Viewport) error

	// Render records the frame for the current mode. Present is left to the caller.
	//
	// Parameters:
	//   - viewport: the live viewport
	//
	// Returns:
	//   - error: error if the frame target could not be acquired
	Render(viewport common.Viewport) error

	// Mode returns the current render mode.
	Mode() Mode

	// SetMode switches the render mode.
	SetMode(mode Mode)

	// ToggleMode switches between the quad and mesh modes.
	ToggleMode()

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Registry returns the scene's resource registry.
	Registry() resource.Registry

	// Fallbacks returns the fallback textures registered by Init.
	Fallbacks() resource.Fallbacks

	// AddModel takes ownership of a loaded model's mesh and materials.
	//
	// Parameters:
	//   - loaded: the model returned by a Loader
	//
	// Returns:
	//   - model.ModelID: the id of the new model
	AddModel(loaded *loader.LoadedModel) model.ModelID

	// AddEntity places an entity in the world.
	//
	// Parameters:
	//   - e: the entity
	//
	// Returns:
	//   - int: the entity's index
	AddEntity(e entity.Entity) int

	// AddLight adds a light to the global block.
	AddLight(l light.Light)

	Mesh(id model.MeshID) *model.Mesh
	Model(id model.ModelID) *model.Model
	Material(id material.MaterialID) *material.Material
	Entity(index int) *entity.Entity
	Entities() []entity.Entity
	Lights() []light.Light

	// GlobalRange returns the offset and size of the global block written by the last Update.
	GlobalRange() (offset, size int)

	// Release deletes every GPU object the scene created.
	Release()
}

// scene is the implementation of the Scene interface.
type scene struct {
	name string

	r       renderer.RendererBackend
	cam     camera.Camera
	infoLog resource.InfoLog

	registry  resource.Registry
	watcher   resource.Watcher
	fallbacks resource.Fallbacks
	cb        constant_buffer.ConstantBuffer

	meshes    []*model.Mesh
	models    []model.Model
	materials []material.Material
	entities  []entity.Entity
	lights    []light.Light

	mode       Mode
	clearColor common.Color

	shaderPath    string
	quadTexPath   string
	modelPath     string
	entitySpecs   [][]entity.EntityBuilderOption
	hotReloadMode resource.HotReloadMode
	registryOpts  []resource.RegistryBuilderOption

	quadMesh     *model.Mesh
	quadProgram  resource.ProgramID
	meshProgram  resource.ProgramID
	quadTexture  resource.TextureID
	globalOffset int
	globalSize   int
	initialized  bool
}

var _ Scene = &scene{}

// NewScene creates a scene drawing through backend from cam's point of view. Both are required and NewScene
// panics if either is nil. Resources are loaded by Init.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera
//   - backend: the renderer backend
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, cam camera.Camera, backend renderer.RendererBackend, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if backend == nil {
		panic("scene: NewScene requires a non-nil RendererBackend")
	}

	s := &scene{
		name:        name,
		r:           backend,
		cam:         cam,
		mode:        ModeTexturedQuad,
		clearColor:  common.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		shaderPath:  "assets/shaders/textured.glsl",
		quadTexPath: "assets/textures/dice.png",
	}
	for _, option := range options {
		option(s)
	}
	if s.infoLog != nil {
		s.registryOpts = append(s.registryOpts, resource.WithInfoLog(s.infoLog))
	}
	s.registry = resource.NewRegistry(backend, s.registryOpts...)
	return s
}

func (s *scene) Init() error {
	if s.initialized {
		return fmt.Errorf("scene %q already initialized", s.name)
	}

	info := s.r.Info()
	s.info("Version: %s", info.Version)
	s.info("Renderer: %s", info.Renderer)
	s.info("Vendor: %s", info.Vendor)
	s.info("Shading language: %s", info.ShadingLanguageVersion)

	s.fallbacks = s.registry.LoadFallbacks()

	quad, err := newQuadMesh(s.r)
	if err != nil {
		return fmt.Errorf("scene %q: %w", s.name, err)
	}
	s.quadMesh = quad

	s.quadProgram = s.registry.LoadProgram(s.shaderPath, QuadProgramName)
	s.meshProgram = s.registry.LoadProgram(s.shaderPath, MeshProgramName)
	s.watcher = resource.NewWatcher(s.registry, resource.WithHotReloadMode(s.hotReloadMode))

	s.quadTexture = s.registry.LoadTexture(s.quadTexPath)
	if s.quadTexture == resource.TextureNotFound {
		s.quadTexture = s.fallbacks.Error
	}

	cb, err := constant_buffer.NewConstantBuffer(s.r)
	if err != nil {
		return fmt.Errorf("scene %q: failed to create constant buffer: %w", s.name, err)
	}
	s.cb = cb

	if s.modelPath != "" {
		l := loader.NewLoader(loader.BackendTypeOBJ,
			loader.WithRenderer(s.r),
			loader.WithRegistry(s.registry, s.fallbacks),
		)
		loaded, err := l.Load(s.modelPath)
		if err != nil {
			return fmt.Errorf("scene %q: %w", s.name, err)
		}
		id := s.AddModel(loaded)

		specs := s.entitySpecs
		if len(specs) == 0 {
			specs = [][]entity.EntityBuilderOption{nil}
		}
		for _, opts := range specs {
			s.AddEntity(entity.NewEntity(id, opts...))
		}
	}

	s.initialized = true
	log.Printf("[Scene] %s initialized: %d programs, %d textures, %d entities",
		s.name, s.registry.ProgramCount(), s.registry.TextureCount(), len(s.entities))
	return nil
}

func (s *scene) Update(dt float32, viewport common.Viewport) error {
	if !s.initialized {
		return fmt.Errorf("scene %q is not initialized", s.name)
	}

	s.watcher.Poll()

	s.cam.Update(viewport, s.r.Info().ClipDepthZeroToOne)
	viewProjection := s.cam.ViewProjectionMatrix()

	if err := s.cb.BeginFrame(); err != nil {
		return err
	}
	defer s.cb.EndFrame()

	s.globalOffset, s.globalSize = light.WriteGlobalBlock(s.cb, s.cam.Position(), s.lights)

	for i := range s.entities {
		e := &s.entities[i]
		e.UpdateWorld(dt)
		e.WriteLocalBlock(s.cb, viewProjection)
	}
	return nil
}

func (s *scene) Render(viewport common.Viewport) error {
	if !s.initialized {
		return fmt.Errorf("scene %q is not initialized", s.name)
	}
	if err := s.r.BeginFrame(s.clearColor, viewport); err != nil {
		return err
	}

	s.r.PushDebugGroup(s.mode.String())
	switch s.mode {
	case ModeTexturedQuad:
		s.renderQuad()
	case ModeTexturedMesh:
		s.renderMeshes()
	}
	s.r.PopDebugGroup()

	s.r.EndFrame()
	return nil
}

func (s *scene) renderQuad() {
	program := s.registry.Program(s.quadProgram)

	s.r.SetBlend(renderer.BlendModeAlpha)
	binding := model.GetVAO(s.r, s.quadMesh, 0, s.quadProgram, program)
	if binding == 0 {
		return
	}
	s.r.UseProgram(program.Handle)
	s.r.BindVertexBinding(binding)
	s.r.BindTexture(0, s.registry.Texture(s.quadTexture).Handle)
	s.r.DrawIndexed(len(quadIndices), 0)
}

func (s *scene) renderMeshes() {
	program := s.registry.Program(s.meshProgram)

	s.r.SetBlend(renderer.BlendModeOpaque)
	s.r.UseProgram(program.Handle)

	for i := range s.entities {
		e := &s.entities[i]
		mdl := &s.models[e.Model]
		mesh := s.meshes[mdl.Mesh]

		s.r.BindUniformRange(light.GlobalBlockBinding, s.cb.Buffer(), s.globalOffset, s.globalSize)
		s.r.BindUniformRange(entity.LocalBlockBinding, s.cb.Buffer(), e.LocalOffset, e.LocalSize)

		for j := range mesh.Submeshes {
			sub := &mesh.Submeshes[j]
			binding := model.GetVAO(s.r, mesh, j, s.meshProgram, program)
			if binding == 0 {
				continue
			}
			s.r.BindVertexBinding(binding)

			albedo := s.fallbacks.White
			if j < len(mdl.Materials) {
				albedo = s.materials[mdl.Materials[j]].Albedo
			}
			s.r.BindTexture(0, s.texture(albedo))
			s.r.DrawIndexed(sub.IndexCount, sub.IndexOffset)
		}
	}
}

// texture resolves a texture id to its handle, substituting the error texture for unknown ids.
func (s *scene) texture(id resource.TextureID) renderer.TextureHandle {
	if t := s.registry.Texture(id); t != nil {
		return t.Handle
	}
	return s.registry.Texture(s.fallbacks.Error).Handle
}

func (s *scene) Mode() Mode {
	return s.mode
}

func (s *scene) SetMode(mode Mode) {
	if mode != s.mode {
		log.Printf("[Scene] mode %s -> %s", s.mode, mode)
	}
	s.mode = mode
}

func (s *scene) ToggleMode() {
	if s.mode == ModeTexturedQuad {
		s.SetMode(ModeTexturedMesh)
	} else {
		s.SetMode(ModeTexturedQuad)
	}
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Registry() resource.Registry {
	return s.registry
}

func (s *scene) Fallbacks() resource.Fallbacks {
	return s.fallbacks
}

func (s *scene) AddModel(loaded *loader.LoadedModel) model.ModelID {
	meshID := model.MeshID(len(s.meshes))
	s.meshes = append(s.meshes, loaded.Mesh)

	m := model.Model{Name: loaded.Name, Mesh: meshID}
	for _, mat := range loaded.Materials {
		m.Materials = append(m.Materials, material.MaterialID(len(s.materials)))
		s.materials = append(s.materials, mat)
	}

	id := model.ModelID(len(s.models))
	s.models = append(s.models, m)
	return id
}

func (s *scene) AddEntity(e entity.Entity) int {
	s.entities = append(s.entities, e)
	return len(s.entities) - 1
}

func (s *scene) AddLight(l light.Light) {
	s.lights = append(s.lights, l)
}

func (s *scene) Mesh(id model.MeshID) *model.Mesh {
	if int(id) >= len(s.meshes) {
		return nil
	}
	return s.meshes[id]
}

func (s *scene) Model(id model.ModelID) *model.Model {
	if int(id) >= len(s.models) {
		return nil
	}
	return &s.models[id]
}

func (s *scene) Material(id material.MaterialID) *material.Material {
	if int(id) >= len(s.materials) {
		return nil
	}
	return &s.materials[id]
}

func (s *scene) Entity(index int) *entity.Entity {
	if index < 0 || index >= len(s.entities) {
		return nil
	}
	return &s.entities[index]
}

func (s *scene) Entities() []entity.Entity {
	return s.entities
}

func (s *scene) Lights() []light.Light {
	return s.lights
}

func (s *scene) GlobalRange() (offset, size int) {
	return s.globalOffset, s.globalSize
}

func (s *scene) Release() {
	if s.quadMesh != nil {
		s.quadMesh.Release(s.r)
	}
	for _, m := range s.meshes {
		m.Release(s.r)
	}
	s.registry.Release()
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			log.Printf("[Scene] %v", err)
		}
	}
}

func (s *scene) info(format string, args ...any) {
	log.Printf("[Scene] "+format, args...)
	if s.infoLog != nil {
		s.infoLog.Info(format, args...)
	}
}

// quadIndices are the two triangles of the embedded quad.
var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// newQuadMesh uploads the embedded quad: a unit square centred on the origin facing +Z.
func newQuadMesh(backend renderer.RendererBackend) (*model.Mesh, error) {
	vertices := []*model.GPUQuadVertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, TexCoord: [2]float32{0, 0}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, TexCoord: [2]float32{1, 0}},
		{Position: mgl32.Vec3{0.5, 0.5, 0}, TexCoord: [2]float32{1, 1}},
		{Position: mgl32.Vec3{-0.5, 0.5, 0}, TexCoord: [2]float32{0, 1}},
	}
	return model.NewMesh(backend, model.MarshalVertices(vertices), model.MarshalIndices16(quadIndices),
		model.WithName("embedded_quad"),
		model.WithIndexFormat(renderer.IndexFormatUint16),
		model.WithSubmeshes(model.Submesh{IndexCount: len(quadIndices), Layout: model.QuadLayout}),
	)
}
