package resource

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/shader"
)

// registry is the implementation of the Registry interface.
type registry struct {
	backend renderer.RendererBackend
	infoLog InfoLog

	decodeWorkers int
	flipY         bool
	pool          worker.DynamicWorkerPool

	programs []Program
	textures []Texture
	byPath   map[string]TextureID
}

// Registry owns every program and texture the engine has loaded and hands out stable integer ids for them.
// Loading never aborts: failures are reported to the info log and the caller gets an id it can still use.
type Registry interface {
	// LoadProgram reads a combined shader file, compiles both stages and registers the program.
	// The same path may be loaded more than once under different names.
	//
	// Parameters:
	//   - path: the shader source file
	//   - name: the program name, defined as a macro in both stages
	//
	// Returns:
	//   - ProgramID: the id of the new program, returned even when compiling failed
	LoadProgram(path, name string) ProgramID

	// LoadTexture decodes an image file and uploads it. Loading a path twice returns the first id.
	//
	// Parameters:
	//   - path: the image file
	//
	// Returns:
	//   - TextureID: the texture id, or TextureNotFound if the file could not be decoded or uploaded
	LoadTexture(path string) TextureID

	// LoadTextures loads several textures, decoding unseen paths in parallel. Uploads happen on the calling
	// goroutine in input order.
	//
	// Parameters:
	//   - paths: the image files
	//
	// Returns:
	//   - []TextureID: one id per path, TextureNotFound for failures
	LoadTextures(paths []string) []TextureID

	// AddTexture registers in-memory pixels under a path. Adding a known path returns the first id.
	//
	// Parameters:
	//   - path: a unique name for the pixels
	//   - staging: the pixels
	//
	// Returns:
	//   - TextureID: the texture id, or TextureNotFound if the upload failed
	AddTexture(path string, staging common.TextureStagingData) TextureID

	// LoadFallbacks registers the white, black, flat normal and magenta error textures.
	//
	// Returns:
	//   - Fallbacks: the ids of the four textures
	LoadFallbacks() Fallbacks

	// Reload recompiles a program from its file in place. The id stays the same and Generation is incremented.
	//
	// Parameters:
	//   - id: the program to reload
	//   - modTime: the source file's modification time to record
	Reload(id ProgramID, modTime time.Time)

	// Program returns a registered program.
	Program(id ProgramID) *Program

	// Texture returns a registered texture.
	Texture(id TextureID) *Texture

	// Programs returns every registered program in id order.
	Programs() []Program

	ProgramCount() int
	TextureCount() int

	// Release deletes every program and stops the decode workers. Textures and buffers are freed with the backend.
	Release()
}

var _ Registry = &registry{}

// NewRegistry creates an empty registry that loads through the given backend.
//
// Parameters:
//   - backend: the renderer backend that owns the GPU objects
//   - options: functional options to configure the registry
//
// Returns:
//   - Registry: the registry
func NewRegistry(backend renderer.RendererBackend, options ...RegistryBuilderOption) Registry {
	r := &registry{
		backend:       backend,
		decodeWorkers: runtime.NumCPU(),
		flipY:         true,
		byPath:        make(map[string]TextureID),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) LoadProgram(path, name string) ProgramID {
	id := ProgramID(len(r.programs))
	r.programs = append(r.programs, Program{Path: path, Name: name})

	modTime := time.Time{}
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}
	r.compile(&r.programs[id], modTime)
	return id
}

func (r *registry) Reload(id ProgramID, modTime time.Time) {
	p := r.Program(id)
	if p == nil {
		return
	}
	if p.Handle != 0 {
		r.backend.DeleteProgram(p.Handle)
	}
	r.compile(p, modTime)
	p.Generation++
	log.Printf("[Registry] reloaded program %q (generation %d)", p.Name, p.Generation)
}

// compile reads p.Path and (re)creates p.Handle and p.VertexInputs.
func (r *registry) compile(p *Program, modTime time.Time) {
	p.LastWrite = modTime

	src, err := os.ReadFile(p.Path)
	if err != nil {
		r.report("failed to read program %q: %v", p.Name, err)
		p.Handle = 0
		p.VertexInputs = nil
		return
	}

	source := renderer.ProgramSource{
		Vertex:   shader.Assemble(p.Name, shader.ShaderTypeVertex, string(src)),
		Fragment: shader.Assemble(p.Name, shader.ShaderTypeFragment, string(src)),
	}
	handle, diagnostics := r.backend.CompileProgram(p.Name, source)
	for _, d := range diagnostics {
		r.report("%s: %s", p.Name, d)
	}
	p.Handle = handle
	p.VertexInputs = r.backend.VertexInputs(handle)
}

func (r *registry) LoadTexture(path string) TextureID {
	if id, ok := r.byPath[path]; ok {
		return id
	}
	staging, err := common.DecodeImage(path, r.flipY)
	if err != nil {
		r.report("failed to load texture %q: %v", path, err)
		return TextureNotFound
	}
	return r.AddTexture(path, staging)
}

type decodeResult struct {
	staging common.TextureStagingData
	err     error
}

func (r *registry) LoadTextures(paths []string) []TextureID {
	var unseen []string
	queued := make(map[string]bool)
	for _, path := range paths {
		if _, ok := r.byPath[path]; !ok && !queued[path] {
			queued[path] = true
			unseen = append(unseen, path)
		}
	}

	// each task writes only its own slot; the map is built after the barrier
	results := make([]decodeResult, len(unseen))
	if len(unseen) > 0 {
		pool := r.decodePool()
		var wg sync.WaitGroup
		for i, path := range unseen {
			wg.Add(1)
			pool.SubmitTask(worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					staging, err := common.DecodeImage(path, r.flipY)
					results[i] = decodeResult{staging: staging, err: err}
					return nil, err
				},
			})
		}
		wg.Wait()
	}

	decoded := make(map[string]*decodeResult, len(unseen))
	for i, path := range unseen {
		decoded[path] = &results[i]
	}

	ids := make([]TextureID, len(paths))
	for i, path := range paths {
		if id, ok := r.byPath[path]; ok {
			ids[i] = id
			continue
		}
		res := decoded[path]
		if res.err != nil {
			r.report("failed to load texture %q: %v", path, res.err)
			ids[i] = TextureNotFound
			// a path listed twice is reported once
			res.err = nil
			res.staging = common.TextureStagingData{}
			continue
		}
		if res.staging.Pixels == nil {
			ids[i] = TextureNotFound
			continue
		}
		ids[i] = r.AddTexture(path, res.staging)
	}
	return ids
}

// decodePool returns the registry's decode pool, creating it on first use.
func (r *registry) decodePool() worker.DynamicWorkerPool {
	if r.pool == nil {
		r.pool = worker.NewDynamicWorkerPool(r.decodeWorkers, 256, time.Second)
	}
	return r.pool
}

func (r *registry) AddTexture(path string, staging common.TextureStagingData) TextureID {
	if id, ok := r.byPath[path]; ok {
		return id
	}
	handle, err := r.backend.CreateTexture(staging)
	if err != nil {
		r.report("failed to upload texture %q: %v", path, err)
		return TextureNotFound
	}
	id := TextureID(len(r.textures))
	r.textures = append(r.textures, Texture{Handle: handle, Path: path})
	r.byPath[path] = id
	return id
}

func (r *registry) LoadFallbacks() Fallbacks {
	builtin := func(name string, c [4]uint8) TextureID {
		id := r.AddTexture(BuiltinPrefix+name, common.SolidColor(c[0], c[1], c[2], c[3]))
		if id == TextureNotFound {
			panic(fmt.Sprintf("failed to create fallback texture %q", name))
		}
		return id
	}
	return Fallbacks{
		White:  builtin("white", [4]uint8{255, 255, 255, 255}),
		Black:  builtin("black", [4]uint8{0, 0, 0, 255}),
		Normal: builtin("normal", [4]uint8{128, 128, 255, 255}),
		Error:  builtin("error", [4]uint8{255, 0, 255, 255}),
	}
}

func (r *registry) Program(id ProgramID) *Program {
	if int(id) >= len(r.programs) {
		return nil
	}
	return &r.programs[id]
}

func (r *registry) Texture(id TextureID) *Texture {
	if int(id) >= len(r.textures) {
		return nil
	}
	return &r.textures[id]
}

func (r *registry) Programs() []Program {
	return append([]Program(nil), r.programs...)
}

func (r *registry) ProgramCount() int {
	return len(r.programs)
}

func (r *registry) TextureCount() int {
	return len(r.textures)
}

func (r *registry) Release() {
	if r.pool != nil {
		r.pool.Stop()
		r.pool = nil
	}
	for i := range r.programs {
		if r.programs[i].Handle != 0 {
			r.backend.DeleteProgram(r.programs[i].Handle)
			r.programs[i].Handle = 0
		}
	}
}

// report writes a diagnostic to the standard logger and the attached info log.
func (r *registry) report(format string, args ...any) {
	log.Printf("[Registry] "+format, args...)
	if r.infoLog != nil {
		r.infoLog.Info(format, args...)
	}
}
