package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader source is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// VertexInput is one active vertex attribute declared by a program's vertex stage.
type VertexInput struct {
	// Location is the attribute binding location.
	Location uint32
	// ComponentCount is the number of scalar components of the declared type (1-4), not its byte size.
	ComponentCount uint32
}

// shader is the implementation of the Shader interface.
// It holds the pre-processed source and the metadata parsed from it.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	vertexInputs               []VertexInput
	entryPoint                 string
}

// Shader is one pre-processed WGSL stage together with the reflection data the WebGPU backend
// needs for pipeline creation: entry point, vertex inputs and bind group layout descriptors.
type Shader interface {
	// Key retrieves the identifier of this shader, used as the GPU object label.
	//
	// Returns:
	//   - string: the shader's key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage this shader was built for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name, or empty if none was found
	EntryPoint() string

	// VertexInputs returns the @location inputs of the vertex entry point, ordered by location.
	// Fragment shaders return nil.
	//
	// Returns:
	//   - []VertexInput: the declared vertex inputs
	VertexInputs() []VertexInput

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	// Uniform buffer entries are marked as dynamic-offset bindings.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes the given source chunks and parses the resulting WGSL.
//
// Parameters:
//   - key: an identifier for the shader
//   - shaderType: the stage being built
//   - chunks: ordered source chunks, usually produced by Assemble
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if pre-processing fails, no entry point for the stage exists, or a vertex input or
//     resource declaration is not supported
func NewShader(key string, shaderType ShaderType, chunks ...string) (Shader, error) {
	source, err := NewPreProcessor().Process(chunks...)
	if err != nil {
		return nil, fmt.Errorf("shader %s (%s): %w", key, shaderType, err)
	}

	module := parseWGSL(source)
	entryPoint, params, ok := module.entryPoint(shaderType)
	if !ok {
		return nil, fmt.Errorf("shader %s: no @%s entry point", key, shaderType)
	}

	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
		entryPoint: entryPoint,
	}

	visibility := wgpu.ShaderStageFragment
	if shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		if s.vertexInputs, err = module.vertexInputs(params); err != nil {
			return nil, fmt.Errorf("shader %s: %w", key, err)
		}
	}
	if s.bindGroupLayoutDescriptors, err = module.bindGroupLayouts(visibility); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexInputs() []VertexInput {
	return s.vertexInputs
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}
