package renderer

import (
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/shader"
)

// RendererBackendType identifies the graphics API implementation behind a RendererBackend.
type RendererBackendType int

const (
	// BackendTypeOpenGL selects the OpenGL 4.3 core backend.
	BackendTypeOpenGL RendererBackendType = iota

	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeOpenGL:
		return "opengl"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// Handles are opaque non-zero identifiers issued by a backend. The zero value is never a live object.
type (
	ProgramHandle       uint32
	TextureHandle       uint32
	BufferHandle        uint32
	VertexBindingHandle uint32
)

// VertexInput is one active vertex attribute of a linked program.
type VertexInput = shader.VertexInput

// BufferUsage is the role a GPU buffer is created for.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
)

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// Size returns the byte size of one index.
func (f IndexFormat) Size() int {
	if f == IndexFormatUint16 {
		return 2
	}
	return 4
}

// BlendMode selects the color blending applied to subsequent draws.
type BlendMode int

const (
	// BlendModeOpaque disables blending.
	BlendModeOpaque BlendMode = iota

	// BlendModeAlpha blends with SRC_ALPHA, ONE_MINUS_SRC_ALPHA.
	BlendModeAlpha
)

// DeviceInfo describes the device a backend is driving.
type DeviceInfo struct {
	Vendor                 string
	Renderer               string
	Version                string
	ShadingLanguageVersion string

	// UniformOffsetAlignment is the minimum alignment of a uniform range start.
	UniformOffsetAlignment int

	// MaxUniformBlockSize is the largest uniform range that may be bound at once.
	MaxUniformBlockSize int

	// ClipDepthZeroToOne is true when clip-space depth spans [0, 1] instead of [-1, 1].
	ClipDepthZeroToOne bool
}

// ProgramSource holds the ordered source chunks for both stages of a program.
type ProgramSource struct {
	Vertex   []string
	Fragment []string
}

// AttributeBinding connects one program input location to a slice of the vertex buffer.
type AttributeBinding struct {
	Location       uint32
	ComponentCount uint32

	// Offset is the effective byte offset of the attribute's first element in the vertex buffer.
	Offset int
}

// VertexBindingDescriptor describes a vertex binding (a VAO): which buffers feed which program inputs.
type VertexBindingDescriptor struct {
	Label        string
	Program      ProgramHandle
	VertexBuffer BufferHandle
	IndexBuffer  BufferHandle
	IndexFormat  IndexFormat
	Stride       int
	Attributes   []AttributeBinding
}

// RendererBackend is the graphics API boundary used by every other engine component.
// All methods must be called from the goroutine that created the backend.
type RendererBackend interface {
	// Info returns the device description gathered when the backend was created.
	//
	// Returns:
	//   - DeviceInfo: the device's info strings and uniform limits
	Info() DeviceInfo

	// CompileProgram compiles the vertex and fragment chunk lists and links them into a program.
	// Failures never abort: the returned handle may be non-functional and the diagnostics explain why.
	//
	// Parameters:
	//   - name: label used in diagnostics
	//   - source: the chunk lists for both stages
	//
	// Returns:
	//   - ProgramHandle: the program handle
	//   - []string: compile and link diagnostics, empty on success
	CompileProgram(name string, source ProgramSource) (ProgramHandle, []string)

	// VertexInputs introspects the active vertex attributes of a program.
	//
	// Parameters:
	//   - program: the program to inspect
	//
	// Returns:
	//   - []VertexInput: inputs ordered by location
	VertexInputs(program ProgramHandle) []VertexInput

	// DeleteProgram releases a program. Unknown handles are ignored.
	//
	// Parameters:
	//   - program: the program to release
	DeleteProgram(program ProgramHandle)

	// CreateTexture uploads an RGB or RGBA 8-bit image with linear mipmapped filtering and clamp-to-edge addressing.
	//
	// Parameters:
	//   - staging: the decoded pixels
	//
	// Returns:
	//   - TextureHandle: the texture handle
	//   - error: error if the pixel layout is unsupported or the upload fails
	CreateTexture(staging common.TextureStagingData) (TextureHandle, error)

	// CreateBuffer creates a GPU buffer of the given size, optionally initialized with data.
	//
	// Parameters:
	//   - usage: the buffer role
	//   - size: size in bytes
	//   - data: initial contents, may be nil
	//
	// Returns:
	//   - BufferHandle: the buffer handle
	//   - error: error if creation fails
	CreateBuffer(usage BufferUsage, size int, data []byte) (BufferHandle, error)

	// MapBuffer maps a whole buffer for CPU writes.
	//
	// Parameters:
	//   - buffer: the buffer to map
	//
	// Returns:
	//   - []byte: a writable view of the buffer, valid until UnmapBuffer
	//   - error: error if the buffer is unknown or already mapped
	MapBuffer(buffer BufferHandle) ([]byte, error)

	// UnmapBuffer ends a mapping and makes the written bytes visible to the GPU.
	//
	// Parameters:
	//   - buffer: the mapped buffer
	UnmapBuffer(buffer BufferHandle)

	// CreateVertexBinding creates a vertex binding (VAO) for the descriptor.
	//
	// Parameters:
	//   - desc: the binding description
	//
	// Returns:
	//   - VertexBindingHandle: the binding handle
	//   - error: error if creation fails
	CreateVertexBinding(desc VertexBindingDescriptor) (VertexBindingHandle, error)

	// DeleteVertexBinding releases a vertex binding. Unknown handles are ignored.
	//
	// Parameters:
	//   - binding: the binding to release
	DeleteVertexBinding(binding VertexBindingHandle)

	// BeginFrame starts a frame: clears color and depth and sets the viewport.
	//
	// Parameters:
	//   - clearColor: the clear color
	//   - viewport: the viewport rectangle in pixels
	//
	// Returns:
	//   - error: error if the frame target could not be acquired
	BeginFrame(clearColor common.Color, viewport common.Viewport) error

	// UseProgram selects the program for subsequent draws.
	UseProgram(program ProgramHandle)

	// BindVertexBinding selects the vertex and index buffers for subsequent draws.
	BindVertexBinding(binding VertexBindingHandle)

	// BindTexture binds a texture to a texture unit.
	BindTexture(unit uint32, texture TextureHandle)

	// BindUniformRange binds a range of a uniform buffer to a uniform block binding.
	//
	// Parameters:
	//   - binding: the uniform block binding index
	//   - buffer: the uniform buffer
	//   - offset: start of the range, a multiple of UniformOffsetAlignment
	//   - size: size of the range in bytes
	BindUniformRange(binding uint32, buffer BufferHandle, offset, size int)

	// SetBlend selects the blend mode for subsequent draws.
	SetBlend(mode BlendMode)

	// DrawIndexed draws count indices of the bound vertex binding starting at byteOffset into the index buffer.
	//
	// Parameters:
	//   - count: number of indices
	//   - byteOffset: offset of the first index in bytes
	DrawIndexed(count int, byteOffset int)

	// PushDebugGroup opens a labelled command group for graphics debuggers. A no-op unless debug groups are enabled.
	PushDebugGroup(label string)

	// PopDebugGroup closes the innermost debug group.
	PopDebugGroup()

	// EndFrame finishes recording the frame and submits it.
	EndFrame()

	// Present shows the finished frame.
	Present()

	// Resize reconfigures the frame target for a new size in pixels.
	Resize(width, height int)

	// Release frees every GPU object the backend still owns.
	Release()
}
