// Package renderertest provides a recording RendererBackend for GPU-free tests.
package renderertest

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
)

// Program is a program compiled by the fake backend.
type Program struct {
	Name    string
	Source  renderer.ProgramSource
	Deleted bool
}

// Buffer is a buffer created by the fake backend. Data holds the bytes visible to the "GPU".
type Buffer struct {
	Usage    renderer.BufferUsage
	Data     []byte
	Mapped   bool
	MapCount int
}

// VertexBinding is a vertex binding created by the fake backend.
type VertexBinding struct {
	Desc    renderer.VertexBindingDescriptor
	Deleted bool
}

// UniformRange is a bound uniform range.
type UniformRange struct {
	Buffer renderer.BufferHandle
	Offset int
	Size   int
}

// Draw is a recorded DrawIndexed call together with the state bound at the time.
type Draw struct {
	Program    renderer.ProgramHandle
	Binding    renderer.VertexBindingHandle
	Texture    renderer.TextureHandle
	Blend      renderer.BlendMode
	Uniforms   map[uint32]UniformRange
	Count      int
	ByteOffset int
}

// Backend is a renderer.RendererBackend that keeps everything in memory and records frame commands.
type Backend struct {
	DeviceInfo renderer.DeviceInfo

	// Inputs is returned by VertexInputs for programs without an entry in ProgramInputs.
	Inputs []renderer.VertexInput
	// ProgramInputs overrides the vertex inputs per program name.
	ProgramInputs map[string][]renderer.VertexInput
	// CompileErrors makes CompileProgram report the given diagnostics for a program name.
	CompileErrors map[string][]string

	Programs []Program
	Textures []common.TextureStagingData
	Buffers  []Buffer
	Bindings []VertexBinding

	// Calls lists every frame command in order, e.g. "BeginFrame", "UseProgram", "DrawIndexed".
	Calls  []string
	Draws  []Draw
	Frames int

	DebugGroups []string
	Presented   int
	Size        [2]int

	program  renderer.ProgramHandle
	binding  renderer.VertexBindingHandle
	textures map[uint32]renderer.TextureHandle
	uniforms map[uint32]UniformRange
	blend    renderer.BlendMode
}

var _ renderer.RendererBackend = &Backend{}

// New creates a fake backend reporting a 256-byte uniform offset alignment and a 64 KiB uniform block size.
func New() *Backend {
	return &Backend{
		DeviceInfo: renderer.DeviceInfo{
			Vendor:                 "renderertest",
			Renderer:               "fake",
			Version:                "4.3 fake",
			ShadingLanguageVersion: "4.30 fake",
			UniformOffsetAlignment: 256,
			MaxUniformBlockSize:    65536,
		},
		Inputs: []renderer.VertexInput{
			{Location: 0, ComponentCount: 3},
			{Location: 1, ComponentCount: 2},
		},
		ProgramInputs: make(map[string][]renderer.VertexInput),
		CompileErrors: make(map[string][]string),
		textures:      make(map[uint32]renderer.TextureHandle),
		uniforms:      make(map[uint32]UniformRange),
	}
}

func (b *Backend) Info() renderer.DeviceInfo {
	return b.DeviceInfo
}

func (b *Backend) CompileProgram(name string, source renderer.ProgramSource) (renderer.ProgramHandle, []string) {
	b.Programs = append(b.Programs, Program{Name: name, Source: source})
	return renderer.ProgramHandle(len(b.Programs)), b.CompileErrors[name]
}

func (b *Backend) VertexInputs(program renderer.ProgramHandle) []renderer.VertexInput {
	p := b.ProgramByHandle(program)
	if p == nil {
		return nil
	}
	if inputs, ok := b.ProgramInputs[p.Name]; ok {
		return inputs
	}
	return b.Inputs
}

func (b *Backend) DeleteProgram(program renderer.ProgramHandle) {
	if p := b.ProgramByHandle(program); p != nil {
		p.Deleted = true
	}
}

// ProgramByHandle returns the recorded program for a handle, or nil.
func (b *Backend) ProgramByHandle(program renderer.ProgramHandle) *Program {
	if program == 0 || int(program) > len(b.Programs) {
		return nil
	}
	return &b.Programs[program-1]
}

func (b *Backend) CreateTexture(staging common.TextureStagingData) (renderer.TextureHandle, error) {
	if staging.Channels != 3 && staging.Channels != 4 {
		return 0, fmt.Errorf("%w: %d", common.ErrUnsupportedChannels, staging.Channels)
	}
	b.Textures = append(b.Textures, staging)
	return renderer.TextureHandle(len(b.Textures)), nil
}

func (b *Backend) CreateBuffer(usage renderer.BufferUsage, size int, data []byte) (renderer.BufferHandle, error) {
	if size <= 0 || len(data) > size {
		return 0, fmt.Errorf("invalid buffer size %d for %d bytes", size, len(data))
	}
	buf := Buffer{Usage: usage, Data: make([]byte, size)}
	copy(buf.Data, data)
	b.Buffers = append(b.Buffers, buf)
	return renderer.BufferHandle(len(b.Buffers)), nil
}

// Buffer returns the recorded buffer for a handle, or nil.
func (b *Backend) Buffer(buffer renderer.BufferHandle) *Buffer {
	if buffer == 0 || int(buffer) > len(b.Buffers) {
		return nil
	}
	return &b.Buffers[buffer-1]
}

func (b *Backend) MapBuffer(buffer renderer.BufferHandle) ([]byte, error) {
	buf := b.Buffer(buffer)
	if buf == nil {
		return nil, fmt.Errorf("unknown buffer %d", buffer)
	}
	if buf.Mapped {
		return nil, fmt.Errorf("buffer %d is already mapped", buffer)
	}
	buf.Mapped = true
	buf.MapCount++
	return buf.Data, nil
}

func (b *Backend) UnmapBuffer(buffer renderer.BufferHandle) {
	if buf := b.Buffer(buffer); buf != nil {
		buf.Mapped = false
	}
}

func (b *Backend) CreateVertexBinding(desc renderer.VertexBindingDescriptor) (renderer.VertexBindingHandle, error) {
	if b.Buffer(desc.VertexBuffer) == nil || b.Buffer(desc.IndexBuffer) == nil {
		return 0, fmt.Errorf("unknown buffers %d/%d", desc.VertexBuffer, desc.IndexBuffer)
	}
	b.Bindings = append(b.Bindings, VertexBinding{Desc: desc})
	return renderer.VertexBindingHandle(len(b.Bindings)), nil
}

func (b *Backend) DeleteVertexBinding(binding renderer.VertexBindingHandle) {
	if binding != 0 && int(binding) <= len(b.Bindings) {
		b.Bindings[binding-1].Deleted = true
	}
}

func (b *Backend) BeginFrame(clearColor common.Color, viewport common.Viewport) error {
	b.Calls = append(b.Calls, "BeginFrame")
	b.Frames++
	b.program, b.binding, b.blend = 0, 0, renderer.BlendModeOpaque
	clear(b.textures)
	clear(b.uniforms)
	return nil
}

func (b *Backend) UseProgram(program renderer.ProgramHandle) {
	b.Calls = append(b.Calls, "UseProgram")
	b.program = program
}

func (b *Backend) BindVertexBinding(binding renderer.VertexBindingHandle) {
	b.Calls = append(b.Calls, "BindVertexBinding")
	b.binding = binding
}

func (b *Backend) BindTexture(unit uint32, texture renderer.TextureHandle) {
	b.Calls = append(b.Calls, "BindTexture")
	b.textures[unit] = texture
}

func (b *Backend) BindUniformRange(binding uint32, buffer renderer.BufferHandle, offset, size int) {
	b.Calls = append(b.Calls, "BindUniformRange")
	b.uniforms[binding] = UniformRange{Buffer: buffer, Offset: offset, Size: size}
}

func (b *Backend) SetBlend(mode renderer.BlendMode) {
	b.Calls = append(b.Calls, "SetBlend")
	b.blend = mode
}

func (b *Backend) DrawIndexed(count int, byteOffset int) {
	b.Calls = append(b.Calls, "DrawIndexed")
	uniforms := make(map[uint32]UniformRange, len(b.uniforms))
	for k, v := range b.uniforms {
		uniforms[k] = v
	}
	b.Draws = append(b.Draws, Draw{
		Program:    b.program,
		Binding:    b.binding,
		Texture:    b.textures[0],
		Blend:      b.blend,
		Uniforms:   uniforms,
		Count:      count,
		ByteOffset: byteOffset,
	})
}

func (b *Backend) PushDebugGroup(label string) {
	b.DebugGroups = append(b.DebugGroups, label)
}

func (b *Backend) PopDebugGroup() {}

func (b *Backend) EndFrame() {
	b.Calls = append(b.Calls, "EndFrame")
}

func (b *Backend) Present() {
	b.Presented++
}

func (b *Backend) Resize(width, height int) {
	b.Size = [2]int{width, height}
}

func (b *Backend) Release() {}

// ResetFrameLog drops recorded calls and draws, keeping resources.
func (b *Backend) ResetFrameLog() {
	b.Calls = nil
	b.Draws = nil
	b.DebugGroups = nil
}
