package constant_buffer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// constantBuffer is the implementation of the ConstantBuffer interface.
type constantBuffer struct {
	backend   renderer.RendererBackend
	buffer    renderer.BufferHandle
	capacity  int
	alignment int

	mapped []byte
	head   int
}

// ConstantBuffer is a per-frame bump allocator over one mapped uniform buffer.
// Every frame the buffer is mapped, filled front to back with the values the frame's draws need,
// and unmapped before any draw reads it. Values are written little-endian in std140 scalar layout.
//
// Pushing or aligning outside a BeginFrame/EndFrame pair panics, as does any write past Capacity.
type ConstantBuffer interface {
	// Buffer returns the backing uniform buffer.
	//
	// Returns:
	//   - renderer.BufferHandle: the buffer handle to bind ranges of
	Buffer() renderer.BufferHandle

	// Capacity returns the size of the buffer in bytes.
	//
	// Returns:
	//   - int: capacity in bytes
	Capacity() int

	// Alignment returns the minimum uniform range offset alignment of the device.
	//
	// Returns:
	//   - int: the alignment in bytes
	Alignment() int

	// Head returns the offset of the next write.
	//
	// Returns:
	//   - int: the write head in bytes
	Head() int

	// InFrame reports whether the buffer is currently mapped.
	//
	// Returns:
	//   - bool: true between BeginFrame and EndFrame
	InFrame() bool

	// BeginFrame maps the buffer and resets the head to 0.
	//
	// Returns:
	//   - error: error if the buffer cannot be mapped
	BeginFrame() error

	// EndFrame unmaps the buffer, publishing the frame's writes.
	EndFrame()

	// AlignTo advances the head to the next multiple of n.
	//
	// Parameters:
	//   - n: the alignment in bytes
	//
	// Returns:
	//   - int: the new head
	AlignTo(n int) int

	// PushBytes copies raw bytes at the head.
	//
	// Parameters:
	//   - data: the bytes to write
	//
	// Returns:
	//   - int: the offset the bytes were written at
	PushBytes(data []byte) int

	// PushUint32 writes a 4-byte unsigned integer.
	PushUint32(v uint32) int

	// PushFloat32 writes a 4-byte float.
	PushFloat32(v float32) int

	// PushVec3 writes three floats (12 bytes).
	PushVec3(v mgl32.Vec3) int

	// PushVec4 writes four floats (16 bytes).
	PushVec4(v mgl32.Vec4) int

	// PushMat4 writes a column-major 4x4 matrix (64 bytes).
	PushMat4(m mgl32.Mat4) int
}

var _ ConstantBuffer = &constantBuffer{}

// NewConstantBuffer creates the uniform buffer through the backend. Capacity defaults to the device's
// MaxUniformBlockSize and alignment to its UniformOffsetAlignment.
//
// Parameters:
//   - backend: the backend that owns the buffer
//   - options: functional options overriding capacity or alignment
//
// Returns:
//   - ConstantBuffer: the allocator
//   - error: error if the buffer could not be created
func NewConstantBuffer(backend renderer.RendererBackend, options ...ConstantBufferBuilderOption) (ConstantBuffer, error) {
	info := backend.Info()
	cb := &constantBuffer{
		backend:   backend,
		capacity:  info.MaxUniformBlockSize,
		alignment: max(info.UniformOffsetAlignment, 1),
	}
	for _, opt := range options {
		opt(cb)
	}
	if cb.capacity <= 0 {
		return nil, fmt.Errorf("invalid constant buffer capacity %d", cb.capacity)
	}

	buf, err := backend.CreateBuffer(renderer.BufferUsageUniform, cb.capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create constant buffer: %w", err)
	}
	cb.buffer = buf
	return cb, nil
}

func (c *constantBuffer) Buffer() renderer.BufferHandle {
	return c.buffer
}

func (c *constantBuffer) Capacity() int {
	return c.capacity
}

func (c *constantBuffer) Alignment() int {
	return c.alignment
}

func (c *constantBuffer) Head() int {
	return c.head
}

func (c *constantBuffer) InFrame() bool {
	return c.mapped != nil
}

func (c *constantBuffer) BeginFrame() error {
	if c.mapped != nil {
		return fmt.Errorf("constant buffer frame already begun")
	}
	data, err := c.backend.MapBuffer(c.buffer)
	if err != nil {
		return fmt.Errorf("failed to map constant buffer: %w", err)
	}
	if len(data) < c.capacity {
		c.backend.UnmapBuffer(c.buffer)
		return fmt.Errorf("mapped constant buffer is %d bytes, want %d", len(data), c.capacity)
	}
	c.mapped = data[:c.capacity]
	c.head = 0
	return nil
}

func (c *constantBuffer) EndFrame() {
	if c.mapped == nil {
		return
	}
	c.backend.UnmapBuffer(c.buffer)
	c.mapped = nil
}

func (c *constantBuffer) AlignTo(n int) int {
	c.mustBeInFrame()
	if n <= 1 {
		return c.head
	}
	aligned := (c.head + n - 1) / n * n
	c.reserve(aligned - c.head)
	c.head = aligned
	return c.head
}

func (c *constantBuffer) PushBytes(data []byte) int {
	c.mustBeInFrame()
	offset := c.head
	c.reserve(len(data))
	copy(c.mapped[offset:], data)
	c.head += len(data)
	return offset
}

func (c *constantBuffer) PushUint32(v uint32) int {
	c.mustBeInFrame()
	offset := c.head
	c.reserve(4)
	binary.LittleEndian.PutUint32(c.mapped[offset:], v)
	c.head += 4
	return offset
}

func (c *constantBuffer) PushFloat32(v float32) int {
	return c.PushUint32(math.Float32bits(v))
}

func (c *constantBuffer) PushVec3(v mgl32.Vec3) int {
	return c.pushFloats(v[:])
}

func (c *constantBuffer) PushVec4(v mgl32.Vec4) int {
	return c.pushFloats(v[:])
}

func (c *constantBuffer) PushMat4(m mgl32.Mat4) int {
	return c.pushFloats(m[:])
}

func (c *constantBuffer) pushFloats(values []float32) int {
	c.mustBeInFrame()
	offset := c.head
	c.reserve(len(values) * 4)
	for i, f := range values {
		binary.LittleEndian.PutUint32(c.mapped[offset+i*4:], math.Float32bits(f))
	}
	c.head += len(values) * 4
	return offset
}

// reserve panics unless n more bytes fit after the head.
func (c *constantBuffer) reserve(n int) {
	if c.head+n > c.capacity {
		panic(fmt.Sprintf("constant buffer overflow: writing %d bytes at offset %d exceeds capacity %d", n, c.head, c.capacity))
	}
}

func (c *constantBuffer) mustBeInFrame() {
	if c.mapped == nil {
		panic("constant buffer written outside of BeginFrame/EndFrame")
	}
}
