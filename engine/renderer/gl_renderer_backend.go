package renderer

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/window"
	"github.com/go-gl/gl/v4.3-core/gl"
)

// glBuffer is a buffer object plus the state needed to map it.
type glBuffer struct {
	target uint32
	size   int
	mapped bool
}

// glVertexBinding is a vertex array object plus the index type its draws use.
type glVertexBinding struct {
	indexType uint32
}

type glRendererBackendImpl struct {
	window      window.Window
	info        DeviceInfo
	debugGroups bool

	programs map[ProgramHandle]struct{}
	textures map[TextureHandle]struct{}
	buffers  map[BufferHandle]*glBuffer
	bindings map[VertexBindingHandle]*glVertexBinding

	boundIndexType uint32
}

var _ RendererBackend = &glRendererBackendImpl{}

// glAttribComponents maps GLSL attribute types to their scalar component count.
var glAttribComponents = map[uint32]uint32{
	gl.FLOAT:             1,
	gl.FLOAT_VEC2:        2,
	gl.FLOAT_VEC3:        3,
	gl.FLOAT_VEC4:        4,
	gl.INT:               1,
	gl.INT_VEC2:          2,
	gl.INT_VEC3:          3,
	gl.INT_VEC4:          4,
	gl.UNSIGNED_INT:      1,
	gl.UNSIGNED_INT_VEC2: 2,
	gl.UNSIGNED_INT_VEC3: 3,
	gl.UNSIGNED_INT_VEC4: 4,
}

var glBufferTargets = map[BufferUsage]uint32{
	BufferUsageVertex:  gl.ARRAY_BUFFER,
	BufferUsageIndex:   gl.ELEMENT_ARRAY_BUFFER,
	BufferUsageUniform: gl.UNIFORM_BUFFER,
}

func newGLRendererBackend(win window.Window, r *renderer) (RendererBackend, error) {
	if win.GraphicsAPI() != window.GraphicsAPIOpenGL {
		return nil, errors.New("window was not created with an OpenGL context")
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL bindings: %w", err)
	}

	if r.presentMode == PresentModeUncapped {
		win.SetSwapInterval(0)
	} else {
		win.SetSwapInterval(1)
	}

	b := &glRendererBackendImpl{
		window:      win,
		debugGroups: r.debugGroups,
		programs:    make(map[ProgramHandle]struct{}),
		textures:    make(map[TextureHandle]struct{}),
		buffers:     make(map[BufferHandle]*glBuffer),
		bindings:    make(map[VertexBindingHandle]*glVertexBinding),
	}

	var alignment, maxBlock int32
	gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &alignment)
	gl.GetIntegerv(gl.MAX_UNIFORM_BLOCK_SIZE, &maxBlock)

	b.info = DeviceInfo{
		Vendor:                 gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer:               gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:                gl.GoStr(gl.GetString(gl.VERSION)),
		ShadingLanguageVersion: gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		UniformOffsetAlignment: int(alignment),
		MaxUniformBlockSize:    r.capUniformBlockSize(int(maxBlock)),
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	log.Printf("[Renderer] OpenGL %s on %s", b.info.Version, b.info.Renderer)
	return b, nil
}

func (b *glRendererBackendImpl) Info() DeviceInfo {
	return b.info
}

func (b *glRendererBackendImpl) CompileProgram(name string, source ProgramSource) (ProgramHandle, []string) {
	var diagnostics []string

	vs, err := compileGLShader(gl.VERTEX_SHADER, source.Vertex)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Sprintf("%s: vertex shader: %v", name, err))
	}
	fs, err := compileGLShader(gl.FRAGMENT_SHADER, source.Fragment)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Sprintf("%s: fragment shader: %v", name, err))
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		diagnostics = append(diagnostics, fmt.Sprintf("%s: link: %s", name, glInfoLog(logLength, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLength, nil, buf)
		})))
	}

	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	label := gl.Str(name + "\x00")
	gl.ObjectLabel(gl.PROGRAM, program, -1, label)

	h := ProgramHandle(program)
	b.programs[h] = struct{}{}
	return h, diagnostics
}

// compileGLShader compiles one stage from its source chunks. The shader object is returned even when
// compilation fails so the program can still be created.
func compileGLShader(kind uint32, chunks []string) (uint32, error) {
	s := gl.CreateShader(kind)
	if len(chunks) == 0 {
		return s, errors.New("no source")
	}

	csources, free := gl.Strs(chunks...)
	gl.ShaderSource(s, int32(len(chunks)), csources, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(s, gl.INFO_LOG_LENGTH, &logLength)
		return s, errors.New(glInfoLog(logLength, func(buf *uint8) {
			gl.GetShaderInfoLog(s, logLength, nil, buf)
		}))
	}
	return s, nil
}

// glInfoLog reads an info log of the given length through fill.
func glInfoLog(length int32, fill func(buf *uint8)) string {
	if length <= 0 {
		return "unknown error"
	}
	buf := strings.Repeat("\x00", int(length+1))
	fill(gl.Str(buf))
	return strings.TrimRight(buf, "\x00\n")
}

func (b *glRendererBackendImpl) VertexInputs(program ProgramHandle) []VertexInput {
	p := uint32(program)
	var count, maxLength int32
	gl.GetProgramiv(p, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(p, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLength)
	if count == 0 || maxLength <= 0 {
		return nil
	}

	inputs := make([]VertexInput, 0, count)
	nameBuf := make([]uint8, maxLength+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(p, uint32(i), maxLength, &length, &size, &xtype, &nameBuf[0])
		name := string(nameBuf[:length])

		// built-ins such as gl_VertexID report location -1
		location := gl.GetAttribLocation(p, gl.Str(name+"\x00"))
		if location < 0 {
			continue
		}
		components, ok := glAttribComponents[xtype]
		if !ok {
			components = 4
		}
		inputs = append(inputs, VertexInput{Location: uint32(location), ComponentCount: components})
	}

	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].Location < inputs[j].Location
	})
	return inputs
}

func (b *glRendererBackendImpl) DeleteProgram(program ProgramHandle) {
	if _, ok := b.programs[program]; !ok {
		return
	}
	gl.DeleteProgram(uint32(program))
	delete(b.programs, program)
}

func (b *glRendererBackendImpl) CreateTexture(staging common.TextureStagingData) (TextureHandle, error) {
	var internalFormat int32
	var format uint32
	switch staging.Channels {
	case 3:
		internalFormat, format = gl.RGB8, gl.RGB
	case 4:
		internalFormat, format = gl.RGBA8, gl.RGBA
	default:
		return 0, fmt.Errorf("%w: %d", common.ErrUnsupportedChannels, staging.Channels)
	}
	if uint32(len(staging.Pixels)) < staging.RowBytes()*staging.Height {
		return 0, fmt.Errorf("texture data too short: %d bytes for %dx%d", len(staging.Pixels), staging.Width, staging.Height)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(staging.Width), int32(staging.Height), 0, format, gl.UNSIGNED_BYTE, gl.Ptr(staging.Pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	h := TextureHandle(tex)
	b.textures[h] = struct{}{}
	return h, nil
}

func (b *glRendererBackendImpl) CreateBuffer(usage BufferUsage, size int, data []byte) (BufferHandle, error) {
	target, ok := glBufferTargets[usage]
	if !ok {
		return 0, fmt.Errorf("unknown buffer usage %d", usage)
	}
	if size <= 0 {
		return 0, fmt.Errorf("invalid buffer size %d", size)
	}
	if len(data) > size {
		return 0, fmt.Errorf("initial data (%d bytes) exceeds buffer size %d", len(data), size)
	}

	hint := uint32(gl.STATIC_DRAW)
	if usage == BufferUsageUniform {
		hint = gl.DYNAMIC_DRAW
	}

	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(target, buf)
	gl.BufferData(target, size, nil, hint)
	if len(data) > 0 {
		gl.BufferSubData(target, 0, len(data), gl.Ptr(data))
	}
	gl.BindBuffer(target, 0)

	h := BufferHandle(buf)
	b.buffers[h] = &glBuffer{target: target, size: size}
	return h, nil
}

func (b *glRendererBackendImpl) MapBuffer(buffer BufferHandle) ([]byte, error) {
	buf, ok := b.buffers[buffer]
	if !ok {
		return nil, fmt.Errorf("unknown buffer %d", buffer)
	}
	if buf.mapped {
		return nil, fmt.Errorf("buffer %d is already mapped", buffer)
	}

	gl.BindBuffer(buf.target, uint32(buffer))
	ptr := gl.MapBuffer(buf.target, gl.WRITE_ONLY)
	if ptr == nil {
		gl.BindBuffer(buf.target, 0)
		return nil, fmt.Errorf("glMapBuffer failed for buffer %d", buffer)
	}
	buf.mapped = true
	return unsafe.Slice((*byte)(ptr), buf.size), nil
}

func (b *glRendererBackendImpl) UnmapBuffer(buffer BufferHandle) {
	buf, ok := b.buffers[buffer]
	if !ok || !buf.mapped {
		return
	}
	gl.BindBuffer(buf.target, uint32(buffer))
	if !gl.UnmapBuffer(buf.target) {
		log.Printf("[Renderer] buffer %d contents were lost while mapped", buffer)
	}
	gl.BindBuffer(buf.target, 0)
	buf.mapped = false
}

func (b *glRendererBackendImpl) CreateVertexBinding(desc VertexBindingDescriptor) (VertexBindingHandle, error) {
	if _, ok := b.buffers[desc.VertexBuffer]; !ok {
		return 0, fmt.Errorf("unknown vertex buffer %d", desc.VertexBuffer)
	}
	if _, ok := b.buffers[desc.IndexBuffer]; !ok {
		return 0, fmt.Errorf("unknown index buffer %d", desc.IndexBuffer)
	}

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(desc.VertexBuffer))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(desc.IndexBuffer))
	for _, attr := range desc.Attributes {
		gl.EnableVertexAttribArray(attr.Location)
		gl.VertexAttribPointerWithOffset(attr.Location, int32(attr.ComponentCount), gl.FLOAT, false, int32(desc.Stride), uintptr(attr.Offset))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if desc.Label != "" {
		gl.ObjectLabel(gl.VERTEX_ARRAY, vao, -1, gl.Str(desc.Label+"\x00"))
	}

	indexType := uint32(gl.UNSIGNED_INT)
	if desc.IndexFormat == IndexFormatUint16 {
		indexType = gl.UNSIGNED_SHORT
	}
	h := VertexBindingHandle(vao)
	b.bindings[h] = &glVertexBinding{indexType: indexType}
	return h, nil
}

func (b *glRendererBackendImpl) DeleteVertexBinding(binding VertexBindingHandle) {
	if _, ok := b.bindings[binding]; !ok {
		return
	}
	vao := uint32(binding)
	gl.DeleteVertexArrays(1, &vao)
	delete(b.bindings, binding)
}

func (b *glRendererBackendImpl) BeginFrame(clearColor common.Color, viewport common.Viewport) error {
	gl.Viewport(int32(viewport.X), int32(viewport.Y), int32(viewport.Width), int32(viewport.Height))
	gl.ClearColor(clearColor.R, clearColor.G, clearColor.B, clearColor.A)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (b *glRendererBackendImpl) UseProgram(program ProgramHandle) {
	gl.UseProgram(uint32(program))
}

func (b *glRendererBackendImpl) BindVertexBinding(binding VertexBindingHandle) {
	vb, ok := b.bindings[binding]
	if !ok {
		gl.BindVertexArray(0)
		return
	}
	gl.BindVertexArray(uint32(binding))
	b.boundIndexType = vb.indexType
}

func (b *glRendererBackendImpl) BindTexture(unit uint32, texture TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
}

func (b *glRendererBackendImpl) BindUniformRange(binding uint32, buffer BufferHandle, offset, size int) {
	gl.BindBufferRange(gl.UNIFORM_BUFFER, binding, uint32(buffer), offset, size)
}

func (b *glRendererBackendImpl) SetBlend(mode BlendMode) {
	switch mode {
	case BlendModeAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

func (b *glRendererBackendImpl) DrawIndexed(count int, byteOffset int) {
	if b.boundIndexType == 0 || count <= 0 {
		return
	}
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(count), b.boundIndexType, uintptr(byteOffset))
}

func (b *glRendererBackendImpl) PushDebugGroup(label string) {
	if !b.debugGroups {
		return
	}
	gl.PushDebugGroup(gl.DEBUG_SOURCE_APPLICATION, 0, -1, gl.Str(label+"\x00"))
}

func (b *glRendererBackendImpl) PopDebugGroup() {
	if !b.debugGroups {
		return
	}
	gl.PopDebugGroup()
}

func (b *glRendererBackendImpl) EndFrame() {
	gl.BindVertexArray(0)
	b.boundIndexType = 0
}

func (b *glRendererBackendImpl) Present() {
	b.window.SwapBuffers()
}

// Resize is a no-op for OpenGL: the default framebuffer follows the window and the viewport is set every frame.
func (b *glRendererBackendImpl) Resize(width, height int) {}

func (b *glRendererBackendImpl) Release() {
	for h := range b.bindings {
		b.DeleteVertexBinding(h)
	}
	for h := range b.programs {
		b.DeleteProgram(h)
	}
	for h := range b.textures {
		tex := uint32(h)
		gl.DeleteTextures(1, &tex)
	}
	for h := range b.buffers {
		buf := uint32(h)
		gl.DeleteBuffers(1, &buf)
	}
	clear(b.textures)
	clear(b.buffers)
}
