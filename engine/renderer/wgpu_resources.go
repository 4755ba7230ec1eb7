package renderer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

// wgpuProgram is a compiled vertex/fragment pair plus its pipeline layout.
// Texture unit u is declared in bind group 0; uniform block binding b lives in bind group b+1.
type wgpuProgram struct {
	name           string
	valid          bool
	vertex         shader.Shader
	fragment       shader.Shader
	vertexModule   *wgpu.ShaderModule
	fragmentModule *wgpu.ShaderModule
	groupDescs     map[int]wgpu.BindGroupLayoutDescriptor
	groupLayouts   []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	inputs         []VertexInput
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *wgpuTexture) release() {
	t.view.Release()
	t.texture.Release()
}

// wgpuBuffer is a GPU buffer with a CPU shadow used for mapping.
type wgpuBuffer struct {
	buffer *wgpu.Buffer
	usage  BufferUsage
	size   int
	shadow []byte
	mapped bool
}

// wgpuVertexBinding is the WebGPU stand-in for a VAO: a vertex buffer layout relative to baseOffset.
type wgpuVertexBinding struct {
	desc        VertexBindingDescriptor
	baseOffset  uint64
	layout      wgpu.VertexBufferLayout
	indexFormat wgpu.IndexFormat
}

type pipelineKey struct {
	program ProgramHandle
	binding VertexBindingHandle
	blend   BlendMode
}

// maxTextureUnits bounds how many texture units a bind group 0 may consume.
const maxTextureUnits = 4

type bindGroupKey struct {
	program  ProgramHandle
	group    int
	buffer   BufferHandle
	size     int
	textures [maxTextureUnits]TextureHandle
}

func (b *wgpuRendererBackendImpl) CompileProgram(name string, source ProgramSource) (ProgramHandle, []string) {
	h := ProgramHandle(b.nextHandle())
	prog := &wgpuProgram{name: name}
	b.programs[h] = prog

	var diagnostics []string
	var err error
	prog.vertex, err = shader.NewShader(name+" vertex", shader.ShaderTypeVertex, source.Vertex...)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Sprintf("%s: %v", name, err))
	}
	prog.fragment, err = shader.NewShader(name+" fragment", shader.ShaderTypeFragment, source.Fragment...)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Sprintf("%s: %v", name, err))
	}
	if len(diagnostics) > 0 {
		return h, diagnostics
	}

	for _, s := range []shader.Shader{prog.vertex, prog.fragment} {
		if _, err := naga.Compile(s.Source()); err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("%s (%s): %v", name, s.ShaderType(), err))
		}
	}
	if len(diagnostics) > 0 {
		return h, diagnostics
	}

	prog.inputs = prog.vertex.VertexInputs()
	if err := b.buildProgram(prog); err != nil {
		return h, append(diagnostics, fmt.Sprintf("%s: %v", name, err))
	}
	prog.valid = true
	return h, nil
}

// buildProgram creates the shader modules, bind group layouts and pipeline layout of a parsed program.
func (b *wgpuRendererBackendImpl) buildProgram(prog *wgpuProgram) error {
	var err error
	prog.vertexModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          prog.vertex.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: prog.vertex.Source()},
	})
	if err != nil {
		return err
	}
	prog.fragmentModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          prog.fragment.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: prog.fragment.Source()},
	})
	if err != nil {
		return err
	}

	prog.groupDescs = shader.MergeBindGroupLayouts(prog.vertex.BindGroupLayoutDescriptors(), prog.fragment.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range prog.groupDescs {
		maxGroup = max(maxGroup, g)
	}
	if maxGroup >= int(b.limits.MaxBindGroups) {
		return fmt.Errorf("bind group %d exceeds the device limit of %d groups", maxGroup, b.limits.MaxBindGroups)
	}

	// Unused group indices still need an (empty) layout in the pipeline layout.
	prog.groupLayouts = make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range prog.groupLayouts {
		desc := prog.groupDescs[g]
		desc.Label = fmt.Sprintf("%s group %d", prog.name, g)
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		prog.groupLayouts[g] = layout
	}

	prog.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            prog.name,
		BindGroupLayouts: prog.groupLayouts,
	})
	return err
}

func (b *wgpuRendererBackendImpl) VertexInputs(program ProgramHandle) []VertexInput {
	if prog, ok := b.programs[program]; ok {
		return prog.inputs
	}
	return nil
}

func (b *wgpuRendererBackendImpl) DeleteProgram(program ProgramHandle) {
	prog, ok := b.programs[program]
	if !ok {
		return
	}
	for key, p := range b.pipelines {
		if key.program == program {
			p.Release()
			delete(b.pipelines, key)
		}
	}
	for key, bg := range b.bindGroups {
		if key.program == program {
			bg.Release()
			delete(b.bindGroups, key)
		}
	}
	if prog.pipelineLayout != nil {
		prog.pipelineLayout.Release()
	}
	for _, layout := range prog.groupLayouts {
		if layout != nil {
			layout.Release()
		}
	}
	if prog.vertexModule != nil {
		prog.vertexModule.Release()
	}
	if prog.fragmentModule != nil {
		prog.fragmentModule.Release()
	}
	delete(b.programs, program)
}

func (b *wgpuRendererBackendImpl) CreateTexture(staging common.TextureStagingData) (TextureHandle, error) {
	rgba, err := common.ExpandToRGBA(staging)
	if err != nil {
		return 0, err
	}
	if uint32(len(rgba.Pixels)) < rgba.RowBytes()*rgba.Height {
		return 0, fmt.Errorf("texture data too short: %d bytes for %dx%d", len(rgba.Pixels), rgba.Width, rgba.Height)
	}
	levels := common.MipChain(rgba)

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              rgba.Width,
			Height:             rgba.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
	})
	if err != nil {
		return 0, err
	}

	for i, level := range levels {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: uint32(i),
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			level.Pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  level.RowBytes(),
				RowsPerImage: level.Height,
			},
			&wgpu.Extent3D{
				Width:              level.Width,
				Height:             level.Height,
				DepthOrArrayLayers: 1,
			},
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, err
	}

	h := TextureHandle(b.nextHandle())
	b.textures[h] = &wgpuTexture{texture: tex, view: view}
	return h, nil
}

var wgpuBufferUsages = map[BufferUsage]wgpu.BufferUsage{
	BufferUsageVertex:  wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	BufferUsageIndex:   wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	BufferUsageUniform: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
}

func (b *wgpuRendererBackendImpl) CreateBuffer(usage BufferUsage, size int, data []byte) (BufferHandle, error) {
	flags, ok := wgpuBufferUsages[usage]
	if !ok {
		return 0, fmt.Errorf("unknown buffer usage %d", usage)
	}
	if size <= 0 {
		return 0, fmt.Errorf("invalid buffer size %d", size)
	}
	if len(data) > size {
		return 0, fmt.Errorf("initial data (%d bytes) exceeds buffer size %d", len(data), size)
	}

	// Queue writes must be a multiple of 4 bytes.
	padded := common.Align(size, 4)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Size:  uint64(padded),
		Usage: flags,
	})
	if err != nil {
		return 0, err
	}

	shadow := make([]byte, padded)
	copy(shadow, data)
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, shadow)
	}

	h := BufferHandle(b.nextHandle())
	b.buffers[h] = &wgpuBuffer{buffer: buf, usage: usage, size: size, shadow: shadow}
	return h, nil
}

func (b *wgpuRendererBackendImpl) MapBuffer(buffer BufferHandle) ([]byte, error) {
	buf, ok := b.buffers[buffer]
	if !ok {
		return nil, fmt.Errorf("unknown buffer %d", buffer)
	}
	if buf.mapped {
		return nil, fmt.Errorf("buffer %d is already mapped", buffer)
	}
	buf.mapped = true
	return buf.shadow[:buf.size], nil
}

func (b *wgpuRendererBackendImpl) UnmapBuffer(buffer BufferHandle) {
	buf, ok := b.buffers[buffer]
	if !ok || !buf.mapped {
		return
	}
	b.queue.WriteBuffer(buf.buffer, 0, buf.shadow)
	buf.mapped = false
}

func (b *wgpuRendererBackendImpl) CreateVertexBinding(desc VertexBindingDescriptor) (VertexBindingHandle, error) {
	if _, ok := b.buffers[desc.VertexBuffer]; !ok {
		return 0, fmt.Errorf("unknown vertex buffer %d", desc.VertexBuffer)
	}
	if _, ok := b.buffers[desc.IndexBuffer]; !ok {
		return 0, fmt.Errorf("unknown index buffer %d", desc.IndexBuffer)
	}
	if len(desc.Attributes) == 0 {
		return 0, errors.New("vertex binding has no attributes")
	}

	// The vertex buffer is bound at the lowest attribute offset; attribute offsets become relative to it.
	base := desc.Attributes[0].Offset
	for _, attr := range desc.Attributes[1:] {
		base = min(base, attr.Offset)
	}

	attrs := make([]wgpu.VertexAttribute, 0, len(desc.Attributes))
	for _, attr := range desc.Attributes {
		format, ok := shader.FloatVertexFormat(attr.ComponentCount)
		if !ok {
			return 0, fmt.Errorf("location %d: unsupported component count %d", attr.Location, attr.ComponentCount)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(attr.Offset - base),
			ShaderLocation: attr.Location,
		})
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].ShaderLocation < attrs[j].ShaderLocation
	})

	indexFormat := wgpu.IndexFormatUint32
	if desc.IndexFormat == IndexFormatUint16 {
		indexFormat = wgpu.IndexFormatUint16
	}

	h := VertexBindingHandle(b.nextHandle())
	b.bindings[h] = &wgpuVertexBinding{
		desc:       desc,
		baseOffset: uint64(base),
		layout: wgpu.VertexBufferLayout{
			ArrayStride: uint64(desc.Stride),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		},
		indexFormat: indexFormat,
	}
	return h, nil
}

func (b *wgpuRendererBackendImpl) DeleteVertexBinding(binding VertexBindingHandle) {
	if _, ok := b.bindings[binding]; !ok {
		return
	}
	for key, p := range b.pipelines {
		if key.binding == binding {
			p.Release()
			delete(b.pipelines, key)
		}
	}
	delete(b.bindings, binding)
}

// pipelineFor returns the render pipeline for a program, vertex binding and blend mode, creating it on first use.
func (b *wgpuRendererBackendImpl) pipelineFor(handle ProgramHandle, prog *wgpuProgram, vb *wgpuVertexBinding, blend BlendMode) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{program: handle, binding: b.currentBinding, blend: blend}
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if blend == BlendModeAlpha {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  prog.name + " Render Pipeline",
		Layout: prog.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     prog.vertexModule,
			EntryPoint: prog.vertex.EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{vb.layout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     prog.fragmentModule,
			EntryPoint: prog.fragment.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	b.pipelines[key] = created
	return created, nil
}

// bindGroupFor resolves the bind group and dynamic offsets for one group of the current program from the bound state.
func (b *wgpuRendererBackendImpl) bindGroupFor(handle ProgramHandle, prog *wgpuProgram, group int) (*wgpu.BindGroup, []uint32, error) {
	desc := prog.groupDescs[group]
	key := bindGroupKey{program: handle, group: group}
	var offsets []uint32
	var uniform *wgpuBuffer

	if group == 0 {
		unit := 0
		for _, entry := range desc.Entries {
			if entry.Texture.SampleType == wgpu.TextureSampleTypeUndefined {
				continue
			}
			if unit >= maxTextureUnits {
				return nil, nil, fmt.Errorf("more than %d textures", maxTextureUnits)
			}
			tex, ok := b.boundTextures[uint32(unit)]
			if !ok {
				return nil, nil, fmt.Errorf("no texture bound on unit %d", unit)
			}
			key.textures[unit] = tex
			unit++
		}
	} else if len(desc.Entries) > 0 {
		r, ok := b.boundUniforms[uint32(group-1)]
		if !ok {
			return nil, nil, fmt.Errorf("no uniform range bound at binding %d", group-1)
		}
		uniform, ok = b.buffers[r.buffer]
		if !ok {
			return nil, nil, fmt.Errorf("unknown uniform buffer %d", r.buffer)
		}

		// A range shorter than the declared block is widened to the block size, clamped to the buffer.
		size := max(r.size, int(desc.Entries[0].Buffer.MinBindingSize))
		size = min(size, uniform.size-r.offset)
		key.buffer = r.buffer
		key.size = size
		offsets = []uint32{uint32(r.offset)}
	}

	if bg, ok := b.bindGroups[key]; ok {
		return bg, offsets, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	unit := 0
	for _, entry := range desc.Entries {
		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tex, ok := b.textures[key.textures[unit]]
			if !ok {
				return nil, nil, fmt.Errorf("unknown texture %d on unit %d", key.textures[unit], unit)
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tex.view})
			unit++
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			entries = append(entries, wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: b.sampler})
		case entry.Buffer.Type != wgpu.BufferBindingTypeUndefined && uniform != nil:
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  uniform.buffer,
				Offset:  0,
				Size:    uint64(key.size),
			})
		}
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s group %d", prog.name, group),
		Layout:  prog.groupLayouts[group],
		Entries: entries,
	})
	if err != nil {
		return nil, nil, err
	}
	b.bindGroups[key] = bg
	return bg, offsets, nil
}
