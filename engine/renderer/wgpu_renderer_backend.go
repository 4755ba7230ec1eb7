package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformRange is the uniform buffer range bound to one uniform block binding.
type uniformRange struct {
	buffer BufferHandle
	offset int
	size   int
}

type wgpuRendererBackendImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	info        DeviceInfo
	limits      wgpu.Limits
	debugGroups bool

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Bound state consumed by DrawIndexed
	currentProgram ProgramHandle
	currentBinding VertexBindingHandle
	currentBlend   BlendMode
	boundTextures  map[uint32]TextureHandle
	boundUniforms  map[uint32]uniformRange

	handleCounter uint32
	programs      map[ProgramHandle]*wgpuProgram
	textures      map[TextureHandle]*wgpuTexture
	buffers       map[BufferHandle]*wgpuBuffer
	bindings      map[VertexBindingHandle]*wgpuVertexBinding
	pipelines     map[pipelineKey]*wgpu.RenderPipeline
	bindGroups    map[bindGroupKey]*wgpu.BindGroup
	sampler       *wgpu.Sampler
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(win window.Window, r *renderer) (RendererBackend, error) {
	if win.GraphicsAPI() != window.GraphicsAPINone {
		return nil, errors.New("window owns an OpenGL context; WebGPU needs a window created without a client API")
	}
	descriptor := win.SurfaceDescriptor()
	if descriptor == nil {
		return nil, errors.New("window has no surface")
	}

	w := &wgpuRendererBackendImpl{
		instance:      wgpu.CreateInstance(nil),
		sampleCount:   r.msaa,
		debugGroups:   r.debugGroups,
		boundTextures: make(map[uint32]TextureHandle),
		boundUniforms: make(map[uint32]uniformRange),
		programs:      make(map[ProgramHandle]*wgpuProgram),
		textures:      make(map[TextureHandle]*wgpuTexture),
		buffers:       make(map[BufferHandle]*wgpuBuffer),
		bindings:      make(map[VertexBindingHandle]*wgpuVertexBinding),
		pipelines:     make(map[pipelineKey]*wgpu.RenderPipeline),
		bindGroups:    make(map[bindGroupKey]*wgpu.BindGroup),
	}
	w.setPresentMode(r.presentMode)
	w.surface = w.instance.CreateSurface(descriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	w.adapter = a

	// The WebGPU default limits are what every adapter supports, so the values reported
	// through Info are also the values the device enforces.
	w.limits = wgpu.DefaultLimits()

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: w.limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	adapterInfo := a.GetInfo()
	w.info = DeviceInfo{
		Vendor:                 adapterInfo.VendorName,
		Renderer:               adapterInfo.Name,
		Version:                fmt.Sprintf("WebGPU (%v) %s", adapterInfo.BackendType, adapterInfo.DriverDescription),
		ShadingLanguageVersion: "WGSL",
		UniformOffsetAlignment: int(w.limits.MinUniformBufferOffsetAlignment),
		MaxUniformBlockSize:    r.capUniformBlockSize(int(w.limits.MaxUniformBufferBindingSize)),
		ClipDepthZeroToOne:     true,
	}

	w.sampler, err = d.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Texture Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	log.Printf("[Renderer] %s", w.info.Version)
	return w, nil
}

func (b *wgpuRendererBackendImpl) setPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) Info() DeviceInfo {
	return b.info
}

// nextHandle issues the next non-zero handle value.
func (b *wgpuRendererBackendImpl) nextHandle() uint32 {
	b.handleCounter++
	return b.handleCounter
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame(clearColor common.Color, viewport common.Viewport) error {
	if b.renderPassDescriptor == nil {
		return errors.New("surface is not configured")
	}
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	attachment := &b.renderPassDescriptor.ColorAttachments[0]
	if b.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}
	attachment.ClearValue = wgpu.Color{
		R: float64(clearColor.R), G: float64(clearColor.G), B: float64(clearColor.B), A: float64(clearColor.A),
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetViewport(float32(viewport.X), float32(viewport.Y), float32(viewport.Width), float32(viewport.Height), 0, 1)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	b.currentProgram = 0
	b.currentBinding = 0
	b.currentBlend = BlendModeOpaque
	clear(b.boundTextures)
	clear(b.boundUniforms)
	return nil
}

func (b *wgpuRendererBackendImpl) UseProgram(program ProgramHandle) {
	b.currentProgram = program
}

func (b *wgpuRendererBackendImpl) BindVertexBinding(binding VertexBindingHandle) {
	b.currentBinding = binding
}

func (b *wgpuRendererBackendImpl) BindTexture(unit uint32, texture TextureHandle) {
	b.boundTextures[unit] = texture
}

func (b *wgpuRendererBackendImpl) BindUniformRange(binding uint32, buffer BufferHandle, offset, size int) {
	b.boundUniforms[binding] = uniformRange{buffer: buffer, offset: offset, size: size}
}

func (b *wgpuRendererBackendImpl) SetBlend(mode BlendMode) {
	b.currentBlend = mode
}

func (b *wgpuRendererBackendImpl) DrawIndexed(count int, byteOffset int) {
	if b.framePass == nil || count <= 0 {
		return
	}
	prog, ok := b.programs[b.currentProgram]
	if !ok || !prog.valid {
		return
	}
	vb, ok := b.bindings[b.currentBinding]
	if !ok {
		return
	}

	pipeline, err := b.pipelineFor(b.currentProgram, prog, vb, b.currentBlend)
	if err != nil {
		log.Printf("[Renderer] %s: %v", prog.name, err)
		return
	}
	b.framePass.SetPipeline(pipeline)

	for group := range prog.groupLayouts {
		bg, offsets, err := b.bindGroupFor(b.currentProgram, prog, group)
		if err != nil {
			log.Printf("[Renderer] %s: group %d: %v", prog.name, group, err)
			return
		}
		b.framePass.SetBindGroup(uint32(group), bg, offsets)
	}

	vertex := b.buffers[vb.desc.VertexBuffer]
	index := b.buffers[vb.desc.IndexBuffer]
	b.framePass.SetVertexBuffer(0, vertex.buffer, vb.baseOffset, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(index.buffer, vb.indexFormat, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(count), 1, uint32(byteOffset/vb.desc.IndexFormat.Size()), 0, 0)
}

func (b *wgpuRendererBackendImpl) PushDebugGroup(label string) {
	if !b.debugGroups || b.framePass == nil {
		return
	}
	b.framePass.PushDebugGroup(label)
}

func (b *wgpuRendererBackendImpl) PopDebugGroup() {
	if !b.debugGroups || b.framePass == nil {
		return
	}
	b.framePass.PopDebugGroup()
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	if b.framePass == nil {
		return
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		log.Printf("[Renderer] failed to finish frame: %v", err)
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.framePass.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	for h := range b.bindings {
		b.DeleteVertexBinding(h)
	}
	for h := range b.programs {
		b.DeleteProgram(h)
	}
	for h, t := range b.textures {
		t.release()
		delete(b.textures, h)
	}
	for h, buf := range b.buffers {
		buf.buffer.Release()
		delete(b.buffers, h)
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
