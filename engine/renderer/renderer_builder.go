package renderer

// RendererBuilderOption is a functional option applied to a backend during construction via NewRendererBackend.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count. Only the WebGPU backend honours it.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithDebugGroups enables labelled debug groups around render passes.
//
// Parameters:
//   - enabled: true to emit debug groups
//
// Returns:
//   - RendererBuilderOption: a function that applies the debug group option
func WithDebugGroups(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.debugGroups = enabled
	}
}

// WithUniformBlockSize caps the reported MaxUniformBlockSize. Zero keeps the device limit.
//
// Parameters:
//   - size: the cap in bytes
//
// Returns:
//   - RendererBuilderOption: a function that applies the cap
func WithUniformBlockSize(size int) RendererBuilderOption {
	return func(r *renderer) {
		r.uniformBlockSize = size
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// capUniformBlockSize applies the WithUniformBlockSize cap to a device limit.
func (r *renderer) capUniformBlockSize(limit int) int {
	if r.uniformBlockSize > 0 && r.uniformBlockSize < limit {
		return r.uniformBlockSize
	}
	return limit
}
