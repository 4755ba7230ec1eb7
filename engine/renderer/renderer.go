package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-forward/engine/window"
)

// ErrUnknownBackend is reported when a backend type has no implementation.
var ErrUnknownBackend = errors.New("unknown renderer backend")

// renderer collects the creation options for a RendererBackend.
type renderer struct {
	backendType          RendererBackendType
	presentMode          PresentMode
	msaa                 MSAASampleCount
	debugGroups          bool
	forceFallbackAdapter bool
	uniformBlockSize     int
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing on the WebGPU backend.
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// ParseBackendType maps a backend name ("opengl", "gl", "wgpu", "webgpu") to its RendererBackendType.
//
// Parameters:
//   - name: the backend name
//
// Returns:
//   - RendererBackendType: the parsed type
//   - error: ErrUnknownBackend if the name is not recognised
func ParseBackendType(name string) (RendererBackendType, error) {
	switch name {
	case "opengl", "gl", "":
		return BackendTypeOpenGL, nil
	case "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// NewRendererBackend creates the backend for the given graphics API, bound to the window's surface.
// The window must have been created with the matching window.GraphicsAPI.
// Backend creation failures are unrecoverable and panic.
//
// Parameters:
//   - backendType: the graphics API to use
//   - win: the window providing the GL context or the WebGPU surface
//   - options: functional options applied before creation
//
// Returns:
//   - RendererBackend: the ready backend
func NewRendererBackend(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) RendererBackend {
	r := &renderer{
		backendType: backendType,
		presentMode: PresentModeVSync,
		msaa:        MSAAOff,
	}
	for _, opt := range options {
		opt(r)
	}

	var backend RendererBackend
	var err error
	switch backendType {
	case BackendTypeOpenGL:
		backend, err = newGLRendererBackend(win, r)
	case BackendTypeWGPU:
		backend, err = newWGPURendererBackend(win, r)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownBackend, int(backendType))
	}
	if err != nil {
		panic(fmt.Sprintf("failed to create %s renderer backend: %v", backendType, err))
	}

	backend.Resize(win.Width(), win.Height())
	return backend
}
