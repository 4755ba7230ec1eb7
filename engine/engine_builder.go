package engine

import (
	"io"
	"time"

	"github.com/Carmen-Shannon/oxy-forward/engine/camera"
	"github.com/Carmen-Shannon/oxy-forward/engine/overlay"
	"github.com/Carmen-Shannon/oxy-forward/engine/profiler"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/scene"
	"github.com/Carmen-Shannon/oxy-forward/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, e.g. to change its interval or clock.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the engine polls and presents to.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer backend the scene draws through.
func WithRenderer(backend renderer.RendererBackend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = backend
	}
}

// WithScene sets the scene drawn each frame.
//
// Parameters:
//   - s: the Scene to draw
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithOverlay sets the debug overlay. Pass the same overlay to the scene's info log so diagnostics show up in it.
func WithOverlay(o overlay.Overlay) EngineBuilderOption {
	return func(e *engine) {
		e.overlay = o
	}
}

// WithOverlayOutput sets where the overlay is rendered. Defaults to os.Stdout.
func WithOverlayOutput(w io.Writer) EngineBuilderOption {
	return func(e *engine) {
		e.overlayOut = w
	}
}

// WithOverlayInterval sets the minimum time between overlay redraws. Zero redraws on every change.
//
// Parameters:
//   - interval: the minimum redraw interval (default 1s)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOverlayInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.overlayInterval = max(interval, 0)
	}
}

// WithClock replaces time.Now for overlay throttling.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.clock = now
	}
}

// WithOrbitController sets the controller driven by the arrow keys and scroll wheel.
func WithOrbitController(c camera.OrbitController) EngineBuilderOption {
	return func(e *engine) {
		e.orbit = c
	}
}

// WithViewportSize sets the initial viewport for an engine without a window.
func WithViewportSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		e.width, e.height = width, height
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
