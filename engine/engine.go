package engine

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/camera"
	"github.com/Carmen-Shannon/oxy-forward/engine/overlay"
	"github.com/Carmen-Shannon/oxy-forward/engine/profiler"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer"
	"github.com/Carmen-Shannon/oxy-forward/engine/scene"
	"github.com/Carmen-Shannon/oxy-forward/engine/window"
)

// maxTicksPerFrame bounds fixed-rate catch-up after a long frame.
const maxTicksPerFrame = 5

// engine implements the Engine interface.
// Every frame runs on the window's thread: input, fixed-rate ticks, Update, Render and Present.
type engine struct {
	running bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window  window.Window
	backend renderer.RendererBackend
	scene   scene.Scene
	orbit   camera.OrbitController

	dragging     bool
	dragX, dragY int32

	overlay         overlay.Overlay
	overlayOut      io.Writer
	overlayInterval time.Duration
	overlayRevision uint64
	lastOverlay     time.Time
	clock           func() time.Time

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	accumulator    time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	width, height int

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time
}

// Engine is the main entry point for the engine.
// It owns the frame loop and routes window input to the camera, the scene mode and the overlay.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil for a headless engine
	Window() window.Window

	// Scene returns the scene drawn each frame.
	Scene() scene.Scene

	// Overlay returns the debug overlay fed by the profiler and the scene's info log.
	// Step redraws it whenever its contents change, at most once per overlay interval.
	Overlay() overlay.Overlay

	// OrbitController returns the controller moving the scene camera.
	OrbitController() camera.OrbitController

	// EnableProfiler enables performance profiling output to the log and the overlay.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Step runs one frame: due ticks, scene Update, scene Render, Present and profiling.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous frame
	//
	// Returns:
	//   - error: error from the scene's Update or Render
	Step(dt float32) error

	// Run initializes the scene and runs the frame loop on the calling goroutine until the window closes
	// or Quit is called, then releases every GPU resource.
	//
	// Returns:
	//   - error: error if the scene failed to initialize or a frame failed
	Run() error

	// Quit stops the frame loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A renderer backend and a scene are required; NewEngine panics without them.
//
// Parameters:
//   - options: functional options for engine configuration (window, backend, scene, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		overlayOut:      os.Stdout,
		overlayInterval: time.Second,
		clock:           time.Now,
		width:           1280,
		height:          720,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.backend == nil {
		panic("engine: NewEngine requires a RendererBackend")
	}
	if e.scene == nil {
		panic("engine: NewEngine requires a Scene")
	}
	if e.overlay == nil {
		e.overlay = overlay.NewOverlay()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithSink(e.overlay))
	}
	if e.orbit == nil {
		e.orbit = camera.NewOrbitController(e.scene.Camera())
	}

	if e.window != nil {
		e.width, e.height = e.window.Width(), e.window.Height()
		e.window.SetResizeCallback(e.resize)
		e.window.SetKeyDownCallback(e.keyDown)
		e.window.SetScrollCallback(func(delta float32) {
			e.orbit.Zoom(delta)
		})
		e.window.SetMiddleMouseDownCallback(e.middleMouseDown)
		e.window.SetMiddleMouseUpCallback(e.middleMouseUp)
		e.window.SetMouseMoveCallback(e.mouseMove)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Overlay() overlay.Overlay {
	return e.overlay
}

func (e *engine) OrbitController() camera.OrbitController {
	return e.orbit
}

func (e *engine) Run() error {
	if e.window == nil {
		return fmt.Errorf("engine: Run requires a window")
	}
	defer e.release()

	if err := e.scene.Init(); err != nil {
		return fmt.Errorf("failed to initialize scene: %w", err)
	}
	e.overlay.SetValue("Backend", e.backend.Info().Renderer)
	e.overlay.SetValue("Mode", e.scene.Mode().String())

	var frameErr error
	e.running = true
	e.lastFrame = time.Now()
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.window.RequestClose()
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(e.lastFrame).Seconds())
		e.lastFrame = now

		if err := e.Step(dt); err != nil {
			frameErr = err
			e.signalQuit()
			return
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	})
	e.window.ProcessMessages()
	e.running = false
	return frameErr
}

func (e *engine) Step(dt float32) error {
	e.accumulator += time.Duration(float64(dt) * float64(time.Second))
	ticks := 0
	for e.accumulator >= e.engineTickRate && ticks < maxTicksPerFrame {
		if e.tickCallback != nil {
			e.tickCallback(float32(e.engineTickRate.Seconds()))
		}
		e.accumulator -= e.engineTickRate
		ticks++
	}
	if ticks == maxTicksPerFrame {
		e.accumulator = 0
	}

	viewport := common.Viewport{Width: e.width, Height: e.height}
	if err := e.scene.Update(dt, viewport); err != nil {
		return fmt.Errorf("scene update failed: %w", err)
	}
	if err := e.scene.Render(viewport); err != nil {
		return fmt.Errorf("scene render failed: %w", err)
	}
	e.backend.Present()

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	e.renderOverlay()
	return nil
}

// renderOverlay redraws the overlay when its contents changed, at most once per overlayInterval.
func (e *engine) renderOverlay() {
	rev := e.overlay.Revision()
	if rev == e.overlayRevision || !e.overlay.Visible() {
		return
	}
	now := e.clock()
	if !e.lastOverlay.IsZero() && now.Sub(e.lastOverlay) < e.overlayInterval {
		return
	}
	e.overlayRevision = rev
	e.lastOverlay = now
	if err := e.overlay.Render(e.overlayOut); err != nil {
		log.Printf("[Engine] overlay render failed: %v", err)
	}
}

// resize forwards a framebuffer size change to the backend; the camera picks it up from the viewport.
func (e *engine) resize(width, height int) {
	e.width, e.height = width, height
	e.backend.Resize(width, height)
}

// middleMouseDown starts an orbit drag at the cursor position.
func (e *engine) middleMouseDown(x, y int32) {
	e.dragging = true
	e.dragX, e.dragY = x, y
}

func (e *engine) middleMouseUp(x, y int32) {
	e.dragging = false
}

// mouseMove orbits the camera by the cursor movement since the last event while the middle button is held.
func (e *engine) mouseMove(x, y int32) {
	if !e.dragging {
		return
	}
	e.orbit.Drag(float32(x-e.dragX), float32(y-e.dragY))
	e.dragX, e.dragY = x, y
}

// keyDown maps key presses to camera, mode and overlay actions.
func (e *engine) keyDown(keyCode uint32) {
	switch keyCode {
	case common.KeyLeft, common.KeyA:
		e.orbit.OrbitLeft()
	case common.KeyRight, common.KeyD:
		e.orbit.OrbitRight()
	case common.KeyUp, common.KeyW:
		e.orbit.OrbitUp()
	case common.KeyDown, common.KeyS:
		e.orbit.OrbitDown()
	case common.KeyPageUp:
		e.orbit.Zoom(1)
	case common.KeyPageDown:
		e.orbit.Zoom(-1)
	case common.KeyM, common.KeySpace:
		e.scene.ToggleMode()
		e.overlay.SetValue("Mode", e.scene.Mode().String())
	case common.KeyO:
		e.overlay.SetVisible(!e.overlay.Visible())
	case common.KeyEsc:
		e.Quit()
	}
}

func (e *engine) release() {
	e.scene.Release()
	e.backend.Release()
	if err := e.window.Close(); err != nil {
		log.Printf("[Engine] %v", err)
	}
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal the frame loop to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.engineTickRate = time.Duration(float64(time.Second) / fps)
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
