package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine/assets"
	"github.com/spaghettifunk/anima-bootstrap/engine/core"
	"github.com/spaghettifunk/anima-bootstrap/engine/platform"
	"github.com/spaghettifunk/anima-bootstrap/engine/renderer"
	"github.com/spaghettifunk/anima-bootstrap/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Platform is the native window the engine drives.
type Platform interface {
	vulkan.Window
	Startup(applicationName string, x, y, width, height uint32) error
	Shutdown() error
	ConsumeResize() bool
	Wake()
}

// ShaderStore serves shader bytecode from an indexed directory.
type ShaderStore interface {
	vulkan.ShaderSource
	Initialize(dir string, watch bool) error
	Shutdown() error
}

type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	platform     Platform
	assetManager ShaderStore
	renderer     *renderer.Renderer
	width        uint32
	height       uint32

	platformUp bool
}

func New(config *ApplicationConfig) (*Engine, error) {
	ctxConfig, err := config.ContextConfig()
	if err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		return nil, core.Wrap(err, "create asset manager")
	}

	r, err := renderer.New(renderer.Vulkan, ctxConfig, am)
	if err != nil {
		return nil, core.Wrap(err, "create renderer")
	}

	return newEngine(config, platform.New(), am, r), nil
}

func newEngine(config *ApplicationConfig, p Platform, am ShaderStore, r *renderer.Renderer) *Engine {
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       config,
		platform:     p,
		assetManager: am,
		renderer:     r,
		width:        config.Window.Width,
		height:       config.Window.Height,
	}
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Initialize opens the window, indexes the shader directory and brings up
// the rendering context.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return errors.WithStack(core.ErrAlreadyInitialized)
	}
	e.currentStage = EngineStageInitializing

	level, err := core.ParseLogLevel(e.config.LogLevel)
	if err != nil {
		return core.Wrap(err, "log level")
	}
	core.SetLogLevel(level)

	if err := e.platform.Startup(e.config.Name,
		e.config.Window.X,
		e.config.Window.Y,
		e.config.Window.Width,
		e.config.Window.Height); err != nil {
		return core.Wrap(err, "platform startup")
	}
	e.platformUp = true

	if err := e.assetManager.Initialize(e.config.Shaders.Dir, e.config.Shaders.Watch); err != nil {
		return core.Wrap(err, "index shaders in %s", e.config.Shaders.Dir)
	}

	if err := e.renderer.Initialize(e.platform); err != nil {
		return core.Wrap(err, "initialize renderer")
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized.", e.config.Name)
	return nil
}

// Run processes window events until the window is closed or ctx is done.
// While the framebuffer has a zero dimension it blocks until it becomes
// drawable again.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return errors.Errorf("engine is not initialized (stage %d)", e.currentStage)
	}
	e.currentStage = EngineStageRunning

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			e.platform.Wake()
		case <-stop:
		}
	}()

	for ctx.Err() == nil && !e.platform.ShouldClose() {
		e.platform.WaitEvents()

		if !e.platform.ConsumeResize() {
			continue
		}
		w, h := e.platform.FramebufferSize()
		if w == 0 || h == 0 {
			core.LogInfo("Window minimized, suspending application.")
			width, height, err := vulkan.WaitForDrawable(e.platform)
			if errors.Is(err, core.ErrWindowClosed) {
				break
			}
			core.LogInfo("Window restored, resuming application.")
			w, h = int(width), int(height)
		}
		if err := e.onResized(uint32(w), uint32(h)); err != nil {
			return core.Wrap(err, "resize")
		}
	}

	core.LogInfo("Main loop finished.")
	return nil
}

func (e *Engine) onResized(width, height uint32) error {
	if width == e.width && height == e.height {
		return nil
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)
	return e.renderer.OnResize(width, height)
}

// Shutdown releases everything Initialize built, in reverse order. It is
// safe after a failed Initialize.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	var result error
	if err := e.renderer.Shutdown(); err != nil {
		result = err
	}
	if err := e.assetManager.Shutdown(); err != nil && result == nil {
		result = core.Wrap(err, "asset manager shutdown")
	}
	if e.platformUp {
		e.platformUp = false
		if err := e.platform.Shutdown(); err != nil && result == nil {
			result = core.Wrap(err, "platform shutdown")
		}
	}

	e.currentStage = EngineStageUninitialized
	return result
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}
