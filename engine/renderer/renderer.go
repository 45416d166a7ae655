package renderer

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
	"github.com/spaghettifunk/anima-bootstrap/engine/renderer/vulkan"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
)

type Renderer struct {
	backend RendererBackend
	ready   bool
}

// New returns a renderer on the given API. Only Vulkan is implemented.
func New(rendererType RendererType, config vulkan.ContextConfig, shaders vulkan.ShaderSource) (*Renderer, error) {
	switch rendererType {
	case Vulkan:
		return NewWithBackend(vulkan.New(config, vulkan.NewNativeBuilder(), shaders)), nil
	default:
		return nil, errors.Errorf("renderer type %d is not supported", rendererType)
	}
}

func NewWithBackend(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(window vulkan.Window) error {
	if err := r.backend.Initialize(window); err != nil {
		return core.Wrap(err, "renderer backend initialize")
	}
	r.ready = true
	return nil
}

func (r *Renderer) Shutdown() error {
	if !r.ready {
		return nil
	}
	r.ready = false
	if err := r.backend.Shutdown(); err != nil {
		return core.Wrap(err, "renderer backend shutdown")
	}
	return nil
}

func (r *Renderer) OnResize(width, height uint32) error {
	if !r.ready {
		return nil
	}
	return r.backend.Resized(width, height)
}
