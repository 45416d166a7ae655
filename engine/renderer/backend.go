package renderer

import "github.com/spaghettifunk/anima-bootstrap/engine/renderer/vulkan"

// RendererBackend is a graphics API able to bring up a rendering context for
// a window.
type RendererBackend interface {
	Initialize(window vulkan.Window) error
	Shutdown() error
	Resized(width, height uint32) error
}
