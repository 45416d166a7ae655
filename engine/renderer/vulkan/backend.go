package vulkan

import (
	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

// VulkanRenderer is the renderer backend driving a VulkanContext.
type VulkanRenderer struct {
	context *VulkanContext

	cachedFramebufferWidth    uint32
	cachedFramebufferHeight   uint32
	framebufferSizeGeneration uint64
}

func New(config ContextConfig, builder ResourceBuilder, shaders ShaderSource) *VulkanRenderer {
	return &VulkanRenderer{
		context: NewVulkanContext(config, builder, shaders),
	}
}

func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

// Initialize brings the context up for window. A failed init releases
// whatever was built before returning the error.
func (vr *VulkanRenderer) Initialize(window Window) error {
	if err := vr.context.Init(window); err != nil {
		vr.context.Destroy()
		return err
	}
	w, h := window.FramebufferSize()
	vr.cachedFramebufferWidth, vr.cachedFramebufferHeight = uint32(w), uint32(h)
	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	core.LogDebug("Destroying Vulkan context %s...", vr.context.ID)
	vr.context.Destroy()
	return nil
}

// Resized records the new framebuffer size. The swapchain keeps its extent.
func (vr *VulkanRenderer) Resized(width, height uint32) error {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.framebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.framebufferSizeGeneration)
	return nil
}
