package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

type FramebufferConfig struct {
	RenderPass  vk.RenderPass
	Attachments []vk.ImageView
	Extent      vk.Extent2D
	Layers      uint32
}

// NewFramebufferConfig binds a swapchain color view and the shared depth view
// to the render pass, in attachment order.
func NewFramebufferConfig(renderPass *VulkanRenderPass, color, depth *VulkanImageView, extent vk.Extent2D) FramebufferConfig {
	return FramebufferConfig{
		RenderPass:  renderPass.Handle,
		Attachments: []vk.ImageView{color.Handle, depth.Handle},
		Extent:      extent,
		Layers:      1,
	}
}

type VulkanFramebuffer struct {
	resource

	Handle vk.Framebuffer
	Config FramebufferConfig
}

func (b *NativeBuilder) BuildFramebuffer(device *VulkanDevice, cfg FramebufferConfig) (*VulkanFramebuffer, error) {
	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      cfg.RenderPass,
		AttachmentCount: uint32(len(cfg.Attachments)),
		PAttachments:    cfg.Attachments,
		Width:           cfg.Extent.Width,
		Height:          cfg.Extent.Height,
		Layers:          cfg.Layers,
	}

	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(device.Handle, &framebufferCreateInfo, b.Allocator, &handle); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateFramebuffer", "%s", VulkanResultString(res, true))
	}
	framebuffer := &VulkanFramebuffer{
		Handle: handle,
		Config: cfg,
	}
	framebuffer.onDestroy(func() {
		vk.DestroyFramebuffer(device.Handle, handle, b.Allocator)
	})
	return framebuffer, nil
}
