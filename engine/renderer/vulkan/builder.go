package vulkan

import (
	vk "github.com/goki/vulkan"
)

// Window is the part of the platform window the context needs.
type Window interface {
	RequiredInstanceExtensions() []string
	// CreateWindowSurface returns the raw VkSurfaceKHR created for instance.
	CreateWindowSurface(instance interface{}) (uintptr, error)
	FramebufferSize() (int, int)
	WaitEvents()
	ShouldClose() bool
}

// ShaderSource resolves a shader path to SPIR-V words.
type ShaderSource interface {
	LoadShader(path string) ([]uint32, error)
}

// ResourceBuilder performs the native creation call for every resource
// kind. Each returned wrapper carries its own release hook.
type ResourceBuilder interface {
	BuildInstance(cfg InstanceConfig) (*VulkanInstance, error)
	BuildSurface(instance *VulkanInstance, window Window) (*VulkanSurface, error)
	SelectPhysicalDevice(instance *VulkanInstance, surface *VulkanSurface, req DeviceRequirements, policy SelectionPolicy) (*VulkanPhysicalDevice, error)
	QuerySwapchainSupport(physical *VulkanPhysicalDevice, surface *VulkanSurface) (SwapchainSupport, error)
	FormatProperties(physical *VulkanPhysicalDevice, format vk.Format) vk.FormatProperties
	BuildDevice(physical *VulkanPhysicalDevice, cfg DeviceConfig) (*VulkanDevice, error)
	BuildSwapchain(device *VulkanDevice, cfg SwapchainConfig) (*VulkanSwapchain, error)
	BuildImageView(device *VulkanDevice, cfg ImageViewConfig) (*VulkanImageView, error)
	BuildImage(device *VulkanDevice, cfg ImageConfig) (*VulkanImage, error)
	BuildRenderPass(device *VulkanDevice, cfg RenderPassConfig) (*VulkanRenderPass, error)
	BuildFramebuffer(device *VulkanDevice, cfg FramebufferConfig) (*VulkanFramebuffer, error)
	BuildPipeline(device *VulkanDevice, cfg PipelineConfig) (*VulkanPipeline, error)
	WaitIdle(device *VulkanDevice)
}

// NativeBuilder issues the Vulkan calls. The loader must already be
// initialized by the platform.
type NativeBuilder struct {
	Allocator *vk.AllocationCallbacks
}

func NewNativeBuilder() *NativeBuilder {
	return &NativeBuilder{
		Allocator: nil,
	}
}

func (b *NativeBuilder) QuerySwapchainSupport(physical *VulkanPhysicalDevice, surface *VulkanSurface) (SwapchainSupport, error) {
	return querySwapchainSupport(physical.Handle, surface.Handle)
}
