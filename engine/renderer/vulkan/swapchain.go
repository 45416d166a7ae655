package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

type SwapchainConfig struct {
	Surface        vk.Surface
	Format         vk.SurfaceFormat
	PresentMode    vk.PresentMode
	Extent         vk.Extent2D
	MinImageCount  uint32
	PreTransform   vk.SurfaceTransformFlagBits
	QueueFamilies  []uint32
	ConcurrentMode bool
}

// NewSwapchainConfig applies the format, present mode, extent and image
// count policies to what the device reported for the surface.
func NewSwapchainConfig(physical *VulkanPhysicalDevice, surface *VulkanSurface, width, height uint32) SwapchainConfig {
	support := physical.Candidate.Swapchain
	cfg := SwapchainConfig{
		Format:        ChooseSurfaceFormat(support.Formats),
		PresentMode:   ChoosePresentMode(support.PresentModes),
		Extent:        ChooseExtent(support.Capabilities, width, height),
		MinImageCount: ChooseImageCount(support.Capabilities),
		PreTransform:  support.Capabilities.CurrentTransform,
	}
	if surface != nil {
		cfg.Surface = surface.Handle
	}
	q := physical.Queues
	if q.Graphics != q.Present {
		cfg.ConcurrentMode = true
		cfg.QueueFamilies = []uint32{uint32(q.Graphics), uint32(q.Present)}
	}
	return cfg
}

// ChooseSurfaceFormat prefers B8G8R8A8_UNORM with the sRGB non-linear color
// space and falls back to the first reported format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	if len(formats) == 0 {
		return vk.SurfaceFormat{Format: vk.FormatUndefined}
	}
	return formats[0]
}

// ChoosePresentMode takes mailbox when offered. FIFO is always available.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent uses the surface's current extent when it is defined and
// otherwise clamps the requested size to the surface limits.
func ChooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum, bounded by the
// maximum unless the maximum is 0 (unbounded).
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

type VulkanSwapchain struct {
	resource

	Handle vk.Swapchain
	Config SwapchainConfig
	Images []vk.Image
}

func (s *VulkanSwapchain) ImageFormat() vk.Format {
	return s.Config.Format.Format
}

func (s *VulkanSwapchain) Extent() vk.Extent2D {
	return s.Config.Extent
}

func (b *NativeBuilder) BuildSwapchain(device *VulkanDevice, cfg SwapchainConfig) (*VulkanSwapchain, error) {
	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          cfg.Surface,
		MinImageCount:    cfg.MinImageCount,
		ImageFormat:      cfg.Format.Format,
		ImageColorSpace:  cfg.Format.ColorSpace,
		ImageExtent:      cfg.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     cfg.PreTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      cfg.PresentMode,
		Clipped:          vk.True,
	}
	if cfg.ConcurrentMode {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = uint32(len(cfg.QueueFamilies))
		swapchainCreateInfo.PQueueFamilyIndices = cfg.QueueFamilies
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(device.Handle, &swapchainCreateInfo, b.Allocator, &handle); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateSwapchainKHR", "%s", VulkanResultString(res, true))
	}
	destroy := func() {
		vk.DestroySwapchain(device.Handle, handle, b.Allocator)
	}

	var imageCount uint32
	if res := vk.GetSwapchainImages(device.Handle, handle, &imageCount, nil); !VulkanResultIsSuccess(res) {
		destroy()
		return nil, core.NewInitializationError("vkGetSwapchainImagesKHR", "%s", VulkanResultString(res, true))
	}
	images := make([]vk.Image, imageCount)
	if res := vk.GetSwapchainImages(device.Handle, handle, &imageCount, images); !VulkanResultIsSuccess(res) {
		destroy()
		return nil, core.NewInitializationError("vkGetSwapchainImagesKHR", "%s", VulkanResultString(res, true))
	}
	images = images[:imageCount]

	swapchain := &VulkanSwapchain{
		Handle: handle,
		Config: cfg,
		Images: images,
	}
	swapchain.onDestroy(destroy)
	return swapchain, nil
}
