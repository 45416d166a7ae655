package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

// FormatQuery reports the device's support for a format.
type FormatQuery func(format vk.Format) vk.FormatProperties

// DepthFormatCandidates are the depth-only formats tried, in order.
var DepthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatX8D24UnormPack32,
	vk.FormatD16Unorm,
}

// FindDepthFormat returns the first candidate usable as a depth attachment
// with optimal tiling.
func FindDepthFormat(query FormatQuery) (vk.Format, error) {
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, candidate := range DepthFormatCandidates {
		properties := query(candidate)
		if properties.OptimalTilingFeatures&flags == flags {
			return candidate, nil
		}
	}
	return vk.FormatUndefined, errors.WithStack(core.ErrNoDepthFormat)
}

type ImageConfig struct {
	ImageType  vk.ImageType
	Format     vk.Format
	Extent     vk.Extent2D
	Tiling     vk.ImageTiling
	Usage      vk.ImageUsageFlags
	Memory     vk.MemoryPropertyFlags
	MipLevels  uint32
	LayerCount uint32
}

// NewDepthImageConfig describes a device-local depth attachment covering
// extent.
func NewDepthImageConfig(format vk.Format, extent vk.Extent2D) ImageConfig {
	return ImageConfig{
		ImageType:  vk.ImageType2d,
		Format:     format,
		Extent:     extent,
		Tiling:     vk.ImageTilingOptimal,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		Memory:     vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		MipLevels:  1,
		LayerCount: 1,
	}
}

type ImageViewConfig struct {
	Image      vk.Image
	ViewType   vk.ImageViewType
	Format     vk.Format
	AspectMask vk.ImageAspectFlags
	MipLevels  uint32
	LayerCount uint32
}

// NewColorViewConfig describes a 2D color view of a swapchain image.
func NewColorViewConfig(image vk.Image, format vk.Format) ImageViewConfig {
	return ImageViewConfig{
		Image:      image,
		ViewType:   vk.ImageViewType2d,
		Format:     format,
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		MipLevels:  1,
		LayerCount: 1,
	}
}

// NewDepthViewConfig describes the depth-aspect view of a depth image.
func NewDepthViewConfig(image *VulkanImage) ImageViewConfig {
	return ImageViewConfig{
		Image:      image.Handle,
		ViewType:   vk.ImageViewType2d,
		Format:     image.Config.Format,
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
		MipLevels:  1,
		LayerCount: 1,
	}
}

type VulkanImage struct {
	resource

	Handle vk.Image
	Memory vk.DeviceMemory
	Config ImageConfig
}

type VulkanImageView struct {
	resource

	Handle vk.ImageView
	Config ImageViewConfig
}

// DepthBuffer pairs the depth image with its view.
type DepthBuffer struct {
	Image  *VulkanImage
	View   *VulkanImageView
	Format vk.Format
}

func (b *NativeBuilder) BuildImage(device *VulkanDevice, cfg ImageConfig) (*VulkanImage, error) {
	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: cfg.ImageType,
		Extent: vk.Extent3D{
			Width:  cfg.Extent.Width,
			Height: cfg.Extent.Height,
			Depth:  1,
		},
		MipLevels:     cfg.MipLevels,
		ArrayLayers:   cfg.LayerCount,
		Format:        cfg.Format,
		Tiling:        cfg.Tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         cfg.Usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	var handle vk.Image
	if res := vk.CreateImage(device.Handle, &imageCreateInfo, b.Allocator, &handle); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateImage", "%s", VulkanResultString(res, true))
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device.Handle, handle, &requirements)
	requirements.Deref()

	memoryType := findMemoryIndex(&device.Physical.Memory, requirements.MemoryTypeBits, cfg.Memory)
	if memoryType < 0 {
		vk.DestroyImage(device.Handle, handle, b.Allocator)
		return nil, core.NewInitializationError("vkAllocateMemory", "required memory type not found")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(device.Handle, &allocateInfo, b.Allocator, &memory); res != vk.Success {
		vk.DestroyImage(device.Handle, handle, b.Allocator)
		return nil, core.NewInitializationError("vkAllocateMemory", "%s", VulkanResultString(res, true))
	}
	if res := vk.BindImageMemory(device.Handle, handle, memory, 0); res != vk.Success {
		vk.FreeMemory(device.Handle, memory, b.Allocator)
		vk.DestroyImage(device.Handle, handle, b.Allocator)
		return nil, core.NewInitializationError("vkBindImageMemory", "%s", VulkanResultString(res, true))
	}

	image := &VulkanImage{
		Handle: handle,
		Memory: memory,
		Config: cfg,
	}
	image.onDestroy(func() {
		vk.FreeMemory(device.Handle, memory, b.Allocator)
		vk.DestroyImage(device.Handle, handle, b.Allocator)
	})
	return image, nil
}

func (b *NativeBuilder) BuildImageView(device *VulkanDevice, cfg ImageViewConfig) (*VulkanImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    cfg.Image,
		ViewType: cfg.ViewType,
		Format:   cfg.Format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     cfg.AspectMask,
			BaseMipLevel:   0,
			LevelCount:     cfg.MipLevels,
			BaseArrayLayer: 0,
			LayerCount:     cfg.LayerCount,
		},
	}

	var handle vk.ImageView
	if res := vk.CreateImageView(device.Handle, &viewInfo, b.Allocator, &handle); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateImageView", "%s", VulkanResultString(res, true))
	}
	view := &VulkanImageView{
		Handle: handle,
		Config: cfg,
	}
	view.onDestroy(func() {
		vk.DestroyImageView(device.Handle, handle, b.Allocator)
	})
	return view, nil
}
