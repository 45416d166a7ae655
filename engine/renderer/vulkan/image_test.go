package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

func depthQuery(supported ...vk.Format) FormatQuery {
	return func(format vk.Format) vk.FormatProperties {
		for _, f := range supported {
			if f == format {
				return vk.FormatProperties{
					OptimalTilingFeatures: vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
				}
			}
		}
		// Linear tiling support alone does not qualify.
		return vk.FormatProperties{
			LinearTilingFeatures: vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
		}
	}
}

func TestFindDepthFormat(t *testing.T) {
	format, err := FindDepthFormat(depthQuery(vk.FormatD16Unorm, vk.FormatD32Sfloat))
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD32Sfloat, format)

	format, err = FindDepthFormat(depthQuery(vk.FormatD16Unorm))
	require.NoError(t, err)
	assert.Equal(t, vk.FormatD16Unorm, format)

	format, err = FindDepthFormat(depthQuery())
	assert.ErrorIs(t, err, core.ErrNoDepthFormat)
	assert.Equal(t, vk.FormatUndefined, format)
}

func TestDepthImageAndViewConfig(t *testing.T) {
	extent := vk.Extent2D{Width: 800, Height: 600}
	imageCfg := NewDepthImageConfig(vk.FormatD32Sfloat, extent)
	assert.Equal(t, extent, imageCfg.Extent)
	assert.Equal(t, vk.ImageTilingOptimal, imageCfg.Tiling)
	assert.Equal(t, vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit), imageCfg.Usage)
	assert.Equal(t, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), imageCfg.Memory)

	viewCfg := NewDepthViewConfig(&VulkanImage{Config: imageCfg})
	assert.Equal(t, vk.FormatD32Sfloat, viewCfg.Format)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), viewCfg.AspectMask)

	var image vk.Image
	colorCfg := NewColorViewConfig(image, vk.FormatB8g8r8a8Unorm)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectColorBit), colorCfg.AspectMask)
	assert.Equal(t, vk.ImageViewType2d, colorCfg.ViewType)
}

func TestFindMemoryIndex(t *testing.T) {
	memory := vk.PhysicalDeviceMemoryProperties{MemoryTypeCount: 3}
	memory.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	memory.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	memory.MemoryTypes[2].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	local := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	assert.Equal(t, int32(1), findMemoryIndex(&memory, 0b111, local))
	assert.Equal(t, int32(2), findMemoryIndex(&memory, 0b100, local))
	assert.Equal(t, int32(-1), findMemoryIndex(&memory, 0b001, local))
}
