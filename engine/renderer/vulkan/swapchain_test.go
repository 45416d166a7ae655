package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	assert.Equal(t, preferred, ChooseSurfaceFormat([]vk.SurfaceFormat{other, preferred}))
	assert.Equal(t, other, ChooseSurfaceFormat([]vk.SurfaceFormat{other}))
	assert.Equal(t, vk.FormatUndefined, ChooseSurfaceFormat(nil).Format)
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox, ChoosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}))
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}))
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentMode(nil))
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 640, Height: 480},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
	}
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480}, ChooseExtent(caps, 800, 600))

	caps.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, ChooseExtent(caps, 800, 600))
	assert.Equal(t, vk.Extent2D{Width: 1920, Height: 1080}, ChooseExtent(caps, 4000, 3000))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), ChooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), ChooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
	assert.Equal(t, uint32(4), ChooseImageCount(vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 0}))
}

func TestNewSwapchainConfigSharingMode(t *testing.T) {
	physical := &VulkanPhysicalDevice{
		Candidate: testCandidate("gpu", vk.PhysicalDeviceTypeDiscreteGpu),
		Queues:    QueueFamilyIndices{Graphics: 0, Present: 0, Compute: 0, Transfer: 1},
	}
	cfg := NewSwapchainConfig(physical, nil, 800, 600)
	assert.False(t, cfg.ConcurrentMode)
	assert.Empty(t, cfg.QueueFamilies)
	assert.Equal(t, vk.PresentModeMailbox, cfg.PresentMode)
	assert.Equal(t, uint32(3), cfg.MinImageCount)

	physical.Queues.Present = 2
	cfg = NewSwapchainConfig(physical, nil, 800, 600)
	assert.True(t, cfg.ConcurrentMode)
	assert.Equal(t, []uint32{0, 2}, cfg.QueueFamilies)
}
