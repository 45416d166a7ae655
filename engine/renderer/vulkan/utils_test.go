package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success, false))
	assert.Equal(t, "VK_ERROR_DEVICE_LOST The logical or physical device has been lost.", VulkanResultString(vk.ErrorDeviceLost, true))
	assert.Equal(t, "VkResult(-12345)", VulkanResultString(vk.Result(-12345), true))
}

func TestVulkanResultIsSuccess(t *testing.T) {
	assert.True(t, VulkanResultIsSuccess(vk.Success))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.True(t, VulkanResultIsSuccess(vk.Incomplete))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))
}

func TestVulkanSafeStrings(t *testing.T) {
	in := []string{"VK_KHR_surface", "already\x00", ""}
	out := VulkanSafeStrings(in)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "already\x00", "\x00"}, out)
	assert.Equal(t, "VK_KHR_surface", in[0])
}

func TestNativeString(t *testing.T) {
	var name [16]byte
	copy(name[:], "VK_LAYER_x")
	assert.Equal(t, "VK_LAYER_x", nativeString(name[:]))
	assert.Equal(t, "full", nativeString([]byte("full")))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(5), clamp[uint32](1, 5, 10))
	assert.Equal(t, uint32(10), clamp[uint32](50, 5, 10))
	assert.Equal(t, 7, clamp(7, 5, 10))
}
