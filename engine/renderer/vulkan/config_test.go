package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceConfigDedupesExtensions(t *testing.T) {
	cfg := NewInstanceConfig("test", []string{"VK_KHR_surface", "VK_KHR_surface", "VK_KHR_xcb_surface"}, nil)
	assert.Equal(t, "VK_KHR_surface", cfg.Extensions[0])
	assert.Equal(t, "VK_KHR_xcb_surface", cfg.Extensions[1])
	assert.NotContains(t, cfg.Extensions, debugReportExtensionName)
	assert.Empty(t, cfg.Layers)
	assert.Equal(t, vk.MakeVersion(1, 3, 0), cfg.APIVersion)

	cfg = NewInstanceConfig("test", []string{"VK_KHR_surface"}, NewDebugMessenger(SeverityError, SeverityWarning))
	assert.Contains(t, cfg.Extensions, debugReportExtensionName)
	assert.Equal(t, []string{validationLayerName}, cfg.Layers)
}

func TestNewDeviceConfig(t *testing.T) {
	physical := &VulkanPhysicalDevice{
		Candidate:  testCandidate("gpu", vk.PhysicalDeviceTypeDiscreteGpu),
		Queues:     QueueFamilyIndices{Graphics: 0, Present: 0, Compute: 0, Transfer: 1},
		Extensions: []string{swapchainExtensionName},
	}
	cfg := NewDeviceConfig(physical, []string{validationLayerName})
	assert.Equal(t, []uint32{0, 1}, cfg.QueueFamilies)
	assert.Equal(t, float32(1.0), cfg.QueuePriority)
	assert.True(t, cfg.SamplerAnisotropy)
	assert.Equal(t, []string{swapchainExtensionName}, cfg.Extensions)
}

func TestNewRenderPassConfig(t *testing.T) {
	cfg := NewRenderPassConfig(vk.FormatB8g8r8a8Unorm, vk.FormatD32Sfloat)
	require.Len(t, cfg.Attachments, 2)

	color, depth := cfg.Attachments[0], cfg.Attachments[1]
	assert.Equal(t, vk.AttachmentLoadOpClear, color.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpStore, color.StoreOp)
	assert.Equal(t, vk.ImageLayoutUndefined, color.InitialLayout)
	assert.Equal(t, vk.ImageLayoutPresentSrc, color.FinalLayout)

	assert.Equal(t, vk.FormatD32Sfloat, depth.Format)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, depth.StoreOp)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, depth.FinalLayout)

	require.Len(t, cfg.Dependencies, 1)
	assert.Equal(t, uint32(vk.SubpassExternal), cfg.Dependencies[0].SrcSubpass)
	assert.Equal(t, uint32(0), cfg.Dependencies[0].DstSubpass)
}

func TestNewPipelineConfig(t *testing.T) {
	extent := vk.Extent2D{Width: 1280, Height: 720}
	cfg := NewPipelineConfig(&VulkanRenderPass{}, extent, []uint32{1}, []uint32{2})

	assert.Equal(t, float32(1280), cfg.Viewport.Width)
	assert.Equal(t, float32(720), cfg.Viewport.Height)
	assert.Equal(t, float32(1), cfg.Viewport.MaxDepth)
	assert.Equal(t, extent, cfg.Scissor.Extent)
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, cfg.Topology)
	assert.False(t, cfg.PrimitiveRestart)
	assert.Equal(t, vk.PolygonModeFill, cfg.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), cfg.CullMode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, cfg.FrontFace)
	assert.Equal(t, vk.SampleCount1Bit, cfg.Samples)
	for _, bit := range []vk.ColorComponentFlagBits{
		vk.ColorComponentRBit, vk.ColorComponentGBit, vk.ColorComponentBBit, vk.ColorComponentABit,
	} {
		assert.NotZero(t, cfg.ColorWriteMask&vk.ColorComponentFlags(bit))
	}
	assert.Equal(t, []uint32{1}, cfg.VertexCode)
	assert.Equal(t, []uint32{2}, cfg.FragmentCode)
	assert.True(t, cfg.DepthTest)
	assert.True(t, cfg.DepthWrite)
	assert.Equal(t, vk.CompareOpLess, cfg.DepthCompareOp)
	assert.False(t, cfg.BlendEnable)
	assert.Equal(t, vk.Bool32(vk.True), boolToVk(true))
	assert.Equal(t, vk.Bool32(vk.False), boolToVk(false))
}

func TestNewFramebufferConfig(t *testing.T) {
	extent := vk.Extent2D{Width: 640, Height: 480}
	cfg := NewFramebufferConfig(&VulkanRenderPass{}, &VulkanImageView{}, &VulkanImageView{}, extent)
	assert.Len(t, cfg.Attachments, 2)
	assert.Equal(t, extent, cfg.Extent)
	assert.Equal(t, uint32(1), cfg.Layers)
}

func TestResourceDestroyOnce(t *testing.T) {
	calls := 0
	view := &VulkanImageView{}
	assert.False(t, view.Alive())
	view.onDestroy(func() { calls++ })
	assert.True(t, view.Alive())

	view.Destroy()
	view.Destroy()
	assert.Equal(t, 1, calls)
	assert.False(t, view.Alive())
}
