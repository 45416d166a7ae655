package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

// fakeBuilder records every native call and hands out wrappers whose release
// hooks log the kind of object released. Handles stay zero.
type fakeBuilder struct {
	failAt     string
	onCall     func(name string)
	candidates []DeviceCandidate
	support    SwapchainSupport
	formats    map[vk.Format]vk.FormatProperties

	calls    []string
	created  int
	released []string

	instanceConfigs  []InstanceConfig
	deviceConfigs    []DeviceConfig
	swapchainConfigs []SwapchainConfig
	imageConfigs     []ImageConfig
	viewConfigs      []ImageViewConfig
	renderPasses     []RenderPassConfig
	framebuffers     []FramebufferConfig
	pipelines        []PipelineConfig
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{
		candidates: []DeviceCandidate{testCandidate("Fake GPU", vk.PhysicalDeviceTypeDiscreteGpu)},
		support:    testSupport(),
		formats: map[vk.Format]vk.FormatProperties{
			vk.FormatX8D24UnormPack32: {OptimalTilingFeatures: vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)},
			vk.FormatD16Unorm:         {OptimalTilingFeatures: vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)},
		},
	}
}

func testSupport() SwapchainSupport {
	return SwapchainSupport{
		Capabilities: vk.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  3,
			CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
			MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
		},
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
	}
}

func testCandidate(name string, deviceType vk.PhysicalDeviceType) DeviceCandidate {
	return DeviceCandidate{
		Name:              name,
		Type:              deviceType,
		DeviceLocalMemory: 4 << 30,
		SamplerAnisotropy: true,
		Extensions:        []string{swapchainExtensionName},
		QueueFamilies: []QueueFamily{
			{Graphics: true, Compute: true, Transfer: true, Present: true},
			{Transfer: true},
		},
		Swapchain: testSupport(),
	}
}

func (f *fakeBuilder) call(name string) error {
	f.calls = append(f.calls, name)
	if f.onCall != nil {
		f.onCall(name)
	}
	if f.failAt == name {
		return core.NewInitializationError(name, "%s", VulkanResultString(vk.ErrorInitializationFailed, false))
	}
	return nil
}

func (f *fakeBuilder) track(r *resource, kind string) {
	f.created++
	r.onDestroy(func() {
		f.released = append(f.released, kind)
	})
}

func (f *fakeBuilder) BuildInstance(cfg InstanceConfig) (*VulkanInstance, error) {
	f.instanceConfigs = append(f.instanceConfigs, cfg)
	if err := f.call("vkCreateInstance"); err != nil {
		return nil, err
	}
	instance := &VulkanInstance{Config: cfg, APIVersion: cfg.APIVersion}
	if cfg.Messenger != nil {
		instance.Debug = &VulkanDebugCallback{}
		f.track(&instance.Debug.resource, "debug callback")
	}
	f.track(&instance.resource, "instance")
	return instance, nil
}

func (f *fakeBuilder) BuildSurface(instance *VulkanInstance, window Window) (*VulkanSurface, error) {
	if err := f.call("glfwCreateWindowSurface"); err != nil {
		return nil, err
	}
	if _, err := surfaceFromWindow(window, instance.Handle); err != nil {
		return nil, err
	}
	surface := &VulkanSurface{}
	f.track(&surface.resource, "surface")
	return surface, nil
}

func (f *fakeBuilder) SelectPhysicalDevice(instance *VulkanInstance, surface *VulkanSurface, req DeviceRequirements, policy SelectionPolicy) (*VulkanPhysicalDevice, error) {
	if err := f.call("vkEnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	idx, queues, err := SelectDevice(f.candidates, req, policy)
	if err != nil {
		return nil, err
	}
	c := f.candidates[idx]
	return &VulkanPhysicalDevice{
		Candidate:  c,
		Queues:     queues,
		Extensions: chooseDeviceExtensions(&c, req),
	}, nil
}

func (f *fakeBuilder) QuerySwapchainSupport(physical *VulkanPhysicalDevice, surface *VulkanSurface) (SwapchainSupport, error) {
	if err := f.call("vkGetPhysicalDeviceSurfaceCapabilitiesKHR"); err != nil {
		return SwapchainSupport{}, err
	}
	return f.support, nil
}

func (f *fakeBuilder) FormatProperties(physical *VulkanPhysicalDevice, format vk.Format) vk.FormatProperties {
	return f.formats[format]
}

func (f *fakeBuilder) BuildDevice(physical *VulkanPhysicalDevice, cfg DeviceConfig) (*VulkanDevice, error) {
	f.deviceConfigs = append(f.deviceConfigs, cfg)
	if err := f.call("vkCreateDevice"); err != nil {
		return nil, err
	}
	device := &VulkanDevice{Physical: physical, Config: cfg}
	f.track(&device.resource, "device")
	return device, nil
}

func (f *fakeBuilder) BuildSwapchain(device *VulkanDevice, cfg SwapchainConfig) (*VulkanSwapchain, error) {
	f.swapchainConfigs = append(f.swapchainConfigs, cfg)
	if err := f.call("vkCreateSwapchainKHR"); err != nil {
		return nil, err
	}
	swapchain := &VulkanSwapchain{Config: cfg, Images: make([]vk.Image, cfg.MinImageCount)}
	f.track(&swapchain.resource, "swapchain")
	return swapchain, nil
}

func (f *fakeBuilder) BuildImageView(device *VulkanDevice, cfg ImageViewConfig) (*VulkanImageView, error) {
	f.viewConfigs = append(f.viewConfigs, cfg)
	if err := f.call("vkCreateImageView"); err != nil {
		return nil, err
	}
	view := &VulkanImageView{Config: cfg}
	if cfg.AspectMask&vk.ImageAspectFlags(vk.ImageAspectDepthBit) != 0 {
		f.track(&view.resource, "depth view")
	} else {
		f.track(&view.resource, "swapchain view")
	}
	return view, nil
}

func (f *fakeBuilder) BuildImage(device *VulkanDevice, cfg ImageConfig) (*VulkanImage, error) {
	f.imageConfigs = append(f.imageConfigs, cfg)
	if err := f.call("vkCreateImage"); err != nil {
		return nil, err
	}
	image := &VulkanImage{Config: cfg}
	f.track(&image.resource, "depth image")
	return image, nil
}

func (f *fakeBuilder) BuildRenderPass(device *VulkanDevice, cfg RenderPassConfig) (*VulkanRenderPass, error) {
	f.renderPasses = append(f.renderPasses, cfg)
	if err := f.call("vkCreateRenderPass"); err != nil {
		return nil, err
	}
	renderPass := &VulkanRenderPass{Config: cfg}
	f.track(&renderPass.resource, "render pass")
	return renderPass, nil
}

func (f *fakeBuilder) BuildFramebuffer(device *VulkanDevice, cfg FramebufferConfig) (*VulkanFramebuffer, error) {
	f.framebuffers = append(f.framebuffers, cfg)
	if err := f.call("vkCreateFramebuffer"); err != nil {
		return nil, err
	}
	framebuffer := &VulkanFramebuffer{Config: cfg}
	f.track(&framebuffer.resource, "framebuffer")
	return framebuffer, nil
}

func (f *fakeBuilder) BuildPipeline(device *VulkanDevice, cfg PipelineConfig) (*VulkanPipeline, error) {
	f.pipelines = append(f.pipelines, cfg)
	if err := f.call("vkCreateGraphicsPipelines"); err != nil {
		return nil, err
	}
	pipeline := &VulkanPipeline{Config: cfg}
	f.track(&pipeline.resource, "pipeline")
	return pipeline, nil
}

func (f *fakeBuilder) WaitIdle(device *VulkanDevice) {
	f.calls = append(f.calls, "vkDeviceWaitIdle")
}

// fakeWindow reports sizes[n] as its framebuffer size after n waits, repeating
// the last entry.
type fakeWindow struct {
	sizes      [][2]int
	waits      int
	closeAfter int
	surface    uintptr
	surfaceErr error
}

func newFakeWindow(width, height int) *fakeWindow {
	return &fakeWindow{
		sizes:      [][2]int{{width, height}},
		closeAfter: -1,
		surface:    0xcafe,
	}
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

func (w *fakeWindow) CreateWindowSurface(instance interface{}) (uintptr, error) {
	return w.surface, w.surfaceErr
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	i := w.waits
	if i >= len(w.sizes) {
		i = len(w.sizes) - 1
	}
	return w.sizes[i][0], w.sizes[i][1]
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
}

func (w *fakeWindow) ShouldClose() bool {
	return w.closeAfter >= 0 && w.waits >= w.closeAfter
}

type fakeShaders map[string][]uint32

func newFakeShaders() fakeShaders {
	return fakeShaders{
		"vert.spv": {0x07230203, 0x00010000, 1},
		"frag.spv": {0x07230203, 0x00010000, 2},
	}
}

func (s fakeShaders) LoadShader(path string) ([]uint32, error) {
	code, ok := s[path]
	if !ok {
		return nil, errors.Errorf("shader not found: %s", path)
	}
	return code, nil
}
