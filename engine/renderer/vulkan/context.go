package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

type ContextConfig struct {
	ApplicationName string
	// Validation enables the validation layer and the debug messenger.
	Validation      bool
	FailureSeverity Severity
	OutputSeverity  Severity
	Requirements    DeviceRequirements
	Policy          SelectionPolicy
	VertexShader    string
	FragmentShader  string
}

func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		ApplicationName: "Anima Bootstrap",
		Validation:      true,
		FailureSeverity: SeverityError,
		OutputSeverity:  SeverityDebug,
		Requirements:    DefaultDeviceRequirements(),
		Policy:          SelectDiscrete,
		VertexShader:    "vert.spv",
		FragmentShader:  "frag.spv",
	}
}

// VulkanContext builds the rendering context one stage at a time and owns
// every object it builds.
type VulkanContext struct {
	ID uuid.UUID

	config    ContextConfig
	builder   ResourceBuilder
	shaders   ShaderSource
	messenger *DebugMessenger

	stage  Stage
	window Window

	instance       *VulkanInstance
	surface        *VulkanSurface
	physicalDevice *VulkanPhysicalDevice
	device         *VulkanDevice
	swapchain      *VulkanSwapchain
	swapchainViews []*VulkanImageView
	depthImage     *VulkanImage
	depthView      *VulkanImageView
	depthFormat    vk.Format
	renderPass     *VulkanRenderPass
	framebuffers   []*VulkanFramebuffer
	pipeline       *VulkanPipeline
}

func NewVulkanContext(config ContextConfig, builder ResourceBuilder, shaders ShaderSource) *VulkanContext {
	vc := &VulkanContext{
		ID:      uuid.New(),
		config:  config,
		builder: builder,
		shaders: shaders,
		stage:   StageUninitialized,
	}
	if config.Validation {
		vc.messenger = NewDebugMessenger(config.FailureSeverity, config.OutputSeverity)
	}
	return vc
}

func (vc *VulkanContext) Stage() Stage                          { return vc.stage }
func (vc *VulkanContext) Instance() *VulkanInstance             { return vc.instance }
func (vc *VulkanContext) Surface() *VulkanSurface               { return vc.surface }
func (vc *VulkanContext) PhysicalDevice() *VulkanPhysicalDevice { return vc.physicalDevice }
func (vc *VulkanContext) Device() *VulkanDevice                 { return vc.device }
func (vc *VulkanContext) Swapchain() *VulkanSwapchain           { return vc.swapchain }
func (vc *VulkanContext) SwapchainViews() []*VulkanImageView    { return vc.swapchainViews }
func (vc *VulkanContext) RenderPass() *VulkanRenderPass         { return vc.renderPass }
func (vc *VulkanContext) Framebuffers() []*VulkanFramebuffer    { return vc.framebuffers }
func (vc *VulkanContext) Pipeline() *VulkanPipeline             { return vc.pipeline }
func (vc *VulkanContext) Messenger() *DebugMessenger            { return vc.messenger }

// DepthBuffer returns nil until the depth buffer step has completed.
func (vc *VulkanContext) DepthBuffer() *DepthBuffer {
	if vc.stage < StageDepthBufferCreated {
		return nil
	}
	return &DepthBuffer{
		Image:  vc.depthImage,
		View:   vc.depthView,
		Format: vc.depthFormat,
	}
}

// Init runs every construction step in order against window. The first
// failing step stops the sequence. Whatever was built stays owned by the
// context and is released by Destroy.
func (vc *VulkanContext) Init(window Window) error {
	if vc.stage != StageUninitialized {
		return core.Wrap(errors.WithStack(core.ErrAlreadyInitialized), "init context %s at stage %s", vc.ID, vc.stage)
	}
	vc.window = window

	steps := []func() error{
		vc.createInstance,
		vc.createSurface,
		vc.selectPhysicalDevice,
		vc.createLogicalDevice,
		vc.createSwapchain,
		vc.createDepthBuffer,
		vc.createRenderPass,
		vc.createFramebuffers,
		vc.createPipeline,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return core.Wrap(err, "init context %s", vc.ID)
		}
	}

	core.LogInfo("[%s] Vulkan context initialized successfully.", vc.ID)
	return nil
}

// expect guards a step against running out of order.
func (vc *VulkanContext) expect(stage Stage) error {
	if vc.stage != stage {
		return errors.Errorf("step requires stage %s, context is at %s", stage, vc.stage)
	}
	return nil
}

// advance surfaces validation failures reported during the step before
// moving to next.
func (vc *VulkanContext) advance(next Stage) error {
	if vc.messenger != nil {
		if err := vc.messenger.TakePending(); err != nil {
			return core.Wrap(err, "validation while reaching %s", next)
		}
	}
	vc.stage = next
	core.LogDebug("[%s] stage %s", vc.ID, next)
	return nil
}

func (vc *VulkanContext) createInstance() error {
	if err := vc.expect(StageUninitialized); err != nil {
		return err
	}
	cfg := NewInstanceConfig(vc.config.ApplicationName, vc.window.RequiredInstanceExtensions(), vc.messenger)
	instance, err := vc.builder.BuildInstance(cfg)
	if err != nil {
		return core.Wrap(err, "create instance")
	}
	vc.instance = instance
	core.LogInfo("[%s] Vulkan Instance created.", vc.ID)
	return vc.advance(StageInstanceCreated)
}

func (vc *VulkanContext) createSurface() error {
	if err := vc.expect(StageInstanceCreated); err != nil {
		return err
	}
	surface, err := vc.builder.BuildSurface(vc.instance, vc.window)
	if err != nil {
		return core.Wrap(err, "create surface")
	}
	vc.surface = surface
	core.LogInfo("[%s] Vulkan surface created.", vc.ID)
	return vc.advance(StageSurfaceCreated)
}

func (vc *VulkanContext) selectPhysicalDevice() error {
	if err := vc.expect(StageSurfaceCreated); err != nil {
		return err
	}
	physical, err := vc.builder.SelectPhysicalDevice(vc.instance, vc.surface, vc.config.Requirements, vc.config.Policy)
	if err != nil {
		return core.Wrap(err, "select physical device (policy %s)", vc.config.Policy)
	}
	vc.physicalDevice = physical
	core.LogInfo("[%s] Physical device selected: %s.", vc.ID, physical.Candidate.Name)
	return vc.advance(StagePhysicalDeviceSelected)
}

func (vc *VulkanContext) createLogicalDevice() error {
	if err := vc.expect(StagePhysicalDeviceSelected); err != nil {
		return err
	}
	cfg := NewDeviceConfig(vc.physicalDevice, vc.instance.Config.Layers)
	device, err := vc.builder.BuildDevice(vc.physicalDevice, cfg)
	if err != nil {
		return core.Wrap(err, "create logical device")
	}
	vc.device = device
	core.LogInfo("[%s] Logical device created with queue families %v.", vc.ID, cfg.QueueFamilies)
	return vc.advance(StageLogicalDeviceCreated)
}

// WaitForDrawable blocks on window events while either framebuffer
// dimension is 0. It fails with core.ErrWindowClosed if the window is closed
// while waiting.
func WaitForDrawable(window Window) (uint32, uint32, error) {
	width, height := window.FramebufferSize()
	for width == 0 || height == 0 {
		if window.ShouldClose() {
			return 0, 0, errors.WithStack(core.ErrWindowClosed)
		}
		window.WaitEvents()
		width, height = window.FramebufferSize()
	}
	return uint32(width), uint32(height), nil
}

func (vc *VulkanContext) createSwapchain() error {
	if err := vc.expect(StageLogicalDeviceCreated); err != nil {
		return err
	}
	width, height, err := WaitForDrawable(vc.window)
	if err != nil {
		return core.Wrap(err, "wait for a drawable framebuffer")
	}

	support, err := vc.builder.QuerySwapchainSupport(vc.physicalDevice, vc.surface)
	if err != nil {
		return core.Wrap(err, "query swapchain support")
	}
	vc.physicalDevice.Candidate.Swapchain = support

	cfg := NewSwapchainConfig(vc.physicalDevice, vc.surface, width, height)
	swapchain, err := vc.builder.BuildSwapchain(vc.device, cfg)
	if err != nil {
		return core.Wrap(err, "create swapchain %dx%d", width, height)
	}
	vc.swapchain = swapchain

	for i, image := range swapchain.Images {
		view, err := vc.builder.BuildImageView(vc.device, NewColorViewConfig(image, swapchain.ImageFormat()))
		if err != nil {
			return core.Wrap(err, "create view for swapchain image %d", i)
		}
		vc.swapchainViews = append(vc.swapchainViews, view)
	}

	core.LogInfo("[%s] Swapchain created: %d images, %dx%d.", vc.ID, len(swapchain.Images), cfg.Extent.Width, cfg.Extent.Height)
	return vc.advance(StageSwapchainCreated)
}

func (vc *VulkanContext) createDepthBuffer() error {
	if err := vc.expect(StageSwapchainCreated); err != nil {
		return err
	}
	format, err := FindDepthFormat(func(f vk.Format) vk.FormatProperties {
		return vc.builder.FormatProperties(vc.physicalDevice, f)
	})
	if err != nil {
		return core.Wrap(err, "detect depth format")
	}

	image, err := vc.builder.BuildImage(vc.device, NewDepthImageConfig(format, vc.swapchain.Extent()))
	if err != nil {
		return core.Wrap(err, "create depth image")
	}
	vc.depthImage = image

	view, err := vc.builder.BuildImageView(vc.device, NewDepthViewConfig(image))
	if err != nil {
		return core.Wrap(err, "create depth view")
	}
	vc.depthView = view
	vc.depthFormat = format

	core.LogInfo("[%s] Depth buffer created.", vc.ID)
	return vc.advance(StageDepthBufferCreated)
}

func (vc *VulkanContext) createRenderPass() error {
	if err := vc.expect(StageDepthBufferCreated); err != nil {
		return err
	}
	cfg := NewRenderPassConfig(vc.swapchain.ImageFormat(), vc.depthFormat)
	renderPass, err := vc.builder.BuildRenderPass(vc.device, cfg)
	if err != nil {
		return core.Wrap(err, "create render pass")
	}
	vc.renderPass = renderPass
	core.LogInfo("[%s] Render pass created.", vc.ID)
	return vc.advance(StageRenderPassCreated)
}

func (vc *VulkanContext) createFramebuffers() error {
	if err := vc.expect(StageRenderPassCreated); err != nil {
		return err
	}
	for i, view := range vc.swapchainViews {
		cfg := NewFramebufferConfig(vc.renderPass, view, vc.depthView, vc.swapchain.Extent())
		framebuffer, err := vc.builder.BuildFramebuffer(vc.device, cfg)
		if err != nil {
			return core.Wrap(err, "create framebuffer %d", i)
		}
		vc.framebuffers = append(vc.framebuffers, framebuffer)
	}
	core.LogInfo("[%s] %d framebuffers created.", vc.ID, len(vc.framebuffers))
	return vc.advance(StageFramebuffersCreated)
}

func (vc *VulkanContext) createPipeline() error {
	if err := vc.expect(StageFramebuffersCreated); err != nil {
		return err
	}
	vertexCode, err := vc.shaders.LoadShader(vc.config.VertexShader)
	if err != nil {
		return core.Wrap(err, "load vertex shader %s", vc.config.VertexShader)
	}
	fragmentCode, err := vc.shaders.LoadShader(vc.config.FragmentShader)
	if err != nil {
		return core.Wrap(err, "load fragment shader %s", vc.config.FragmentShader)
	}

	cfg := NewPipelineConfig(vc.renderPass, vc.swapchain.Extent(), vertexCode, fragmentCode)
	pipeline, err := vc.builder.BuildPipeline(vc.device, cfg)
	if err != nil {
		return core.Wrap(err, "create graphics pipeline")
	}
	vc.pipeline = pipeline
	core.LogInfo("[%s] Graphics pipeline created.", vc.ID)
	return vc.advance(StagePipelineCreated)
}

// Destroy releases everything the context built, in reverse order of
// construction, and returns the context to StageUninitialized. It is safe
// after a failed Init and safe to call twice.
func (vc *VulkanContext) Destroy() {
	if vc.device != nil {
		vc.builder.WaitIdle(vc.device)
	}

	if vc.pipeline != nil {
		vc.pipeline.Destroy()
		vc.pipeline = nil
	}
	for i := len(vc.framebuffers) - 1; i >= 0; i-- {
		vc.framebuffers[i].Destroy()
	}
	vc.framebuffers = nil
	if vc.renderPass != nil {
		vc.renderPass.Destroy()
		vc.renderPass = nil
	}
	if vc.depthView != nil {
		vc.depthView.Destroy()
		vc.depthView = nil
	}
	if vc.depthImage != nil {
		vc.depthImage.Destroy()
		vc.depthImage = nil
	}
	for i := len(vc.swapchainViews) - 1; i >= 0; i-- {
		vc.swapchainViews[i].Destroy()
	}
	vc.swapchainViews = nil
	if vc.swapchain != nil {
		vc.swapchain.Destroy()
		vc.swapchain = nil
	}
	if vc.device != nil {
		vc.device.Destroy()
		vc.device = nil
	}
	// Physical devices are not destroyed.
	vc.physicalDevice = nil
	if vc.surface != nil {
		vc.surface.Destroy()
		vc.surface = nil
	}
	if vc.instance != nil {
		if vc.instance.Debug != nil {
			vc.instance.Debug.Destroy()
		}
		vc.instance.Destroy()
		vc.instance = nil
	}

	if vc.messenger != nil {
		_ = vc.messenger.TakePending()
	}
	if vc.stage != StageUninitialized {
		core.LogInfo("[%s] Vulkan context destroyed.", vc.ID)
	}
	vc.stage = StageUninitialized
	vc.window = nil
}
