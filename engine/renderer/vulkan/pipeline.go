package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

/**
 * @brief Fixed-function state and shader bytecode of a graphics pipeline.
 */
type PipelineConfig struct {
	RenderPass       vk.RenderPass
	VertexCode       []uint32
	FragmentCode     []uint32
	Topology         vk.PrimitiveTopology
	PrimitiveRestart bool
	Viewport         vk.Viewport
	Scissor          vk.Rect2D
	PolygonMode      vk.PolygonMode
	CullMode         vk.CullModeFlags
	FrontFace        vk.FrontFace
	Samples          vk.SampleCountFlagBits
	DepthTest        bool
	DepthWrite       bool
	DepthCompareOp   vk.CompareOp
	BlendEnable      bool
	ColorWriteMask   vk.ColorComponentFlags
}

// NewPipelineConfig describes an opaque, depth-tested triangle pipeline
// drawing to the whole extent.
func NewPipelineConfig(renderPass *VulkanRenderPass, extent vk.Extent2D, vertexCode, fragmentCode []uint32) PipelineConfig {
	return PipelineConfig{
		RenderPass:       renderPass.Handle,
		VertexCode:       vertexCode,
		FragmentCode:     fragmentCode,
		Topology:         vk.PrimitiveTopologyTriangleList,
		PrimitiveRestart: false,
		Viewport: vk.Viewport{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0.0,
			MaxDepth: 1.0,
		},
		Scissor: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		PolygonMode:    vk.PolygonModeFill,
		CullMode:       vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:      vk.FrontFaceCounterClockwise,
		Samples:        vk.SampleCount1Bit,
		DepthTest:      true,
		DepthWrite:     true,
		DepthCompareOp: vk.CompareOpLess,
		BlendEnable:    false,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
}

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	resource

	Handle         vk.Pipeline
	PipelineLayout vk.PipelineLayout
	Config         PipelineConfig
}

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func (b *NativeBuilder) createShaderModule(device *VulkanDevice, code []uint32) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(device.Handle, &createInfo, b.Allocator, &module); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateShaderModule", "%s", VulkanResultString(res, true))
	}
	return module, nil
}

// BuildPipeline creates the pipeline and its layout. The shader modules only
// live for the duration of the call.
func (b *NativeBuilder) BuildPipeline(device *VulkanDevice, cfg PipelineConfig) (*VulkanPipeline, error) {
	vertModule, err := b.createShaderModule(device, cfg.VertexCode)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(device.Handle, vertModule, b.Allocator)

	fragModule, err := b.createShaderModule(device, cfg.FragmentCode)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(device.Handle, fragModule, b.Allocator)

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertModule,
			PName:  VulkanSafeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  VulkanSafeString("main"),
		},
	}

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               cfg.Topology,
		PrimitiveRestartEnable: boolToVk(cfg.PrimitiveRestart),
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{cfg.Viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{cfg.Scissor},
	}

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             cfg.PolygonMode,
		LineWidth:               1.0,
		CullMode:                cfg.CullMode,
		FrontFace:               cfg.FrontFace,
		DepthBiasEnable:         vk.False,
	}

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: cfg.Samples,
		MinSampleShading:     1.0,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       boolToVk(cfg.DepthTest),
		DepthWriteEnable:      boolToVk(cfg.DepthWrite),
		DepthCompareOp:        cfg.DepthCompareOp,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable:    boolToVk(cfg.BlendEnable),
		ColorWriteMask: cfg.ColorWriteMask,
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(device.Handle, &pipelineLayoutCreateInfo, b.Allocator, &layout); res != vk.Success {
		return nil, core.NewInitializationError("vkCreatePipelineLayout", "%s", VulkanResultString(res, true))
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		Layout:              layout,
		RenderPass:          cfg.RenderPass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(device.Handle, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{pipelineCreateInfo}, b.Allocator, pipelines); res != vk.Success {
		vk.DestroyPipelineLayout(device.Handle, layout, b.Allocator)
		return nil, core.NewInitializationError("vkCreateGraphicsPipelines", "%s", VulkanResultString(res, true))
	}

	pipeline := &VulkanPipeline{
		Handle:         pipelines[0],
		PipelineLayout: layout,
		Config:         cfg,
	}
	pipeline.onDestroy(func() {
		vk.DestroyPipeline(device.Handle, pipeline.Handle, b.Allocator)
		vk.DestroyPipelineLayout(device.Handle, layout, b.Allocator)
	})
	core.LogDebug("Graphics pipeline created!")
	return pipeline, nil
}
