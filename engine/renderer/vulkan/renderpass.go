package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

type AttachmentConfig struct {
	Format        vk.Format
	LoadOp        vk.AttachmentLoadOp
	StoreOp       vk.AttachmentStoreOp
	InitialLayout vk.ImageLayout
	FinalLayout   vk.ImageLayout
}

type SubpassConfig struct {
	// ColorAttachments index into RenderPassConfig.Attachments.
	ColorAttachments []uint32
	// DepthAttachment indexes into RenderPassConfig.Attachments, -1 for none.
	DepthAttachment int32
}

type DependencyConfig struct {
	SrcSubpass    uint32
	DstSubpass    uint32
	SrcStageMask  vk.PipelineStageFlags
	DstStageMask  vk.PipelineStageFlags
	SrcAccessMask vk.AccessFlags
	DstAccessMask vk.AccessFlags
}

type RenderPassConfig struct {
	Attachments  []AttachmentConfig
	Subpasses    []SubpassConfig
	Dependencies []DependencyConfig
}

// NewRenderPassConfig declares a color attachment (index 0) presented after
// the pass and a depth attachment (index 1) discarded after it, used by a
// single graphics subpass.
func NewRenderPassConfig(colorFormat, depthFormat vk.Format) RenderPassConfig {
	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit) |
		vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit)
	return RenderPassConfig{
		Attachments: []AttachmentConfig{
			{
				Format:        colorFormat,
				LoadOp:        vk.AttachmentLoadOpClear,
				StoreOp:       vk.AttachmentStoreOpStore,
				InitialLayout: vk.ImageLayoutUndefined,
				FinalLayout:   vk.ImageLayoutPresentSrc,
			},
			{
				Format:        depthFormat,
				LoadOp:        vk.AttachmentLoadOpClear,
				StoreOp:       vk.AttachmentStoreOpDontCare,
				InitialLayout: vk.ImageLayoutUndefined,
				FinalLayout:   vk.ImageLayoutDepthStencilAttachmentOptimal,
			},
		},
		Subpasses: []SubpassConfig{
			{
				ColorAttachments: []uint32{0},
				DepthAttachment:  1,
			},
		},
		Dependencies: []DependencyConfig{
			{
				SrcSubpass:   vk.SubpassExternal,
				DstSubpass:   0,
				SrcStageMask: stages,
				DstStageMask: stages,
				DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit) |
					vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
			},
		},
	}
}

type VulkanRenderPass struct {
	resource

	Handle vk.RenderPass
	Config RenderPassConfig
}

func (b *NativeBuilder) BuildRenderPass(device *VulkanDevice, cfg RenderPassConfig) (*VulkanRenderPass, error) {
	attachmentDescriptions := make([]vk.AttachmentDescription, len(cfg.Attachments))
	for i, a := range cfg.Attachments {
		attachmentDescriptions[i] = vk.AttachmentDescription{
			Format:         a.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         a.LoadOp,
			StoreOp:        a.StoreOp,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  a.InitialLayout,
			FinalLayout:    a.FinalLayout,
		}
	}

	subpasses := make([]vk.SubpassDescription, len(cfg.Subpasses))
	for i, s := range cfg.Subpasses {
		colorRefs := make([]vk.AttachmentReference, len(s.ColorAttachments))
		for j, idx := range s.ColorAttachments {
			colorRefs[j] = vk.AttachmentReference{
				Attachment: idx,
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			}
		}
		subpasses[i] = vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(colorRefs)),
			PColorAttachments:    colorRefs,
		}
		if s.DepthAttachment >= 0 {
			subpasses[i].PDepthStencilAttachment = &vk.AttachmentReference{
				Attachment: uint32(s.DepthAttachment),
				Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
			}
		}
	}

	dependencies := make([]vk.SubpassDependency, len(cfg.Dependencies))
	for i, d := range cfg.Dependencies {
		dependencies[i] = vk.SubpassDependency{
			SrcSubpass:    d.SrcSubpass,
			DstSubpass:    d.DstSubpass,
			SrcStageMask:  d.SrcStageMask,
			DstStageMask:  d.DstStageMask,
			SrcAccessMask: d.SrcAccessMask,
			DstAccessMask: d.DstAccessMask,
		}
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(device.Handle, &renderpassCreateInfo, b.Allocator, &handle); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateRenderPass", "%s", VulkanResultString(res, true))
	}
	renderPass := &VulkanRenderPass{
		Handle: handle,
		Config: cfg,
	}
	renderPass.onDestroy(func() {
		vk.DestroyRenderPass(device.Handle, handle, b.Allocator)
	})
	return renderPass, nil
}
