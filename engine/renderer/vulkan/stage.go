package vulkan

type Stage uint8

const (
	StageUninitialized Stage = iota
	StageInstanceCreated
	StageSurfaceCreated
	StagePhysicalDeviceSelected
	StageLogicalDeviceCreated
	StageSwapchainCreated
	StageDepthBufferCreated
	StageRenderPassCreated
	StageFramebuffersCreated
	StagePipelineCreated
)

var stageNames = [...]string{
	StageUninitialized:          "Uninitialized",
	StageInstanceCreated:        "InstanceCreated",
	StageSurfaceCreated:         "SurfaceCreated",
	StagePhysicalDeviceSelected: "PhysicalDeviceSelected",
	StageLogicalDeviceCreated:   "LogicalDeviceCreated",
	StageSwapchainCreated:       "SwapchainCreated",
	StageDepthBufferCreated:     "DepthBufferCreated",
	StageRenderPassCreated:      "RenderPassCreated",
	StageFramebuffersCreated:    "FramebuffersCreated",
	StagePipelineCreated:        "PipelineCreated",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "Unknown"
}
