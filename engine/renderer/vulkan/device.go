package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

type VulkanPhysicalDevice struct {
	resource

	Handle    vk.PhysicalDevice
	Candidate DeviceCandidate
	Queues    QueueFamilyIndices
	// Extensions are the device extensions the logical device enables.
	Extensions []string
	Memory     vk.PhysicalDeviceMemoryProperties
}

type DeviceConfig struct {
	QueueFamilies     []uint32
	QueuePriority     float32
	SamplerAnisotropy bool
	Extensions        []string
	Layers            []string
}

// NewDeviceConfig requests one queue per distinct family of physical.
func NewDeviceConfig(physical *VulkanPhysicalDevice, layers []string) DeviceConfig {
	return DeviceConfig{
		QueueFamilies:     physical.Queues.Unique(),
		QueuePriority:     1.0,
		SamplerAnisotropy: physical.Candidate.SamplerAnisotropy,
		Extensions:        physical.Extensions,
		Layers:            layers,
	}
}

type VulkanDevice struct {
	resource

	Handle   vk.Device
	Physical *VulkanPhysicalDevice
	Config   DeviceConfig

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	ComputeQueue  vk.Queue
	TransferQueue vk.Queue
}

func (b *NativeBuilder) SelectPhysicalDevice(instance *VulkanInstance, surface *VulkanSurface, req DeviceRequirements, policy SelectionPolicy) (*VulkanPhysicalDevice, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(instance.Handle, &count, nil); !VulkanResultIsSuccess(res) {
		return nil, core.NewInitializationError("vkEnumeratePhysicalDevices", "%s", VulkanResultString(res, true))
	}
	if count == 0 {
		return nil, core.NewInitializationError("vkEnumeratePhysicalDevices", "no devices which support Vulkan were found")
	}
	handles := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance.Handle, &count, handles); !VulkanResultIsSuccess(res) {
		return nil, core.NewInitializationError("vkEnumeratePhysicalDevices", "%s", VulkanResultString(res, true))
	}
	handles = handles[:count]

	candidates := make([]DeviceCandidate, len(handles))
	memories := make([]vk.PhysicalDeviceMemoryProperties, len(handles))
	for i, h := range handles {
		c, mem, err := describeDevice(h, surface.Handle)
		if err != nil {
			return nil, err
		}
		candidates[i] = c
		memories[i] = mem
	}

	idx, queues, err := SelectDevice(candidates, req, policy)
	if err != nil {
		return nil, err
	}

	chosen := &candidates[idx]
	logDeviceReport(chosen, memories[idx].MemoryHeaps[:memories[idx].MemoryHeapCount])

	return &VulkanPhysicalDevice{
		Handle:     handles[idx],
		Candidate:  *chosen,
		Queues:     queues,
		Extensions: chooseDeviceExtensions(chosen, req),
		Memory:     memories[idx],
	}, nil
}

// describeDevice gathers everything selection looks at for one device.
func describeDevice(device vk.PhysicalDevice, surface vk.Surface) (DeviceCandidate, vk.PhysicalDeviceMemoryProperties, error) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(device, &features)
	features.Deref()

	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(device, &memory)
	memory.Deref()

	c := DeviceCandidate{
		Name:              nativeString(properties.DeviceName[:]),
		Type:              properties.DeviceType,
		DriverVersion:     properties.DriverVersion,
		APIVersion:        properties.ApiVersion,
		SamplerAnisotropy: features.SamplerAnisotropy == vk.True,
	}

	for i := uint32(0); i < memory.MemoryHeapCount; i++ {
		memory.MemoryHeaps[i].Deref()
		if vk.MemoryHeapFlags(memory.MemoryHeaps[i].Flags)&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			c.DeviceLocalMemory += uint64(memory.MemoryHeaps[i].Size)
		}
	}

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &familyCount, families)
	for i := range families {
		families[i].Deref()
		flags := families[i].QueueFlags
		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return c, memory, core.NewInitializationError("vkGetPhysicalDeviceSurfaceSupportKHR", "%s", VulkanResultString(res, true))
		}
		c.QueueFamilies = append(c.QueueFamilies, QueueFamily{
			Graphics: flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Compute:  flags&vk.QueueFlags(vk.QueueComputeBit) != 0,
			Transfer: flags&vk.QueueFlags(vk.QueueTransferBit) != 0,
			Present:  supportsPresent == vk.True,
		})
	}

	var extCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &extCount, nil); !VulkanResultIsSuccess(res) {
		return c, memory, core.NewInitializationError("vkEnumerateDeviceExtensionProperties", "%s", VulkanResultString(res, true))
	}
	if extCount > 0 {
		exts := make([]vk.ExtensionProperties, extCount)
		if res := vk.EnumerateDeviceExtensionProperties(device, "", &extCount, exts); !VulkanResultIsSuccess(res) {
			return c, memory, core.NewInitializationError("vkEnumerateDeviceExtensionProperties", "%s", VulkanResultString(res, true))
		}
		exts = exts[:extCount]
		for i := range exts {
			exts[i].Deref()
			c.Extensions = append(c.Extensions, nativeString(exts[i].ExtensionName[:]))
		}
	}

	support, err := querySwapchainSupport(device, surface)
	if err != nil {
		return c, memory, err
	}
	c.Swapchain = support

	return c, memory, nil
}

func querySwapchainSupport(device vk.PhysicalDevice, surface vk.Surface) (SwapchainSupport, error) {
	var support SwapchainSupport

	if res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &support.Capabilities); res != vk.Success {
		return support, core.NewInitializationError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", "%s", VulkanResultString(res, true))
	}
	support.Capabilities.Deref()
	support.Capabilities.CurrentExtent.Deref()
	support.Capabilities.MinImageExtent.Deref()
	support.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil); !VulkanResultIsSuccess(res) {
		return support, core.NewInitializationError("vkGetPhysicalDeviceSurfaceFormatsKHR", "%s", VulkanResultString(res, true))
	}
	if formatCount > 0 {
		support.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, support.Formats); !VulkanResultIsSuccess(res) {
			return support, core.NewInitializationError("vkGetPhysicalDeviceSurfaceFormatsKHR", "%s", VulkanResultString(res, true))
		}
		support.Formats = support.Formats[:formatCount]
		for i := range support.Formats {
			support.Formats[i].Deref()
		}
	}

	var modeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, nil); !VulkanResultIsSuccess(res) {
		return support, core.NewInitializationError("vkGetPhysicalDeviceSurfacePresentModesKHR", "%s", VulkanResultString(res, true))
	}
	if modeCount > 0 {
		support.PresentModes = make([]vk.PresentMode, modeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, support.PresentModes); !VulkanResultIsSuccess(res) {
			return support, core.NewInitializationError("vkGetPhysicalDeviceSurfacePresentModesKHR", "%s", VulkanResultString(res, true))
		}
		support.PresentModes = support.PresentModes[:modeCount]
	}
	return support, nil
}

func (b *NativeBuilder) FormatProperties(physical *VulkanPhysicalDevice, format vk.Format) vk.FormatProperties {
	var properties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(physical.Handle, format, &properties)
	properties.Deref()
	return properties
}

func (b *NativeBuilder) BuildDevice(physical *VulkanPhysicalDevice, cfg DeviceConfig) (*VulkanDevice, error) {
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(cfg.QueueFamilies))
	for i, family := range cfg.QueueFamilies {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{cfg.QueuePriority},
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}
	if cfg.SamplerAnisotropy {
		deviceFeatures.SamplerAnisotropy = vk.True
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(cfg.Layers),
	}

	var handle vk.Device
	if res := vk.CreateDevice(physical.Handle, &deviceCreateInfo, b.Allocator, &handle); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateDevice", "%s", VulkanResultString(res, true))
	}

	device := &VulkanDevice{
		Handle:   handle,
		Physical: physical,
		Config:   cfg,
	}
	getQueue := func(family int32, out *vk.Queue) {
		if family >= 0 {
			vk.GetDeviceQueue(handle, uint32(family), 0, out)
		}
	}
	getQueue(physical.Queues.Graphics, &device.GraphicsQueue)
	getQueue(physical.Queues.Present, &device.PresentQueue)
	getQueue(physical.Queues.Compute, &device.ComputeQueue)
	getQueue(physical.Queues.Transfer, &device.TransferQueue)
	core.LogDebug("Queues obtained.")

	device.onDestroy(func() {
		vk.DestroyDevice(handle, b.Allocator)
	})
	return device, nil
}

func (b *NativeBuilder) WaitIdle(device *VulkanDevice) {
	vk.DeviceWaitIdle(device.Handle)
}

// findMemoryIndex returns the first memory type allowed by typeFilter that
// has every bit of propertyFlags, or -1.
func findMemoryIndex(memory *vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	for i := uint32(0); i < memory.MemoryTypeCount; i++ {
		memory.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 && memory.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
