package vulkan

import (
	"runtime"

	vk "github.com/goki/vulkan"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

const (
	validationLayerName                 = "VK_LAYER_KHRONOS_validation"
	debugReportExtensionName            = "VK_EXT_debug_report"
	swapchainExtensionName              = "VK_KHR_swapchain"
	portabilitySubsetExtensionName      = "VK_KHR_portability_subset"
	portabilityEnumerationExtensionName = "VK_KHR_portability_enumeration"
	physicalDeviceProperties2Name       = "VK_KHR_get_physical_device_properties2"
)

type InstanceConfig struct {
	ApplicationName    string
	ApplicationVersion uint32
	APIVersion         uint32
	EngineName         string
	EngineVersion      uint32
	Extensions         []string
	Layers             []string
	// Messenger receives validation reports. Nil disables debug reporting.
	Messenger *DebugMessenger
}

// NewInstanceConfig enables the window's surface extensions and, when
// messenger is set, the validation layer and the debug report extension.
func NewInstanceConfig(appName string, windowExtensions []string, messenger *DebugMessenger) InstanceConfig {
	cfg := InstanceConfig{
		ApplicationName:    appName,
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		APIVersion:         vk.MakeVersion(1, 3, 0),
		EngineName:         "Anima Engine",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		Extensions:         []string{},
		Layers:             []string{},
		Messenger:          messenger,
	}

	add := func(ext string) {
		if !slices.Contains(cfg.Extensions, ext) {
			cfg.Extensions = append(cfg.Extensions, ext)
		}
	}
	for _, ext := range windowExtensions {
		add(ext)
	}
	if runtime.GOOS == "darwin" {
		add(portabilityEnumerationExtensionName)
		add(physicalDeviceProperties2Name)
	}
	if messenger != nil {
		add(debugReportExtensionName)
		cfg.Layers = append(cfg.Layers, validationLayerName)
	}
	return cfg
}

type VulkanInstance struct {
	resource

	Handle     vk.Instance
	Config     InstanceConfig
	APIVersion uint32
	Debug      *VulkanDebugCallback
}

type VulkanSurface struct {
	resource

	Handle vk.Surface
}

// surfaceFromWindow asks the window for a surface and rejects both a failed
// call and a null handle.
func surfaceFromWindow(window Window, instance interface{}) (uintptr, error) {
	surface, err := window.CreateWindowSurface(instance)
	if err != nil {
		return 0, core.NewInitializationError("glfwCreateWindowSurface", "%s", err)
	}
	if surface == 0 {
		return 0, core.NewInitializationError("glfwCreateWindowSurface", "returned a null surface")
	}
	return surface, nil
}

func (b *NativeBuilder) BuildInstance(cfg InstanceConfig) (*VulkanInstance, error) {
	if err := checkInstanceLayers(cfg.Layers); err != nil {
		return nil, err
	}

	apiVersion := cfg.APIVersion
	if apiVersion == 0 {
		apiVersion = vk.MakeVersion(1, 3, 0)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         apiVersion,
		ApplicationVersion: cfg.ApplicationVersion,
		PApplicationName:   VulkanSafeString(cfg.ApplicationName),
		EngineVersion:      cfg.EngineVersion,
		PEngineName:        VulkanSafeString(cfg.EngineName),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(cfg.Layers),
	}
	if slices.Contains(cfg.Extensions, portabilityEnumerationExtensionName) {
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	core.LogDebug("Instance extensions: %v", cfg.Extensions)
	core.LogDebug("Instance layers: %v", cfg.Layers)

	var handle vk.Instance
	if res := vk.CreateInstance(&createInfo, b.Allocator, &handle); res != vk.Success {
		return nil, core.NewInitializationError("vkCreateInstance", "%s", VulkanResultString(res, true))
	}
	if err := vk.InitInstance(handle); err != nil {
		vk.DestroyInstance(handle, b.Allocator)
		return nil, core.NewInitializationError("vkInitInstance", "%s", err)
	}

	instance := &VulkanInstance{
		Handle:     handle,
		Config:     cfg,
		APIVersion: apiVersion,
	}

	if cfg.Messenger != nil {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       cfg.Messenger.Flags(),
			PfnCallback: cfg.Messenger.callback,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(handle, &debugCreateInfo, b.Allocator, &dbg); res != vk.Success {
			vk.DestroyInstance(handle, b.Allocator)
			return nil, core.NewInitializationError("vkCreateDebugReportCallbackEXT", "%s", VulkanResultString(res, true))
		}
		instance.Debug = &VulkanDebugCallback{Handle: dbg}
		instance.Debug.onDestroy(func() {
			vk.DestroyDebugReportCallback(handle, dbg, b.Allocator)
			core.LogDebug("Vulkan debugger destroyed.")
		})
		core.LogDebug("Vulkan debugger created.")
	}

	instance.onDestroy(func() {
		vk.DestroyInstance(handle, b.Allocator)
	})
	return instance, nil
}

func checkInstanceLayers(required []string) error {
	if len(required) == 0 {
		return nil
	}
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); !VulkanResultIsSuccess(res) {
		return core.NewInitializationError("vkEnumerateInstanceLayerProperties", "%s", VulkanResultString(res, true))
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); !VulkanResultIsSuccess(res) {
		return core.NewInitializationError("vkEnumerateInstanceLayerProperties", "%s", VulkanResultString(res, true))
	}
	layers = layers[:count]
	available := make([]string, 0, count)
	for i := range layers {
		layers[i].Deref()
		available = append(available, nativeString(layers[i].LayerName[:]))
	}
	for _, name := range required {
		if !slices.Contains(available, name) {
			return core.NewInitializationError("vkCreateInstance", "required validation layer is missing: %s", name)
		}
		core.LogDebug("Found layer %s.", name)
	}
	return nil
}

func (b *NativeBuilder) BuildSurface(instance *VulkanInstance, window Window) (*VulkanSurface, error) {
	ptr, err := surfaceFromWindow(window, instance.Handle)
	if err != nil {
		return nil, err
	}
	handle := vk.SurfaceFromPointer(ptr)
	surface := &VulkanSurface{Handle: handle}
	surface.onDestroy(func() {
		vk.DestroySurface(instance.Handle, handle, b.Allocator)
	})
	return surface, nil
}
