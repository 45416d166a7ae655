package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

// QueueFamily describes what one queue family of a device can do.
type QueueFamily struct {
	Graphics bool
	Compute  bool
	Transfer bool
	Present  bool
}

// SwapchainSupport is what a surface offers on a given device.
type SwapchainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Usable reports whether a swapchain can be built at all.
func (s SwapchainSupport) Usable() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// DeviceCandidate is a physical device reduced to the data selection needs.
type DeviceCandidate struct {
	Name              string
	Type              vk.PhysicalDeviceType
	DriverVersion     uint32
	APIVersion        uint32
	DeviceLocalMemory uint64
	SamplerAnisotropy bool
	Extensions        []string
	QueueFamilies     []QueueFamily
	Swapchain         SwapchainSupport
}

// QueueFamilyIndices holds one family index per queue role, -1 when the
// device has no family for that role.
type QueueFamilyIndices struct {
	Graphics int32
	Present  int32
	Compute  int32
	Transfer int32
}

// Unique returns the distinct family indices in ascending order.
func (q QueueFamilyIndices) Unique() []uint32 {
	out := []uint32{}
	for _, idx := range []int32{q.Graphics, q.Present, q.Compute, q.Transfer} {
		if idx >= 0 {
			out = append(out, uint32(idx))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// FindQueueFamilies assigns a family to each queue role. Graphics and compute
// take the first family that supports them. Present prefers the graphics
// family. Transfer takes the family doing the least other work, which favours
// a dedicated transfer queue.
func FindQueueFamilies(families []QueueFamily) QueueFamilyIndices {
	out := QueueFamilyIndices{Graphics: -1, Present: -1, Compute: -1, Transfer: -1}

	minTransferScore := 255
	for i, f := range families {
		currentTransferScore := 0

		if f.Graphics {
			if out.Graphics < 0 {
				out.Graphics = int32(i)
			}
			currentTransferScore++
		}
		if f.Compute {
			if out.Compute < 0 {
				out.Compute = int32(i)
			}
			currentTransferScore++
		}
		if f.Transfer && currentTransferScore < minTransferScore {
			minTransferScore = currentTransferScore
			out.Transfer = int32(i)
		}
		if f.Present && out.Present < 0 {
			out.Present = int32(i)
		}
	}

	if out.Graphics >= 0 && out.Present >= 0 && families[out.Graphics].Present {
		out.Present = out.Graphics
	}
	return out
}

type DeviceRequirements struct {
	Graphics          bool
	Present           bool
	Compute           bool
	Transfer          bool
	SamplerAnisotropy bool
	DiscreteGPU       bool
	Extensions        []string
}

func DefaultDeviceRequirements() DeviceRequirements {
	return DeviceRequirements{
		Graphics:          true,
		Present:           true,
		Compute:           true,
		Transfer:          true,
		SamplerAnisotropy: true,
		Extensions:        []string{swapchainExtensionName},
	}
}

// Check returns the queue assignment of c, or the reason c does not qualify.
// Graphics and present queues are always required.
func (r DeviceRequirements) Check(c *DeviceCandidate) (QueueFamilyIndices, error) {
	q := FindQueueFamilies(c.QueueFamilies)

	if r.DiscreteGPU && c.Type != vk.PhysicalDeviceTypeDiscreteGpu {
		return q, errors.New("not a discrete GPU")
	}
	missing := []string{}
	if q.Graphics < 0 {
		missing = append(missing, "graphics")
	}
	if q.Present < 0 {
		missing = append(missing, "present")
	}
	if r.Compute && q.Compute < 0 {
		missing = append(missing, "compute")
	}
	if r.Transfer && q.Transfer < 0 {
		missing = append(missing, "transfer")
	}
	if len(missing) > 0 {
		return q, fmt.Errorf("missing queue families: %s", strings.Join(missing, ", "))
	}
	if !c.Swapchain.Usable() {
		return q, errors.New("required swapchain support not present")
	}
	for _, ext := range r.Extensions {
		if !slices.Contains(c.Extensions, ext) {
			return q, fmt.Errorf("required extension not found: %s", ext)
		}
	}
	if r.SamplerAnisotropy && !c.SamplerAnisotropy {
		return q, errors.New("samplerAnisotropy not supported")
	}
	return q, nil
}

// SelectionPolicy picks one device among those meeting the requirements.
type SelectionPolicy string

const (
	// SelectFirst takes the first qualifying device in enumeration order.
	SelectFirst SelectionPolicy = "first"
	// SelectDiscrete prefers discrete, then integrated, virtual, CPU and
	// other device types.
	SelectDiscrete SelectionPolicy = "discrete"
	// SelectMemory prefers the largest device-local heap.
	SelectMemory SelectionPolicy = "memory"
)

func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch p := SelectionPolicy(strings.ToLower(s)); p {
	case SelectFirst, SelectDiscrete, SelectMemory:
		return p, nil
	default:
		return SelectDiscrete, fmt.Errorf("unknown selection policy %q", s)
	}
}

func deviceTypeRank(t vk.PhysicalDeviceType) int {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 0
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 1
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 2
	case vk.PhysicalDeviceTypeCpu:
		return 3
	default:
		return 4
	}
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "Discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "Integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "Virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	default:
		return "Unknown"
	}
}

// better reports whether a should replace b under policy. Ties keep b, so
// enumeration order decides.
func (p SelectionPolicy) better(a, b *DeviceCandidate) bool {
	switch p {
	case SelectDiscrete:
		return deviceTypeRank(a.Type) < deviceTypeRank(b.Type)
	case SelectMemory:
		return a.DeviceLocalMemory > b.DeviceLocalMemory
	default:
		return false
	}
}

// SelectDevice returns the index of the chosen candidate and its queue
// assignment. It fails with core.ErrNoSuitableDevice when nothing qualifies.
func SelectDevice(candidates []DeviceCandidate, req DeviceRequirements, policy SelectionPolicy) (int, QueueFamilyIndices, error) {
	chosen := -1
	var queues QueueFamilyIndices
	for i := range candidates {
		c := &candidates[i]
		q, err := req.Check(c)
		if err != nil {
			core.LogInfo("Device '%s' skipped: %s", c.Name, err)
			continue
		}
		core.LogDebug("Device '%s' meets requirements (graphics=%d present=%d compute=%d transfer=%d)",
			c.Name, q.Graphics, q.Present, q.Compute, q.Transfer)
		if chosen < 0 || policy.better(c, &candidates[chosen]) {
			chosen = i
			queues = q
		}
	}
	if chosen < 0 {
		return -1, queues, errors.Wrapf(core.ErrNoSuitableDevice, "%d candidates", len(candidates))
	}
	return chosen, queues, nil
}

// chooseDeviceExtensions is the required list plus the portability subset
// when the device exposes it.
func chooseDeviceExtensions(c *DeviceCandidate, req DeviceRequirements) []string {
	out := slices.Clone(req.Extensions)
	if slices.Contains(c.Extensions, portabilitySubsetExtensionName) && !slices.Contains(out, portabilitySubsetExtensionName) {
		core.LogInfo("Adding required extension '%s'.", portabilitySubsetExtensionName)
		out = append(out, portabilitySubsetExtensionName)
	}
	return out
}

func logDeviceReport(c *DeviceCandidate, heaps []vk.MemoryHeap) {
	core.LogInfo("Selected device: '%s'.", c.Name)
	core.LogInfo("GPU type is %s.", deviceTypeName(c.Type))
	core.LogInfo("GPU Driver version: %d.%d.%d",
		vk.Version(c.DriverVersion).Major(), vk.Version(c.DriverVersion).Minor(), vk.Version(c.DriverVersion).Patch())
	core.LogInfo("Vulkan API version: %d.%d.%d",
		vk.Version(c.APIVersion).Major(), vk.Version(c.APIVersion).Minor(), vk.Version(c.APIVersion).Patch())
	for _, heap := range heaps {
		gib := float64(heap.Size) / 1024.0 / 1024.0 / 1024.0
		if vk.MemoryHeapFlags(heap.Flags)&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", gib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", gib)
		}
	}
}
