package vulkan

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

// Severity orders validation messages from least to most severe.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityPerformance
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityPerformance:
		return "performance"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "debug":
		return SeverityDebug, nil
	case "info", "information":
		return SeverityInfo, nil
	case "performance":
		return SeverityPerformance, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityError, fmt.Errorf("unknown severity %q", s)
	}
}

var severityBits = []struct {
	bit      vk.DebugReportFlagBits
	severity Severity
}{
	{vk.DebugReportErrorBit, SeverityError},
	{vk.DebugReportWarningBit, SeverityWarning},
	{vk.DebugReportPerformanceWarningBit, SeverityPerformance},
	{vk.DebugReportInformationBit, SeverityInfo},
	{vk.DebugReportDebugBit, SeverityDebug},
}

// severityOf returns the most severe level present in flags.
func severityOf(flags vk.DebugReportFlags) Severity {
	for _, sb := range severityBits {
		if flags&vk.DebugReportFlags(sb.bit) != 0 {
			return sb.severity
		}
	}
	return SeverityInfo
}

// DebugMessenger routes validation layer reports. Reports at or above
// FailureSeverity become a pending failure collected by the context after
// each step; reports at or above OutputSeverity are logged.
type DebugMessenger struct {
	FailureSeverity Severity
	OutputSeverity  Severity

	mu      sync.Mutex
	pending error
}

func NewDebugMessenger(failure, output Severity) *DebugMessenger {
	return &DebugMessenger{
		FailureSeverity: failure,
		OutputSeverity:  output,
	}
}

// Flags is the report mask to register with the instance.
func (m *DebugMessenger) Flags() vk.DebugReportFlags {
	var flags vk.DebugReportFlags
	for _, sb := range severityBits {
		if sb.severity >= m.OutputSeverity || sb.severity >= m.FailureSeverity {
			flags |= vk.DebugReportFlags(sb.bit)
		}
	}
	return flags
}

// Report handles a single validation message. It may be called from any
// thread the driver chooses.
func (m *DebugMessenger) Report(flags vk.DebugReportFlags, layerPrefix string, messageCode int32, message string) {
	severity := severityOf(flags)

	if severity >= m.FailureSeverity {
		m.mu.Lock()
		if m.pending == nil {
			m.pending = errors.Wrapf(core.ErrValidation, "[%s] code %d: %s", layerPrefix, messageCode, message)
		}
		m.mu.Unlock()
	}

	if severity < m.OutputSeverity {
		return
	}
	switch severity {
	case SeverityError:
		core.LogError("ERROR: [%s] Code %d : %s", layerPrefix, messageCode, message)
	case SeverityWarning:
		core.LogWarn("WARNING: [%s] Code %d : %s", layerPrefix, messageCode, message)
	case SeverityPerformance:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", layerPrefix, messageCode, message)
	case SeverityDebug:
		core.LogDebug("DEBUG: [%s] Code %d : %s", layerPrefix, messageCode, message)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", layerPrefix, messageCode, message)
	}
}

// TakePending returns the first failure reported since the last call and
// clears it.
func (m *DebugMessenger) TakePending() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.pending
	m.pending = nil
	return err
}

// callback adapts Report to the signature expected by
// vkCreateDebugReportCallbackEXT.
func (m *DebugMessenger) callback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	m.Report(flags, pLayerPrefix, messageCode, pMessage)
	return vk.Bool32(vk.False)
}

// VulkanDebugCallback owns the registered debug report callback.
type VulkanDebugCallback struct {
	resource

	Handle vk.DebugReportCallback
}
