package engine

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
	"github.com/spaghettifunk/anima-bootstrap/engine/renderer/vulkan"
)

type WindowConfig struct {
	// Window starting position x axis, if applicable.
	X uint32 `toml:"x"`
	// Window starting position y axis, if applicable.
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type VulkanConfig struct {
	Validation bool `toml:"validation"`
	// Validation messages at or above FailureSeverity fail the current step.
	FailureSeverity string `toml:"failure_severity"`
	// Validation messages at or above OutputSeverity are logged.
	OutputSeverity           string `toml:"output_severity"`
	SelectionPolicy          string `toml:"selection_policy"`
	RequireCompute           bool   `toml:"require_compute"`
	RequireTransfer          bool   `toml:"require_transfer"`
	RequireDiscrete          bool   `toml:"require_discrete"`
	RequireSamplerAnisotropy bool   `toml:"require_sampler_anisotropy"`
}

type ShaderConfig struct {
	Dir      string `toml:"dir"`
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
	Watch    bool   `toml:"watch"`
}

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name     string       `toml:"name"`
	LogLevel string       `toml:"log_level"`
	Window   WindowConfig `toml:"window"`
	Vulkan   VulkanConfig `toml:"vulkan"`
	Shaders  ShaderConfig `toml:"shaders"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:     "Anima Bootstrap",
		LogLevel: "debug",
		Window: WindowConfig{
			X:      100,
			Y:      100,
			Width:  800,
			Height: 600,
		},
		Vulkan: VulkanConfig{
			Validation:               true,
			FailureSeverity:          "error",
			OutputSeverity:           "debug",
			SelectionPolicy:          string(vulkan.SelectDiscrete),
			RequireCompute:           true,
			RequireTransfer:          true,
			RequireDiscrete:          false,
			RequireSamplerAnisotropy: true,
		},
		Shaders: ShaderConfig{
			Dir:      "assets/shaders",
			Vertex:   "vert.spv",
			Fragment: "frag.spv",
			Watch:    true,
		},
	}
}

// LoadConfig reads the TOML file at path over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes data over the defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (*ApplicationConfig, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.Errorf("unknown keys:\n%s", strict.String())
		}
		return nil, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := core.ParseLogLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	if _, err := c.ContextConfig(); err != nil {
		return err
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("both vertex and fragment shaders must be set")
	}
	return nil
}

// ContextConfig translates the [vulkan] and [shaders] tables for the
// rendering context.
func (c *ApplicationConfig) ContextConfig() (vulkan.ContextConfig, error) {
	failure, err := vulkan.ParseSeverity(c.Vulkan.FailureSeverity)
	if err != nil {
		return vulkan.ContextConfig{}, errors.Wrap(err, "failure_severity")
	}
	output, err := vulkan.ParseSeverity(c.Vulkan.OutputSeverity)
	if err != nil {
		return vulkan.ContextConfig{}, errors.Wrap(err, "output_severity")
	}
	policy, err := vulkan.ParseSelectionPolicy(c.Vulkan.SelectionPolicy)
	if err != nil {
		return vulkan.ContextConfig{}, errors.Wrap(err, "selection_policy")
	}

	req := vulkan.DefaultDeviceRequirements()
	req.Compute = c.Vulkan.RequireCompute
	req.Transfer = c.Vulkan.RequireTransfer
	req.DiscreteGPU = c.Vulkan.RequireDiscrete
	req.SamplerAnisotropy = c.Vulkan.RequireSamplerAnisotropy

	return vulkan.ContextConfig{
		ApplicationName: c.Name,
		Validation:      c.Vulkan.Validation,
		FailureSeverity: failure,
		OutputSeverity:  output,
		Requirements:    req,
		Policy:          policy,
		VertexShader:    c.Shaders.Vertex,
		FragmentShader:  c.Shaders.Fragment,
	}, nil
}
