package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-bootstrap/engine/renderer/vulkan"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	ctx, err := cfg.ContextConfig()
	require.NoError(t, err)
	assert.Equal(t, vulkan.SeverityError, ctx.FailureSeverity)
	assert.Equal(t, vulkan.SeverityDebug, ctx.OutputSeverity)
	assert.Equal(t, vulkan.SelectDiscrete, ctx.Policy)
	assert.True(t, ctx.Validation)
	assert.True(t, ctx.Requirements.Compute)
	assert.Equal(t, "vert.spv", ctx.VertexShader)
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
name = "Triangle"

[window]
width = 1280

[vulkan]
validation = false
failure_severity = "warning"
selection_policy = "memory"
require_compute = false

[shaders]
dir = "build/shaders"
watch = false
`))
	require.NoError(t, err)
	assert.Equal(t, "Triangle", cfg.Name)
	assert.Equal(t, uint32(1280), cfg.Window.Width)
	assert.Equal(t, uint32(600), cfg.Window.Height)
	assert.Equal(t, "build/shaders", cfg.Shaders.Dir)
	assert.Equal(t, "frag.spv", cfg.Shaders.Fragment)
	assert.False(t, cfg.Shaders.Watch)

	ctx, err := cfg.ContextConfig()
	require.NoError(t, err)
	assert.Equal(t, "Triangle", ctx.ApplicationName)
	assert.False(t, ctx.Validation)
	assert.Equal(t, vulkan.SeverityWarning, ctx.FailureSeverity)
	assert.Equal(t, vulkan.SelectMemory, ctx.Policy)
	assert.False(t, ctx.Requirements.Compute)
	assert.True(t, ctx.Requirements.Transfer)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":    "colour = \"red\"\n",
		"zero width":     "[window]\nwidth = 0\n",
		"bad severity":   "[vulkan]\nfailure_severity = \"loud\"\n",
		"bad policy":     "[vulkan]\nselection_policy = \"fastest\"\n",
		"bad log level":  "log_level = \"chatty\"\n",
		"missing shader": "[shaders]\nvertex = \"\"\n",
		"malformed toml": "name = \n",
		"wrong type":     "[window]\nwidth = \"wide\"\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anima.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"info\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
