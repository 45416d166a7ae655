package renderer

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-bootstrap/engine/core"
	"github.com/spaghettifunk/anima-bootstrap/engine/renderer/vulkan"
)

type recordingBackend struct {
	initErr error
	calls   []string
}

func (b *recordingBackend) Initialize(window vulkan.Window) error {
	b.calls = append(b.calls, "initialize")
	return b.initErr
}

func (b *recordingBackend) Shutdown() error {
	b.calls = append(b.calls, "shutdown")
	return nil
}

func (b *recordingBackend) Resized(width, height uint32) error {
	b.calls = append(b.calls, "resized")
	return nil
}

func TestRendererLifecycle(t *testing.T) {
	backend := &recordingBackend{}
	r := NewWithBackend(backend)

	require.NoError(t, r.OnResize(10, 10))
	require.NoError(t, r.Initialize(nil))
	require.NoError(t, r.OnResize(800, 600))
	require.NoError(t, r.Shutdown())
	require.NoError(t, r.Shutdown())

	assert.Equal(t, []string{"initialize", "resized", "shutdown"}, backend.calls)
}

func TestRendererInitializeFailure(t *testing.T) {
	backend := &recordingBackend{initErr: errors.WithStack(core.ErrNoSuitableDevice)}
	r := NewWithBackend(backend)

	err := r.Initialize(nil)
	assert.ErrorIs(t, err, core.ErrNoSuitableDevice)
	require.NoError(t, r.Shutdown())
	assert.Equal(t, []string{"initialize"}, backend.calls)
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(Metal, vulkan.DefaultContextConfig(), nil)
	assert.Error(t, err)
}
