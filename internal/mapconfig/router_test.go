package mapconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRouterSharesEngineAcrossDeviceNames(t *testing.T) {
	root := RootConfig{
		{Keyboards: []string{"kbd-left", "kbd-right"}, Keymap: map[string]string{"3": "2"}},
	}
	router, err := BuildRouter(root, lookup, nil)
	require.NoError(t, err)

	left, ok := router.EngineFor("kbd-left")
	require.True(t, ok)
	right, ok := router.EngineFor("kbd-right")
	require.True(t, ok)
	assert.Same(t, left, right)

	_, ok = router.EngineFor("unknown-device")
	assert.False(t, ok)
}

func TestBuildRouterRejectsEmptyKeyboardsList(t *testing.T) {
	root := RootConfig{{Keymap: map[string]string{"3": "2"}}}
	_, err := BuildRouter(root, lookup, nil)
	assert.Error(t, err)
}

func TestBuildRouterPropagatesValidationError(t *testing.T) {
	root := RootConfig{
		{Keyboards: []string{"kbd"}, Keymap: map[string]string{"ghost": "2"}},
	}
	_, err := BuildRouter(root, lookup, nil)
	assert.Error(t, err)
}
