package mapconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRootConfigParsesDocumentSequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yaml")
	doc := []byte(`
- keyboards: ["my keyboard"]
  keymap:
    "3": "2"
  layers:
    - modifiers: ["a", "b"]
      keymap:
        "1": "2"
`)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	root, err := LoadRootConfig(path)
	require.NoError(t, err)
	require.Len(t, root, 1)
	require.Equal(t, []string{"my keyboard"}, root[0].Keyboards)
	require.Equal(t, "2", root[0].Keymap["3"])
	require.Len(t, root[0].Layers, 1)
}

func TestParseKeyboardConfigSingleDocument(t *testing.T) {
	doc := []byte(`
keymap:
  "3": "2"
layers:
  - modifiers: ["a", "b"]
    keymap:
      "1": "2"
  - modifiers: ["a", "c"]
    keymap:
      "2": "3"
`)
	conf, err := ParseKeyboardConfig(doc)
	require.NoError(t, err)
	require.Equal(t, "2", conf.Keymap["3"])
	require.Len(t, conf.Layers, 2)
}
