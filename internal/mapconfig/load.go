package mapconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRootConfig reads and parses the root mapping document at path —
// spec.md §6.2's top-level sequence of per-keyboard objects.
func LoadRootConfig(path string) (RootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping config %s: %w", path, err)
	}

	var root RootConfig
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing mapping config %s: %w", path, err)
	}
	return root, nil
}

// ParseKeyboardConfig parses a single-document mapping (no keyboards:
// fan-out), used by the replay harness (spec.md §6.4) which targets
// exactly one engine.
func ParseKeyboardConfig(data []byte) (KeyboardConfig, error) {
	var conf KeyboardConfig
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return KeyboardConfig{}, fmt.Errorf("parsing keyboard config: %w", err)
	}
	return conf, nil
}
