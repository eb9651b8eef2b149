package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExplicitMissingConfigFileIsError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	// An explicit, nonexistent config file is a hard error — only the
	// search-path form tolerates "not found".
	require.Error(t, err)
	_ = cfg
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nmapping_config: /etc/kmapd/custom.yaml\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/etc/kmapd/custom.yaml", cfg.MappingDoc)
	assert.Equal(t, dir, cfg.ConfigDir)
}

func TestLoadDefaultMappingDocDerivedFromConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mapping.yaml"), cfg.MappingDoc)
}
