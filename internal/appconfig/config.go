// Package appconfig handles application-level configuration: log
// level and the path to the mapping document — distinct from
// mapconfig's per-keyboard mapping model (spec.md §6.2). Adapted from
// the teacher's hand-rolled search-path loader (internal/config) onto
// spf13/viper, which layers a config file, environment variables, and
// flags the way the rest of the pack uses it (see bnema/waymon).
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is kmapd's application-level configuration.
type Config struct {
	LogLevel   string `mapstructure:"log_level"`
	MappingDoc string `mapstructure:"mapping_config"`
	ConfigDir  string `mapstructure:"-"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("mapping_config", "")
}

// Load resolves application configuration from, in ascending priority:
// built-in defaults, a config file (explicit configPath, or the usual
// XDG/system search path if empty), and KMAPD_-prefixed environment
// variables — the viper layering the teacher's Load approximated by
// hand with an explicit search-path loop.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("kmapd")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			v.AddConfigPath(filepath.Join("/home", sudoUser, ".config", "kmapd"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "kmapd"))
		}
		v.AddConfigPath("/etc/kmapd")
	}

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file found anywhere searched: fall back to defaults.
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		cfg.ConfigDir = filepath.Dir(used)
	} else if home, err := os.UserHomeDir(); err == nil {
		cfg.ConfigDir = filepath.Join(home, ".config", "kmapd")
	} else {
		cfg.ConfigDir = "/etc/kmapd"
	}

	if cfg.MappingDoc == "" {
		cfg.MappingDoc = filepath.Join(cfg.ConfigDir, "mapping.yaml")
	}

	return &cfg, nil
}
