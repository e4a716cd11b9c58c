package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional on-disk configuration, usually ~/.rewind.yaml or a
// project-local rewind.yaml.
type Config struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	Color              string `yaml:"color"` // auto | always | never
	Banner             *bool  `yaml:"banner"`
	LogLevel           string `yaml:"log_level"`
}

// LoadConfig reads a YAML configuration file. A missing file is not an
// error; it yields the zero config, which means all defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	switch cfg.Color {
	case "", "auto", "always", "never":
	default:
		return cfg, fmt.Errorf("invalid color mode %q (want auto, always or never)", cfg.Color)
	}
	return cfg, nil
}

// ShowBanner reports whether the startup banner is enabled (default on).
func (c Config) ShowBanner() bool {
	return c.Banner == nil || *c.Banner
}
