package filter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPreset reads a filter configuration from a YAML file. Fields left
// out of the file keep the permissive defaults. The loaded config is
// validated before being returned; an invalid preset is an error and the
// caller keeps whatever config it already had.
func LoadPreset(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset parses and validates YAML preset bytes.
func ParsePreset(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
