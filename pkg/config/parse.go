package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseSetupYAML parses a Setup from YAML bytes and validates it.
// This is used for APIs where the setup is provided as payload (not via filesystem).
func ParseSetupYAML(data []byte) (*Setup, error) {
	var setup Setup
	if err := yaml.Unmarshal(data, &setup); err != nil {
		return nil, fmt.Errorf("failed to parse setup yaml: %w", err)
	}

	if err := validateSetup(&setup); err != nil {
		return nil, fmt.Errorf("invalid setup: %w", err)
	}

	return &setup, nil
}

// ParseSetupYAMLString parses a Setup from a YAML string and validates it.
func ParseSetupYAMLString(yamlText string) (*Setup, error) {
	return ParseSetupYAML([]byte(yamlText))
}
