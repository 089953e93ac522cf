package config

import (
	"fmt"
	"os"
)

// LoadSetup loads and parses a setup file
func LoadSetup(path string) (*Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read setup file %s: %w", path, err)
	}
	setup, err := ParseSetupYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse setup file %s: %w", path, err)
	}
	return setup, nil
}

// validateSetup performs validation on the setup
func validateSetup(setup *Setup) error {
	if setup.LogLevel == "" {
		setup.LogLevel = "info"
	}
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[setup.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", setup.LogLevel)
	}

	if setup.Run != nil {
		if err := validateRun(setup.Run); err != nil {
			return fmt.Errorf("run validation failed: %w", err)
		}
	}
	if setup.Evaluator != nil {
		if err := validateEvaluator(setup.Evaluator); err != nil {
			return fmt.Errorf("evaluator validation failed: %w", err)
		}
	}
	if err := validateParameters(setup.Parameters); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	for _, p := range setup.Scenarios {
		if p.Name == "" {
			return fmt.Errorf("scenario name cannot be empty")
		}
	}
	for _, p := range setup.Policies {
		if p.Name == "" {
			return fmt.Errorf("policy name cannot be empty")
		}
	}
	return nil
}

func validateRun(run *Run) error {
	if run.Scenarios < 0 {
		return fmt.Errorf("scenarios cannot be negative")
	}
	if run.Policies < 0 {
		return fmt.Errorf("policies cannot be negative")
	}
	validMethods := map[string]bool{
		"": true, "lhs": true, "ulhs": true, "mc": true, "ff": true, "pff": true,
	}
	if !validMethods[run.UncertaintySampling] {
		return fmt.Errorf("invalid uncertainty_sampling: %s", run.UncertaintySampling)
	}
	if !validMethods[run.LeverSampling] {
		return fmt.Errorf("invalid lever_sampling: %s", run.LeverSampling)
	}
	if run.ReportingInterval < 0 {
		return fmt.Errorf("reporting_interval cannot be negative")
	}
	return nil
}

func validateEvaluator(ev *Evaluator) error {
	switch ev.Type {
	case "", "sequential":
	case "pool":
		if ev.Workers < 0 {
			return fmt.Errorf("workers cannot be negative")
		}
	case "distributed":
		if len(ev.Endpoints) == 0 {
			return fmt.Errorf("distributed evaluator needs at least one endpoint")
		}
	default:
		return fmt.Errorf("invalid evaluator type: %s (must be sequential, pool, or distributed)", ev.Type)
	}
	return nil
}

func validateParameters(specs []ParameterSpec) error {
	names := make(map[string]bool)
	for _, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if names[spec.Name] {
			return fmt.Errorf("duplicate parameter name: %s", spec.Name)
		}
		names[spec.Name] = true

		switch spec.Kind {
		case "real", "integer":
			if spec.High <= spec.Low {
				return fmt.Errorf("parameter %s: high must be above low", spec.Name)
			}
		case "boolean":
		case "categorical":
			if len(spec.Categories) == 0 {
				return fmt.Errorf("parameter %s: categorical needs categories", spec.Name)
			}
		default:
			return fmt.Errorf("parameter %s: invalid kind: %s (must be real, integer, boolean, or categorical)", spec.Name, spec.Kind)
		}
	}
	return nil
}
