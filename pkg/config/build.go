package config

import (
	"fmt"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// BuildParameters converts the declared parameter specs into parameter
// values ready for sampling.
func BuildParameters(specs []ParameterSpec) ([]params.Parameter, error) {
	parameters := make([]params.Parameter, 0, len(specs))
	for _, spec := range specs {
		p, err := buildParameter(spec)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, p)
	}
	return parameters, nil
}

func buildParameter(spec ParameterSpec) (params.Parameter, error) {
	var opts []params.Option
	if len(spec.Resolution) > 0 {
		opts = append(opts, params.WithResolution(spec.Resolution...))
	}
	if spec.Factorial {
		opts = append(opts, params.WithFactorial())
	}
	if spec.Dist != nil {
		dist, err := buildDist(spec)
		if err != nil {
			return params.Parameter{}, fmt.Errorf("parameter %s: %w", spec.Name, err)
		}
		opts = append(opts, params.WithDist(dist))
	}

	switch spec.Kind {
	case "real":
		return params.NewReal(spec.Name, spec.Low, spec.High, opts...)
	case "integer":
		return params.NewInteger(spec.Name, int(spec.Low), int(spec.High), opts...)
	case "boolean":
		return params.NewBoolean(spec.Name, opts...)
	case "categorical":
		return params.NewCategorical(spec.Name, params.Categories(spec.Categories...), opts...)
	default:
		return params.Parameter{}, fmt.Errorf("parameter %s: unknown kind %s", spec.Name, spec.Kind)
	}
}

func buildDist(spec ParameterSpec) (params.Distribution, error) {
	switch spec.Dist.Family {
	case "triangular":
		return params.NewTriangular(spec.Low, spec.Dist.Mode, spec.High)
	case "pert":
		gamma := spec.Dist.Gamma
		if gamma == 0 {
			gamma = 4
		}
		return params.NewPERT(spec.Low, spec.Dist.Peak, spec.High, gamma)
	case "bernoulli":
		return params.NewBernoulli(spec.Dist.Rate)
	default:
		return params.Distribution{}, fmt.Errorf("unknown dist family %s", spec.Dist.Family)
	}
}

// BuildScenarios converts the declared scenario points.
func BuildScenarios(specs []PointSpec) []params.Scenario {
	scenarios := make([]params.Scenario, len(specs))
	for i, spec := range specs {
		scenarios[i] = params.NewScenario(spec.Name, spec.Values)
	}
	return scenarios
}

// BuildPolicies converts the declared policy points.
func BuildPolicies(specs []PointSpec) []params.Policy {
	policies := make([]params.Policy, len(specs))
	for i, spec := range specs {
		policies[i] = params.NewPolicy(spec.Name, spec.Values)
	}
	return policies
}
