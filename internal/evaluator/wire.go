package evaluator

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// The worker wire format carries experiments and outcomes as
// structpb.Struct payloads, so both ends marshal with the standard
// protobuf codec without a generated schema.

func experimentToStruct(exp *experiment.Experiment) (*structpb.Struct, error) {
	payload := map[string]any{
		"id":    exp.ID,
		"model": exp.Model,
		"scenario": map[string]any{
			"name":   exp.Scenario.Name(),
			"values": exp.Scenario.Values(),
		},
		"policy": map[string]any{
			"name":   exp.Policy.Name(),
			"values": exp.Policy.Values(),
		},
	}
	s, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", exp, err)
	}
	return s, nil
}

func experimentFromStruct(s *structpb.Struct) (*experiment.Experiment, error) {
	m := s.AsMap()
	id, ok := m["id"].(float64)
	if !ok {
		return nil, fmt.Errorf("experiment payload missing id")
	}
	modelName, ok := m["model"].(string)
	if !ok {
		return nil, fmt.Errorf("experiment payload missing model")
	}
	scenarioName, scenarioValues, err := pointFromPayload(m["scenario"])
	if err != nil {
		return nil, fmt.Errorf("experiment payload scenario: %w", err)
	}
	policyName, policyValues, err := pointFromPayload(m["policy"])
	if err != nil {
		return nil, fmt.Errorf("experiment payload policy: %w", err)
	}
	return &experiment.Experiment{
		ID:       int(id),
		Model:    modelName,
		Scenario: params.NewScenario(scenarioName, scenarioValues),
		Policy:   params.NewPolicy(policyName, policyValues),
	}, nil
}

func pointFromPayload(raw any) (string, map[string]any, error) {
	payload, ok := raw.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("expected object, got %T", raw)
	}
	name, _ := payload["name"].(string)
	values, _ := payload["values"].(map[string]any)
	return name, values, nil
}

func outcomesToStruct(outcomes models.Outcomes) (*structpb.Struct, error) {
	plain := make(map[string]any, len(outcomes))
	for name, v := range outcomes {
		if series, ok := v.([]float64); ok {
			arr := make([]any, len(series))
			for i, f := range series {
				arr[i] = f
			}
			plain[name] = arr
			continue
		}
		plain[name] = v
	}
	s, err := structpb.NewStruct(map[string]any{"outcomes": plain})
	if err != nil {
		return nil, fmt.Errorf("encoding outcomes: %w", err)
	}
	return s, nil
}

func outcomesFromStruct(s *structpb.Struct) (models.Outcomes, error) {
	m := s.AsMap()
	raw, ok := m["outcomes"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("outcome payload missing outcomes object")
	}
	outcomes := make(models.Outcomes, len(raw))
	for name, v := range raw {
		if arr, ok := v.([]any); ok {
			series := make([]float64, len(arr))
			for i, e := range arr {
				f, ok := e.(float64)
				if !ok {
					return nil, fmt.Errorf("outcome %s: series element %d is %T", name, i, e)
				}
				series[i] = f
			}
			outcomes[name] = series
			continue
		}
		outcomes[name] = v
	}
	return outcomes, nil
}

// coerceWireValues restores the declared value kinds after a structpb
// round trip, which flattens every number to float64.
func coerceWireValues(kinds map[string]params.Kind, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for name, v := range values {
		f, isNumber := v.(float64)
		kind, declared := kinds[name]
		if !isNumber || !declared {
			out[name] = v
			continue
		}
		switch kind {
		case params.KindInteger:
			out[name] = int(f)
		case params.KindBoolean:
			out[name] = f != 0
		default:
			out[name] = f
		}
	}
	return out
}
