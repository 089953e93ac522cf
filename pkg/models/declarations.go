package models

import (
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// UncertaintiesOf merges the uncertainty declarations of the given models,
// either as a union or as an intersection keyed by name.
func UncertaintiesOf(ms []Model, union bool) []params.Parameter {
	groups := make([][]params.Parameter, len(ms))
	for i, m := range ms {
		groups[i] = m.Uncertainties()
	}
	if union {
		return params.Union(groups...)
	}
	return params.Intersect(groups...)
}

// LeversOf merges the lever declarations of the given models.
func LeversOf(ms []Model, union bool) []params.Parameter {
	groups := make([][]params.Parameter, len(ms))
	for i, m := range ms {
		groups[i] = m.Levers()
	}
	if union {
		return params.Union(groups...)
	}
	return params.Intersect(groups...)
}

// OutcomesOf merges outcome declarations across models. Union keeps the
// first declaration per name in first-seen order; intersection keeps only
// outcomes every model declares.
func OutcomesOf(ms []Model, union bool) []Outcome {
	if len(ms) == 0 {
		return nil
	}
	if union {
		var merged []Outcome
		seen := make(map[string]bool)
		for _, m := range ms {
			for _, o := range m.Outcomes() {
				if seen[o.Name] {
					continue
				}
				seen[o.Name] = true
				merged = append(merged, o)
			}
		}
		return merged
	}

	counts := make(map[string]int)
	for _, m := range ms {
		inModel := make(map[string]bool)
		for _, o := range m.Outcomes() {
			if !inModel[o.Name] {
				inModel[o.Name] = true
				counts[o.Name]++
			}
		}
	}
	var kept []Outcome
	for _, o := range ms[0].Outcomes() {
		if counts[o.Name] == len(ms) {
			kept = append(kept, o)
		}
	}
	return kept
}
