// Package experiment turns sampled scenarios and policies into uniquely
// identified experiment jobs and runs them against their models.
package experiment

import (
	"fmt"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// Experiment identifies exactly one model invocation: a scenario, a
// policy, the model to run them against, and a contiguous integer id
// that doubles as the destination row for its outcome.
type Experiment struct {
	ID       int
	Scenario params.Scenario
	Policy   params.Policy
	Model    string
}

func (e *Experiment) String() string {
	return fmt.Sprintf("experiment %d (scenario=%s policy=%s model=%s)",
		e.ID, e.Scenario.Name(), e.Policy.Name(), e.Model)
}

// Generator cross-products scenarios, models and policies, in that
// nesting order (policies vary fastest), assigning strictly increasing
// ids from 0. Iteration is restartable and yields the same ids on every
// pass.
type Generator struct {
	scenarios []params.Scenario
	models    []string
	policies  []params.Policy
}

// NewGenerator creates an experiment generator. Every axis must be
// non-empty; callers substitute the implicit empty scenario or policy
// when an axis is not sampled.
func NewGenerator(scenarios []params.Scenario, modelNames []string, policies []params.Policy) (*Generator, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios to generate experiments over")
	}
	if len(modelNames) == 0 {
		return nil, fmt.Errorf("no models to generate experiments over")
	}
	if len(policies) == 0 {
		return nil, fmt.Errorf("no policies to generate experiments over")
	}
	seen := make(map[string]bool, len(modelNames))
	for _, name := range modelNames {
		if seen[name] {
			return nil, fmt.Errorf("duplicate model name %q", name)
		}
		seen[name] = true
	}
	return &Generator{
		scenarios: append([]params.Scenario(nil), scenarios...),
		models:    append([]string(nil), modelNames...),
		policies:  append([]params.Policy(nil), policies...),
	}, nil
}

// Total returns the number of experiments the generator produces.
func (g *Generator) Total() int {
	return len(g.scenarios) * len(g.models) * len(g.policies)
}

// Iter starts a fresh pass over the experiments.
func (g *Generator) Iter() *Iter {
	return &Iter{gen: g}
}

// Iter walks the experiment space once.
type Iter struct {
	gen *Generator
	pos int
}

// Next returns the next experiment, or false when exhausted.
func (it *Iter) Next() (*Experiment, bool) {
	g := it.gen
	if it.pos >= g.Total() {
		return nil, false
	}
	id := it.pos
	it.pos++

	nPolicies := len(g.policies)
	nModels := len(g.models)
	pIdx := id % nPolicies
	mIdx := (id / nPolicies) % nModels
	sIdx := id / (nPolicies * nModels)

	return &Experiment{
		ID:       id,
		Scenario: g.scenarios[sIdx],
		Policy:   g.policies[pIdx],
		Model:    g.models[mIdx],
	}, true
}
