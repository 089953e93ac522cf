// Package models defines the model collaborator interface: a model
// declares its own uncertainties, levers and outcomes, executes one merged
// variable assignment at a time, and exposes an idempotent cleanup hook.
package models

import (
	"context"
	"fmt"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// OutcomeKind discriminates scalar outcomes from time-series outcomes.
type OutcomeKind int

const (
	OutcomeScalar OutcomeKind = iota
	OutcomeSeries
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeScalar:
		return "scalar"
	case OutcomeSeries:
		return "series"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome declares one named model output.
type Outcome struct {
	Name string
	Kind OutcomeKind
}

// ScalarOutcome declares a scalar outcome.
func ScalarOutcome(name string) Outcome {
	return Outcome{Name: name, Kind: OutcomeScalar}
}

// SeriesOutcome declares a time-series outcome.
func SeriesOutcome(name string) Outcome {
	return Outcome{Name: name, Kind: OutcomeSeries}
}

// Outcomes maps outcome name to its value for one experiment: float64 for
// scalar outcomes, []float64 for series outcomes.
type Outcomes map[string]any

// Model is one simulation or computation model under exploration. A model
// instance may retain state across experiments scheduled to the same
// worker; Cleanup is invoked exactly once when a worker finishes its last
// assigned experiment and must be safe to call repeatedly.
type Model interface {
	Name() string
	Uncertainties() []params.Parameter
	Levers() []params.Parameter
	Outcomes() []Outcome

	Run(ctx context.Context, variables map[string]any) (Outcomes, error)
	Cleanup() error
}

// Definition carries model declarations; concrete models embed it and
// implement Run.
type Definition struct {
	ModelName          string
	ModelUncertainties []params.Parameter
	ModelLevers        []params.Parameter
	ModelOutcomes      []Outcome
}

func (d *Definition) Name() string                      { return d.ModelName }
func (d *Definition) Uncertainties() []params.Parameter { return d.ModelUncertainties }
func (d *Definition) Levers() []params.Parameter        { return d.ModelLevers }
func (d *Definition) Outcomes() []Outcome               { return d.ModelOutcomes }

// Cleanup is a no-op by default.
func (d *Definition) Cleanup() error { return nil }
