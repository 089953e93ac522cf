// Package ema is the entry point for exploratory modeling runs: it
// samples scenarios and policies, generates the experiment matrix,
// hands it to an evaluator and aggregates the outcomes.
package ema

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/estandiaa-marain/EMAworkbench/internal/evaluator"
	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/internal/results"
	"github.com/estandiaa-marain/EMAworkbench/internal/sampling"
	"github.com/estandiaa-marain/EMAworkbench/pkg/logger"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// options collects the run configuration of PerformExperiments.
type options struct {
	scenarioCount int
	policyCount   int
	scenarios     []params.Scenario
	policies      []params.Policy

	uncertaintySampling sampling.Method
	leverSampling       sampling.Method
	uncertaintyUnion    bool
	leverUnion          bool
	outcomeUnion        bool
	seed                int64

	evaluator         evaluator.Evaluator
	reportingInterval int
}

// Option configures one run.
type Option func(*options)

// WithScenarios samples n scenarios over the models' uncertainties.
func WithScenarios(n int) Option {
	return func(o *options) { o.scenarioCount = n }
}

// WithScenarioSet runs the given scenarios instead of sampling.
func WithScenarioSet(scenarios []params.Scenario) Option {
	return func(o *options) { o.scenarios = scenarios }
}

// WithPolicies samples n policies over the models' levers.
func WithPolicies(n int) Option {
	return func(o *options) { o.policyCount = n }
}

// WithPolicySet runs the given policies instead of sampling.
func WithPolicySet(policies []params.Policy) Option {
	return func(o *options) { o.policies = policies }
}

// WithEvaluator selects the evaluator; the default runs sequentially.
func WithEvaluator(ev evaluator.Evaluator) Option {
	return func(o *options) { o.evaluator = ev }
}

// WithUncertaintySampling selects the scenario sampling method.
func WithUncertaintySampling(m sampling.Method) Option {
	return func(o *options) { o.uncertaintySampling = m }
}

// WithLeverSampling selects the policy sampling method.
func WithLeverSampling(m sampling.Method) Option {
	return func(o *options) { o.leverSampling = m }
}

// WithUncertaintyUnion samples over the union of the models'
// uncertainties rather than their intersection.
func WithUncertaintyUnion(union bool) Option {
	return func(o *options) { o.uncertaintyUnion = union }
}

// WithOutcomeUnion stores the union of the models' declared outcomes
// rather than the intersection. Each experiment still only has to
// produce the outcomes its own model declares; the rest of its row is
// marked missing.
func WithOutcomeUnion(union bool) Option {
	return func(o *options) { o.outcomeUnion = union }
}

// WithLeverUnion samples over the union of the models' levers rather
// than their intersection.
func WithLeverUnion(union bool) Option {
	return func(o *options) { o.leverUnion = union }
}

// WithSeed makes the sampling deterministic.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithReportingInterval logs progress every n completed experiments.
func WithReportingInterval(n int) Option {
	return func(o *options) { o.reportingInterval = n }
}

// PerformExperiments runs scenarios x models x policies and returns
// the aggregated results. With neither scenarios nor policies
// requested there is nothing to explore and the run is refused; a run
// with only one axis fills the other with a single empty point.
func PerformExperiments(ctx context.Context, ms []models.Model, opts ...Option) (*results.Results, error) {
	o := &options{
		uncertaintySampling: sampling.MethodLHS,
		leverSampling:       sampling.MethodLHS,
	}
	for _, opt := range opts {
		opt(o)
	}

	if len(ms) == 0 {
		return nil, errors.New("no models given")
	}
	sampledScenarios := o.scenarioCount > 0 || len(o.scenarios) > 0
	sampledPolicies := o.policyCount > 0 || len(o.policies) > 0
	if !sampledScenarios && !sampledPolicies {
		return nil, errors.New("no experiments possible: no scenarios or policies requested")
	}

	scenarios, err := resolveScenarios(ms, o)
	if err != nil {
		return nil, err
	}
	policies, err := resolvePolicies(ms, o)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	gen, err := experiment.NewGenerator(scenarios, names, policies)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := logger.With("run", runID)
	log.Info("starting experiment run",
		"scenarios", len(scenarios), "policies", len(policies),
		"models", len(ms), "total", gen.Total())

	aggOpts := []results.AggregatorOption{results.WithAggregatorLogger(log)}
	if o.reportingInterval > 0 {
		aggOpts = append(aggOpts, results.WithReportingInterval(o.reportingInterval))
	}
	declarations := make(map[string][]models.Outcome, len(ms))
	for _, m := range ms {
		declarations[m.Name()] = m.Outcomes()
	}
	aggOpts = append(aggOpts, results.WithModelOutcomes(declarations))

	parameters := params.Union(models.UncertaintiesOf(ms, true), models.LeversOf(ms, true))
	agg, err := results.NewAggregator(gen.Total(), parameters, models.OutcomesOf(ms, o.outcomeUnion), aggOpts...)
	if err != nil {
		return nil, err
	}

	ev := o.evaluator
	if ev == nil {
		ev = evaluator.NewSequential(ms)
	}
	if err := ev.Evaluate(ctx, gen, agg.Record); err != nil {
		return nil, fmt.Errorf("experiment run %s: %w", runID, err)
	}

	res, err := agg.Done()
	if err != nil {
		return nil, fmt.Errorf("experiment run %s: %w", runID, err)
	}
	log.Info("experiment run finished", "experiments", gen.Total())
	return res, nil
}

func resolveScenarios(ms []models.Model, o *options) ([]params.Scenario, error) {
	if len(o.scenarios) > 0 {
		if o.scenarioCount > 0 {
			return nil, errors.New("give either a scenario count or a scenario set, not both")
		}
		return o.scenarios, nil
	}
	if o.scenarioCount <= 0 {
		return []params.Scenario{params.EmptyScenario()}, nil
	}
	sampler, err := sampling.NewSampler(o.uncertaintySampling, o.seed)
	if err != nil {
		return nil, fmt.Errorf("uncertainty sampling: %w", err)
	}
	set, err := sampling.SampleUncertainties(ms, o.scenarioCount, o.uncertaintyUnion, sampler)
	if err != nil {
		return nil, fmt.Errorf("sampling scenarios: %w", err)
	}
	return set.Scenarios()
}

func resolvePolicies(ms []models.Model, o *options) ([]params.Policy, error) {
	if len(o.policies) > 0 {
		if o.policyCount > 0 {
			return nil, errors.New("give either a policy count or a policy set, not both")
		}
		return o.policies, nil
	}
	if o.policyCount <= 0 {
		return []params.Policy{params.EmptyPolicy()}, nil
	}
	sampler, err := sampling.NewSampler(o.leverSampling, o.seed)
	if err != nil {
		return nil, fmt.Errorf("lever sampling: %w", err)
	}
	set, err := sampling.SampleLevers(ms, o.policyCount, o.leverUnion, sampler)
	if err != nil {
		return nil, fmt.Errorf("sampling policies: %w", err)
	}
	return set.Policies()
}
