package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/estandiaa-marain/EMAworkbench/internal/metrics"
	"github.com/estandiaa-marain/EMAworkbench/pkg/logger"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// Runner executes experiments against its own model instances. A runner
// belongs to one worker: the worker reuses the same model instances
// across all experiments assigned to it, which is what amortizes model
// setup cost, and cleans each model up exactly once when it is done.
type Runner struct {
	models  map[string]models.Model
	log     *slog.Logger
	tracker *metrics.Tracker

	mu      sync.Mutex
	cleaned bool
}

// NewRunner creates a runner over the given models.
func NewRunner(ms []models.Model) (*Runner, error) {
	byName := make(map[string]models.Model, len(ms))
	for _, m := range ms {
		if _, exists := byName[m.Name()]; exists {
			return nil, fmt.Errorf("duplicate model name %q", m.Name())
		}
		byName[m.Name()] = m
	}
	return &Runner{models: byName, log: logger.Default, tracker: metrics.NewTracker()}, nil
}

// WithLogger redirects the runner's log output, e.g. into a worker's log
// funnel.
func (r *Runner) WithLogger(log *slog.Logger) *Runner {
	r.log = log
	return r
}

// RunExperiment merges the experiment's scenario and policy into one
// variable assignment and invokes the model.
func (r *Runner) RunExperiment(ctx context.Context, exp *Experiment) (models.Outcomes, error) {
	m, ok := r.models[exp.Model]
	if !ok {
		return nil, fmt.Errorf("%s: unknown model", exp)
	}

	variables := exp.Scenario.Values()
	for k, v := range exp.Policy.Values() {
		variables[k] = v
	}

	r.log.Debug("running experiment",
		"id", exp.ID, "model", exp.Model,
		"scenario", exp.Scenario.Name(), "policy", exp.Policy.Name())

	start := time.Now()
	outcomes, err := m.Run(ctx, variables)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exp, err)
	}
	r.tracker.Observe(exp.Model, time.Since(start))
	return outcomes, nil
}

// Timing returns the wall-time distribution of the experiments this
// runner has executed for model.
func (r *Runner) Timing(model string) (metrics.Snapshot, bool) {
	return r.tracker.Snapshot(model)
}

// Cleanup invokes every model's cleanup hook. Repeated calls are no-ops.
func (r *Runner) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cleaned {
		return nil
	}
	r.cleaned = true

	var errs []error
	for name, m := range r.models {
		if snap, ok := r.tracker.Snapshot(name); ok {
			r.log.Debug("experiment timing",
				"model", name, "count", snap.Count,
				"mean_ms", snap.Mean, "p95_ms", snap.P95)
		}
		if err := m.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("model %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
