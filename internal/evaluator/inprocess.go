package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// InProcessEngine runs experiments in the orchestrator's own process.
// It exists for local runs and tests that exercise the distributed
// machinery without worker processes.
type InProcessEngine struct {
	factories   []models.Factory
	concurrency int

	runner *experiment.Runner
	sem    chan struct{}
	wg     sync.WaitGroup
}

// NewInProcessEngine creates an engine that builds its models from
// factories. A concurrency below one defaults to a single experiment
// in flight.
func NewInProcessEngine(factories []models.Factory, concurrency int) *InProcessEngine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &InProcessEngine{factories: factories, concurrency: concurrency}
}

// Initialize builds one instance per factory.
func (e *InProcessEngine) Initialize(ctx context.Context, modelNames []string) error {
	instances := make([]models.Model, 0, len(e.factories))
	for _, factory := range e.factories {
		m, err := factory()
		if err != nil {
			for _, built := range instances {
				built.Cleanup()
			}
			return fmt.Errorf("initializing engine: %w", err)
		}
		instances = append(instances, m)
	}
	runner, err := experiment.NewRunner(instances)
	if err != nil {
		for _, built := range instances {
			built.Cleanup()
		}
		return fmt.Errorf("initializing engine: %w", err)
	}
	e.runner = runner
	e.sem = make(chan struct{}, e.concurrency)
	return nil
}

// Submit runs the experiment on a new goroutine and reports its
// completion on out.
func (e *InProcessEngine) Submit(ctx context.Context, exp *experiment.Experiment, out chan<- Completion) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		select {
		case e.sem <- struct{}{}:
			defer func() { <-e.sem }()
		case <-ctx.Done():
			out <- Completion{Experiment: exp, Err: ctx.Err()}
			return
		}

		outcomes, err := e.runner.RunExperiment(ctx, exp)
		out <- Completion{Experiment: exp, Outcomes: outcomes, Err: err}
	}()
}

// Close waits for in-flight experiments and releases the models.
func (e *InProcessEngine) Close() error {
	e.wg.Wait()
	if e.runner == nil {
		return nil
	}
	return e.runner.Cleanup()
}
