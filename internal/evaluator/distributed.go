package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/logger"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// Completion is one finished remote experiment.
type Completion struct {
	Experiment *experiment.Experiment
	Outcomes   models.Outcomes
	Err        error
}

// Engine is one remote execution endpoint. Initialize is called once,
// before the engine's first experiment, so the remote side can set up
// its model state once and reuse it. Submit must not block: it hands
// the experiment off and reports through the completions channel.
type Engine interface {
	Initialize(ctx context.Context, modelNames []string) error
	Submit(ctx context.Context, exp *experiment.Experiment, completions chan<- Completion)
	Close() error
}

// Distributed evaluates experiments across a set of engines behind a
// load-balanced submission queue. Completions are collected unordered
// as they arrive, so a slow experiment never blocks delivery of the
// ones finishing behind it.
type Distributed struct {
	lifecycle
	engines    []Engine
	modelNames []string
}

// NewDistributed creates a distributed evaluator over the given
// engines.
func NewDistributed(engines []Engine, modelNames []string) (*Distributed, error) {
	if len(engines) == 0 {
		return nil, errors.New("distributed evaluator needs at least one engine")
	}
	return &Distributed{engines: engines, modelNames: modelNames}, nil
}

// Evaluate implements Evaluator.
func (d *Distributed) Evaluate(ctx context.Context, gen *experiment.Generator, cb Callback) error {
	if err := d.begin(); err != nil {
		return err
	}
	defer d.setState(StateClosed)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// engine model state is initialized once, before any submission
	for i, engine := range d.engines {
		if err := engine.Initialize(runCtx, d.modelNames); err != nil {
			d.closeEngines(i + 1)
			return fmt.Errorf("initializing engine %d: %w", i, err)
		}
	}
	defer d.closeEngines(len(d.engines))

	total := gen.Total()
	logger.Info("performing experiments on engine cluster",
		"engines", len(d.engines), "total", total)

	// buffered so an aborted run never strands an in-flight sender
	completions := make(chan Completion, total)

	it := gen.Iter()
	submitted := 0
	for {
		exp, ok := it.Next()
		if !ok {
			break
		}
		engine := d.engines[submitted%len(d.engines)]
		engine.Submit(runCtx, exp, completions)
		submitted++
	}

	// everything is in flight; collection is the drain
	d.setState(StateDraining)

	var runErr error
	for collected := 0; collected < submitted; collected++ {
		c := <-completions
		if c.Err != nil {
			runErr = fmt.Errorf("run failed: %w", c.Err)
			cancel() // abort outstanding work, do not wait for it
			break
		}
		if err := cb(c.Experiment, c.Outcomes); err != nil {
			runErr = fmt.Errorf("callback for %s: %w", c.Experiment, err)
			cancel()
			break
		}
	}
	return runErr
}

func (d *Distributed) closeEngines(n int) {
	for i := 0; i < n && i < len(d.engines); i++ {
		if err := d.engines[i].Close(); err != nil {
			logger.Warn("closing engine", "engine", i, "error", err)
		}
	}
}
