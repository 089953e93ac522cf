package evaluator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/logger"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// Pool evaluates experiments on a fixed-size pool of workers. Each
// worker owns its own model instances, built from the supplied
// factories before it takes its first experiment, and reuses them for
// every experiment assigned to it. Completions are delivered
// first-finished-first-called; the callback itself always runs on the
// orchestrating goroutine. Worker log output goes through a dedicated
// channel into one consumer, so the run log stays globally ordered.
type Pool struct {
	lifecycle
	factories []models.Factory
	workers   int
}

// NewPool creates a pool evaluator. A non-positive worker count
// defaults to the host parallelism.
func NewPool(factories []models.Factory, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{factories: factories, workers: workers}
}

type poolResult struct {
	exp      *experiment.Experiment
	outcomes models.Outcomes
}

func (p *Pool) buildRunner(log *logFunnel, worker int) (*experiment.Runner, error) {
	ms := make([]models.Model, len(p.factories))
	for i, factory := range p.factories {
		m, err := factory()
		if err != nil {
			return nil, fmt.Errorf("worker %d: building model: %w", worker, err)
		}
		ms[i] = m
	}
	runner, err := experiment.NewRunner(ms)
	if err != nil {
		return nil, err
	}
	return runner.WithLogger(log.Logger().With("worker", worker)), nil
}

// Evaluate implements Evaluator.
func (p *Pool) Evaluate(ctx context.Context, gen *experiment.Generator, cb Callback) error {
	if err := p.begin(); err != nil {
		return err
	}
	defer p.setState(StateClosed)

	logger.Info("performing experiments with worker pool",
		"workers", p.workers, "total", gen.Total())

	funnel := newLogFunnel(logger.Default)
	defer funnel.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	jobs := make(chan *experiment.Experiment)
	results := make(chan poolResult)

	for w := 0; w < p.workers; w++ {
		w := w
		g.Go(func() (err error) {
			runner, err := p.buildRunner(funnel, w)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, runner.Cleanup())
			}()

			for exp := range jobs {
				outcomes, err := runner.RunExperiment(gctx, exp)
				if err != nil {
					return err
				}
				select {
				case results <- poolResult{exp: exp, outcomes: outcomes}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		it := gen.Iter()
		for {
			exp, ok := it.Next()
			if !ok {
				return nil
			}
			select {
			case jobs <- exp:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	workersDone := make(chan error, 1)
	go func() {
		workersDone <- g.Wait()
		close(results)
	}()

	// collect in completion order; the callback stays on this goroutine
	var cbErr error
	for res := range results {
		if cbErr != nil {
			continue // aborting, discard remaining completions
		}
		if err := cb(res.exp, res.outcomes); err != nil {
			cbErr = fmt.Errorf("callback for %s: %w", res.exp, err)
			cancel()
		}
	}

	p.setState(StateDraining)
	err := <-workersDone
	if cbErr != nil {
		return cbErr
	}
	if err != nil {
		return fmt.Errorf("worker pool run failed: %w", err)
	}
	return nil
}
