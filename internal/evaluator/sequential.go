package evaluator

import (
	"context"
	"fmt"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/logger"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// Sequential runs every experiment synchronously on the calling
// goroutine, invoking the callback inline. Any experiment failure is
// fatal and aborts the run.
type Sequential struct {
	lifecycle
	models []models.Model
}

// NewSequential creates a sequential evaluator over the given models.
func NewSequential(ms []models.Model) *Sequential {
	return &Sequential{models: ms}
}

// Evaluate implements Evaluator.
func (e *Sequential) Evaluate(ctx context.Context, gen *experiment.Generator, cb Callback) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.setState(StateClosed)

	runner, err := experiment.NewRunner(e.models)
	if err != nil {
		return err
	}
	defer runner.Cleanup()

	logger.Info("performing experiments sequentially", "total", gen.Total())

	it := gen.Iter()
	for {
		exp, ok := it.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		outcomes, err := runner.RunExperiment(ctx, exp)
		if err != nil {
			return err
		}
		if err := cb(exp, outcomes); err != nil {
			return fmt.Errorf("callback for %s: %w", exp, err)
		}
	}

	e.setState(StateDraining)
	if err := runner.Cleanup(); err != nil {
		return err
	}
	return nil
}
