// Package evaluator provides the pluggable execution backends that
// consume an experiment stream and deliver each completion to a
// callback: sequential, worker pool, and distributed over remote worker
// engines.
//
// Every backend honors the same contract: each produced experiment
// triggers exactly one callback invocation, or the run as a whole is
// declared failed. The callback is always invoked from the
// orchestrating goroutine, so callback code only needs to be safe
// against sequential re-entrancy.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// Callback receives one completed experiment together with its outcome
// mapping.
type Callback func(exp *experiment.Experiment, outcomes models.Outcomes) error

// State tracks an evaluator through its lifecycle. Resources are
// acquired on the transition to Active and released on every path out of
// it: Draining on a normal run (outstanding work finishes first), or
// straight to Closed on an abnormal one (outstanding work is aborted).
type State int32

const (
	StateIdle State = iota
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// lifecycle is the shared state tracking embedded by the backends.
type lifecycle struct {
	state atomic.Int32
}

func (l *lifecycle) setState(s State) {
	l.state.Store(int32(s))
}

// State returns the evaluator's current lifecycle state.
func (l *lifecycle) State() State {
	return State(l.state.Load())
}

// ErrEvaluatorBusy is returned when Evaluate is called on an evaluator
// that is not idle.
var ErrEvaluatorBusy = errors.New("evaluator is not idle")

func (l *lifecycle) begin() error {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateActive)) {
		return fmt.Errorf("%w: state %s", ErrEvaluatorBusy, State(l.state.Load()))
	}
	return nil
}

// Evaluator is one execution backend. Evaluate drives the full
// experiment stream to completion and returns only after all resources
// it acquired have been released.
type Evaluator interface {
	Evaluate(ctx context.Context, gen *experiment.Generator, cb Callback) error
}
