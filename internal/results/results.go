// Package results collects experiment outcomes into preallocated,
// name-addressed arrays and guards the integrity of a run: every
// experiment fills exactly one slot, and a run only yields results
// when all slots are filled.
package results

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// Metadata column names reserved next to the parameter columns.
const (
	ColumnScenario = "scenario"
	ColumnPolicy   = "policy"
	ColumnModel    = "model"
)

// Aggregator receives experiment completions in any order and stores
// them by experiment id. It is the standard callback target for an
// evaluator run.
type Aggregator struct {
	log      *slog.Logger
	total    int
	interval int

	parameters []string
	outcomes   []models.Outcome
	declared   map[string]map[string]bool

	mu      sync.Mutex
	meta    *Table
	scalars map[string][]float64
	series  map[string][][]float64
	filled  []bool
	count   int
}

// AggregatorOption adjusts aggregator behavior.
type AggregatorOption func(*Aggregator)

// WithReportingInterval logs progress every n stored experiments.
func WithReportingInterval(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.interval = n
		}
	}
}

// WithAggregatorLogger routes progress logging to log.
func WithAggregatorLogger(log *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithModelOutcomes records which outcomes each model declares. When
// set, an experiment is only required to produce the outcomes its own
// model declares; other stored outcomes are marked missing for that
// row. Without it, every experiment must produce every stored outcome.
func WithModelOutcomes(declarations map[string][]models.Outcome) AggregatorOption {
	return func(a *Aggregator) {
		a.declared = make(map[string]map[string]bool, len(declarations))
		for model, outcomes := range declarations {
			names := make(map[string]bool, len(outcomes))
			for _, o := range outcomes {
				names[o.Name] = true
			}
			a.declared[model] = names
		}
	}
}

// NewAggregator prepares storage for total experiments over the given
// parameters and declared outcomes.
func NewAggregator(total int, parameters []params.Parameter, outcomes []models.Outcome, opts ...AggregatorOption) (*Aggregator, error) {
	if total <= 0 {
		return nil, fmt.Errorf("aggregator needs a positive experiment count, got %d", total)
	}

	a := &Aggregator{
		log:      slog.Default(),
		total:    total,
		interval: total / 10,
		outcomes: append([]models.Outcome(nil), outcomes...),
		scalars:  make(map[string][]float64),
		series:   make(map[string][][]float64),
		filled:   make([]bool, total),
	}
	if a.interval < 1 {
		a.interval = 1
	}

	sorted := params.SortByName(parameters)
	if err := params.CheckUnique(sorted); err != nil {
		return nil, err
	}
	a.parameters = params.Names(sorted)

	columns := append(append([]string(nil), a.parameters...), ColumnScenario, ColumnPolicy, ColumnModel)
	a.meta = NewTable(columns, total)

	for _, o := range outcomes {
		switch o.Kind {
		case models.OutcomeScalar:
			a.scalars[o.Name] = make([]float64, total)
		case models.OutcomeSeries:
			a.series[o.Name] = make([][]float64, total)
		default:
			return nil, fmt.Errorf("outcome %q has unknown kind %v", o.Name, o.Kind)
		}
	}

	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Record stores one experiment completion. Recording the same
// experiment twice is fatal and leaves the already stored row intact.
func (a *Aggregator) Record(exp *experiment.Experiment, outcomes models.Outcomes) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if exp.ID < 0 || exp.ID >= a.total {
		return fmt.Errorf("experiment id %d outside run of %d", exp.ID, a.total)
	}
	if a.filled[exp.ID] {
		return fmt.Errorf("duplicate result for experiment %d", exp.ID)
	}

	for name, v := range outcomes {
		if _, scalar := a.scalars[name]; scalar {
			f, err := scalarValue(name, v)
			if err != nil {
				return err
			}
			a.scalars[name][exp.ID] = f
			continue
		}
		if _, isSeries := a.series[name]; isSeries {
			s, ok := v.([]float64)
			if !ok {
				return fmt.Errorf("outcome %q: expected series, got %T", name, v)
			}
			a.series[name][exp.ID] = s
			continue
		}
		a.log.Debug("ignoring undeclared outcome", "outcome", name, "experiment", exp.ID)
	}
	required, scoped := a.declared[exp.Model]
	for _, o := range a.outcomes {
		if _, ok := outcomes[o.Name]; ok {
			continue
		}
		if !scoped || required[o.Name] {
			return fmt.Errorf("experiment %d produced no outcome %q", exp.ID, o.Name)
		}
		// Outcome stored for another model; mark this row missing.
		if _, scalar := a.scalars[o.Name]; scalar {
			a.scalars[o.Name][exp.ID] = math.NaN()
		}
	}

	variables := exp.Scenario.Values()
	for name, v := range exp.Policy.Values() {
		variables[name] = v
	}
	for _, name := range a.parameters {
		if v, ok := variables[name]; ok {
			if err := a.meta.Set(name, exp.ID, v); err != nil {
				return err
			}
		}
	}
	if err := a.meta.Set(ColumnScenario, exp.ID, exp.Scenario.Name()); err != nil {
		return err
	}
	if err := a.meta.Set(ColumnPolicy, exp.ID, exp.Policy.Name()); err != nil {
		return err
	}
	if err := a.meta.Set(ColumnModel, exp.ID, exp.Model); err != nil {
		return err
	}

	a.filled[exp.ID] = true
	a.count++
	if a.count%a.interval == 0 || a.count == a.total {
		a.log.Info("cases completed", "count", a.count, "total", a.total)
	}
	return nil
}

// Count returns the number of experiments stored so far.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Done verifies that every experiment reported back and returns the
// assembled results.
func (a *Aggregator) Done() (*Results, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count != a.total {
		return nil, fmt.Errorf("incomplete run: %d of %d experiments reported", a.count, a.total)
	}
	return &Results{
		Parameters:  append([]string(nil), a.parameters...),
		Experiments: a.meta,
		Scalars:     a.scalars,
		Series:      a.series,
	}, nil
}

func scalarValue(name string, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("outcome %q: expected scalar, got %T", name, v)
	}
}

// Results holds one completed run: the experiment metadata table and
// the outcome arrays, all indexed by experiment id.
type Results struct {
	Parameters  []string
	Experiments *Table
	Scalars     map[string][]float64
	Series      map[string][][]float64
}

// Scenarios rebuilds the scenario of every experiment from the named
// parameter columns, for feeding one run's sampled cases into another.
func (r *Results) Scenarios(parameters []string) ([]params.Scenario, error) {
	n := r.Experiments.Len()
	scenarios := make([]params.Scenario, n)
	columns := make(map[string][]any, len(parameters))
	for _, name := range parameters {
		col, err := r.Experiments.Column(name)
		if err != nil {
			return nil, err
		}
		columns[name] = col
	}
	for i := 0; i < n; i++ {
		values := make(map[string]any, len(parameters))
		for _, name := range parameters {
			if v := columns[name][i]; v != nil {
				values[name] = v
			}
		}
		scenarios[i] = params.NewScenario(fmt.Sprintf("case %d", i), values)
	}
	return scenarios, nil
}
