// Package sampling generates structured sets of input combinations over a
// group of parameters. The concrete strategies share one contract:
// GenerateDesigns sorts the parameters by name, draws per-parameter value
// sequences, and combines them into raw designs whose total count is
// known before consumption.
package sampling

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// Sampler produces a design set over a parameter group.
type Sampler interface {
	GenerateDesigns(parameters []params.Parameter, n int) (*DesignSet, error)
}

// Method selects a sampling strategy by name.
type Method string

const (
	MethodLHS        Method = "lhs"
	MethodUniformLHS Method = "ulhs"
	MethodMonteCarlo Method = "mc"
	MethodFF         Method = "ff"
	MethodPFF        Method = "pff"
)

// NewSampler constructs the sampler for a method. Seed 0 means
// time-based seeding.
func NewSampler(m Method, seed int64) (Sampler, error) {
	switch m {
	case MethodLHS:
		return NewLHS(seed), nil
	case MethodUniformLHS:
		return NewUniformLHS(seed), nil
	case MethodMonteCarlo:
		return NewMonteCarlo(seed), nil
	case MethodFF:
		return NewFullFactorial(), nil
	case MethodPFF:
		return NewPartialFactorial(MethodLHS, seed)
	default:
		return nil, fmt.Errorf("invalid sampling method %q", m)
	}
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// checkParameters validates a parameter group before any sampling runs:
// unique names, known distribution families, non-degenerate shapes.
func checkParameters(parameters []params.Parameter, n int) error {
	if n <= 0 {
		return fmt.Errorf("sample size must be positive, got %d", n)
	}
	if err := params.CheckUnique(parameters); err != nil {
		return err
	}
	for _, p := range parameters {
		if !params.KnownFamily(p.Dist().Family) {
			return fmt.Errorf("parameter %s: %w: %q", p.Name(), ErrUnknownDistribution, p.Dist().Family)
		}
		if err := p.Dist().Validate(); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
	}
	return nil
}

// drawFunc draws size raw values for one distribution.
type drawFunc func(d params.Distribution, size int) ([]float64, error)

// defaultDesigns is the shared design construction for the non-factorial
// strategies: draw one column per sorted parameter and zip the columns
// into n row designs.
func defaultDesigns(draw drawFunc, parameters []params.Parameter, n int) (*DesignSet, error) {
	if err := checkParameters(parameters, n); err != nil {
		return nil, err
	}
	sorted := params.SortByName(parameters)
	if len(sorted) == 0 {
		return emptySet(), nil
	}

	columns := make([][]float64, len(sorted))
	for i, p := range sorted {
		col, err := draw(p.Dist(), n)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
		columns[i] = col
	}

	rows := make([]Design, n)
	for r := 0; r < n; r++ {
		row := make(Design, len(sorted))
		for c := range sorted {
			row[c] = columns[c][r]
		}
		rows[r] = row
	}
	return materializedSet(sorted, rows), nil
}
