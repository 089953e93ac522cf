package sampling

import (
	"fmt"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// PartialFactorial partitions the parameters into a factorial subset
// (parameters flagged factorial) and a sampled subset, builds each
// subset's design independently, and combines them at iteration time via
// Cartesian product. The joint grid is never materialized: the combined
// total is factorial-count times sampled-count.
type PartialFactorial struct {
	ff      *FullFactorial
	sampler Sampler
}

// NewPartialFactorial creates a partial factorial sampler. The sampled
// subset uses LHS or Monte Carlo sampling; anything else is a
// configuration error.
func NewPartialFactorial(method Method, seed int64) (*PartialFactorial, error) {
	var sampler Sampler
	switch method {
	case MethodLHS:
		sampler = NewLHS(seed)
	case MethodMonteCarlo:
		sampler = NewMonteCarlo(seed)
	default:
		return nil, fmt.Errorf("partial factorial: sampled subset must use %q or %q, got %q",
			MethodLHS, MethodMonteCarlo, method)
	}
	return &PartialFactorial{ff: NewFullFactorial(), sampler: sampler}, nil
}

func splitFactorial(parameters []params.Parameter) (ff, other []params.Parameter) {
	for _, p := range parameters {
		if p.Factorial() {
			ff = append(ff, p)
		} else {
			other = append(other, p)
		}
	}
	return ff, other
}

// GenerateDesigns implements Sampler.
func (s *PartialFactorial) GenerateDesigns(parameters []params.Parameter, n int) (*DesignSet, error) {
	if err := checkParameters(parameters, n); err != nil {
		return nil, err
	}
	ffParams, otherParams := splitFactorial(parameters)

	ffDesigns, err := s.ff.GenerateDesigns(ffParams, n)
	if err != nil {
		return nil, err
	}
	otherDesigns, err := s.sampler.GenerateDesigns(otherParams, n)
	if err != nil {
		return nil, err
	}

	return crossDesigns(ffDesigns, otherDesigns)
}

// crossDesigns combines two design sets over disjoint parameter groups
// into one set over the union, aligned to the union sorted by name.
func crossDesigns(a, b *DesignSet) (*DesignSet, error) {
	merged := params.SortByName(append(a.Parameters(), b.Parameters()...))
	if err := params.CheckUnique(merged); err != nil {
		return nil, err
	}

	pos := make(map[string]int, len(merged))
	for i, p := range merged {
		pos[p.Name()] = i
	}
	aIdx := make([]int, len(a.parameters))
	for i, p := range a.parameters {
		aIdx[i] = pos[p.Name()]
	}
	bIdx := make([]int, len(b.parameters))
	for i, p := range b.parameters {
		bIdx[i] = pos[p.Name()]
	}

	return &DesignSet{
		parameters: merged,
		total:      a.total * b.total,
		iter: func() func() (Design, bool) {
			outer := a.Iter()
			outerDesign, outerOK := outer.Next()
			inner := b.Iter()
			return func() (Design, bool) {
				for {
					if !outerOK {
						return nil, false
					}
					innerDesign, ok := inner.Next()
					if !ok {
						outerDesign, outerOK = outer.Next()
						inner = b.Iter()
						continue
					}
					design := make(Design, len(merged))
					for i, v := range outerDesign {
						design[aIdx[i]] = v
					}
					for i, v := range innerDesign {
						design[bIdx[i]] = v
					}
					return design, true
				}
			}
		},
	}, nil
}
