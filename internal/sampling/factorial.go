package sampling

import (
	"math"
	"sort"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// FullFactorial generates the exhaustive grid over the parameters,
// ignoring their declared distributions. Continuous and integer
// parameters get n equally spaced grid points between their bounds
// (integer points rounded, de-duplicated and sorted); categorical
// parameters always contribute their full category set regardless of n.
// Explicit resolution levels take precedence over a computed grid.
type FullFactorial struct{}

// NewFullFactorial creates a full factorial sampler.
func NewFullFactorial() *FullFactorial {
	return &FullFactorial{}
}

// levels determines the grid levels for one parameter.
func (s *FullFactorial) levels(p params.Parameter, n int) []float64 {
	if res := p.Resolution(); len(res) > 0 {
		return res
	}
	if p.Kind() == params.KindCategorical {
		cats := p.Categories()
		levels := make([]float64, len(cats))
		for i := range cats {
			levels[i] = float64(i)
		}
		return levels
	}

	levels := linspace(p.Lower(), p.Upper(), n)
	if p.Kind() == params.KindInteger || p.Kind() == params.KindBoolean {
		seen := make(map[float64]bool, len(levels))
		deduped := levels[:0]
		for _, v := range levels {
			r := math.Round(v)
			if !seen[r] {
				seen[r] = true
				deduped = append(deduped, r)
			}
		}
		sort.Float64s(deduped)
		levels = deduped
	}
	return levels
}

func linspace(low, high float64, n int) []float64 {
	if n == 1 {
		return []float64{low}
	}
	out := make([]float64, n)
	step := (high - low) / float64(n-1)
	for i := range out {
		out[i] = low + float64(i)*step
	}
	out[n-1] = high
	return out
}

// GenerateDesigns implements Sampler. The total design count is the
// product of the per-parameter level counts; iteration decodes designs
// lazily through a mixed-radix counter, so large grids are never
// materialized.
func (s *FullFactorial) GenerateDesigns(parameters []params.Parameter, n int) (*DesignSet, error) {
	if err := checkParameters(parameters, n); err != nil {
		return nil, err
	}
	sorted := params.SortByName(parameters)
	if len(sorted) == 0 {
		return emptySet(), nil
	}

	grid := make([][]float64, len(sorted))
	total := 1
	for i, p := range sorted {
		grid[i] = s.levels(p, n)
		total *= len(grid[i])
	}

	return &DesignSet{
		parameters: sorted,
		total:      total,
		iter: func() func() (Design, bool) {
			idx := make([]int, len(grid))
			done := false
			return func() (Design, bool) {
				if done {
					return nil, false
				}
				design := make(Design, len(grid))
				for i, levels := range grid {
					design[i] = levels[idx[i]]
				}
				// advance the mixed-radix counter, least significant last
				for i := len(idx) - 1; i >= 0; i-- {
					idx[i]++
					if idx[i] < len(grid[i]) {
						break
					}
					idx[i] = 0
					if i == 0 {
						done = true
					}
				}
				return design, true
			}
		},
	}, nil
}
