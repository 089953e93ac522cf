package sampling

import (
	"math/rand"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// LHS generates Latin Hypercube samples: [0,1) is partitioned into size
// equal-probability strata, each stratum receives exactly one uniform
// draw, the stratum-to-output order is randomly permuted, and the draws
// are inverted through the target distribution's quantile function. The
// marginal distribution is preserved with lower variance than plain
// Monte Carlo.
type LHS struct {
	uniform bool
	rng     *rand.Rand
}

// NewLHS creates a Latin Hypercube sampler. Seed 0 means time-based
// seeding.
func NewLHS(seed int64) *LHS {
	return &LHS{rng: newRand(seed)}
}

// NewUniformLHS creates the degenerate LHS variant: every distribution
// family degrades to its uniform counterpart over the same support while
// the stratification machinery stays the same.
func NewUniformLHS(seed int64) *LHS {
	return &LHS{uniform: true, rng: newRand(seed)}
}

func (s *LHS) sample(d params.Distribution, size int) ([]float64, error) {
	if s.uniform {
		d = d.UniformVariant()
	}
	q, err := newQuantiler(d)
	if err != nil {
		return nil, err
	}

	out := make([]float64, size)
	for i, stratum := range s.rng.Perm(size) {
		u := (float64(stratum) + s.rng.Float64()) / float64(size)
		out[i] = q.Quantile(u)
	}
	return out, nil
}

// GenerateDesigns implements Sampler.
func (s *LHS) GenerateDesigns(parameters []params.Parameter, n int) (*DesignSet, error) {
	return defaultDesigns(s.sample, parameters, n)
}
