package sampling

import (
	"math/rand"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// MonteCarlo draws size independent samples from each parameter's
// distribution through inverse-CDF sampling.
type MonteCarlo struct {
	rng *rand.Rand
}

// NewMonteCarlo creates a Monte Carlo sampler. Seed 0 means time-based
// seeding.
func NewMonteCarlo(seed int64) *MonteCarlo {
	return &MonteCarlo{rng: newRand(seed)}
}

func (s *MonteCarlo) sample(d params.Distribution, size int) ([]float64, error) {
	q, err := newQuantiler(d)
	if err != nil {
		return nil, err
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = q.Quantile(s.rng.Float64())
	}
	return out, nil
}

// GenerateDesigns implements Sampler.
func (s *MonteCarlo) GenerateDesigns(parameters []params.Parameter, n int) (*DesignSet, error) {
	return defaultDesigns(s.sample, parameters, n)
}
