package sampling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// ErrUnknownDistribution is returned when a parameter names a distribution
// family outside the sampling vocabulary.
var ErrUnknownDistribution = errors.New("unknown distribution family")

// quantiler exposes the inverse CDF of a distribution. All draw mechanisms
// go through the quantile function so one seeded uniform source drives
// every family.
type quantiler interface {
	Quantile(p float64) float64
}

// newQuantiler resolves a distribution descriptor into its quantile
// function. Shape validation happens here, before any sampling executes.
func newQuantiler(d params.Distribution) (quantiler, error) {
	if !params.KnownFamily(d.Family) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, d.Family)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	switch d.Family {
	case params.Uniform:
		return distuv.Uniform{Min: d.Low, Max: d.Low + d.Width}, nil
	case params.Integer:
		return integerQuantiler{low: d.Low, width: d.Width}, nil
	case params.Triangular:
		mode := d.Low + d.Shape[0]*d.Width
		return distuv.NewTriangle(d.Low, mode, d.Low+d.Width, nil), nil
	case params.PERT:
		return newPERTQuantiler(d)
	case params.Bernoulli:
		return bernoulliQuantiler{rate: d.Shape[0]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, d.Family)
	}
}

// integerQuantiler is the discrete uniform over [low, low+width) as
// integers.
type integerQuantiler struct {
	low   float64
	width float64
}

func (q integerQuantiler) Quantile(p float64) float64 {
	v := math.Floor(q.low + p*q.width)
	if max := q.low + q.width - 1; v > max {
		v = max
	}
	return v
}

// bernoulliQuantiler yields 0 below the failure mass and 1 above it.
type bernoulliQuantiler struct {
	rate float64
}

func (q bernoulliQuantiler) Quantile(p float64) float64 {
	if p < 1-q.rate {
		return 0
	}
	return 1
}

// pertQuantiler maps a PERT distribution onto a scaled Beta. The Beta
// shape parameters follow from the peak location and the gamma
// concentration value.
type pertQuantiler struct {
	beta  distuv.Beta
	low   float64
	width float64
}

func newPERTQuantiler(d params.Distribution) (pertQuantiler, error) {
	peak, gamma := d.Shape[0], d.Shape[1]
	low := d.Low
	high := d.Low + d.Width

	mu := (low + gamma*peak + high) / (gamma + 2)
	var a1, a2 float64
	if mu == peak {
		a1, a2 = 3, 3
	} else {
		a1 = ((mu - low) * (2*peak - low - high)) / ((peak - mu) * (high - low))
		a2 = a1 * (high - mu) / (mu - low)
	}
	if a1 <= 0 || a2 <= 0 {
		return pertQuantiler{}, fmt.Errorf("pert: degenerate shape (alpha=%v, beta=%v) for peak %v on [%v, %v]",
			a1, a2, peak, low, high)
	}
	return pertQuantiler{
		beta:  distuv.Beta{Alpha: a1, Beta: a2},
		low:   low,
		width: d.Width,
	}, nil
}

func (q pertQuantiler) Quantile(p float64) float64 {
	return q.low + q.width*q.beta.Quantile(p)
}
