package params

import "fmt"

// Family identifies a distribution family understood by the samplers.
type Family string

const (
	Uniform    Family = "uniform"
	Integer    Family = "integer"
	Triangular Family = "triangular"
	PERT       Family = "pert"
	Bernoulli  Family = "bernoulli"
)

// KnownFamily reports whether f is part of the sampling vocabulary.
func KnownFamily(f Family) bool {
	switch f {
	case Uniform, Integer, Triangular, PERT, Bernoulli:
		return true
	}
	return false
}

// Distribution describes a distribution by family, shape values and support.
// The support is always carried as (Low, Width) so that any family can
// degrade cleanly to its uniform counterpart. For the integer family the
// support is the half-open integer range [Low, Low+Width).
type Distribution struct {
	Family Family
	Shape  []float64
	Low    float64
	Width  float64
}

// NewUniform returns a continuous uniform distribution on [low, high).
func NewUniform(low, high float64) (Distribution, error) {
	if low >= high {
		return Distribution{}, fmt.Errorf("uniform: low %v must be less than high %v", low, high)
	}
	return Distribution{Family: Uniform, Low: low, Width: high - low}, nil
}

// NewIntegerUniform returns a discrete uniform distribution over the
// integers in [low, high).
func NewIntegerUniform(low, high int) (Distribution, error) {
	if low >= high {
		return Distribution{}, fmt.Errorf("integer: low %d must be less than high %d", low, high)
	}
	return Distribution{Family: Integer, Low: float64(low), Width: float64(high - low)}, nil
}

// NewTriangular returns a triangular distribution on [low, high) with the
// given mode. The mode is stored as a relative position in Shape[0].
func NewTriangular(low, mode, high float64) (Distribution, error) {
	if low >= high {
		return Distribution{}, fmt.Errorf("triangular: low %v must be less than high %v", low, high)
	}
	if mode < low || mode > high {
		return Distribution{}, fmt.Errorf("triangular: mode %v outside [%v, %v]", mode, low, high)
	}
	return Distribution{
		Family: Triangular,
		Shape:  []float64{(mode - low) / (high - low)},
		Low:    low,
		Width:  high - low,
	}, nil
}

// NewPERT returns a PERT distribution on [low, high) peaking at peak.
// Gamma controls how concentrated the distribution is around the peak;
// 4 is the conventional default.
func NewPERT(low, peak, high, gamma float64) (Distribution, error) {
	if low >= high {
		return Distribution{}, fmt.Errorf("pert: low %v must be less than high %v", low, high)
	}
	if peak < low || peak > high {
		return Distribution{}, fmt.Errorf("pert: peak %v outside [%v, %v]", peak, low, high)
	}
	if gamma < 0 {
		return Distribution{}, fmt.Errorf("pert: gamma %v must be non-negative", gamma)
	}
	return Distribution{
		Family: PERT,
		Shape:  []float64{peak, gamma},
		Low:    low,
		Width:  high - low,
	}, nil
}

// NewBernoulli returns a Bernoulli distribution with success rate p,
// producing raw values in {0, 1}.
func NewBernoulli(p float64) (Distribution, error) {
	if p < 0 || p > 1 {
		return Distribution{}, fmt.Errorf("bernoulli: rate %v outside [0, 1]", p)
	}
	return Distribution{Family: Bernoulli, Shape: []float64{p}, Low: 0, Width: 2}, nil
}

// Validate checks the distribution for degenerate support or shape values.
func (d Distribution) Validate() error {
	if !KnownFamily(d.Family) {
		return fmt.Errorf("unknown distribution family %q", d.Family)
	}
	if d.Width <= 0 {
		return fmt.Errorf("%s: support width %v must be positive", d.Family, d.Width)
	}
	switch d.Family {
	case Triangular:
		if len(d.Shape) != 1 || d.Shape[0] < 0 || d.Shape[0] > 1 {
			return fmt.Errorf("triangular: relative mode must be in [0, 1]")
		}
	case PERT:
		if len(d.Shape) != 2 {
			return fmt.Errorf("pert: expected peak and gamma shape values")
		}
		peak, gamma := d.Shape[0], d.Shape[1]
		if peak < d.Low || peak > d.Low+d.Width {
			return fmt.Errorf("pert: peak %v outside support", peak)
		}
		if gamma < 0 {
			return fmt.Errorf("pert: gamma %v must be non-negative", gamma)
		}
	case Bernoulli:
		if len(d.Shape) != 1 || d.Shape[0] < 0 || d.Shape[0] > 1 {
			return fmt.Errorf("bernoulli: rate must be in [0, 1]")
		}
	}
	return nil
}

// UniformVariant degrades the distribution to the uniform shape over the
// same support. Continuous families become plain uniform, discrete
// families become integer uniform.
func (d Distribution) UniformVariant() Distribution {
	switch d.Family {
	case Integer:
		return d
	case Bernoulli:
		return Distribution{Family: Integer, Low: 0, Width: 2}
	default:
		return Distribution{Family: Uniform, Low: d.Low, Width: d.Width}
	}
}
