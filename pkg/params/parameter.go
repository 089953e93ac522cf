package params

import (
	"fmt"
)

// Kind discriminates the value domain of a parameter.
type Kind int

const (
	KindReal Kind = iota
	KindInteger
	KindBoolean
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Parameter is an immutable description of one input dimension: its name,
// kind, bounds or categories, and the distribution samplers draw from.
type Parameter struct {
	name       string
	kind       Kind
	lower      float64
	upper      float64
	dist       Distribution
	resolution []float64
	factorial  bool
	categories []Category
}

// Option adjusts optional parameter attributes at construction time.
type Option func(*Parameter)

// WithResolution fixes the discrete levels full factorial sampling uses
// instead of an evenly spaced grid.
func WithResolution(levels ...float64) Option {
	return func(p *Parameter) {
		p.resolution = append([]float64(nil), levels...)
	}
}

// WithFactorial marks the parameter for the factorial subset of a partial
// factorial design.
func WithFactorial() Option {
	return func(p *Parameter) { p.factorial = true }
}

// WithDist overrides the default distribution for the parameter.
func WithDist(d Distribution) Option {
	return func(p *Parameter) { p.dist = d }
}

// NewReal creates a real-valued parameter on [lower, upper) with a uniform
// distribution unless overridden.
func NewReal(name string, lower, upper float64, opts ...Option) (Parameter, error) {
	if name == "" {
		return Parameter{}, fmt.Errorf("parameter name must not be empty")
	}
	dist, err := NewUniform(lower, upper)
	if err != nil {
		return Parameter{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	p := Parameter{name: name, kind: KindReal, lower: lower, upper: upper, dist: dist}
	return finish(p, opts)
}

// NewInteger creates an integer parameter over [lower, upper] inclusive,
// integer-uniform by default.
func NewInteger(name string, lower, upper int, opts ...Option) (Parameter, error) {
	if name == "" {
		return Parameter{}, fmt.Errorf("parameter name must not be empty")
	}
	dist, err := NewIntegerUniform(lower, upper+1)
	if err != nil {
		return Parameter{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	p := Parameter{name: name, kind: KindInteger, lower: float64(lower), upper: float64(upper), dist: dist}
	return finish(p, opts)
}

// NewBoolean creates a boolean parameter sampled as integer-uniform
// over {0, 1}.
func NewBoolean(name string, opts ...Option) (Parameter, error) {
	if name == "" {
		return Parameter{}, fmt.Errorf("parameter name must not be empty")
	}
	dist, err := NewIntegerUniform(0, 2)
	if err != nil {
		return Parameter{}, err
	}
	p := Parameter{name: name, kind: KindBoolean, lower: 0, upper: 1, dist: dist}
	return finish(p, opts)
}

// NewCategorical creates a categorical parameter over the given categories
// in insertion order. Numeric samplers encode it as an integer-uniform
// draw over the category indices.
func NewCategorical(name string, categories []Category, opts ...Option) (Parameter, error) {
	if name == "" {
		return Parameter{}, fmt.Errorf("parameter name must not be empty")
	}
	if len(categories) == 0 {
		return Parameter{}, fmt.Errorf("parameter %s: at least one category required", name)
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c.Name] {
			return Parameter{}, fmt.Errorf("parameter %s: duplicate category %q", name, c.Name)
		}
		seen[c.Name] = true
	}
	dist, err := NewIntegerUniform(0, len(categories))
	if err != nil {
		return Parameter{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	p := Parameter{
		name:       name,
		kind:       KindCategorical,
		lower:      0,
		upper:      float64(len(categories) - 1),
		dist:       dist,
		categories: append([]Category(nil), categories...),
	}
	return finish(p, opts)
}

func finish(p Parameter, opts []Option) (Parameter, error) {
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.dist.Validate(); err != nil {
		return Parameter{}, fmt.Errorf("parameter %s: %w", p.name, err)
	}
	for _, level := range p.resolution {
		if level < p.lower || level > p.upper {
			return Parameter{}, fmt.Errorf("parameter %s: resolution level %v outside bounds [%v, %v]",
				p.name, level, p.lower, p.upper)
		}
	}
	return p, nil
}

// Name returns the parameter name, unique within a sampling group.
func (p Parameter) Name() string { return p.name }

// Kind returns the parameter's value domain.
func (p Parameter) Kind() Kind { return p.kind }

// Lower returns the lower bound.
func (p Parameter) Lower() float64 { return p.lower }

// Upper returns the upper bound.
func (p Parameter) Upper() float64 { return p.upper }

// Dist returns the distribution descriptor.
func (p Parameter) Dist() Distribution { return p.dist }

// Resolution returns the explicit factorial levels, if any.
func (p Parameter) Resolution() []float64 {
	return append([]float64(nil), p.resolution...)
}

// Factorial reports membership in the factorial subset of a partial
// factorial design.
func (p Parameter) Factorial() bool { return p.factorial }

// Categories returns the ordered category set of a categorical parameter.
func (p Parameter) Categories() []Category {
	return append([]Category(nil), p.categories...)
}

// CategoryAt returns the category at index i.
func (p Parameter) CategoryAt(i int) (Category, error) {
	if i < 0 || i >= len(p.categories) {
		return Category{}, fmt.Errorf("parameter %s: category index %d out of range [0, %d)",
			p.name, i, len(p.categories))
	}
	return p.categories[i], nil
}

// CategoryForValue looks up the category whose value equals v.
func (p Parameter) CategoryForValue(v any) (Category, bool) {
	for _, c := range p.categories {
		if c.Value == v {
			return c, true
		}
	}
	return Category{}, false
}
