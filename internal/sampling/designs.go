package sampling

import (
	"fmt"
	"math"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// Design is one raw combination of parameter values, ordered to match the
// owning DesignSet's parameters (sorted by name).
type Design []float64

// DesignSet is a finite, restartable sequence of raw designs. The total
// count is known up front without consuming the sequence, whether the
// backing store is materialized or generated on demand.
type DesignSet struct {
	parameters []params.Parameter // sorted by name
	total      int
	iter       func() func() (Design, bool)
}

// Parameters returns the sampled parameters, sorted by name.
func (ds *DesignSet) Parameters() []params.Parameter {
	return append([]params.Parameter(nil), ds.parameters...)
}

// Total returns the number of designs in the set.
func (ds *DesignSet) Total() int { return ds.total }

// Iter starts a fresh pass over the designs.
func (ds *DesignSet) Iter() *DesignIter {
	return &DesignIter{next: ds.iter()}
}

// DesignIter walks a DesignSet once.
type DesignIter struct {
	next func() (Design, bool)
}

// Next returns the next design, or false when the set is exhausted.
func (it *DesignIter) Next() (Design, bool) {
	return it.next()
}

// materializedSet builds a DesignSet over in-memory rows.
func materializedSet(parameters []params.Parameter, rows []Design) *DesignSet {
	return &DesignSet{
		parameters: parameters,
		total:      len(rows),
		iter: func() func() (Design, bool) {
			i := 0
			return func() (Design, bool) {
				if i >= len(rows) {
					return nil, false
				}
				row := rows[i]
				i++
				return row, true
			}
		},
	}
}

// emptySet is the neutral design set: one design assigning nothing. It is
// what sampling over zero parameters produces, so factorial composition
// multiplies cleanly.
func emptySet() *DesignSet {
	return materializedSet(nil, []Design{{}})
}

// Scenarios assembles the raw designs into Scenario values.
func (ds *DesignSet) Scenarios() ([]params.Scenario, error) {
	points, err := ds.assemble()
	if err != nil {
		return nil, err
	}
	scenarios := make([]params.Scenario, len(points))
	for i, pt := range points {
		scenarios[i] = params.Scenario{Point: pt}
	}
	return scenarios, nil
}

// Policies assembles the raw designs into Policy values.
func (ds *DesignSet) Policies() ([]params.Policy, error) {
	points, err := ds.assemble()
	if err != nil {
		return nil, err
	}
	policies := make([]params.Policy, len(points))
	for i, pt := range points {
		policies[i] = params.Policy{Point: pt}
	}
	return policies, nil
}

func (ds *DesignSet) assemble() ([]params.Point, error) {
	points := make([]params.Point, 0, ds.total)
	it := ds.Iter()
	for {
		design, ok := it.Next()
		if !ok {
			break
		}
		if len(design) != len(ds.parameters) {
			return nil, fmt.Errorf("design length %d does not match %d parameters",
				len(design), len(ds.parameters))
		}
		values := make(map[string]any, len(design))
		for i, p := range ds.parameters {
			v, err := coerce(p, design[i])
			if err != nil {
				return nil, err
			}
			values[p.Name()] = v
		}
		points = append(points, params.NewPoint("", values))
	}
	if len(points) != ds.total {
		return nil, fmt.Errorf("design set yielded %d designs, expected %d", len(points), ds.total)
	}
	return points, nil
}

// coerce turns a raw sampled value into the parameter's domain value.
// Categorical raw values are resolved to a declared category before they
// can reach a model: directly when the raw value already equals a
// category value, otherwise as an integer index into the category list,
// which is how numeric samplers encode categoricals.
func coerce(p params.Parameter, raw float64) (any, error) {
	switch p.Kind() {
	case params.KindReal:
		return raw, nil
	case params.KindInteger:
		return int(math.Round(raw)), nil
	case params.KindBoolean:
		return raw != 0, nil
	case params.KindCategorical:
		if cat, ok := p.CategoryForValue(raw); ok {
			return cat.Value, nil
		}
		cat, err := p.CategoryAt(int(math.Round(raw)))
		if err != nil {
			return nil, err
		}
		return cat.Value, nil
	default:
		return nil, fmt.Errorf("parameter %s: unsupported kind %s", p.Name(), p.Kind())
	}
}
