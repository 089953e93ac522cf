package params

import (
	"fmt"
	"sort"
	"strings"
)

// Point is an immutable named assignment of parameter name to value. The
// same structure is used on both sampling axes: Scenario for the
// uncertainty space and Policy for the decision-lever space.
type Point struct {
	name   string
	values map[string]any
}

// NewPoint creates a point. When name is empty, a deterministic name is
// derived from the value assignment.
func NewPoint(name string, values map[string]any) Point {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	if name == "" {
		name = representation(copied)
	}
	return Point{name: name, values: copied}
}

// representation renders an assignment as a stable "k=v" listing.
func representation(values map[string]any) string {
	if len(values) == 0 {
		return "None"
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, values[k])
	}
	return strings.Join(parts, ",")
}

// Name returns the point name.
func (p Point) Name() string { return p.name }

// Value returns the value assigned to the named parameter.
func (p Point) Value(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Values returns a copy of the full assignment.
func (p Point) Values() map[string]any {
	copied := make(map[string]any, len(p.values))
	for k, v := range p.values {
		copied[k] = v
	}
	return copied
}

// Len returns the number of assigned parameters.
func (p Point) Len() int { return len(p.values) }

// Scenario is a parameter assignment over the uncertainty axis.
type Scenario struct {
	Point
}

// NewScenario creates a scenario from a value assignment.
func NewScenario(name string, values map[string]any) Scenario {
	return Scenario{Point: NewPoint(name, values)}
}

// EmptyScenario is the implicit scenario used when no uncertainties are
// sampled.
func EmptyScenario() Scenario {
	return NewScenario("None", nil)
}

// Policy is a parameter assignment over the decision-lever axis.
type Policy struct {
	Point
}

// NewPolicy creates a policy from a value assignment.
func NewPolicy(name string, values map[string]any) Policy {
	return Policy{Point: NewPoint(name, values)}
}

// EmptyPolicy is the implicit policy used when no levers are sampled.
func EmptyPolicy() Policy {
	return NewPolicy("None", nil)
}
