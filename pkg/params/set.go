package params

import (
	"fmt"
	"sort"
)

// SortByName returns a copy of the parameters sorted by name. Samplers
// must operate on sorted parameters so independently generated
// sub-designs can be combined without misalignment.
func SortByName(parameters []Parameter) []Parameter {
	sorted := append([]Parameter(nil), parameters...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	return sorted
}

// CheckUnique verifies that no two parameters in the group share a name.
func CheckUnique(parameters []Parameter) error {
	seen := make(map[string]bool, len(parameters))
	for _, p := range parameters {
		if seen[p.name] {
			return fmt.Errorf("duplicate parameter name %q", p.name)
		}
		seen[p.name] = true
	}
	return nil
}

// Union merges parameter groups keyed by name, keeping the first
// declaration of each name and the overall first-seen order.
func Union(groups ...[]Parameter) []Parameter {
	var merged []Parameter
	seen := make(map[string]bool)
	for _, group := range groups {
		for _, p := range group {
			if seen[p.name] {
				continue
			}
			seen[p.name] = true
			merged = append(merged, p)
		}
	}
	return merged
}

// Intersect keeps only parameters declared in every group, using the
// first group's declarations and order.
func Intersect(groups ...[]Parameter) []Parameter {
	if len(groups) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, group := range groups {
		inGroup := make(map[string]bool)
		for _, p := range group {
			if !inGroup[p.name] {
				inGroup[p.name] = true
				counts[p.name]++
			}
		}
	}
	var kept []Parameter
	for _, p := range groups[0] {
		if counts[p.name] == len(groups) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Names returns the parameter names in order.
func Names(parameters []Parameter) []string {
	names := make([]string, len(parameters))
	for i, p := range parameters {
		names[i] = p.name
	}
	return names
}
