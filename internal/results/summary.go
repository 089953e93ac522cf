package results

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
)

// Summary is the descriptive statistics of one scalar outcome across a
// run.
type Summary struct {
	Outcome string
	Min     float64
	Max     float64
	Mean    float64
	Median  float64
	StdDev  float64
}

// Summarize computes per-outcome statistics over every scalar outcome,
// sorted by outcome name.
func (r *Results) Summarize() ([]Summary, error) {
	summaries := make([]Summary, 0, len(r.Scalars))
	for name, values := range r.Scalars {
		s, err := summarize(name, values)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Outcome < summaries[j].Outcome })
	return summaries, nil
}

func summarize(name string, values []float64) (Summary, error) {
	data := stats.Float64Data(values)
	min, err := stats.Min(data)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing %q: %w", name, err)
	}
	max, err := stats.Max(data)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing %q: %w", name, err)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing %q: %w", name, err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing %q: %w", name, err)
	}
	stddev, err := stats.StandardDeviation(data)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing %q: %w", name, err)
	}
	return Summary{Outcome: name, Min: min, Max: max, Mean: mean, Median: median, StdDev: stddev}, nil
}
