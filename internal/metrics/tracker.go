// Package metrics tracks per-experiment wall time during a run.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// Tracker accumulates experiment durations per model.
type Tracker struct {
	mu        sync.Mutex
	durations map[string][]float64 // model -> milliseconds
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{durations: make(map[string][]float64)}
}

// Observe records the duration of one experiment.
func (t *Tracker) Observe(model string, d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	t.mu.Lock()
	t.durations[model] = append(t.durations[model], ms)
	t.mu.Unlock()
}

// Models returns the models observed so far, sorted by name.
func (t *Tracker) Models() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.durations))
	for name := range t.durations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot is the timing distribution of one model's experiments, in
// milliseconds.
type Snapshot struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P95   float64
}

// Snapshot summarizes the durations observed for model. The second
// return is false when the model has no observations.
func (t *Tracker) Snapshot(model string) (Snapshot, bool) {
	t.mu.Lock()
	values := append([]float64(nil), t.durations[model]...)
	t.mu.Unlock()
	if len(values) == 0 {
		return Snapshot{}, false
	}

	data := stats.Float64Data(values)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	mean, _ := stats.Mean(data)
	sum, _ := stats.Sum(data)
	p50, _ := stats.Percentile(data, 50)
	p95, _ := stats.Percentile(data, 95)

	return Snapshot{
		Count: len(values),
		Sum:   sum,
		Min:   min,
		Max:   max,
		Mean:  mean,
		P50:   p50,
		P95:   p95,
	}, true
}
