package config

// Setup represents a complete experiment run setup
type Setup struct {
	LogLevel   string          `yaml:"log_level"`
	Models     []string        `yaml:"models"`
	Run        *Run            `yaml:"run,omitempty"`
	Evaluator  *Evaluator      `yaml:"evaluator,omitempty"`
	Parameters []ParameterSpec `yaml:"parameters,omitempty"`
	Scenarios  []PointSpec     `yaml:"scenarios,omitempty"`
	Policies   []PointSpec     `yaml:"policies,omitempty"`
}

// Run represents the sampling configuration of a run
type Run struct {
	Scenarios           int    `yaml:"scenarios"`
	Policies            int    `yaml:"policies"`
	UncertaintySampling string `yaml:"uncertainty_sampling,omitempty"` // lhs, ulhs, mc, ff, pff
	LeverSampling       string `yaml:"lever_sampling,omitempty"`
	UncertaintyUnion    bool   `yaml:"uncertainty_union,omitempty"`
	LeverUnion          bool   `yaml:"lever_union,omitempty"`
	Seed                int64  `yaml:"seed,omitempty"`
	ReportingInterval   int    `yaml:"reporting_interval,omitempty"`
}

// Evaluator represents the evaluator selection for a run
type Evaluator struct {
	Type        string   `yaml:"type"` // sequential, pool, distributed
	Workers     int      `yaml:"workers,omitempty"`
	Endpoints   []string `yaml:"endpoints,omitempty"`
	Concurrency int      `yaml:"concurrency,omitempty"` // in-flight experiments per endpoint
}

// ParameterSpec represents one parameter declaration
type ParameterSpec struct {
	Name       string    `yaml:"name"`
	Kind       string    `yaml:"kind"` // real, integer, boolean, categorical
	Low        float64   `yaml:"low,omitempty"`
	High       float64   `yaml:"high,omitempty"`
	Categories []string  `yaml:"categories,omitempty"`
	Resolution []float64 `yaml:"resolution,omitempty"`
	Factorial  bool      `yaml:"factorial,omitempty"`
	Dist       *DistSpec `yaml:"dist,omitempty"`
}

// DistSpec represents an optional non-uniform sampling distribution
type DistSpec struct {
	Family string  `yaml:"family"` // triangular, pert, bernoulli
	Mode   float64 `yaml:"mode,omitempty"`
	Peak   float64 `yaml:"peak,omitempty"`
	Gamma  float64 `yaml:"gamma,omitempty"`
	Rate   float64 `yaml:"rate,omitempty"`
}

// PointSpec represents one named scenario or policy
type PointSpec struct {
	Name   string         `yaml:"name"`
	Values map[string]any `yaml:"values"`
}
