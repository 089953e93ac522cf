// Package flumodel implements a two-region flu outbreak model: a
// coupled SIR system with region-specific contact, infection, recovery
// and fatality characteristics, and a vaccination campaign lever.
package flumodel

import (
	"context"
	"fmt"
	"math"

	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// ModelName is the registry name of the flu model.
const ModelName = "flu"

const (
	timeStep = 0.05 // years
	steps    = 200  // ten year horizon

	regionPopulation = 1e7
	initialInfected  = 0.001
)

// Series and scalar outcomes reported per experiment.
const (
	OutcomeDeceasedR1      = "deceased_population_r1"
	OutcomeInfectedR1      = "infected_fraction_r1"
	OutcomeMaxInfection    = "max_infection_fraction"
	LeverVaccinationRate   = "vaccination_rate"
	LeverVaccinatedRegions = "vaccinated_regions"
	VaccinatedRegionsNone  = "none"
	VaccinatedRegionsR1    = "region_1"
	VaccinatedRegionsBoth  = "both"
)

func init() {
	models.Register(ModelName, func() (models.Model, error) { return New() })
}

// Flu is the two-region outbreak model.
type Flu struct {
	models.Definition
}

// New builds the flu model with its parameter declarations.
func New() (*Flu, error) {
	uncertainties, err := declareUncertainties()
	if err != nil {
		return nil, err
	}
	levers, err := declareLevers()
	if err != nil {
		return nil, err
	}
	return &Flu{Definition: models.Definition{
		ModelName:          ModelName,
		ModelUncertainties: uncertainties,
		ModelLevers:        levers,
		ModelOutcomes: []models.Outcome{
			models.SeriesOutcome(OutcomeDeceasedR1),
			models.SeriesOutcome(OutcomeInfectedR1),
			models.ScalarOutcome(OutcomeMaxInfection),
		},
	}}, nil
}

func declareUncertainties() ([]params.Parameter, error) {
	fatalityDist, err := params.NewPERT(0.0001, 0.002, 0.1, 4)
	if err != nil {
		return nil, err
	}

	var out []params.Parameter
	add := func(p params.Parameter, err error) error {
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}

	for _, region := range []string{"r1", "r2"} {
		if err := add(params.NewReal("infection_ratio_"+region, 0.01, 0.15)); err != nil {
			return nil, err
		}
		if err := add(params.NewReal("contact_rate_"+region, 10, 100)); err != nil {
			return nil, err
		}
		if err := add(params.NewReal("recovery_time_"+region, 0.2, 0.8)); err != nil {
			return nil, err
		}
		if err := add(params.NewReal("fatality_ratio_"+region, 0.0001, 0.1, params.WithDist(fatalityDist))); err != nil {
			return nil, err
		}
		if err := add(params.NewReal("initial_immune_fraction_"+region, 0, 0.5)); err != nil {
			return nil, err
		}
	}
	if err := add(params.NewReal("interregional_contact_rate", 0, 0.9)); err != nil {
		return nil, err
	}
	return out, nil
}

func declareLevers() ([]params.Parameter, error) {
	rate, err := params.NewReal(LeverVaccinationRate, 0, 0.5)
	if err != nil {
		return nil, err
	}
	regions, err := params.NewCategorical(LeverVaccinatedRegions,
		params.Categories(VaccinatedRegionsNone, VaccinatedRegionsR1, VaccinatedRegionsBoth),
		params.WithFactorial())
	if err != nil {
		return nil, err
	}
	return []params.Parameter{rate, regions}, nil
}

type region struct {
	susceptible float64
	infected    float64
	recovered   float64
	deceased    float64

	infectionRatio float64
	contactRate    float64
	recoveryTime   float64
	fatalityRatio  float64
	vaccination    float64
}

// Run integrates the outbreak over a ten year horizon.
func (m *Flu) Run(ctx context.Context, variables map[string]any) (models.Outcomes, error) {
	v := &varReader{variables: variables}

	interregional := v.float("interregional_contact_rate")
	// levers default to no campaign when the run has no policy axis
	vaccinationRate := v.floatOr(LeverVaccinationRate, 0)
	vaccinated := v.category(LeverVaccinatedRegions)

	regions := [2]*region{}
	for i, name := range []string{"r1", "r2"} {
		r := &region{
			infectionRatio: v.float("infection_ratio_" + name),
			contactRate:    v.float("contact_rate_" + name),
			recoveryTime:   v.float("recovery_time_" + name),
			fatalityRatio:  v.float("fatality_ratio_" + name),
		}
		immune := v.float("initial_immune_fraction_" + name)
		r.infected = initialInfected
		r.recovered = immune
		r.susceptible = 1 - immune - initialInfected
		regions[i] = r
	}
	if v.err != nil {
		return nil, v.err
	}

	switch vaccinated {
	case VaccinatedRegionsNone, "":
	case VaccinatedRegionsR1:
		regions[0].vaccination = vaccinationRate
	case VaccinatedRegionsBoth:
		regions[0].vaccination = vaccinationRate
		regions[1].vaccination = vaccinationRate
	default:
		return nil, fmt.Errorf("unknown vaccinated_regions value %q", vaccinated)
	}

	deceasedR1 := make([]float64, steps)
	infectedR1 := make([]float64, steps)
	maxInfection := 0.0

	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, r := range regions {
			other := regions[1-i]
			force := r.infectionRatio * r.susceptible * (r.contactRate*r.infected + interregional*r.contactRate*other.infected)
			recovering := r.infected / r.recoveryTime
			vaccinating := r.vaccination * r.susceptible

			r.susceptible += timeStep * (-force - vaccinating)
			r.infected += timeStep * (force - recovering)
			r.recovered += timeStep * ((1-r.fatalityRatio)*recovering + vaccinating)
			r.deceased += timeStep * r.fatalityRatio * recovering

			r.susceptible = math.Max(r.susceptible, 0)
			r.infected = math.Max(r.infected, 0)
		}
		deceasedR1[step] = regions[0].deceased * regionPopulation
		infectedR1[step] = regions[0].infected
		maxInfection = math.Max(maxInfection, regions[0].infected)
	}

	return models.Outcomes{
		OutcomeDeceasedR1:   deceasedR1,
		OutcomeInfectedR1:   infectedR1,
		OutcomeMaxInfection: maxInfection,
	}, nil
}

// varReader reads typed variables, accumulating the first error.
type varReader struct {
	variables map[string]any
	err       error
}

func (v *varReader) float(name string) float64 {
	raw, ok := v.variables[name]
	if !ok {
		v.setErr(fmt.Errorf("missing variable %q", name))
		return 0
	}
	switch x := raw.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	default:
		v.setErr(fmt.Errorf("variable %q: expected number, got %T", name, raw))
		return 0
	}
}

func (v *varReader) floatOr(name string, fallback float64) float64 {
	if _, ok := v.variables[name]; !ok {
		return fallback
	}
	return v.float(name)
}

func (v *varReader) category(name string) string {
	raw, ok := v.variables[name]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.setErr(fmt.Errorf("variable %q: expected category, got %T", name, raw))
		return ""
	}
	return s
}

func (v *varReader) setErr(err error) {
	if v.err == nil {
		v.err = err
	}
}
