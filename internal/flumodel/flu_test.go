package flumodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

func baseVariables() map[string]any {
	v := map[string]any{
		"interregional_contact_rate": 0.1,
	}
	for _, region := range []string{"r1", "r2"} {
		v["infection_ratio_"+region] = 0.1
		v["contact_rate_"+region] = 75.0
		v["recovery_time_"+region] = 0.5
		v["fatality_ratio_"+region] = 0.01
		v["initial_immune_fraction_"+region] = 0.1
	}
	return v
}

func TestFluDeclarations(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	assert.Equal(t, ModelName, m.Name())
	assert.Len(t, m.Uncertainties(), 11)
	assert.Len(t, m.Levers(), 2)
	assert.Len(t, m.Outcomes(), 3)

	registered, err := models.New(ModelName)
	require.NoError(t, err)
	assert.Equal(t, ModelName, registered.Name())
}

func TestFluOutbreakDynamics(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	outcomes, err := m.Run(context.Background(), baseVariables())
	require.NoError(t, err)

	infected := outcomes[OutcomeInfectedR1].([]float64)
	deceased := outcomes[OutcomeDeceasedR1].([]float64)
	peak := outcomes[OutcomeMaxInfection].(float64)
	require.Len(t, infected, steps)
	require.Len(t, deceased, steps)

	// the outbreak peaks and then burns out
	assert.Greater(t, peak, initialInfected)
	assert.Less(t, infected[steps-1], peak)
	for i, f := range infected {
		assert.GreaterOrEqualf(t, f, 0.0, "infected fraction negative at step %d", i)
		assert.LessOrEqual(t, f, peak)
	}

	// deceased population only grows
	for i := 1; i < steps; i++ {
		assert.GreaterOrEqual(t, deceased[i], deceased[i-1])
	}
	assert.Greater(t, deceased[steps-1], 0.0)
}

func TestFluVaccinationReducesPeak(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	run := func(rate float64, regions string) float64 {
		v := baseVariables()
		v[LeverVaccinationRate] = rate
		v[LeverVaccinatedRegions] = regions
		outcomes, err := m.Run(context.Background(), v)
		require.NoError(t, err)
		return outcomes[OutcomeMaxInfection].(float64)
	}

	unprotected := run(0.5, VaccinatedRegionsNone)
	protected := run(0.5, VaccinatedRegionsBoth)
	assert.Less(t, protected, unprotected)

	// vaccinating only region 1 still beats doing nothing
	assert.Less(t, run(0.5, VaccinatedRegionsR1), unprotected)
}

func TestFluLeversDefaultToNoCampaign(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	withLever := baseVariables()
	withLever[LeverVaccinationRate] = 0.0
	withLever[LeverVaccinatedRegions] = VaccinatedRegionsNone

	a, err := m.Run(context.Background(), baseVariables())
	require.NoError(t, err)
	b, err := m.Run(context.Background(), withLever)
	require.NoError(t, err)
	assert.Equal(t, a[OutcomeMaxInfection], b[OutcomeMaxInfection])
}

func TestFluMissingVariable(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	v := baseVariables()
	delete(v, "contact_rate_r2")
	_, err = m.Run(context.Background(), v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact_rate_r2")
}

func TestFluRejectsUnknownRegionChoice(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	v := baseVariables()
	v[LeverVaccinatedRegions] = "region_9"
	_, err = m.Run(context.Background(), v)
	assert.Error(t, err)
}
