package ema

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estandiaa-marain/EMAworkbench/internal/evaluator"
	"github.com/estandiaa-marain/EMAworkbench/internal/results"
	"github.com/estandiaa-marain/EMAworkbench/internal/sampling"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// sumModel adds its uncertainty and its lever.
type sumModel struct {
	models.Definition
}

func newSumModel(t *testing.T) *sumModel {
	t.Helper()
	rate, err := params.NewReal("rate", 0, 1)
	require.NoError(t, err)
	cap, err := params.NewReal("cap", 0, 2)
	require.NoError(t, err)
	return &sumModel{Definition: models.Definition{
		ModelName:          "sum",
		ModelUncertainties: []params.Parameter{rate},
		ModelLevers:        []params.Parameter{cap},
		ModelOutcomes:      []models.Outcome{models.ScalarOutcome("total"), models.SeriesOutcome("steps")},
	}}
}

func (m *sumModel) Run(ctx context.Context, variables map[string]any) (models.Outcomes, error) {
	rate, _ := variables["rate"].(float64)
	cap, _ := variables["cap"].(float64)
	return models.Outcomes{
		"total": rate + cap,
		"steps": []float64{rate, cap},
	}, nil
}

// prodModel shares the rate uncertainty with sumModel but declares its
// own outcome.
type prodModel struct {
	models.Definition
}

func newProdModel(t *testing.T) *prodModel {
	t.Helper()
	rate, err := params.NewReal("rate", 0, 1)
	require.NoError(t, err)
	return &prodModel{Definition: models.Definition{
		ModelName:          "prod",
		ModelUncertainties: []params.Parameter{rate},
		ModelOutcomes:      []models.Outcome{models.ScalarOutcome("product")},
	}}
}

func (m *prodModel) Run(ctx context.Context, variables map[string]any) (models.Outcomes, error) {
	rate, _ := variables["rate"].(float64)
	return models.Outcomes{"product": rate * 2}, nil
}

func TestPerformExperimentsPolicySetOnly(t *testing.T) {
	ms := []models.Model{newSumModel(t)}
	policies := []params.Policy{
		params.NewPolicy("low", map[string]any{"cap": 0.5}),
		params.NewPolicy("high", map[string]any{"cap": 1.5}),
	}

	res, err := PerformExperiments(context.Background(), ms, WithPolicySet(policies))
	require.NoError(t, err)

	// one implicit empty scenario crossed with two policies
	require.Equal(t, 2, res.Experiments.Len())
	names, err := res.Experiments.Column(results.ColumnScenario)
	require.NoError(t, err)
	assert.Equal(t, []any{"None", "None"}, names)
	assert.Equal(t, []float64{0.5, 1.5}, res.Scalars["total"])
}

func TestPerformExperimentsSampledRun(t *testing.T) {
	ms := []models.Model{newSumModel(t)}

	res, err := PerformExperiments(context.Background(), ms,
		WithScenarios(3), WithPolicies(2), WithSeed(42))
	require.NoError(t, err)

	require.Equal(t, 6, res.Experiments.Len())
	require.Len(t, res.Scalars["total"], 6)
	require.Len(t, res.Series["steps"], 6)

	rates, err := res.Experiments.Column("rate")
	require.NoError(t, err)
	caps, err := res.Experiments.Column("cap")
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		rate := rates[i].(float64)
		cap := caps[i].(float64)
		assert.InDelta(t, rate+cap, res.Scalars["total"][i], 1e-12)
		assert.Equal(t, []float64{rate, cap}, res.Series["steps"][i])
	}

	// policies vary fastest: consecutive pairs share a scenario
	for i := 0; i < 6; i += 2 {
		assert.Equal(t, rates[i], rates[i+1])
	}
}

func TestPerformExperimentsOutcomeUnion(t *testing.T) {
	ms := []models.Model{newSumModel(t), newProdModel(t)}

	res, err := PerformExperiments(context.Background(), ms,
		WithScenarios(2), WithSeed(11), WithOutcomeUnion(true))
	require.NoError(t, err)

	// two scenarios crossed with two models
	require.Equal(t, 4, res.Experiments.Len())
	require.Len(t, res.Scalars["total"], 4)
	require.Len(t, res.Scalars["product"], 4)

	names, err := res.Experiments.Column(results.ColumnModel)
	require.NoError(t, err)
	rates, err := res.Experiments.Column("rate")
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		rate := rates[i].(float64)
		switch names[i] {
		case "sum":
			assert.InDelta(t, rate, res.Scalars["total"][i], 1e-12)
			assert.True(t, math.IsNaN(res.Scalars["product"][i]))
		case "prod":
			assert.InDelta(t, rate*2, res.Scalars["product"][i], 1e-12)
			assert.True(t, math.IsNaN(res.Scalars["total"][i]))
		default:
			t.Fatalf("unexpected model %v", names[i])
		}
	}
}

func TestPerformExperimentsDeterministicSeed(t *testing.T) {
	run := func() []float64 {
		res, err := PerformExperiments(context.Background(), []models.Model{newSumModel(t)},
			WithScenarios(4), WithSeed(7))
		require.NoError(t, err)
		return res.Scalars["total"]
	}
	assert.Equal(t, run(), run())
}

func TestPerformExperimentsWithPool(t *testing.T) {
	factory := func() (models.Model, error) { return newSumModel(t), nil }
	pool := evaluator.NewPool([]models.Factory{factory}, 2)

	res, err := PerformExperiments(context.Background(), []models.Model{newSumModel(t)},
		WithScenarios(5), WithPolicies(2), WithSeed(1), WithEvaluator(pool))
	require.NoError(t, err)
	assert.Equal(t, 10, res.Experiments.Len())
}

func TestPerformExperimentsMonteCarlo(t *testing.T) {
	res, err := PerformExperiments(context.Background(), []models.Model{newSumModel(t)},
		WithScenarios(8), WithSeed(3),
		WithUncertaintySampling(sampling.MethodMonteCarlo))
	require.NoError(t, err)
	assert.Equal(t, 8, res.Experiments.Len())
}

func TestPerformExperimentsRefusesEmptyRun(t *testing.T) {
	_, err := PerformExperiments(context.Background(), []models.Model{newSumModel(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no experiments possible")
}

func TestPerformExperimentsRefusesAmbiguousAxes(t *testing.T) {
	policies := []params.Policy{params.NewPolicy("p", map[string]any{"cap": 1.0})}
	_, err := PerformExperiments(context.Background(), []models.Model{newSumModel(t)},
		WithPolicies(2), WithPolicySet(policies))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestPerformExperimentsNoModels(t *testing.T) {
	_, err := PerformExperiments(context.Background(), nil, WithScenarios(2))
	assert.Error(t, err)
}
