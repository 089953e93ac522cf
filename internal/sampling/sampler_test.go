package sampling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

func mustReal(t *testing.T, name string, low, high float64, opts ...params.Option) params.Parameter {
	t.Helper()
	p, err := params.NewReal(name, low, high, opts...)
	require.NoError(t, err)
	return p
}

func collect(t *testing.T, ds *DesignSet) []Design {
	t.Helper()
	var rows []Design
	it := ds.Iter()
	for {
		d, ok := it.Next()
		if !ok {
			break
		}
		rows = append(rows, d)
	}
	return rows
}

func TestLHSYieldsExactlyN(t *testing.T) {
	parameters := []params.Parameter{
		mustReal(t, "a", 0, 1),
		mustReal(t, "b", -5, 5),
		mustReal(t, "c", 100, 200),
	}
	for _, n := range []int{1, 7, 50} {
		ds, err := NewLHS(42).GenerateDesigns(parameters, n)
		require.NoError(t, err)
		assert.Equal(t, n, ds.Total())
		assert.Len(t, collect(t, ds), n)
	}
}

func TestMonteCarloYieldsExactlyN(t *testing.T) {
	parameters := []params.Parameter{
		mustReal(t, "x", 0, 1),
		mustReal(t, "y", 2, 3),
	}
	ds, err := NewMonteCarlo(7).GenerateDesigns(parameters, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, ds.Total())
	assert.Len(t, collect(t, ds), 25)
}

func TestLHSOneSamplePerStratum(t *testing.T) {
	p := mustReal(t, "u", 0, 1)
	const n = 16

	ds, err := NewLHS(1).GenerateDesigns([]params.Parameter{p}, n)
	require.NoError(t, err)

	// uniform[0,1): the sample itself is its own CDF value, so each
	// stratum [i/n, (i+1)/n) must hold exactly one sample
	hits := make([]int, n)
	for _, d := range collect(t, ds) {
		idx := int(math.Floor(d[0] * n))
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, n)
		hits[idx]++
	}
	for i, h := range hits {
		assert.Equalf(t, 1, h, "stratum %d got %d samples", i, h)
	}
}

func TestLHSStrataHoldForShapedDistributions(t *testing.T) {
	tri, err := params.NewTriangular(0, 2, 10)
	require.NoError(t, err)
	p, err := params.NewReal("t", 0, 10, params.WithDist(tri))
	require.NoError(t, err)

	const n = 12
	ds, err := NewLHS(3).GenerateDesigns([]params.Parameter{p}, n)
	require.NoError(t, err)

	// mapping back through the CDF must land one sample per stratum
	q, err := newQuantiler(tri)
	require.NoError(t, err)
	edges := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		if i == n {
			edges[i] = math.Inf(1)
			break
		}
		edges[i] = q.Quantile(float64(i) / n)
	}
	hits := make([]int, n)
	for _, d := range collect(t, ds) {
		for i := 0; i < n; i++ {
			if d[0] >= edges[i] && d[0] < edges[i+1] {
				hits[i]++
				break
			}
		}
	}
	for i, h := range hits {
		assert.Equalf(t, 1, h, "stratum %d got %d samples", i, h)
	}
}

func TestUniformLHSDegradesDistributions(t *testing.T) {
	pert, err := params.NewPERT(0, 9.5, 10, 4)
	require.NoError(t, err)
	p, err := params.NewReal("p", 0, 10, params.WithDist(pert))
	require.NoError(t, err)

	const n = 1000
	ds, err := NewUniformLHS(5).GenerateDesigns([]params.Parameter{p}, n)
	require.NoError(t, err)

	// degraded to uniform(0,10): the mean must sit near 5, far below
	// where the PERT peak at 9.5 would pull it
	sum := 0.0
	for _, d := range collect(t, ds) {
		sum += d[0]
	}
	assert.InDelta(t, 5.0, sum/n, 0.5)
}

func TestDesignsAlignedToSortedParameters(t *testing.T) {
	parameters := []params.Parameter{
		mustReal(t, "zeta", 100, 200),
		mustReal(t, "alpha", 0, 1),
	}
	ds, err := NewLHS(9).GenerateDesigns(parameters, 10)
	require.NoError(t, err)

	names := params.Names(ds.Parameters())
	require.Equal(t, []string{"alpha", "zeta"}, names)
	for _, d := range collect(t, ds) {
		assert.Less(t, d[0], 1.01)    // alpha column
		assert.Greater(t, d[1], 99.0) // zeta column
	}
}

func TestFullFactorialGrid(t *testing.T) {
	a := mustReal(t, "a", 0, 1)
	b := mustReal(t, "b", 0, 1)

	ds, err := NewFullFactorial().GenerateDesigns([]params.Parameter{a, b}, 3)
	require.NoError(t, err)
	assert.Equal(t, 9, ds.Total())
	rows := collect(t, ds)
	require.Len(t, rows, 9)

	// grid levels are the n equally spaced points including both bounds
	assert.Equal(t, Design{0, 0}, rows[0])
	assert.Equal(t, Design{0, 0.5}, rows[1])
	assert.Equal(t, Design{1, 1}, rows[8])
}

func TestFullFactorialCategoricalIgnoresN(t *testing.T) {
	cat, err := params.NewCategorical("color", params.Categories("red", "green", "blue"))
	require.NoError(t, err)

	for _, n := range []int{1, 3, 50} {
		ds, err := NewFullFactorial().GenerateDesigns([]params.Parameter{cat}, n)
		require.NoError(t, err)
		assert.Equalf(t, 3, ds.Total(), "n=%d", n)
	}
}

func TestFullFactorialIntegerDedup(t *testing.T) {
	p, err := params.NewInteger("k", 0, 2)
	require.NoError(t, err)

	// 5 grid points over [0,2] round to {0, 1, 2} after de-duplication
	ds, err := NewFullFactorial().GenerateDesigns([]params.Parameter{p}, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Total())
	rows := collect(t, ds)
	assert.Equal(t, []Design{{0}, {1}, {2}}, rows)
}

func TestFullFactorialResolutionWins(t *testing.T) {
	p := mustReal(t, "r", 0, 10, params.WithResolution(1, 5, 9))
	ds, err := NewFullFactorial().GenerateDesigns([]params.Parameter{p}, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Total())
	assert.Equal(t, []Design{{1}, {5}, {9}}, collect(t, ds))
}

func TestFullFactorialLazyIterationRestarts(t *testing.T) {
	a := mustReal(t, "a", 0, 1)
	b := mustReal(t, "b", 0, 1)
	ds, err := NewFullFactorial().GenerateDesigns([]params.Parameter{a, b}, 4)
	require.NoError(t, err)

	first := collect(t, ds)
	second := collect(t, ds)
	assert.Equal(t, first, second, "iteration must be restartable")
	assert.Len(t, first, 16)
}

func TestPartialFactorialComposition(t *testing.T) {
	lever, err := params.NewReal("lever", 0, 10,
		params.WithFactorial(), params.WithResolution(0, 5, 10))
	require.NoError(t, err)

	uncertainties := make([]params.Parameter, 10)
	for i := range uncertainties {
		uncertainties[i] = mustReal(t, string(rune('a'+i)), 0, 1)
	}

	pff, err := NewPartialFactorial(MethodLHS, 17)
	require.NoError(t, err)

	all := append([]params.Parameter{lever}, uncertainties...)
	ds, err := pff.GenerateDesigns(all, 5)
	require.NoError(t, err)

	// 3-level factorial subset times LHS(n=5) sampled subset
	assert.Equal(t, 15, ds.Total())
	rows := collect(t, ds)
	assert.Len(t, rows, 15)

	// every design covers all 11 parameters
	for _, d := range rows {
		assert.Len(t, d, 11)
	}
}

func TestPartialFactorialTwoLeverGrid(t *testing.T) {
	l1, err := params.NewReal("l1", 0, 1, params.WithFactorial())
	require.NoError(t, err)
	l2, err := params.NewReal("l2", 0, 1, params.WithFactorial())
	require.NoError(t, err)
	u := mustReal(t, "u", 0, 1)

	pff, err := NewPartialFactorial(MethodMonteCarlo, 23)
	require.NoError(t, err)

	ds, err := pff.GenerateDesigns([]params.Parameter{l1, l2, u}, 3)
	require.NoError(t, err)
	// 3x3 factorial grid times 3 sampled designs
	assert.Equal(t, 27, ds.Total())
	assert.Len(t, collect(t, ds), 27)
}

func TestPartialFactorialAllFactorial(t *testing.T) {
	l1, err := params.NewReal("l1", 0, 1, params.WithFactorial())
	require.NoError(t, err)

	pff, err := NewPartialFactorial(MethodLHS, 1)
	require.NoError(t, err)
	ds, err := pff.GenerateDesigns([]params.Parameter{l1}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Total())
}

func TestPartialFactorialRejectsInvalidMethod(t *testing.T) {
	_, err := NewPartialFactorial(MethodFF, 0)
	require.Error(t, err)
	_, err = NewPartialFactorial(Method("bogus"), 0)
	require.Error(t, err)
}

func TestConfigurationErrorsBeforeSampling(t *testing.T) {
	bad := params.Distribution{Family: params.Family("cauchy"), Low: 0, Width: 1}
	_, err := newQuantiler(bad)
	require.ErrorIs(t, err, ErrUnknownDistribution)

	degenerate := params.Distribution{Family: params.Uniform, Low: 1, Width: 0}
	_, err = newQuantiler(degenerate)
	require.Error(t, err, "zero-width support must fail")

	p, err := params.NewReal("x", 0, 1)
	require.NoError(t, err)

	_, err = NewLHS(0).GenerateDesigns([]params.Parameter{p}, 0)
	require.Error(t, err, "non-positive size must fail")

	dup := []params.Parameter{p, p}
	_, err = NewMonteCarlo(0).GenerateDesigns(dup, 5)
	require.Error(t, err, "duplicate names must fail")
}

func TestNewSamplerSelection(t *testing.T) {
	for _, m := range []Method{MethodLHS, MethodUniformLHS, MethodMonteCarlo, MethodFF, MethodPFF} {
		s, err := NewSampler(m, 1)
		require.NoError(t, err)
		require.NotNil(t, s)
	}
	_, err := NewSampler(Method("sobol"), 1)
	require.Error(t, err)
}
