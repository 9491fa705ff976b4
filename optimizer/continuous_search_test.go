package optimizer

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JuanMi-CG/quant-trading/core"
)

// fixedMinimizer returns a canned vector and records the bounds it saw
type fixedMinimizer struct {
	x      []float64
	value  float64
	bounds [][2]float64
	opts   core.MinimizerOptions
}

func (m *fixedMinimizer) Minimize(objective func(x []float64) float64, bounds [][2]float64, opts core.MinimizerOptions) ([]float64, float64, error) {
	m.bounds = bounds
	m.opts = opts
	if m.value == 0 {
		m.value = objective(m.x)
	}
	return m.x, m.value, nil
}

func TestContinuousSearch_ObjectivePenalizesBadInput(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 1, 4, 1),
	})
	require.NoError(t, err)

	failing := &stubEvaluator{score: func(core.Candidate) (float64, error) {
		return 0, errors.New("boom")
	}}
	search, err := NewContinuousSearch(space, NewConfig())
	require.NoError(t, err)

	objective := search.objective(failing)
	require.Equal(t, FailurePenalty, objective([]float64{math.NaN()}))
	require.Equal(t, FailurePenalty, objective([]float64{math.Inf(1)}))
	require.Equal(t, FailurePenalty, objective([]float64{2}))

	nanMetric := &stubEvaluator{score: func(core.Candidate) (float64, error) {
		return math.NaN(), nil
	}}
	objective = search.objective(nanMetric)
	require.Equal(t, FailurePenalty, objective([]float64{2}))
}

func TestContinuousSearch_ObjectiveNegatesMetric(t *testing.T) {
	space := windowSpace(t)
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		return float64(c["window"].(int)), nil
	}}

	search, err := NewContinuousSearch(space, NewConfig())
	require.NoError(t, err)

	objective := search.objective(evaluator)
	require.Equal(t, -3.0, objective([]float64{3}))
	require.Equal(t, -3.0, objective([]float64{2.7})) // rounds to the grid
}

func TestContinuousSearch_RunDecodesMinimizerResult(t *testing.T) {
	space := windowSpace(t)
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		return float64(c["window"].(int)), nil
	}}
	minimizer := &fixedMinimizer{x: []float64{3.2}}

	config := NewConfig().WithMinimizer(minimizer).WithSeed(9)
	search, err := NewContinuousSearch(space, config)
	require.NoError(t, err)

	result, err := search.Run(evaluator)
	require.NoError(t, err)

	require.Equal(t, [][2]float64{{1, 4}}, minimizer.bounds)
	require.Equal(t, int64(9), minimizer.opts.Seed)
	require.Equal(t, 3, result.Best["window"])
	// the final backtest reports the non-negated metric
	require.Equal(t, 3.0, result.Score)
	require.NotEmpty(t, result.Equity)
}

func TestContinuousSearch_AllFailuresIsFatal(t *testing.T) {
	evaluator := &stubEvaluator{score: func(core.Candidate) (float64, error) {
		return 0, errors.New("boom")
	}}

	search, err := NewContinuousSearch(windowSpace(t), NewConfig().
		WithMaxIterations(2).
		WithPopulationSize(2))
	require.NoError(t, err)

	_, err = search.Run(evaluator)
	require.ErrorIs(t, err, core.ErrNoValidCandidates)
}

func TestContinuousSearch_ZeroDimensionalSpaceSkipsMinimizer(t *testing.T) {
	space, err := NewParameterSpace(nil)
	require.NoError(t, err)

	evaluator := &stubEvaluator{score: func(core.Candidate) (float64, error) {
		return 1.5, nil
	}}
	search, err := NewContinuousSearch(space, NewConfig())
	require.NoError(t, err)

	result, err := search.Run(evaluator)
	require.NoError(t, err)
	require.Equal(t, core.Candidate{}, result.Best)
	require.Equal(t, 1.5, result.Score)
	require.Equal(t, 1, evaluator.calls)
}

func TestContinuousSearch_EndToEndWithDefaultMinimizer(t *testing.T) {
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 1, 10, 1),
	})
	require.NoError(t, err)

	// concave in the window, peak at 7
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		w := float64(c["window"].(int))
		return -(w - 7) * (w - 7), nil
	}}

	search, err := NewContinuousSearch(space, NewConfig().
		WithSeed(1).
		WithMaxIterations(40).
		WithPopulationSize(10))
	require.NoError(t, err)

	result, err := search.Run(evaluator)
	require.NoError(t, err)
	require.Equal(t, 7, result.Best["window"])
	require.Equal(t, 0.0, result.Score)
}
