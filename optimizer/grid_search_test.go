package optimizer

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JuanMi-CG/quant-trading/core"
)

func windowSpace(t *testing.T) *ParameterSpace {
	t.Helper()
	space, err := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 1, 4, 1),
	})
	require.NoError(t, err)
	return space
}

func TestGridSearch_RanksAllCandidates(t *testing.T) {
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		// peak at window=3
		w := c["window"].(int)
		return -math.Abs(float64(w) - 3), nil
	}}

	search, err := NewGridSearch(windowSpace(t), NewConfig())
	require.NoError(t, err)

	rows, err := search.Run(evaluator)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, 4, evaluator.calls)
	require.Equal(t, 3, rows[0].Candidate["window"])
	require.Equal(t, 0.0, rows[0].Score)

	// scores descend
	for i := 1; i < len(rows); i++ {
		require.GreaterOrEqual(t, rows[i-1].Score, rows[i].Score)
	}
}

func TestGridSearch_TiesKeepEnumerationOrder(t *testing.T) {
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		return 1.0, nil
	}}

	search, err := NewGridSearch(windowSpace(t), NewConfig())
	require.NoError(t, err)

	rows, err := search.Run(evaluator)
	require.NoError(t, err)
	for i, row := range rows {
		require.Equal(t, i+1, row.Candidate["window"])
	}
}

func TestGridSearch_DropsFailedCandidates(t *testing.T) {
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		if c["window"].(int)%2 == 0 {
			return 0, errors.New("boom")
		}
		return float64(c["window"].(int)), nil
	}}

	search, err := NewGridSearch(windowSpace(t), NewConfig())
	require.NoError(t, err)

	rows, err := search.Run(evaluator)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, 1, row.Candidate["window"].(int)%2)
	}
}

func TestGridSearch_AllFailedIsFatal(t *testing.T) {
	evaluator := &stubEvaluator{score: func(core.Candidate) (float64, error) {
		return 0, errors.New("boom")
	}}

	search, err := NewGridSearch(windowSpace(t), NewConfig())
	require.NoError(t, err)

	_, err = search.Run(evaluator)
	require.ErrorIs(t, err, core.ErrNoValidCandidates)
}

func TestGridSearch_UnknownMetricIsFatal(t *testing.T) {
	evaluator := &stubEvaluator{score: func(core.Candidate) (float64, error) {
		return 1, nil
	}}

	search, err := NewGridSearch(windowSpace(t), NewConfig().WithMetric("sortino"))
	require.NoError(t, err)

	_, err = search.Run(evaluator)
	require.ErrorIs(t, err, core.ErrUnknownMetric)
}

func TestGridSearch_NaNScoresSortLast(t *testing.T) {
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		if c["window"].(int) == 1 {
			return math.NaN(), nil
		}
		return float64(c["window"].(int)), nil
	}}

	search, err := NewGridSearch(windowSpace(t), NewConfig())
	require.NoError(t, err)

	rows, err := search.Run(evaluator)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.True(t, math.IsNaN(rows[len(rows)-1].Score))
}

func TestGridSearch_NilSpace(t *testing.T) {
	_, err := NewGridSearch(nil, NewConfig())
	require.Error(t, err)
}

func TestSortRowsByScore(t *testing.T) {
	rows := []Row{
		{Score: math.NaN()},
		{Score: 1},
		{Score: 3},
		{Score: 2},
	}
	sortRowsByScore(rows)

	require.Equal(t, 3.0, rows[0].Score)
	require.Equal(t, 2.0, rows[1].Score)
	require.Equal(t, 1.0, rows[2].Score)
	require.True(t, math.IsNaN(rows[3].Score))
}

func ExampleGridSearch() {
	space, _ := NewParameterSpace([]core.ParameterSpec{
		core.Integer("window", 1, 3, 1),
	})
	evaluator := &stubEvaluator{score: func(c core.Candidate) (float64, error) {
		return float64(c["window"].(int)), nil
	}}

	search, _ := NewGridSearch(space, NewConfig())
	rows, _ := search.Run(evaluator)
	fmt.Println(rows[0].Candidate["window"])
	// Output: 3
}
