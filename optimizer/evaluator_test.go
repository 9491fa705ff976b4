package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanMi-CG/quant-trading/backtest"
	"github.com/JuanMi-CG/quant-trading/core"
)

type panicStrategy struct{}

func (panicStrategy) Name() string        { return "panic" }
func (panicStrategy) PriceColumn() string { return "close" }
func (panicStrategy) GenerateSignals(*core.Dataframe) (core.Series[float64], error) {
	panic("bad indexing")
}

type openPriceStrategy struct{}

func (openPriceStrategy) Name() string        { return "open_price" }
func (openPriceStrategy) PriceColumn() string { return "open" }
func (openPriceStrategy) GenerateSignals(df *core.Dataframe) (core.Series[float64], error) {
	signals := make(core.Series[float64], df.Len())
	for i := range signals {
		signals[i] = 1
	}
	return signals, nil
}

func TestBacktestEvaluator_SuccessfulRun(t *testing.T) {
	df := risingDataframe(t)
	evaluator := NewBacktestEvaluator(directionalFactory, df, backtest.Config{InitialCapital: 1000})

	outcome := evaluator.Evaluate(core.Candidate{"direction": 1.0})
	require.False(t, outcome.Failed())
	assert.Len(t, outcome.Equity, df.Len())
	assert.Greater(t, outcome.Summary.TotalReturn, 0.0)
}

func TestBacktestEvaluator_FactoryErrorIsFailure(t *testing.T) {
	evaluator := NewBacktestEvaluator(func(core.Candidate) (core.Strategy, error) {
		return nil, errors.New("bad candidate")
	}, risingDataframe(t), backtest.Config{})

	outcome := evaluator.Evaluate(core.Candidate{})
	assert.True(t, outcome.Failed())
	assert.ErrorContains(t, outcome.Reason, "constructing strategy")
}

func TestBacktestEvaluator_RecoversStrategyPanic(t *testing.T) {
	evaluator := NewBacktestEvaluator(func(core.Candidate) (core.Strategy, error) {
		return panicStrategy{}, nil
	}, risingDataframe(t), backtest.Config{})

	outcome := evaluator.Evaluate(core.Candidate{})
	require.True(t, outcome.Failed())
	assert.ErrorContains(t, outcome.Reason, "panicked")
}

func TestBacktestEvaluator_UsesStrategyPriceColumn(t *testing.T) {
	df := risingDataframe(t)
	evaluator := NewBacktestEvaluator(func(core.Candidate) (core.Strategy, error) {
		return openPriceStrategy{}, nil
	}, df, backtest.Config{})

	outcome := evaluator.Evaluate(core.Candidate{})
	require.False(t, outcome.Failed())
	assert.Len(t, outcome.Equity, df.Len())
}

func TestBacktestEvaluator_SimulationErrorIsFailure(t *testing.T) {
	empty := core.NewDataframe("BTCUSDT")
	evaluator := NewBacktestEvaluator(func(core.Candidate) (core.Strategy, error) {
		return openPriceStrategy{}, nil
	}, empty, backtest.Config{})

	outcome := evaluator.Evaluate(core.Candidate{})
	assert.True(t, outcome.Failed())
}
