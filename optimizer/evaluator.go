package optimizer

import (
	"fmt"

	"github.com/JuanMi-CG/quant-trading/backtest"
	"github.com/JuanMi-CG/quant-trading/core"
)

// BacktestEvaluator scores candidates by instantiating the strategy,
// simulating it over the price data and summarizing performance. It is
// the objective function shared by all search strategies.
type BacktestEvaluator struct {
	factory core.StrategyFactory
	df      *core.Dataframe
	cfg     backtest.Config
}

// NewBacktestEvaluator creates an evaluator for one strategy class over
// one dataframe
func NewBacktestEvaluator(factory core.StrategyFactory, df *core.Dataframe, cfg backtest.Config) *BacktestEvaluator {
	return &BacktestEvaluator{
		factory: factory,
		df:      df,
		cfg:     cfg,
	}
}

// Evaluate runs one candidate end to end. It never propagates a failure
// out of the search loop: construction errors, simulation errors and
// panics inside strategy code all come back as a failed outcome.
func (e *BacktestEvaluator) Evaluate(candidate core.Candidate) (outcome core.EvaluationOutcome) {
	outcome.Candidate = candidate

	defer func() {
		if r := recover(); r != nil {
			outcome.Reason = fmt.Errorf("evaluation panicked: %v", r)
		}
	}()

	strategy, err := e.factory(candidate)
	if err != nil {
		outcome.Reason = fmt.Errorf("constructing strategy: %w", err)
		return outcome
	}

	signals, err := strategy.GenerateSignals(e.df)
	if err != nil {
		outcome.Reason = fmt.Errorf("generating signals: %w", err)
		return outcome
	}

	cfg := e.cfg
	if cfg.PriceColumn == "" {
		cfg.PriceColumn = strategy.PriceColumn()
	}
	result, err := backtest.Simulate(e.df, signals, cfg)
	if err != nil {
		outcome.Reason = fmt.Errorf("simulating: %w", err)
		return outcome
	}

	outcome.Summary = backtest.Evaluate(result.Equity, result.Returns)
	outcome.Equity = result.Equity
	outcome.Returns = result.Returns
	return outcome
}
