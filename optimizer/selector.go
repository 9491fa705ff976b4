package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/StudioSol/set"

	"github.com/JuanMi-CG/quant-trading/core"
)

// StrategyClass describes one candidate strategy family entered into a
// selection: a factory to instantiate it and the parameter specs to
// search over
type StrategyClass struct {
	Name    string
	Factory core.StrategyFactory
	Specs   []core.ParameterSpec
}

// StrategyRow is the definitive result of one strategy class
type StrategyRow struct {
	Strategy  string
	Candidate core.Candidate
	Summary   core.Summary
	Score     float64
}

// SelectionResult ranks the surviving strategy classes and retains the
// artifacts downstream reporting collaborators need
type SelectionResult struct {
	// Rows are sorted by the target metric, descending; input order
	// breaks ties
	Rows []StrategyRow
	// Equity maps strategy name to the equity curve of its best candidate
	Equity map[string][]float64
	// Strategies maps strategy name to its instantiated best strategy
	Strategies map[string]core.Strategy
}

// Best returns the top-ranked row
func (r *SelectionResult) Best() StrategyRow {
	return r.Rows[0]
}

// StrategySelector optimizes several strategy classes with one search
// method and merges the winners into a single ranked table
type StrategySelector struct {
	method core.SearchMethod
	config *Config
}

// NewStrategySelector creates a selector using the given search method
func NewStrategySelector(method core.SearchMethod, config *Config) (*StrategySelector, error) {
	switch method {
	case core.MethodGrid, core.MethodSequential, core.MethodContinuous:
	default:
		return nil, fmt.Errorf("unknown optimization method %q", method)
	}
	if config == nil {
		config = NewConfig()
	}
	return &StrategySelector{method: method, config: config}, nil
}

// FindBestStrategy runs one search per strategy class over the given
// dataframe, re-backtests each winner once for its definitive result
// and merges everything into one ranked table. Classes whose search or
// final backtest fails are logged and skipped; a selection with zero
// surviving classes is fatal.
func (s *StrategySelector) FindBestStrategy(df *core.Dataframe, classes []StrategyClass) (*SelectionResult, error) {
	result := &SelectionResult{
		Equity:     make(map[string][]float64),
		Strategies: make(map[string]core.Strategy),
	}
	names := set.NewLinkedHashSetString()

	for _, class := range classes {
		if names.InArray(class.Name) {
			logWarnf(s.config.Logger, "duplicate strategy name %q, skipping", class.Name)
			continue
		}

		row, equity, strategy, err := s.optimizeClass(df, class)
		if err != nil {
			logWarnf(s.config.Logger, "skipping %s after optimization: %v", class.Name, err)
			continue
		}

		names.Add(class.Name)
		result.Rows = append(result.Rows, row)
		result.Equity[class.Name] = equity
		result.Strategies[class.Name] = strategy
	}

	if len(result.Rows) == 0 {
		return nil, core.ErrNoValidStrategies
	}

	// stable: classes tied on the metric keep their input order
	sort.SliceStable(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i].Score, result.Rows[j].Score
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
	return result, nil
}

// optimizeClass finds the best candidate of one class and produces its
// definitive row from a fresh backtest
func (s *StrategySelector) optimizeClass(df *core.Dataframe, class StrategyClass) (StrategyRow, []float64, core.Strategy, error) {
	space, err := NewParameterSpace(class.Specs)
	if err != nil {
		return StrategyRow{}, nil, nil, err
	}
	evaluator := NewBacktestEvaluator(class.Factory, df, s.config.Backtest)

	var best core.Candidate
	switch s.method {
	case core.MethodGrid:
		search, err := NewGridSearch(space, s.config)
		if err != nil {
			return StrategyRow{}, nil, nil, err
		}
		rows, err := search.Run(evaluator)
		if err != nil {
			return StrategyRow{}, nil, nil, err
		}
		best = rows[0].Candidate
	case core.MethodSequential:
		search, err := NewSequentialSearch(space, s.config)
		if err != nil {
			return StrategyRow{}, nil, nil, err
		}
		found, err := search.Run(evaluator)
		if err != nil {
			return StrategyRow{}, nil, nil, err
		}
		best = found.Best
	case core.MethodContinuous:
		search, err := NewContinuousSearch(space, s.config)
		if err != nil {
			return StrategyRow{}, nil, nil, err
		}
		found, err := search.Run(evaluator)
		if err != nil {
			return StrategyRow{}, nil, nil, err
		}
		best = found.Best
	}

	// definitive backtest of the winning candidate
	outcome := evaluator.Evaluate(best)
	if outcome.Failed() {
		return StrategyRow{}, nil, nil, fmt.Errorf("final backtest failed: %w", outcome.Reason)
	}
	score, err := outcome.Summary.Metric(s.config.Metric)
	if err != nil {
		return StrategyRow{}, nil, nil, err
	}

	strategy, err := class.Factory(best)
	if err != nil {
		return StrategyRow{}, nil, nil, fmt.Errorf("instantiating best candidate: %w", err)
	}

	row := StrategyRow{
		Strategy:  class.Name,
		Candidate: best,
		Summary:   outcome.Summary,
		Score:     score,
	}
	return row, outcome.Equity, strategy, nil
}
