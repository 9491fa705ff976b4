package core

import "errors"

var (
	// ErrInvalidParameterSpec is returned when a parameter space is built
	// from a malformed spec (missing choices/bounds, bad step, duplicate name)
	ErrInvalidParameterSpec = errors.New("invalid parameter spec")

	// ErrNoValidCandidates is returned when an entire search produced zero
	// usable candidates
	ErrNoValidCandidates = errors.New("no valid parameter combinations")

	// ErrNoValidStrategies is returned when a multi-strategy selection
	// produced zero usable strategies
	ErrNoValidStrategies = errors.New("no valid strategies found during optimization")

	// ErrUnknownMetric is returned when a metric name does not match any
	// performance summary field
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrUnknownColumn is returned when a dataframe column lookup fails
	ErrUnknownColumn = errors.New("unknown column")

	// ErrEmptyPriceSeries is returned when a backtest is attempted on an
	// empty dataframe
	ErrEmptyPriceSeries = errors.New("empty price series")

	// ErrMissingStopLoss is returned by ATR position sizing when no stop
	// loss is provided
	ErrMissingStopLoss = errors.New("stop loss is required for ATR sizing")

	// ErrStrategyNotFound is returned when a stored strategy cannot be
	// located by name
	ErrStrategyNotFound = errors.New("strategy not found")
)
