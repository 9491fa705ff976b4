// Package backtest implements the pure backtesting simulation and the
// performance metrics computed from its output.
package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/JuanMi-CG/quant-trading/core"
)

// DefaultInitialCapital is used when no capital is configured
const DefaultInitialCapital = 10000.0

// Config controls a single simulation run
type Config struct {
	// PriceColumn selects the dataframe column used for pricing,
	// "close" when empty
	PriceColumn string
	// InitialCapital is the starting equity, must be positive
	InitialCapital float64
	// TransactionCost is the proportional cost charged on each unit of
	// signal change, must be non-negative
	TransactionCost float64
}

// normalized fills defaults and validates the configuration
func (c Config) normalized() (Config, error) {
	if c.PriceColumn == "" {
		c.PriceColumn = "close"
	}
	if c.InitialCapital == 0 {
		c.InitialCapital = DefaultInitialCapital
	}
	if c.InitialCapital <= 0 {
		return c, fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.TransactionCost < 0 {
		return c, fmt.Errorf("transaction cost must be non-negative, got %v", c.TransactionCost)
	}
	return c, nil
}

// Result holds the three aligned output series of a simulation
type Result struct {
	PriceColumn string
	Time        []time.Time

	Positions core.Series[float64]
	Returns   core.Series[float64]
	Equity    core.Series[float64]
}

// Simulate runs a deterministic, side-effect-free backtest of a signal
// series against price data:
//
//	position[t] = signal[t-1]            (position lags signal, position[0] = 0)
//	return[t]   = position[t] * priceReturn[t] - cost * |signal[t] - signal[t-1]|
//	equity[t]   = capital * prod(1 + return[k], k <= t)
//
// Missing or NaN signals are treated as flat. Risk-based position sizing
// is never applied here; strategies fold sizing into the signal series.
func Simulate(df *core.Dataframe, signals core.Series[float64], cfg Config) (*Result, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}

	price, err := df.Column(cfg.PriceColumn)
	if err != nil {
		return nil, err
	}
	n := price.Length()
	if n == 0 {
		return nil, core.ErrEmptyPriceSeries
	}

	sig := make([]float64, n)
	for t := 0; t < n && t < signals.Length(); t++ {
		if !math.IsNaN(signals[t]) {
			sig[t] = signals[t]
		}
	}

	positions := make(core.Series[float64], n)
	returns := make(core.Series[float64], n)
	equity := make(core.Series[float64], n)

	compounded := 1.0
	for t := 0; t < n; t++ {
		var priceReturn, signalChange float64
		if t > 0 {
			positions[t] = sig[t-1]
			priceReturn = price[t]/price[t-1] - 1
			signalChange = math.Abs(sig[t] - sig[t-1])
		}
		returns[t] = positions[t]*priceReturn - cfg.TransactionCost*signalChange
		compounded *= 1 + returns[t]
		equity[t] = cfg.InitialCapital * compounded
	}

	return &Result{
		PriceColumn: cfg.PriceColumn,
		Time:        df.Time,
		Positions:   positions,
		Returns:     returns,
		Equity:      equity,
	}, nil
}
