package core

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Feeder supplies historical candle data for a symbol
type Feeder interface {
	CandlesByPeriod(ctx context.Context, pair, timeframe string, start, end time.Time) ([]Candle, error)
	CandlesByLimit(ctx context.Context, pair, timeframe string, limit int) ([]Candle, error)
}

// Strategy generates a trading signal series from historical price data.
// Signal values follow the convention 1 = long, -1 = short, 0 = flat;
// fractional values are allowed when position sizing is folded into the
// signal by the strategy author.
type Strategy interface {
	// Name identifies the strategy class, e.g. "sma_cross"
	Name() string
	// PriceColumn is the dataframe column backtests should price against
	PriceColumn() string
	// GenerateSignals computes one signal per candle of the dataframe
	GenerateSignals(df *Dataframe) (Series[float64], error)
}

// StrategyFactory builds a strategy instance from a concrete candidate.
// A factory must reject parameter combinations the strategy cannot use
// (e.g. fast window >= slow window) by returning an error.
type StrategyFactory func(candidate Candidate) (Strategy, error)

// Notifier receives human-readable progress and result messages
type Notifier interface {
	Notify(message string)
	OnError(err error)
}

// Candle represents one OHLCV observation
type Candle struct {
	Pair   string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ToSlice renders a candle as CSV columns in time, open, close, low,
// high, volume order
func (c Candle) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", c.Time.Unix()),
		strconv.FormatFloat(c.Open, 'f', precision, 64),
		strconv.FormatFloat(c.Close, 'f', precision, 64),
		strconv.FormatFloat(c.Low, 'f', precision, 64),
		strconv.FormatFloat(c.High, 'f', precision, 64),
		strconv.FormatFloat(c.Volume, 'f', precision, 64),
	}
}
