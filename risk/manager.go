// Package risk implements position sizing. Sizing is a strategy-author
// concern: the backtest simulator never consults it, so sized strategies
// must fold the computed size into their signal series (see ScaleSignals).
package risk

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/JuanMi-CG/quant-trading/core"
)

// Method selects the position sizing scheme
type Method string

const (
	// Fixed always returns the configured unit size
	Fixed Method = "fixed"
	// Pct risks a fixed percentage of capital per unit of price
	Pct Method = "pct"
	// ATR risks a fixed percentage of capital per unit of distance to
	// the stop loss; requires a stop loss
	ATR Method = "atr"
)

// Manager calculates position sizes
type Manager struct {
	method    Method
	fixedSize float64
	riskPct   float64
	atrWindow int
}

// Option configures a Manager
type Option func(*Manager)

// WithFixedSize sets the unit size used by the fixed method
func WithFixedSize(size float64) Option {
	return func(m *Manager) { m.fixedSize = size }
}

// WithRiskPct sets the fraction of capital at risk per position
func WithRiskPct(pct float64) Option {
	return func(m *Manager) { m.riskPct = pct }
}

// WithATRWindow sets the lookback window of the ATR calculation
func WithATRWindow(window int) Option {
	return func(m *Manager) { m.atrWindow = window }
}

// NewManager creates a sizing manager for the given method
func NewManager(method Method, opts ...Option) (*Manager, error) {
	switch method {
	case Fixed, Pct, ATR:
	default:
		return nil, fmt.Errorf("unknown sizing method %q", method)
	}

	m := &Manager{
		method:    method,
		fixedSize: 1.0,
		riskPct:   0.01,
		atrWindow: 14,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// CalculateSize returns the position size for the current capital and
// price. The stop loss is only consulted by the ATR method; pass NaN
// when none applies. ATR sizing without a stop loss is a fatal error.
func (m *Manager) CalculateSize(capital, price float64, df *core.Dataframe, stopLoss float64) (float64, error) {
	switch m.method {
	case Fixed:
		return m.fixedSize, nil
	case Pct:
		return capital * m.riskPct / price, nil
	case ATR:
		if math.IsNaN(stopLoss) {
			return 0, core.ErrMissingStopLoss
		}
		if df.Len() <= m.atrWindow {
			return 0, fmt.Errorf("need more than %d candles for ATR sizing, have %d", m.atrWindow, df.Len())
		}
		return capital * m.riskPct / math.Abs(price-stopLoss), nil
	}
	return 0, fmt.Errorf("unknown sizing method %q", m.method)
}

// TrueRange returns the last average true range of the dataframe using
// the manager's window
func (m *Manager) TrueRange(df *core.Dataframe) float64 {
	atr := talib.Atr(df.High.Values(), df.Low.Values(), df.Close.Values(), m.atrWindow)
	if len(atr) == 0 {
		return math.NaN()
	}
	return atr[len(atr)-1]
}

// ScaleSignals folds a position size into a signal series. This is how
// sized strategies hand risk-adjusted exposure to the simulator without
// the simulator knowing about sizing.
func ScaleSignals(signals core.Series[float64], size float64) core.Series[float64] {
	scaled := make(core.Series[float64], signals.Length())
	for i, s := range signals {
		scaled[i] = s * size
	}
	return scaled
}
