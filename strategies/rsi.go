package strategies

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"github.com/JuanMi-CG/quant-trading/core"
)

// RSIReversion fades extremes of the relative strength index: long
// below the lower threshold, short above the upper one, flat between
type RSIReversion struct {
	window int
	lower  float64
	upper  float64
}

// NewRSIReversion creates an RSI mean reversion strategy
func NewRSIReversion(window int, lower, upper float64) (*RSIReversion, error) {
	if window <= 1 {
		return nil, fmt.Errorf("rsi window must be greater than 1, got %d", window)
	}
	if lower >= upper {
		return nil, fmt.Errorf("lower threshold %v must be below upper threshold %v", lower, upper)
	}
	return &RSIReversion{window: window, lower: lower, upper: upper}, nil
}

// RSIReversionSpecs declares the tunable parameter space
func RSIReversionSpecs() []core.ParameterSpec {
	return []core.ParameterSpec{
		core.Integer("window", 7, 28, 7),
		core.Real("lower", 20, 40, 5),
		core.Real("upper", 60, 80, 5),
	}
}

// RSIReversionFactory builds instances from search candidates
func RSIReversionFactory(candidate core.Candidate) (core.Strategy, error) {
	window, err := intParam(candidate, "window")
	if err != nil {
		return nil, err
	}
	lower, err := floatParam(candidate, "lower")
	if err != nil {
		return nil, err
	}
	upper, err := floatParam(candidate, "upper")
	if err != nil {
		return nil, err
	}
	return NewRSIReversion(window, lower, upper)
}

func (s *RSIReversion) Name() string {
	return "rsi_reversion"
}

func (s *RSIReversion) PriceColumn() string {
	return "close"
}

func (s *RSIReversion) GenerateSignals(df *core.Dataframe) (core.Series[float64], error) {
	n := df.Len()
	if n <= s.window {
		return nil, fmt.Errorf("need more than %d candles, have %d", s.window, n)
	}

	rsi := talib.Rsi(df.Close.Values(), s.window)

	signals := make(core.Series[float64], n)
	for t := s.window; t < n; t++ {
		switch {
		case rsi[t] < s.lower:
			signals[t] = 1
		case rsi[t] > s.upper:
			signals[t] = -1
		}
	}
	return signals, nil
}
