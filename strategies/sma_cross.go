package strategies

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"github.com/JuanMi-CG/quant-trading/core"
)

// CrossSMA trades moving average crossovers: long when the fast SMA
// crosses above the slow SMA, short when it crosses under, holding the
// position between crossings
type CrossSMA struct {
	fast int
	slow int
}

// NewCrossSMA creates a crossover strategy with explicit windows
func NewCrossSMA(fast, slow int) (*CrossSMA, error) {
	if fast <= 0 || slow <= 0 {
		return nil, fmt.Errorf("sma windows must be positive, got fast=%d slow=%d", fast, slow)
	}
	if fast >= slow {
		return nil, fmt.Errorf("fast window %d must be shorter than slow window %d", fast, slow)
	}
	return &CrossSMA{fast: fast, slow: slow}, nil
}

// CrossSMASpecs declares the tunable parameter space
func CrossSMASpecs() []core.ParameterSpec {
	return []core.ParameterSpec{
		core.Integer("fast", 5, 30, 5),
		core.Integer("slow", 20, 100, 20),
	}
}

// CrossSMAFactory builds instances from search candidates
func CrossSMAFactory(candidate core.Candidate) (core.Strategy, error) {
	fast, err := intParam(candidate, "fast")
	if err != nil {
		return nil, err
	}
	slow, err := intParam(candidate, "slow")
	if err != nil {
		return nil, err
	}
	return NewCrossSMA(fast, slow)
}

func (s *CrossSMA) Name() string {
	return "sma_cross"
}

func (s *CrossSMA) PriceColumn() string {
	return "close"
}

// GenerateSignals computes one signal per candle. Positions are held
// until the opposite crossing occurs; the warmup period of the slow
// average stays flat.
func (s *CrossSMA) GenerateSignals(df *core.Dataframe) (core.Series[float64], error) {
	n := df.Len()
	if n <= s.slow {
		return nil, fmt.Errorf("need more than %d candles, have %d", s.slow, n)
	}

	fast := core.Series[float64](talib.Sma(df.Close.Values(), s.fast))
	slow := core.Series[float64](talib.Sma(df.Close.Values(), s.slow))

	signals := make(core.Series[float64], n)
	for t := s.slow; t < n; t++ {
		switch {
		case fast[:t+1].Crossover(slow[:t+1]):
			signals[t] = 1
		case fast[:t+1].Crossunder(slow[:t+1]):
			signals[t] = -1
		default:
			signals[t] = signals[t-1]
		}
	}
	return signals, nil
}
