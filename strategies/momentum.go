package strategies

import (
	"fmt"

	"github.com/JuanMi-CG/quant-trading/core"
)

// Momentum trade direction modes
const (
	ModeLongOnly  = "long_only"
	ModeLongShort = "long_short"
)

// Momentum follows the sign of the trailing return over a lookback
// window
type Momentum struct {
	lookback int
	mode     string
}

// NewMomentum creates a momentum strategy
func NewMomentum(lookback int, mode string) (*Momentum, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("lookback must be positive, got %d", lookback)
	}
	if mode != ModeLongOnly && mode != ModeLongShort {
		return nil, fmt.Errorf("unknown momentum mode %q", mode)
	}
	return &Momentum{lookback: lookback, mode: mode}, nil
}

// MomentumSpecs declares the tunable parameter space
func MomentumSpecs() []core.ParameterSpec {
	return []core.ParameterSpec{
		core.Integer("lookback", 5, 60, 5),
		core.Categorical("mode", ModeLongOnly, ModeLongShort),
	}
}

// MomentumFactory builds instances from search candidates
func MomentumFactory(candidate core.Candidate) (core.Strategy, error) {
	lookback, err := intParam(candidate, "lookback")
	if err != nil {
		return nil, err
	}
	mode, err := stringParam(candidate, "mode")
	if err != nil {
		return nil, err
	}
	return NewMomentum(lookback, mode)
}

func (s *Momentum) Name() string {
	return "momentum"
}

func (s *Momentum) PriceColumn() string {
	return "close"
}

func (s *Momentum) GenerateSignals(df *core.Dataframe) (core.Series[float64], error) {
	n := df.Len()
	if n <= s.lookback {
		return nil, fmt.Errorf("need more than %d candles, have %d", s.lookback, n)
	}

	signals := make(core.Series[float64], n)
	for t := s.lookback; t < n; t++ {
		trailing := df.Close[t]/df.Close[t-s.lookback] - 1
		switch {
		case trailing > 0:
			signals[t] = 1
		case trailing < 0 && s.mode == ModeLongShort:
			signals[t] = -1
		}
	}
	return signals, nil
}
