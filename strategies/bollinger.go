package strategies

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"github.com/JuanMi-CG/quant-trading/core"
)

// BollingerReversion buys closes below the lower Bollinger band and
// sells closes above the upper band, staying flat inside the bands
type BollingerReversion struct {
	window int
	width  float64
}

// NewBollingerReversion creates a Bollinger band reversion strategy
func NewBollingerReversion(window int, width float64) (*BollingerReversion, error) {
	if window <= 1 {
		return nil, fmt.Errorf("bollinger window must be greater than 1, got %d", window)
	}
	if width <= 0 {
		return nil, fmt.Errorf("band width must be positive, got %v", width)
	}
	return &BollingerReversion{window: window, width: width}, nil
}

// BollingerReversionSpecs declares the tunable parameter space
func BollingerReversionSpecs() []core.ParameterSpec {
	return []core.ParameterSpec{
		core.Integer("window", 10, 40, 10),
		core.Real("width", 1.0, 3.0, 5),
	}
}

// BollingerReversionFactory builds instances from search candidates
func BollingerReversionFactory(candidate core.Candidate) (core.Strategy, error) {
	window, err := intParam(candidate, "window")
	if err != nil {
		return nil, err
	}
	width, err := floatParam(candidate, "width")
	if err != nil {
		return nil, err
	}
	return NewBollingerReversion(window, width)
}

func (s *BollingerReversion) Name() string {
	return "bollinger_reversion"
}

func (s *BollingerReversion) PriceColumn() string {
	return "close"
}

func (s *BollingerReversion) GenerateSignals(df *core.Dataframe) (core.Series[float64], error) {
	n := df.Len()
	if n <= s.window {
		return nil, fmt.Errorf("need more than %d candles, have %d", s.window, n)
	}

	upper, _, lower := talib.BBands(df.Close.Values(), s.window, s.width, s.width, talib.SMA)

	signals := make(core.Series[float64], n)
	for t := s.window; t < n; t++ {
		switch {
		case df.Close[t] < lower[t]:
			signals[t] = 1
		case df.Close[t] > upper[t]:
			signals[t] = -1
		}
	}
	return signals, nil
}
