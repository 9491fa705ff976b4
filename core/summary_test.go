package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummary_MetricLookup(t *testing.T) {
	s := Summary{
		TotalReturn:  0.2,
		AnnualReturn: 0.3,
		Volatility:   0.15,
		Sharpe:       1.4,
		MaxDrawdown:  -0.1,
		WinRate:      0.55,
		ProfitFactor: 1.8,
		Expectancy:   0.01,
	}

	cases := map[string]float64{
		"sharpe":        1.4,
		"Sharpe":        1.4,
		"sharpe_ratio":  1.4,
		"total_return":  0.2,
		"Total Return":  0.2,
		"Ann. Return":   0.3,
		"max_drawdown":  -0.1,
		"drawdown":      -0.1,
		"win_rate":      0.55,
		"profit_factor": 1.8,
		"expectancy":    0.01,
		"volatility":    0.15,
	}
	for name, want := range cases {
		got, err := s.Metric(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
}

func TestSummary_UnknownMetric(t *testing.T) {
	_, err := Summary{}.Metric("sortino")
	require.ErrorIs(t, err, ErrUnknownMetric)
}

func TestMaximizeMetric(t *testing.T) {
	require.True(t, MaximizeMetric("sharpe"))
	require.True(t, MaximizeMetric("Sharpe Ratio"))
	require.True(t, MaximizeMetric("total_return"))
	require.False(t, MaximizeMetric("max_drawdown"))
	require.False(t, MaximizeMetric("volatility"))
	require.False(t, MaximizeMetric("win_rate"))
}
