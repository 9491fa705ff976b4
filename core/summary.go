package core

import (
	"fmt"
	"strings"
)

// MetricName identifies one performance summary field
type MetricName = string

const (
	MetricTotalReturn  MetricName = "total_return"
	MetricAnnualReturn MetricName = "annual_return"
	MetricVolatility   MetricName = "volatility"
	MetricSharpe       MetricName = "sharpe"
	MetricMaxDrawdown  MetricName = "max_drawdown"
	MetricWinRate      MetricName = "win_rate"
	MetricProfitFactor MetricName = "profit_factor"
	MetricExpectancy   MetricName = "expectancy"
)

// Summary is the fixed record of performance metrics produced by one
// backtest evaluation. Any metric may be NaN under degenerate input,
// e.g. Sharpe on zero-variance returns.
type Summary struct {
	TotalReturn  float64
	AnnualReturn float64
	Volatility   float64
	Sharpe       float64
	MaxDrawdown  float64
	WinRate      float64
	ProfitFactor float64
	Expectancy   float64
}

// normalizeMetric folds case, spaces, dots and separators so that
// "Sharpe", "sharpe" and "Total Return" all resolve
func normalizeMetric(name string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")
	return replacer.Replace(strings.ToLower(name))
}

// Metric returns the value of one named metric. Unknown names are fatal
// for the caller: they indicate a misconfigured optimization target.
func (s Summary) Metric(name string) (float64, error) {
	switch normalizeMetric(name) {
	case "totalreturn":
		return s.TotalReturn, nil
	case "annualreturn", "annreturn", "annualizedreturn":
		return s.AnnualReturn, nil
	case "volatility", "annvol", "annualizedvolatility":
		return s.Volatility, nil
	case "sharpe", "sharperatio":
		return s.Sharpe, nil
	case "maxdrawdown", "drawdown":
		return s.MaxDrawdown, nil
	case "winrate":
		return s.WinRate, nil
	case "profitfactor":
		return s.ProfitFactor, nil
	case "expectancy":
		return s.Expectancy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// MaximizeMetric reports the optimization direction for a metric:
// Sharpe and total return are maximized, everything else is minimized
func MaximizeMetric(name string) bool {
	switch normalizeMetric(name) {
	case "sharpe", "sharperatio", "totalreturn":
		return true
	}
	return false
}
