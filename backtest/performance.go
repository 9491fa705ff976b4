package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/JuanMi-CG/quant-trading/core"
)

// periodsPerYear is the trading-day annualization factor
const periodsPerYear = 252

// Evaluate computes the performance summary of an equity curve and its
// per-period return series. Metrics that are undefined for the input
// (Sharpe on zero-variance returns, profit factor without losses) are
// reported as NaN rather than failing.
func Evaluate(equity, returns []float64) core.Summary {
	var s core.Summary

	if len(equity) == 0 {
		return core.Summary{
			TotalReturn:  math.NaN(),
			AnnualReturn: math.NaN(),
			Volatility:   math.NaN(),
			Sharpe:       math.NaN(),
			MaxDrawdown:  math.NaN(),
			WinRate:      math.NaN(),
			ProfitFactor: math.NaN(),
			Expectancy:   math.NaN(),
		}
	}

	s.TotalReturn = equity[len(equity)-1]/equity[0] - 1

	n := len(returns)
	if n > 0 {
		s.AnnualReturn = math.Pow(1+s.TotalReturn, periodsPerYear/float64(n)) - 1
	} else {
		s.AnnualReturn = math.NaN()
	}

	stdev := stat.StdDev(returns, nil)
	mean := stat.Mean(returns, nil)
	s.Volatility = stdev * math.Sqrt(periodsPerYear)
	if stdev > 0 {
		s.Sharpe = mean / stdev * math.Sqrt(periodsPerYear)
	} else {
		s.Sharpe = math.NaN()
	}

	s.MaxDrawdown = maxDrawdown(equity)

	var wins, losses []float64
	for _, r := range returns {
		if r > 0 {
			wins = append(wins, r)
		} else if r < 0 {
			losses = append(losses, r)
		}
	}

	if n > 0 {
		s.WinRate = float64(len(wins)) / float64(n)
	} else {
		s.WinRate = math.NaN()
	}

	if len(losses) > 0 {
		s.ProfitFactor = sum(wins) / -sum(losses)
	} else {
		s.ProfitFactor = math.NaN()
	}

	var winTerm, lossTerm float64
	if len(wins) > 0 {
		winTerm = s.WinRate * stat.Mean(wins, nil)
	}
	if len(losses) > 0 {
		lossTerm = (1 - s.WinRate) * -stat.Mean(losses, nil)
	}
	s.Expectancy = winTerm - lossTerm

	return s
}

// maxDrawdown is the most negative relative decline of equity from its
// running maximum
func maxDrawdown(equity []float64) float64 {
	var worst float64
	runningMax := math.Inf(-1)
	for _, e := range equity {
		if e > runningMax {
			runningMax = e
		}
		if dd := (e - runningMax) / runningMax; dd < worst {
			worst = dd
		}
	}
	return worst
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
