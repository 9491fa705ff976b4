package optimizer

import (
	"github.com/JuanMi-CG/quant-trading/core"
)

// stubEvaluator scores candidates with a pluggable function; an error
// produces a failed outcome like the real backtest evaluator would
type stubEvaluator struct {
	score func(candidate core.Candidate) (float64, error)
	calls int
}

func (s *stubEvaluator) Evaluate(candidate core.Candidate) core.EvaluationOutcome {
	s.calls++
	outcome := core.EvaluationOutcome{Candidate: candidate}

	score, err := s.score(candidate)
	if err != nil {
		outcome.Reason = err
		return outcome
	}

	outcome.Summary = core.Summary{Sharpe: score, TotalReturn: score}
	outcome.Equity = []float64{100, 100 * (1 + score)}
	outcome.Returns = []float64{0, score}
	return outcome
}
