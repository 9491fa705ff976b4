package optimizer

import (
	"fmt"
	"math"

	"github.com/JuanMi-CG/quant-trading/core"
)

// FailurePenalty is the large finite objective value returned for
// vectors that cannot be evaluated. The minimizer only minimizes, so a
// large positive value steers it away without raising.
const FailurePenalty = 1e6

// ContinuousSearch relaxes the parameter space into a bounded real
// vector and delegates to a black-box minimizer. Integer and
// categorical dimensions are decoded by round-and-clip; the objective
// is the negated target metric.
type ContinuousSearch struct {
	space  *ParameterSpace
	config *Config
}

// ContinuousResult is the outcome of a continuous-relaxation search
type ContinuousResult struct {
	Best    core.Candidate
	Score   float64
	Summary core.Summary
	Equity  []float64
}

// NewContinuousSearch creates a continuous search over the given space
func NewContinuousSearch(space *ParameterSpace, config *Config) (*ContinuousSearch, error) {
	if space == nil {
		return nil, fmt.Errorf("parameter space cannot be nil")
	}
	if config == nil {
		config = NewConfig()
	}
	return &ContinuousSearch{space: space, config: config}, nil
}

// objective builds the minimizer objective: decode, evaluate and negate
// the metric. Every failure path yields the same finite penalty.
func (c *ContinuousSearch) objective(evaluator core.Evaluator) func(x []float64) float64 {
	return func(x []float64) float64 {
		for _, component := range x {
			if math.IsNaN(component) || math.IsInf(component, 0) {
				return FailurePenalty
			}
		}

		candidate, err := c.space.Decode(x)
		if err != nil {
			return FailurePenalty
		}

		outcome := evaluator.Evaluate(candidate)
		if outcome.Failed() {
			logWarnf(c.config.Logger, "continuous skip %v: %v", candidate, outcome.Reason)
			return FailurePenalty
		}

		score, err := outcome.Summary.Metric(c.config.Metric)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return FailurePenalty
		}
		return -score
	}
}

// Run minimizes the negated metric over the relaxed space, then decodes
// the best vector and re-backtests it once for the authoritative result.
// A space with zero tunable dimensions skips the minimizer entirely and
// backtests the empty candidate.
func (c *ContinuousSearch) Run(evaluator core.Evaluator) (*ContinuousResult, error) {
	if c.space.Len() == 0 {
		return c.finalize(evaluator, core.Candidate{})
	}

	bounds := c.space.Bounds()
	opts := core.MinimizerOptions{
		MaxIterations:  c.config.MaxIterations,
		PopulationSize: c.config.PopulationSize,
		Seed:           c.config.Seed,
	}
	logInfof(c.config.Logger, "starting continuous search: %d dims, %d iterations, population %d",
		len(bounds), opts.MaxIterations, opts.PopulationSize)

	bestX, bestValue, err := c.config.minimizer().Minimize(c.objective(evaluator), bounds, opts)
	if err != nil {
		return nil, fmt.Errorf("minimizer failed: %w", err)
	}
	if bestValue >= FailurePenalty {
		return nil, fmt.Errorf("%w for continuous search", core.ErrNoValidCandidates)
	}

	best, err := c.space.Decode(bestX)
	if err != nil {
		return nil, err
	}
	return c.finalize(evaluator, best)
}

// finalize re-backtests the chosen candidate once to obtain the
// non-negated, authoritative metric
func (c *ContinuousSearch) finalize(evaluator core.Evaluator, candidate core.Candidate) (*ContinuousResult, error) {
	outcome := evaluator.Evaluate(candidate)
	if outcome.Failed() {
		return nil, fmt.Errorf("final backtest of %v failed: %w", candidate, outcome.Reason)
	}
	score, err := outcome.Summary.Metric(c.config.Metric)
	if err != nil {
		return nil, err
	}
	return &ContinuousResult{
		Best:    candidate,
		Score:   score,
		Summary: outcome.Summary,
		Equity:  outcome.Equity,
	}, nil
}
