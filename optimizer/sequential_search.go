package optimizer

import (
	"fmt"
	"math"

	"github.com/JuanMi-CG/quant-trading/core"
)

// SequentialSearch drives an external trial-suggestion service: each
// trial asks the suggester for one value per parameter, evaluates the
// resulting candidate and feeds the score back
type SequentialSearch struct {
	space  *ParameterSpace
	config *Config
}

// Trial records one suggestion/evaluation round
type Trial struct {
	Number    int
	Candidate core.Candidate
	Score     float64
	// Err carries the failure reason of an unevaluable candidate; such
	// trials are scored negative infinity rather than aborting the search
	Err string
}

// SequentialResult is the outcome of a sequential search
type SequentialResult struct {
	Best    core.Candidate
	Score   float64
	Summary core.Summary
	Trials  []Trial
}

// NewSequentialSearch creates a sequential search over the given space
func NewSequentialSearch(space *ParameterSpace, config *Config) (*SequentialSearch, error) {
	if space == nil {
		return nil, fmt.Errorf("parameter space cannot be nil")
	}
	if config == nil {
		config = NewConfig()
	}
	if config.Trials <= 0 {
		return nil, fmt.Errorf("trial budget must be positive, got %d", config.Trials)
	}
	return &SequentialSearch{space: space, config: config}, nil
}

// sample builds one candidate from per-spec suggestion requests
func (s *SequentialSearch) sample(suggester core.TrialSuggester, trial int) core.Candidate {
	candidate := make(core.Candidate, s.space.Len())
	for _, spec := range s.space.Specs() {
		switch spec.Kind {
		case core.KindCategorical:
			candidate[spec.Name] = suggester.SuggestCategorical(trial, spec.Name, spec.Choices)
		case core.KindInteger:
			candidate[spec.Name] = suggester.SuggestInt(trial, spec.Name, int(spec.Min), int(spec.Max), spec.Step)
		case core.KindReal:
			candidate[spec.Name] = suggester.SuggestFloat(trial, spec.Name, spec.Min, spec.Max, 0)
		}
	}
	return candidate
}

// Run executes the configured trial budget and returns the best
// observed candidate together with the full trial history. Evaluation
// failures and non-finite metrics are scored negative infinity so the
// suggester is steered away without the search aborting.
func (s *SequentialSearch) Run(evaluator core.Evaluator) (*SequentialResult, error) {
	maximize := core.MaximizeMetric(s.config.Metric)
	suggester := s.config.suggester()

	result := &SequentialResult{
		Score:  math.NaN(),
		Trials: make([]Trial, 0, s.config.Trials),
	}
	logInfof(s.config.Logger, "starting sequential search: %d trials, metric %s", s.config.Trials, s.config.Metric)

	for number := 0; number < s.config.Trials; number++ {
		candidate := s.sample(suggester, number)
		trial := Trial{Number: number, Candidate: candidate, Score: math.Inf(-1)}

		outcome := evaluator.Evaluate(candidate)
		usable := false
		if outcome.Failed() {
			trial.Err = outcome.Reason.Error()
			logWarnf(s.config.Logger, "trial %d skip %v: %v", number, candidate, outcome.Reason)
		} else {
			score, err := outcome.Summary.Metric(s.config.Metric)
			if err != nil {
				return nil, err
			}
			if math.IsInf(score, 0) || math.IsNaN(score) {
				trial.Err = fmt.Sprintf("non-finite %s", s.config.Metric)
			} else {
				trial.Score = score
				usable = true
			}
		}

		suggester.Tell(number, trial.Score)
		result.Trials = append(result.Trials, trial)

		if usable && better(trial.Score, result.Score, maximize) {
			result.Best = candidate.Clone()
			result.Score = trial.Score
			result.Summary = outcome.Summary
		}
	}

	if result.Best == nil {
		return nil, fmt.Errorf("%w after %d trials", core.ErrNoValidCandidates, s.config.Trials)
	}
	logInfof(s.config.Logger, "sequential search completed: best %s %.6f", s.config.Metric, result.Score)
	return result, nil
}

// better reports whether score improves on the incumbent in the given
// direction; any finite score beats an absent (NaN) incumbent
func better(score, incumbent float64, maximize bool) bool {
	if math.IsNaN(incumbent) {
		return true
	}
	if maximize {
		return score > incumbent
	}
	return score < incumbent
}
