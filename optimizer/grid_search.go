package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/schollz/progressbar/v3"

	"github.com/JuanMi-CG/quant-trading/core"
)

// GridSearch exhaustively enumerates the Cartesian product of a
// parameter space
type GridSearch struct {
	space  *ParameterSpace
	config *Config
}

// Row is one successfully evaluated grid candidate
type Row struct {
	Candidate core.Candidate
	Summary   core.Summary
	Score     float64
}

// NewGridSearch creates a grid search over the given space
func NewGridSearch(space *ParameterSpace, config *Config) (*GridSearch, error) {
	if space == nil {
		return nil, fmt.Errorf("parameter space cannot be nil")
	}
	if config == nil {
		config = NewConfig()
	}
	return &GridSearch{space: space, config: config}, nil
}

// Run evaluates every candidate of the grid. Candidates that fail to
// construct or evaluate are logged and dropped; they do not appear in
// the result table. The surviving rows are sorted by the target metric,
// descending, with enumeration order breaking ties. An empty result
// table is fatal.
func (g *GridSearch) Run(evaluator core.Evaluator) ([]Row, error) {
	candidates := g.space.Candidates()
	logInfof(g.config.Logger, "starting grid search with %d parameter combinations", len(candidates))

	var bar *progressbar.ProgressBar
	if g.config.Progress {
		bar = progressbar.Default(int64(len(candidates)))
	}

	rows := make([]Row, 0, len(candidates))
	for _, candidate := range candidates {
		if bar != nil {
			if err := bar.Add(1); err != nil {
				logWarnf(g.config.Logger, "update progressbar fail: %v", err)
			}
		}

		outcome := evaluator.Evaluate(candidate)
		if outcome.Failed() {
			logWarnf(g.config.Logger, "grid skip %v: %v", candidate, outcome.Reason)
			continue
		}

		score, err := outcome.Summary.Metric(g.config.Metric)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			Candidate: candidate,
			Summary:   outcome.Summary,
			Score:     score,
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w for grid search", core.ErrNoValidCandidates)
	}

	sortRowsByScore(rows)
	logInfof(g.config.Logger, "grid search completed with %d results", len(rows))
	return rows, nil
}

// sortRowsByScore orders rows by score descending, NaN scores last,
// keeping enumeration order between equal scores
func sortRowsByScore(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Score, rows[j].Score
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
}
