package core

// ParameterKind defines the domain class of a tunable parameter
type ParameterKind string

const (
	// KindCategorical parameters draw from an ordered finite choice list
	KindCategorical ParameterKind = "categorical"
	// KindInteger parameters draw from a stepped integer range
	KindInteger ParameterKind = "integer"
	// KindReal parameters draw from a bounded real interval
	KindReal ParameterKind = "real"
)

// ParameterSpec declares one tunable parameter. Use the Categorical,
// Integer and Real constructors; a hand-built spec is validated when the
// parameter space is constructed.
type ParameterSpec struct {
	Name string
	Kind ParameterKind

	// Choices holds the ordered option list for categorical parameters.
	// The order is semantically significant: continuous encoding maps a
	// choice to its index.
	Choices []any

	// Min and Max bound numeric parameters, inclusive on both ends
	Min float64
	Max float64

	// Step is the integer grid increment (integer parameters only)
	Step int

	// Count is the number of evenly spaced grid points (real parameters only)
	Count int
}

// Categorical declares a parameter drawing from an ordered choice list
func Categorical(name string, choices ...any) ParameterSpec {
	return ParameterSpec{Name: name, Kind: KindCategorical, Choices: choices}
}

// Integer declares a parameter on the grid low, low+step, ..., <=high
func Integer(name string, low, high, step int) ParameterSpec {
	return ParameterSpec{Name: name, Kind: KindInteger, Min: float64(low), Max: float64(high), Step: step}
}

// Real declares a parameter on count evenly spaced points in [low, high]
func Real(name string, low, high float64, count int) ParameterSpec {
	return ParameterSpec{Name: name, Kind: KindReal, Min: low, Max: high, Count: count}
}

// Candidate is one concrete, spec-conformant parameter assignment.
// Integer parameters hold int values, real parameters hold float64 and
// categorical parameters hold the chosen option.
type Candidate map[string]any

// Clone returns an independent copy of the candidate
func (c Candidate) Clone() Candidate {
	clone := make(Candidate, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// EvaluationOutcome is the result of scoring a single candidate.
// A failed outcome carries the failure reason instead of raising out of
// the search loop.
type EvaluationOutcome struct {
	Candidate Candidate
	Summary   Summary
	Equity    []float64
	Returns   []float64
	Reason    error
}

// Failed reports whether the candidate could not be evaluated
func (o EvaluationOutcome) Failed() bool {
	return o.Reason != nil
}

// Evaluator scores one candidate end to end: instantiate the strategy,
// simulate, and summarize performance
type Evaluator interface {
	Evaluate(candidate Candidate) EvaluationOutcome
}

// TrialSuggester is the capability required from an external
// trial-suggestion service. Suggested values must fall inside the
// requested domain. Tell feeds the observed score back after a trial so
// adaptive samplers can steer; samplers without memory may ignore it.
type TrialSuggester interface {
	SuggestCategorical(trial int, name string, choices []any) any
	SuggestInt(trial int, name string, low, high, step int) int
	SuggestFloat(trial int, name string, low, high, step float64) float64
	Tell(trial int, score float64)
}

// MinimizerOptions bound a black-box minimization run
type MinimizerOptions struct {
	MaxIterations  int
	PopulationSize int
	Seed           int64
}

// BlackBoxMinimizer is the capability required from an external
// continuous minimizer: given an objective and per-dimension bounds it
// returns the best vector found and its objective value
type BlackBoxMinimizer interface {
	Minimize(objective func(x []float64) float64, bounds [][2]float64, opts MinimizerOptions) ([]float64, float64, error)
}

// SearchMethod selects which search strategy drives an optimization
type SearchMethod string

const (
	// MethodGrid exhaustively enumerates the declared grid
	MethodGrid SearchMethod = "grid"
	// MethodSequential delegates candidate proposal to a trial suggester
	MethodSequential SearchMethod = "sequential"
	// MethodContinuous relaxes the space into a real vector and minimizes
	MethodContinuous SearchMethod = "continuous"
)
