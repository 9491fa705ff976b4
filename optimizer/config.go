package optimizer

import (
	"github.com/JuanMi-CG/quant-trading/backtest"
	"github.com/JuanMi-CG/quant-trading/core"
)

// Config holds the shared knobs of the search strategies
type Config struct {
	// Metric is the performance summary field being optimized
	Metric string
	// Trials bounds the sequential search budget
	Trials int
	// Seed makes sequential and continuous searches reproducible
	Seed int64
	// MaxIterations bounds the continuous minimizer
	MaxIterations int
	// PopulationSize sizes the continuous minimizer population
	PopulationSize int
	// Backtest configures every candidate simulation
	Backtest backtest.Config
	// Logger receives per-candidate failure diagnostics; nil disables logging
	Logger core.Logger
	// Suggester drives sequential search; defaults to the seeded random sampler
	Suggester core.TrialSuggester
	// Minimizer drives continuous search; defaults to differential evolution
	Minimizer core.BlackBoxMinimizer
	// Progress enables a terminal progress bar during grid search
	Progress bool
}

// NewConfig creates a configuration with the package defaults
func NewConfig() *Config {
	return &Config{
		Metric:         core.MetricSharpe,
		Trials:         50,
		Seed:           1,
		MaxIterations:  30,
		PopulationSize: 10,
	}
}

// WithMetric sets the optimization target metric
func (c *Config) WithMetric(metric string) *Config {
	c.Metric = metric
	return c
}

// WithTrials sets the sequential search trial budget
func (c *Config) WithTrials(trials int) *Config {
	c.Trials = trials
	return c
}

// WithSeed sets the random seed
func (c *Config) WithSeed(seed int64) *Config {
	c.Seed = seed
	return c
}

// WithMaxIterations sets the continuous minimizer iteration bound
func (c *Config) WithMaxIterations(iterations int) *Config {
	c.MaxIterations = iterations
	return c
}

// WithPopulationSize sets the continuous minimizer population size
func (c *Config) WithPopulationSize(size int) *Config {
	c.PopulationSize = size
	return c
}

// WithBacktest sets the simulation configuration
func (c *Config) WithBacktest(cfg backtest.Config) *Config {
	c.Backtest = cfg
	return c
}

// WithLogger sets the logger
func (c *Config) WithLogger(logger core.Logger) *Config {
	c.Logger = logger
	return c
}

// WithSuggester sets the trial suggestion service
func (c *Config) WithSuggester(suggester core.TrialSuggester) *Config {
	c.Suggester = suggester
	return c
}

// WithMinimizer sets the black-box minimizer
func (c *Config) WithMinimizer(minimizer core.BlackBoxMinimizer) *Config {
	c.Minimizer = minimizer
	return c
}

// WithProgress enables grid search progress reporting
func (c *Config) WithProgress(enabled bool) *Config {
	c.Progress = enabled
	return c
}

// suggester returns the configured suggester or the default sampler
func (c *Config) suggester() core.TrialSuggester {
	if c.Suggester != nil {
		return c.Suggester
	}
	return NewRandomSuggester(c.Seed)
}

// minimizer returns the configured minimizer or the default
func (c *Config) minimizer() core.BlackBoxMinimizer {
	if c.Minimizer != nil {
		return c.Minimizer
	}
	return NewDifferentialEvolution()
}

func logInfof(log core.Logger, format string, args ...any) {
	if log != nil {
		log.Infof(format, args...)
	}
}

func logWarnf(log core.Logger, format string, args ...any) {
	if log != nil {
		log.Warnf(format, args...)
	}
}
