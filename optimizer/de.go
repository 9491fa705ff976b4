package optimizer

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/JuanMi-CG/quant-trading/core"
)

// DifferentialEvolution is the default black-box minimizer: a classic
// DE/rand/1/bin scheme with bound clamping and no polishing step, so
// integer-valued dimensions are not disturbed by a local gradient
// refinement after convergence.
type DifferentialEvolution struct {
	// CrossoverRate is the probability of inheriting each mutant component
	CrossoverRate float64
}

// NewDifferentialEvolution creates a minimizer with default settings
func NewDifferentialEvolution() *DifferentialEvolution {
	return &DifferentialEvolution{CrossoverRate: 0.9}
}

// Minimize searches the bounded box for the vector minimizing the
// objective. The population holds PopulationSize members per dimension
// and evolves for MaxIterations generations.
func (d *DifferentialEvolution) Minimize(objective func(x []float64) float64, bounds [][2]float64, opts core.MinimizerOptions) ([]float64, float64, error) {
	dim := len(bounds)
	if dim == 0 {
		return nil, 0, fmt.Errorf("minimization requires at least one dimension")
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 30
	}
	if opts.PopulationSize <= 0 {
		opts.PopulationSize = 10
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	members := opts.PopulationSize * dim
	if members < 4 {
		members = 4
	}

	population := make([][]float64, members)
	fitness := make([]float64, members)
	for i := range population {
		population[i] = make([]float64, dim)
		for j, b := range bounds {
			population[i][j] = b[0] + rng.Float64()*(b[1]-b[0])
		}
		fitness[i] = objective(population[i])
	}

	bestIdx := 0
	for i := 1; i < members; i++ {
		if fitness[i] < fitness[bestIdx] {
			bestIdx = i
		}
	}

	diff := make([]float64, dim)
	mutant := make([]float64, dim)
	trial := make([]float64, dim)

	for generation := 0; generation < opts.MaxIterations; generation++ {
		// dithered mutation factor
		f := 0.5 + 0.5*rng.Float64()

		for i := 0; i < members; i++ {
			r1, r2, r3 := distinctIndices(rng, members, i)

			floats.SubTo(diff, population[r2], population[r3])
			copy(mutant, population[r1])
			floats.AddScaled(mutant, f, diff)

			jrand := rng.Intn(dim)
			copy(trial, population[i])
			for j := 0; j < dim; j++ {
				if j == jrand || rng.Float64() < d.CrossoverRate {
					trial[j] = clampFloat(mutant[j], bounds[j][0], bounds[j][1])
				}
			}

			if value := objective(trial); value <= fitness[i] {
				copy(population[i], trial)
				fitness[i] = value
				if value < fitness[bestIdx] {
					bestIdx = i
				}
			}
		}
	}

	best := make([]float64, dim)
	copy(best, population[bestIdx])
	return best, fitness[bestIdx], nil
}

// distinctIndices draws three distinct population indices, all
// different from the current member
func distinctIndices(rng *rand.Rand, members, current int) (int, int, int) {
	pick := func(exclude ...int) int {
	retry:
		for {
			candidate := rng.Intn(members)
			for _, e := range exclude {
				if candidate == e {
					continue retry
				}
			}
			return candidate
		}
	}
	r1 := pick(current)
	r2 := pick(current, r1)
	r3 := pick(current, r1, r2)
	return r1, r2, r3
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
