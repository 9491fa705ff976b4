package optimizer

import (
	"math/rand"
)

// RandomSuggester is the default trial-suggestion service: an
// independent, seeded random sampler over the declared domains. It
// keeps no memory between trials, so Tell is a no-op.
type RandomSuggester struct {
	rng *rand.Rand
}

// NewRandomSuggester creates a sampler with a deterministic seed
func NewRandomSuggester(seed int64) *RandomSuggester {
	return &RandomSuggester{rng: rand.New(rand.NewSource(seed))}
}

// SuggestCategorical picks one of the declared choices
func (s *RandomSuggester) SuggestCategorical(_ int, _ string, choices []any) any {
	return choices[s.rng.Intn(len(choices))]
}

// SuggestInt picks an integer from the grid low, low+step, ..., <=high
func (s *RandomSuggester) SuggestInt(_ int, _ string, low, high, step int) int {
	points := (high-low)/step + 1
	return low + step*s.rng.Intn(points)
}

// SuggestFloat picks a real from [low, high], quantized when a positive
// step is given
func (s *RandomSuggester) SuggestFloat(_ int, _ string, low, high, step float64) float64 {
	if step > 0 {
		points := int((high-low)/step) + 1
		return low + step*float64(s.rng.Intn(points))
	}
	return low + s.rng.Float64()*(high-low)
}

// Tell is ignored: random sampling does not adapt to scores
func (s *RandomSuggester) Tell(int, float64) {}
