// Package optimizer implements parameter-space search over trading
// strategies: exhaustive grid search, suggestion-driven sequential
// search and continuous-relaxation search, plus the selector that ranks
// several strategy classes against each other.
package optimizer

import (
	"fmt"
	"math"

	"github.com/JuanMi-CG/quant-trading/core"
)

// ParameterSpace is the immutable, ordered set of tunable parameters of
// one strategy class. The declared order determines grid enumeration and
// the dimensions of the continuous encoding.
type ParameterSpace struct {
	specs []core.ParameterSpec
}

// NewParameterSpace validates the declared specs and builds a space.
// Validation is exhaustive up front so searches never see a malformed
// spec.
func NewParameterSpace(specs []core.ParameterSpec) (*ParameterSpace, error) {
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: empty name", core.ErrInvalidParameterSpec)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: duplicate parameter %q", core.ErrInvalidParameterSpec, spec.Name)
		}
		seen[spec.Name] = true

		switch spec.Kind {
		case core.KindCategorical:
			if len(spec.Choices) == 0 {
				return nil, fmt.Errorf("%w: parameter %q has no choices", core.ErrInvalidParameterSpec, spec.Name)
			}
		case core.KindInteger:
			if spec.Min > spec.Max {
				return nil, fmt.Errorf("%w: parameter %q bounds inverted", core.ErrInvalidParameterSpec, spec.Name)
			}
			if spec.Step <= 0 {
				return nil, fmt.Errorf("%w: parameter %q step must be positive", core.ErrInvalidParameterSpec, spec.Name)
			}
		case core.KindReal:
			if spec.Min > spec.Max {
				return nil, fmt.Errorf("%w: parameter %q bounds inverted", core.ErrInvalidParameterSpec, spec.Name)
			}
			if spec.Count <= 0 {
				return nil, fmt.Errorf("%w: parameter %q count must be positive", core.ErrInvalidParameterSpec, spec.Name)
			}
		default:
			return nil, fmt.Errorf("%w: parameter %q needs choices or a numeric type with bounds", core.ErrInvalidParameterSpec, spec.Name)
		}
	}

	owned := make([]core.ParameterSpec, len(specs))
	copy(owned, specs)
	return &ParameterSpace{specs: owned}, nil
}

// Len returns the number of parameters in the space
func (s *ParameterSpace) Len() int {
	return len(s.specs)
}

// Names returns the parameter names in declared order
func (s *ParameterSpace) Names() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}

// Specs returns the declared specs in order
func (s *ParameterSpace) Specs() []core.ParameterSpec {
	return s.specs
}

// Grid returns, per parameter in declared order, the ordered sequence of
// concrete values the parameter can take
func (s *ParameterSpace) Grid() [][]any {
	grid := make([][]any, len(s.specs))
	for i, spec := range s.specs {
		grid[i] = specValues(spec)
	}
	return grid
}

// specValues enumerates the concrete domain of one spec
func specValues(spec core.ParameterSpec) []any {
	switch spec.Kind {
	case core.KindCategorical:
		return spec.Choices
	case core.KindInteger:
		var values []any
		for v := int(spec.Min); v <= int(spec.Max); v += spec.Step {
			values = append(values, v)
		}
		return values
	case core.KindReal:
		if spec.Count == 1 {
			return []any{spec.Min}
		}
		values := make([]any, spec.Count)
		step := (spec.Max - spec.Min) / float64(spec.Count-1)
		for i := 0; i < spec.Count; i++ {
			values[i] = spec.Min + float64(i)*step
		}
		// guard against accumulation drift on the last point
		values[spec.Count-1] = spec.Max
		return values
	}
	return nil
}

// Candidates enumerates the full Cartesian product of the grid in
// declared key order, with the last key varying fastest
func (s *ParameterSpace) Candidates() []core.Candidate {
	grid := s.Grid()
	total := 1
	for _, values := range grid {
		total *= len(values)
	}
	if len(grid) == 0 {
		return []core.Candidate{{}}
	}

	candidates := make([]core.Candidate, 0, total)
	indices := make([]int, len(grid))
	for {
		candidate := make(core.Candidate, len(grid))
		for i, spec := range s.specs {
			candidate[spec.Name] = grid[i][indices[i]]
		}
		candidates = append(candidates, candidate)

		// odometer increment, last dimension fastest
		i := len(indices) - 1
		for ; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(grid[i]) {
				break
			}
			indices[i] = 0
		}
		if i < 0 {
			return candidates
		}
	}
}

// Bounds returns one (low, high) pair per parameter in declared order
// for the continuous relaxation. Categorical parameters are relaxed to
// the index range [0, len(choices)-1].
func (s *ParameterSpace) Bounds() [][2]float64 {
	bounds := make([][2]float64, len(s.specs))
	for i, spec := range s.specs {
		if spec.Kind == core.KindCategorical {
			bounds[i] = [2]float64{0, float64(len(spec.Choices) - 1)}
		} else {
			bounds[i] = [2]float64{spec.Min, spec.Max}
		}
	}
	return bounds
}

// Encode maps a typed candidate onto the real vector of the continuous
// relaxation, one component per parameter in declared order
func (s *ParameterSpace) Encode(candidate core.Candidate) ([]float64, error) {
	vector := make([]float64, len(s.specs))
	for i, spec := range s.specs {
		value, ok := candidate[spec.Name]
		if !ok {
			return nil, fmt.Errorf("candidate is missing parameter %q", spec.Name)
		}
		switch spec.Kind {
		case core.KindCategorical:
			index := -1
			for j, choice := range spec.Choices {
				if choice == value {
					index = j
					break
				}
			}
			if index < 0 {
				return nil, fmt.Errorf("value %v is not a declared choice of %q", value, spec.Name)
			}
			vector[i] = float64(index)
		case core.KindInteger:
			v, ok := value.(int)
			if !ok {
				return nil, fmt.Errorf("parameter %q must be an integer, got %T", spec.Name, value)
			}
			vector[i] = float64(v)
		case core.KindReal:
			v, ok := value.(float64)
			if !ok {
				return nil, fmt.Errorf("parameter %q must be a float, got %T", spec.Name, value)
			}
			vector[i] = v
		}
	}
	return vector, nil
}

// Decode maps a real vector back to a typed candidate. Integer and
// categorical components are rounded to the nearest valid value and
// clipped into range; real components pass through unchanged.
func (s *ParameterSpace) Decode(vector []float64) (core.Candidate, error) {
	if len(vector) != len(s.specs) {
		return nil, fmt.Errorf("vector has %d dimensions, space has %d", len(vector), len(s.specs))
	}
	candidate := make(core.Candidate, len(s.specs))
	for i, spec := range s.specs {
		x := vector[i]
		switch spec.Kind {
		case core.KindCategorical:
			index := clampInt(int(math.Round(x)), 0, len(spec.Choices)-1)
			candidate[spec.Name] = spec.Choices[index]
		case core.KindInteger:
			candidate[spec.Name] = clampInt(int(math.Round(x)), int(spec.Min), int(spec.Max))
		case core.KindReal:
			candidate[spec.Name] = x
		}
	}
	return candidate, nil
}

// Conform coerces loosely typed values (JSON numbers, config file
// entries) into the spec's declared types, validating domain membership
// for categorical parameters
func (s *ParameterSpace) Conform(raw core.Candidate) (core.Candidate, error) {
	candidate := make(core.Candidate, len(s.specs))
	for _, spec := range s.specs {
		value, ok := raw[spec.Name]
		if !ok {
			return nil, fmt.Errorf("candidate is missing parameter %q", spec.Name)
		}
		switch spec.Kind {
		case core.KindInteger:
			switch v := value.(type) {
			case int:
				candidate[spec.Name] = v
			case int64:
				candidate[spec.Name] = int(v)
			case float64:
				candidate[spec.Name] = int(math.Round(v))
			default:
				return nil, fmt.Errorf("parameter %q must be numeric, got %T", spec.Name, value)
			}
		case core.KindReal:
			switch v := value.(type) {
			case float64:
				candidate[spec.Name] = v
			case int:
				candidate[spec.Name] = float64(v)
			case int64:
				candidate[spec.Name] = float64(v)
			default:
				return nil, fmt.Errorf("parameter %q must be numeric, got %T", spec.Name, value)
			}
		case core.KindCategorical:
			matched := false
			for _, choice := range spec.Choices {
				if choice == value || fmt.Sprint(choice) == fmt.Sprint(value) {
					candidate[spec.Name] = choice
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("value %v is not a declared choice of %q", value, spec.Name)
			}
		}
	}
	return candidate, nil
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
