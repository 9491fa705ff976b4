// Package strategies provides the built-in strategy classes. Each class
// declares the parameter specs it can be tuned over and a factory that
// builds an instance from a concrete candidate.
package strategies

import (
	"fmt"

	"github.com/JuanMi-CG/quant-trading/core"
)

// intParam extracts a typed integer parameter from a candidate
func intParam(candidate core.Candidate, name string) (int, error) {
	value, ok := candidate[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter: %s", name)
	}
	v, ok := value.(int)
	if !ok {
		return 0, fmt.Errorf("parameter %s must be an integer, got %T", name, value)
	}
	return v, nil
}

// floatParam extracts a typed float parameter from a candidate
func floatParam(candidate core.Candidate, name string) (float64, error) {
	value, ok := candidate[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter: %s", name)
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("parameter %s must be a float, got %T", name, value)
}

// stringParam extracts a categorical string parameter from a candidate
func stringParam(candidate core.Candidate, name string) (string, error) {
	value, ok := candidate[name]
	if !ok {
		return "", fmt.Errorf("missing parameter: %s", name)
	}
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string, got %T", name, value)
	}
	return v, nil
}
