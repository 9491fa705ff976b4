package strategies

import (
	"fmt"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/JuanMi-CG/quant-trading/optimizer"
)

// Classes returns every built-in strategy class, in the order used for
// strategy selection
func Classes() []optimizer.StrategyClass {
	return []optimizer.StrategyClass{
		{Name: "sma_cross", Factory: CrossSMAFactory, Specs: CrossSMASpecs()},
		{Name: "rsi_reversion", Factory: RSIReversionFactory, Specs: RSIReversionSpecs()},
		{Name: "momentum", Factory: MomentumFactory, Specs: MomentumSpecs()},
		{Name: "bollinger_reversion", Factory: BollingerReversionFactory, Specs: BollingerReversionSpecs()},
	}
}

// Class resolves one built-in strategy class by name
func Class(name string) (optimizer.StrategyClass, error) {
	for _, class := range Classes() {
		if class.Name == name {
			return class, nil
		}
	}
	return optimizer.StrategyClass{}, fmt.Errorf("%w: %q", core.ErrStrategyNotFound, name)
}

// Build reconstructs a strategy instance from a class name and a stored
// candidate. Candidates that went through JSON carry float64 where a
// strategy expects int, so values are conformed against the class specs
// first. A rebuilt strategy reproduces the exact signals of the original.
func Build(className string, candidate core.Candidate) (core.Strategy, error) {
	class, err := Class(className)
	if err != nil {
		return nil, err
	}

	space, err := optimizer.NewParameterSpace(class.Specs)
	if err != nil {
		return nil, err
	}

	conformed, err := space.Conform(candidate)
	if err != nil {
		return nil, err
	}

	return class.Factory(conformed)
}
