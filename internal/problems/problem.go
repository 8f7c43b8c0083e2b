package problems

import (
	"fmt"

	"github.com/san-kum/imexrk/internal/dynamo"
)

type Problem interface {
	dynamo.RHS
	dynamo.Named
	Initial() dynamo.State
	// Span is the default integration interval.
	Span() (t0, tEnd float64)
}

// Exact is implemented by problems with a closed-form solution.
type Exact interface {
	Solution(t float64) dynamo.State
}

// Configurable exposes named scalar parameters.
type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64) error
}

func unknownParam(problem, name string) error {
	return fmt.Errorf("%w: %s has no parameter %q", dynamo.ErrConfig, problem, name)
}

// Apply sets every entry of params on p.
func Apply(p Problem, params map[string]float64) error {
	if len(params) == 0 {
		return nil
	}
	c, ok := p.(Configurable)
	if !ok {
		return fmt.Errorf("%w: %s takes no parameters", dynamo.ErrConfig, p.Name())
	}
	for name, v := range params {
		if err := c.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}
