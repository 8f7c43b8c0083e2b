package dense

import (
	"fmt"

	"github.com/san-kum/imexrk/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Additive combines the continuous extensions of the two tableaux of an
// additive scheme. Each one is applied to its own stage array and the
// displacements are summed, even when both coefficient tables coincide.
type Additive struct {
	nonStiff *Polynomial
	stiff    *Polynomial
}

func NewAdditive(nonStiff, stiff *Polynomial) (*Additive, error) {
	if nonStiff.Stages() != stiff.Stages() {
		return nil, fmt.Errorf("%w: %d vs %d stages", ErrStageLayout, nonStiff.Stages(), stiff.Stages())
	}
	return &Additive{nonStiff: nonStiff, stiff: stiff}, nil
}

func (a *Additive) Evaluate(y0, _ dynamo.State, theta, dt float64, stages dynamo.StageValues) (dynamo.State, error) {
	if err := CheckTheta(theta); err != nil {
		return nil, err
	}
	k1, k2, ok := stages.Pair()
	if !ok {
		return nil, fmt.Errorf("%w: expected paired stage arrays, got %d", ErrStageLayout, stages.Parts())
	}

	d1, err := a.nonStiff.Displacement(theta, dt, k1)
	if err != nil {
		return nil, fmt.Errorf("non-stiff part: %w", err)
	}
	d2, err := a.stiff.Displacement(theta, dt, k2)
	if err != nil {
		return nil, fmt.Errorf("stiff part: %w", err)
	}

	floats.Add(d1, d2)
	return y0.Add(d1), nil
}
