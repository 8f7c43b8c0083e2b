// Package dense reconstructs the solution inside an accepted step.
//
// Every interpolant maps a fractional point θ in [0, 1] of a step
// [t0, t0+Δt] to an approximation of y(t0 + θΔt), using the step's
// endpoints and stage derivatives:
//
//   - [Linear]: y0 + θ(y1 − y0), independent of stages
//   - [Polynomial]: θ-dependent quadrature weights of a Runge-Kutta scheme
//   - [DormandPrince]: the degree-4 continuous extension of DOPRI5
//   - [Additive]: sum of two [Polynomial] displacements on split stages
//
// θ = 0 returns y0 and θ = 1 returns y1 up to rounding. Points outside
// [0, 1] return [dynamo.ErrRange].
package dense

import (
	"fmt"

	"github.com/san-kum/imexrk/internal/dynamo"
)

// Interpolant evaluates dense output within one step.
type Interpolant interface {
	Evaluate(y0, y1 dynamo.State, theta, dt float64, stages dynamo.StageValues) (dynamo.State, error)
}

// CheckTheta returns dynamo.ErrRange unless 0 <= theta <= 1.
func CheckTheta(theta float64) error {
	if !(theta >= 0 && theta <= 1) {
		return fmt.Errorf("%w: theta=%g", dynamo.ErrRange, theta)
	}
	return nil
}

// Linear is the default interpolant usable with any scheme.
type Linear struct{}

func (Linear) Evaluate(y0, y1 dynamo.State, theta, _ float64, _ dynamo.StageValues) (dynamo.State, error) {
	if err := CheckTheta(theta); err != nil {
		return nil, err
	}
	return y0.AddScaled(theta, y1.Sub(y0)), nil
}
