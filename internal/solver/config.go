package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
)

// Norm selects how the componentwise scaled errors are combined.
type Norm string

const (
	NormRMS Norm = "rms"
	NormMax Norm = "max"
)

// NewtonConfig controls the iteration of diagonally implicit stages.
type NewtonConfig struct {
	// Tol bounds the RMS norm of the last update.
	Tol     float64
	MaxIter int
	// FreezeJacobian evaluates the Jacobian once per stage solve.
	FreezeJacobian bool
}

type Config struct {
	// H0 is the first step size; H0 <= 0 selects one automatically in
	// adaptive mode.
	H0       float64
	Adaptive bool
	ATol     float64
	RTol     float64
	Norm     Norm

	Controller Controller
	Newton     NewtonConfig

	// MaxRejects is the number of consecutive rejections tolerated before
	// the run fails.
	MaxRejects int
	// MinStep 0 selects a bound relative to the current time.
	MinStep float64
	// MaxStep 0 means unbounded.
	MaxStep float64

	// NotifyRejected also publishes rejected attempts to modules, with
	// stepAccepted set to false.
	NotifyRejected bool
}

func DefaultConfig() Config {
	return Config{
		Adaptive:   true,
		ATol:       1e-6,
		RTol:       1e-6,
		Norm:       NormRMS,
		Controller: DefaultController(),
		Newton: NewtonConfig{
			Tol:            math.Sqrt(eps) * 10,
			MaxIter:        10,
			FreezeJacobian: true,
		},
		MaxRejects: 50,
	}
}

func (c Config) Validate() error {
	if c.ATol < 0 || c.RTol < 0 || c.ATol+c.RTol == 0 {
		return fmt.Errorf("%w: tolerances atol=%g rtol=%g", dynamo.ErrConfig, c.ATol, c.RTol)
	}
	if c.Norm != NormRMS && c.Norm != NormMax {
		return fmt.Errorf("%w: unknown norm %q", dynamo.ErrConfig, c.Norm)
	}
	if err := c.Controller.Validate(); err != nil {
		return err
	}
	if c.Newton.Tol <= 0 || c.Newton.MaxIter < 1 {
		return fmt.Errorf("%w: newton tol=%g max_iter=%d", dynamo.ErrConfig, c.Newton.Tol, c.Newton.MaxIter)
	}
	if c.MaxRejects < 1 {
		return fmt.Errorf("%w: max_rejects must be positive, got %d", dynamo.ErrConfig, c.MaxRejects)
	}
	if c.MinStep < 0 || c.MaxStep < 0 || (c.MaxStep > 0 && c.MinStep > c.MaxStep) {
		return fmt.Errorf("%w: step bounds [%g, %g]", dynamo.ErrConfig, c.MinStep, c.MaxStep)
	}
	return nil
}
