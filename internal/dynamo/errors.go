package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrConfig indicates a wiring problem detected before stepping starts.
	ErrConfig = errors.New("dynamo: configuration error")

	// ErrDimensionMismatch indicates a state whose length differs from RHS.Size().
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrConvergence indicates a Newton iteration that did not converge.
	ErrConvergence = errors.New("dynamo: implicit stage did not converge")

	// ErrNonFinite indicates NaN or Inf in a stage value or error estimate.
	ErrNonFinite = errors.New("dynamo: non-finite value (NaN or Inf detected)")

	// ErrRange indicates a dense-output request outside [0, 1].
	ErrRange = errors.New("dynamo: interpolation point outside [0, 1]")

	// ErrRetryBudget indicates too many consecutive step rejections.
	ErrRetryBudget = errors.New("dynamo: step retry budget exhausted")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")
)

// Retryable reports whether err is recovered by the step-rejection cycle.
func Retryable(err error) bool {
	return errors.Is(err, ErrConvergence) || errors.Is(err, ErrNonFinite)
}

// StepError wraps a fatal error with the integration context it happened in.
type StepError struct {
	Step    int
	Time    float64
	H       float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, h=%.3g): %v", e.Step, e.Time, e.H, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
