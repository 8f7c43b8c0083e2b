package modules

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/props"
	"gonum.org/v1/gonum/floats"
)

var ErrDrift = errors.New("modules: invariant drift exceeds tolerance")

// Invariant tracks |g(y) − g(y0)| over accepted steps. With Tol > 0 a
// larger drift aborts the run.
type Invariant struct {
	Name string
	Tol  float64

	g        func(dynamo.State) float64
	initial  float64
	maxDrift float64
	at       float64
}

func NewInvariant(name string, g func(dynamo.State) float64) *Invariant {
	return &Invariant{Name: name, g: g}
}

// NewLinearInvariant tracks the weighted sum w·y. Runge-Kutta schemes
// preserve every linear invariant of the system up to round-off.
func NewLinearInvariant(name string, w []float64) *Invariant {
	return NewInvariant(name, func(y dynamo.State) float64 { return floats.Dot(w, y) })
}

// NewMassInvariant tracks Σ y_i.
func NewMassInvariant() *Invariant {
	return NewInvariant("mass", func(y dynamo.State) float64 { return y.Sum() })
}

func (inv *Invariant) Required() []string {
	return []string{props.FinalTime, props.FinalValues, props.StepAccepted}
}

func (inv *Invariant) BeginStepping(t0 float64, y0 dynamo.State, _ *props.Holder) error {
	inv.initial = inv.g(y0)
	inv.maxDrift, inv.at = 0, t0
	return nil
}

func (inv *Invariant) Step(h *props.Holder) error {
	if ok, err := h.Bool(props.StepAccepted); err != nil || !ok {
		return err
	}
	y, err := h.Vector(props.FinalValues)
	if err != nil {
		return err
	}
	t, err := h.Real(props.FinalTime)
	if err != nil {
		return err
	}

	drift := math.Abs(inv.g(y) - inv.initial)
	if drift > inv.maxDrift || math.IsNaN(drift) {
		inv.maxDrift, inv.at = drift, t
	}
	if inv.Tol > 0 && !(drift <= inv.Tol) {
		return fmt.Errorf("%w: %s drifted by %g at t=%g", ErrDrift, inv.Name, drift, t)
	}
	return nil
}

func (inv *Invariant) EndStepping() error { return nil }

func (inv *Invariant) Initial() float64 { return inv.initial }

// MaxDrift returns the largest drift seen and the time it occurred.
func (inv *Invariant) MaxDrift() (float64, float64) { return inv.maxDrift, inv.at }
