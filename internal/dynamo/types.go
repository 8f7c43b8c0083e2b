package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

// Sum returns the sum of all components.
func (s State) Sum() float64 {
	return floats.Sum(s)
}

func (s State) Add(other State) State {
	result := s.Clone()
	floats.Add(result, other)
	return result
}

func (s State) Sub(other State) State {
	result := s.Clone()
	floats.Sub(result, other)
	return result
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

// AddScaled returns s + alpha*other.
func (s State) AddScaled(alpha float64, other State) State {
	result := s.Clone()
	floats.AddScaled(result, alpha, other)
	return result
}

// Func is a plain vector field f(t, y).
type Func func(t float64, y State) State

// RHS is the right-hand side of dy/dt = f(t, y).
type RHS interface {
	Size() int
	Derive(t float64, y State) State
}

// Additive is a right-hand side split as f = f1 + f2, where f1 is the
// non-stiff (explicitly treated) part and f2 the stiff part.
type Additive interface {
	RHS
	NonStiff(t float64, y State) State
	Stiff(t float64, y State) State
}

// Jacobian is implemented by right-hand sides that supply their own
// df/dy. For an Additive RHS it must return the Jacobian of Stiff only.
type Jacobian interface {
	Jacobian(t float64, y State) *mat.Dense
}

// Named is implemented by systems that carry a display name.
type Named interface {
	Name() string
}

// System adapts a plain Func to RHS.
type System struct {
	Label string
	Dim   int
	F     Func
	// Jac is optional.
	Jac func(t float64, y State) *mat.Dense
}

func (s *System) Size() int                       { return s.Dim }
func (s *System) Name() string                    { return s.Label }
func (s *System) Derive(t float64, y State) State { return s.F(t, y) }

// Split adapts two Funcs to Additive. Derive is always F1 + F2.
type Split struct {
	Label string
	Dim   int
	F1    Func
	F2    Func
	// Jac is optional and must be the Jacobian of F2.
	Jac func(t float64, y State) *mat.Dense
}

func (s *Split) Size() int                         { return s.Dim }
func (s *Split) Name() string                      { return s.Label }
func (s *Split) NonStiff(t float64, y State) State { return s.F1(t, y) }
func (s *Split) Stiff(t float64, y State) State    { return s.F2(t, y) }

func (s *Split) Derive(t float64, y State) State {
	return Sum(s, t, y)
}

// Sum evaluates NonStiff + Stiff.
func Sum(a Additive, t float64, y State) State {
	f := a.NonStiff(t, y).Clone()
	floats.Add(f, a.Stiff(t, y))
	return f
}

// JacobianOf returns the analytic Jacobian of rhs when it provides one.
func JacobianOf(rhs RHS) (func(t float64, y State) *mat.Dense, bool) {
	switch r := rhs.(type) {
	case *System:
		if r.Jac != nil {
			return r.Jac, true
		}
		return nil, false
	case *Split:
		if r.Jac != nil {
			return r.Jac, true
		}
		return nil, false
	case Jacobian:
		return r.Jacobian, true
	}
	return nil, false
}

// NameOf returns the display name of rhs, or fallback.
func NameOf(rhs RHS, fallback string) string {
	if n, ok := rhs.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fallback
}
