package problems

import (
	"fmt"
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// DecayChain is a chain of first-order decays
//
//	y_1' = −k_1 y_1
//	y_i' = k_{i−1} y_{i−1} − k_i y_i
//	y_n' = k_{n−1} y_{n−1}
//
// with rates k_i = i. The total Σy is conserved.
type DecayChain struct {
	n int
}

func NewDecayChain(n int) *DecayChain {
	return &DecayChain{n: n}
}

func (d *DecayChain) Name() string { return "decay-chain" }
func (d *DecayChain) Size() int    { return d.n }

func (d *DecayChain) Rate(i int) float64 { return float64(i + 1) }

func (d *DecayChain) Derive(_ float64, y dynamo.State) dynamo.State {
	dy := make(dynamo.State, d.n)
	for i := 0; i < d.n-1; i++ {
		flow := d.Rate(i) * y[i]
		dy[i] -= flow
		dy[i+1] += flow
	}
	return dy
}

func (d *DecayChain) Jacobian(_ float64, _ dynamo.State) *mat.Dense {
	j := mat.NewDense(d.n, d.n, nil)
	for i := 0; i < d.n-1; i++ {
		j.Set(i, i, -d.Rate(i))
		j.Set(i+1, i, d.Rate(i))
	}
	return j
}

func (d *DecayChain) Initial() dynamo.State {
	y := make(dynamo.State, d.n)
	y[0] = 1
	return y
}

func (d *DecayChain) Span() (float64, float64) { return 0, 10 }

func (d *DecayChain) Params() map[string]float64 {
	return map[string]float64{"n": float64(d.n)}
}

func (d *DecayChain) SetParam(name string, value float64) error {
	if name != "n" {
		return unknownParam(d.Name(), name)
	}
	if value < 2 || math.IsInf(value, 0) || value != math.Trunc(value) {
		return fmt.Errorf("%w: decay-chain needs an integer n >= 2, got %g", dynamo.ErrConfig, value)
	}
	d.n = int(value)
	return nil
}

// Exponential is y' = −λy with y(0) = 1. Larger λ makes it stiffer.
type Exponential struct {
	lambda float64
}

func NewExponential(lambda float64) *Exponential {
	return &Exponential{lambda: lambda}
}

func (e *Exponential) Name() string { return "exponential" }
func (e *Exponential) Size() int    { return 1 }

func (e *Exponential) Derive(_ float64, y dynamo.State) dynamo.State {
	return dynamo.State{-e.lambda * y[0]}
}

func (e *Exponential) Jacobian(_ float64, _ dynamo.State) *mat.Dense {
	return mat.NewDense(1, 1, []float64{-e.lambda})
}

func (e *Exponential) Solution(t float64) dynamo.State {
	return dynamo.State{math.Exp(-e.lambda * t)}
}

func (e *Exponential) Initial() dynamo.State    { return dynamo.State{1} }
func (e *Exponential) Span() (float64, float64) { return 0, 1 }

func (e *Exponential) Params() map[string]float64 {
	return map[string]float64{"lambda": e.lambda}
}

func (e *Exponential) SetParam(name string, value float64) error {
	if name != "lambda" {
		return unknownParam(e.Name(), name)
	}
	e.lambda = value
	return nil
}

// Oscillator is the harmonic oscillator x'' = −ω²x.
// State: [x, v]
type Oscillator struct {
	omega float64
}

func NewOscillator() *Oscillator {
	return &Oscillator{omega: 1}
}

func (o *Oscillator) Name() string { return "oscillator" }
func (o *Oscillator) Size() int    { return 2 }

func (o *Oscillator) Derive(_ float64, y dynamo.State) dynamo.State {
	return dynamo.State{y[1], -o.omega * o.omega * y[0]}
}

func (o *Oscillator) Solution(t float64) dynamo.State {
	s, c := math.Sincos(o.omega * t)
	return dynamo.State{c, -o.omega * s}
}

// Energy is conserved along exact trajectories.
func (o *Oscillator) Energy(y dynamo.State) float64 {
	return 0.5 * (y[1]*y[1] + o.omega*o.omega*y[0]*y[0])
}

func (o *Oscillator) Initial() dynamo.State    { return dynamo.State{1, 0} }
func (o *Oscillator) Span() (float64, float64) { return 0, 2 * math.Pi }

func (o *Oscillator) Params() map[string]float64 {
	return map[string]float64{"omega": o.omega}
}

func (o *Oscillator) SetParam(name string, value float64) error {
	if name != "omega" {
		return unknownParam(o.Name(), name)
	}
	o.omega = value
	return nil
}
