package problems

import (
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// ProtheroRobinson is
//
//	y' = cos t + λ(y − sin t),   y(0) = 0
//
// split into the non-stiff forcing cos t and the stiff relaxation
// λ(y − sin t). The solution is sin t for every λ.
type ProtheroRobinson struct {
	lambda float64
}

func NewProtheroRobinson(lambda float64) *ProtheroRobinson {
	return &ProtheroRobinson{lambda: lambda}
}

func (p *ProtheroRobinson) Name() string { return "prothero-robinson" }
func (p *ProtheroRobinson) Size() int    { return 1 }

func (p *ProtheroRobinson) NonStiff(t float64, _ dynamo.State) dynamo.State {
	return dynamo.State{math.Cos(t)}
}

func (p *ProtheroRobinson) Stiff(t float64, y dynamo.State) dynamo.State {
	return dynamo.State{p.lambda * (y[0] - math.Sin(t))}
}

func (p *ProtheroRobinson) Derive(t float64, y dynamo.State) dynamo.State {
	return dynamo.Sum(p, t, y)
}

func (p *ProtheroRobinson) Jacobian(_ float64, _ dynamo.State) *mat.Dense {
	return mat.NewDense(1, 1, []float64{p.lambda})
}

func (p *ProtheroRobinson) Solution(t float64) dynamo.State {
	return dynamo.State{math.Sin(t)}
}

func (p *ProtheroRobinson) Initial() dynamo.State    { return dynamo.State{0} }
func (p *ProtheroRobinson) Span() (float64, float64) { return 0, 2 }

func (p *ProtheroRobinson) Params() map[string]float64 {
	return map[string]float64{"lambda": p.lambda}
}

func (p *ProtheroRobinson) SetParam(name string, value float64) error {
	if name != "lambda" {
		return unknownParam(p.Name(), name)
	}
	p.lambda = value
	return nil
}

// VanDerPol is the Van der Pol oscillator
//
//	x' = y
//	y' = μ(1 − x²)y − x
//
// with the damping term μ(1 − x²)y treated as the stiff part.
type VanDerPol struct {
	mu float64
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{mu: 5}
}

func (v *VanDerPol) Name() string { return "van-der-pol" }
func (v *VanDerPol) Size() int    { return 2 }

func (v *VanDerPol) NonStiff(_ float64, y dynamo.State) dynamo.State {
	return dynamo.State{y[1], -y[0]}
}

func (v *VanDerPol) Stiff(_ float64, y dynamo.State) dynamo.State {
	return dynamo.State{0, v.mu * (1 - y[0]*y[0]) * y[1]}
}

func (v *VanDerPol) Derive(t float64, y dynamo.State) dynamo.State {
	return dynamo.Sum(v, t, y)
}

// Jacobian of the stiff part.
func (v *VanDerPol) Jacobian(_ float64, y dynamo.State) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		0, 0,
		-2 * v.mu * y[0] * y[1], v.mu * (1 - y[0]*y[0]),
	})
}

func (v *VanDerPol) Initial() dynamo.State    { return dynamo.State{2, 0} }
func (v *VanDerPol) Span() (float64, float64) { return 0, 20 }

func (v *VanDerPol) Params() map[string]float64 {
	return map[string]float64{"mu": v.mu}
}

func (v *VanDerPol) SetParam(name string, value float64) error {
	if name != "mu" {
		return unknownParam(v.Name(), name)
	}
	v.mu = value
	return nil
}

// Brusselator is the autocatalytic reaction
//
//	u' = a − (b + 1)u + u²v
//	v' = bu − u²v
//
// with the linear terms treated as the stiff part.
type Brusselator struct {
	a, b float64
}

func NewBrusselator() *Brusselator {
	return &Brusselator{a: 1, b: 3}
}

func (br *Brusselator) Name() string { return "brusselator" }
func (br *Brusselator) Size() int    { return 2 }

func (br *Brusselator) NonStiff(_ float64, y dynamo.State) dynamo.State {
	uuv := y[0] * y[0] * y[1]
	return dynamo.State{br.a + uuv, -uuv}
}

func (br *Brusselator) Stiff(_ float64, y dynamo.State) dynamo.State {
	return dynamo.State{-(br.b + 1) * y[0], br.b * y[0]}
}

func (br *Brusselator) Derive(t float64, y dynamo.State) dynamo.State {
	return dynamo.Sum(br, t, y)
}

func (br *Brusselator) Jacobian(_ float64, _ dynamo.State) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		-(br.b + 1), 0,
		br.b, 0,
	})
}

func (br *Brusselator) Initial() dynamo.State    { return dynamo.State{1.5, 3} }
func (br *Brusselator) Span() (float64, float64) { return 0, 20 }

func (br *Brusselator) Params() map[string]float64 {
	return map[string]float64{"a": br.a, "b": br.b}
}

func (br *Brusselator) SetParam(name string, value float64) error {
	switch name {
	case "a":
		br.a = value
	case "b":
		br.b = value
	default:
		return unknownParam(br.Name(), name)
	}
	return nil
}
