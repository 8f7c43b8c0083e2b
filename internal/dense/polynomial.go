package dense

import (
	"errors"
	"fmt"

	"github.com/san-kum/imexrk/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// ErrStageLayout is returned when the stage values do not match the
// interpolant (wrong number of parts or stages).
var ErrStageLayout = errors.New("dense: stage values do not match interpolant")

// Polynomial is the standard Runge-Kutta continuous extension. Stage i
// receives the weight
//
//	w_i(θ) = Σ_k coeffs[i][k] θ^(k+1)
//
// so that y(θ) = y0 + Δt Σ_i w_i(θ) k_i. Row sums of coeffs must equal
// the scheme's solution weights b for θ = 1 to reproduce y1.
type Polynomial struct {
	stages  int
	coeffs  [][]float64
	weights func(theta float64) []float64
}

func NewPolynomial(coeffs [][]float64) *Polynomial {
	p := &Polynomial{stages: len(coeffs), coeffs: coeffs}
	p.weights = p.powerWeights
	return p
}

func (p *Polynomial) Stages() int { return p.stages }

// Degree returns the highest power of θ.
func (p *Polynomial) Degree() int {
	d := 0
	for _, row := range p.coeffs {
		d = max(d, len(row))
	}
	return d
}

// Weights returns w_i(θ) for every stage.
func (p *Polynomial) Weights(theta float64) []float64 {
	return p.weights(theta)
}

func (p *Polynomial) powerWeights(theta float64) []float64 {
	w := make([]float64, p.stages)
	for i, row := range p.coeffs {
		// Horner on Σ_k c_k θ^(k+1)
		acc := 0.0
		for k := len(row) - 1; k >= 0; k-- {
			acc = acc*theta + row[k]
		}
		w[i] = acc * theta
	}
	return w
}

// Displacement returns Δt Σ_i w_i(θ) k_i, the offset from y0.
func (p *Polynomial) Displacement(theta, dt float64, k []dynamo.State) (dynamo.State, error) {
	if len(k) != p.stages {
		return nil, fmt.Errorf("%w: %d stages, want %d", ErrStageLayout, len(k), p.stages)
	}
	w := p.weights(theta)
	d := make(dynamo.State, len(k[0]))
	for i, ki := range k {
		if w[i] == 0 {
			continue
		}
		floats.AddScaled(d, dt*w[i], ki)
	}
	return d, nil
}

func (p *Polynomial) Evaluate(y0, _ dynamo.State, theta, dt float64, stages dynamo.StageValues) (dynamo.State, error) {
	if err := CheckTheta(theta); err != nil {
		return nil, err
	}
	k, ok := stages.Single()
	if !ok {
		return nil, fmt.Errorf("%w: expected a single stage array, got %d", ErrStageLayout, stages.Parts())
	}
	d, err := p.Displacement(theta, dt, k)
	if err != nil {
		return nil, err
	}
	return y0.Add(d), nil
}
