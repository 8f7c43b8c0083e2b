package dense

import "github.com/san-kum/imexrk/internal/dynamo"

// Dormand-Prince 5(4) solution weights and the dense-output correction
// of Hairer, Nørsett & Wanner (contd5).
var (
	dopriB = [7]float64{
		35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0,
		-2187.0 / 6784.0, 11.0 / 84.0, 0,
	}
	dopriD = [7]float64{
		-12715105075.0 / 11282082432.0,
		0,
		87487479700.0 / 32700410799.0,
		-10690763975.0 / 1880347072.0,
		701980252875.0 / 199316789632.0,
		-1453857185.0 / 822651844.0,
		69997945.0 / 29380423.0,
	}
)

// DormandPrince is the fourth-order continuous extension of the 7-stage
// (FSAL) Dormand-Prince pair. It shares the evaluation logic of
// Polynomial and only replaces the weight computation.
type DormandPrince struct {
	poly *Polynomial
}

func NewDormandPrince() *DormandPrince {
	return &DormandPrince{poly: &Polynomial{stages: len(dopriB), weights: dormandPrinceWeights}}
}

// Weights returns w_i(θ) = θ²(3−2θ) b_i + θ(θ−1)² [i=1] + θ²(θ−1) [i=7]
// + θ²(θ−1)² d_i.
func (d *DormandPrince) Weights(theta float64) []float64 {
	return d.poly.Weights(theta)
}

func (d *DormandPrince) Evaluate(y0, y1 dynamo.State, theta, dt float64, stages dynamo.StageValues) (dynamo.State, error) {
	return d.poly.Evaluate(y0, y1, theta, dt, stages)
}

func dormandPrinceWeights(theta float64) []float64 {
	t1 := theta - 1
	hermite := theta * theta * (3 - 2*theta)
	bubble := theta * theta * t1 * t1

	w := make([]float64, len(dopriB))
	for i := range w {
		w[i] = hermite*dopriB[i] + bubble*dopriD[i]
	}
	w[0] += theta * t1 * t1
	w[6] += theta * theta * t1
	return w
}
