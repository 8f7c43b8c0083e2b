// Package jacobian approximates df/dy by forward differences for right-hand
// sides that do not provide an analytic Jacobian.
package jacobian

import (
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)

// Estimator holds the perturbation floors. The zero value is not usable;
// use New.
type Estimator struct {
	// DeltaY is the magnitude below which |y_i| is replaced when sizing
	// the perturbation of component i.
	DeltaY float64
	// DeltaMin is the smallest perturbation ever applied.
	DeltaMin float64
}

func New() *Estimator {
	return &Estimator{DeltaY: sqrtEps, DeltaMin: sqrtEps}
}

// Perturbation returns the step used for a component of magnitude yi.
func (e *Estimator) Perturbation(yi float64) float64 {
	d := math.Max(math.Abs(yi), e.DeltaY) * sqrtEps
	return math.Max(d, e.DeltaMin)
}

// Estimate returns the n×n Jacobian of f at (t, y). fy must be f(t, y);
// pass nil to have it evaluated. It costs n evaluations of f (n+1 when fy
// is nil).
func (e *Estimator) Estimate(f dynamo.Func, t float64, y, fy dynamo.State) *mat.Dense {
	n := len(y)
	if fy == nil {
		fy = f(t, y)
	}

	jac := mat.NewDense(n, n, nil)
	yp := y.Clone()
	for i := 0; i < n; i++ {
		d := e.Perturbation(y[i])
		yp[i] = y[i] + d
		// the representable step, not the requested one
		d = yp[i] - y[i]

		fp := f(t, yp)
		for r := 0; r < n; r++ {
			jac.Set(r, i, (fp[r]-fy[r])/d)
		}
		yp[i] = y[i]
	}
	return jac
}
