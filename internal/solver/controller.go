package solver

import (
	"fmt"
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
)

const eps = 2.220446049250313e-16

// Controller is the elementary step-size controller
//
//	h_new = h · min(MaxFactor, max(MinFactor, Safety · err^(−1/(q+1))))
//
// where q is the order of the embedded solution.
type Controller struct {
	Safety    float64
	MinFactor float64
	MaxFactor float64
}

func DefaultController() Controller {
	return Controller{Safety: 0.9, MinFactor: 0.2, MaxFactor: 5}
}

func (c Controller) Validate() error {
	if !(c.Safety > 0 && c.Safety < 1) {
		return fmt.Errorf("%w: safety must be in (0, 1), got %g", dynamo.ErrConfig, c.Safety)
	}
	if !(c.MinFactor > 0 && c.MinFactor < 1 && c.MaxFactor > 1) {
		return fmt.Errorf("%w: factors [%g, %g] must bracket 1", dynamo.ErrConfig, c.MinFactor, c.MaxFactor)
	}
	return nil
}

// Factor returns the step-size multiplier for an error norm err. A
// rejected step never gets a factor of 1 or more; a non-finite err gets
// MinFactor.
func (c Controller) Factor(err float64, q int, accepted bool) float64 {
	if math.IsNaN(err) || math.IsInf(err, 0) {
		return c.MinFactor
	}
	f := c.MaxFactor
	if err > 0 {
		f = c.Safety * math.Pow(err, -1/float64(q+1))
	}
	f = math.Min(c.MaxFactor, math.Max(c.MinFactor, f))
	if !accepted {
		f = math.Min(f, c.Safety)
	}
	return f
}

// ScaledError returns the combined norm of
//
//	e_i = (y1 − ŷ1)_i / (atol + rtol · max(|y0_i|, |y1_i|))
func ScaledError(y0, y1, yHat dynamo.State, atol, rtol float64, norm Norm) float64 {
	if len(y0) == 0 {
		return 0
	}
	acc := 0.0
	for i := range y0 {
		sc := atol + rtol*math.Max(math.Abs(y0[i]), math.Abs(y1[i]))
		e := (y1[i] - yHat[i]) / sc
		if math.IsNaN(e) {
			return math.NaN()
		}
		if norm == NormMax {
			acc = math.Max(acc, math.Abs(e))
		} else {
			acc += e * e
		}
	}
	if norm == NormMax {
		return acc
	}
	return math.Sqrt(acc / float64(len(y0)))
}

func rms(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	acc := 0.0
	for _, x := range v {
		acc += x * x
	}
	return math.Sqrt(acc / float64(len(v)))
}
