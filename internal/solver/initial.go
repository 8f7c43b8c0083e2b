package solver

import (
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
)

func (e *Engine) firstStep(t0, tEnd float64, y0 dynamo.State) float64 {
	if !e.adaptive() || e.cfg.H0 > 0 {
		return e.cfg.H0
	}
	h := e.initialStep(t0, tEnd, y0)
	e.log.Sugar().Debugf("initial step %.3g selected", h)
	return h
}

func (e *Engine) derive(t float64, y dynamo.State) dynamo.State {
	f := e.parts[0](t, y)
	for _, part := range e.parts[1:] {
		f = f.Add(part(t, y))
	}
	return f
}

// initialStep is the starting step heuristic of Hairer, Nørsett and
// Wanner (Solving ODEs I, II.4), at the cost of two RHS evaluations.
func (e *Engine) initialStep(t0, tEnd float64, y0 dynamo.State) float64 {
	span := tEnd - t0
	scaled := func(v dynamo.State) float64 {
		w := make([]float64, len(v))
		for i := range v {
			w[i] = v[i] / (e.cfg.ATol + e.cfg.RTol*math.Abs(y0[i]))
		}
		return rms(w)
	}

	f0 := e.derive(t0, y0)
	d0, d1 := scaled(y0), scaled(f0)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	f1 := e.derive(t0+h0, y0.AddScaled(h0, f0))
	d2 := scaled(f1.Sub(f0)) / h0

	var h1 float64
	if dm := math.Max(d1, d2); dm <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/dm, 1/float64(e.scheme.Order()+1))
	}

	h := math.Min(100*h0, h1)
	if e.cfg.MaxStep > 0 {
		h = math.Min(h, e.cfg.MaxStep)
	}
	if math.IsNaN(h) || h <= 0 {
		h = 1e-6 * span
	}
	return math.Min(h, span)
}
