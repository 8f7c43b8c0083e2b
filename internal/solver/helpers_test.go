package solver_test

import (
	"context"
	"math"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/props"
	"github.com/san-kum/imexrk/internal/solver"
	"github.com/san-kum/imexrk/internal/tableau"
)

type attempt struct {
	accepted bool
	t0, t1   float64
	h        float64
	errNorm  float64
	number   int
	y0, y1   dynamo.State
}

// recorder keeps every published step.
type recorder struct {
	required []string
	began    int
	ended    int
	steps    []attempt
	failAt   int
	failErr  error
	onStep   func(*props.Holder) error
}

func (r *recorder) Required() []string {
	if r.required != nil {
		return r.required
	}
	return []string{props.FinalTime, props.FinalValues, props.StepAccepted}
}

func (r *recorder) BeginStepping(float64, dynamo.State, *props.Holder) error {
	r.began++
	return nil
}

func (r *recorder) Step(h *props.Holder) error {
	var a attempt
	var err error
	if a.accepted, err = h.Bool(props.StepAccepted); err != nil {
		return err
	}
	if a.t0, err = h.Real(props.InitialTime); err != nil {
		return err
	}
	if a.t1, err = h.Real(props.FinalTime); err != nil {
		return err
	}
	if a.h, err = h.Real(props.StepSize); err != nil {
		return err
	}
	if a.errNorm, err = h.Real(props.ErrorNorm); err != nil {
		return err
	}
	if a.number, err = h.Int(props.StepNumber); err != nil {
		return err
	}
	if a.y0, err = h.Vector(props.InitialValues); err != nil {
		return err
	}
	if a.y1, err = h.Vector(props.FinalValues); err != nil {
		return err
	}
	r.steps = append(r.steps, a)

	if r.onStep != nil {
		if err := r.onStep(h); err != nil {
			return err
		}
	}
	if r.failAt > 0 && a.number == r.failAt {
		return r.failErr
	}
	return nil
}

func (r *recorder) EndStepping() error {
	r.ended++
	return nil
}

func (r *recorder) accepted() []attempt {
	var out []attempt
	for _, a := range r.steps {
		if a.accepted {
			out = append(out, a)
		}
	}
	return out
}

func fixed(h float64) solver.Config {
	cfg := solver.DefaultConfig()
	cfg.Adaptive = false
	cfg.H0 = h
	return cfg
}

func mustScheme(name string) tableau.Scheme {
	s, err := tableau.Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// globalError integrates p over its span with a fixed step h and
// returns the max-norm error at the end against the exact solution.
func globalError(p problems.Problem, scheme string, h float64) float64 {
	eng, err := solver.New(p, mustScheme(scheme), fixed(h))
	if err != nil {
		panic(err)
	}
	t0, tEnd := p.Span()
	y, err := eng.Integrate(context.Background(), t0, tEnd, p.Initial())
	if err != nil {
		panic(err)
	}
	exact := p.(problems.Exact).Solution(tEnd)
	e := 0.0
	for i := range y {
		e = math.Max(e, math.Abs(y[i]-exact[i]))
	}
	return e
}

func observedOrder(p problems.Problem, scheme string, h float64) float64 {
	return math.Log2(globalError(p, scheme, h) / globalError(p, scheme, h/2))
}
