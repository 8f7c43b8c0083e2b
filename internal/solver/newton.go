package solver

import (
	"fmt"

	"github.com/san-kum/imexrk/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

type jacobianFunc func(t float64, z, fz dynamo.State) *mat.Dense

// stageSolver runs the simplified Newton iteration for
//
//	k = f(t, base + hγ k)
//
// with the linear correction (I − hγJ) Δk = f(t, base + hγk) − k.
type stageSolver struct {
	cfg      NewtonConfig
	f        dynamo.Func
	jacobian jacobianFunc
	stats    *Stats
}

func (s *stageSolver) solve(t float64, base dynamo.State, hg float64) (dynamo.State, error) {
	n := len(base)
	k := s.f(t, base)
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: initial guess at t=%g", dynamo.ErrNonFinite, t)
	}

	var lu mat.LU
	m := mat.NewDense(n, n, nil)
	dk := mat.NewVecDense(n, nil)

	for iter := 1; iter <= s.cfg.MaxIter; iter++ {
		s.stats.NewtonIters++
		z := base.AddScaled(hg, k)
		fz := s.f(t, z)
		if !fz.IsValid() {
			return nil, fmt.Errorf("%w: stage derivative at t=%g", dynamo.ErrNonFinite, t)
		}

		if iter == 1 || !s.cfg.FreezeJacobian {
			s.stats.JacobianEvals++
			j := s.jacobian(t, z, fz)
			m.Scale(-hg, j)
			for i := 0; i < n; i++ {
				m.Set(i, i, m.At(i, i)+1)
			}
			lu.Factorize(m)
		}

		r := mat.NewVecDense(n, fz.Sub(k))
		if err := lu.SolveVecTo(dk, false, r); err != nil {
			return nil, fmt.Errorf("%w: iteration matrix: %v", dynamo.ErrConvergence, err)
		}

		delta := dk.RawVector().Data
		k = k.Add(delta)
		if !k.IsValid() {
			return nil, fmt.Errorf("%w: newton update at t=%g", dynamo.ErrNonFinite, t)
		}
		if rms(delta) <= s.cfg.Tol {
			return k, nil
		}
	}
	return nil, fmt.Errorf("%w: %d iterations at t=%g", dynamo.ErrConvergence, s.cfg.MaxIter, t)
}
