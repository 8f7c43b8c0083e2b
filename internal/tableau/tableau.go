// Package tableau holds Butcher tableaux for explicit, diagonally implicit
// and additive (IMEX) Runge-Kutta schemes.
//
// A [Scheme] is immutable once constructed. Coefficients are taken as
// given: no order conditions are verified at construction, only shapes.
// [Check] reports violated consistency conditions on demand.
package tableau

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/imexrk/internal/dense"
	"github.com/san-kum/imexrk/internal/dynamo"
)

// Scheme describes a Runge-Kutta-family method. Parts is 1 for classical
// schemes and 2 for additive ones, where part 0 drives the non-stiff
// field and part 1 the stiff field.
type Scheme interface {
	Name() string
	Stages() int
	Parts() int
	C() []float64
	// A returns the s×s coupling matrix of part p.
	A(p int) [][]float64
	B(p int) []float64
	// BHat returns nil when the scheme has no embedded weights.
	BHat(p int) []float64
	Embedded() bool
	// Implicit reports whether stage i depends on its own value.
	Implicit(i int) bool
	// Diagonal returns the part whose diagonal entry couples stage i to
	// itself, and that entry. gamma is 0 for explicit stages.
	Diagonal(i int) (p int, gamma float64)
	Order() int
	EmbeddedOrder() int
	// FSAL reports whether the last stage of a step equals the first
	// stage of the next accepted step.
	FSAL() bool
	Interpolant() dense.Interpolant
}

// Coefficients is the literal form of one tableau. A holds the lower
// triangle row by row, including the diagonal for implicit stages;
// rows may be shorter than s and are zero-padded.
type Coefficients struct {
	C    []float64
	A    [][]float64
	B    []float64
	BHat []float64
}

func (c Coefficients) stages() int { return len(c.C) }

func (c Coefficients) validate() error {
	s := len(c.C)
	if s == 0 {
		return fmt.Errorf("%w: empty tableau", dynamo.ErrConfig)
	}
	if len(c.A) != s || len(c.B) != s {
		return fmt.Errorf("%w: %d abscissas, %d rows of A, %d weights", dynamo.ErrConfig, s, len(c.A), len(c.B))
	}
	if c.BHat != nil && len(c.BHat) != s {
		return fmt.Errorf("%w: %d embedded weights, want %d", dynamo.ErrConfig, len(c.BHat), s)
	}
	for i, row := range c.A {
		if len(row) > i+1 {
			return fmt.Errorf("%w: row %d couples to a later stage", dynamo.ErrConfig, i)
		}
	}
	return nil
}

// square expands the ragged lower rows into an s×s matrix.
func (c Coefficients) square() [][]float64 {
	s := len(c.C)
	a := make([][]float64, s)
	for i, row := range c.A {
		a[i] = make([]float64, s)
		copy(a[i], row)
	}
	return a
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// RungeKutta is a classical (single-part) scheme: explicit, DIRK or
// ESDIRK depending on its diagonal.
type RungeKutta struct {
	name     string
	order    int
	embOrder int
	c        []float64
	a        [][]float64
	b        []float64
	bHat     []float64
	fsal     bool
	interp   dense.Interpolant
}

// NewRungeKutta builds a classical scheme. A nil interpolant selects
// dense.Linear. embOrder is ignored when coef.BHat is nil.
func NewRungeKutta(name string, order, embOrder int, coef Coefficients, interp dense.Interpolant) (*RungeKutta, error) {
	if err := coef.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if interp == nil {
		interp = dense.Linear{}
	}
	rk := &RungeKutta{
		name:     name,
		order:    order,
		embOrder: embOrder,
		c:        clone(coef.C),
		a:        coef.square(),
		b:        clone(coef.B),
		bHat:     clone(coef.BHat),
		interp:   interp,
	}
	if rk.bHat == nil {
		rk.embOrder = 0
	}
	rk.fsal = rk.detectFSAL()
	return rk, nil
}

func (r *RungeKutta) detectFSAL() bool {
	s := len(r.c)
	if s < 2 || r.c[s-1] != 1 {
		return false
	}
	for i := 0; i < s; i++ {
		if r.a[i][i] != 0 {
			return false
		}
	}
	for j := 0; j < s; j++ {
		if r.a[s-1][j] != r.b[j] {
			return false
		}
	}
	return true
}

func (r *RungeKutta) Name() string         { return r.name }
func (r *RungeKutta) Stages() int          { return len(r.c) }
func (r *RungeKutta) Parts() int           { return 1 }
func (r *RungeKutta) C() []float64         { return r.c }
func (r *RungeKutta) A(int) [][]float64    { return r.a }
func (r *RungeKutta) B(int) []float64      { return r.b }
func (r *RungeKutta) BHat(int) []float64   { return r.bHat }
func (r *RungeKutta) Embedded() bool       { return r.bHat != nil }
func (r *RungeKutta) Implicit(i int) bool  { return r.a[i][i] != 0 }
func (r *RungeKutta) Order() int           { return r.order }
func (r *RungeKutta) EmbeddedOrder() int   { return r.embOrder }
func (r *RungeKutta) FSAL() bool           { return r.fsal }

func (r *RungeKutta) Interpolant() dense.Interpolant { return r.interp }
func (r *RungeKutta) Diagonal(i int) (int, float64)  { return 0, r.a[i][i] }

// Additive pairs an explicit tableau (non-stiff part) with a diagonally
// implicit one (stiff part) sharing stage count and abscissas.
type Additive struct {
	name     string
	order    int
	embOrder int
	c        []float64
	a        [2][][]float64
	b        [2][]float64
	bHat     [2][]float64
	interp   dense.Interpolant
}

// NewAdditive builds an additive scheme. Only the stiff tableau may have
// a non-zero diagonal. A nil interpolant selects dense.Linear.
func NewAdditive(name string, order, embOrder int, explicit, implicit Coefficients, interp dense.Interpolant) (*Additive, error) {
	if err := explicit.validate(); err != nil {
		return nil, fmt.Errorf("%s explicit part: %w", name, err)
	}
	if err := implicit.validate(); err != nil {
		return nil, fmt.Errorf("%s implicit part: %w", name, err)
	}
	if explicit.stages() != implicit.stages() {
		return nil, fmt.Errorf("%w: %s has %d explicit and %d implicit stages",
			dynamo.ErrConfig, name, explicit.stages(), implicit.stages())
	}
	for i := range explicit.C {
		if explicit.C[i] != implicit.C[i] {
			return nil, fmt.Errorf("%w: %s abscissa %d differs between parts", dynamo.ErrConfig, name, i)
		}
	}
	if (explicit.BHat == nil) != (implicit.BHat == nil) {
		return nil, fmt.Errorf("%w: %s has embedded weights on one part only", dynamo.ErrConfig, name)
	}

	ae := explicit.square()
	for i := range ae {
		if ae[i][i] != 0 {
			return nil, fmt.Errorf("%w: %s explicit part is implicit at stage %d", dynamo.ErrConfig, name, i)
		}
	}
	if interp == nil {
		interp = dense.Linear{}
	}

	ark := &Additive{
		name:     name,
		order:    order,
		embOrder: embOrder,
		c:        clone(explicit.C),
		a:        [2][][]float64{ae, implicit.square()},
		b:        [2][]float64{clone(explicit.B), clone(implicit.B)},
		bHat:     [2][]float64{clone(explicit.BHat), clone(implicit.BHat)},
		interp:   interp,
	}
	if explicit.BHat == nil {
		ark.embOrder = 0
	}
	return ark, nil
}

func (a *Additive) Name() string          { return a.name }
func (a *Additive) Stages() int           { return len(a.c) }
func (a *Additive) Parts() int            { return 2 }
func (a *Additive) C() []float64          { return a.c }
func (a *Additive) A(p int) [][]float64   { return a.a[p] }
func (a *Additive) B(p int) []float64     { return a.b[p] }
func (a *Additive) BHat(p int) []float64  { return a.bHat[p] }
func (a *Additive) Embedded() bool        { return a.bHat[0] != nil }
func (a *Additive) Implicit(i int) bool   { return a.a[1][i][i] != 0 }
func (a *Additive) Order() int            { return a.order }
func (a *Additive) EmbeddedOrder() int    { return a.embOrder }
func (a *Additive) FSAL() bool            { return false }

func (a *Additive) Interpolant() dense.Interpolant { return a.interp }
func (a *Additive) Diagonal(i int) (int, float64)  { return 1, a.a[1][i][i] }

// Explicit reports whether no stage of s needs a nonlinear solve.
func Explicit(s Scheme) bool {
	for i := 0; i < s.Stages(); i++ {
		if s.Implicit(i) {
			return false
		}
	}
	return true
}

// Kind is a short classification used in listings.
func Kind(s Scheme) string {
	switch {
	case s.Parts() == 2:
		return "imex"
	case Explicit(s):
		return "explicit"
	default:
		return "dirk"
	}
}

// Check verifies the first-order consistency conditions of every part:
// row sums of A equal c, and b and b̂ each sum to one.
func Check(s Scheme) error {
	const tol = 1e-12
	var errs []error
	c := s.C()
	for p := 0; p < s.Parts(); p++ {
		a := s.A(p)
		for i := range a {
			sum := 0.0
			for _, v := range a[i] {
				sum += v
			}
			if math.Abs(sum-c[i]) > tol {
				errs = append(errs, fmt.Errorf("part %d row %d: sum %.17g != c %.17g", p, i, sum, c[i]))
			}
		}
		if d := math.Abs(total(s.B(p)) - 1); d > tol {
			errs = append(errs, fmt.Errorf("part %d: weights sum to 1%+.3g", p, d))
		}
		if bh := s.BHat(p); bh != nil {
			if d := math.Abs(total(bh) - 1); d > tol {
				errs = append(errs, fmt.Errorf("part %d: embedded weights sum to 1%+.3g", p, d))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", s.Name(), errors.Join(errs...))
	}
	return nil
}

func total(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}
