package problems_test

import (
	"math"
	"testing"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/jacobian"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func all() []problems.Problem {
	return []problems.Problem{
		problems.NewArenstorf(),
		problems.NewDecayChain(10),
		problems.NewExponential(2),
		problems.NewOscillator(),
		problems.NewLorenz(),
		problems.NewProtheroRobinson(-10),
		problems.NewVanDerPol(),
		problems.NewBrusselator(),
	}
}

func TestProblemShapes(t *testing.T) {
	t.Parallel()
	for _, p := range all() {
		y0 := p.Initial()
		require.Len(t, y0, p.Size(), p.Name())
		t0, tEnd := p.Span()
		assert.Less(t, t0, tEnd, p.Name())
		dy := p.Derive(t0, y0)
		assert.Len(t, dy, p.Size(), p.Name())
		assert.True(t, dy.IsValid(), p.Name())
	}
}

func TestSplitProblemsSumToDerive(t *testing.T) {
	t.Parallel()
	for _, p := range all() {
		split, ok := p.(dynamo.Additive)
		if !ok {
			continue
		}
		y := p.Initial().AddScaled(0.1, dynamo.State{0.3, -0.2}[:p.Size()])
		want := split.NonStiff(0.4, y).Add(split.Stiff(0.4, y))
		assert.InDeltaSlice(t, want, p.Derive(0.4, y), 1e-15, p.Name())
	}
}

// Analytic Jacobians agree with finite differences of the part they
// describe: Stiff for split problems, Derive otherwise.
func TestAnalyticJacobians(t *testing.T) {
	t.Parallel()
	est := jacobian.New()
	for _, p := range all() {
		jp, ok := p.(dynamo.Jacobian)
		if !ok {
			continue
		}
		f := dynamo.Func(p.Derive)
		if split, ok := p.(dynamo.Additive); ok {
			f = split.Stiff
		}
		y := p.Initial().Clone()
		y[0] += 0.25
		got := jp.Jacobian(0.3, y)
		want := est.Estimate(f, 0.3, y, nil)
		assert.True(t, mat.EqualApprox(got, want, 1e-6), p.Name())
	}
}

func TestDecayChainConservesTotal(t *testing.T) {
	t.Parallel()
	d := problems.NewDecayChain(10)
	y := dynamo.State{0.3, 0.1, 0.2, 0.05, 0.05, 0.1, 0.1, 0.04, 0.03, 0.03}
	assert.InDelta(t, 0, d.Derive(0, y).Sum(), 1e-15)
	assert.Equal(t, 9.0, d.Rate(8))
}

func TestExactSolutions(t *testing.T) {
	t.Parallel()
	for _, p := range all() {
		ex, ok := p.(problems.Exact)
		if !ok {
			continue
		}
		t0, _ := p.Span()
		assert.InDeltaSlice(t, p.Initial(), ex.Solution(t0), 1e-15, p.Name())

		// y'(t) by central differences of the solution
		const tt, dt = 0.7, 1e-5
		fd := ex.Solution(tt + dt).Sub(ex.Solution(tt - dt)).Scale(1 / (2 * dt))
		assert.InDeltaSlice(t, fd, p.Derive(tt, ex.Solution(tt)), 1e-8, p.Name())
	}
}

func TestApplyParams(t *testing.T) {
	t.Parallel()

	p := problems.NewExponential(1)
	require.NoError(t, problems.Apply(p, map[string]float64{"lambda": 4}))
	assert.Equal(t, 4.0, p.Params()["lambda"])
	assert.InDelta(t, math.Exp(-4), p.Solution(1)[0], 1e-15)

	err := problems.Apply(p, map[string]float64{"omega": 1})
	assert.ErrorIs(t, err, dynamo.ErrConfig)

	err = problems.Apply(problems.NewDecayChain(4), map[string]float64{"n": 1})
	assert.ErrorIs(t, err, dynamo.ErrConfig)
}

func TestDecayChainLength(t *testing.T) {
	t.Parallel()

	d := problems.NewDecayChain(4)
	for _, n := range []float64{2.5, 1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, d.SetParam("n", n), dynamo.ErrConfig, "n=%g", n)
		assert.Equal(t, 4, d.Size())
	}

	require.NoError(t, d.SetParam("n", 6))
	assert.Equal(t, 6, d.Size())
	assert.Len(t, d.Initial(), 6)
}
