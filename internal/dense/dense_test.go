package dense_test

import (
	"math"
	"testing"

	"github.com/san-kum/imexrk/internal/dense"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/tableau"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTheta(t *testing.T) {
	t.Parallel()

	for _, theta := range []float64{0, 0.5, 1} {
		assert.NoError(t, dense.CheckTheta(theta))
	}
	for _, theta := range []float64{-1e-9, 1.0000001, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, dense.CheckTheta(theta), dynamo.ErrRange, "theta=%g", theta)
	}
}

func TestLinear(t *testing.T) {
	t.Parallel()

	y0 := dynamo.State{0, 10}
	y1 := dynamo.State{2, 20}
	got, err := dense.Linear{}.Evaluate(y0, y1, 0.25, 1, dynamo.StageValues{})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 12.5}, got, 1e-15)
	assert.Equal(t, dynamo.State{0, 10}, y0, "input mutated")
}

func TestPolynomialWeights(t *testing.T) {
	t.Parallel()

	// RK4 continuous extension
	p := dense.NewPolynomial([][]float64{
		{1, -3.0 / 2.0, 2.0 / 3.0},
		{0, 1, -2.0 / 3.0},
		{0, 1, -2.0 / 3.0},
		{0, -1.0 / 2.0, 2.0 / 3.0},
	})
	assert.Equal(t, 4, p.Stages())
	assert.Equal(t, 3, p.Degree())

	w := p.Weights(1)
	assert.InDeltaSlice(t, []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6}, w, 1e-15)

	w = p.Weights(0.5)
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	assert.InDelta(t, 0.5, sum, 1e-15)
}

func TestPolynomialStageLayout(t *testing.T) {
	t.Parallel()

	p := dense.NewPolynomial([][]float64{{1}})
	y0 := dynamo.State{1}
	k := []dynamo.State{{1}}

	_, err := p.Evaluate(y0, nil, 0.5, 0.1, dynamo.PairStages(k, k))
	assert.ErrorIs(t, err, dense.ErrStageLayout)

	_, err = p.Evaluate(y0, nil, 0.5, 0.1, dynamo.SingleStages([]dynamo.State{{1}, {2}}))
	assert.ErrorIs(t, err, dense.ErrStageLayout)

	got, err := p.Evaluate(y0, nil, 0.5, 0.1, dynamo.SingleStages(k))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.05}, got, 1e-15)
}

func TestAdditiveStageLayout(t *testing.T) {
	t.Parallel()

	_, err := dense.NewAdditive(dense.NewPolynomial([][]float64{{1}}), dense.NewPolynomial([][]float64{{1}, {0}}))
	assert.ErrorIs(t, err, dense.ErrStageLayout)

	add, err := dense.NewAdditive(dense.NewPolynomial([][]float64{{1}}), dense.NewPolynomial([][]float64{{1}}))
	require.NoError(t, err)

	_, err = add.Evaluate(dynamo.State{0}, nil, 0.5, 1, dynamo.SingleStages([]dynamo.State{{1}}))
	assert.ErrorIs(t, err, dense.ErrStageLayout)

	got, err := add.Evaluate(dynamo.State{0}, nil, 0.5, 1, dynamo.PairStages([]dynamo.State{{1}}, []dynamo.State{{3}}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2}, got, 1e-15)
}

// stages of one explicit step of y' = y.
func exponentialStages(s tableau.Scheme, y0, h float64) []dynamo.State {
	a := s.A(0)
	k := make([]dynamo.State, s.Stages())
	for i := range k {
		z := y0
		for j := 0; j < i; j++ {
			z += h * a[i][j] * k[j][0]
		}
		k[i] = dynamo.State{z}
	}
	return k
}

func TestDormandPrinceAccuracy(t *testing.T) {
	t.Parallel()

	s := tableau.DormandPrince54()
	const h = 0.1
	k := exponentialStages(s, 1, h)
	y1 := dynamo.State{1}
	for i, bi := range s.B(0) {
		y1[0] += h * bi * k[i][0]
	}

	dp := dense.NewDormandPrince()
	sum := 0.0
	for _, w := range dp.Weights(0.3) {
		sum += w
	}
	assert.InDelta(t, 0.3, sum, 1e-14)

	for _, theta := range []float64{0.25, 0.5, 0.75} {
		got, err := dp.Evaluate(dynamo.State{1}, y1, theta, h, dynamo.SingleStages(k))
		require.NoError(t, err)
		assert.InDelta(t, math.Exp(theta*h), got[0], 1e-8, "θ=%g", theta)
	}
}

func TestHermiteDenseAccuracy(t *testing.T) {
	t.Parallel()

	for _, s := range []tableau.Scheme{tableau.BogackiShampine32(), tableau.Tsitouras5(), tableau.RK4()} {
		const h = 0.05
		k := exponentialStages(s, 1, h)
		got, err := s.Interpolant().Evaluate(dynamo.State{1}, nil, 0.5, h, dynamo.SingleStages(k))
		require.NoError(t, err)
		assert.InDelta(t, math.Exp(0.5*h), got[0], 1e-6, s.Name())
	}
}
