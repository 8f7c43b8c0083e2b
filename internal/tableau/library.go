package tableau

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/dense"
)

var registry = map[string]func() Scheme{
	"euler":          func() Scheme { return Euler() },
	"heun21":         func() Scheme { return Heun21() },
	"midpoint":       func() Scheme { return Midpoint() },
	"rk4":            func() Scheme { return RK4() },
	"bs32":           func() Scheme { return BogackiShampine32() },
	"dopri54":        func() Scheme { return DormandPrince54() },
	"tsit5":          func() Scheme { return Tsitouras5() },
	"backward-euler": func() Scheme { return BackwardEuler() },
	"crank-nicolson": func() Scheme { return CrankNicolson() },
	"esdirk32":       func() Scheme { return ESDIRK32() },
	"esdirk43":       func() Scheme { return ESDIRK43() },
	"esdirk54":       func() Scheme { return ESDIRK54() },
	"kc32":           func() Scheme { return KC32() },
	"kc43":           func() Scheme { return KC43() },
	"kc54":           func() Scheme { return KC54() },
}

// Lookup returns a fresh scheme by registry name.
func Lookup(name string) (Scheme, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown scheme: %s", name)
	}
	return fn(), nil
}

// Names lists the registry in sorted order.
func Names() []string {
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}

func mustRK(name string, order, embOrder int, coef Coefficients, interp dense.Interpolant) *RungeKutta {
	rk, err := NewRungeKutta(name, order, embOrder, coef, interp)
	if err != nil {
		panic(err)
	}
	return rk
}

func mustARK(name string, order, embOrder int, explicit, implicit Coefficients, interp dense.Interpolant) *Additive {
	ark, err := NewAdditive(name, order, embOrder, explicit, implicit, interp)
	if err != nil {
		panic(err)
	}
	return ark
}

// secondOrderDense is the continuous extension
//
//	w_i(θ) = θ δ_i1 + θ² (b_i − δ_i1)
//
// valid for any scheme with c_1 = 0 and Σ b_i c_i = 1/2.
func secondOrderDense(b []float64) *dense.Polynomial {
	coeffs := make([][]float64, len(b))
	for i, bi := range b {
		coeffs[i] = []float64{0, bi}
	}
	coeffs[0][0] = 1
	coeffs[0][1] -= 1
	return dense.NewPolynomial(coeffs)
}

// hermiteDense is the cubic Hermite extension through y0, y1, f(y0) and
// f(y1) for FSAL schemes, where k_1 = f(y0) and k_s = f(y1).
func hermiteDense(b []float64) *dense.Polynomial {
	s := len(b)
	coeffs := make([][]float64, s)
	for i, bi := range b {
		coeffs[i] = []float64{0, 3 * bi, -2 * bi}
	}
	coeffs[0][0] += 1
	coeffs[0][1] -= 2
	coeffs[0][2] += 1
	coeffs[s-1][1] -= 1
	coeffs[s-1][2] += 1
	return dense.NewPolynomial(coeffs)
}

func Euler() *RungeKutta {
	return mustRK("euler", 1, 0, Coefficients{
		C: []float64{0},
		A: [][]float64{{}},
		B: []float64{1},
	}, dense.NewPolynomial([][]float64{{1}}))
}

// Heun21 is Heun's method with forward Euler as embedded estimate.
func Heun21() *RungeKutta {
	b := []float64{0.5, 0.5}
	return mustRK("heun21", 2, 1, Coefficients{
		C:    []float64{0, 1},
		A:    [][]float64{{}, {1}},
		B:    b,
		BHat: []float64{1, 0},
	}, secondOrderDense(b))
}

func Midpoint() *RungeKutta {
	b := []float64{0, 1}
	return mustRK("midpoint", 2, 0, Coefficients{
		C: []float64{0, 0.5},
		A: [][]float64{{}, {0.5}},
		B: b,
	}, secondOrderDense(b))
}

// RK4 is the classical fourth-order method with its third-order
// continuous extension.
func RK4() *RungeKutta {
	return mustRK("rk4", 4, 0, Coefficients{
		C: []float64{0, 0.5, 0.5, 1},
		A: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		B: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
	}, dense.NewPolynomial([][]float64{
		{1, -3.0 / 2.0, 2.0 / 3.0},
		{0, 1, -2.0 / 3.0},
		{0, 1, -2.0 / 3.0},
		{0, -1.0 / 2.0, 2.0 / 3.0},
	}))
}

// BogackiShampine32 is the 3(2) FSAL pair of Bogacki and Shampine.
func BogackiShampine32() *RungeKutta {
	b := []float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0, 0}
	return mustRK("bs32", 3, 2, Coefficients{
		C: []float64{0, 0.5, 0.75, 1},
		A: [][]float64{
			{},
			{0.5},
			{0, 0.75},
			{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
		},
		B:    b,
		BHat: []float64{7.0 / 24.0, 1.0 / 4.0, 1.0 / 3.0, 1.0 / 8.0},
	}, hermiteDense(b))
}

// DormandPrince54 is the 5(4) FSAL pair of Dormand and Prince with its
// fourth-order dense output.
func DormandPrince54() *RungeKutta {
	return mustRK("dopri54", 5, 4, Coefficients{
		C: []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
		A: [][]float64{
			{},
			{1.0 / 5.0},
			{3.0 / 40.0, 9.0 / 40.0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
			{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
		},
		B: []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		BHat: []float64{
			5179.0 / 57600.0, 0, 7571.0 / 16695.0, 393.0 / 640.0,
			-92097.0 / 339200.0, 187.0 / 2100.0, 1.0 / 40.0,
		},
	}, dense.NewDormandPrince())
}

// Tsitouras5 is the 5(4) FSAL pair of Tsitouras (2011).
func Tsitouras5() *RungeKutta {
	b := []float64{
		0.09646076681806523, 0.01, 0.4798896504144996, 1.379008574103742,
		-3.290069515436081, 2.324710524099774, 0,
	}
	// b − b̂
	btilde := []float64{
		0.001780011052226, 0.000816434459657, -0.007880878010262, 0.144711007173263,
		-0.582357165452555, 0.458082105929187, -1.0 / 66.0,
	}
	bHat := make([]float64, len(b))
	for i := range b {
		bHat[i] = b[i] - btilde[i]
	}
	return mustRK("tsit5", 5, 4, Coefficients{
		C: []float64{0, 0.161, 0.327, 0.9, 0.9800255409045097, 1, 1},
		A: [][]float64{
			{},
			{0.161},
			{-0.008480655492356924, 0.335480655492357},
			{2.8971530571054935, -6.359448489975075, 4.362295432869581},
			{5.325864828439257, -11.748883564062828, 7.4955393428898365, -0.09249506636175525},
			{5.86145544294642, -12.92096931784711, 8.159367898576159, -0.071584973281401, -0.028269050394068383},
			b[:6],
		},
		B:    b,
		BHat: bHat,
	}, hermiteDense(b))
}

func BackwardEuler() *RungeKutta {
	return mustRK("backward-euler", 1, 0, Coefficients{
		C: []float64{1},
		A: [][]float64{{1}},
		B: []float64{1},
	}, dense.NewPolynomial([][]float64{{1}}))
}

// CrankNicolson is the trapezoidal rule written as a two-stage ESDIRK,
// with forward Euler as embedded estimate.
func CrankNicolson() *RungeKutta {
	b := []float64{0.5, 0.5}
	return mustRK("crank-nicolson", 2, 1, Coefficients{
		C:    []float64{0, 1},
		A:    [][]float64{{}, {0.5, 0.5}},
		B:    b,
		BHat: []float64{1, 0},
	}, secondOrderDense(b))
}

// ESDIRK32 is the implicit tableau of ARK3(2)4L[2]SA used on its own.
func ESDIRK32() *RungeKutta {
	_, implicit, d := kc32Coefficients()
	return mustRK("esdirk32", 3, 2, implicit, dense.NewPolynomial(d))
}

// ESDIRK43 is the implicit tableau of ARK4(3)6L[2]SA used on its own.
func ESDIRK43() *RungeKutta {
	_, implicit, d := kc43Coefficients()
	return mustRK("esdirk43", 4, 3, implicit, dense.NewPolynomial(d))
}

// ESDIRK54 is the implicit tableau of ARK5(4)8L[2]SA used on its own.
func ESDIRK54() *RungeKutta {
	_, implicit, d := kc54Coefficients()
	return mustRK("esdirk54", 5, 4, implicit, dense.NewPolynomial(d))
}

// KC32 is ARK3(2)4L[2]SA of Kennedy and Carpenter (2003).
func KC32() *Additive {
	explicit, implicit, d := kc32Coefficients()
	return mustARK("kc32", 3, 2, explicit, implicit, kcDense(d))
}

// KC43 is ARK4(3)6L[2]SA of Kennedy and Carpenter (2003).
func KC43() *Additive {
	explicit, implicit, d := kc43Coefficients()
	return mustARK("kc43", 4, 3, explicit, implicit, kcDense(d))
}

// KC54 is ARK5(4)8L[2]SA of Kennedy and Carpenter (2003).
func KC54() *Additive {
	explicit, implicit, d := kc54Coefficients()
	return mustARK("kc54", 5, 4, explicit, implicit, kcDense(d))
}

// kcDense builds the additive interpolant; both parts of the
// Kennedy-Carpenter pairs share one dense-output table.
func kcDense(d [][]float64) *dense.Additive {
	add, err := dense.NewAdditive(dense.NewPolynomial(d), dense.NewPolynomial(d))
	if err != nil {
		panic(err)
	}
	return add
}
