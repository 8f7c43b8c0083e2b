package solver_test

import (
	"math"
	"testing"

	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/solver"
	"github.com/stretchr/testify/assert"
)

func TestControllerFactor(t *testing.T) {
	t.Parallel()
	c := solver.DefaultController()

	tests := []struct {
		name     string
		err      float64
		accepted bool
		want     float64
	}{
		{"zero error grows maximally", 0, true, 5},
		{"tiny error is capped", 1e-12, true, 5},
		{"huge error is floored", 1e12, false, 0.2},
		{"unit error", 1, true, 0.9},
		{"nan", math.NaN(), false, 0.2},
		{"inf", math.Inf(1), false, 0.2},
		{"moderate", 1.0 / 32, true, 1.8},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, c.Factor(tt.err, 4, tt.accepted), 1e-12, tt.name)
	}
}

func TestControllerRejectionShrinks(t *testing.T) {
	t.Parallel()
	c := solver.Controller{Safety: 0.95, MinFactor: 0.1, MaxFactor: 4}
	for _, err := range []float64{1.0000001, 1.5, 3, 1e3} {
		assert.Less(t, c.Factor(err, 2, false), 1.0, "err=%g", err)
	}
}

func TestControllerValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, solver.DefaultController().Validate())
	assert.ErrorIs(t, solver.Controller{Safety: 1, MinFactor: 0.2, MaxFactor: 5}.Validate(), dynamo.ErrConfig)
	assert.ErrorIs(t, solver.Controller{Safety: 0.9, MinFactor: 1, MaxFactor: 5}.Validate(), dynamo.ErrConfig)
	assert.ErrorIs(t, solver.Controller{Safety: 0.9, MinFactor: 0.2, MaxFactor: 0.5}.Validate(), dynamo.ErrConfig)
}

func TestScaledError(t *testing.T) {
	t.Parallel()

	y0 := dynamo.State{1, -2}
	y1 := dynamo.State{2, -1}
	yHat := dynamo.State{2.003, -1.004}

	// scales: 1e-3 + 1e-3·2 = 3e-3 for both components
	rms := solver.ScaledError(y0, y1, yHat, 1e-3, 1e-3, solver.NormRMS)
	assert.InDelta(t, math.Sqrt((1+16.0/9)/2), rms, 1e-9)

	mx := solver.ScaledError(y0, y1, yHat, 1e-3, 1e-3, solver.NormMax)
	assert.InDelta(t, 4.0/3, mx, 1e-9)

	assert.True(t, math.IsNaN(solver.ScaledError(y0, dynamo.State{math.NaN(), 0}, yHat, 1e-3, 1e-3, solver.NormRMS)))
	assert.Zero(t, solver.ScaledError(nil, nil, nil, 1, 1, solver.NormRMS))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, solver.DefaultConfig().Validate())

	mutations := map[string]func(*solver.Config){
		"no tolerance":   func(c *solver.Config) { c.ATol, c.RTol = 0, 0 },
		"negative atol":  func(c *solver.Config) { c.ATol = -1 },
		"unknown norm":   func(c *solver.Config) { c.Norm = "l1" },
		"newton iter":    func(c *solver.Config) { c.Newton.MaxIter = 0 },
		"newton tol":     func(c *solver.Config) { c.Newton.Tol = 0 },
		"max rejects":    func(c *solver.Config) { c.MaxRejects = 0 },
		"inverted steps": func(c *solver.Config) { c.MinStep, c.MaxStep = 1, 0.5 },
		"bad safety":     func(c *solver.Config) { c.Controller.Safety = 2 },
	}
	for name, mutate := range mutations {
		cfg := solver.DefaultConfig()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), dynamo.ErrConfig, name)
	}
}
