package config

import (
	"slices"

	"github.com/samber/lo"
)

func preset(apply func(*Config)) *Config {
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

var Presets = map[string]map[string]*Config{
	"arenstorf": {
		"orbit": preset(func(c *Config) {
			c.Problem, c.Scheme = "arenstorf", "dopri54"
			c.H0 = 1e-2
			c.Tolerances = ToleranceConfig{ATol: 1e-10, RTol: 1e-10, Norm: "rms"}
			c.Output.DenseSamples = 1000
		}),
		"tsit5": preset(func(c *Config) {
			c.Problem, c.Scheme = "arenstorf", "tsit5"
			c.Tolerances = ToleranceConfig{ATol: 1e-10, RTol: 1e-10, Norm: "rms"}
			c.Output.DenseSamples = 1000
		}),
	},
	"van-der-pol": {
		"imex": preset(func(c *Config) {
			c.Problem, c.Scheme = "van-der-pol", "kc43"
		}),
		"stiff": preset(func(c *Config) {
			c.Problem, c.Scheme = "van-der-pol", "kc54"
			c.Params = map[string]float64{"mu": 1000}
			c.TEnd = 3000
			c.Tolerances.ATol, c.Tolerances.RTol = 1e-5, 1e-5
		}),
		"explicit": preset(func(c *Config) {
			c.Problem, c.Scheme = "van-der-pol", "dopri54"
		}),
	},
	"prothero-robinson": {
		"stiff": preset(func(c *Config) {
			c.Problem, c.Scheme = "prothero-robinson", "kc43"
			c.Params = map[string]float64{"lambda": -1e4}
		}),
		"fixed": preset(func(c *Config) {
			c.Problem, c.Scheme = "prothero-robinson", "kc32"
			c.Params = map[string]float64{"lambda": -1e4}
			c.Adaptive, c.H0 = false, 0.01
		}),
	},
	"decay-chain": {
		"conserve": preset(func(c *Config) {
			c.Problem, c.Scheme = "decay-chain", "esdirk43"
			c.Params = map[string]float64{"n": 8}
		}),
	},
	"brusselator": {
		"imex": preset(func(c *Config) {
			c.Problem, c.Scheme = "brusselator", "kc43"
			c.Tolerances.ATol, c.Tolerances.RTol = 1e-8, 1e-8
		}),
	},
	"oscillator": {
		"rk4": preset(func(c *Config) {
			c.Problem, c.Scheme = "oscillator", "rk4"
			c.Adaptive, c.H0 = false, 0.01
		}),
		"crank-nicolson": preset(func(c *Config) {
			c.Problem, c.Scheme = "oscillator", "crank-nicolson"
			c.Adaptive, c.H0 = false, 0.05
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(problem, name string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[name]
	if !ok {
		return nil
	}
	out := *cfg
	out.Params = lo.Assign(cfg.Params)
	return &out
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := lo.Keys(problemPresets)
	slices.Sort(names)
	return names
}

// Problems lists every problem that has presets.
func Problems() []string {
	names := lo.Keys(Presets)
	slices.Sort(names)
	return names
}
