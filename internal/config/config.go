package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/solver"
	"github.com/san-kum/imexrk/internal/tableau"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProblem    = "van-der-pol"
	DefaultScheme     = "kc43"
	DefaultTol        = 1e-6
	DefaultMaxRejects = 50
	DefaultSamples    = 200
)

type Config struct {
	Problem string             `yaml:"problem" toml:"problem"`
	Params  map[string]float64 `yaml:"params,omitempty" toml:"params,omitempty"`
	Scheme  string             `yaml:"scheme" toml:"scheme"`
	// T0 and TEnd override the problem's default span when TEnd > T0.
	T0       float64 `yaml:"t0" toml:"t0"`
	TEnd     float64 `yaml:"t_end" toml:"t_end"`
	H0       float64 `yaml:"h0" toml:"h0"`
	Adaptive bool    `yaml:"adaptive" toml:"adaptive"`

	Tolerances ToleranceConfig  `yaml:"tolerances" toml:"tolerances"`
	Controller ControllerConfig `yaml:"controller" toml:"controller"`
	Newton     NewtonConfig     `yaml:"newton" toml:"newton"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
}

type ToleranceConfig struct {
	ATol float64 `yaml:"atol" toml:"atol"`
	RTol float64 `yaml:"rtol" toml:"rtol"`
	Norm string  `yaml:"norm" toml:"norm"`
}

type ControllerConfig struct {
	Safety     float64 `yaml:"safety" toml:"safety"`
	MinFactor  float64 `yaml:"min_factor" toml:"min_factor"`
	MaxFactor  float64 `yaml:"max_factor" toml:"max_factor"`
	MaxRejects int     `yaml:"max_rejects" toml:"max_rejects"`
	MinStep    float64 `yaml:"min_step" toml:"min_step"`
	MaxStep    float64 `yaml:"max_step" toml:"max_step"`
}

type NewtonConfig struct {
	Tol            float64 `yaml:"tol" toml:"tol"`
	MaxIter        int     `yaml:"max_iter" toml:"max_iter"`
	FreezeJacobian bool    `yaml:"freeze_jacobian" toml:"freeze_jacobian"`
}

type OutputConfig struct {
	// DenseSamples is the number of uniform intervals sampled through the
	// interpolant; 0 stores the accepted steps instead.
	DenseSamples   int  `yaml:"dense_samples" toml:"dense_samples"`
	Every          int  `yaml:"every" toml:"every"`
	NotifyRejected bool `yaml:"notify_rejected" toml:"notify_rejected"`
}

func DefaultConfig() *Config {
	def := solver.DefaultConfig()
	return &Config{
		Problem:  DefaultProblem,
		Scheme:   DefaultScheme,
		Adaptive: true,
		Tolerances: ToleranceConfig{
			ATol: DefaultTol,
			RTol: DefaultTol,
			Norm: string(solver.NormRMS),
		},
		Controller: ControllerConfig{
			Safety:     def.Controller.Safety,
			MinFactor:  def.Controller.MinFactor,
			MaxFactor:  def.Controller.MaxFactor,
			MaxRejects: DefaultMaxRejects,
		},
		Newton: NewtonConfig{
			Tol:            def.Newton.Tol,
			MaxIter:        def.Newton.MaxIter,
			FreezeJacobian: def.Newton.FreezeJacobian,
		},
		Output: OutputConfig{
			DenseSamples: DefaultSamples,
			Every:        1,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or, for a .toml extension, TOML file on top of the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", dynamo.ErrConfig, path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Span returns the configured interval and whether it was set.
func (c *Config) Span() (float64, float64, bool) {
	return c.T0, c.TEnd, c.TEnd > c.T0
}

// Solver converts the file layout into an engine configuration.
func (c *Config) Solver() solver.Config {
	return solver.Config{
		H0:       c.H0,
		Adaptive: c.Adaptive,
		ATol:     c.Tolerances.ATol,
		RTol:     c.Tolerances.RTol,
		Norm:     solver.Norm(c.Tolerances.Norm),
		Controller: solver.Controller{
			Safety:    c.Controller.Safety,
			MinFactor: c.Controller.MinFactor,
			MaxFactor: c.Controller.MaxFactor,
		},
		Newton: solver.NewtonConfig{
			Tol:            c.Newton.Tol,
			MaxIter:        c.Newton.MaxIter,
			FreezeJacobian: c.Newton.FreezeJacobian,
		},
		MaxRejects:     c.Controller.MaxRejects,
		MinStep:        c.Controller.MinStep,
		MaxStep:        c.Controller.MaxStep,
		NotifyRejected: c.Output.NotifyRejected,
	}
}

// Validate checks everything that does not depend on the problem.
func (c *Config) Validate() error {
	if c.Problem == "" {
		return fmt.Errorf("%w: no problem selected", dynamo.ErrConfig)
	}
	if _, err := tableau.Lookup(c.Scheme); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrConfig, err)
	}
	if c.TEnd != 0 && c.TEnd <= c.T0 {
		return fmt.Errorf("%w: t_end %g must exceed t0 %g", dynamo.ErrConfig, c.TEnd, c.T0)
	}
	if c.Output.DenseSamples < 0 || c.Output.Every < 1 {
		return fmt.Errorf("%w: output dense_samples=%d every=%d", dynamo.ErrConfig, c.Output.DenseSamples, c.Output.Every)
	}
	return c.Solver().Validate()
}
