// Package sweep runs families of integrations concurrently: fixed-step
// order studies and parameter sweeps.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/experiment"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/solver"
	"golang.org/x/sync/errgroup"
)

// OrderStudy integrates one problem with a fixed step H, H/2, ...,
// H/2^(Levels-1) and compares the end states against the exact solution
// or, without one, an adaptive reference run.
type OrderStudy struct {
	Problem string
	Params  map[string]float64
	Scheme  string
	H       float64
	Levels  int
	// TEnd overrides the end of the problem's span when positive.
	TEnd float64
	// Reference is the scheme of the reference run, dopri54 by default.
	Reference string
	Workers   int
}

type Level struct {
	H     float64
	Error float64
	// Order is log2 of the error ratio to the previous level, NaN on the
	// first level.
	Order float64
	Stats solver.Stats
}

type OrderResult struct {
	Problem  string
	Scheme   string
	Expected int
	Levels   []Level
}

// Observed returns the order estimated from the last two levels.
func (r *OrderResult) Observed() float64 {
	if len(r.Levels) < 2 {
		return math.NaN()
	}
	return r.Levels[len(r.Levels)-1].Order
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

func (s OrderStudy) validate() error {
	if s.H <= 0 || s.Levels < 2 {
		return fmt.Errorf("%w: order study needs h > 0 and at least 2 levels, got h=%g levels=%d", dynamo.ErrConfig, s.H, s.Levels)
	}
	return nil
}

func (s OrderStudy) problem(reg *experiment.Registry) (problems.Problem, float64, float64, error) {
	p, err := reg.GetProblem(s.Problem)
	if err != nil {
		return nil, 0, 0, err
	}
	if err := problems.Apply(p, s.Params); err != nil {
		return nil, 0, 0, err
	}
	t0, tEnd := p.Span()
	if s.TEnd > t0 {
		tEnd = s.TEnd
	}
	return p, t0, tEnd, nil
}

// RunOrder runs every level of the study, at most Workers at a time.
func RunOrder(ctx context.Context, reg *experiment.Registry, study OrderStudy) (*OrderResult, error) {
	if err := study.validate(); err != nil {
		return nil, err
	}
	scheme, err := reg.GetScheme(study.Scheme)
	if err != nil {
		return nil, err
	}

	p, _, tEnd, err := study.problem(reg)
	if err != nil {
		return nil, err
	}
	want, err := study.reference(ctx, reg, p, tEnd)
	if err != nil {
		return nil, fmt.Errorf("reference solution: %w", err)
	}

	levels := lo.Times(study.Levels, func(i int) Level {
		return Level{H: study.H / math.Pow(2, float64(i))}
	})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(study.Workers))
	for i := range levels {
		g.Go(func() error {
			p, t0, tEnd, err := study.problem(reg)
			if err != nil {
				return err
			}
			cfg := solver.DefaultConfig()
			cfg.Adaptive = false
			cfg.H0 = levels[i].H

			eng, err := solver.New(p, scheme, cfg)
			if err != nil {
				return err
			}
			y, err := eng.Integrate(ctx, t0, tEnd, p.Initial())
			if err != nil {
				return fmt.Errorf("h=%g: %w", levels[i].H, err)
			}
			levels[i].Error = maxDiff(y, want)
			levels[i].Stats = eng.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range levels {
		levels[i].Order = math.NaN()
		if i > 0 {
			levels[i].Order = math.Log2(levels[i-1].Error / levels[i].Error)
		}
	}
	return &OrderResult{
		Problem:  p.Name(),
		Scheme:   scheme.Name(),
		Expected: scheme.Order(),
		Levels:   levels,
	}, nil
}

func (s OrderStudy) reference(ctx context.Context, reg *experiment.Registry, p problems.Problem, tEnd float64) (dynamo.State, error) {
	if exact, ok := p.(problems.Exact); ok {
		return exact.Solution(tEnd), nil
	}
	name := s.Reference
	if name == "" {
		name = "dopri54"
	}
	ref, err := reg.GetScheme(name)
	if err != nil {
		return nil, err
	}
	cfg := solver.DefaultConfig()
	cfg.ATol, cfg.RTol = 1e-13, 1e-13
	cfg.MaxRejects = 200

	eng, err := solver.New(p, ref, cfg)
	if err != nil {
		return nil, err
	}
	t0, _ := p.Span()
	return eng.Integrate(ctx, t0, tEnd, p.Initial())
}

func maxDiff(a, b dynamo.State) float64 {
	d := 0.0
	for i := range a {
		d = math.Max(d, math.Abs(a[i]-b[i]))
	}
	return d
}
