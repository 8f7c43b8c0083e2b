package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/imexrk/internal/config"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/modules"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/solver"
	"github.com/san-kum/imexrk/internal/storage"
	"github.com/san-kum/imexrk/internal/tableau"
)

// Result is the outcome of one run.
type Result struct {
	Y          dynamo.State
	Trajectory modules.Trajectory
	Stats      solver.Stats
	Steps      modules.StepSummary
	// GlobalError is the max-norm error at tEnd, NaN without an exact
	// solution.
	GlobalError float64
}

// Metrics flattens the counters for storage.
func (r *Result) Metrics() map[string]float64 {
	m := map[string]float64{
		"accepted":        float64(r.Stats.Accepted),
		"rejected":        float64(r.Stats.Rejected),
		"rhs_evals":       float64(r.Stats.RHSEvals),
		"jacobian_evals":  float64(r.Stats.JacobianEvals),
		"newton_iters":    float64(r.Stats.NewtonIters),
		"newton_failures": float64(r.Stats.NewtonFailures),
		"min_step":        r.Steps.MinStep,
		"max_step":        r.Steps.MaxStep,
		"mean_step":       r.Steps.MeanStep,
		"max_error_norm":  r.Steps.MaxErrorNorm,
	}
	if !math.IsNaN(r.GlobalError) {
		m["global_error"] = r.GlobalError
	}
	return m
}

// Experiment wires a configuration to an engine with the output modules
// it asks for. More modules can be added through Engine before Run.
type Experiment struct {
	cfg      *config.Config
	problem  problems.Problem
	scheme   tableau.Scheme
	engine   *solver.Engine
	t0, tEnd float64

	recorder *modules.Recorder
	sampler  *modules.DenseSampler
	steps    *modules.StepStats
}

func New(reg *Registry, cfg *config.Config, opts ...solver.Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	problem, err := reg.GetProblem(cfg.Problem)
	if err != nil {
		return nil, err
	}
	if err := problems.Apply(problem, cfg.Params); err != nil {
		return nil, err
	}
	scheme, err := reg.GetScheme(cfg.Scheme)
	if err != nil {
		return nil, err
	}
	engine, err := solver.New(problem, scheme, cfg.Solver(), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s with %s: %w", problem.Name(), scheme.Name(), err)
	}

	e := &Experiment{
		cfg:     cfg,
		problem: problem,
		scheme:  scheme,
		engine:  engine,
		steps:   modules.NewStepStats(),
	}
	e.t0, e.tEnd = problem.Span()
	if t0, tEnd, ok := cfg.Span(); ok {
		e.t0, e.tEnd = t0, tEnd
	}

	var out solver.Module
	if cfg.Output.DenseSamples > 0 {
		e.sampler = modules.NewDenseSampler(cfg.Output.DenseSamples)
		out = e.sampler
	} else {
		e.recorder = modules.NewRecorder()
		out = e.recorder
	}
	for _, m := range []solver.Module{out, e.steps} {
		if err := engine.Register(m); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Experiment) Engine() *solver.Engine    { return e.engine }
func (e *Experiment) Problem() problems.Problem { return e.problem }
func (e *Experiment) Scheme() tableau.Scheme    { return e.scheme }
func (e *Experiment) Span() (float64, float64)  { return e.t0, e.tEnd }
func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Initial() dynamo.State     { return e.problem.Initial() }

// Run integrates the problem over its span. A failed run still returns
// the partial result alongside the error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	y, err := e.engine.Integrate(ctx, e.t0, e.tEnd, e.problem.Initial())
	return e.Collect(y), err
}

// Collect assembles the result of a run driven outside Run, for example
// by the terminal monitor.
func (e *Experiment) Collect(y dynamo.State) *Result {
	res := &Result{
		Y:           y,
		Stats:       e.engine.Stats(),
		Steps:       e.steps.Summary(),
		GlobalError: math.NaN(),
	}
	if e.sampler != nil {
		res.Trajectory = e.sampler.Trajectory()
	} else {
		res.Trajectory = e.recorder.Trajectory()
	}

	if exact, ok := e.problem.(problems.Exact); ok && y != nil {
		want := exact.Solution(e.tEnd)
		res.GlobalError = 0
		for i := range y {
			res.GlobalError = math.Max(res.GlobalError, math.Abs(y[i]-want[i]))
		}
	}
	return res
}

// Metadata describes a finished run for the run store.
func (e *Experiment) Metadata(res *Result) storage.RunMetadata {
	params := map[string]float64{}
	if c, ok := e.problem.(problems.Configurable); ok {
		params = c.Params()
	}
	return storage.RunMetadata{
		Problem:  e.problem.Name(),
		Scheme:   e.scheme.Name(),
		Params:   params,
		T0:       e.t0,
		TEnd:     e.tEnd,
		Adaptive: e.cfg.Adaptive,
		H0:       e.cfg.H0,
		ATol:     e.cfg.Tolerances.ATol,
		RTol:     e.cfg.Tolerances.RTol,
		Dense:    e.sampler != nil,
		Metrics:  res.Metrics(),
	}
}
