package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/avast/retry-go/v4"
	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/jacobian"
	"github.com/san-kum/imexrk/internal/props"
	"github.com/san-kum/imexrk/internal/tableau"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var errRejected = errors.New("solver: step rejected by error test")

// Stats counts the work of the last run.
type Stats struct {
	Accepted       int
	Rejected       int
	RHSEvals       int
	JacobianEvals  int
	NewtonIters    int
	NewtonFailures int
	LastStep       float64
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithEstimator replaces the finite-difference Jacobian estimator used
// when the RHS has no analytic Jacobian.
func WithEstimator(est *jacobian.Estimator) Option {
	return func(e *Engine) { e.est = est }
}

type Engine struct {
	rhs    dynamo.RHS
	scheme tableau.Scheme
	cfg    Config
	log    *zap.Logger
	est    *jacobian.Estimator

	parts   []dynamo.Func
	newton  *stageSolver
	modules []Module
	state   lifecycle
	stats   Stats

	// stage 1 values at the current point, kept across rejections and
	// carried over from the last stage of FSAL schemes
	first []dynamo.State
}

func New(rhs dynamo.RHS, scheme tableau.Scheme, cfg Config, opts ...Option) (*Engine, error) {
	if rhs == nil || scheme == nil {
		return nil, fmt.Errorf("%w: nil system or scheme", dynamo.ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if (!cfg.Adaptive || !scheme.Embedded()) && cfg.H0 <= 0 {
		return nil, fmt.Errorf("%w: fixed-step integration with %s needs h0 > 0", dynamo.ErrConfig, scheme.Name())
	}

	e := &Engine{
		rhs:    rhs,
		scheme: scheme,
		cfg:    cfg,
		log:    zap.NewNop(),
		est:    jacobian.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	count := func(f dynamo.Func) dynamo.Func {
		return func(t float64, y dynamo.State) dynamo.State {
			e.stats.RHSEvals++
			return f(t, y)
		}
	}
	split, additive := rhs.(dynamo.Additive)
	switch {
	case scheme.Parts() == 2 && !additive:
		return nil, fmt.Errorf("%w: additive scheme %s needs a split right-hand side", dynamo.ErrConfig, scheme.Name())
	case scheme.Parts() == 2:
		e.parts = []dynamo.Func{count(split.NonStiff), count(split.Stiff)}
	default:
		e.parts = []dynamo.Func{count(rhs.Derive)}
	}

	implicit := e.parts[len(e.parts)-1]
	e.newton = &stageSolver{
		cfg:      cfg.Newton,
		f:        implicit,
		jacobian: e.jacobianFor(implicit, scheme.Parts() == 1 && additive),
		stats:    &e.stats,
	}
	return e, nil
}

// jacobianFor returns the Jacobian of f. An analytic Jacobian of a split
// RHS covers the stiff part only, so it is ignored when f is the sum.
func (e *Engine) jacobianFor(f dynamo.Func, whole bool) jacobianFunc {
	if jac, ok := dynamo.JacobianOf(e.rhs); ok && !whole {
		return func(t float64, z, _ dynamo.State) *mat.Dense { return jac(t, z) }
	}
	return func(t float64, z, fz dynamo.State) *mat.Dense {
		return e.est.Estimate(f, t, z, fz)
	}
}

func (e *Engine) Scheme() tableau.Scheme { return e.scheme }
func (e *Engine) Config() Config         { return e.cfg }

// Stats returns the counters of the current or last run.
func (e *Engine) Stats() Stats { return e.stats }

// Register adds a module. Modules cannot be added while integrating.
func (e *Engine) Register(m Module) error {
	if e.state == stepping {
		return fmt.Errorf("%w: cannot register a module while %s", dynamo.ErrConfig, e.state)
	}
	if err := checkRequired(len(e.modules), m); err != nil {
		return err
	}
	e.modules = append(e.modules, m)
	return nil
}

func checkRequired(index int, m Module) error {
	if unknown := lo.Without(m.Required(), props.Standard...); len(unknown) > 0 {
		return fmt.Errorf("%w: module %d requires unpublished properties %v", dynamo.ErrConfig, index, unknown)
	}
	return nil
}

func (e *Engine) adaptive() bool {
	return e.cfg.Adaptive && e.scheme.Embedded()
}

func (e *Engine) validateRun(t0, tEnd float64, y0 dynamo.State) error {
	if len(y0) != e.rhs.Size() {
		return fmt.Errorf("%w: %w: state has %d components, system %d",
			dynamo.ErrConfig, dynamo.ErrDimensionMismatch, len(y0), e.rhs.Size())
	}
	if !(tEnd > t0) {
		return fmt.Errorf("%w: empty time span [%g, %g]", dynamo.ErrConfig, t0, tEnd)
	}
	if !y0.IsValid() {
		return fmt.Errorf("%w: initial state is not finite", dynamo.ErrConfig)
	}
	for i, m := range e.modules {
		if err := checkRequired(i, m); err != nil {
			return err
		}
	}
	return nil
}

// Integrate advances y0 from t0 to tEnd and returns y(tEnd). On failure
// it returns the last accepted state together with a *dynamo.StepError,
// or a configuration error before any module is started.
func (e *Engine) Integrate(ctx context.Context, t0, tEnd float64, y0 dynamo.State) (dynamo.State, error) {
	if e.state == stepping {
		return nil, fmt.Errorf("%w: integration already running", dynamo.ErrConfig)
	}
	if err := e.validateRun(t0, tEnd, y0); err != nil {
		return nil, err
	}

	e.stats = Stats{}
	e.first = nil
	e.state = stepping
	defer func() { e.state = finished }()

	e.log.Info("integration started",
		zap.String("scheme", e.scheme.Name()),
		zap.String("system", dynamo.NameOf(e.rhs, "rhs")),
		zap.Float64("t0", t0),
		zap.Float64("tEnd", tEnd),
		zap.Bool("adaptive", e.adaptive()),
	)

	constants := props.New()
	_ = constants.Set(props.Scheme, e.scheme)
	_ = constants.Set(props.FinalTime, tEnd)

	begun := 0
	var err error
	for i, m := range e.modules {
		if err = m.BeginStepping(t0, y0.Clone(), constants); err != nil {
			err = &ModuleError{Index: i, Phase: "begin", Err: err}
			break
		}
		begun++
	}

	y := y0.Clone()
	if err == nil {
		y, err = e.run(ctx, t0, tEnd, y)
	}
	if endErr := e.end(begun); endErr != nil {
		err = errors.Join(err, endErr)
	}

	if err != nil {
		e.log.Error("integration failed", zap.Error(err), zap.Int("accepted", e.stats.Accepted))
		return y, err
	}
	e.log.Info("integration finished",
		zap.Int("accepted", e.stats.Accepted),
		zap.Int("rejected", e.stats.Rejected),
		zap.Int("rhsEvals", e.stats.RHSEvals),
		zap.Int("newtonIters", e.stats.NewtonIters),
	)
	return y, nil
}

func (e *Engine) end(begun int) error {
	var errs []error
	for i := 0; i < begun; i++ {
		if err := e.modules[i].EndStepping(); err != nil {
			errs = append(errs, &ModuleError{Index: i, Phase: "end", Err: err})
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) run(ctx context.Context, t0, tEnd float64, y dynamo.State) (dynamo.State, error) {
	t := t0
	h := e.firstStep(t0, tEnd, y)

	for t < tEnd {
		if err := ctx.Err(); err != nil {
			return y, &dynamo.StepError{Step: e.stats.Accepted + 1, Time: t, H: h, Wrapped: err}
		}

		tr, err := e.advance(ctx, t, tEnd, y, e.clip(t, tEnd, h))
		if err != nil {
			return y, err
		}

		e.stats.Accepted++
		e.stats.LastStep = tr.h
		if e.scheme.FSAL() {
			e.first = tr.last()
		} else {
			e.first = nil
		}

		if err := e.publish(tr, y, true); err != nil {
			return tr.y1, &dynamo.StepError{Step: e.stats.Accepted, Time: tr.t1, H: tr.h, Wrapped: err}
		}
		t, y, h = tr.t1, tr.y1, tr.hNext
	}
	return y, nil
}

// clip bounds h by MaxStep and stretches it onto tEnd when less than
// one percent of a step would remain.
func (e *Engine) clip(t, tEnd, h float64) float64 {
	if e.cfg.MaxStep > 0 {
		h = math.Min(h, e.cfg.MaxStep)
	}
	if t+1.01*h >= tEnd {
		h = tEnd - t
	}
	return h
}

func (e *Engine) minStep(t float64) float64 {
	if e.cfg.MinStep > 0 {
		return e.cfg.MinStep
	}
	return 16 * eps * math.Max(1, math.Abs(t))
}

// advance retries step attempts from (t, y) until one is accepted.
func (e *Engine) advance(ctx context.Context, t, tEnd float64, y dynamo.State, h float64) (*trial, error) {
	rejects := 0
	tr, err := retry.DoWithData(
		func() (*trial, error) {
			tr, err := e.try(t, tEnd, y, h)
			if err == nil && tr.accepted {
				return tr, nil
			}

			e.stats.Rejected++
			rejects++
			if err != nil {
				if errors.Is(err, dynamo.ErrConvergence) {
					e.stats.NewtonFailures++
				}
				h *= e.cfg.Controller.MinFactor
			} else {
				if e.cfg.NotifyRejected {
					if perr := e.publish(tr, y, false); perr != nil {
						return nil, perr
					}
				}
				h = tr.hNext
				err = errRejected
			}

			if h < e.minStep(t) {
				return nil, fmt.Errorf("%w: h=%g at t=%g after %v", dynamo.ErrStepTooSmall, h, t, err)
			}
			return nil, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.cfg.MaxRejects+1)),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			e.log.Debug("step rejected",
				zap.Uint("attempt", n+1),
				zap.Float64("t", t),
				zap.Float64("hNext", h),
				zap.Error(err),
			)
		}),
	)
	if err == nil {
		return tr, nil
	}

	if retryable(err) {
		err = fmt.Errorf("%w: %d consecutive rejections, last: %w", dynamo.ErrRetryBudget, rejects, err)
	}
	return nil, &dynamo.StepError{Step: e.stats.Accepted + 1, Time: t, H: h, Wrapped: err}
}

func retryable(err error) bool {
	var me *ModuleError
	if errors.As(err, &me) {
		return false
	}
	return errors.Is(err, errRejected) || dynamo.Retryable(err)
}

// trial is one step attempt.
type trial struct {
	t0, t1   float64
	h        float64
	y1       dynamo.State
	k        [][]dynamo.State
	errNorm  float64
	accepted bool
	hNext    float64
}

func (tr *trial) stages() dynamo.StageValues {
	if len(tr.k) == 2 {
		return dynamo.PairStages(tr.k[0], tr.k[1])
	}
	return dynamo.SingleStages(tr.k[0])
}

func (tr *trial) last() []dynamo.State {
	out := make([]dynamo.State, len(tr.k))
	for p, kp := range tr.k {
		out[p] = kp[len(kp)-1].Clone()
	}
	return out
}

func (e *Engine) cacheFirst() bool {
	return !e.scheme.Implicit(0) && e.scheme.C()[0] == 0
}

// try computes the stages, the candidate and the error estimate of one
// step of size h from (t, y).
func (e *Engine) try(t, tEnd float64, y dynamo.State, h float64) (*trial, error) {
	s := e.scheme
	stages := s.Stages()
	c := s.C()

	k := make([][]dynamo.State, s.Parts())
	for p := range k {
		k[p] = make([]dynamo.State, stages)
	}

	for i := 0; i < stages; i++ {
		if i == 0 && e.first != nil {
			for p := range k {
				k[p][0] = e.first[p]
			}
			continue
		}

		ti := t + c[i]*h
		base := y.Clone()
		for p := range k {
			row := s.A(p)[i]
			for j := 0; j < i; j++ {
				if row[j] != 0 {
					floats.AddScaled(base, h*row[j], k[p][j])
				}
			}
		}

		z := base
		imp, gamma := s.Diagonal(i)
		if gamma != 0 {
			ki, err := e.newton.solve(ti, base, h*gamma)
			if err != nil {
				return nil, fmt.Errorf("stage %d: %w", i+1, err)
			}
			k[imp][i] = ki
			z = base.AddScaled(h*gamma, ki)
		}
		for p := range k {
			if gamma != 0 && p == imp {
				continue
			}
			k[p][i] = e.parts[p](ti, z)
			if !k[p][i].IsValid() {
				return nil, fmt.Errorf("%w: stage %d at t=%g", dynamo.ErrNonFinite, i+1, ti)
			}
		}

		if i == 0 && e.cacheFirst() {
			e.first = make([]dynamo.State, len(k))
			for p := range k {
				e.first[p] = k[p][0].Clone()
			}
		}
	}

	tr := &trial{t0: t, t1: t + h, h: h, k: k}
	if h >= tEnd-t {
		tr.t1 = tEnd
	}
	tr.y1 = combine(y, h, k, s.B)
	if !tr.y1.IsValid() {
		return nil, fmt.Errorf("%w: candidate at t=%g", dynamo.ErrNonFinite, tr.t1)
	}

	if s.Embedded() {
		yHat := combine(y, h, k, s.BHat)
		tr.errNorm = ScaledError(y, tr.y1, yHat, e.cfg.ATol, e.cfg.RTol, e.cfg.Norm)
		if math.IsNaN(tr.errNorm) || math.IsInf(tr.errNorm, 0) {
			return nil, fmt.Errorf("%w: error estimate at t=%g", dynamo.ErrNonFinite, tr.t1)
		}
	}

	if !e.adaptive() {
		tr.accepted = true
		tr.hNext = e.cfg.H0
		return tr, nil
	}
	tr.accepted = tr.errNorm <= 1
	tr.hNext = h * e.cfg.Controller.Factor(tr.errNorm, s.EmbeddedOrder(), tr.accepted)
	return tr, nil
}

// combine returns y + h Σ_p Σ_i w_p,i k_p,i.
func combine(y dynamo.State, h float64, k [][]dynamo.State, weights func(p int) []float64) dynamo.State {
	out := y.Clone()
	for p, kp := range k {
		for i, w := range weights(p) {
			if w != 0 {
				floats.AddScaled(out, h*w, kp[i])
			}
		}
	}
	return out
}

func (e *Engine) publish(tr *trial, y0 dynamo.State, accepted bool) error {
	number := e.stats.Accepted
	if !accepted {
		number++
	}

	h := props.New()
	_ = h.Set(props.InitialTime, tr.t0)
	_ = h.Set(props.InitialValues, y0.Clone())
	_ = h.Set(props.FinalTime, tr.t1)
	_ = h.Set(props.FinalValues, tr.y1.Clone())
	_ = h.Set(props.StageValues, tr.stages())
	_ = h.Set(props.StepAccepted, accepted)
	_ = h.Set(props.Scheme, e.scheme)
	_ = h.Set(props.StepSize, tr.h)
	_ = h.Set(props.ErrorNorm, tr.errNorm)
	_ = h.Set(props.StepNumber, number)

	for i, m := range e.modules {
		if err := m.Step(h); err != nil {
			return &ModuleError{Index: i, Phase: "step", Err: err}
		}
	}
	return nil
}
