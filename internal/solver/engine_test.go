package solver_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/props"
	"github.com/san-kum/imexrk/internal/solver"
	"github.com/san-kum/imexrk/internal/tableau"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("Engine", func() {
	ctx := context.Background()

	Describe("order of accuracy", func() {
		DescribeTable("explicit schemes on y' = -y",
			func(scheme string, order, h float64) {
				Expect(observedOrder(problems.NewExponential(1), scheme, h)).To(BeNumerically("~", order, 0.25))
			},
			Entry("euler", "euler", 1.0, 0.01),
			Entry("heun21", "heun21", 2.0, 0.05),
			Entry("rk4", "rk4", 4.0, 0.1),
			Entry("bs32", "bs32", 3.0, 0.1),
			Entry("dopri54", "dopri54", 5.0, 0.2),
		)

		DescribeTable("diagonally implicit schemes on y' = -y",
			func(scheme string, order, h float64) {
				Expect(observedOrder(problems.NewExponential(1), scheme, h)).To(BeNumerically("~", order, 0.3))
			},
			Entry("backward-euler", "backward-euler", 1.0, 0.01),
			Entry("crank-nicolson", "crank-nicolson", 2.0, 0.05),
			Entry("esdirk32", "esdirk32", 3.0, 0.1),
			Entry("esdirk43", "esdirk43", 4.0, 0.1),
		)

		It("holds for the additive pairs on a split problem", func() {
			pr := problems.NewProtheroRobinson(-1)
			Expect(observedOrder(pr, "kc32", 0.2)).To(BeNumerically("~", 3, 0.25))
			Expect(observedOrder(pr, "kc43", 0.2)).To(BeNumerically("~", 4, 0.25))
			Expect(observedOrder(problems.NewProtheroRobinson(-10), "kc54", 0.1)).To(BeNumerically(">", 4.5))
		})
	})

	It("reports an embedded error that grows with stiffness", func() {
		var norms []float64
		for _, lambda := range []float64{1, 2, 4, 8, 16} {
			rec := &recorder{}
			eng, err := solver.New(problems.NewExponential(lambda), tableau.DormandPrince54(), fixed(0.1))
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Register(rec)).To(Succeed())

			_, err = eng.Integrate(ctx, 0, 0.1, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.steps).To(HaveLen(1))
			norms = append(norms, rec.steps[0].errNorm)
		}
		for i := 1; i < len(norms); i++ {
			Expect(norms[i]).To(BeNumerically(">", norms[i-1]))
		}
	})

	It("accepts only steps with error norm at most one and shrinks after a rejection", func() {
		cfg := solver.DefaultConfig()
		cfg.H0 = 1
		cfg.NotifyRejected = true
		rec := &recorder{}

		eng, err := solver.New(problems.NewVanDerPol(), tableau.DormandPrince54(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.Register(rec)).To(Succeed())

		_, err = eng.Integrate(ctx, 0, 5, dynamo.State{2, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.Stats().Rejected).To(BeNumerically(">", 0))

		rejected := 0
		for i, a := range rec.steps {
			if a.accepted {
				Expect(a.errNorm).To(BeNumerically("<=", 1))
				continue
			}
			rejected++
			Expect(a.errNorm).To(BeNumerically(">", 1))
			Expect(i + 1).To(BeNumerically("<", len(rec.steps)))
			Expect(rec.steps[i+1].h).To(BeNumerically("<", a.h))
			Expect(rec.steps[i+1].number).To(Equal(a.number))
		}
		Expect(rejected).To(Equal(eng.Stats().Rejected))
		Expect(rec.accepted()).To(HaveLen(eng.Stats().Accepted))
	})

	It("closes the Arenstorf orbit after one period", func() {
		cfg := solver.DefaultConfig()
		cfg.H0 = 1e-2
		cfg.ATol = 1e-10
		cfg.RTol = 1e-10

		orbit := problems.NewArenstorf()
		eng, err := solver.New(orbit, tableau.DormandPrince54(), cfg)
		Expect(err).NotTo(HaveOccurred())

		y, err := eng.Integrate(ctx, 0, problems.ArenstorfPeriod, orbit.Initial())
		Expect(err).NotTo(HaveOccurred())
		for i, v := range orbit.Initial() {
			Expect(y[i]).To(BeNumerically("~", v, 1e-4))
		}
		Expect(eng.Stats().Accepted).To(BeNumerically(">", 100))
	})

	DescribeTable("conserves the total of a decay chain on every accepted step",
		func(scheme string) {
			chain := problems.NewDecayChain(10)
			rec := &recorder{}
			eng, err := solver.New(chain, mustScheme(scheme), solver.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Register(rec)).To(Succeed())

			_, err = eng.Integrate(ctx, 0, 10, chain.Initial())
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.steps).NotTo(BeEmpty())
			for _, a := range rec.steps {
				Expect(a.y1.Sum()).To(BeNumerically("~", a.y0.Sum(), 1e-12))
			}
		},
		Entry("dopri54", "dopri54"),
		Entry("tsit5", "tsit5"),
		Entry("esdirk43", "esdirk43"),
	)

	It("lands exactly on the final time", func() {
		rec := &recorder{}
		eng, err := solver.New(problems.NewOscillator(), tableau.RK4(), fixed(0.3))
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.Register(rec)).To(Succeed())

		_, err = eng.Integrate(ctx, 0, 1, dynamo.State{1, 0})
		Expect(err).NotTo(HaveOccurred())
		last := rec.steps[len(rec.steps)-1]
		Expect(last.t1).To(Equal(1.0))
		Expect(rec.steps[0].h).To(Equal(0.3))
	})

	It("integrates a stiff split problem with Newton stages", func() {
		pr := problems.NewProtheroRobinson(-1e4)
		cfg := solver.DefaultConfig()
		cfg.ATol, cfg.RTol = 1e-8, 1e-8
		eng, err := solver.New(pr, tableau.KC43(), cfg)
		Expect(err).NotTo(HaveOccurred())

		y, err := eng.Integrate(ctx, 0, 2, dynamo.State{0})
		Expect(err).NotTo(HaveOccurred())
		Expect(y[0]).To(BeNumerically("~", math.Sin(2), 1e-5))

		stats := eng.Stats()
		Expect(stats.NewtonIters).To(BeNumerically(">", 0))
		Expect(stats.JacobianEvals).To(BeNumerically(">", 0))
		Expect(stats.NewtonFailures).To(BeZero())
	})

	It("reuses the last stage of FSAL schemes", func() {
		eng, err := solver.New(problems.NewOscillator(), tableau.DormandPrince54(), fixed(0.1))
		Expect(err).NotTo(HaveOccurred())
		_, err = eng.Integrate(ctx, 0, 1, dynamo.State{1, 0})
		Expect(err).NotTo(HaveOccurred())
		stats := eng.Stats()
		Expect(stats.Accepted).To(Equal(10))
		Expect(stats.RHSEvals).To(Equal(6*10 + 1))
	})

	DescribeTable("is unaffected by modules that overwrite the published stages",
		func(scheme string, cfg solver.Config) {
			integrate := func(ms ...solver.Module) dynamo.State {
				eng, err := solver.New(problems.NewOscillator(), mustScheme(scheme), cfg)
				Expect(err).NotTo(HaveOccurred())
				for _, m := range ms {
					Expect(eng.Register(m)).To(Succeed())
				}
				y, err := eng.Integrate(ctx, 0, 2, dynamo.State{1, 0})
				Expect(err).NotTo(HaveOccurred())
				return y
			}

			clean := integrate()

			scribbler := &recorder{required: []string{props.FinalTime, props.FinalValues, props.StepAccepted, props.StageValues}}
			scribbler.onStep = func(h *props.Holder) error {
				stages, err := h.Stages(props.StageValues)
				if err != nil {
					return err
				}
				for p := 0; p < stages.Parts(); p++ {
					for _, k := range stages.Part(p) {
						for i := range k {
							k[i] = 1e6
						}
					}
				}
				return nil
			}
			Expect(integrate(scribbler)).To(Equal(clean))
			Expect(scribbler.steps).NotTo(BeEmpty())
		},
		Entry("dopri54 with a fixed step", "dopri54", fixed(0.1)),
		Entry("tsit5 with a fixed step", "tsit5", fixed(0.1)),
		Entry("bs32 adaptive", "bs32", solver.DefaultConfig()),
	)

	Describe("configuration errors", func() {
		It("rejects a module that needs an unpublished property", func() {
			eng, err := solver.New(problems.NewOscillator(), tableau.RK4(), fixed(0.1))
			Expect(err).NotTo(HaveOccurred())
			err = eng.Register(&recorder{required: []string{props.FinalValues, "residual"}})
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})

		It("rejects a state of the wrong dimension", func() {
			eng, err := solver.New(problems.NewOscillator(), tableau.RK4(), fixed(0.1))
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Integrate(ctx, 0, 1, dynamo.State{1})
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})

		It("rejects an additive scheme on an unsplit system", func() {
			_, err := solver.New(problems.NewOscillator(), tableau.KC32(), solver.DefaultConfig())
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})

		It("needs a step size without embedded weights", func() {
			_, err := solver.New(problems.NewOscillator(), tableau.RK4(), solver.DefaultConfig())
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})

		It("rejects an empty time span", func() {
			eng, err := solver.New(problems.NewOscillator(), tableau.RK4(), fixed(0.1))
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Integrate(ctx, 1, 1, dynamo.State{1, 0})
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})
	})

	Describe("failures", func() {
		It("exhausts the retry budget on a non-finite right-hand side", func() {
			sys := &dynamo.System{
				Label: "nan",
				Dim:   1,
				F: func(t float64, y dynamo.State) dynamo.State {
					if t > 0 {
						return dynamo.State{math.NaN()}
					}
					return dynamo.State{-y[0]}
				},
			}
			cfg := solver.DefaultConfig()
			cfg.H0 = 0.1
			cfg.MaxRejects = 5
			rec := &recorder{}

			eng, err := solver.New(sys, tableau.DormandPrince54(), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Register(rec)).To(Succeed())

			y, err := eng.Integrate(ctx, 0, 1, dynamo.State{1})
			Expect(err).To(MatchError(dynamo.ErrRetryBudget))
			Expect(err).To(MatchError(dynamo.ErrNonFinite))

			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Time).To(BeZero())
			Expect(eng.Stats().Rejected).To(Equal(cfg.MaxRejects + 1))
			Expect(y.IsValid()).To(BeTrue())
			Expect(rec.ended).To(Equal(1))
		})

		It("fails when the step size underflows the minimum", func() {
			sys := &dynamo.System{
				Label: "nan",
				Dim:   1,
				F:     func(float64, dynamo.State) dynamo.State { return dynamo.State{math.Inf(1)} },
			}
			cfg := solver.DefaultConfig()
			cfg.H0 = 0.1
			cfg.MinStep = 1e-3
			eng, err := solver.New(sys, tableau.Heun21(), cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = eng.Integrate(ctx, 0, 1, dynamo.State{1})
			Expect(err).To(MatchError(dynamo.ErrStepTooSmall))
		})

		It("propagates module errors and still ends stepping", func() {
			boom := errors.New("disk full")
			rec := &recorder{failAt: 3, failErr: boom}
			other := &recorder{}

			eng, err := solver.New(problems.NewOscillator(), tableau.RK4(), fixed(0.1))
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Register(rec)).To(Succeed())
			Expect(eng.Register(other)).To(Succeed())

			_, err = eng.Integrate(ctx, 0, 1, dynamo.State{1, 0})
			Expect(err).To(MatchError(boom))

			var modErr *solver.ModuleError
			Expect(errors.As(err, &modErr)).To(BeTrue())
			Expect(modErr.Index).To(Equal(0))
			Expect(other.steps).To(HaveLen(2))
			Expect(rec.ended).To(Equal(1))
			Expect(other.ended).To(Equal(1))
		})

		It("stops on a cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			rec := &recorder{}
			rec.onStep = func(*props.Holder) error {
				if len(rec.steps) == 4 {
					cancel()
				}
				return nil
			}

			eng, err := solver.New(problems.NewOscillator(), tableau.RK4(), fixed(0.1))
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Register(rec)).To(Succeed())

			_, err = eng.Integrate(cctx, 0, 1, dynamo.State{1, 0})
			Expect(err).To(MatchError(context.Canceled))
			Expect(rec.steps).To(HaveLen(4))
			Expect(rec.ended).To(Equal(1))
		})

		It("refuses registration while stepping", func() {
			eng, err := solver.New(problems.NewOscillator(), tableau.RK4(), fixed(0.5))
			Expect(err).NotTo(HaveOccurred())

			var regErr error
			rec := &recorder{}
			rec.onStep = func(*props.Holder) error {
				regErr = eng.Register(&recorder{})
				return nil
			}
			Expect(eng.Register(rec)).To(Succeed())

			_, err = eng.Integrate(ctx, 0, 1, dynamo.State{1, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(regErr).To(MatchError(dynamo.ErrConfig))
		})
	})

	It("logs rejected steps", func() {
		core, logs := observer.New(zap.DebugLevel)
		cfg := solver.DefaultConfig()
		cfg.H0 = 1

		eng, err := solver.New(problems.NewExponential(50), tableau.BogackiShampine32(), cfg, solver.WithLogger(zap.New(core)))
		Expect(err).NotTo(HaveOccurred())
		_, err = eng.Integrate(ctx, 0, 1, dynamo.State{1})
		Expect(err).NotTo(HaveOccurred())

		Expect(logs.FilterMessage("step rejected").Len()).To(Equal(eng.Stats().Rejected))
		Expect(logs.FilterMessage("integration finished").Len()).To(Equal(1))
	})
})
