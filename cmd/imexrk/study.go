package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/experiment"
	"github.com/san-kum/imexrk/internal/sweep"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runOrderStudy(cmd *cobra.Command, args []string) error {
	p, err := parseParams(env.GetStringSlice("param"))
	if err != nil {
		return err
	}
	study := sweep.OrderStudy{
		Problem:   args[0],
		Scheme:    args[1],
		Params:    p,
		H:         env.GetFloat64("h"),
		Levels:    env.GetInt("levels"),
		TEnd:      env.GetFloat64("t-end"),
		Reference: env.GetString("reference"),
		Workers:   env.GetInt("workers"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Debug("order study", zap.String("problem", study.Problem), zap.String("scheme", study.Scheme),
		zap.Float64("h", study.H), zap.Int("levels", study.Levels))
	res, err := sweep.RunOrder(ctx, experiment.NewRegistry(), study)
	if err != nil {
		return err
	}

	fmt.Printf("order study: %s with %s\n\n", res.Problem, res.Scheme)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "H\tERROR\tORDER\tRHS EVALS\tNEWTON ITERS")
	for _, l := range res.Levels {
		order := "-"
		if !math.IsNaN(l.Order) {
			order = fmt.Sprintf("%.2f", l.Order)
		}
		fmt.Fprintf(w, "%.4g\t%.3e\t%s\t%d\t%d\n", l.H, l.Error, order, l.Stats.RHSEvals, l.Stats.NewtonIters)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nobserved order %.2f, expected %d\n", res.Observed(), res.Expected)

	logErr := lo.Map(res.Levels, func(l sweep.Level, _ int) float64 {
		if l.Error <= 0 {
			return math.NaN()
		}
		return math.Log10(l.Error)
	})
	if len(logErr) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(logErr,
			asciigraph.Height(10),
			asciigraph.Width(40),
			asciigraph.Caption("log10 error per halving"),
		))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	name := env.GetString("name")
	if name == "" {
		return fmt.Errorf("%w: --name selects the parameter to sweep", dynamo.ErrConfig)
	}
	n := env.GetInt("points")
	if n < 1 {
		return fmt.Errorf("%w: --points must be positive, got %d", dynamo.ErrConfig, n)
	}
	base, err := buildConfig(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pts, err := sweep.RunParameters(ctx, experiment.NewRegistry(), sweep.ParameterSweep{
		Base:    base,
		Param:   name,
		Values:  sweep.Linspace(env.GetFloat64("from"), env.GetFloat64("to"), n),
		Workers: env.GetInt("workers"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweep: %s with %s over %s\n\n", base.Problem, base.Scheme, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tACCEPTED\tREJECTED\tRHS EVALS\tNEWTON ITERS\tMIN STEP\tFINAL STATE\n", name)
	for _, pt := range pts {
		r := pt.Result
		fmt.Fprintf(w, "%g\t%d\t%d\t%d\t%d\t%.3e\t%.6g\n",
			pt.Value, r.Stats.Accepted, r.Stats.Rejected, r.Stats.RHSEvals, r.Stats.NewtonIters, r.Steps.MinStep, r.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(pts) > 1 {
		accepted := lo.Map(pts, func(pt sweep.Point, _ int) float64 { return float64(pt.Result.Stats.Accepted) })
		fmt.Println()
		fmt.Println(asciigraph.Plot(accepted,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("accepted steps vs %s", name)),
		))
	}
	return nil
}
