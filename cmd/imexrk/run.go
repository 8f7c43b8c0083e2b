package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/config"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/experiment"
	"github.com/san-kum/imexrk/internal/modules"
	"github.com/san-kum/imexrk/internal/problems"
	"github.com/san-kum/imexrk/internal/solver"
	"github.com/san-kum/imexrk/internal/storage"
	"github.com/san-kum/imexrk/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// parseParams turns name=value pairs into a parameter map.
func parseParams(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: parameter %q is not name=value", dynamo.ErrConfig, pair)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %s: %w", dynamo.ErrConfig, name, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

// buildConfig layers the defaults, a preset, a config file and finally
// flags or IMEXRK_* variables, later layers winning.
func buildConfig(args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	problem := ""
	if len(args) > 0 {
		problem = args[0]
	}

	if name := env.GetString("preset"); name != "" {
		if problem == "" {
			return nil, fmt.Errorf("%w: --preset needs a problem", dynamo.ErrConfig)
		}
		p := config.GetPreset(problem, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(problem))
		}
		cfg = p
	}

	if path := env.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if problem != "" && problem != cfg.Problem {
		cfg.Problem = problem
		cfg.Params = nil
	}
	if err := applyFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config) error {
	if env.IsSet("scheme") {
		cfg.Scheme = env.GetString("scheme")
	}
	if env.IsSet("t0") {
		cfg.T0 = env.GetFloat64("t0")
	}
	if env.IsSet("t-end") {
		cfg.TEnd = env.GetFloat64("t-end")
	}
	if env.IsSet("h0") {
		cfg.H0 = env.GetFloat64("h0")
	}
	if env.IsSet("fixed") {
		cfg.Adaptive = !env.GetBool("fixed")
	}
	if env.IsSet("atol") {
		cfg.Tolerances.ATol = env.GetFloat64("atol")
	}
	if env.IsSet("rtol") {
		cfg.Tolerances.RTol = env.GetFloat64("rtol")
	}
	if env.IsSet("norm") {
		cfg.Tolerances.Norm = env.GetString("norm")
	}
	if env.IsSet("samples") {
		cfg.Output.DenseSamples = env.GetInt("samples")
	}
	if env.IsSet("every") {
		cfg.Output.Every = env.GetInt("every")
	}
	if env.IsSet("max-rejects") {
		cfg.Controller.MaxRejects = env.GetInt("max-rejects")
	}
	if env.IsSet("notify-rejected") {
		cfg.Output.NotifyRejected = env.GetBool("notify-rejected")
	}
	if env.IsSet("param") {
		p, err := parseParams(env.GetStringSlice("param"))
		if err != nil {
			return err
		}
		cfg.Params = lo.Assign(cfg.Params, p)
	}
	return nil
}

// invariantFor returns the conserved quantity tracked for p, or nil.
func invariantFor(p problems.Problem) *modules.Invariant {
	switch p := p.(type) {
	case *problems.DecayChain:
		return modules.NewMassInvariant()
	case *problems.Oscillator:
		return modules.NewInvariant("energy", p.Energy)
	}
	return nil
}

func stateLabels(n int) []string {
	return lo.Times(n, func(i int) string { return fmt.Sprintf("y%d", i) })
}

func runIntegration(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(registry, cfg, solver.WithLogger(log))
	if err != nil {
		return err
	}
	eng := exp.Engine()

	inv := invariantFor(exp.Problem())
	if inv != nil {
		if err := eng.Register(inv); err != nil {
			return err
		}
	}

	if path := env.GetString("csv"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w := modules.NewCSVWriter(f)
		w.Every = cfg.Output.Every
		if err := eng.Register(w); err != nil {
			return err
		}
	}

	useMonitor := env.GetBool("monitor")
	if env.GetBool("progress") && !useMonitor {
		pr := modules.NewProgress(os.Stderr)
		pr.Styled = true
		if err := eng.Register(pr); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t0, tEnd := exp.Span()
	log.Debug("starting run",
		zap.String("problem", exp.Problem().Name()),
		zap.String("scheme", exp.Scheme().Name()),
		zap.Any("params", cfg.Params),
	)
	if !useMonitor {
		fmt.Printf("integrating %s with %s on [%g, %g]...\n", exp.Problem().Name(), exp.Scheme().Name(), t0, tEnd)
	}
	start := time.Now()

	var (
		result *experiment.Result
		runErr error
	)
	if useMonitor {
		title := exp.Problem().Name() + " / " + exp.Scheme().Name()
		var y dynamo.State
		y, runErr = tui.Run(ctx, eng, title, stateLabels(exp.Problem().Size()), t0, tEnd, exp.Initial())
		result = exp.Collect(y)
	} else {
		result, runErr = exp.Run(ctx)
	}
	elapsed := time.Since(start)

	if runErr != nil {
		if t, _, ok := result.Trajectory.Last(); ok {
			fmt.Printf("stopped at t=%g after %d accepted steps\n", t, result.Stats.Accepted)
		}
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !env.GetBool("no-save") {
		st := storage.New(env.GetString("data"))
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(exp.Metadata(result), result.Trajectory)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	printResult(result, inv)
	return nil
}

func printResult(res *experiment.Result, inv *modules.Invariant) {
	fmt.Printf("steps: %d accepted, %d rejected\n", res.Stats.Accepted, res.Stats.Rejected)
	fmt.Printf("final state: %v\n", res.Y)

	metrics := res.Metrics()
	names := lo.Keys(metrics)
	slices.Sort(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, metrics[name])
	}
	if inv != nil {
		drift, at := inv.MaxDrift()
		fmt.Printf("\n%s drift: %.3e at t=%g (initial %g)\n", inv.Name, drift, at, inv.Initial())
	}
}
