package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	dataDir    string
	verbose    bool
	logJSON    bool
	configFile string
	preset     string

	scheme         string
	t0             float64
	tEnd           float64
	h0             float64
	fixed          bool
	atol           float64
	rtol           float64
	norm           string
	params         []string
	samples        int
	every          int
	maxRejects     int
	notifyRejected bool

	monitor  bool
	progress bool
	csvPath  string
	noSave   bool

	component int
	outPath   string

	levels    int
	stepSize  float64
	reference string
	workers   int

	paramName string
	from      float64
	to        float64
	points    int
)

// env holds flag values overridden by IMEXRK_* environment variables.
var env = viper.New()

var log = zap.NewNop()

// main is the entry point of the imexrk CLI. It exits with status 1 when
// the selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "imexrk",
		Short:         "adaptive explicit and IMEX Runge-Kutta integration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindEnv(cmd); err != nil {
				return err
			}
			l, err := newLogger(env.GetBool("verbose"), env.GetBool("log-json"))
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".imexrk", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "integrate a problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runIntegration,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&monitor, "monitor", false, "full-screen live monitor")
	runCmd.Flags().BoolVar(&progress, "progress", false, "print progress lines")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "stream accepted steps to a CSV file")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", -1, "state component, -1 for all")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	orderCmd := &cobra.Command{
		Use:   "order [problem] [scheme]",
		Short: "measure the convergence order with fixed steps",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrderStudy,
	}
	orderCmd.Flags().Float64Var(&stepSize, "h", 0.1, "coarsest step size")
	orderCmd.Flags().IntVar(&levels, "levels", 5, "number of halvings")
	orderCmd.Flags().Float64Var(&tEnd, "t-end", 0, "end time (default: problem span)")
	orderCmd.Flags().StringVar(&reference, "reference", "dopri54", "reference scheme without exact solution")
	orderCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")
	orderCmd.Flags().StringSliceVarP(&params, "param", "p", nil, "problem parameter name=value")

	sweepCmd := &cobra.Command{
		Use:   "sweep [problem]",
		Short: "repeat a run over a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&paramName, "name", "", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&from, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&to, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&points, "points", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	schemesCmd := &cobra.Command{
		Use:   "schemes",
		Short: "list Runge-Kutta schemes",
		Args:  cobra.NoArgs,
		RunE:  listSchemes,
	}

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list test problems",
		Args:  cobra.NoArgs,
		RunE:  listProblems,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a configuration file (yaml or toml)",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset (problem/name)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, orderCmd, sweepCmd, schemesCmd, problemsCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset name for the problem")
	cmd.Flags().StringVarP(&scheme, "scheme", "s", "", "scheme name")
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().Float64Var(&tEnd, "t-end", 0, "end time (default: problem span)")
	cmd.Flags().Float64Var(&h0, "h0", 0, "initial or fixed step size")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "disable step size control")
	cmd.Flags().Float64Var(&atol, "atol", 0, "absolute tolerance")
	cmd.Flags().Float64Var(&rtol, "rtol", 0, "relative tolerance")
	cmd.Flags().StringVar(&norm, "norm", "", "error norm (rms or max)")
	cmd.Flags().StringSliceVarP(&params, "param", "p", nil, "problem parameter name=value")
	cmd.Flags().IntVar(&samples, "samples", 0, "dense output intervals, 0 records accepted steps")
	cmd.Flags().IntVar(&every, "every", 0, "write every n-th accepted step to CSV")
	cmd.Flags().IntVar(&maxRejects, "max-rejects", 0, "consecutive rejections before failing")
	cmd.Flags().BoolVar(&notifyRejected, "notify-rejected", false, "report rejected steps to output modules")
}

// bindEnv lets IMEXRK_<FLAG> variables stand in for flags that were not
// given on the command line.
func bindEnv(cmd *cobra.Command) error {
	env.SetEnvPrefix("imexrk")
	env.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	env.AutomaticEnv()
	if err := env.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	return env.BindPFlags(cmd.Flags())
}

func newLogger(debug, json bool) (*zap.Logger, error) {
	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level.SetLevel(zapcore.WarnLevel)
	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	return cfg.Build()
}
