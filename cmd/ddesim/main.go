package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/san-kum/ddesim/internal/config"
	"github.com/san-kum/ddesim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	configFile    string
	preset        string
	start         float64
	end           float64
	points        int
	integrator    string
	interpolation string
	params        []string
	history       []float64
	dt            float64
	tolerance     float64
	maxDt         float64
	fixed         bool

	// Phase plot axes
	xAxis int
	yAxis int
	lag   int

	outPath string
	overlay bool

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	workers    int
	component  int
	transient  float64
	epsilon    float64
	refStep    float64
)

var (
	logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
	logCloser io.Closer
)

// main registers the ddesim commands and runs the one named on the command
// line. Interrupts cancel the running solve.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ddesim",
		Short:         "delay differential equation solver and lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ddesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write json logs to this file")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "solve a model and save the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	addSolveFlags(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "solve a model with a live progress view",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	addSolveFlags(watchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator...]",
		Short: "compare integrators against a method-of-steps reference",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addSolveFlags(compareCmd)
	compareCmd.Flags().Float64Var(&refStep, "ref-step", 1e-3, "reference method-of-steps step size")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "solve a model for a range of one parameter in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addSolveFlags(sweepCmd)
	addRangeFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel solves (0 = GOMAXPROCS)")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [model]",
		Short: "local maxima of one component over a parameter range",
		Args:  cobra.ExactArgs(1),
		RunE:  runBifurcation,
	}
	addSolveFlags(bifurcationCmd)
	addRangeFlags(bifurcationCmd)
	bifurcationCmd.Flags().IntVar(&component, "component", 0, "state component to inspect")
	bifurcationCmd.Flags().Float64Var(&transient, "transient", 0, "ignore maxima before this time (default: mid interval)")
	bifurcationCmd.Flags().StringVarP(&outPath, "out", "o", "", "also render the diagram to an image file")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.ExactArgs(1),
		RunE:  runLyapunov,
	}
	addSolveFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&epsilon, "eps", 1e-8, "history perturbation")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&overlay, "overlay", false, "draw all components on one chart")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().IntVar(&lag, "lag", 0, "plot x-axis against itself lag samples later")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a run to an image file (png, svg, pdf)",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.png)")
	renderCmd.Flags().BoolVar(&overlay, "phase", false, "render a phase portrait instead of time series")
	renderCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	renderCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	renderCmd.Flags().IntVar(&lag, "lag", 0, "delay embedding lag for the phase portrait")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models, their parameters and the integrators",
		RunE:  listModels,
	}

	rootCmd.AddCommand(runCmd, watchCmd, compareCmd, sweepCmd, bifurcationCmd, lyapunovCmd,
		listCmd, plotCmd, phaseCmd, renderCmd, analyzeCmd, exportJSONCmd, presetsCmd, modelsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSolveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&start, "start", config.DefaultStart, "first output time")
	cmd.Flags().Float64Var(&end, "end", config.DefaultEnd, "last output time")
	cmd.Flags().IntVar(&points, "points", config.DefaultPoints, "number of output times")
	cmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator")
	cmd.Flags().StringVar(&interpolation, "interp", "hermite", "trajectory interpolation (linear, hermite)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "model parameter as name=value (repeatable)")
	cmd.Flags().Float64SliceVar(&history, "history", nil, "constant history state")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "initial or fixed timestep")
	cmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
	cmd.Flags().Float64Var(&maxDt, "max-dt", config.DefaultMaxDt, "largest adaptive step")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "use fixed steps of --dt")
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sweepParam, "sweep", "", "parameter to vary")
	cmd.Flags().Float64Var(&sweepFrom, "from", 0, "first parameter value")
	cmd.Flags().Float64Var(&sweepTo, "to", 1, "last parameter value")
	cmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of parameter values")
	_ = cmd.MarkFlagRequired("sweep")
}

func setupLogging() error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	lv := new(slog.LevelVar)
	lv.Set(level)

	l, closer, err := logging.New(logging.Options{Level: lv, File: logFile})
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	return nil
}

// loadConfig builds the run configuration. Precedence, lowest first:
// defaults, preset, config file, explicitly set flags.
func loadConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Model = model

	flags := cmd.Flags()
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("end") {
		cfg.End = end
	}
	if flags.Changed("points") {
		cfg.Points = points
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("interp") {
		cfg.Interpolation = interpolation
	}
	if flags.Changed("history") {
		cfg.History = history
	}
	if flags.Changed("dt") {
		cfg.Solver.Dt = dt
	}
	if flags.Changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("max-dt") {
		cfg.Solver.MaxDt = maxDt
	}
	if flags.Changed("fixed") {
		cfg.Solver.Adaptive = !fixed
	}

	if len(params) > 0 && cfg.Params == nil {
		cfg.Params = make(map[string]float64)
	}
	for _, kv := range params {
		name, value, err := parseParam(kv)
		if err != nil {
			return nil, err
		}
		cfg.Params[name] = value
	}

	return cfg, cfg.Validate()
}

func parseParam(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("parameter %q is not name=value", kv)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return name, v, nil
}

// stateLabels names the state components of the built-in models.
func stateLabels(model string) []string {
	switch model {
	case "lotka":
		return []string{"prey", "predator"}
	case "mackey_glass":
		return []string{"P"}
	case "hutchinson":
		return []string{"N"}
	}
	return []string{"y"}
}
