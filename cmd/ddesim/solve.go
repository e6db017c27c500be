package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/san-kum/ddesim/internal/analysis"
	"github.com/san-kum/ddesim/internal/config"
	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/experiment"
	"github.com/san-kum/ddesim/internal/render"
	"github.com/san-kum/ddesim/internal/storage"
	"github.com/san-kum/ddesim/internal/tui"
	"github.com/san-kum/ddesim/internal/viz"
	"github.com/spf13/cobra"
)

func newExperiment(cmd *cobra.Command, model string) (*experiment.Experiment, error) {
	cfg, err := loadConfig(cmd, model)
	if err != nil {
		return nil, err
	}
	exp, err := experiment.New(experiment.NewRegistry(), cfg)
	if err != nil {
		return nil, err
	}
	exp.SetLogger(logger)
	return exp, nil
}

func saveRun(exp *experiment.Experiment, res *experiment.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	cfg := exp.Config()
	return st.Save(storage.RunMetadata{
		Model:         cfg.Model,
		Integrator:    cfg.Integrator,
		Interpolation: cfg.Interpolation,
		Params:        exp.Model().GetParams(),
		Metrics:       res.Metrics,
	}, res.Solution)
}

func runSolve(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("solving %s...\n", args[0])
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	runID, err := saveRun(exp, res)
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(args[0], res.Solution, res.Metrics))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("completed in %v", res.Elapsed.Round(time.Microsecond))))
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}

	res, err := tui.Watch(cmd.Context(), exp, stateLabels(args[0]))
	if err != nil {
		return err
	}

	runID, err := saveRun(exp, res)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

// compareIntegrators solves the same model with each integrator and measures
// the deviation from a fine fixed-step method-of-steps solution.
func compareIntegrators(cmd *cobra.Command, args []string) error {
	model := args[0]
	names := args[1:]

	base, err := newExperiment(cmd, model)
	if err != nil {
		return err
	}
	times := base.Config().Times()
	m := base.Model()

	ref, err := analysis.MethodOfSteps(m, base.History(), times, refStep, m.Args())
	if err != nil {
		return fmt.Errorf("reference solution: %w", err)
	}

	fmt.Printf("comparing integrators for %s on [%g, %g], reference step %g\n\n",
		model, times[0], times[len(times)-1], refStep)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		cfg := base.Config().Clone()
		cfg.Integrator = name
		exp, err := experiment.New(experiment.NewRegistry(), cfg)
		if err != nil {
			rows = append(rows, []string{name, "error: " + err.Error(), "", "", "", "", ""})
			continue
		}
		exp.SetLogger(logger)

		res, err := exp.Run(cmd.Context())
		if err != nil {
			rows = append(rows, []string{name, "error: " + err.Error(), "", "", "", "", ""})
			continue
		}
		sol := res.Solution
		rows = append(rows, []string{
			name,
			fmt.Sprint(sol.Stats.Accepted),
			fmt.Sprint(sol.Stats.Rejected),
			fmt.Sprint(sol.Stats.Evaluations),
			fmt.Sprintf("%.3e", analysis.MaxAbsDiff(sol.States, ref)),
			fmt.Sprintf("%.3e", analysis.RMSDiff(sol.States, ref)),
			fmt.Sprintf("%.2f", float64(res.Elapsed.Microseconds())/1000),
		})
	}

	fmt.Println(viz.Table([]string{"integrator", "accepted", "rejected", "evals", "max_diff", "rms_diff", "time_ms"}, rows))
	return nil
}

func rangeValues() []float64 {
	if sweepSteps < 2 {
		return []float64{sweepFrom}
	}
	return dde.Linspace(sweepFrom, sweepTo, sweepSteps)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	began := time.Now()
	points, err := experiment.Sweep(cmd.Context(), experiment.NewRegistry(), cfg, sweepParam, rangeValues(), workers, logger)
	if err != nil {
		return err
	}

	fmt.Printf("sweep of %s over %s in %v\n\n", args[0], sweepParam, time.Since(began).Round(time.Millisecond))

	settle := cfg.Start + (cfg.End-cfg.Start)/2
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		sol := p.Result.Solution
		period := settledPeriod(sol, settle)
		rows = append(rows, []string{
			fmt.Sprintf("%g", p.Value),
			fmt.Sprintf("%.5g", p.Result.Metrics["amplitude"]),
			fmt.Sprintf("%.5g", p.Result.Metrics["max_norm"]),
			formatPeriod(period),
			fmt.Sprint(sol.Stats.Accepted),
		})
	}
	fmt.Println(viz.Table([]string{sweepParam, "amplitude", "max_norm", "period", "steps"}, rows))
	return nil
}

// settledPeriod is the dominant period of component 0 after settle.
func settledPeriod(sol *dde.Solution, settle float64) float64 {
	from := 0
	for from < len(sol.Times) && sol.Times[from] < settle {
		from++
	}
	if len(sol.Times)-from < 4 {
		return 0
	}
	dt := sol.Times[from+1] - sol.Times[from]
	return analysis.DominantPeriod(sol.Column(0)[from:], dt)
}

func formatPeriod(p float64) string {
	if p == 0 {
		return "-"
	}
	return fmt.Sprintf("%.4g", p)
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	cfg := exp.Config()

	after := transient
	if !cmd.Flags().Changed("transient") {
		after = cfg.Start + (cfg.End-cfg.Start)/2
	}

	diagram, err := analysis.BifurcationDiagram(cmd.Context(), exp.Model(), sweepParam,
		sweepFrom, sweepTo, max(sweepSteps, 1), component, cfg.Times(), after, exp.SolveOptions()...)
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation of %s over %s, component %d\n\n", args[0], sweepParam, component)
	rows := make([][]string, 0, len(diagram))
	for _, bp := range diagram {
		rows = append(rows, []string{fmt.Sprintf("%g", bp.Param), fmt.Sprint(distinct(bp.Values, 1e-3)), summarize(bp.Values)})
	}
	fmt.Println(viz.Table([]string{sweepParam, "branches", "maxima"}, rows))

	if outPath != "" {
		p, err := render.Bifurcation(args[0], sweepParam, diagram)
		if err != nil {
			return err
		}
		if err := render.Save(p, outPath); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", outPath)
	}
	return nil
}

// distinct counts values that differ by more than tol, the number of
// branches a parameter value has in the diagram.
func distinct(values []float64, tol float64) int {
	var seen []float64
outer:
	for _, v := range values {
		for _, s := range seen {
			if math.Abs(v-s) <= tol*math.Max(1, math.Abs(s)) {
				continue outer
			}
		}
		seen = append(seen, v)
	}
	return len(seen)
}

func summarize(values []float64) string {
	if len(values) == 0 {
		return "-"
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return fmt.Sprintf("%.5g", lo)
	}
	return fmt.Sprintf("%.5g .. %.5g", lo, hi)
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment(cmd, args[0])
	if err != nil {
		return err
	}
	m := exp.Model()

	lambda, err := analysis.LyapunovExponent(cmd.Context(), m, exp.History(), exp.Config().Times(), epsilon, m.Args(), exp.SolveOptions()...)
	if err != nil {
		return err
	}

	verdict := "stable"
	switch {
	case lambda > 1e-3:
		verdict = "chaotic"
	case lambda > -1e-3:
		verdict = "neutral"
	}
	fmt.Printf("%s %s\n", viz.MetricLabel.Render("lyapunov exponent"), viz.MetricValue.Render(fmt.Sprintf("%.5g (%s)", lambda, verdict)))
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	rows := [][]string{}
	for _, name := range reg.ListModels() {
		m, err := reg.GetModel(name)
		if err != nil {
			return err
		}
		ps := m.GetParams()
		parts := make([]string, 0, len(ps))
		for _, p := range m.ParamNames() {
			parts = append(parts, fmt.Sprintf("%s=%g", p, ps[p]))
		}
		rows = append(rows, []string{name, fmt.Sprint(m.StateDim()), strings.Join(parts, " "), strings.Join(config.ListPresets(name), ",")})
	}
	fmt.Println(viz.Table([]string{"model", "dim", "params", "presets"}, rows))
	fmt.Printf("\nintegrators: %s\n", strings.Join(reg.ListIntegrators(), ", "))
	return nil
}
