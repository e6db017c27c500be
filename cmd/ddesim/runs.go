package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ddesim/internal/analysis"
	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/render"
	"github.com/san-kum/ddesim/internal/storage"
	"github.com/san-kum/ddesim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
)

func loadRun(runID string) (*storage.RunMetadata, []dynamo.State, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 || len(states[0]) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, states, times, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tINTERVAL\tPOINTS\tINTEG\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%d\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Start,
			run.End,
			run.Points,
			run.Integrator,
			run.Stats.Accepted,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	labels := stateLabels(meta.Model)
	t0, t1 := times[0], times[len(times)-1]

	numVars := min(len(states[0]), 6)
	if overlay {
		series := make([][]float64, numVars)
		for i := range series {
			series[i] = viz.Column(states, i)
		}
		fmt.Println(viz.Overlay(series, strings.Join(labels[:min(len(labels), numVars)], ", "), 80, 15))
		return nil
	}

	for i := 0; i < numVars; i++ {
		fmt.Println(viz.Chart(viz.Column(states, i), viz.Caption(labels, i, t0, t1), 80, 10))
		fmt.Println()
	}
	return nil
}

// portrait builds the phase portrait selected by the axis and lag flags.
// Scalar runs always use a delay embedding.
func portrait(states []dynamo.State) (*analysis.PhasePortrait2D, string, string, error) {
	dim := len(states[0])
	if xAxis < 0 || xAxis >= dim {
		return nil, "", "", fmt.Errorf("x-axis %d out of range for %d-dimensional state", xAxis, dim)
	}
	if lag > 0 || dim == 1 {
		l := lag
		if l <= 0 {
			l = max(1, len(states)/50)
		}
		xl := fmt.Sprintf("x%d(t)", xAxis)
		yl := fmt.Sprintf("x%d(t+%d)", xAxis, l)
		return analysis.DelayEmbedding(viz.Column(states, xAxis), l), xl, yl, nil
	}
	if yAxis < 0 || yAxis >= dim {
		return nil, "", "", fmt.Errorf("y-axis %d out of range for %d-dimensional state", yAxis, dim)
	}
	return analysis.NewPhasePortrait(states, xAxis, yAxis), fmt.Sprintf("x%d", xAxis), fmt.Sprintf("x%d", yAxis), nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	p, xl, yl, err := portrait(states)
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", xl, yl)
	fmt.Println(analysis.PhasePortraitToASCII(p, 60, 24))
	minX, maxX, minY, maxY := p.Bounds()
	fmt.Printf("x ∈ [%.4g, %.4g], y ∈ [%.4g, %.4g]\n", minX, maxX, minY, maxY)
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = meta.ID + ".png"
	}
	if _, err := render.Format(out); err != nil {
		return err
	}

	title := fmt.Sprintf("%s (%s)", meta.Model, meta.ID)
	var p *plot.Plot
	if overlay {
		pp, xl, yl, err := portrait(states)
		if err != nil {
			return err
		}
		p, err = render.Phase(title, pp, xl, yl)
		if err != nil {
			return err
		}
	} else {
		p, err = render.TimeSeries(title, times, states, stateLabels(meta.Model))
		if err != nil {
			return err
		}
	}
	if err := render.Save(p, out); err != nil {
		return err
	}

	fmt.Printf("saved %s\n", out)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	data := viz.Column(states, 0)
	ps := analysis.PowerSpectrum(data)
	if len(ps) > 8 {
		fmt.Println(asciigraph.Plot(viz.Downsample(ps[1:len(ps)/4], 80),
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (x0)"),
		))
		fmt.Println()
	}

	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	labels := stateLabels(meta.Model)
	rows := make([][]string, 0, len(states[0]))
	for i := range states[0] {
		column := viz.Column(states, i)
		period := analysis.DominantPeriod(column, dt)
		crossings := analysis.PoincareSection(states, i, stat.Mean(column, nil), i, i)
		name := fmt.Sprintf("x%d", i)
		if i < len(labels) {
			name = labels[i]
		}
		freq := "-"
		if period > 0 {
			freq = fmt.Sprintf("%.4g", 1/period)
		}
		rows = append(rows, []string{name, formatPeriod(period), freq, fmt.Sprint(len(crossings))})
	}
	fmt.Println(viz.Table([]string{"component", "period", "frequency", "mean crossings"}, rows))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return storage.ExportJSON(w, *meta, times, states)
}
