package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ddesim/internal/dynamo"
)

// Column extracts component i of each state.
func Column(states []dynamo.State, i int) []float64 {
	out := make([]float64, len(states))
	for k, x := range states {
		if i < len(x) {
			out[k] = x[i]
		}
	}
	return out
}

// Downsample keeps at most n evenly spaced values so long runs fit the
// terminal width.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		out[i] = values[int(math.Round(float64(i)*step))]
	}
	return out
}

// Chart plots one component against the sample index.
func Chart(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(values, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Overlay plots several series on shared axes, one color each.
func Overlay(series [][]float64, caption string, width, height int) string {
	if len(series) == 0 {
		return ""
	}
	data := make([][]float64, len(series))
	for i, s := range series {
		data[i] = Downsample(s, width)
	}
	colors := []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green, asciigraph.Red}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if len(series) <= len(colors) {
		opts = append(opts, asciigraph.SeriesColors(colors[:len(series)]...))
	}
	return asciigraph.PlotMany(data, opts...)
}

// Caption names state component i, using labels when available.
func Caption(labels []string, i int, t0, t1 float64) string {
	name := fmt.Sprintf("x%d", i)
	if i < len(labels) {
		name = labels[i]
	}
	return fmt.Sprintf("%s over t ∈ [%g, %g]", name, t0, t1)
}
