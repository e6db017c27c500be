// Package render draws solutions to image files with gonum/plot.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/san-kum/ddesim/internal/analysis"
	"github.com/san-kum/ddesim/internal/dynamo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size is the default image size.
const Size = 6 * vg.Inch

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("x%d", i)
}

// TimeSeries plots every state component against time.
func TimeSeries(title string, times []float64, states []dynamo.State, labels []string) (*plot.Plot, error) {
	if len(states) == 0 || len(times) != len(states) {
		return nil, fmt.Errorf("need one state per time, got %d times and %d states", len(times), len(states))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Add(plotter.NewGrid())

	for i := range states[0] {
		xys := make(plotter.XYs, len(times))
		for k, t := range times {
			xys[k].X = t
			xys[k].Y = states[k][i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(label(labels, i), line)
	}
	p.Legend.Top = true
	return p, nil
}

// Phase plots a 2D phase portrait.
func Phase(title string, portrait *analysis.PhasePortrait2D, xLabel, yLabel string) (*plot.Plot, error) {
	if portrait == nil || len(portrait.Points) == 0 {
		return nil, fmt.Errorf("empty phase portrait")
	}

	xys := make(plotter.XYs, len(portrait.Points))
	for i, pt := range portrait.Points {
		xys[i].X, xys[i].Y = pt.X, pt.Y
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid(), line)
	return p, nil
}

// Format returns the image format implied by path's extension.
func Format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf", "jpg", "jpeg", "eps", "tif", "tiff":
		return ext, nil
	}
	return "", fmt.Errorf("unsupported image format %q", ext)
}

// Save writes p to path in the format named by its extension.
func Save(p *plot.Plot, path string) error {
	if _, err := Format(path); err != nil {
		return err
	}
	return p.Save(Size, Size*2/3, path)
}

// Write renders p to w in the given format.
func Write(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(Size, Size*2/3, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Bifurcation scatters the local maxima found for each parameter value.
func Bifurcation(title, param string, points []analysis.BifurcationPoint) (*plot.Plot, error) {
	var xys plotter.XYs
	for _, bp := range points {
		for _, v := range bp.Values {
			xys = append(xys, plotter.XY{X: bp.Param, Y: v})
		}
	}
	if len(xys) == 0 {
		return nil, fmt.Errorf("no maxima to plot")
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Radius = vg.Points(1)
	sc.GlyphStyle.Color = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = param
	p.Y.Label.Text = "local maxima"
	p.Add(plotter.NewGrid(), sc)
	return p, nil
}
