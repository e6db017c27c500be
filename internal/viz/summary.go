package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/ddesim/internal/dde"
)

// Summary renders a panel with the solver statistics, the final state and
// any metrics.
func Summary(title string, sol *dde.Solution, metrics map[string]float64) string {
	var b strings.Builder
	b.WriteString(Title.Render(title))
	b.WriteString("\n\n")

	row := func(label string, value any) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(MetricValue.Render(fmt.Sprint(value)))
		b.WriteString("\n")
	}

	row("outputs", len(sol.Times))
	row("interval", fmt.Sprintf("[%g, %g]", sol.Times[0], sol.Times[len(sol.Times)-1]))
	row("steps", fmt.Sprintf("%d accepted, %d rejected", sol.Stats.Accepted, sol.Stats.Rejected))
	row("evaluations", sol.Stats.Evaluations)
	row("lookups", sol.Stats.Lookups)

	final := make([]string, len(sol.Final()))
	for i, v := range sol.Final() {
		final[i] = fmt.Sprintf("%.6g", v)
	}
	row("final state", "["+strings.Join(final, ", ")+"]")

	if len(metrics) > 0 {
		b.WriteString(Separator(30) + "\n")
		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row(name, fmt.Sprintf("%.6g", metrics[name]))
		}
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Table renders rows under a header with aligned columns.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(r[i]))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = style.Width(widths[i]).Render(c)
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString(line(header, Title))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(line(r, lipgloss.NewStyle()))
		b.WriteString("\n")
	}
	return b.String()
}
