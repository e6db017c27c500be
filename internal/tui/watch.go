package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ddesim/internal/experiment"
	"github.com/san-kum/ddesim/internal/viz"
)

const historyLen = 60

// DoneMsg carries the outcome of the solve.
type DoneMsg struct {
	Result *experiment.Result
	Err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitFor(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-updates }
}

type Model struct {
	title   string
	t0, t1  float64
	labels  []string
	updates <-chan tea.Msg
	cancel  context.CancelFunc

	last    StepMsg
	history [][]float64
	frame   int
	started time.Time

	done   bool
	result *experiment.Result
	err    error
}

func NewModel(title string, t0, t1 float64, labels []string, updates <-chan tea.Msg, cancel context.CancelFunc) Model {
	return Model{
		title:   title,
		t0:      t0,
		t1:      t1,
		labels:  labels,
		updates: updates,
		cancel:  cancel,
		started: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitFor(m.updates), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil
	case StepMsg:
		m.last = msg
		m.record(msg)
		return m, waitFor(m.updates)
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m *Model) record(msg StepMsg) {
	if len(m.history) < len(msg.X) {
		m.history = append(m.history, make([][]float64, len(msg.X)-len(m.history))...)
	}
	for i, v := range msg.X {
		h := append(m.history[i], v)
		if len(h) > historyLen {
			h = h[len(h)-historyLen:]
		}
		m.history[i] = h
	}
}

// Progress is the fraction of the output interval covered so far.
func (m Model) Progress() float64 {
	if m.done && m.err == nil {
		return 1
	}
	if m.t1 <= m.t0 {
		return 0
	}
	return max(0, min(1, (m.last.T-m.t0)/(m.t1-m.t0)))
}

func (m Model) Result() (*experiment.Result, error) { return m.result, m.err }

func (m Model) View() string {
	var b strings.Builder

	status := viz.StatusRunning.Render(viz.AnimatedSpinner(m.frame) + " solving")
	switch {
	case m.done && m.err != nil:
		status = viz.StatusFailed.Render("✗ failed")
	case m.done:
		status = viz.StatusDone.Render("✓ done")
	}

	b.WriteString(viz.Title.Render(m.title) + "  " + status + "\n\n")
	b.WriteString(viz.ProgressBar(m.Progress(), 40))
	b.WriteString(fmt.Sprintf("  t=%.3f / %.3f\n", m.last.T, m.t1))
	b.WriteString(viz.MetricLabel.Render(fmt.Sprintf("steps %d  elapsed %s", m.last.Steps, time.Since(m.started).Round(time.Millisecond))))
	b.WriteString("\n\n")

	for i, h := range m.history {
		label := fmt.Sprintf("x%d", i)
		if i < len(m.labels) {
			label = m.labels[i]
		}
		b.WriteString(viz.MetricLabel.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(viz.SparklineChart(h, historyLen))
		b.WriteString(viz.MetricValue.Render(fmt.Sprintf(" %10.5g", h[len(h)-1])))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + viz.StatusFailed.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("q: cancel and quit") + "\n")
	return viz.Panel.Render(b.String())
}

// Watch runs exp while showing live progress. Quitting the view cancels the
// solve.
func Watch(ctx context.Context, exp *experiment.Experiment, labels []string) (*experiment.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg, 64)
	exp.AddObserver(NewProgress(updates, 25))

	go func() {
		res, err := exp.Run(ctx)
		select {
		case updates <- DoneMsg{Result: res, Err: err}:
		case <-ctx.Done():
		}
	}()

	cfg := exp.Config()
	m := NewModel(exp.Model().Name(), cfg.Start, cfg.End, labels, updates, cancel)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}

	fm := final.(Model)
	if !fm.done {
		return nil, context.Canceled
	}
	return fm.Result()
}
