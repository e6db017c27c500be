package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ddesim/internal/dynamo"
)

// StepMsg reports the latest accepted step.
type StepMsg struct {
	T     float64
	X     dynamo.State
	Steps int
}

// Progress is an observer that forwards every stride-th accepted step.
// Sends never block: when the view falls behind, updates are dropped.
type Progress struct {
	out    chan<- tea.Msg
	stride int
	steps  int
}

func NewProgress(out chan<- tea.Msg, stride int) *Progress {
	if stride < 1 {
		stride = 1
	}
	return &Progress{out: out, stride: stride}
}

func (p *Progress) OnStep(x dynamo.State, t float64) {
	p.steps++
	if p.steps%p.stride != 0 {
		return
	}
	select {
	case p.out <- StepMsg{T: t, X: x.Clone(), Steps: p.steps}:
	default:
	}
}

// Steps is the number of accepted steps seen so far.
func (p *Progress) Steps() int { return p.steps }
