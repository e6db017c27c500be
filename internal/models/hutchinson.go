package models

import "github.com/san-kum/ddesim/internal/dynamo"

// Hutchinson is the delayed logistic equation.
// State: [N]
// Equation:
//
//	dN/dt = r N(t) (1 - N(t-τ)/K)
//
// The equilibrium N = K loses stability when r τ > π/2.
type Hutchinson struct {
	r       float64
	k       float64
	tau     float64
	initial float64
}

func NewHutchinson() *Hutchinson {
	return &Hutchinson{r: 1.0, k: 1.0, tau: 2.0, initial: 0.5}
}

func (h *Hutchinson) Name() string         { return "hutchinson" }
func (h *Hutchinson) StateDim() int        { return 1 }
func (h *Hutchinson) ParamNames() []string { return []string{"tau", "r", "k"} }
func (h *Hutchinson) Args() []float64      { return argsOf(h) }

func (h *Hutchinson) History() dynamo.History {
	return dynamo.ConstantHistory(h.initial)
}

func (h *Hutchinson) Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	tau := arg(args, 0, h.tau)
	r := arg(args, 1, h.r)
	k := arg(args, 2, h.k)

	n := y.At(t)[0]
	nd := y.At(t - tau)[0]
	return dynamo.State{r * n * (1 - nd/k)}, nil
}

// GetParams implements dynamo.Configurable
func (h *Hutchinson) GetParams() map[string]float64 {
	return map[string]float64{
		"r":       h.r,
		"k":       h.k,
		"tau":     h.tau,
		"initial": h.initial,
	}
}

// SetParam implements dynamo.Configurable
func (h *Hutchinson) SetParam(name string, value float64) error {
	switch name {
	case "r":
		h.r = value
	case "k":
		h.k = value
	case "tau":
		h.tau = value
	case "initial":
		h.initial = value
	default:
		return unknownParam(h.Name(), name)
	}
	return nil
}
