package models

import (
	"fmt"
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// MackeyGlass models blood cell production with a maturation delay.
// State: [x]
// Equation:
//
//	dx/dt = β x(t-τ) / (1 + x(t-τ)^n) - γ x(t)
//
// Periodic for τ around 7 and chaotic for τ = 17 with the classic constants.
type MackeyGlass struct {
	beta    float64
	gamma   float64
	n       float64
	tau     float64
	initial float64
}

func NewMackeyGlass() *MackeyGlass {
	return &MackeyGlass{
		beta:    0.2,
		gamma:   0.1,
		n:       10,
		tau:     17,
		initial: 0.5,
	}
}

func (m *MackeyGlass) Name() string         { return "mackey_glass" }
func (m *MackeyGlass) StateDim() int        { return 1 }
func (m *MackeyGlass) ParamNames() []string { return []string{"tau", "beta", "gamma", "n"} }
func (m *MackeyGlass) Args() []float64      { return argsOf(m) }

func (m *MackeyGlass) History() dynamo.History {
	return dynamo.ConstantHistory(m.initial)
}

func (m *MackeyGlass) Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	tau := arg(args, 0, m.tau)
	beta := arg(args, 1, m.beta)
	gamma := arg(args, 2, m.gamma)
	n := arg(args, 3, m.n)

	x := y.At(t)[0]
	xd := y.At(t - tau)[0]
	if xd < 0 {
		return nil, fmt.Errorf("mackey_glass: negative delayed state %g", xd)
	}

	return dynamo.State{beta*xd/(1+math.Pow(xd, n)) - gamma*x}, nil
}

// GetParams implements dynamo.Configurable
func (m *MackeyGlass) GetParams() map[string]float64 {
	return map[string]float64{
		"tau":     m.tau,
		"beta":    m.beta,
		"gamma":   m.gamma,
		"n":       m.n,
		"initial": m.initial,
	}
}

// SetParam implements dynamo.Configurable
func (m *MackeyGlass) SetParam(name string, value float64) error {
	switch name {
	case "tau":
		m.tau = value
	case "beta":
		m.beta = value
	case "gamma":
		m.gamma = value
	case "n":
		m.n = value
	case "initial":
		if value < 0 {
			return fmt.Errorf("mackey_glass: initial must be non-negative, got %g", value)
		}
		m.initial = value
	default:
		return unknownParam(m.Name(), name)
	}
	return nil
}
