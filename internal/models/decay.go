package models

import (
	"fmt"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// Decay implements linear delayed negative feedback.
// State: [y]
// Equation:
//
//	dy/dt = -a * y(t - τ)
//
// With constant history h the solution is piecewise polynomial, one degree
// higher on each interval of length τ.
type Decay struct {
	tau     float64
	rate    float64
	initial float64
}

func NewDecay() *Decay {
	return &Decay{tau: 1.0, rate: 1.0, initial: 1.0}
}

func (d *Decay) Name() string            { return "decay" }
func (d *Decay) StateDim() int           { return 1 }
func (d *Decay) ParamNames() []string    { return []string{"tau", "rate"} }
func (d *Decay) Args() []float64         { return argsOf(d) }
func (d *Decay) History() dynamo.History { return dynamo.ConstantHistory(d.initial) }

func (d *Decay) Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	tau := arg(args, 0, d.tau)
	rate := arg(args, 1, d.rate)
	return dynamo.State{-rate * y.At(t - tau)[0]}, nil
}

// GetParams implements dynamo.Configurable
func (d *Decay) GetParams() map[string]float64 {
	return map[string]float64{
		"tau":     d.tau,
		"rate":    d.rate,
		"initial": d.initial,
	}
}

// SetParam implements dynamo.Configurable
func (d *Decay) SetParam(name string, value float64) error {
	switch name {
	case "tau":
		if value < 0 {
			return fmt.Errorf("decay: tau must be non-negative, got %g", value)
		}
		d.tau = value
	case "rate":
		d.rate = value
	case "initial":
		d.initial = value
	default:
		return unknownParam(d.Name(), name)
	}
	return nil
}
