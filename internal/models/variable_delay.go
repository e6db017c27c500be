package models

import (
	"fmt"
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// VariableDelay has a delay that depends on the current state.
// State: [y]
// Equation:
//
//	dy/dt = -y(t - a cos²(y(t)))
//
// The delay lies in [0, a], so lookups can land anywhere from the history
// up to the step being taken.
type VariableDelay struct {
	scale   float64
	initial float64
}

func NewVariableDelay() *VariableDelay {
	return &VariableDelay{scale: 3, initial: 1}
}

func (v *VariableDelay) Name() string         { return "variable_delay" }
func (v *VariableDelay) StateDim() int        { return 1 }
func (v *VariableDelay) ParamNames() []string { return []string{"a"} }
func (v *VariableDelay) Args() []float64      { return argsOf(v) }

func (v *VariableDelay) History() dynamo.History {
	return dynamo.ConstantHistory(v.initial)
}

func (v *VariableDelay) Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	a := arg(args, 0, v.scale)
	c := math.Cos(y.At(t)[0])
	return dynamo.State{-y.At(t - a*c*c)[0]}, nil
}

// GetParams implements dynamo.Configurable
func (v *VariableDelay) GetParams() map[string]float64 {
	return map[string]float64{"a": v.scale, "initial": v.initial}
}

// SetParam implements dynamo.Configurable
func (v *VariableDelay) SetParam(name string, value float64) error {
	switch name {
	case "a":
		if value < 0 {
			return fmt.Errorf("variable_delay: a must be non-negative, got %g", value)
		}
		v.scale = value
	case "initial":
		v.initial = value
	default:
		return unknownParam(v.Name(), name)
	}
	return nil
}
