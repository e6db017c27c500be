package models

import (
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// Sine is dy/dt = -y(t - τ) started from the history sin(t).
// For τ = π/2 the exact solution is sin(t) for all t, which makes it the
// accuracy reference for the solver.
type Sine struct {
	tau float64
}

func NewSine() *Sine {
	return &Sine{tau: math.Pi / 2}
}

func (s *Sine) Name() string         { return "sine" }
func (s *Sine) StateDim() int        { return 1 }
func (s *Sine) ParamNames() []string { return []string{"tau"} }
func (s *Sine) Args() []float64      { return argsOf(s) }

func (s *Sine) History() dynamo.History {
	return func(t float64) dynamo.State { return dynamo.State{math.Sin(t)} }
}

func (s *Sine) Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	tau := arg(args, 0, s.tau)
	return dynamo.State{-y.At(t - tau)[0]}, nil
}

// Exact is the analytic solution, valid when τ = π/2.
func (s *Sine) Exact(t float64) float64 { return math.Sin(t) }

// GetParams implements dynamo.Configurable
func (s *Sine) GetParams() map[string]float64 {
	return map[string]float64{"tau": s.tau}
}

// SetParam implements dynamo.Configurable
func (s *Sine) SetParam(name string, value float64) error {
	if name != "tau" {
		return unknownParam(s.Name(), name)
	}
	s.tau = value
	return nil
}
