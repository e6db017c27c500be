package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

func (s State) Add(other State) State {
	result := s.Clone()
	floats.Add(result, other)
	return result
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

func (s State) Sub(other State) State {
	result := s.Clone()
	floats.Sub(result, other)
	return result
}

// AddScaled returns s + alpha*other.
func (s State) AddScaled(alpha float64, other State) State {
	result := make(State, len(s))
	floats.AddScaledTo(result, s, alpha, other)
	return result
}

// Distance is the max-norm distance between two states of equal dimension.
func (s State) Distance(other State) float64 {
	return floats.Distance(s, other, math.Inf(1))
}

// TimeTolerance is the slack under which two times are treated as equal.
func TimeTolerance(t float64) float64 {
	return 1e-12 * math.Max(1, math.Abs(t))
}

// History defines the solution for times before the integration start.
type History func(t float64) State

// ConstantHistory returns a History that is x for every t.
func ConstantHistory(x ...float64) History {
	c := State(x).Clone()
	return func(float64) State { return c.Clone() }
}

// Accessor is the read-only view of a running trajectory handed to models.
type Accessor interface {
	At(t float64) State
}

// Derivative is the right-hand side a stepper integrates.
type Derivative interface {
	Derive(x State, t float64) (State, error)
}

// DerivativeFunc adapts a plain function to Derivative.
type DerivativeFunc func(x State, t float64) (State, error)

func (f DerivativeFunc) Derive(x State, t float64) (State, error) { return f(x, t) }

// Committer is implemented by derivatives that need to know which points the
// stepper accepted.
type Committer interface {
	Commit(t float64, x State) error
}

type Integrator interface {
	Step(f Derivative, x State, t float64, dt float64) (State, error)
}

// AdaptiveIntegrator performs one embedded step and reports the error ratio
// (estimated error over tolerance) plus a suggested next step.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(f Derivative, x State, t, dt, tol float64) (xNew State, errRatio, dtNew float64, err error)
}

type Observer interface {
	OnStep(x State, t float64)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	MaxSteps      int
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Tolerance:     1e-6,
		MaxDt:         0.01,
		MinDt:         1e-10,
		MaxSteps:      10_000_000,
		Adaptive:      true,
		ValidateState: true,
	}
}

// Stats counts stepper work for a single integration.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
	LastDt      float64
}

type Result struct {
	States []State
	Times  []float64
	Stats  Stats
}
