package dde

import "github.com/san-kum/ddesim/internal/dynamo"

// Model computes y'(t). args are the extra arguments bound with WithArgs.
type Model interface {
	Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error)
}

type ModelFunc func(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error)

func (f ModelFunc) Derive(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	return f(y, t, args)
}

// boundModel is a Model with its extra arguments fixed.
type boundModel func(y dynamo.Accessor, t float64) (dynamo.State, error)

func bind(m Model, args []float64) boundModel {
	fixed := append([]float64(nil), args...)
	return func(y dynamo.Accessor, t float64) (dynamo.State, error) {
		return m.Derive(y, t, fixed)
	}
}
