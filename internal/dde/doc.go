// Package dde solves delay differential equations
//
//	y'(t) = f(y, t, y(t-τ1), y(t-τ2), ...),  y(t) = h(t) for t < t0
//
// by running an explicit ODE stepper over a derivative that can look up its
// own past. The model receives a [dynamo.Accessor] and calls At(t-τ) for any
// delay it needs:
//
//	model := dde.ModelFunc(func(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
//	    return dynamo.State{-y.At(t - args[0])[0]}, nil
//	})
//	sol, err := dde.Solve(ctx, model, dynamo.ConstantHistory(1), dde.Linspace(0, 10, 101), dde.WithArgs(1))
//
// Each Solve owns one trajectory for its whole duration; nothing is shared
// between calls, so independent Solves may run in parallel.
package dde
