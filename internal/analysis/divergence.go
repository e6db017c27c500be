package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// DivergenceRate fits ln|a(t) - b(t)| against t by least squares and returns
// the slope. Points where the two solutions coincide are skipped.
func DivergenceRate(times []float64, a, b []dynamo.State) float64 {
	xs := make([]float64, 0, len(times))
	ys := make([]float64, 0, len(times))
	for i := 0; i < len(times) && i < len(a) && i < len(b); i++ {
		d := a[i].Distance(b[i])
		if d <= 0 || math.IsInf(d, 0) || math.IsNaN(d) {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, math.Log(d))
	}
	if len(xs) < 2 {
		return 0
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}

// LyapunovExponent estimates the largest Lyapunov exponent from two solves
// whose histories differ by eps in every component.
//
// Algorithm:
// 1. Solve from history and from history + eps
// 2. Measure their separation at every output time
// 3. λ ≈ slope of ln|δx(t)| against t
//
// Separation saturates once it reaches the attractor size, so times should
// cover the growth phase only.
func LyapunovExponent(ctx context.Context, m dde.Model, history dynamo.History, times []float64, eps float64, args []float64, opts ...dde.Option) (float64, error) {
	if eps == 0 {
		return 0, fmt.Errorf("perturbation must be non-zero")
	}

	perturbed := func(t float64) dynamo.State {
		x := history(t)
		out := make(dynamo.State, len(x))
		for i, v := range x {
			out[i] = v + eps
		}
		return out
	}

	base := append([]dde.Option{dde.WithArgs(args...)}, opts...)
	ref, err := dde.Solve(ctx, m, history, times, base...)
	if err != nil {
		return 0, err
	}
	near, err := dde.Solve(ctx, m, perturbed, times, base...)
	if err != nil {
		return 0, err
	}

	return DivergenceRate(times, ref.States, near.States), nil
}
