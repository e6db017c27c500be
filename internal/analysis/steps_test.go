package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
)

var unitDelay = dde.ModelFunc(func(y dynamo.Accessor, t float64, _ []float64) (dynamo.State, error) {
	return dynamo.State{-y.At(t - 1)[0]}, nil
})

// exactUnitDelay solves y' = -y(t-1) with y = 1 for t <= 0.
func exactUnitDelay(t float64) float64 {
	sum, fact := 0.0, 1.0
	for k := 0; float64(k) <= t+1; k++ {
		if k > 0 {
			fact *= float64(k)
		}
		sum += math.Pow(-1, float64(k)) * math.Pow(t-float64(k)+1, float64(k)) / fact
	}
	return sum
}

func TestMethodOfSteps_Exact(t *testing.T) {
	times := dde.Linspace(0, 8, 9)
	got, err := MethodOfSteps(unitDelay, dynamo.ConstantHistory(1), times, 0.01, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i, tt := range times {
		if diff := math.Abs(got[i][0] - exactUnitDelay(tt)); diff > 1e-4 {
			t.Errorf("t=%g: got %g, want %g", tt, got[i][0], exactUnitDelay(tt))
		}
	}
}

func TestMethodOfSteps_AgreesWithSolve(t *testing.T) {
	lotka := dde.ModelFunc(func(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
		now, late := y.At(t), y.At(t-args[0])
		return dynamo.State{
			0.5 * now[0] * (1 - late[1]),
			-0.5 * now[1] * (1 - late[0]),
		}, nil
	})
	history := dynamo.ConstantHistory(1, 2)
	times := dde.Linspace(2, 12, 101)

	ref, err := MethodOfSteps(lotka, history, times, 0.005, []float64{0.2})
	if err != nil {
		t.Fatal(err)
	}
	sol, err := dde.Solve(context.Background(), lotka, history, times, dde.WithArgs(0.2))
	if err != nil {
		t.Fatal(err)
	}

	if diff := MaxAbsDiff(ref, sol.States); diff > 1e-3 {
		t.Errorf("max difference %g exceeds 1e-3", diff)
	}
}

func TestMethodOfSteps_InvalidStep(t *testing.T) {
	if _, err := MethodOfSteps(unitDelay, dynamo.ConstantHistory(1), []float64{0, 1}, 0, nil); err == nil {
		t.Error("expected error for zero step")
	}
}

func TestDiffs(t *testing.T) {
	a := []dynamo.State{{0, 0}, {1, 1}}
	b := []dynamo.State{{0, 3}, {1, 0}}

	if got := MaxAbsDiff(a, b); got != 3 {
		t.Errorf("MaxAbsDiff = %g, want 3", got)
	}
	if got, want := RMSDiff(a, b), math.Sqrt(10.0/4); math.Abs(got-want) > 1e-15 {
		t.Errorf("RMSDiff = %g, want %g", got, want)
	}
	if RMSDiff(nil, nil) != 0 {
		t.Error("RMSDiff of nothing should be 0")
	}
}
