package dde

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/sim"
	"github.com/san-kum/ddesim/internal/trajectory"
	"gonum.org/v1/gonum/floats"
)

// Stats summarises the work done by one Solve.
type Stats struct {
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
	Evaluations int `json:"evaluations"`
	Lookups     int `json:"lookups"`
	Samples     int `json:"samples"`
}

// Solution holds one state per requested output time.
type Solution struct {
	Times  []float64
	States []dynamo.State
	Stats  Stats
}

// Column returns component i of every state.
func (s *Solution) Column(i int) []float64 {
	out := make([]float64, len(s.States))
	for k, x := range s.States {
		if i < len(x) {
			out[k] = x[i]
		}
	}
	return out
}

// Final returns the state at the last output time.
func (s *Solution) Final() dynamo.State {
	return s.States[len(s.States)-1]
}

// Solve integrates the delay model over times. times[0] is the start time,
// the state there is history(times[0]), and the result has exactly one state
// per entry of times. Any failure aborts the whole solve.
func Solve(ctx context.Context, m Model, history dynamo.History, times []float64, opts ...Option) (*Solution, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if err := validateTimes(times); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &dynamo.InvalidInputError{Reason: "nil model"}
	}
	if history == nil {
		return nil, &dynamo.InvalidInputError{Reason: "nil history function"}
	}

	t0 := times[0]
	x0, err := initialState(history, t0)
	if err != nil {
		return nil, err
	}

	tr, err := trajectory.New(history, t0, x0, trajectory.WithInterpolation(o.interp))
	if err != nil {
		return nil, err
	}
	ad := newAdapter(tr, bind(m, o.args))

	s := sim.New(o.integrator, o.cfg)
	s.SetLogger(o.logger)
	for _, obs := range o.observers {
		s.AddObserver(obs)
	}

	o.logger.DebugContext(ctx, "solve started",
		"t0", t0,
		"t_end", times[len(times)-1],
		"outputs", len(times),
		"dim", len(x0),
		"interpolation", o.interp.String(),
	)

	res, err := s.Integrate(ctx, ad, x0, times)
	if err != nil {
		return nil, surface(err)
	}

	sol := &Solution{
		Times:  append([]float64(nil), times...),
		States: res.States,
		Stats: Stats{
			Accepted:    res.Stats.Accepted,
			Rejected:    res.Stats.Rejected,
			Evaluations: ad.evaluations,
			Lookups:     ad.lookups,
			Samples:     tr.Len(),
		},
	}

	o.logger.DebugContext(ctx, "solve finished",
		"accepted", sol.Stats.Accepted,
		"rejected", sol.Stats.Rejected,
		"evaluations", sol.Stats.Evaluations,
		"samples", sol.Stats.Samples,
	)

	return sol, nil
}

func validateTimes(times []float64) error {
	if len(times) < 2 {
		return &dynamo.InvalidInputError{Reason: fmt.Sprintf("need at least 2 output times, got %d", len(times))}
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &dynamo.InvalidInputError{Reason: fmt.Sprintf("times[%d] is not finite", i)}
		}
		if i > 0 && t <= times[i-1] {
			return &dynamo.InvalidInputError{Reason: fmt.Sprintf("times must be strictly increasing: times[%d]=%g <= times[%d]=%g", i, t, i-1, times[i-1])}
		}
	}
	return nil
}

func initialState(history dynamo.History, t0 float64) (x0 dynamo.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			x0, err = nil, &dynamo.InvalidInputError{Reason: fmt.Sprintf("history panicked at t0=%g: %v", t0, r)}
		}
	}()

	x0 = history(t0)
	if len(x0) == 0 {
		return nil, &dynamo.InvalidInputError{Reason: "history returned an empty state"}
	}
	if !x0.IsValid() {
		return nil, &dynamo.InvalidInputError{Reason: fmt.Sprintf("history at t0=%g", t0), Wrapped: dynamo.ErrInvalidState}
	}
	return x0.Clone(), nil
}

// surface unwraps stepper context so callers see the solver error taxonomy
// directly.
func surface(err error) error {
	var (
		invalid *dynamo.InvalidInputError
		model   *dynamo.ModelEvaluationError
		consist *dynamo.ConsistencyError
	)
	switch {
	case errors.As(err, &invalid):
		return invalid
	case errors.As(err, &model):
		return model
	case errors.As(err, &consist):
		return consist
	}
	return fmt.Errorf("solve: %w", err)
}

// Linspace returns n evenly spaced points from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}
