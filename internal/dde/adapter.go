package dde

import (
	"fmt"

	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/trajectory"
	"gonum.org/v1/gonum/floats"
)

// adapter turns a delay model into a plain dynamo.Derivative. It is the only
// writer of its trajectory: every evaluation stages (t, x) before the model
// runs, and every step the stepper accepts is committed through Commit.
type adapter struct {
	tr    *trajectory.Trajectory
	acc   *trajectory.Accessor
	model boundModel
	dim   int

	checked bool

	last struct {
		ok bool
		t  float64
		x  dynamo.State
		dx dynamo.State
	}

	evaluations int
	commits     int
	lookups     int
}

var (
	_ dynamo.Derivative = (*adapter)(nil)
	_ dynamo.Committer  = (*adapter)(nil)
)

func newAdapter(tr *trajectory.Trajectory, model boundModel) *adapter {
	return &adapter{
		tr:    tr,
		acc:   tr.Accessor(),
		model: model,
		dim:   tr.Dim(),
	}
}

func (a *adapter) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if err := a.tr.Stage(t, x); err != nil {
		return nil, err
	}

	a.acc.Reset()
	a.evaluations++
	dx, err := a.call(t)
	a.lookups += a.acc.Lookups()
	if err != nil {
		return nil, err
	}

	if len(dx) != a.dim {
		if !a.checked {
			return nil, &dynamo.InvalidInputError{
				Reason:  fmt.Sprintf("model returned %d values at t=%g but the state has %d", len(dx), t, a.dim),
				Wrapped: dynamo.ErrDimensionMismatch,
			}
		}
		return nil, a.evalError(t, fmt.Errorf("model returned %d values, want %d: %w", len(dx), a.dim, dynamo.ErrDimensionMismatch))
	}
	a.checked = true

	if !dx.IsValid() {
		return nil, a.evalError(t, dynamo.ErrInvalidState)
	}

	if last := a.tr.Last(); last.T == t && floats.Equal(last.X, x) {
		a.tr.Annotate(t, dx)
	}

	a.last.ok = true
	a.last.t = t
	a.last.x = x.Clone()
	a.last.dx = dx.Clone()

	return dx, nil
}

// call runs the model, turning a panic or a failed lookup into a
// ModelEvaluationError.
func (a *adapter) call(t float64) (dx dynamo.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			dx, err = nil, a.evalError(t, fmt.Errorf("model panicked: %v", r))
		}
	}()

	dx, err = a.model(a.acc, t)
	if err != nil {
		return nil, a.evalError(t, err)
	}
	if lookupErr := a.acc.Err(); lookupErr != nil {
		return nil, a.evalError(t, lookupErr)
	}
	return dx, nil
}

func (a *adapter) evalError(t float64, err error) error {
	me := &dynamo.ModelEvaluationError{Time: t, Wrapped: err}
	if a.acc.Err() != nil {
		me.LookupTime, me.HasLookup = a.acc.FailedAt(), true
	} else if lt, ok := a.acc.LastLookup(); ok {
		me.LookupTime, me.HasLookup = lt, true
	}
	return me
}

// Commit records an accepted point. When the stepper's last evaluation was
// exactly this point its derivative is kept for Hermite interpolation.
func (a *adapter) Commit(t float64, x dynamo.State) error {
	var dx dynamo.State
	if a.last.ok && a.last.t == t && floats.Equal(a.last.x, x) {
		dx = a.last.dx
	}
	if err := a.tr.Record(t, x, dx); err != nil {
		return err
	}
	a.commits++
	return nil
}
