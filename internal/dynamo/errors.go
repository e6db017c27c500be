package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solver operations.
var (
	// ErrInvalidInput indicates malformed arguments rejected before integration starts.
	ErrInvalidInput = errors.New("dynamo: invalid input")

	// ErrModelEvaluation indicates the model or history failed during integration.
	ErrModelEvaluation = errors.New("dynamo: model evaluation failed")

	// ErrConsistency indicates a trajectory write that went backwards in time.
	ErrConsistency = errors.New("dynamo: trajectory consistency violation")

	// ErrInvalidState indicates a state vector with invalid values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrTooManySteps indicates the step budget ran out before the last output time.
	ErrTooManySteps = errors.New("dynamo: step limit exceeded")
)

// InvalidInputError carries the reason a solve was rejected.
type InvalidInputError struct {
	Reason  string
	Wrapped error
}

func (e *InvalidInputError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%v: %s: %v", ErrInvalidInput, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidInput, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return e.Wrapped }

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// ModelEvaluationError wraps a failure raised while evaluating the model at Time.
// LookupTime is the delayed time being resolved when the failure happened, if any.
type ModelEvaluationError struct {
	Time       float64
	LookupTime float64
	HasLookup  bool
	Wrapped    error
}

func (e *ModelEvaluationError) Error() string {
	if e.HasLookup {
		return fmt.Sprintf("%v at t=%g (lookup t=%g): %v", ErrModelEvaluation, e.Time, e.LookupTime, e.Wrapped)
	}
	return fmt.Sprintf("%v at t=%g: %v", ErrModelEvaluation, e.Time, e.Wrapped)
}

func (e *ModelEvaluationError) Unwrap() error { return e.Wrapped }

func (e *ModelEvaluationError) Is(target error) bool { return target == ErrModelEvaluation }

// ConsistencyError reports an attempt to write before the trajectory's current end.
type ConsistencyError struct {
	Time float64
	Max  float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%v: t=%g is before last recorded t=%g", ErrConsistency, e.Time, e.Max)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }

// SimulationError wraps an error with stepping context.
type SimulationError struct {
	Step    int
	Time    float64
	Dt      float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, dt=%.3g): %v", e.Step, e.Time, e.Dt, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
