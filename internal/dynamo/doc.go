// Package dynamo provides the core primitives shared by the solver packages.
//
// The package defines the fundamental interfaces and types for numerical
// integration of delay differential equations (DDEs):
//
//   - [State]: vector representing system state
//   - [History]: solution before the start time
//   - [Accessor]: read-only lookup into a running trajectory
//   - [Derivative]: right-hand side consumed by an integrator
//   - [Committer]: optional hook told about accepted steps
//   - [Integrator], [AdaptiveIntegrator]: single-step methods
//
// # Errors
//
// Sentinel errors ([ErrInvalidInput], [ErrModelEvaluation], [ErrConsistency], ...)
// are matched with errors.Is. The struct errors carry the time at which the
// failure happened and are extracted with errors.As:
//
//	var me *dynamo.ModelEvaluationError
//	if errors.As(err, &me) {
//	    log.Printf("model failed at t=%g", me.Time)
//	}
package dynamo
