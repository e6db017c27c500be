// Package trajectory stores the running solution of a delay differential
// equation and answers "what is the state at time t" for any real t.
//
// A [Trajectory] resolves a query through one of three regimes:
//
//   - [RegimeHistory]: t < t0, the user's history function is returned unchanged
//   - [RegimeInterpolate]: t0 <= t <= last committed time, exact at samples and
//     interpolated between them
//   - [RegimeExtrapolate]: t beyond the committed samples, a best-effort
//     answer built from the newest samples and the in-flight stage
//
// Committed samples are append-only. The single provisional stage sample
// lets an integrator probe inside its current step, and retry that step,
// without ever writing backwards into the committed buffer.
//
// Models read through an [Accessor]; only the owner of the Trajectory writes.
// A Trajectory is not safe for concurrent use.
package trajectory
