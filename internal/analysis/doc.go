// Package analysis provides tools for characterizing delay system solutions.
//
//   - [MethodOfSteps]: fixed-step reference solver with its own sample buffer
//   - [MaxAbsDiff], [RMSDiff]: distance between two sampled solutions
//   - [DominantPeriod]: oscillation period from the power spectrum
//   - [DivergenceRate], [LyapunovExponent]: separation of nearby solutions
//   - [BifurcationDiagram]: local maxima across a parameter sweep
//   - [NewPhasePortrait]: 2D phase space trajectories with ASCII rendering
//
// # Chaos Detection
//
// A positive divergence rate between solutions started from nearby histories
// indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(ctx, m, m.History(), times, 1e-8, m.Args())
//	if err == nil && lambda > 0 {
//	    // System is chaotic
//	}
package analysis
