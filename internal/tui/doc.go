// Package tui implements the live watch view for a running solve.
//
// The solve runs on its own goroutine. A [Progress] observer forwards every
// few accepted steps to the Bubble Tea program over a channel, so the solver
// never blocks on rendering.
//
// # Key Bindings
//
//	q, ctrl+c - Cancel the solve and quit
package tui
