// Package models provides delay differential equation models.
//
// Each model implements [dde.Model] and reads its parameters from the extra
// arguments bound with dde.WithArgs, in the order given by ParamNames:
//
//   - [Decay]: linear delayed decay y' = -a y(t-τ)
//   - [Sine]: y' = -y(t-τ) with history sin(t), exact for τ = π/2
//   - [LotkaVolterra]: predator-prey with delayed interaction
//   - [MackeyGlass]: blood cell production, chaotic for τ = 17
//   - [Hutchinson]: delayed logistic growth
//
// # Example
//
//	m := models.NewLotkaVolterra()
//	_ = m.SetParam("d", 0.2)
//	sol, err := dde.Solve(ctx, m, m.History(), times, dde.WithArgs(m.Args()...))
package models
