package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// Simulator walks an output time grid with a single-step integrator. In
// adaptive mode steps are accepted or rejected on the integrator's error
// ratio; every accepted point is reported to a [dynamo.Committer] derivative
// before the next step begins.
type Simulator struct {
	integrator dynamo.Integrator
	cfg        dynamo.Config
	observers  []dynamo.Observer
	logger     *slog.Logger
}

func New(integrator dynamo.Integrator, cfg dynamo.Config) *Simulator {
	return &Simulator{
		integrator: integrator,
		cfg:        cfg,
		observers:  make([]dynamo.Observer, 0),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulator) Config() dynamo.Config { return s.cfg }

// Integrate returns the state at every entry of times, starting from x0 at
// times[0]. times must be strictly increasing.
func (s *Simulator) Integrate(ctx context.Context, f dynamo.Derivative, x0 dynamo.State, times []float64) (*dynamo.Result, error) {
	if err := s.validateConfig(); err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, &dynamo.InvalidInputError{Reason: "no output times"}
	}

	result := &dynamo.Result{
		States: make([]dynamo.State, len(times)),
		Times:  append([]float64(nil), times...),
	}

	committer, _ := f.(dynamo.Committer)

	x := x0.Clone()
	t := times[0]
	dt := s.cfg.Dt
	if s.cfg.Adaptive && s.cfg.MaxDt > 0 {
		dt = math.Min(dt, s.cfg.MaxDt)
	}

	if committer != nil {
		if err := committer.Commit(t, x); err != nil {
			return nil, err
		}
	}
	result.States[0] = x.Clone()

	steps := 0
	for i := 1; i < len(times); i++ {
		target := times[i]

		for target-t > dynamo.TimeTolerance(target) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			if s.cfg.MaxSteps > 0 && steps >= s.cfg.MaxSteps {
				return nil, &dynamo.SimulationError{Step: steps, Time: t, Dt: dt, Wrapped: dynamo.ErrTooManySteps}
			}
			steps++

			h := dt
			if s.cfg.Adaptive && s.cfg.MaxDt > 0 {
				h = math.Min(h, s.cfg.MaxDt)
			}
			clipped := false
			if t+h >= target-dynamo.TimeTolerance(target) {
				h = target - t
				clipped = true
			}

			var newX dynamo.State
			if s.cfg.Adaptive {
				xNew, errRatio, dtNew, err := s.adaptiveStep(f, x, t, h)
				if err != nil {
					return nil, &dynamo.SimulationError{Step: steps, Time: t, Dt: h, Wrapped: err}
				}
				if errRatio > 1 || math.IsNaN(errRatio) {
					result.Stats.Rejected++
					s.logger.Debug("step rejected", "t", t, "dt", h, "err_ratio", errRatio)
					if dtNew < s.cfg.MinDt {
						return nil, &dynamo.SimulationError{Step: steps, Time: t, Dt: dtNew, Wrapped: dynamo.ErrStepTooSmall}
					}
					dt = dtNew
					continue
				}
				if !clipped || dtNew > dt {
					dt = dtNew
				}
				newX = xNew
			} else {
				xNew, err := s.integrator.Step(f, x, t, h)
				if err != nil {
					return nil, &dynamo.SimulationError{Step: steps, Time: t, Dt: h, Wrapped: err}
				}
				newX = xNew
			}

			if s.cfg.ValidateState && !newX.IsValid() {
				return nil, &dynamo.SimulationError{Step: steps, Time: t, Dt: h, Wrapped: dynamo.ErrInvalidState}
			}

			if clipped {
				t = target
			} else {
				t += h
			}
			x = newX
			result.Stats.Accepted++
			result.Stats.LastDt = h

			if committer != nil {
				if err := committer.Commit(t, x); err != nil {
					return nil, err
				}
			}
			for _, obs := range s.observers {
				obs.OnStep(x, t)
			}
		}

		result.States[i] = x.Clone()
	}

	s.logger.Debug("integration finished",
		"accepted", result.Stats.Accepted,
		"rejected", result.Stats.Rejected,
		"t_end", t,
	)

	return result, nil
}

func (s *Simulator) validateConfig() error {
	cfg := s.cfg
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if cfg.Adaptive && cfg.MaxDt > 0 && cfg.MinDt > cfg.MaxDt {
		return fmt.Errorf("min dt %g exceeds max dt %g", cfg.MinDt, cfg.MaxDt)
	}
	return nil
}

// adaptiveStep returns the candidate state, its error ratio and a suggested
// next dt. Integrators without an embedded estimate fall back to step doubling.
func (s *Simulator) adaptiveStep(f dynamo.Derivative, x dynamo.State, t, dt float64) (dynamo.State, float64, float64, error) {
	if adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(f, x, t, dt, s.cfg.Tolerance)
	}

	x1, err := s.integrator.Step(f, x, t, dt)
	if err != nil {
		return nil, 0, 0, err
	}
	xHalf, err := s.integrator.Step(f, x, t, dt/2)
	if err != nil {
		return nil, 0, 0, err
	}
	x2, err := s.integrator.Step(f, xHalf, t+dt/2, dt/2)
	if err != nil {
		return nil, 0, 0, err
	}

	errRatio := x1.Sub(x2).Norm() / s.cfg.Tolerance

	dtNew := dt
	if errRatio > 1 {
		dtNew = dt / 2
	} else if errRatio < 0.1 {
		dtNew = dt * 2
		if s.cfg.MaxDt > 0 {
			dtNew = math.Min(dtNew, s.cfg.MaxDt)
		}
	}

	return x2, errRatio, dtNew, nil
}
