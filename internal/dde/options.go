package dde

import (
	"io"
	"log/slog"

	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/integrators"
	"github.com/san-kum/ddesim/internal/trajectory"
)

type options struct {
	args       []float64
	integrator dynamo.Integrator
	cfg        dynamo.Config
	logger     *slog.Logger
	observers  []dynamo.Observer
	interp     trajectory.Interpolation
}

type Option func(*options)

func defaultOptions() *options {
	return &options{
		integrator: integrators.NewRK45(),
		cfg:        dynamo.DefaultConfig(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		interp:     trajectory.Hermite,
	}
}

// WithArgs binds extra arguments passed unchanged to every model call.
func WithArgs(args ...float64) Option {
	return func(o *options) { o.args = append([]float64(nil), args...) }
}

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(o *options) {
		if integ != nil {
			o.integrator = integ
		}
	}
}

func WithConfig(cfg dynamo.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an observer called after every accepted step.
func WithObserver(obs dynamo.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

func WithInterpolation(i trajectory.Interpolation) Option {
	return func(o *options) { o.interp = i }
}
