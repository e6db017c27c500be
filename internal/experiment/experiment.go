package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/ddesim/internal/config"
	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/logging"
	"github.com/san-kum/ddesim/internal/metrics"
	"github.com/san-kum/ddesim/internal/models"
	"github.com/san-kum/ddesim/internal/trajectory"
)

// Result is a finished run.
type Result struct {
	Solution *dde.Solution
	Metrics  map[string]float64
	Elapsed  time.Duration
}

// Experiment is one configured solve: a model with its parameters applied,
// a history, an integrator and the metrics observed along the way.
type Experiment struct {
	cfg        *config.Config
	model      models.Delayed
	history    dynamo.History
	integrator dynamo.Integrator
	interp     trajectory.Interpolation
	recorder   *metrics.Recorder
	observers  []dynamo.Observer
	logger     *slog.Logger
}

func New(reg *Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := reg.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	for name, value := range cfg.Params {
		if err := model.SetParam(name, value); err != nil {
			return nil, err
		}
	}

	integName := cfg.Integrator
	if integName == "" {
		integName = "rk45"
	}
	integ, err := reg.GetIntegrator(integName)
	if err != nil {
		return nil, err
	}

	interp, err := trajectory.ParseInterpolation(cfg.Interpolation)
	if err != nil {
		return nil, err
	}

	history := model.History()
	if len(cfg.History) > 0 {
		if len(cfg.History) != model.StateDim() {
			return nil, fmt.Errorf("history has %d values but %s has %d state variables",
				len(cfg.History), model.Name(), model.StateDim())
		}
		history = dynamo.ConstantHistory(cfg.History...)
	}

	return &Experiment{
		cfg:        cfg,
		model:      model,
		history:    history,
		integrator: integ,
		interp:     interp,
		recorder:   metrics.NewRecorder(DefaultMetrics(cfg)...),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// DefaultMetrics returns the metrics recorded for every run. Amplitude only
// counts the second half of the interval so transients are ignored.
func DefaultMetrics(cfg *config.Config) []dynamo.Metric {
	settle := cfg.Start + (cfg.End-cfg.Start)/2
	return []dynamo.Metric{
		metrics.NewStability(1e3),
		metrics.NewAmplitude(0, settle),
		metrics.NewMaxNorm(),
	}
}

func (e *Experiment) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// AddObserver registers an observer for accepted steps
func (e *Experiment) AddObserver(o dynamo.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Experiment) Model() models.Delayed { return e.model }

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) History() dynamo.History { return e.history }

// SolveOptions returns the solver settings of this experiment without the
// model arguments or observers, for analyses that run their own solves of
// the same model.
func (e *Experiment) SolveOptions() []dde.Option {
	return []dde.Option{
		dde.WithIntegrator(e.integrator),
		dde.WithConfig(e.cfg.SolverConfig()),
		dde.WithInterpolation(e.interp),
		dde.WithLogger(e.logger),
	}
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	opts := append(e.SolveOptions(), dde.WithArgs(e.model.Args()...), dde.WithObserver(e.recorder))
	for _, o := range e.observers {
		opts = append(opts, dde.WithObserver(o))
	}

	ctx = logging.WithRun(ctx, e.model.Name())
	e.recorder.Reset()
	start := time.Now()
	sol, err := dde.Solve(ctx, e.model, e.history, e.cfg.Times(), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.model.Name(), err)
	}
	elapsed := time.Since(start)

	e.logger.InfoContext(ctx, "run complete",
		"model", e.model.Name(),
		"params", e.model.GetParams(),
		"accepted", sol.Stats.Accepted,
		"rejected", sol.Stats.Rejected,
		"evaluations", sol.Stats.Evaluations,
		"elapsed", elapsed,
	)

	return &Result{
		Solution: sol,
		Metrics:  e.recorder.Values(),
		Elapsed:  elapsed,
	}, nil
}
