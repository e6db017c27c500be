package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/san-kum/ddesim/internal/config"
	"golang.org/x/sync/errgroup"
)

// SweepPoint is the run for one parameter value.
type SweepPoint struct {
	Value  float64
	Result *Result
}

// Sweep runs one experiment per value of param concurrently, at most workers
// at a time (GOMAXPROCS when workers <= 0). Every run gets its own model and
// trajectory. The first failure cancels the remaining runs.
func Sweep(ctx context.Context, reg *Registry, base *config.Config, param string, values []float64, workers int, logger *slog.Logger) ([]SweepPoint, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	points := make([]SweepPoint, len(values))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range values {
		i, v := i, v
		cfg := base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[param] = v

		g.Go(func() error {
			exp, err := New(reg, cfg)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", param, v, err)
			}
			exp.SetLogger(logger.With("sweep", param, "value", v))

			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", param, v, err)
			}
			points[i] = SweepPoint{Value: v, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
