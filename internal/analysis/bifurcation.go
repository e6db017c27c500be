package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
)

// Tunable is a model whose parameters can be changed between solves.
type Tunable interface {
	dde.Model
	dynamo.Configurable
	History() dynamo.History
	Args() []float64
}

// BifurcationPoint represents the local maxima found for one parameter value
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationDiagram sweeps paramName from lo to hi in steps values and
// records the local maxima of component stateIndex after transient. A fixed
// point shows up as no maxima, a limit cycle as one value, period doubling as
// two and chaos as a cloud.
func BifurcationDiagram(
	ctx context.Context,
	m Tunable,
	paramName string,
	lo, hi float64,
	steps int,
	stateIndex int,
	times []float64,
	transient float64,
	opts ...dde.Option,
) ([]BifurcationPoint, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}

	original := m.GetParams()[paramName]
	defer func() { _ = m.SetParam(paramName, original) }()

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		p := lo
		if steps > 1 {
			p = lo + (hi-lo)*float64(i)/float64(steps-1)
		}
		if err := m.SetParam(paramName, p); err != nil {
			return nil, err
		}

		sol, err := dde.Solve(ctx, m, m.History(), times, append([]dde.Option{dde.WithArgs(m.Args()...)}, opts...)...)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", paramName, p, err)
		}

		results = append(results, BifurcationPoint{
			Param:  p,
			Values: localMaxima(sol.Times, sol.Column(stateIndex), transient),
		})
	}
	return results, nil
}

func localMaxima(times, values []float64, after float64) []float64 {
	var peaks []float64
	for i := 1; i < len(values)-1; i++ {
		if times[i] < after {
			continue
		}
		if values[i] > values[i-1] && values[i] >= values[i+1] {
			peaks = append(peaks, values[i])
		}
	}
	return peaks
}
