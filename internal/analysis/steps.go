package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
)

// stepBuffer is a uniformly spaced solution buffer with linear lookup. It is
// deliberately simpler than the solver's trajectory so the two can be
// compared against each other.
type stepBuffer struct {
	history dynamo.History
	t0, h   float64
	xs      []dynamo.State

	stageT float64
	stageX dynamo.State
}

func (b *stepBuffer) end() float64 { return b.t0 + float64(len(b.xs)-1)*b.h }

func (b *stepBuffer) At(t float64) dynamo.State {
	if t < b.t0 {
		return b.history(t)
	}
	if t == b.stageT && b.stageX != nil {
		return b.stageX.Clone()
	}

	end := b.end()
	if t > end {
		last := b.xs[len(b.xs)-1]
		if b.stageX == nil || b.stageT <= end {
			return last.Clone()
		}
		return lerp(end, last, b.stageT, b.stageX, t)
	}

	pos := (t - b.t0) / b.h
	i := int(math.Floor(pos))
	if i >= len(b.xs)-1 {
		return b.xs[len(b.xs)-1].Clone()
	}
	return lerp(b.t0+float64(i)*b.h, b.xs[i], b.t0+float64(i+1)*b.h, b.xs[i+1], t)
}

func lerp(ta float64, a dynamo.State, tb float64, b dynamo.State, t float64) dynamo.State {
	s := (t - ta) / (tb - ta)
	return a.AddScaled(s, b.Sub(a))
}

func (b *stepBuffer) eval(m dde.Model, args []float64, x dynamo.State, t float64) (dynamo.State, error) {
	b.stageT, b.stageX = t, x
	return m.Derive(b, t, args)
}

// MethodOfSteps integrates m with classical RK4 at a fixed step h and
// returns the state at each of times. Delayed values come from linear
// interpolation of the buffer built so far. times must start at the initial
// time and increase.
func MethodOfSteps(m dde.Model, history dynamo.History, times []float64, h float64, args []float64) ([]dynamo.State, error) {
	if len(times) == 0 {
		return nil, nil
	}
	if h <= 0 {
		return nil, fmt.Errorf("step must be positive, got %g", h)
	}

	t0 := times[0]
	b := &stepBuffer{history: history, t0: t0, h: h}
	b.xs = append(b.xs, history(t0).Clone())

	last := times[len(times)-1]
	n := int(math.Ceil((last-t0)/h - 1e-9))
	for k := 0; k < n; k++ {
		t := t0 + float64(k)*h
		x := b.xs[k]

		k1, err := b.eval(m, args, x, t)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}
		k2, err := b.eval(m, args, x.AddScaled(h/2, k1), t+h/2)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}
		k3, err := b.eval(m, args, x.AddScaled(h/2, k2), t+h/2)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}
		k4, err := b.eval(m, args, x.AddScaled(h, k3), t+h)
		if err != nil {
			return nil, fmt.Errorf("t=%g: %w", t, err)
		}

		next := x.Clone()
		for i := range next {
			next[i] += h / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
		b.xs = append(b.xs, next)
		b.stageX = nil
	}

	out := make([]dynamo.State, len(times))
	for i, t := range times {
		out[i] = b.At(t)
	}
	return out, nil
}

// MaxAbsDiff is the largest componentwise difference between a and b.
func MaxAbsDiff(a, b []dynamo.State) float64 {
	worst := 0.0
	for i := 0; i < len(a) && i < len(b); i++ {
		worst = math.Max(worst, a[i].Distance(b[i]))
	}
	return worst
}

// RMSDiff is the root mean square componentwise difference between a and b.
func RMSDiff(a, b []dynamo.State) float64 {
	sum, count := 0.0, 0
	for i := 0; i < len(a) && i < len(b); i++ {
		for j := 0; j < len(a[i]) && j < len(b[i]); j++ {
			d := a[i][j] - b[i][j]
			sum += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}
