package metrics

import (
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// Amplitude is half the peak-to-peak range of one state component, ignoring
// everything observed before Settle so transients do not count.
type Amplitude struct {
	name      string
	component int
	settle    float64
	min, max  float64
	samples   int
}

func NewAmplitude(component int, settle float64) *Amplitude {
	a := &Amplitude{
		name:      "amplitude",
		component: component,
		settle:    settle,
	}
	a.Reset()
	return a
}

func (a *Amplitude) Name() string { return a.name }

func (a *Amplitude) Observe(x dynamo.State, t float64) {
	if t < a.settle || a.component >= len(x) {
		return
	}
	v := x[a.component]
	a.min = math.Min(a.min, v)
	a.max = math.Max(a.max, v)
	a.samples++
}

func (a *Amplitude) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return (a.max - a.min) / 2
}

func (a *Amplitude) Reset() {
	a.min = math.Inf(1)
	a.max = math.Inf(-1)
	a.samples = 0
}

// MaxNorm tracks the largest Euclidean norm seen.
type MaxNorm struct {
	max float64
}

func NewMaxNorm() *MaxNorm { return &MaxNorm{} }

func (m *MaxNorm) Name() string { return "max_norm" }

func (m *MaxNorm) Observe(x dynamo.State, t float64) {
	m.max = math.Max(m.max, x.Norm())
}

func (m *MaxNorm) Value() float64 { return m.max }

func (m *MaxNorm) Reset() { m.max = 0 }
