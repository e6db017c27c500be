package metrics

import (
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// Stability is the fraction of elapsed time during which every component
// stays within threshold. Each interval between observations is judged by
// the state at its end, so unevenly spaced adaptive steps are weighted by
// their length. Growing delayed oscillations drive it towards zero.
type Stability struct {
	name      string
	threshold float64

	samples    int
	violations int
	lastT      float64
	total      float64
	outside    float64

	escaped bool
	escape  float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	inside := true
	for _, val := range x {
		if math.Abs(val) > s.threshold {
			inside = false
			break
		}
	}

	if s.samples > 0 && t > s.lastT {
		dt := t - s.lastT
		s.total += dt
		if !inside {
			s.outside += dt
		}
	}
	s.samples++
	s.lastT = t

	if !inside {
		s.violations++
		if !s.escaped {
			s.escaped, s.escape = true, t
		}
	}
}

func (s *Stability) Value() float64 {
	switch {
	case s.total > 0:
		return 1.0 - s.outside/s.total
	case s.samples > 0:
		return 1.0 - float64(s.violations)/float64(s.samples)
	}
	return 1.0
}

// EscapeTime is the first time a component left the threshold.
func (s *Stability) EscapeTime() (float64, bool) {
	return s.escape, s.escaped
}

func (s *Stability) Reset() {
	*s = Stability{name: s.name, threshold: s.threshold}
}
