package metrics

import "github.com/san-kum/ddesim/internal/dynamo"

// Recorder feeds every accepted step to a set of metrics.
type Recorder struct {
	metrics []dynamo.Metric
}

func NewRecorder(ms ...dynamo.Metric) *Recorder {
	return &Recorder{metrics: ms}
}

func (r *Recorder) OnStep(x dynamo.State, t float64) {
	for _, m := range r.metrics {
		m.Observe(x, t)
	}
}

// Values returns the current value of each metric by name.
func (r *Recorder) Values() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Recorder) Reset() {
	for _, m := range r.metrics {
		m.Reset()
	}
}
