package trajectory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/ddesim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

type Regime int

const (
	RegimeHistory Regime = iota
	RegimeInterpolate
	RegimeExtrapolate
)

func (r Regime) String() string {
	switch r {
	case RegimeHistory:
		return "history"
	case RegimeInterpolate:
		return "interpolate"
	case RegimeExtrapolate:
		return "extrapolate"
	}
	return fmt.Sprintf("Regime(%d)", int(r))
}

// Interpolation selects how states between committed samples are built.
type Interpolation int

const (
	// Linear interpolates and extrapolates along secants.
	Linear Interpolation = iota
	// Hermite uses cubic Hermite segments when both ends carry a derivative
	// and falls back to Linear otherwise.
	Hermite
)

func (i Interpolation) String() string {
	if i == Hermite {
		return "hermite"
	}
	return "linear"
}

func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "", "hermite", "cubic":
		return Hermite, nil
	case "linear":
		return Linear, nil
	}
	return Linear, fmt.Errorf("unknown interpolation: %s", s)
}

// Sample is one committed point. DX is the derivative at (T, X) when known.
type Sample struct {
	T  float64
	X  dynamo.State
	DX dynamo.State
}

type Trajectory struct {
	history dynamo.History
	t0      float64
	dim     int
	interp  Interpolation

	samples []Sample
	head    *Sample
	acc     *Accessor
}

type Option func(*Trajectory)

func WithInterpolation(i Interpolation) Option {
	return func(tr *Trajectory) { tr.interp = i }
}

// New creates a trajectory seeded with (t0, x0). history answers every query
// before t0.
func New(history dynamo.History, t0 float64, x0 dynamo.State, opts ...Option) (*Trajectory, error) {
	if history == nil {
		return nil, &dynamo.InvalidInputError{Reason: "nil history function"}
	}
	if len(x0) == 0 {
		return nil, &dynamo.InvalidInputError{Reason: "empty initial state"}
	}

	tr := &Trajectory{
		history: history,
		t0:      t0,
		dim:     len(x0),
		interp:  Hermite,
		samples: []Sample{{T: t0, X: x0.Clone()}},
	}
	for _, opt := range opts {
		opt(tr)
	}
	tr.acc = &Accessor{tr: tr}
	return tr, nil
}

func (tr *Trajectory) T0() float64 { return tr.t0 }

func (tr *Trajectory) Dim() int { return tr.dim }

func (tr *Trajectory) Len() int { return len(tr.samples) }

func (tr *Trajectory) Interpolation() Interpolation { return tr.interp }

// Last returns the newest committed sample.
func (tr *Trajectory) Last() Sample {
	return tr.samples[len(tr.samples)-1]
}

// Samples returns a copy of the committed buffer.
func (tr *Trajectory) Samples() []Sample {
	out := make([]Sample, len(tr.samples))
	for i, s := range tr.samples {
		out[i] = Sample{T: s.T, X: s.X.Clone()}
		if s.DX != nil {
			out[i].DX = s.DX.Clone()
		}
	}
	return out
}

// Accessor returns the read-only view bound to this trajectory. The same
// value is returned on every call.
func (tr *Trajectory) Accessor() *Accessor { return tr.acc }

// Regime reports which regime Query would use for t.
func (tr *Trajectory) Regime(t float64) Regime {
	if t < tr.t0 {
		return RegimeHistory
	}
	last := tr.Last().T
	if t <= last+dynamo.TimeTolerance(last) {
		return RegimeInterpolate
	}
	return RegimeExtrapolate
}

// Query returns the state at t. It never fails for t >= t0; before t0 it
// fails only when the history function returns a vector of the wrong size.
func (tr *Trajectory) Query(t float64) (dynamo.State, error) {
	switch tr.Regime(t) {
	case RegimeHistory:
		x := tr.history(t)
		if len(x) != tr.dim {
			return nil, fmt.Errorf("history at t=%g returned %d values, want %d: %w",
				t, len(x), tr.dim, dynamo.ErrDimensionMismatch)
		}
		return x, nil
	case RegimeInterpolate:
		return tr.interpolate(t), nil
	default:
		return tr.extrapolate(t), nil
	}
}

func (tr *Trajectory) interpolate(t float64) dynamo.State {
	n := len(tr.samples)
	i := sort.Search(n, func(i int) bool { return tr.samples[i].T >= t })

	if i < n && nearlyEqual(tr.samples[i].T, t) {
		return tr.samples[i].X.Clone()
	}
	if i > 0 && nearlyEqual(tr.samples[i-1].T, t) {
		return tr.samples[i-1].X.Clone()
	}
	return tr.between(tr.samples[i-1], tr.samples[i], t)
}

// extrapolate answers queries past the committed buffer. Preference order:
// inside or past the stage sample, the committed tangent, the last secant,
// then the last sample itself.
func (tr *Trajectory) extrapolate(t float64) dynamo.State {
	last := tr.Last()

	if tr.head != nil {
		if nearlyEqual(tr.head.T, t) {
			return tr.head.X.Clone()
		}
		return linear(last, *tr.head, t)
	}

	if tr.interp == Hermite && last.DX != nil {
		out := make(dynamo.State, tr.dim)
		floats.AddScaledTo(out, last.X, t-last.T, last.DX)
		return out
	}

	if n := len(tr.samples); n >= 2 {
		return linear(tr.samples[n-2], last, t)
	}

	return last.X.Clone()
}

func (tr *Trajectory) between(a, b Sample, t float64) dynamo.State {
	if tr.interp == Hermite && a.DX != nil && b.DX != nil {
		return hermite(a, b, t)
	}
	return linear(a, b, t)
}

// Stage sets the provisional sample for the step in flight, replacing any
// previous one. Staging a committed time is a no-op; staging before it is a
// consistency violation.
func (tr *Trajectory) Stage(t float64, x dynamo.State) error {
	last := tr.Last()
	if nearlyEqual(last.T, t) {
		tr.head = nil
		return nil
	}
	if t < last.T {
		return &dynamo.ConsistencyError{Time: t, Max: last.T}
	}
	if len(x) != tr.dim {
		return fmt.Errorf("stage at t=%g has %d values, want %d: %w", t, len(x), tr.dim, dynamo.ErrDimensionMismatch)
	}
	tr.head = &Sample{T: t, X: x.Clone()}
	return nil
}

// Record appends a committed sample and drops the provisional one. A time
// equal to the newest committed time is ignored.
func (tr *Trajectory) Record(t float64, x, dx dynamo.State) error {
	last := tr.Last()
	if nearlyEqual(last.T, t) {
		return nil
	}
	if t < last.T {
		return &dynamo.ConsistencyError{Time: t, Max: last.T}
	}
	if len(x) != tr.dim {
		return fmt.Errorf("record at t=%g has %d values, want %d: %w", t, len(x), tr.dim, dynamo.ErrDimensionMismatch)
	}

	s := Sample{T: t, X: x.Clone()}
	if len(dx) == tr.dim {
		s.DX = dx.Clone()
	}
	tr.samples = append(tr.samples, s)
	tr.head = nil
	return nil
}

// Annotate attaches the derivative to the newest committed sample when it
// sits at t and has none yet. X is never touched.
func (tr *Trajectory) Annotate(t float64, dx dynamo.State) bool {
	last := &tr.samples[len(tr.samples)-1]
	if last.DX != nil || len(dx) != tr.dim || !nearlyEqual(last.T, t) {
		return false
	}
	last.DX = dx.Clone()
	return true
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= dynamo.TimeTolerance(a)
}

func linear(a, b Sample, t float64) dynamo.State {
	s := (t - a.T) / (b.T - a.T)
	out := make(dynamo.State, len(a.X))
	floats.SubTo(out, b.X, a.X)
	floats.Scale(s, out)
	floats.Add(out, a.X)
	return out
}

func hermite(a, b Sample, t float64) dynamo.State {
	h := b.T - a.T
	s := (t - a.T) / h
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := (s3 - 2*s2 + s) * h
	h01 := -2*s3 + 3*s2
	h11 := (s3 - s2) * h

	out := make(dynamo.State, len(a.X))
	for i := range out {
		out[i] = h00*a.X[i] + h10*a.DX[i] + h01*b.X[i] + h11*b.DX[i]
	}
	return out
}
