package trajectory

import "github.com/san-kum/ddesim/internal/dynamo"

// Accessor is the read-only capability handed to models. Lookups never
// return an error to the model; the first failure is kept and reported
// through Err once the model returns, and a zero state is returned in its
// place so the model can finish.
type Accessor struct {
	tr *Trajectory

	lookups  int
	last     float64
	err      error
	failedAt float64
}

var _ dynamo.Accessor = (*Accessor)(nil)

func (a *Accessor) At(t float64) dynamo.State {
	a.lookups++
	a.last = t

	x, err := a.tr.Query(t)
	if err != nil {
		if a.err == nil {
			a.err = err
			a.failedAt = t
		}
		return make(dynamo.State, a.tr.dim)
	}
	return x
}

// Reset clears per-evaluation bookkeeping.
func (a *Accessor) Reset() {
	a.lookups = 0
	a.err = nil
	a.failedAt = 0
}

func (a *Accessor) Err() error { return a.err }

// FailedAt is the lookup time of the first failed lookup.
func (a *Accessor) FailedAt() float64 { return a.failedAt }

// LastLookup is the most recent time passed to At, and whether any lookup
// happened since Reset.
func (a *Accessor) LastLookup() (float64, bool) { return a.last, a.lookups > 0 }

func (a *Accessor) Lookups() int { return a.lookups }
