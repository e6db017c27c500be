package integrators

import (
	"math"

	"github.com/san-kum/ddesim/internal/dynamo"
)

// RK23 is the Bogacki-Shampine 3(2) pair. Cheaper than RK45 per step and a
// good match for the low smoothness DDE solutions have near t0.
type RK23 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK23() *RK23 {
	return &RK23{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 5.0,
	}
}

func (r *RK23) Step(f dynamo.Derivative, x dynamo.State, t, dt float64) (dynamo.State, error) {
	newX, _, _, err := r.StepAdaptive(f, x, t, dt, 1e-6)
	return newX, err
}

func (r *RK23) StepAdaptive(f dynamo.Derivative, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, float64, error) {
	n := len(x)

	k1, err := f.Derive(x, t)
	if err != nil {
		return nil, 0, 0, err
	}

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := f.Derive(x2, t+0.5*dt)
	if err != nil {
		return nil, 0, 0, err
	}

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*0.75*k2[i]
	}
	k3, err := f.Derive(x3, t+0.75*dt)
	if err != nil {
		return nil, 0, 0, err
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(2.0/9.0*k1[i]+1.0/3.0*k2[i]+4.0/9.0*k3[i])
	}

	k4, err := f.Derive(xNew, t+dt)
	if err != nil {
		return nil, 0, 0, err
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (-5.0/72.0*k1[i] + 1.0/12.0*k2[i] + 1.0/9.0*k3[i] - 1.0/8.0*k4[i])
		scale := 1 + math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	errRatio := errMax / tol
	return xNew, errRatio, nextStep(dt, errRatio, r.safety, r.minScale, r.maxScale, 3), nil
}
