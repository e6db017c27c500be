package dde_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/integrators"
	"github.com/san-kum/ddesim/internal/sim"
	"github.com/san-kum/ddesim/internal/trajectory"
)

// unitDelay is y' = -y(t-1).
var unitDelay = dde.ModelFunc(func(y dynamo.Accessor, t float64, _ []float64) (dynamo.State, error) {
	return dynamo.State{-y.At(t - 1)[0]}, nil
})

// unitDelayExact solves y' = -y(t-1) with y = 1 for t <= 0.
func unitDelayExact(t float64) float64 {
	sum, fact := 0.0, 1.0
	for k := 0; float64(k) <= t+1; k++ {
		if k > 0 {
			fact *= float64(k)
		}
		sum += math.Pow(-1, float64(k)) * math.Pow(t-float64(k)+1, float64(k)) / fact
	}
	return sum
}

func lotka(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	d := args[0]
	now, late := y.At(t), y.At(t-d)
	return dynamo.State{
		0.5 * now[0] * (1 - late[1]),
		-0.5 * now[1] * (1 - late[0]),
	}, nil
}

type countingObserver struct{ calls int }

func (c *countingObserver) OnStep(dynamo.State, float64) { c.calls++ }

var _ = Describe("Solve", func() {
	ctx := context.Background()
	one := dynamo.ConstantHistory(1)

	DescribeTable("rejects invalid input",
		func(m dde.Model, h dynamo.History, times []float64) {
			sol, err := dde.Solve(ctx, m, h, times)
			Expect(sol).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrInvalidInput)).To(BeTrue(), "got %v", err)
			var ie *dynamo.InvalidInputError
			Expect(errors.As(err, &ie)).To(BeTrue())
		},
		Entry("no times", unitDelay, one, nil),
		Entry("one time", unitDelay, one, []float64{0}),
		Entry("decreasing times", unitDelay, one, []float64{0, 2, 1}),
		Entry("repeated time", unitDelay, one, []float64{0, 1, 1, 2}),
		Entry("NaN time", unitDelay, one, []float64{0, math.NaN()}),
		Entry("infinite time", unitDelay, one, []float64{0, math.Inf(1)}),
		Entry("nil model", nil, one, []float64{0, 1}),
		Entry("nil history", unitDelay, nil, []float64{0, 1}),
		Entry("empty history", unitDelay, dynamo.ConstantHistory(), []float64{0, 1}),
		Entry("NaN history", unitDelay, dynamo.ConstantHistory(math.NaN()), []float64{0, 1}),
		Entry("wrong model dimension", dde.ModelFunc(func(dynamo.Accessor, float64, []float64) (dynamo.State, error) {
			return dynamo.State{1, 2}, nil
		}), one, []float64{0, 1}),
	)

	DescribeTable("aligns output with the requested times",
		func(times []float64) {
			sol, err := dde.Solve(ctx, unitDelay, one, times)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Times).To(Equal(times))
			Expect(sol.States).To(HaveLen(len(times)))
			Expect(sol.States[0]).To(Equal(dynamo.State{1}))
			for i, x := range sol.States {
				Expect(x[0]).To(BeNumerically("~", unitDelayExact(times[i]), 1e-4))
			}
		},
		Entry("two points", []float64{0, 1}),
		Entry("uneven grid", []float64{0, 0.001, 0.5, 0.75, 3}),
		Entry("dense grid", dde.Linspace(0, 2, 2001)),
		Entry("single long interval", []float64{0, 7.5}),
	)

	It("tracks sin(t) for y' = -y(t - pi/2)", func() {
		sine := dde.ModelFunc(func(y dynamo.Accessor, t float64, _ []float64) (dynamo.State, error) {
			return dynamo.State{-y.At(t - math.Pi/2)[0]}, nil
		})
		history := func(t float64) dynamo.State { return dynamo.State{math.Sin(t)} }
		times := dde.Linspace(0, 50, 10001)

		sol, err := dde.Solve(ctx, sine, history, times)
		Expect(err).NotTo(HaveOccurred())

		worst := 0.0
		for i, t := range times {
			worst = math.Max(worst, math.Abs(sol.States[i][0]-math.Sin(t)))
		}
		Expect(worst).To(BeNumerically("<", 1e-2))
	})

	DescribeTable("matches the piecewise polynomial solution of y' = -y(t-1)",
		func(interp trajectory.Interpolation, integ dynamo.Integrator) {
			times := dde.Linspace(0, 10, 1001)
			sol, err := dde.Solve(ctx, unitDelay, one, times,
				dde.WithInterpolation(interp),
				dde.WithIntegrator(integ),
			)
			Expect(err).NotTo(HaveOccurred())

			for k := 0; k <= 10; k++ {
				i := k * 100
				Expect(sol.States[i][0]).To(BeNumerically("~", unitDelayExact(float64(k)), 1e-3),
					"t=%d", k)
			}
		},
		Entry("hermite, rk45", trajectory.Hermite, integrators.NewRK45()),
		Entry("linear, rk45", trajectory.Linear, integrators.NewRK45()),
		Entry("hermite, rk23", trajectory.Hermite, integrators.NewRK23()),
	)

	It("reduces to the plain ODE when there is no delay", func() {
		times := dde.Linspace(2, 30, 2801)
		sol, err := dde.Solve(ctx, dde.ModelFunc(lotka), dynamo.ConstantHistory(1, 2), times, dde.WithArgs(0))
		Expect(err).NotTo(HaveOccurred())

		ode := dynamo.DerivativeFunc(func(x dynamo.State, t float64) (dynamo.State, error) {
			return dynamo.State{
				0.5 * x[0] * (1 - x[1]),
				-0.5 * x[1] * (1 - x[0]),
			}, nil
		})
		ref, err := sim.New(integrators.NewRK45(), dynamo.DefaultConfig()).
			Integrate(ctx, ode, dynamo.State{1, 2}, times)
		Expect(err).NotTo(HaveOccurred())

		for i := range times {
			Expect(sol.States[i].Distance(ref.States[i])).To(BeNumerically("<", 1e-9))
		}
	})

	It("separates Lotka-Volterra with and without delay", func() {
		times := dde.Linspace(2, 30, 2801)
		run := func(d float64) dynamo.State {
			sol, err := dde.Solve(ctx, dde.ModelFunc(lotka), dynamo.ConstantHistory(1, 2), times, dde.WithArgs(d))
			Expect(err).NotTo(HaveOccurred())
			return sol.Final()
		}

		plain, delayed := run(0), run(0.2)
		Expect(plain.Distance(delayed)).To(BeNumerically(">", 1e-2))
		Expect(plain.IsValid()).To(BeTrue())
		Expect(delayed.IsValid()).To(BeTrue())
	})

	It("passes extra arguments through unchanged", func() {
		var seen []float64
		m := dde.ModelFunc(func(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
			seen = args
			return dynamo.State{-args[1] * y.At(t - args[0])[0]}, nil
		})

		args := []float64{0.5, 2}
		_, err := dde.Solve(ctx, m, one, []float64{0, 1}, dde.WithArgs(args...))
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]float64{0.5, 2}))
	})

	Describe("model failures", func() {
		It("reports the time of a returned error", func() {
			boom := errors.New("boom")
			m := dde.ModelFunc(func(y dynamo.Accessor, t float64, _ []float64) (dynamo.State, error) {
				if t > 1.5 {
					return nil, boom
				}
				return dynamo.State{-y.At(t - 1)[0]}, nil
			})

			sol, err := dde.Solve(ctx, m, one, dde.Linspace(0, 3, 31))
			Expect(sol).To(BeNil())
			Expect(errors.Is(err, boom)).To(BeTrue())

			var me *dynamo.ModelEvaluationError
			Expect(errors.As(err, &me)).To(BeTrue())
			Expect(me.Time).To(BeNumerically(">", 1.5))
		})

		It("recovers a panicking model", func() {
			m := dde.ModelFunc(func(y dynamo.Accessor, t float64, _ []float64) (dynamo.State, error) {
				if t > 0.5 {
					panic("bad model")
				}
				return dynamo.State{0}, nil
			})

			_, err := dde.Solve(ctx, m, one, []float64{0, 1})
			Expect(errors.Is(err, dynamo.ErrModelEvaluation)).To(BeTrue())
		})

		It("reports a failed history lookup with its delayed time", func() {
			h := func(t float64) dynamo.State {
				if t < 0 {
					return dynamo.State{1, 2}
				}
				return dynamo.State{1}
			}

			_, err := dde.Solve(ctx, unitDelay, h, []float64{0, 1})
			var me *dynamo.ModelEvaluationError
			Expect(errors.As(err, &me)).To(BeTrue())
			Expect(me.HasLookup).To(BeTrue())
			Expect(me.LookupTime).To(Equal(-1.0))
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
		})

		It("treats a later dimension change as an evaluation failure", func() {
			m := dde.ModelFunc(func(y dynamo.Accessor, t float64, _ []float64) (dynamo.State, error) {
				if t > 0.5 {
					return dynamo.State{0, 0}, nil
				}
				return dynamo.State{0}, nil
			})

			_, err := dde.Solve(ctx, m, one, []float64{0, 1})
			Expect(errors.Is(err, dynamo.ErrModelEvaluation)).To(BeTrue())
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
			Expect(errors.Is(err, dynamo.ErrInvalidInput)).To(BeFalse())
		})

		It("rejects non-finite derivatives", func() {
			m := dde.ModelFunc(func(dynamo.Accessor, float64, []float64) (dynamo.State, error) {
				return dynamo.State{math.Inf(1)}, nil
			})

			_, err := dde.Solve(ctx, m, one, []float64{0, 1})
			Expect(errors.Is(err, dynamo.ErrModelEvaluation)).To(BeTrue())
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
		})
	})

	It("stops on a canceled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		sol, err := dde.Solve(cctx, unitDelay, one, []float64{0, 1})
		Expect(sol).To(BeNil())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("notifies observers once per accepted step", func() {
		obs := &countingObserver{}
		sol, err := dde.Solve(ctx, unitDelay, one, dde.Linspace(0, 4, 9), dde.WithObserver(obs))
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.calls).To(Equal(sol.Stats.Accepted))
		Expect(sol.Stats.Samples).To(Equal(sol.Stats.Accepted + 1))
		Expect(sol.Stats.Evaluations).To(BeNumerically(">", sol.Stats.Accepted))
	})

	It("runs with a fixed-step integrator", func() {
		cfg := dynamo.DefaultConfig()
		cfg.Adaptive = false
		cfg.Dt = 0.001

		sol, err := dde.Solve(ctx, unitDelay, one, []float64{0, 1, 2, 3},
			dde.WithIntegrator(integrators.NewRK4()),
			dde.WithConfig(cfg),
		)
		Expect(err).NotTo(HaveOccurred())
		for i, t := range sol.Times {
			Expect(sol.States[i][0]).To(BeNumerically("~", unitDelayExact(t), 1e-6))
		}
	})
})

var _ = Describe("Linspace", func() {
	It("includes both ends", func() {
		Expect(dde.Linspace(0, 1, 5)).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1}))
		Expect(dde.Linspace(2, 3, 1)).To(Equal([]float64{2}))
		Expect(dde.Linspace(2, 3, 0)).To(BeNil())
	})
})
