package dde

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/integrators"
	"github.com/san-kum/ddesim/internal/sim"
	"github.com/san-kum/ddesim/internal/trajectory"
)

func decayModel(y dynamo.Accessor, t float64, args []float64) (dynamo.State, error) {
	return dynamo.State{-args[1] * y.At(t - args[0])[0]}, nil
}

var _ = Describe("adapter", func() {
	var (
		history dynamo.History
		tr      *trajectory.Trajectory
		ad      *adapter
	)

	newRun := func(args ...float64) {
		var err error
		history = func(t float64) dynamo.State { return dynamo.State{math.Cos(t)} }
		tr, err = trajectory.New(history, 0, history(0))
		Expect(err).NotTo(HaveOccurred())
		ad = newAdapter(tr, bind(ModelFunc(decayModel), args))
	}

	Context("after an adaptive run that rejects steps", func() {
		var res *dynamo.Result

		BeforeEach(func() {
			newRun(0.3, 20)
			cfg := dynamo.DefaultConfig()
			cfg.Dt = 1
			cfg.MaxDt = 1
			cfg.Tolerance = 1e-8

			var err error
			res, err = sim.New(integrators.NewRK45(), cfg).Integrate(context.Background(), ad, history(0), []float64{0, 1, 2, 3})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejected at least one step", func() {
			Expect(res.Stats.Rejected).To(BeNumerically(">", 0))
		})

		It("committed strictly increasing times only", func() {
			samples := tr.Samples()
			Expect(samples).To(HaveLen(res.Stats.Accepted + 1))
			for i := 1; i < len(samples); i++ {
				Expect(samples[i].T).To(BeNumerically(">", samples[i-1].T))
			}
		})

		It("returns committed samples exactly", func() {
			for _, s := range tr.Samples() {
				x, err := tr.Query(s.T)
				Expect(err).NotTo(HaveOccurred())
				Expect(x).To(Equal(s.X))
			}
		})

		It("answers from the history before t0", func() {
			for _, t := range []float64{-5, -1, -0.3, -1e-6} {
				x, err := tr.Query(t)
				Expect(err).NotTo(HaveOccurred())
				Expect(x).To(Equal(history(t)))
			}
		})

		It("attached derivatives to committed samples", func() {
			withDX := 0
			for _, s := range tr.Samples()[1:] {
				if s.DX != nil {
					withDX++
				}
			}
			Expect(withDX).To(BeNumerically(">", 0))
		})

		It("counted every model call", func() {
			Expect(ad.evaluations).To(BeNumerically(">=", 6*res.Stats.Accepted))
			Expect(ad.commits).To(Equal(res.Stats.Accepted + 1))
			Expect(ad.lookups).To(Equal(ad.evaluations))
		})
	})

	It("does not modify its input and is repeatable", func() {
		newRun(0.5, 1)
		x := dynamo.State{0.25}

		first, err := ad.Derive(x, 0.1)
		Expect(err).NotTo(HaveOccurred())
		second, err := ad.Derive(x, 0.1)
		Expect(err).NotTo(HaveOccurred())

		Expect(x).To(Equal(dynamo.State{0.25}))
		Expect(second).To(Equal(first))
		Expect(first[0]).To(BeNumerically("~", -math.Cos(-0.4), 1e-15))
	})

	It("attaches the derivative of a matching last evaluation on commit", func() {
		newRun(0.5, 1)
		x := dynamo.State{0.9}

		dx, err := ad.Derive(x, 0.2)
		Expect(err).NotTo(HaveOccurred())
		Expect(ad.Commit(0.2, x)).To(Succeed())
		Expect(tr.Last().DX).To(Equal(dx))

		Expect(ad.Commit(0.4, dynamo.State{0.8})).To(Succeed())
		Expect(tr.Last().DX).To(BeNil())
	})

	It("rejects writes before the committed end", func() {
		newRun(0.5, 1)
		Expect(ad.Commit(1, dynamo.State{0.5})).To(Succeed())

		_, err := ad.Derive(dynamo.State{0.5}, 0.5)
		Expect(errors.Is(err, dynamo.ErrConsistency)).To(BeTrue())

		err = ad.Commit(0.5, dynamo.State{0.5})
		var ce *dynamo.ConsistencyError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Time).To(Equal(0.5))
		Expect(ce.Max).To(Equal(1.0))
	})
})
