package experiment_test

import (
	"bytes"
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ddesim/internal/config"
	"github.com/san-kum/ddesim/internal/dde"
	"github.com/san-kum/ddesim/internal/dynamo"
	"github.com/san-kum/ddesim/internal/experiment"
	"github.com/san-kum/ddesim/internal/logging"
)

type stepCounter struct{ steps int }

func (s *stepCounter) OnStep(dynamo.State, float64) { s.steps++ }

var _ = Describe("Registry", func() {
	reg := experiment.NewRegistry()

	It("lists every model in order", func() {
		Expect(reg.ListModels()).To(Equal([]string{"decay", "hutchinson", "lotka", "mackey_glass", "sine", "variable_delay"}))
	})

	It("lists every integrator in order", func() {
		Expect(reg.ListIntegrators()).To(Equal([]string{"euler", "rk23", "rk4", "rk45"}))
	})

	It("returns fresh models", func() {
		a, err := reg.GetModel("lotka")
		Expect(err).NotTo(HaveOccurred())
		b, err := reg.GetModel("lotka")
		Expect(err).NotTo(HaveOccurred())

		Expect(a.SetParam("d", 1)).To(Succeed())
		Expect(b.GetParams()["d"]).To(Equal(0.2))
	})

	It("rejects unknown names", func() {
		_, err := reg.GetModel("pendulum")
		Expect(err).To(MatchError(ContainSubstring("unknown model")))
		_, err = reg.GetIntegrator("verlet")
		Expect(err).To(MatchError(ContainSubstring("unknown integrator")))
	})
})

var _ = Describe("Experiment", func() {
	var (
		reg *experiment.Registry
		cfg *config.Config
	)

	BeforeEach(func() {
		reg = experiment.NewRegistry()
		cfg = config.DefaultConfig()
		cfg.Model = "decay"
		cfg.End = 5
		cfg.Points = 51
	})

	It("runs a configured model", func() {
		counter := &stepCounter{}
		exp, err := experiment.New(reg, cfg)
		Expect(err).NotTo(HaveOccurred())
		exp.AddObserver(counter)

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Solution.States).To(HaveLen(51))
		Expect(res.Solution.States[10][0]).To(BeNumerically("~", 0, 1e-6))
		Expect(counter.steps).To(Equal(res.Solution.Stats.Accepted))
		Expect(res.Metrics).To(HaveKeyWithValue("stability", 1.0))
		Expect(res.Metrics).To(HaveKey("amplitude"))
		Expect(res.Metrics["max_norm"]).To(And(BeNumerically(">", 0.9), BeNumerically("<=", 1)))
	})

	It("applies parameters from the config", func() {
		cfg.Params = map[string]float64{"rate": 0}
		exp, err := experiment.New(reg, cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Solution.Final()[0]).To(Equal(1.0))
	})

	It("uses a constant history override", func() {
		cfg.History = []float64{2}
		exp, err := experiment.New(reg, cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Solution.States[0]).To(Equal(dynamo.State{2}))
		Expect(res.Solution.States[10][0]).To(BeNumerically("~", 0, 1e-6))
	})

	DescribeTable("rejects bad configuration",
		func(mutate func(*config.Config), substr string) {
			mutate(cfg)
			_, err := experiment.New(reg, cfg)
			Expect(err).To(MatchError(ContainSubstring(substr)))
		},
		Entry("unknown model", func(c *config.Config) { c.Model = "nope" }, "unknown model"),
		Entry("unknown integrator", func(c *config.Config) { c.Integrator = "nope" }, "unknown integrator"),
		Entry("unknown parameter", func(c *config.Config) { c.Params = map[string]float64{"mass": 1} }, "unknown parameter"),
		Entry("bad interpolation", func(c *config.Config) { c.Interpolation = "spline" }, "interpolation"),
		Entry("history size", func(c *config.Config) { c.History = []float64{1, 2} }, "history has 2 values"),
		Entry("invalid grid", func(c *config.Config) { c.Points = 1 }, "points"),
	)

	It("tags run logs with the model name", func() {
		var buf bytes.Buffer
		logger, _, err := logging.New(logging.Options{Writer: &buf})
		Expect(err).NotTo(HaveOccurred())

		exp, err := experiment.New(reg, cfg)
		Expect(err).NotTo(HaveOccurred())
		exp.SetLogger(logger)

		_, err = exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("run complete"))
		Expect(buf.String()).To(ContainSubstring("run=decay"))
	})

	It("exposes its solve settings for repeated solves", func() {
		exp, err := experiment.New(reg, cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		m := exp.Model()
		opts := append(exp.SolveOptions(), dde.WithArgs(m.Args()...))
		sol, err := dde.Solve(context.Background(), m, exp.History(), cfg.Times(), opts...)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.States).To(Equal(res.Solution.States))
	})

	It("solves the state-dependent delay preset", func() {
		pc := config.GetPreset("variable_delay", "default")
		Expect(pc).NotTo(BeNil())
		exp, err := experiment.New(reg, pc)
		Expect(err).NotTo(HaveOccurred())

		res, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Solution.States).To(HaveLen(2000))
		Expect(res.Solution.Stats.Lookups).To(BeNumerically(">", res.Solution.Stats.Evaluations))
	})

	It("surfaces solver failures", func() {
		cfg.Solver.MaxSteps = 3
		exp, err := experiment.New(reg, cfg)
		Expect(err).NotTo(HaveOccurred())

		_, err = exp.Run(context.Background())
		Expect(errors.Is(err, dynamo.ErrTooManySteps)).To(BeTrue())
	})
})

var _ = Describe("Sweep", func() {
	It("runs one solve per value in order", func() {
		cfg := config.DefaultConfig()
		cfg.Model = "lotka"
		cfg.Start, cfg.End, cfg.Points = 2, 30, 281

		points, err := experiment.Sweep(context.Background(), experiment.NewRegistry(), cfg, "d", []float64{0, 0.1, 0.2}, 2, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(3))

		for i, v := range []float64{0, 0.1, 0.2} {
			Expect(points[i].Value).To(Equal(v))
			Expect(points[i].Result.Solution.States).To(HaveLen(281))
		}

		final := func(i int) dynamo.State { return points[i].Result.Solution.Final() }
		Expect(final(0).Distance(final(2))).To(BeNumerically(">", 1e-2))
		Expect(math.IsNaN(final(1)[0])).To(BeFalse())
		Expect(cfg.Params).To(BeNil())
	})

	It("fails as a whole when one value fails", func() {
		cfg := config.DefaultConfig()
		cfg.Model = "decay"
		cfg.End, cfg.Points = 2, 21

		_, err := experiment.Sweep(context.Background(), experiment.NewRegistry(), cfg, "tau", []float64{1, -1}, 0, nil)
		Expect(err).To(MatchError(ContainSubstring("tau=-1")))
	})
})
