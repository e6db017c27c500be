package config

import (
	"fmt"
	"os"

	"github.com/san-kum/ddesim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStart     = 0.0
	DefaultEnd       = 50.0
	DefaultPoints    = 1001
	DefaultDt        = 0.01
	DefaultTolerance = 1e-6
	DefaultMinDt     = 1e-10
	DefaultMaxDt     = 0.01
	DefaultMaxSteps  = 10_000_000
)

type Config struct {
	Model         string             `yaml:"model"`
	Integrator    string             `yaml:"integrator"`
	Interpolation string             `yaml:"interpolation"`
	Start         float64            `yaml:"start"`
	End           float64            `yaml:"end"`
	Points        int                `yaml:"points"`
	Params        map[string]float64 `yaml:"params,omitempty"`
	History       []float64          `yaml:"history,omitempty"`
	Solver        SolverConfig       `yaml:"solver"`
}

// SolverConfig tunes the stepper. MaxDt bounds the step so the trajectory
// stays dense enough for delayed lookups.
type SolverConfig struct {
	Dt        float64 `yaml:"dt"`
	Tolerance float64 `yaml:"tolerance"`
	MinDt     float64 `yaml:"min_dt"`
	MaxDt     float64 `yaml:"max_dt"`
	MaxSteps  int     `yaml:"max_steps"`
	Adaptive  bool    `yaml:"adaptive"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:         "lotka",
		Integrator:    "rk45",
		Interpolation: "hermite",
		Start:         DefaultStart,
		End:           DefaultEnd,
		Points:        DefaultPoints,
		Solver: SolverConfig{
			Dt:        DefaultDt,
			Tolerance: DefaultTolerance,
			MinDt:     DefaultMinDt,
			MaxDt:     DefaultMaxDt,
			MaxSteps:  DefaultMaxSteps,
			Adaptive:  true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the solver cannot recover from.
func (c *Config) Validate() error {
	switch {
	case c.Model == "":
		return fmt.Errorf("model is required")
	case c.Points < 2:
		return fmt.Errorf("points must be at least 2, got %d", c.Points)
	case c.End <= c.Start:
		return fmt.Errorf("end %g must be after start %g", c.End, c.Start)
	case c.Solver.Dt <= 0:
		return fmt.Errorf("solver dt must be positive, got %g", c.Solver.Dt)
	case c.Solver.Adaptive && c.Solver.Tolerance <= 0:
		return fmt.Errorf("solver tolerance must be positive, got %g", c.Solver.Tolerance)
	case c.Solver.MaxDt < 0 || c.Solver.MinDt < 0:
		return fmt.Errorf("solver step bounds must be non-negative")
	case c.Solver.MaxDt > 0 && c.Solver.MinDt > c.Solver.MaxDt:
		return fmt.Errorf("solver min_dt %g exceeds max_dt %g", c.Solver.MinDt, c.Solver.MaxDt)
	}
	return nil
}

// Times returns the output grid from Start to End inclusive.
func (c *Config) Times() []float64 {
	if c.Points < 2 {
		return []float64{c.Start}
	}
	return floats.Span(make([]float64, c.Points), c.Start, c.End)
}

func (c *Config) SolverConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Solver.Dt,
		Tolerance:     c.Solver.Tolerance,
		MinDt:         c.Solver.MinDt,
		MaxDt:         c.Solver.MaxDt,
		MaxSteps:      c.Solver.MaxSteps,
		Adaptive:      c.Solver.Adaptive,
		ValidateState: true,
	}
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	out.History = append([]float64(nil), c.History...)
	return &out
}
