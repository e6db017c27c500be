package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "lotka" {
		t.Errorf("expected model lotka, got %s", cfg.Model)
	}
	if cfg.Solver.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no model", func(c *Config) { c.Model = "" }},
		{"one point", func(c *Config) { c.Points = 1 }},
		{"end before start", func(c *Config) { c.End = c.Start - 1 }},
		{"zero dt", func(c *Config) { c.Solver.Dt = 0 }},
		{"zero tolerance", func(c *Config) { c.Solver.Tolerance = 0 }},
		{"min above max", func(c *Config) { c.Solver.MinDt = 1; c.Solver.MaxDt = 0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTimes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start, cfg.End, cfg.Points = 2, 30, 5

	times := cfg.Times()
	want := []float64{2, 9, 16, 23, 30}
	if len(times) != len(want) {
		t.Fatalf("expected %d times, got %d", len(want), len(times))
	}
	for i := range want {
		if times[i] != want[i] {
			t.Errorf("times[%d] = %g, want %g", i, times[i], want[i])
		}
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Model = "mackey_glass"
	cfg.Params = map[string]float64{"tau": 17}
	cfg.History = []float64{0.5}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model != "mackey_glass" || loaded.Params["tau"] != 17 || len(loaded.History) != 1 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("model: decay\nend: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.End != 5 {
		t.Errorf("expected end 5, got %g", cfg.End)
	}
	if cfg.Solver.Tolerance != DefaultTolerance {
		t.Errorf("expected default tolerance, got %g", cfg.Solver.Tolerance)
	}
	if cfg.Points != DefaultPoints {
		t.Errorf("expected default points, got %d", cfg.Points)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("lotka", "delayed")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params["d"] != 0.2 {
		t.Errorf("expected d 0.2, got %f", cfg.Params["d"])
	}
	if cfg.Start != 2 {
		t.Errorf("expected start 2, got %g", cfg.Start)
	}

	cfg.Params["d"] = 5
	if again := GetPreset("lotka", "delayed"); again.Params["d"] != 0.2 {
		t.Error("preset was mutated through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("lotka", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "small"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	for model := range Presets {
		names := ListPresets(model)
		if len(names) == 0 {
			t.Errorf("expected presets for %s", model)
		}
		for _, name := range names {
			if err := GetPreset(model, name).Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", model, name, err)
			}
		}
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}
