package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ddesim/internal/config"
	"github.com/spf13/cobra"
)

func newTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	configFile, preset, params, history = "", "", nil, nil
	cmd := &cobra.Command{Use: "run"}
	addSolveFlags(cmd)
	return cmd
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		value float64
		ok    bool
	}{
		{"tau=2", "tau", 2, true},
		{"d=0.2", "d", 0.2, true},
		{"rate=-1e-3", "rate", -1e-3, true},
		{"tau", "", 0, false},
		{"=1", "", 0, false},
		{"tau=x", "", 0, false},
	}
	for _, tt := range tests {
		name, value, err := parseParam(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parseParam(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && (name != tt.name || value != tt.value) {
			t.Errorf("parseParam(%q) = %s, %g", tt.in, name, value)
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cmd := newTestCmd(t)
	cfg, err := loadConfig(cmd, "decay")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "decay" || cfg.End != config.DefaultEnd || cfg.Integrator != "rk45" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfig_FlagsOverridePreset(t *testing.T) {
	cmd := newTestCmd(t)
	for name, value := range map[string]string{
		"preset": "delayed",
		"end":    "10",
		"interp": "linear",
		"param":  "d=0.3",
		"fixed":  "true",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := loadConfig(cmd, "lotka")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Start != 2 {
		t.Errorf("start = %g, want preset value 2", cfg.Start)
	}
	if cfg.End != 10 || cfg.Interpolation != "linear" || cfg.Solver.Adaptive {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Params["d"] != 0.3 {
		t.Errorf("d = %g, want 0.3", cfg.Params["d"])
	}
	if config.Presets["lotka"]["delayed"].Params["d"] != 0.2 {
		t.Error("preset was mutated")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("end: 5\npoints: 11\nparams:\n  tau: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCmd(t)
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("points", "21"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(cmd, "hutchinson")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.End != 5 || cfg.Points != 21 || cfg.Params["tau"] != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	cmd := newTestCmd(t)
	if err := cmd.Flags().Set("preset", "missing"); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd, "lotka"); err == nil {
		t.Error("expected unknown preset error")
	}

	cmd = newTestCmd(t)
	if err := cmd.Flags().Set("param", "tau"); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd, "decay"); err == nil {
		t.Error("expected malformed parameter error")
	}
}

func TestDistinct(t *testing.T) {
	if n := distinct([]float64{1, 1.0000001, 2, 2.5}, 1e-3); n != 3 {
		t.Errorf("distinct = %d, want 3", n)
	}
	if n := distinct(nil, 1e-3); n != 0 {
		t.Errorf("distinct(nil) = %d", n)
	}
}
