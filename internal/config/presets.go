package config

import "sort"

func preset(model string, end float64, points int, params map[string]float64) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	cfg.End = end
	cfg.Points = points
	cfg.Params = params
	return cfg
}

var Presets = map[string]map[string]*Config{
	"decay": {
		"unit":        preset("decay", 10, 1001, map[string]float64{"tau": 1, "rate": 1}),
		"oscillating": preset("decay", 40, 2001, map[string]float64{"tau": 1.5, "rate": 1}),
		"unstable":    preset("decay", 40, 2001, map[string]float64{"tau": 2, "rate": 1}),
	},
	"sine": {
		"exact": preset("sine", 50, 10001, nil),
	},
	"lotka": {
		"nodelay": func() *Config {
			cfg := preset("lotka", 30, 20000, map[string]float64{"d": 0})
			cfg.Start = 2
			return cfg
		}(),
		"delayed": func() *Config {
			cfg := preset("lotka", 30, 20000, map[string]float64{"d": 0.2})
			cfg.Start = 2
			return cfg
		}(),
	},
	"mackey_glass": {
		"periodic": preset("mackey_glass", 300, 3001, map[string]float64{"tau": 7}),
		"chaos":    preset("mackey_glass", 600, 6001, map[string]float64{"tau": 17}),
	},
	"hutchinson": {
		"stable": preset("hutchinson", 60, 1201, map[string]float64{"tau": 1}),
		"cycle":  preset("hutchinson", 60, 1201, map[string]float64{"tau": 2}),
	},
	"variable_delay": {
		"default": preset("variable_delay", 30, 2000, map[string]float64{"a": 3}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, name string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
