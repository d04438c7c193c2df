package config

import "sort"

var Presets = map[string]*Config{
	"demo": {
		Energy: 100, Beta: 1, Threshold: 1,
		Input: InputConfig{Generator: "demo", Size: 8, Values: []float64{4, 3, 2, 6, 5, 7, 8, 1}},
	},
	"gentle": {
		Beta: 0.1, Threshold: 0.01,
		Input: InputConfig{Generator: "shuffled", Size: 6},
	},
	"violent": {
		Energy: 500, Beta: 0.05, Threshold: 0.01, MaxInteractions: 200000,
		Input: InputConfig{Generator: "shuffled", Size: 8},
	},
	"reversed": {
		Energy: 100, Beta: 1, Threshold: 1,
		Input: InputConfig{Generator: "reversed", Size: 7},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Input.Values = append([]float64(nil), p.Input.Values...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
