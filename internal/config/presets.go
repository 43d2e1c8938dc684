package config

import "sort"

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"small": {
		Device: "auto", N: 32 * 32, Layout: "grid", Seed: 1,
		Radius: 0.004, Bounds: 1, Speed: 500, Dt: 0.000008, Ticks: 1024,
		Histogram: HistogramConfig{Bins: 64, Width: 32},
	},
	"dilute": {
		Device: "auto", N: 64 * 64, Layout: "grid", Seed: 1,
		Radius: 0.0005, Bounds: 1, Speed: 500, Dt: 0.000004, Ticks: 2048,
		Histogram: HistogramConfig{Bins: DefaultBins, Width: DefaultWidth},
	},
	"dense": {
		Device: "auto", N: 128 * 128, Layout: "grid", Seed: 1,
		Radius: 0.003, Bounds: 1, Speed: 500, Dt: DefaultDt, Ticks: 512,
		Histogram: HistogramConfig{Bins: DefaultBins, Width: DefaultWidth},
	},
	"scatter": {
		Device: "auto", N: 10000, Layout: "scatter", Seed: 1,
		Radius: DefaultRadius, Bounds: 1, Speed: 500, Dt: DefaultDt, Ticks: 1024,
		Histogram: HistogramConfig{Bins: DefaultBins, Width: DefaultWidth},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
