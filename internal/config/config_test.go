package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mbsim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.N != 16384 {
		t.Errorf("expected 16384 particles, got %d", cfg.N)
	}
	if cfg.Radius != 0.001 {
		t.Errorf("expected radius 0.001, got %v", cfg.Radius)
	}
	if cfg.Ticks != 1024 {
		t.Errorf("expected 1024 ticks, got %d", cfg.Ticks)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			if err := GetPreset(name).Validate(); err != nil {
				t.Errorf("preset %s invalid: %v", name, err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.N != 1024 {
		t.Errorf("expected 1024 particles, got %d", cfg.N)
	}

	cfg.N = 1
	if Presets["small"].N != 1024 {
		t.Error("GetPreset returned a shared pointer")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	if presets[0] != "dense" {
		t.Errorf("presets not sorted: %v", presets)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.N = 400
	cfg.Layout = "scatter"
	cfg.Seed = 99
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("n: 256\nspeed: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.N != 256 || cfg.Speed != 10 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Ticks != DefaultTicks || cfg.Histogram.Bins != DefaultBins {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadOntoPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.yaml")
	if err := os.WriteFile(path, []byte("ticks: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("small")
	cfg, err := LoadOnto(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ticks != 5 {
		t.Errorf("file value not applied, ticks=%d", cfg.Ticks)
	}
	if cfg.Radius != 0.004 || cfg.N != 32*32 {
		t.Errorf("preset values lost: %+v", cfg)
	}
	if base.Ticks != 1024 {
		t.Errorf("base modified, ticks=%d", base.Ticks)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.N = 1000
	if err := cfg.Validate(); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for non-square grid, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Histogram.Bins = 0
	if err := cfg.Validate(); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty histogram, got %v", err)
	}
}

func TestSimConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 3
	s := cfg.Sim()
	if s.N != cfg.N || s.Dt != cfg.Dt || s.Workers != 3 || string(s.Layout) != cfg.Layout {
		t.Errorf("conversion lost fields: %+v", s)
	}
}
