package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/sim"
	"github.com/san-kum/mbsim/internal/storage"
)

const scenarioYAML = `
name: warmup
description: two small boxes
steps:
  - preset: small
    ticks: 3
    params:
      n: 64
    save: true
  - preset: small
    layout: scatter
    seed: 9
    ticks: 2
    params:
      n: 50
      radius: 0.01
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "warmup" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].Params["radius"] != 0.01 || !sc.Steps[0].Save {
		t.Errorf("unexpected steps %+v", sc.Steps)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestStepConfig(t *testing.T) {
	step := ScenarioStep{Layout: "scatter", Seed: 5, Ticks: 7, Params: map[string]float64{"n": 10}}
	cfg, err := step.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.N != 10 || cfg.Layout != "scatter" || cfg.Seed != 5 || cfg.Ticks != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	// grid layouts need a square count
	bad := ScenarioStep{Params: map[string]float64{"n": 10}}
	if _, err := bad.Config(); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if _, err := (ScenarioStep{Preset: "nope"}).Config(); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestSetParam(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := SetParam(cfg, "speed", 42); err != nil || cfg.Speed != 42 {
		t.Errorf("speed not set: %v %v", cfg.Speed, err)
	}
	if err := SetParam(cfg, "mass", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, st)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(results[0].Ticks) != 3 || len(results[1].Ticks) != 2 {
		t.Errorf("unexpected tick counts %d %d", len(results[0].Ticks), len(results[1].Ticks))
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].N != 64 {
		t.Fatalf("expected only the first step saved, got %+v", runs)
	}
	if h := runs[0].Histogram(); h.Bins != 64 || h.Width != 32 {
		t.Errorf("saved run should keep the preset histogram, got %+v", h)
	}
}

func TestRunSweep(t *testing.T) {
	base := config.GetPreset("small")
	base.N = 64
	base.Ticks = 2

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base:     base,
		Param:    "speed",
		Min:      100,
		Max:      300,
		NumSteps: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []float64{100, 200, 300}
	for i, r := range results {
		if r.ParamValue != want[i] {
			t.Errorf("step %d value %v, want %v", i, r.ParamValue, want[i])
		}
		if r.Ticks != 2 {
			t.Errorf("step %d ran %d ticks", i, r.Ticks)
		}
	}
	// uniform speed magnitudes survive wall reflections and equal-mass
	// elastic collisions conserve the total
	if results[0].MeanSq <= 0 || results[2].MeanSq <= results[0].MeanSq {
		t.Errorf("mean square should grow with speed: %v %v", results[0].MeanSq, results[2].MeanSq)
	}
}

func TestRunSweepInvalid(t *testing.T) {
	if _, err := RunSweep(context.Background(), &ParameterSweep{Param: "speed", NumSteps: 0}); err == nil {
		t.Error("expected error for zero steps")
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Param: "mass", Min: 1, Max: 2, NumSteps: 2}); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
