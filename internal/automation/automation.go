// Package automation runs scripted sequences of simulations and parameter
// sweeps.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/san-kum/mbsim/internal/compute"
	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/metrics"
	"github.com/san-kum/mbsim/internal/sim"
	"github.com/san-kum/mbsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (reference by default) and applies its
// non-zero fields and Params on top.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Layout string             `yaml:"layout"`
	Seed   int64              `yaml:"seed"`
	Ticks  int                `yaml:"ticks"`
	Params map[string]float64 `yaml:"params"`
	Save   bool               `yaml:"save"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// SetParam sets a numeric configuration field by name.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "n":
		cfg.N = int(v)
	case "radius":
		cfg.Radius = v
	case "bounds":
		cfg.Bounds = v
	case "speed":
		cfg.Speed = v
	case "dt":
		cfg.Dt = v
	case "ticks":
		cfg.Ticks = int(v)
	case "workers":
		cfg.Workers = int(v)
	case "bins":
		cfg.Histogram.Bins = int(v)
	case "width":
		cfg.Histogram.Width = v
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}

func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "reference"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	if s.Layout != "" {
		cfg.Layout = s.Layout
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Ticks != 0 {
		cfg.Ticks = s.Ticks
	}
	for k, v := range s.Params {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes one configuration on the cpu device with the standard
// metrics.
func Run(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	dev, err := compute.Select(cfg.Device, cfg.Workers)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	d := sim.New(cfg.Sim(), dev)
	d.AddMetric(metrics.NewMeanSquare())
	d.AddMetric(metrics.NewEnergyDrift())
	d.AddMetric(metrics.NewCollisionRate())
	d.AddMetric(metrics.NewEquilibrium(cfg.Speed, cfg.Histogram.Bins, cfg.Histogram.Width))
	return d.Run(ctx)
}

// RunScenario executes every step in order. Steps marked save are written to
// st when st is not nil.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		slog.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "n", cfg.N)

		result, err := Run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, result)

		if step.Save && st != nil {
			id, err := st.Save(result, storage.HistogramSettings{Bins: cfg.Histogram.Bins, Width: cfg.Histogram.Width})
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			slog.Info("saved", "step", i+1, "run", id)
		}
	}
	return results, nil
}

// ParameterSweep runs Base with Param stepped from Min to Max.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	NumSteps int
}

type SweepResult struct {
	ParamValue    float64
	Ticks         int
	MeanSq        float64
	CollisionRate float64
	MBDistance    float64
	EnergyDrift   float64
	Elapsed       time.Duration
}

func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	step := 0.0
	if sweep.NumSteps > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		v := sweep.Min + float64(i)*step

		cfg := *base
		if err := SetParam(&cfg, sweep.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		result, err := Run(ctx, &cfg)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue:    v,
			Ticks:         len(result.Ticks),
			MeanSq:        result.Metrics["mean_sq"],
			CollisionRate: result.Metrics["collision_rate"],
			MBDistance:    result.Metrics["mb_distance"],
			EnergyDrift:   result.EnergyDrift,
			Elapsed:       result.Elapsed,
		})
		slog.Debug("sweep", "step", i+1, "of", sweep.NumSteps, sweep.Param, v)
	}
	return results, nil
}
