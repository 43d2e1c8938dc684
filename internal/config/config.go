package config

import (
	"fmt"
	"os"

	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultN      = 128 * 128
	DefaultRadius = 0.001
	DefaultDt     = 0.000008 * 0.05
	DefaultSpeed  = 500.0
	DefaultTicks  = 1024
	DefaultBins   = 333
	DefaultWidth  = 32.0
)

type Config struct {
	Device        string          `yaml:"device"`
	N             int             `yaml:"n"`
	Layout        string          `yaml:"layout"`
	Seed          int64           `yaml:"seed"`
	Radius        float64         `yaml:"radius"`
	Bounds        float64         `yaml:"bounds"`
	Speed         float64         `yaml:"speed"`
	Dt            float64         `yaml:"dt"`
	Ticks         int             `yaml:"ticks"`
	Workers       int             `yaml:"workers"`
	ValidateState bool            `yaml:"validate_state"`
	Histogram     HistogramConfig `yaml:"histogram"`
}

type HistogramConfig struct {
	Bins  int     `yaml:"bins"`
	Width float64 `yaml:"width"`
}

func DefaultConfig() *Config {
	return &Config{
		Device: "auto",
		N:      DefaultN,
		Layout: string(particle.LayoutGrid),
		Seed:   1,
		Radius: DefaultRadius,
		Bounds: 1,
		Speed:  DefaultSpeed,
		Dt:     DefaultDt,
		Ticks:  DefaultTicks,
		Histogram: HistogramConfig{
			Bins:  DefaultBins,
			Width: DefaultWidth,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads the YAML file at path over a copy of base. Keys missing from
// the file keep the base values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := *base
	cfg := &c
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

// Sim converts the file configuration into the driver configuration.
func (c *Config) Sim() sim.Config {
	return sim.Config{
		N:             c.N,
		Layout:        particle.Layout(c.Layout),
		Seed:          c.Seed,
		Radius:        c.Radius,
		Bounds:        c.Bounds,
		Speed:         c.Speed,
		Dt:            c.Dt,
		Ticks:         c.Ticks,
		Workers:       c.Workers,
		ValidateState: c.ValidateState,
	}
}

func (c *Config) Validate() error {
	if c.Histogram.Bins <= 0 || c.Histogram.Width <= 0 {
		return fmt.Errorf("%w: histogram needs positive bins and width", sim.ErrInvalidConfig)
	}
	return c.Sim().Validate()
}
