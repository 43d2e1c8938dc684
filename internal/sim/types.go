package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/mbsim/internal/particle"
)

var (
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrHalt is returned by a presenter to stop the driver after the
	// current tick. The driver treats it as a normal finish.
	ErrHalt = errors.New("sim: halted by presenter")
)

// Phase is the driver state.
type Phase int32

const (
	Initializing Phase = iota
	Running
	Finished
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Config struct {
	N      int
	Layout particle.Layout
	Seed   int64

	Radius float64
	Bounds float64
	Speed  float64
	Dt     float64
	Ticks  int

	Workers int

	// ValidateState aborts the run when a velocity turns NaN or Inf.
	ValidateState bool
}

// DefaultConfig is the reference run: a 128x128 grid at speed 500 for 1024
// ticks.
func DefaultConfig() Config {
	return Config{
		N:      128 * 128,
		Layout: particle.LayoutGrid,
		Seed:   1,
		Radius: 0.001,
		Bounds: 1,
		Speed:  500,
		Dt:     0.000008 * 0.05,
		Ticks:  1024,
	}
}

func (c Config) Validate() error {
	switch {
	case c.N <= 0:
		return fmt.Errorf("%w: particle count must be positive, got %d", ErrInvalidConfig, c.N)
	case c.Dt < 0 || math.IsNaN(c.Dt):
		return fmt.Errorf("%w: dt must be non-negative, got %g", ErrInvalidConfig, c.Dt)
	case c.Ticks <= 0:
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, c.Ticks)
	case c.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidConfig, c.Radius)
	case c.Bounds <= 2*c.Radius:
		return fmt.Errorf("%w: bounds %g too small for radius %g", ErrInvalidConfig, c.Bounds, c.Radius)
	case c.Speed < 0:
		return fmt.Errorf("%w: speed must be non-negative, got %g", ErrInvalidConfig, c.Speed)
	}
	if c.Layout == particle.LayoutGrid || c.Layout == "" {
		if _, err := particle.Side(c.N); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	} else if c.Layout != particle.LayoutScatter {
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidConfig, c.Layout)
	}
	return nil
}

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(f particle.Frame)
	Value() float64
	Reset()
}

// TickStats records one tick of a run.
type TickStats struct {
	Tick       int
	SumSq      float64
	MeanSq     float64
	Collisions int
	Wall       time.Duration
	Collide    time.Duration
	Integrate  time.Duration
	Reduce     time.Duration
}

// Elapsed is the time spent in the four passes of the tick.
func (t TickStats) Elapsed() time.Duration {
	return t.Wall + t.Collide + t.Integrate + t.Reduce
}

type Result struct {
	Config  Config
	Device  string
	Ticks   []TickStats
	Final   *particle.Store
	Metrics map[string]float64

	// EnergyDrift is |sumSq(last) - sumSq(initial)| / sumSq(initial).
	EnergyDrift float64
	Elapsed     time.Duration
	Halted      bool
}

// SimError reports a run aborted by an invalid state.
type SimError struct {
	Tick    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("tick %d: %s", e.Tick, e.Message)
}
