package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/san-kum/mbsim/internal/compute"
	"github.com/san-kum/mbsim/internal/particle"
)

// Driver runs the per-tick pass sequence on a device and hands every tick to
// its presenters.
type Driver struct {
	cfg        Config
	dev        compute.Device
	initial    *particle.Store
	metrics    []Metric
	presenters []Presenter
	logger     *slog.Logger

	phase atomic.Int32
	tick  atomic.Int64
}

func New(cfg Config, dev compute.Device) *Driver {
	return &Driver{
		cfg:        cfg,
		dev:        dev,
		metrics:    make([]Metric, 0),
		presenters: make([]Presenter, 0),
		logger:     slog.Default(),
	}
}

func (d *Driver) AddMetric(m Metric)       { d.metrics = append(d.metrics, m) }
func (d *Driver) AddPresenter(p Presenter) { d.presenters = append(d.presenters, p) }
func (d *Driver) SetLogger(l *slog.Logger) { d.logger = l }

// SetInitial replaces the generated layout with s. The driver works on a
// copy.
func (d *Driver) SetInitial(s *particle.Store) { d.initial = s }

func (d *Driver) Phase() Phase { return Phase(d.phase.Load()) }

// Tick returns the number of completed ticks.
func (d *Driver) Tick() int { return int(d.tick.Load()) }

func (d *Driver) Config() Config { return d.cfg }

func (d *Driver) Run(ctx context.Context) (*Result, error) {
	d.phase.Store(int32(Initializing))
	d.tick.Store(0)

	cfg := d.cfg
	if d.initial != nil {
		cfg.N = d.initial.N
		cfg.Layout = particle.LayoutScatter
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := d.initialStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := d.dev.Load(store); err != nil {
		return nil, fmt.Errorf("load device %s: %w", d.dev.Name(), err)
	}

	for _, m := range d.metrics {
		m.Reset()
	}

	result := &Result{
		Config:  cfg,
		Device:  d.dev.Name(),
		Ticks:   make([]TickStats, 0, cfg.Ticks),
		Metrics: make(map[string]float64),
	}

	initialSumSq := d.dev.SumSq()
	lastSumSq := initialSumSq
	start := time.Now()

	d.logger.Debug("simulation starting",
		"device", d.dev.Name(), "n", cfg.N, "ticks", cfg.Ticks, "dt", cfg.Dt)
	d.phase.Store(int32(Running))

	var runErr error
	for tick := 0; tick < cfg.Ticks; tick++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		stats, err := d.step(store, cfg, tick)
		if err != nil {
			runErr = err
			break
		}
		result.Ticks = append(result.Ticks, stats)
		lastSumSq = stats.SumSq

		frame := particle.Frame{
			Tick:       tick,
			N:          store.N,
			Positions:  store.Pos,
			Velocities: store.Vel,
			SumSq:      stats.SumSq,
			MeanSq:     stats.MeanSq,
			Collisions: stats.Collisions,
			Elapsed:    stats.Elapsed(),
		}

		for _, m := range d.metrics {
			m.Observe(frame)
		}

		if err := d.present(ctx, frame); err != nil {
			d.tick.Store(int64(tick + 1))
			if errors.Is(err, ErrHalt) {
				result.Halted = true
				break
			}
			runErr = err
			break
		}
		d.tick.Store(int64(tick + 1))
	}

	result.Elapsed = time.Since(start)
	result.Final = store.Clone()
	if initialSumSq != 0 {
		result.EnergyDrift = math.Abs(lastSumSq-initialSumSq) / initialSumSq
	}
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	d.phase.Store(int32(Finished))
	d.logger.Debug("simulation finished",
		"ticks", len(result.Ticks), "elapsed", result.Elapsed, "halted", result.Halted)

	return result, runErr
}

func (d *Driver) initialStore(cfg Config) (*particle.Store, error) {
	if d.initial != nil {
		return d.initial.Clone(), nil
	}
	return particle.New(cfg.Layout, cfg.N, cfg.Bounds, cfg.Speed, particle.NewRand(cfg.Seed))
}

// step runs one tick. The passes are barriers; nothing inside a tick
// observes cancellation.
func (d *Driver) step(store *particle.Store, cfg Config, tick int) (TickStats, error) {
	stats := TickStats{Tick: tick}

	t0 := time.Now()
	d.dev.Wall(cfg.Radius, cfg.Bounds)
	t1 := time.Now()
	stats.Collisions = d.dev.Collide(cfg.Radius)
	t2 := time.Now()
	d.dev.Integrate(cfg.Dt)
	t3 := time.Now()
	stats.SumSq = d.dev.SumSq()
	t4 := time.Now()

	stats.Wall = t1.Sub(t0)
	stats.Collide = t2.Sub(t1)
	stats.Integrate = t3.Sub(t2)
	stats.Reduce = t4.Sub(t3)
	stats.MeanSq = stats.SumSq / float64(store.N)

	if err := d.dev.Fetch(store); err != nil {
		return stats, fmt.Errorf("fetch tick %d: %w", tick, err)
	}

	if cfg.ValidateState && !store.IsValid() {
		return stats, SimError{Tick: tick, Message: "invalid state (NaN/Inf)"}
	}
	return stats, nil
}

func (d *Driver) present(ctx context.Context, f particle.Frame) error {
	for _, p := range d.presenters {
		if err := p.Present(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
