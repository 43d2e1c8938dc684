package gui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/audio"
	"github.com/san-kum/mbsim/internal/compute"
	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/sim"
)

var (
	ColBg       = rl.NewColor(0, 0, 0, 255)
	ColParticle = rl.NewColor(255, 255, 255, 255)
	ColBar      = rl.NewColor(255, 255, 255, 255)
	ColCurve    = rl.NewColor(255, 0, 0, 255)
	ColText     = rl.NewColor(255, 255, 255, 255)
	ColTextDim  = rl.NewColor(90, 90, 90, 255)
)

type Options struct {
	Size      int
	HistWidth int
	// Hold keeps the first and last frame on screen.
	Hold  time.Duration
	Bins  int
	Width float64
	// Device is "cpu", "gl" or "auto". "auto" tries the GL device and falls
	// back to the CPU.
	Device  string
	Workers int
	Audio   bool
}

func DefaultOptions() Options {
	return Options{
		Size:      800,
		HistWidth: 960,
		Hold:      4 * time.Second,
		Bins:      analysis.DefaultBins,
		Width:     analysis.DefaultWidth,
		Device:    compute.DeviceAuto,
	}
}

// App is the window presenter. It owns the GL context, so the driver runs on
// the same goroutine and every Present call draws one frame.
type App struct {
	opts   Options
	cfg    sim.Config
	layout Layout
	logger *slog.Logger

	sonifier *audio.Sonifier
	device   string
	start    time.Time
	curveX   []float32
	curveY   []float32
	hist     analysis.Histogram
	paused   bool
	skip     bool
}

// Run opens the window, runs the simulation inside it and closes the window
// when the run ends or the window is closed. It must be called from the main
// goroutine with the OS thread locked.
func Run(ctx context.Context, cfg sim.Config, opts Options, metrics ...sim.Metric) (*sim.Result, error) {
	layout := Layout{
		Size:      float32(opts.Size),
		HistWidth: float32(opts.HistWidth),
		Bounds:    cfg.Bounds,
		Speed:     cfg.Speed,
	}
	w, h := layout.WindowSize()
	rl.InitWindow(w, h, "N-body simulation for Maxwell-Boltzmann distribution approximation")
	defer rl.CloseWindow()
	rl.SetTargetFPS(0)
	rl.SetExitKey(rl.KeyEscape)

	dev, err := openDevice(opts, cfg.Workers)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	app := &App{
		opts:   opts,
		cfg:    cfg,
		layout: layout,
		logger: slog.Default(),
		device: dev.Name(),
		start:  time.Now(),
	}
	app.curveX, app.curveY = layout.Curve(1000)

	if opts.Audio {
		app.sonifier = audio.NewSonifier(cfg.N, cfg.Speed)
		if err := app.sonifier.Start(); err != nil {
			app.logger.Warn("audio disabled", "err", err)
			app.sonifier = nil
		} else {
			defer app.sonifier.Stop()
		}
	}

	d := sim.New(cfg, dev)
	for _, m := range metrics {
		d.AddMetric(m)
	}
	d.AddPresenter(app)
	d.AddPresenter(sim.NewLogPresenter(app.logger, 1))
	if app.sonifier != nil {
		d.AddPresenter(app.sonifier)
	}
	return d.Run(ctx)
}

func openDevice(opts Options, workers int) (compute.Device, error) {
	if opts.Device == compute.DeviceCPU {
		return compute.NewCPUDevice(workers), nil
	}
	if opts.Device != compute.DeviceGL && opts.Device != compute.DeviceAuto && opts.Device != "" {
		return compute.Select(opts.Device, workers)
	}

	gl := compute.NewGLDevice()
	if err := gl.Init(); err != nil {
		if opts.Device == compute.DeviceGL {
			return nil, err
		}
		slog.Warn("gl device unavailable, using cpu", "err", err)
		return compute.NewCPUDevice(workers), nil
	}
	return gl, nil
}

// Present draws the frame. On the first and last tick the frame is held for
// Options.Hold. Closing the window halts the run.
func (a *App) Present(ctx context.Context, f particle.Frame) error {
	a.hist = analysis.SpeedHistogram(f.Velocities, a.opts.Bins, a.opts.Width)

	if err := a.draw(f); err != nil {
		return err
	}
	for a.paused {
		if err := a.idle(ctx, f); err != nil {
			return err
		}
	}

	if f.Tick == 0 || f.Tick == a.cfg.Ticks-1 {
		return a.hold(ctx, f)
	}
	return nil
}

func (a *App) hold(ctx context.Context, f particle.Frame) error {
	a.skip = false
	deadline := time.Now().Add(a.opts.Hold)
	for !a.skip && (a.paused || time.Now().Before(deadline)) {
		if err := a.idle(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// idle redraws f at a fixed rate without advancing the simulation.
func (a *App) idle(ctx context.Context, f particle.Frame) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if err := a.draw(f); err != nil {
		return err
	}
	time.Sleep(holdFrame)
	return nil
}

const holdFrame = time.Second / 60

var errWindowClosed = fmt.Errorf("window closed: %w", sim.ErrHalt)

func (a *App) draw(f particle.Frame) error {
	if rl.WindowShouldClose() {
		return errWindowClosed
	}

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	a.drawParticles(f)
	a.drawHistogram()
	a.drawCurve()
	a.drawHUD(f)
	a.drawControls()
	rl.EndDrawing()
	return nil
}
