package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/san-kum/mbsim/internal/compute"
	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/gui"
	"github.com/san-kum/mbsim/internal/metrics"
	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/sim"
	"github.com/san-kum/mbsim/internal/storage"
	"github.com/san-kum/mbsim/internal/stream"
	"github.com/san-kum/mbsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	logEvery  int
	runs      int
	noSave    bool
	theme     string
	uiEvery   int
	hold      time.Duration
	withAudio bool
	size      int
	addr      string
	fps       int
	waitFirst bool
)

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation headless and store the result",
		RunE:  runSimulation,
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&logEvery, "log-every", 1, "log statistics every k ticks")
	cmd.Flags().IntVar(&runs, "runs", 1, "run an ensemble of consecutive seeds")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func liveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with a terminal view",
		RunE:  runLive,
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&theme, "theme", "classic", "color theme")
	cmd.Flags().IntVar(&uiEvery, "every", 1, "redraw every k ticks")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func guiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "run the simulation in a window",
		RunE:  runGUI,
	}
	addSimFlags(cmd)
	def := gui.DefaultOptions()
	cmd.Flags().DurationVar(&hold, "hold", def.Hold, "hold the first and last frame")
	cmd.Flags().BoolVar(&withAudio, "audio", false, "sonify collisions")
	cmd.Flags().IntVar(&size, "size", def.Size, "particle box size in pixels")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the simulation and stream frames over websocket",
		RunE:  runServe,
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&uiEvery, "every", 1, "stream every k ticks")
	cmd.Flags().IntVar(&fps, "fps", 60, "maximum ticks per second (0 = unlimited)")
	cmd.Flags().BoolVar(&waitFirst, "wait", false, "start once the first client connects")
	return cmd
}

func benchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the cpu device",
		RunE:  benchDevice,
	}
	cmd.Flags().IntVar(&ticks, "ticks", 32, "ticks per measurement")
	return cmd
}

func newMetrics(cfg *config.Config) []sim.Metric {
	eq := metrics.NewEquilibrium(cfg.Speed, cfg.Histogram.Bins, cfg.Histogram.Width)
	eq.Every = 16
	return []sim.Metric{
		metrics.NewMeanSquare(),
		metrics.NewEnergyDrift(),
		metrics.NewCollisionRate(),
		eq,
	}
}

func newDriver(cfg *config.Config) (*sim.Driver, error) {
	dev, err := compute.Select(cfg.Device, cfg.Workers)
	if err != nil {
		return nil, err
	}
	d := sim.New(cfg.Sim(), dev)
	for _, m := range newMetrics(cfg) {
		d.AddMetric(m)
	}
	return d, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if runs > 1 {
		return runEnsemble(cmd.Context(), cfg)
	}

	d, err := newDriver(cfg)
	if err != nil {
		return err
	}
	d.AddPresenter(sim.NewLogPresenter(slog.Default(), logEvery))

	slog.Info("starting", "n", cfg.N, "layout", cfg.Layout, "ticks", cfg.Ticks, "device", cfg.Device)
	result, err := d.Run(cmd.Context())
	if result == nil {
		return err
	}
	printSummary(os.Stdout, result, "halted early")
	if serr := saveResult(result, cfg); serr != nil {
		return serr
	}
	return err
}

func runEnsemble(ctx context.Context, cfg *config.Config) error {
	ens := sim.NewEnsemble(cfg.Sim(), runs, cfg.Seed)
	ens.NewDevice = func() (compute.Device, error) {
		// split the cores between the runs
		return compute.NewCPUDevice(max(runtime.NumCPU()/runs, 1)), nil
	}
	ens.NewMetrics = func() []sim.Metric { return newMetrics(cfg) }

	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tMEAN V^2\tDRIFT\tCOLL/TICK\tMB DIST\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.1f\t%.2e\t%.1f\t%.4f\t%v\n",
			r.Config.Seed,
			len(r.Ticks),
			r.Metrics["mean_sq"],
			r.EnergyDrift,
			r.Metrics["collision_rate"],
			r.Metrics["mb_distance"],
			r.Elapsed.Truncate(time.Millisecond),
		)
		if err := saveResult(r, cfg); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	d, err := newDriver(cfg)
	if err != nil {
		return err
	}

	live := viz.NewLive(viz.LiveConfig{
		N:      cfg.N,
		Bounds: cfg.Bounds,
		Speed:  cfg.Speed,
		Ticks:  cfg.Ticks,
		Bins:   cfg.Histogram.Bins,
		Width:  cfg.Histogram.Width,
		Device: cfg.Device,
		Theme:  theme,
		Every:  uiEvery,
	})
	d.AddPresenter(live)

	type outcome struct {
		result *sim.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := d.Run(cmd.Context())
		live.Finish(r, err)
		done <- outcome{r, err}
	}()

	uiErr := live.Run()
	out := <-done
	if uiErr != nil {
		return uiErr
	}
	if out.result != nil {
		if err := saveResult(out.result, cfg); err != nil {
			return err
		}
	}
	return out.err
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	opts := gui.DefaultOptions()
	opts.Size = size
	opts.HistWidth = size * 6 / 5
	opts.Hold = hold
	opts.Bins = cfg.Histogram.Bins
	opts.Width = cfg.Histogram.Width
	opts.Device = cfg.Device
	opts.Workers = cfg.Workers
	opts.Audio = withAudio

	result, err := gui.Run(cmd.Context(), cfg.Sim(), opts, newMetrics(cfg)...)
	if result != nil {
		printSummary(os.Stdout, result, "window closed")
		if serr := saveResult(result, cfg); serr != nil {
			return serr
		}
	}
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	d, err := newDriver(cfg)
	if err != nil {
		return err
	}

	hub := stream.NewHub(slog.Default(), uiEvery)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok tick=%d phase=%s clients=%d\n", d.Tick(), d.Phase(), hub.Clients())
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "err", err)
		}
	}()
	defer func() {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()
	slog.Info("streaming", "addr", addr, "path", "/ws")

	ctx := cmd.Context()
	if waitFirst {
		for hub.Clients() == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
		}
	}

	if fps > 0 {
		d.AddPresenter(throttle(fps))
	}
	d.AddPresenter(hub)
	d.AddPresenter(sim.NewLogPresenter(slog.Default(), 64))

	result, err := d.Run(ctx)
	if result != nil {
		sent, dropped := hub.Stats()
		slog.Info("finished", "ticks", len(result.Ticks), "sent", sent, "dropped", dropped)
	}
	return err
}

// throttle limits the tick rate so that clients can follow the run.
func throttle(perSecond int) sim.Presenter {
	interval := time.Second / time.Duration(perSecond)
	var next time.Time
	return sim.PresenterFunc(func(ctx context.Context, f particle.Frame) error {
		if wait := time.Until(next); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		next = time.Now().Add(interval)
		return nil
	})
}

func saveResult(result *sim.Result, cfg *config.Config) error {
	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(result, storage.HistogramSettings{Bins: cfg.Histogram.Bins, Width: cfg.Histogram.Width})
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", id)
	return nil
}

// printSummary writes the run outcome; halted describes why a run stopped
// before its last tick.
func printSummary(w io.Writer, r *sim.Result, halted string) {
	fmt.Fprintf(w, "device: %s\n", r.Device)
	fmt.Fprintf(w, "ticks: %d / %d\n", len(r.Ticks), r.Config.Ticks)
	fmt.Fprintf(w, "elapsed: %v\n", r.Elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(w, "energy drift: %.3e\n", r.EnergyDrift)
	for _, name := range []string{"mean_sq", "collision_rate", "mb_distance"} {
		if v, ok := r.Metrics[name]; ok {
			fmt.Fprintf(w, "%s: %.4f\n", name, v)
		}
	}
	if r.Halted {
		fmt.Fprintln(w, halted)
	}
}

func benchDevice(cmd *cobra.Command, args []string) error {
	sizes := []int{32 * 32, 64 * 64, 128 * 128}
	lanes := []int{1, runtime.NumCPU()}

	fmt.Printf("benchmarking cpu device, %d ticks\n\n", ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tWORKERS\tTIME\tTICKS/SEC\tCOLLIDE")

	for _, size := range sizes {
		for _, wk := range lanes {
			cfg := config.DefaultConfig()
			cfg.N = size
			cfg.Ticks = ticks
			cfg.Workers = wk

			dev := compute.NewCPUDevice(wk)
			d := sim.New(cfg.Sim(), dev)
			result, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}

			var collide time.Duration
			for _, t := range result.Ticks {
				collide += t.Collide
			}
			share := 0.0
			if result.Elapsed > 0 {
				share = 100 * float64(collide) / float64(result.Elapsed)
			}
			fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\t%.0f%%\n",
				size, dev.Workers(),
				result.Elapsed.Truncate(time.Millisecond),
				float64(len(result.Ticks))/result.Elapsed.Seconds(),
				share,
			)
		}
	}
	return w.Flush()
}
