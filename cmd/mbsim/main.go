package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/san-kum/mbsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logFormat  string
	logLevel   string

	device        string
	n             int
	layout        string
	seed          int64
	radius        float64
	bounds        float64
	speed         float64
	dt            float64
	ticks         int
	workers       int
	validateState bool
	bins          int
	binWidth      float64
)

// raylib and the GL device must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "mbsim",
		Short:         "n-body collision simulator approximating the Maxwell-Boltzmann distribution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logFormat, logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mbsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		runCommand(),
		liveCommand(),
		guiCommand(),
		serveCommand(),
		listCommand(),
		plotCommand(),
		histogramCommand(),
		analyzeCommand(),
		exportCSVCommand(),
		exportJSONCommand(),
		exportSVGCommand(),
		scenarioCommand(),
		sweepCommand(),
		presetsCommand(),
		devicesCommand(),
		benchCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging(format, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		h = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// addSimFlags registers the simulation flags shared by every command that
// runs the simulator.
func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&device, "device", def.Device, "compute device (auto, cpu, gl)")
	f.IntVarP(&n, "particles", "n", def.N, "number of particles")
	f.StringVar(&layout, "layout", def.Layout, "initial layout (grid, scatter)")
	f.Int64Var(&seed, "seed", def.Seed, "random seed")
	f.Float64Var(&radius, "radius", def.Radius, "particle radius")
	f.Float64Var(&bounds, "bounds", def.Bounds, "box side length")
	f.Float64Var(&speed, "speed", def.Speed, "initial speed")
	f.Float64Var(&dt, "dt", def.Dt, "timestep")
	f.IntVar(&ticks, "ticks", def.Ticks, "number of ticks")
	f.IntVar(&workers, "workers", def.Workers, "cpu workers (0 = all cores)")
	f.BoolVar(&validateState, "validate", def.ValidateState, "abort on non-finite velocities")
	f.IntVar(&bins, "bins", def.Histogram.Bins, "speed histogram bins")
	f.Float64Var(&binWidth, "bin-width", def.Histogram.Width, "speed histogram bin width")
}

// resolveConfig starts from the preset, reads the config file over it and
// applies only the flags the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Device = device
	}
	if flags.Changed("particles") {
		cfg.N = n
	}
	if flags.Changed("layout") {
		cfg.Layout = layout
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("bounds") {
		cfg.Bounds = bounds
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validateState
	}
	if flags.Changed("bins") {
		cfg.Histogram.Bins = bins
	}
	if flags.Changed("bin-width") {
		cfg.Histogram.Width = binWidth
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
