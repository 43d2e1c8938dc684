package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/compute"
	"github.com/san-kum/mbsim/internal/config"
	"github.com/san-kum/mbsim/internal/storage"
	"github.com/san-kum/mbsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	particlesCSV bool
	chartWidth   int
	chartHeight  int
)

// runArg resolves the run ID argument, defaulting to the latest run.
func runArg(st *storage.Store, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return st.Latest()
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
}

func plotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot tick statistics of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
}

func histogramCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "histogram [run_id]",
		Short: "final speed distribution against Maxwell-Boltzmann",
		Args:  cobra.MaximumNArgs(1),
		RunE:  histogramRun,
	}
	cmd.Flags().IntVar(&chartWidth, "width", 100, "chart width")
	cmd.Flags().IntVar(&chartHeight, "height", 20, "chart height")
	return cmd
}

func analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the collision series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
}

func exportCSVCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export tick statistics or the final snapshot as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			id, err := runArg(st, args)
			if err != nil {
				return err
			}
			return st.ExportCSV(os.Stdout, id, particlesCSV)
		},
	}
	cmd.Flags().BoolVar(&particlesCSV, "particles", false, "export the final particle snapshot")
	return cmd
}

func exportJSONCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and tick statistics as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			id, err := runArg(st, args)
			if err != nil {
				return err
			}
			return st.ExportJSON(os.Stdout, id)
		},
	}
}

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tN\tLAYOUT\tRADIUS\tSPEED\tDT\tTICKS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%s\t%g\t%g\t%g\t%d\n",
					name, p.N, p.Layout, p.Radius, p.Speed, p.Dt, p.Ticks)
			}
			return w.Flush()
		},
	}
}

func devicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "list compute devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATUS")
			for _, name := range compute.Names() {
				status := "available"
				if _, err := compute.Select(name, 1); err != nil {
					status = err.Error()
				}
				fmt.Fprintf(w, "%s\t%s\n", name, status)
			}
			return w.Flush()
		},
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDEVICE\tN\tTICKS\tELAPSED\tMB DIST")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d/%d\t%v\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Device,
			run.N,
			run.Completed,
			run.Ticks,
			run.Elapsed.Truncate(time.Millisecond),
			run.Metrics["mb_distance"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := runArg(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	records, err := st.LoadTicks(id)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d, ticks: %d\n\n", meta.N, len(records))

	meanSq := make([]float64, len(records))
	collisions := make([]float64, len(records))
	tickMs := make([]float64, len(records))
	for i, r := range records {
		meanSq[i] = r.MeanSq
		collisions[i] = float64(r.Collisions)
		tickMs[i] = (r.WallUs + r.CollideUs + r.IntegUs + r.ReduceUs) / 1000
	}

	series := []struct {
		data    []float64
		caption string
	}{
		{meanSq, "mean of squared velocities"},
		{collisions, "collisions per tick"},
		{tickMs, "tick time (ms)"},
	}
	for _, s := range series {
		fmt.Println(asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}
	return nil
}

func histogramRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := runArg(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	final, err := st.LoadParticles(id)
	if err != nil {
		return err
	}

	hs := meta.Histogram()
	h := analysis.SpeedHistogram(final.Vel, hs.Bins, hs.Width)
	mb := analysis.NewMaxwellBoltzmann(meta.Speed)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("bins: %d x %g\n\n", hs.Bins, hs.Width)
	fmt.Println(viz.HistogramChart(h, meta.Speed, chartWidth, chartHeight))
	fmt.Println()
	fmt.Printf("mode: %.1f (theory %.1f)\n", h.Center(h.Mode()), mb.Mode())
	fmt.Printf("mean: %.1f (theory %.1f)\n", stat.Mean(final.Speeds(), nil), mb.Mean())
	fmt.Printf("distance: %.4f\n", analysis.Distance(h, meta.Speed))
	fmt.Println()
	fmt.Println(analysis.VelocityPortrait(final.Vel, 60, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := runArg(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	records, err := st.LoadTicks(id)
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	data := make([]float64, len(records))
	for i, r := range records {
		data[i] = float64(r.Collisions)
	}

	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)

	ps := analysis.PowerSpectrum(padded)
	if len(ps) > 1 {
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (collisions per tick)"),
		))
		fmt.Println()
	}

	period := analysis.DominantPeriod(padded)
	if period == 0 {
		fmt.Println("no dominant frequency")
		return nil
	}
	fmt.Printf("dominant period: %.1f ticks (%.3e s simulated)\n", period, period*meta.Dt)
	return nil
}
