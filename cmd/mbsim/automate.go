package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/automation"
	"github.com/san-kum/mbsim/internal/export"
	"github.com/san-kum/mbsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	svgKind    string
	svgOut     string
	svgSize    int
)

func scenarioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			st := storage.New(dataDir)
			if err := st.Init(); err != nil {
				return err
			}

			results, err := automation.RunScenario(cmd.Context(), sc, st)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tN\tTICKS\tMEAN V^2\tMB DIST\tTIME")
			for i, r := range results {
				fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\t%.4f\t%v\n",
					i+1, r.Config.N, len(r.Ticks),
					r.Metrics["mean_sq"], r.Metrics["mb_distance"],
					r.Elapsed.Truncate(time.Millisecond))
			}
			if ferr := w.Flush(); ferr != nil {
				return ferr
			}
			return err
		},
	}
}

func sweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter and compare equilibrium metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
				Base:     cfg,
				Param:    sweepParam,
				Min:      sweepMin,
				Max:      sweepMax,
				NumSteps: sweepSteps,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tTICKS\tMEAN V^2\tCOLL/TICK\tMB DIST\tDRIFT\tTIME\n", sweepParam)
			for _, r := range results {
				fmt.Fprintf(w, "%g\t%d\t%.1f\t%.1f\t%.4f\t%.2e\t%v\n",
					r.ParamValue, r.Ticks, r.MeanSq, r.CollisionRate,
					r.MBDistance, r.EnergyDrift, r.Elapsed.Truncate(time.Millisecond))
			}
			return w.Flush()
		},
	}
	addSimFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "param", "radius", "parameter to sweep")
	cmd.Flags().Float64Var(&sweepMin, "min", 0.0005, "first value")
	cmd.Flags().Float64Var(&sweepMax, "max", 0.004, "last value")
	cmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	return cmd
}

func exportSVGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final snapshot or speed histogram as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var svg string
			switch svgKind {
			case "particles":
				svg = export.ParticlesSVG(final, meta.Bounds, svgSize)
			case "canvas":
				svg = export.ParticlesCanvasSVG(final, meta.Bounds, svgSize/8, svgSize/16, 4)
			case "histogram":
				hs := meta.Histogram()
				h := analysis.SpeedHistogram(final.Vel, hs.Bins, hs.Width)
				svg = export.HistogramSVG(h, meta.Speed, svgSize*6/5, svgSize)
			default:
				return fmt.Errorf("unknown kind %q (particles, canvas, histogram)", svgKind)
			}

			if svgOut == "" || svgOut == "-" {
				_, err = fmt.Println(svg)
				return err
			}
			return os.WriteFile(svgOut, []byte(svg), 0644)
		},
	}
	cmd.Flags().StringVar(&svgKind, "kind", "histogram", "what to render (particles, canvas, histogram)")
	cmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&svgSize, "size", 1000, "image height in pixels")
	return cmd
}
