package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mbsim/internal/analysis"
)

// HistogramChart plots the speed density of h (white) against the
// Maxwell-Boltzmann density for speed (red) over [0, 4*speed).
func HistogramChart(h analysis.Histogram, speed float64, width, height int) string {
	if h.Bins() == 0 {
		return ""
	}

	shown := h.Bins()
	if speed > 0 {
		shown = min(shown, int(math.Ceil(4*speed/h.Width)))
	}
	if shown < 2 {
		shown = min(2, h.Bins())
	}

	density := h.Density()[:shown]
	series := [][]float64{density}
	colors := []asciigraph.AnsiColor{asciigraph.Default}
	legends := []string{"simulated"}
	if speed > 0 {
		mb := analysis.NewMaxwellBoltzmann(speed)
		curve := make([]float64, shown)
		for i := range curve {
			curve[i] = mb.Prob(h.Center(i))
		}
		series = append(series, curve)
		colors = append(colors, asciigraph.Red)
		legends = append(legends, "maxwell-boltzmann")
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Precision(5),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(fmt.Sprintf("speed density, bins of %g", h.Width)),
	)
}
