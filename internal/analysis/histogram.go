package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultBins  = 333
	DefaultWidth = 32.0
)

// Histogram counts particle speeds in equal-width bins starting at 0.
type Histogram struct {
	Width  float64
	Counts []float64
	// Total is the number of particles sampled, including those beyond the
	// last bin.
	Total int
}

// SpeedHistogram bins |v| for every x,y pair of vel. Speeds at or beyond
// bins*width are not counted.
func SpeedHistogram(vel []float64, bins int, width float64) Histogram {
	if bins <= 0 {
		bins = DefaultBins
	}
	if width <= 0 {
		width = DefaultWidth
	}
	n := len(vel) / 2
	h := Histogram{Width: width, Counts: make([]float64, bins), Total: n}

	limit := float64(bins) * width
	speeds := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		s := math.Hypot(vel[2*i], vel[2*i+1])
		if s < limit {
			speeds = append(speeds, s)
		}
	}
	if len(speeds) == 0 {
		return h
	}
	sort.Float64s(speeds)

	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, limit)
	stat.Histogram(h.Counts, dividers, speeds, nil)
	return h
}

func (h Histogram) Bins() int { return len(h.Counts) }

// Center returns the speed at the middle of bin i.
func (h Histogram) Center(i int) float64 {
	return (float64(i) + 0.5) * h.Width
}

// Density normalizes the counts to a probability density: count/N/width.
func (h Histogram) Density() []float64 {
	out := make([]float64, len(h.Counts))
	if h.Total == 0 {
		return out
	}
	copy(out, h.Counts)
	floats.Scale(1/(float64(h.Total)*h.Width), out)
	return out
}

// Mode returns the index of the fullest bin.
func (h Histogram) Mode() int {
	if len(h.Counts) == 0 {
		return -1
	}
	return floats.MaxIdx(h.Counts)
}
