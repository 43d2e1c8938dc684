package gui

import (
	"github.com/san-kum/mbsim/internal/analysis"
)

// Layout maps simulation quantities onto window pixels. The particle box
// fills a Size x Size square on the left and the speed distribution panel
// sits to its right, speeds growing left to right and densities bottom up.
type Layout struct {
	Size      float32
	HistWidth float32
	Bounds    float64
	Speed     float64
}

// pixelsPerSpeed fits 2.4 initial speeds into the distribution panel.
func (l Layout) pixelsPerSpeed() float64 {
	if l.Speed <= 0 {
		return 1
	}
	return float64(l.HistWidth) / (2.4 * l.Speed)
}

// densityScale puts the Maxwell-Boltzmann peak at about 70% of the panel
// height.
func (l Layout) densityScale() float64 {
	if l.Speed <= 0 {
		return 1
	}
	return 0.8 * l.Speed
}

func (l Layout) WindowSize() (int32, int32) {
	return int32(l.Size + l.HistWidth), int32(l.Size)
}

// Particle returns the screen position of a particle at (x, y).
func (l Layout) Particle(x, y float64) (float32, float32) {
	s := float64(l.Size) / l.Bounds
	return float32(x * s), float32(y * s)
}

// Bar returns the rectangle of histogram bin i holding density d.
func (l Layout) Bar(h analysis.Histogram, i int, d float64) (x, y, w, hgt float32) {
	pps := l.pixelsPerSpeed()
	w = float32(h.Width * pps)
	x = l.Size + float32(i)*w
	hgt = float32(float64(l.Size) * l.densityScale() * d)
	y = l.Size - hgt
	return x, y, w, hgt
}

// Curve samples the Maxwell-Boltzmann density across the panel.
func (l Layout) Curve(points int) (xs, ys []float32) {
	if points < 2 || l.Speed <= 0 {
		return nil, nil
	}
	mb := analysis.NewMaxwellBoltzmann(l.Speed)
	pps := l.pixelsPerSpeed()
	vs, ds := mb.Curve(points, float64(l.HistWidth)/pps)

	xs = make([]float32, points)
	ys = make([]float32, points)
	for i := range vs {
		xs[i] = l.Size + float32(vs[i]*pps)
		ys[i] = l.Size * float32(1-l.densityScale()*ds[i])
	}
	return xs, ys
}
