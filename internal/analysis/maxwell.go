package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxwellBoltzmann is the 2-D equilibrium speed distribution reached from a
// population whose speeds all start at Speed. Its density a v exp(-a v^2/2)
// with a = 2/Speed^2 is a Weibull density with shape 2 and scale Speed.
type MaxwellBoltzmann struct {
	Speed float64
	dist  distuv.Weibull
}

func NewMaxwellBoltzmann(speed float64) MaxwellBoltzmann {
	return MaxwellBoltzmann{Speed: speed, dist: distuv.Weibull{K: 2, Lambda: speed}}
}

func (m MaxwellBoltzmann) Prob(v float64) float64 {
	if v < 0 {
		return 0
	}
	return m.dist.Prob(v)
}

// Mode is the most probable speed, Speed/sqrt(2).
func (m MaxwellBoltzmann) Mode() float64 { return m.dist.Mode() }

func (m MaxwellBoltzmann) Mean() float64 { return m.dist.Mean() }

// BinProb returns the probability mass between lo and hi.
func (m MaxwellBoltzmann) BinProb(lo, hi float64) float64 {
	return m.dist.CDF(hi) - m.dist.CDF(lo)
}

// Curve samples the density at n evenly spaced speeds in [0, max).
func (m MaxwellBoltzmann) Curve(n int, max float64) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := range x {
		x[i] = float64(i) / float64(n) * max
		y[i] = m.Prob(x[i])
	}
	return x, y
}

// Expected returns the density the histogram bins would have at
// equilibrium, averaged over each bin.
func (m MaxwellBoltzmann) Expected(h Histogram) []float64 {
	out := make([]float64, h.Bins())
	for i := range out {
		lo := float64(i) * h.Width
		out[i] = m.BinProb(lo, lo+h.Width) / h.Width
	}
	return out
}

// Distance is the L1 distance between the histogram density and the
// equilibrium density, integrated over the bins. It ranges from 0 (perfect
// match) to 2.
func Distance(h Histogram, speed float64) float64 {
	if h.Bins() == 0 || speed <= 0 {
		return 0
	}
	mb := NewMaxwellBoltzmann(speed)
	return floats.Distance(h.Density(), mb.Expected(h), 1) * h.Width
}
