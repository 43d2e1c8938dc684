package metrics

import (
	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/particle"
)

// Equilibrium measures how far the speed histogram of the last frame is from
// the 2-D Maxwell-Boltzmann density for the initial speed. 0 is a perfect
// match, 2 is disjoint.
type Equilibrium struct {
	name  string
	speed float64
	bins  int
	width float64
	// Every rebuilds the histogram only on ticks divisible by it.
	Every int

	distance float64
	samples  int
}

func NewEquilibrium(speed float64, bins int, width float64) *Equilibrium {
	return &Equilibrium{
		name:  "mb_distance",
		speed: speed,
		bins:  bins,
		width: width,
		Every: 1,
	}
}

func (e *Equilibrium) Name() string { return e.name }

func (e *Equilibrium) Observe(f particle.Frame) {
	e.samples++
	if e.Every > 1 && f.Tick%e.Every != 0 {
		return
	}
	h := analysis.SpeedHistogram(f.Velocities, e.bins, e.width)
	e.distance = analysis.Distance(h, e.speed)
}

func (e *Equilibrium) Value() float64 { return e.distance }

func (e *Equilibrium) Reset() {
	e.distance = 0
	e.samples = 0
}
