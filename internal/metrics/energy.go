package metrics

import (
	"math"

	"github.com/san-kum/mbsim/internal/particle"
)

// MeanSquare reports the mean square speed of the last observed frame. With
// elastic collisions it stays at S^2.
type MeanSquare struct {
	name    string
	last    float64
	samples int
}

func NewMeanSquare() *MeanSquare {
	return &MeanSquare{name: "mean_sq"}
}

func (m *MeanSquare) Name() string { return m.name }

func (m *MeanSquare) Observe(f particle.Frame) {
	m.last = f.MeanSq
	m.samples++
}

func (m *MeanSquare) Value() float64 { return m.last }

func (m *MeanSquare) Reset() {
	m.last = 0
	m.samples = 0
}

// EnergyDrift is the largest relative deviation of the per-tick sum of
// squared speeds from the first observed frame.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f particle.Frame) {
	if e.samples == 0 {
		e.initial = f.SumSq
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(f.SumSq-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
