package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/sim"
)

var (
	_ sim.Metric = (*MeanSquare)(nil)
	_ sim.Metric = (*EnergyDrift)(nil)
	_ sim.Metric = (*CollisionRate)(nil)
	_ sim.Metric = (*Equilibrium)(nil)
)

func TestMeanSquare(t *testing.T) {
	m := NewMeanSquare()
	m.Observe(particle.Frame{MeanSq: 4})
	m.Observe(particle.Frame{MeanSq: 9})
	if m.Value() != 9 {
		t.Errorf("expected last value 9, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("reset did not clear value")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	for _, s := range []float64{100, 101, 99.5, 100} {
		m.Observe(particle.Frame{SumSq: s})
	}
	if math.Abs(m.Value()-0.01) > 1e-12 {
		t.Errorf("expected max drift 0.01, got %v", m.Value())
	}

	m.Reset()
	m.Observe(particle.Frame{SumSq: 50})
	if m.Value() != 0 {
		t.Errorf("expected zero drift after reset, got %v", m.Value())
	}
}

func TestCollisionRate(t *testing.T) {
	m := NewCollisionRate()
	if m.Value() != 0 {
		t.Error("empty rate should be 0")
	}
	for _, c := range []int{2, 4, 0, 6} {
		m.Observe(particle.Frame{Collisions: c})
	}
	if m.Value() != 3 {
		t.Errorf("expected 3 collisions per tick, got %v", m.Value())
	}
}

func TestEquilibrium(t *testing.T) {
	const n, speed = 400, 500.0
	s, err := particle.Grid(n, 1, speed, particle.NewRand(3))
	if err != nil {
		t.Fatal(err)
	}

	m := NewEquilibrium(speed, 0, 0)
	m.Observe(particle.Frame{N: n, Velocities: s.Vel})
	if m.Value() < 1.5 {
		t.Errorf("fresh single-speed run should be far from equilibrium, got %v", m.Value())
	}

	m.Every = 10
	m.Observe(particle.Frame{Tick: 3, N: n, Velocities: make([]float64, 2*n)})
	if m.Value() < 1.5 {
		t.Error("frame off the sampling interval should not update the distance")
	}
}
