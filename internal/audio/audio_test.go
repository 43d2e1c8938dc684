package audio

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/mbsim/internal/particle"
)

func buffer() [][]float32 {
	return [][]float32{make([]float32, BufferSize), make([]float32, BufferSize)}
}

func frame(tick, collisions int) particle.Frame {
	vel := make([]float64, 2*64)
	for i := 0; i < 64; i++ {
		vel[2*i] = 500
	}
	return particle.Frame{Tick: tick, N: 64, Velocities: vel, Collisions: collisions}
}

func TestProcessBounded(t *testing.T) {
	s := NewSonifier(64, 500)
	out := buffer()
	for k := 0; k < 20; k++ {
		if err := s.Present(context.Background(), frame(k, 32)); err != nil {
			t.Fatal(err)
		}
		s.Process(out)
		for c := range out {
			for _, v := range out[c] {
				if math.IsNaN(float64(v)) || v < -1 || v > 1 {
					t.Fatalf("sample %v out of range", v)
				}
			}
		}
	}
}

func TestProcessProducesSound(t *testing.T) {
	s := NewSonifier(64, 500)
	out := buffer()
	s.Process(out)
	s.Process(out)

	var energy float64
	for _, v := range out[0] {
		energy += float64(v) * float64(v)
	}
	if energy == 0 {
		t.Error("pad produced silence")
	}
}

func TestClicksFollowCollisions(t *testing.T) {
	s := NewSonifier(64, 500)
	out := buffer()

	s.Present(context.Background(), frame(1, 0))
	s.Process(out)
	if s.Clicks() != 0 {
		t.Errorf("no collisions should play no clicks, got %d", s.Clicks())
	}

	s.Present(context.Background(), frame(2, 64))
	s.Process(out)
	if s.Clicks() != 2 {
		t.Errorf("expected 2 clicks for 64 collisions, got %d", s.Clicks())
	}

	s.Present(context.Background(), frame(3, 1<<20))
	s.Process(out)
	if s.Clicks() != 2+maxPending {
		t.Errorf("clicks should be capped, got %d", s.Clicks())
	}
}

func TestCutoffFallsTowardsEquilibrium(t *testing.T) {
	far := Cutoff(0.01, 1.5)
	near := Cutoff(0.01, 0.05)
	if near >= far {
		t.Errorf("cutoff near equilibrium %v should be below %v", near, far)
	}
	if Cutoff(0, 0) != 250 {
		t.Errorf("base cutoff = %v, want 250", Cutoff(0, 0))
	}
	if Cutoff(1, 100) != Cutoff(0.5, 2) {
		t.Error("cutoff should saturate")
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := NewSonifier(1, 1)
	s.Stop()
}
