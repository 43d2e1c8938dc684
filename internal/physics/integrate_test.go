package physics

import (
	"math"
	"testing"
)

func TestIntegrate(t *testing.T) {
	pos := []float64{0.5, 0.5, 0.1, 0.9}
	vel := []float64{10, -20, 0, 5}

	for i := 0; i < 2; i++ {
		Integrate(pos, vel, i, 0.01)
	}

	want := []float64{0.6, 0.3, 0.1, 0.95}
	for i := range want {
		if math.Abs(pos[i]-want[i]) > 1e-12 {
			t.Errorf("pos[%d] = %v, want %v", i, pos[i], want[i])
		}
	}
}

func TestIntegrateZeroDt(t *testing.T) {
	pos := []float64{0.25, 0.75, 0.5, 0.5}
	vel := []float64{1e6, -1e6, 3, 4}
	orig := append([]float64(nil), pos...)

	for i := 0; i < 2; i++ {
		Integrate(pos, vel, i, 0)
	}

	for i := range pos {
		if pos[i] != orig[i] {
			t.Errorf("pos[%d] = %v, want %v", i, pos[i], orig[i])
		}
	}
}

func TestSumSq(t *testing.T) {
	vel := []float64{3, 4, 1, 0, 0, 2}

	tests := []struct {
		lo, hi int
		want   float64
	}{
		{0, 3, 30},
		{0, 1, 25},
		{1, 3, 5},
		{2, 2, 0},
	}

	for _, tt := range tests {
		if got := SumSq(vel, tt.lo, tt.hi); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SumSq(%d, %d) = %v, want %v", tt.lo, tt.hi, got, tt.want)
		}
	}
}
