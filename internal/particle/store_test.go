package particle

import (
	"errors"
	"math"
	"testing"
)

func TestGrid(t *testing.T) {
	s, err := Grid(16, 1, 500, NewRand(1))
	if err != nil {
		t.Fatalf("grid failed: %v", err)
	}

	if s.N != 16 || len(s.Pos) != 32 || len(s.Vel) != 32 {
		t.Fatalf("unexpected sizes: n=%d pos=%d vel=%d", s.N, len(s.Pos), len(s.Vel))
	}

	// particle i*side+j sits at (i, j)/side
	if s.Pos[2*6] != 0.25 || s.Pos[2*6+1] != 0.5 {
		t.Errorf("particle 6 at (%v, %v), want (0.25, 0.5)", s.Pos[12], s.Pos[13])
	}

	for i, v := range s.Speeds() {
		if math.Abs(v-500) > 1e-9 {
			t.Errorf("particle %d speed %v, want 500", i, v)
		}
	}
}

func TestGridNotSquare(t *testing.T) {
	for _, n := range []int{2, 15, 17} {
		if _, err := Grid(n, 1, 1, NewRand(1)); !errors.Is(err, ErrNotSquare) {
			t.Errorf("n=%d: expected ErrNotSquare, got %v", n, err)
		}
	}
	if _, err := Grid(0, 1, 1, NewRand(1)); !errors.Is(err, ErrEmpty) {
		t.Errorf("n=0: expected ErrEmpty, got %v", err)
	}
}

func TestScatter(t *testing.T) {
	s, err := Scatter(7, 2, 3, NewRand(42))
	if err != nil {
		t.Fatalf("scatter failed: %v", err)
	}
	for i, p := range s.Pos {
		if p < 0 || p >= 2 {
			t.Errorf("coordinate %d = %v outside [0, 2)", i, p)
		}
	}
	for i, v := range s.Speeds() {
		if math.Abs(v-3) > 1e-12 {
			t.Errorf("particle %d speed %v, want 3", i, v)
		}
	}
}

func TestNewLayouts(t *testing.T) {
	if _, err := New(LayoutScatter, 5, 1, 1, NewRand(1)); err != nil {
		t.Errorf("scatter: %v", err)
	}
	if _, err := New("", 9, 1, 1, NewRand(1)); err != nil {
		t.Errorf("default layout: %v", err)
	}
	if _, err := New("hex", 9, 1, 1, NewRand(1)); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestSeedReproducible(t *testing.T) {
	a, _ := Grid(9, 1, 1, NewRand(7))
	b, _ := Grid(9, 1, 1, NewRand(7))
	for i := range a.Vel {
		if a.Vel[i] != b.Vel[i] {
			t.Fatalf("seeded runs diverge at %d", i)
		}
	}
}

func TestStoreIsValid(t *testing.T) {
	s := NewStore(2)
	if !s.IsValid() {
		t.Error("zero store should be valid")
	}
	s.Vel[3] = math.NaN()
	if s.IsValid() {
		t.Error("NaN velocity should be invalid")
	}
}

func TestFrameClone(t *testing.T) {
	s := NewStore(2)
	f := Frame{N: 2, Positions: s.Pos, Velocities: s.Vel, Tick: 3}

	c := f.Clone()
	s.Pos[0] = 99
	if c.Positions[0] == 99 {
		t.Error("Clone shares position buffer")
	}
	if c.Tick != 3 {
		t.Errorf("tick = %d, want 3", c.Tick)
	}
}

func TestFramePool(t *testing.T) {
	pool := NewFramePool(2)
	src := Frame{N: 2, Positions: []float64{1, 2, 3, 4}, Velocities: []float64{5, 6, 7, 8}, Tick: 9}

	f := pool.GetAndCopy(src)
	if f.Tick != 9 || f.Positions[3] != 4 || f.Velocities[0] != 5 {
		t.Errorf("GetAndCopy = %+v", f)
	}
	src.Positions[3] = 0
	if f.Positions[3] != 4 {
		t.Error("GetAndCopy did not create independent copy")
	}

	pool.Put(f)
	g := pool.Get()
	if len(g.Positions) != 0 {
		t.Error("pool did not reset frame")
	}
}
