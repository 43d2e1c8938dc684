package physics

import (
	"math"
	"sync"
	"testing"
)

const tol = 1e-9

func TestElasticConservation(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, v1, v2 Vec2
	}{
		{"head on", Vec2{0, 0}, Vec2{1, 0}, Vec2{1, 0}, Vec2{-1, 0}},
		{"glancing", Vec2{0, 0}, Vec2{1, 1}, Vec2{3, -2}, Vec2{0.5, 4}},
		{"one at rest", Vec2{0.2, 0.3}, Vec2{0.25, 0.31}, Vec2{500, 0}, Vec2{}},
		{"separating", Vec2{0, 0}, Vec2{0.001, 0}, Vec2{-1, 0}, Vec2{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w1, w2 := Elastic(tt.p1, tt.p2, tt.v1, tt.v2)

			before := tt.v1.Add(tt.v2)
			after := w1.Add(w2)
			if !before.Near(after, tol*(1+before.Len())) {
				t.Errorf("momentum %v -> %v", before, after)
			}

			ke0 := tt.v1.Dot(tt.v1) + tt.v2.Dot(tt.v2)
			ke1 := w1.Dot(w1) + w2.Dot(w2)
			if math.Abs(ke0-ke1) > tol*(1+ke0) {
				t.Errorf("kinetic energy %v -> %v", ke0, ke1)
			}
		})
	}
}

func TestElasticHeadOnSwaps(t *testing.T) {
	w1, w2 := Elastic(Vec2{0, 0}, Vec2{1, 0}, Vec2{2, 0}, Vec2{-1, 0})
	if !w1.Near(Vec2{-1, 0}, tol) || !w2.Near(Vec2{2, 0}, tol) {
		t.Errorf("head-on equal masses should exchange velocities, got %v %v", w1, w2)
	}
}

func TestCollideFourParticles(t *testing.T) {
	const r = 0.01
	pos := []float64{
		0.500, 0.500,
		0.505, 0.502,
		0.100, 0.100,
		0.900, 0.900,
	}
	vel := []float64{
		1, 0,
		-2, 1,
		3, 3,
		-4, 2,
	}
	orig := append([]float64(nil), vel...)
	claims := NewClaims(4)

	for i := 0; i < 3; i++ {
		Collide(pos, vel, claims, i, 4, r)
	}

	w1, w2 := Elastic(At(pos, 0), At(pos, 1), At(orig, 0), At(orig, 1))
	if !At(vel, 0).Near(w1, tol) || !At(vel, 1).Near(w2, tol) {
		t.Errorf("pair 0,1 = %v %v, want %v %v", At(vel, 0), At(vel, 1), w1, w2)
	}
	for i := 2; i < 4; i++ {
		if At(vel, i) != At(orig, i) {
			t.Errorf("particle %d velocity changed: %v", i, At(vel, i))
		}
	}
	if claims.Held() != 2 {
		t.Errorf("held claims = %d, want 2", claims.Held())
	}
}

func TestCollideCoincidentSkipped(t *testing.T) {
	pos := []float64{0.5, 0.5, 0.5, 0.5}
	vel := []float64{1, 0, -1, 0}
	claims := NewClaims(2)

	if Collide(pos, vel, claims, 0, 2, 0.01) {
		t.Error("coincident pair should not resolve")
	}
	if claims.Held() != 0 {
		t.Errorf("coincident pair left %d claims held", claims.Held())
	}
	for _, v := range vel {
		if math.IsNaN(v) {
			t.Fatal("velocity became NaN")
		}
	}
}

func TestCollideClaimedSelfStops(t *testing.T) {
	const r = 0.01
	// 0 overlaps 1, 1 overlaps 2. Lane 0 resolves first, so lane 1 finds
	// itself claimed and gives up without touching 2.
	pos := []float64{0.5, 0.5, 0.51, 0.5, 0.52, 0.5}
	vel := []float64{1, 0, 0, 0, -1, 0}
	claims := NewClaims(3)

	if !Collide(pos, vel, claims, 0, 3, r) {
		t.Fatal("lane 0 should resolve with lane 1")
	}
	if Collide(pos, vel, claims, 1, 3, r) {
		t.Error("lane 1 was already claimed")
	}
	if claims.Load(2) != 0 {
		t.Errorf("lane 2 claim = %d after rollback, want 0", claims.Load(2))
	}
	if At(vel, 2) != (Vec2{-1, 0}) {
		t.Errorf("lane 2 velocity changed: %v", At(vel, 2))
	}
}

func TestCollideSkipsClaimedPartner(t *testing.T) {
	const r = 0.01
	// 0 overlaps 2 and 3, 2 is taken already. Lane 0 rolls back and moves on
	// to 3.
	pos := []float64{0.5, 0.5, 0.9, 0.9, 0.505, 0.5, 0.5, 0.505}
	vel := []float64{1, 1, 0, 0, 0, 0, 0, 0}
	claims := NewClaims(4)
	claims.Acquire(1, 2)

	if !Collide(pos, vel, claims, 0, 4, r) {
		t.Fatal("lane 0 should fall through to lane 3")
	}
	if claims.Load(2) != 1 || claims.Load(3) != 1 || claims.Load(0) != 1 {
		t.Errorf("claims = %d %d %d, want 1 1 1", claims.Load(0), claims.Load(2), claims.Load(3))
	}
	if At(vel, 2) != (Vec2{}) {
		t.Errorf("claimed partner velocity changed: %v", At(vel, 2))
	}
}

func TestCollideConcurrentAtMostOnce(t *testing.T) {
	const (
		n = 400
		r = 0.02
	)
	pos := make([]float64, 2*n)
	vel := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		// a tight cluster so most lanes overlap many neighbours
		pos[2*i] = 0.5 + 0.03*math.Cos(float64(i))
		pos[2*i+1] = 0.5 + 0.03*math.Sin(float64(i)*1.7)
		vel[2*i] = math.Sin(float64(i))
		vel[2*i+1] = math.Cos(float64(i))
	}
	orig := append([]float64(nil), vel...)
	claims := NewClaims(n)

	var wg sync.WaitGroup
	var mu sync.Mutex
	resolved := 0
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			local := 0
			for i := w; i < n-1; i += 8 {
				if Collide(pos, vel, claims, i, n, r) {
					local++
				}
			}
			mu.Lock()
			resolved += local
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	if resolved == 0 {
		t.Fatal("expected collisions in a dense cluster")
	}
	if held := claims.Held(); held != 2*resolved {
		t.Errorf("held = %d, want %d", held, 2*resolved)
	}
	for i := 0; i < n; i++ {
		c := claims.Load(i)
		if c != 0 && c != 1 {
			t.Fatalf("claim %d = %d after pass", i, c)
		}
		if c == 0 && At(vel, i) != At(orig, i) {
			t.Errorf("unclaimed particle %d changed velocity", i)
		}
	}
}
