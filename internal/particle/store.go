package particle

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	ErrNotSquare = errors.New("particle: grid layout needs a perfect-square count")
	ErrEmpty     = errors.New("particle: count must be positive")
)

// Store owns the positions and velocities of N particles as interleaved x,y
// pairs. Particles are identified by index.
type Store struct {
	N   int
	Pos []float64
	Vel []float64
}

func NewStore(n int) *Store {
	return &Store{
		N:   n,
		Pos: make([]float64, 2*n),
		Vel: make([]float64, 2*n),
	}
}

func (s *Store) Clone() *Store {
	c := NewStore(s.N)
	copy(c.Pos, s.Pos)
	copy(c.Vel, s.Vel)
	return c
}

// CopyFrom overwrites s with src; both must hold the same N.
func (s *Store) CopyFrom(src *Store) {
	copy(s.Pos, src.Pos)
	copy(s.Vel, src.Vel)
}

func (s *Store) IsValid() bool {
	for _, v := range s.Vel {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, v := range s.Pos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Speeds returns |v| for every particle.
func (s *Store) Speeds() []float64 {
	out := make([]float64, s.N)
	for i := range out {
		vx, vy := s.Vel[2*i], s.Vel[2*i+1]
		out[i] = math.Sqrt(vx*vx + vy*vy)
	}
	return out
}

// Layout selects how initial positions are generated.
type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutScatter Layout = "scatter"
)

// New builds a store with the given layout and randomly directed velocities
// of equal magnitude.
func New(layout Layout, n int, bounds, speed float64, rng *rand.Rand) (*Store, error) {
	switch layout {
	case LayoutGrid, "":
		return Grid(n, bounds, speed, rng)
	case LayoutScatter:
		return Scatter(n, bounds, speed, rng)
	default:
		return nil, fmt.Errorf("particle: unknown layout %q", layout)
	}
}

// Grid spaces n particles evenly on a sqrt(n) x sqrt(n) lattice; particle
// i*side+j sits at (i, j)*bounds/side.
func Grid(n int, bounds, speed float64, rng *rand.Rand) (*Store, error) {
	side, err := Side(n)
	if err != nil {
		return nil, err
	}
	s := NewStore(n)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			k := i*side + j
			s.Pos[2*k] = float64(i) * bounds / float64(side)
			s.Pos[2*k+1] = float64(j) * bounds / float64(side)
		}
	}
	s.randomDirections(speed, rng)
	return s, nil
}

// Scatter places n particles uniformly at random in the box.
func Scatter(n int, bounds, speed float64, rng *rand.Rand) (*Store, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	s := NewStore(n)
	for i := range s.Pos {
		s.Pos[i] = rng.Float64() * bounds
	}
	s.randomDirections(speed, rng)
	return s, nil
}

func (s *Store) randomDirections(speed float64, rng *rand.Rand) {
	for i := 0; i < s.N; i++ {
		a := rng.Float64() * 2 * math.Pi
		s.Vel[2*i] = speed * math.Sin(a)
		s.Vel[2*i+1] = speed * math.Cos(a)
	}
}

// Side returns sqrt(n) when n is a positive perfect square.
func Side(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmpty
	}
	side := int(math.Round(math.Sqrt(float64(n))))
	if side*side != n {
		return 0, fmt.Errorf("%w: %d", ErrNotSquare, n)
	}
	return side, nil
}

// NewRand returns the seeded generator used for initial conditions.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}
