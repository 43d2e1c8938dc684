package compute

import (
	"fmt"
	"runtime"

	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/physics"
	"gonum.org/v1/gonum/floats"
)

// serialThreshold is the lane count below which passes run on the calling
// goroutine.
const serialThreshold = 64

// CPUDevice dispatches every pass over goroutine lanes. It adopts the store
// passed to Load and updates it in place.
type CPUDevice struct {
	workers  int
	store    *particle.Store
	claims   *physics.Claims
	partials []float64
	resolved []int
}

func NewCPUDevice(workers int) *CPUDevice {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUDevice{
		workers:  workers,
		partials: make([]float64, workers),
		resolved: make([]int, workers),
	}
}

func (c *CPUDevice) Name() string    { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPUDevice) Available() bool { return true }
func (c *CPUDevice) Close()          {}
func (c *CPUDevice) Workers() int    { return c.workers }

// Claims exposes the claim counters left by the last pairwise pass.
func (c *CPUDevice) Claims() *physics.Claims { return c.claims }

func (c *CPUDevice) Load(s *particle.Store) error {
	if s == nil || s.N <= 0 {
		return particle.ErrEmpty
	}
	c.store = s
	if c.claims == nil || c.claims.Len() != s.N {
		c.claims = physics.NewClaims(s.N)
	}
	return nil
}

func (c *CPUDevice) Fetch(dst *particle.Store) error {
	if c.store == nil {
		return fmt.Errorf("compute: fetch before load")
	}
	if dst != c.store {
		if dst.N != c.store.N {
			return fmt.Errorf("compute: fetch into store of %d particles, have %d", dst.N, c.store.N)
		}
		dst.CopyFrom(c.store)
	}
	return nil
}

func (c *CPUDevice) Wall(radius, bounds float64) {
	pos, vel := c.store.Pos, c.store.Vel
	parallelFor(c.workers, c.store.N, serialThreshold, func(_, start, end int) {
		for i := start; i < end; i++ {
			physics.Wall(pos, vel, i, radius, bounds)
		}
	})
}

func (c *CPUDevice) Collide(radius float64) int {
	n := c.store.N
	pos, vel := c.store.Pos, c.store.Vel
	c.claims.Reset()

	workers := c.workers
	if n < serialThreshold {
		workers = 1
	}
	for w := range c.resolved {
		c.resolved[w] = 0
	}

	parallelStrided(workers, n-1, func(w, stride int) {
		count := 0
		for i := w; i < n-1; i += stride {
			if physics.Collide(pos, vel, c.claims, i, n, radius) {
				count++
			}
		}
		c.resolved[w] = count
	})

	total := 0
	for _, r := range c.resolved {
		total += r
	}
	return total
}

func (c *CPUDevice) Integrate(dt float64) {
	pos, vel := c.store.Pos, c.store.Vel
	parallelFor(c.workers, c.store.N, serialThreshold, func(_, start, end int) {
		for i := start; i < end; i++ {
			physics.Integrate(pos, vel, i, dt)
		}
	})
}

// SumSq reduces v.v over all lanes; each worker produces a partial and the
// partials are combined starting from 0.
func (c *CPUDevice) SumSq() float64 {
	vel := c.store.Vel
	for w := range c.partials {
		c.partials[w] = 0
	}
	parallelFor(c.workers, c.store.N, serialThreshold, func(w, start, end int) {
		c.partials[w] = physics.SumSq(vel, start, end)
	})
	return floats.Sum(c.partials)
}
