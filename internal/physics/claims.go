package physics

import "sync/atomic"

// Claims holds one transient counter per particle arbitrating which lane may
// resolve a collision for it during the current tick.
//
// sync/atomic operations are sequentially consistent, which is stronger than
// the acquire-release ordering the protocol needs.
type Claims struct {
	c []atomic.Int32
}

func NewClaims(n int) *Claims {
	return &Claims{c: make([]atomic.Int32, n)}
}

func (c *Claims) Len() int { return len(c.c) }

// Reset zeroes every counter. It must not run concurrently with Acquire.
func (c *Claims) Reset() {
	for i := range c.c {
		c.c[i].Store(0)
	}
}

// Acquire increments the counters of i and j, in that order, and returns
// their previous values.
func (c *Claims) Acquire(i, j int) (self, other int32) {
	self = c.c[i].Add(1) - 1
	other = c.c[j].Add(1) - 1
	return self, other
}

// Release rolls back an Acquire that did not win both counters.
func (c *Claims) Release(i, j int) {
	c.c[i].Add(-1)
	c.c[j].Add(-1)
}

// Load returns the current counter of particle i.
func (c *Claims) Load(i int) int32 { return c.c[i].Load() }

// Held counts particles whose counter is non-zero. After a completed pass
// this is twice the number of resolved pairs.
func (c *Claims) Held() int {
	held := 0
	for i := range c.c {
		if c.c[i].Load() != 0 {
			held++
		}
	}
	return held
}
