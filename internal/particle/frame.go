package particle

import "time"

// Frame is the per-tick hand-off to presenters. Positions and Velocities
// alias the simulation buffers and are only valid during the Present call;
// presenters that keep data must Clone it.
type Frame struct {
	Tick       int
	N          int
	Positions  []float64
	Velocities []float64
	SumSq      float64
	MeanSq     float64
	Collisions int
	// Elapsed is the compute time of the tick's passes, excluding
	// presenters.
	Elapsed time.Duration
}

// Clone returns a frame that owns its buffers.
func (f Frame) Clone() Frame {
	c := f
	c.Positions = append([]float64(nil), f.Positions...)
	c.Velocities = append([]float64(nil), f.Velocities...)
	return c
}

// CloneInto copies f into dst, reusing dst's buffers when they fit.
func (f Frame) CloneInto(dst *Frame) {
	pos, vel := dst.Positions, dst.Velocities
	*dst = f
	dst.Positions = append(pos[:0], f.Positions...)
	dst.Velocities = append(vel[:0], f.Velocities...)
}

func (f Frame) Store() *Store {
	return &Store{N: f.N, Pos: f.Positions, Vel: f.Velocities}
}
