// Package physics provides the per-particle kernels of the collision
// simulation.
//
// Every kernel operates on a single lane (particle index) over interleaved
// x,y buffers and declares which buffers it reads and writes:
//
//   - [Wall]: reads positions, read-writes velocities of its own lane
//   - [Collide]: reads positions, read-writes velocities of claimed lanes,
//     read-writes the claim counters
//   - [Integrate]: reads velocities, read-writes positions of its own lane
//   - [SumSq]: reads velocities, produces a partial reduction
//
// Kernels never synchronise with each other; the dispatcher in the compute
// package runs each one across all lanes and waits before starting the next.
//
// # Claim Protocol
//
// [Collide] lets each particle take part in at most one resolved collision
// per tick. A lane that finds an overlapping partner increments both claim
// counters and only resolves the pair when both previous values were zero:
//
//	s, o := claims.Acquire(i, j)
//	if s == 0 && o == 0 {
//	    // resolve, both lanes stay claimed
//	}
//	claims.Release(i, j)
//
// Energy is only approximately conserved when several particles overlap in
// the same tick; the losing pairs are retried on a later tick.
package physics
