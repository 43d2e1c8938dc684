// Package compute provides the devices that run the simulation passes.
//
// Two devices are available:
//
//   - CPU: one goroutine lane group per core, a WaitGroup barrier per pass
//   - GL: OpenGL 4.3 compute shaders, usable inside a window that owns a GL
//     context (see the gui package)
//
// # Dispatch
//
// A tick issues the passes in a fixed order and each call returns only once
// every lane is done:
//
//	dev.Wall(radius, bounds)
//	collisions := dev.Collide(radius)
//	dev.Integrate(dt)
//	sumSq := dev.SumSq()
//	dev.Fetch(store)
//
// The pairwise pass has a triangular workload, so the CPU device hands lanes
// to workers in a strided order rather than contiguous chunks.
package compute
