// Package viz renders a running simulation in the terminal with Bubble Tea.
//
//   - [Live]: a sim.Presenter feeding frames into the UI
//   - [Canvas]: braille dot canvas for the particle box
//   - [HistogramChart]: speed histogram against the Maxwell-Boltzmann curve
//
// The driver and the UI run on different goroutines. Present copies each
// forwarded frame into a pooled buffer, and the UI returns the buffer when
// the next frame arrives.
//
// # Key Bindings
//
//	Space - Pause/Resume the driver
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit and halt the run
package viz
