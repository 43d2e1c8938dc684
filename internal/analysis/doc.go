// Package analysis compares simulated speed distributions with theory.
//
//   - [SpeedHistogram]: fixed-width speed bins over a velocity buffer
//   - [MaxwellBoltzmann]: the 2-D equilibrium speed density for a given
//     initial speed
//   - [Distance]: L1 distance between a histogram and the density
//   - [PowerSpectrum]: spectrum of a per-tick series such as collisions
//   - [VelocityPortrait]: vx/vy scatter of the particles as ASCII
//
// # Equilibrium
//
// Every particle starts with the same speed S. Elastic collisions relax the
// speeds towards the 2-D Maxwell-Boltzmann density a v exp(-a v^2/2) with
// a = 2/S^2, which keeps the mean square speed at S^2:
//
//	h := analysis.SpeedHistogram(frame.Velocities, 333, 32)
//	d := analysis.Distance(h, 500)
package analysis
