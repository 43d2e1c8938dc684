package physics

import "gonum.org/v1/gonum/floats"

// Integrate advances lane i by one explicit Euler step.
func Integrate(pos, vel []float64, i int, dt float64) {
	pos[2*i] += dt * vel[2*i]
	pos[2*i+1] += dt * vel[2*i+1]
}

// SumSq returns the sum of v.v over lanes [lo, hi).
func SumSq(vel []float64, lo, hi int) float64 {
	if hi <= lo {
		return 0
	}
	v := vel[2*lo : 2*hi]
	return floats.Dot(v, v)
}
