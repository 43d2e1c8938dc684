package physics

import "math"

// Wall reflects lane i off the walls of the [0, bounds]^2 box.
//
// A component is forced to point inward when the particle lies within radius
// of a wall; the magnitude is kept. Both axes are handled independently so a
// particle in a corner may flip twice. Positions are not corrected.
func Wall(pos, vel []float64, i int, radius, bounds float64) {
	x, y := pos[2*i], pos[2*i+1]
	vx, vy := vel[2*i], vel[2*i+1]

	if x > bounds-radius {
		vx = -math.Abs(vx)
	}
	if x < radius {
		vx = math.Abs(vx)
	}
	if y > bounds-radius {
		vy = -math.Abs(vy)
	}
	if y < radius {
		vy = math.Abs(vy)
	}

	vel[2*i] = vx
	vel[2*i+1] = vy
}
