package physics

// Elastic returns the post-collision velocities of two equal-mass particles
// colliding along the line between their centres. The caller must ensure
// p1 != p2.
func Elastic(p1, p2, v1, v2 Vec2) (Vec2, Vec2) {
	d := p1.Sub(p2)
	k := v1.Sub(v2).Dot(d) / d.Dot(d)
	return v1.Sub(d.Scale(k)), v2.Add(d.Scale(k))
}

// Collide scans lanes i+1..n-1 for particles overlapping lane i and resolves
// at most one collision through the claim counters. It reports whether lane
// i won a pair.
//
// Both velocities are read before either is written. Pairs whose centres
// coincide exactly have no collision normal and are skipped without taking
// a claim.
func Collide(pos, vel []float64, claims *Claims, i, n int, radius float64) bool {
	contact := 2 * radius
	contact2 := contact * contact
	p1 := At(pos, i)

	for j := i + 1; j < n; j++ {
		p2 := At(pos, j)
		d := p1.Sub(p2)
		dist2 := d.Dot(d)
		if dist2 >= contact2 || dist2 == 0 {
			continue
		}

		s, o := claims.Acquire(i, j)
		if s == 0 && o == 0 {
			v1, v2 := Elastic(p1, p2, At(vel, i), At(vel, j))
			Put(vel, i, v1)
			Put(vel, j, v2)
			return true
		}

		claims.Release(i, j)
		if s != 0 {
			// someone else already resolved lane i this tick
			return false
		}
	}
	return false
}
