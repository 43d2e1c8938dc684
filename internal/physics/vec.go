package physics

import "math"

// Vec2 is a 2-D vector in simulation units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2   { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64     { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64           { return math.Sqrt(v.Dot(v)) }
func (v Vec2) IsValid() bool          { return !math.IsNaN(v.X+v.Y) && !math.IsInf(v.X+v.Y, 0) }
func (v Vec2) Near(o Vec2, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol
}

// At reads lane i from an interleaved buffer.
func At(buf []float64, i int) Vec2 {
	return Vec2{buf[2*i], buf[2*i+1]}
}

// Put writes lane i of an interleaved buffer.
func Put(buf []float64, i int, v Vec2) {
	buf[2*i] = v.X
	buf[2*i+1] = v.Y
}
