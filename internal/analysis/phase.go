package analysis

import (
	"math"
	"strings"
)

// VelocityPortrait renders the particles in velocity space (vx right, vy up)
// as ASCII. A fresh run draws a ring of radius S; at equilibrium the ring has
// filled into a Gaussian blob.
func VelocityPortrait(vel []float64, width, height int) string {
	n := len(vel) / 2
	if n == 0 || width < 3 || height < 3 {
		return ""
	}

	extent := 0.0
	for _, v := range vel {
		extent = math.Max(extent, math.Abs(v))
	}
	if extent == 0 {
		extent = 1
	}
	extent *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	mid := height / 2
	for col := 0; col < width; col++ {
		canvas[mid][col] = '─'
	}
	center := width / 2
	for row := 0; row < height; row++ {
		canvas[row][center] = '│'
	}
	canvas[mid][center] = '┼'

	for i := 0; i < n; i++ {
		vx, vy := vel[2*i], vel[2*i+1]
		col := int((vx/extent + 1) / 2 * float64(width-1))
		row := height - 1 - int((vy/extent+1)/2*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
