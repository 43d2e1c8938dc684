// Package export renders stored runs as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#000000"/>
`

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.Width) * scale * 2)
	height := int(float64(canvas.Height) * scale * 4)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString("<g fill=\"#ffffff\">\n")

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ParticlesCanvasSVG plots s on a braille canvas of width x height cells,
// as the live view shows it, and renders the canvas at scale.
func ParticlesCanvasSVG(s *particle.Store, bounds float64, width, height int, scale float64) string {
	if s == nil || bounds <= 0 || width <= 0 || height <= 0 {
		return ""
	}
	c := viz.NewCanvas(width, height)
	c.PlotParticles(s.Pos[:2*s.N], bounds)
	return CanvasToSVG(c, scale)
}

// ParticlesSVG draws every particle of s as a one pixel square in a
// size x size box, y up.
func ParticlesSVG(s *particle.Store, bounds float64, size int) string {
	if s == nil || bounds <= 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, size, size, size, size)
	sb.WriteString("<g fill=\"#ffffff\">\n")

	scale := float64(size) / bounds
	for i := 0; i < s.N; i++ {
		x := s.Pos[2*i] * scale
		y := float64(size) - s.Pos[2*i+1]*scale
		fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"1\" height=\"1\"/>\n", x, y)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// HistogramSVG draws the speed histogram as white bars with the
// Maxwell-Boltzmann density for speed as a red path on top. The x axis
// covers 2.4 times speed.
func HistogramSVG(h analysis.Histogram, speed float64, width, height int) string {
	if speed <= 0 || len(h.Counts) == 0 {
		return ""
	}

	pxPerSpeed := float64(width) / (2.4 * speed)
	// puts the curve peak near 70% of the height
	densityScale := float64(height) * 0.8 * speed

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	sb.WriteString("<g fill=\"#ffffff\">\n")

	barW := h.Width * pxPerSpeed
	for i, d := range h.Density() {
		x := float64(i) * barW
		if x >= float64(width) {
			break
		}
		if d == 0 {
			continue
		}
		bh := d * densityScale
		fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\"/>\n",
			x, float64(height)-bh, barW, bh)
	}
	sb.WriteString("</g>\n")

	mb := analysis.NewMaxwellBoltzmann(speed)
	vs, ds := mb.Curve(width, float64(width)/pxPerSpeed)
	sb.WriteString("<path fill=\"none\" stroke=\"#ff0000\" stroke-width=\"3\" d=\"M")
	for i := range vs {
		x := vs[i] * pxPerSpeed
		y := float64(height) - ds[i]*densityScale
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}
