package gui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/mbsim/internal/particle"
)

func (a *App) drawParticles(f particle.Frame) {
	for i := 0; i < f.N; i++ {
		x, y := a.layout.Particle(f.Positions[2*i], f.Positions[2*i+1])
		rl.DrawPixelV(rl.NewVector2(x, y), ColParticle)
	}
	rl.DrawLine(int32(a.layout.Size), 0, int32(a.layout.Size), int32(a.layout.Size), ColTextDim)
}

func (a *App) drawHistogram() {
	for i, d := range a.hist.Density() {
		if d == 0 {
			continue
		}
		x, y, w, h := a.layout.Bar(a.hist, i, d)
		if x >= a.layout.Size+a.layout.HistWidth {
			break
		}
		rl.DrawRectangleV(rl.NewVector2(x, y), rl.NewVector2(w, h), ColBar)
	}
}

func (a *App) drawCurve() {
	if len(a.curveX) < 2 {
		return
	}
	for t := float32(-2); t <= 2; t++ {
		points := make([]rl.Vector2, len(a.curveX))
		for i := range a.curveX {
			points[i] = rl.NewVector2(a.curveX[i], a.curveY[i]+t)
		}
		rl.DrawLineStrip(points, ColCurve)
	}
}

func (a *App) drawHUD(f particle.Frame) {
	rl.DrawText(fmt.Sprintf("%d", f.Tick), 8, 8, 32, ColText)

	x := int32(a.layout.Size) + 16
	rl.DrawText(fmt.Sprintf("mean v^2  %.1f", f.MeanSq), x, 16, 20, ColText)
	rl.DrawText(fmt.Sprintf("collisions %d", f.Collisions), x, 40, 20, ColText)
	rl.DrawText(fmt.Sprintf("%s  %d FPS  %s", a.device, rl.GetFPS(), time.Since(a.start).Truncate(time.Second)), x, 64, 16, ColTextDim)
}

func (a *App) drawControls() {
	x := a.layout.Size + a.layout.HistWidth - 260
	label := "Pause"
	if a.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: 16, Width: 120, Height: 30}, label) {
		a.paused = !a.paused
	}
	if gui.Button(rl.Rectangle{X: x + 130, Y: 16, Width: 120, Height: 30}, "Skip") {
		a.skip = true
		a.paused = false
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}
}
