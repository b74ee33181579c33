package visualizer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mpeula/musicvid.org/particles"
	"github.com/mpeula/musicvid.org/renderer"
	"github.com/mpeula/musicvid.org/telemetry"
)

// Count and size steps for keyboard control
const (
	countStep = 100
	sizeStep  = 0.1
	zoomStep  = 0.1
)

// palette is cycled with the C key.
var palette = []particles.Color{
	particles.White,
	{R: 1, G: 0.55, B: 0.2},
	{R: 0.35, G: 0.7, B: 1},
	{R: 0.9, G: 0.3, B: 0.8},
	{R: 0.4, G: 1, B: 0.6},
}

// graphics is the raylib presentation state, created on first Update.
type graphics struct {
	points  *renderer.PointRenderer
	palette int
}

func (g *graphics) unload() {
	g.points.Unload()
}

func (v *Visualizer) ensureGraphics() *graphics {
	if v.graphics == nil {
		v.graphics = &graphics{
			points: renderer.NewPointRenderer(v.cam, v.cfg.Render.PointScale, v.cfg.Render.Texture),
		}
	}
	return v.graphics
}

// Update handles input and runs StepsPerUpdate ticks. It opens the frame's
// perf sample; Draw closes it. Requires a raylib window.
func (v *Visualizer) Update() {
	v.ensureGraphics()
	v.perf.StartTick()
	v.handleInput()
	v.advance()
}

// handleInput processes keyboard and mouse input.
func (v *Visualizer) handleInput() {
	if rl.IsWindowResized() {
		v.cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < 10 {
		v.stepsPerUpdate++
	}

	// Particle count with up/down
	if rl.IsKeyPressed(rl.KeyUp) {
		v.Resize(v.field.Count() + countStep)
	}
	if rl.IsKeyPressed(rl.KeyDown) && v.field.Count() > countStep {
		v.Resize(v.field.Count() - countStep)
	}

	// Size multiplier with left/right
	if rl.IsKeyPressed(rl.KeyRight) {
		v.SetSizeMultiplier(v.field.SizeMultiplier() + sizeStep)
	}
	if rl.IsKeyPressed(rl.KeyLeft) && v.field.SizeMultiplier() > sizeStep {
		v.SetSizeMultiplier(v.field.SizeMultiplier() - sizeStep)
	}

	if rl.IsKeyPressed(rl.KeyC) {
		g := v.graphics
		g.palette = (g.palette + 1) % len(palette)
		v.Recolor(palette[g.palette])
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.SetZoom(v.cam.Zoom * (1 + wheel*zoomStep))
	}
}

// Draw renders the current buffer and HUD, closing the frame's perf sample.
func (v *Visualizer) Draw() {
	g := v.ensureGraphics()
	v.perf.StartPhase(telemetry.PhaseDraw)

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(v.cfg.Render.Background.RGBA8(1)))

	g.points.Draw(v.field.View(), v.tint(rl.GetFrameTime()))

	// Draw HUD
	rl.DrawText(fmt.Sprintf("Tick: %d", v.tick), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Particles: %d  Size: %.1fx", v.field.Count(), v.field.SizeMultiplier()), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Impact: %.2f", v.multiplier), 10, 60, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]", v.stepsPerUpdate), 10, 85, 20, rl.White)
	if v.paused {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}

	rl.EndDrawing()

	v.perf.EndTick()
	v.perf.RecordFrame()
}
