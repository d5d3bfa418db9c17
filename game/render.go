package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eddy/ui"
)

const controlsLegend = "LMB: density | RMB: push | MMB: emitter | Space: pause | R: reset | C: clear emitters | K: snapshot | H/S/F/O/V/M/B: overlays"

// velocityStride is the spacing, in cells, between drawn velocity arrows.
const velocityStride = 4

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.density.Update(g.fluid)
	g.density.Draw()

	g.drawActiveOverlays()
	g.drawUI()

	rl.EndDrawing()
}

// drawActiveOverlays renders the enabled field overlays.
func (g *Game) drawActiveOverlays() {
	for _, id := range g.overlays.EnabledOverlays() {
		switch id {
		case ui.OverlayVelocity:
			g.drawVelocityField()
		case ui.OverlayEmitters:
			g.density.DrawEmitters(g.emitters.Positions())
		case ui.OverlayBrush:
			rl.DrawCircleLines(int32(g.pointer.X), int32(g.pointer.Y), float32(g.cfg.Brush.Radius), g.theme.BrushOutline)
		}
	}
}

// drawVelocityField draws one arrow every velocityStride cells, scaled so a
// speed of one cell per second spans one cell.
func (g *Game) drawVelocityField() {
	p := float32(g.cam.Precision)
	col := g.theme.VelocityArrow
	for x := 1; x < g.fluid.Width()-1; x += velocityStride {
		for y := 1; y < g.fluid.Height()-1; y += velocityStride {
			vx, vy := g.fluid.Velocity(x, y)
			if math.Abs(vx)+math.Abs(vy) < 1e-3 {
				continue
			}
			sx, sy := g.cam.GridToScreen(x, y)
			sx += p / 2
			sy += p / 2
			rl.DrawLineV(
				rl.Vector2{X: sx, Y: sy},
				rl.Vector2{X: sx + float32(vx)*p, Y: sy + float32(vy)*p},
				col,
			)
		}
	}
}

// drawUI renders the HUD and the enabled panels.
func (g *Game) drawUI() {
	// Panels hug the drawn field, which can be narrower than the window
	// when the screen size is not a multiple of the precision.
	screenW, screenH := int32(g.cam.ScreenW()), int32(g.cam.ScreenH())

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		viewers := 0
		if g.hub != nil {
			viewers = g.hub.Count()
		}
		g.hud.Draw(ui.HUDData{
			Title:     "eddy",
			Tick:      g.tick,
			SimTime:   g.collector.SimTime(),
			FPS:       rl.GetFPS(),
			Paused:    g.paused,
			GridW:     g.fluid.Width(),
			GridH:     g.fluid.Height(),
			Precision: g.cam.Precision,
			Transport: g.fluid.Transport().String(),
			Emitters:  g.emitters.Count(),
			Viewers:   viewers,
		})
		g.hud.DrawControls(screenW, screenH, controlsLegend)
	}

	panelY := int32(10)
	if g.overlays.IsEnabled(ui.OverlayStats) {
		g.statsPanel.SetPosition(screenW-230, panelY)
		panelY = g.statsPanel.Draw(g.fluid.Stats(), g.cfg.Derived.MaxColor) + 10
	}
	if g.overlays.IsEnabled(ui.OverlayOverlays) {
		g.controlsPanel.SetPosition(screenW-230, panelY)
		g.controlsPanel.Draw(g.overlays)
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}
}
