package game

import (
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eddy/systems"
)

// Update polls input and advances the simulation by one frame.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()

	if g.paused {
		return
	}
	dt := math.Min(float64(rl.GetFrameTime()), g.cfg.Fluid.MaxDT)
	if dt <= 0 {
		return
	}
	g.step(dt)
}

// handleInput samples the pointer and processes keyboard input.
func (g *Game) handleInput() {
	mouse := rl.GetMousePosition()
	g.SetPointer(systems.Pointer{
		X:      mouse.X,
		Y:      mouse.Y,
		Left:   rl.IsMouseButtonDown(rl.MouseButtonLeft),
		Right:  rl.IsMouseButtonDown(rl.MouseButtonRight),
		Middle: rl.IsMouseButtonDown(rl.MouseButtonMiddle),
	})
	if !rl.IsCursorOnScreen() {
		g.brush.Reset()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.emitters.Clear()
	}
	if rl.IsKeyPressed(rl.KeyK) {
		dir := g.opts.SnapshotDir
		if dir == "" {
			dir = "snapshots"
		}
		if _, err := g.SaveSnapshot(dir, nil); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	g.handleOverlayKeys()
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}
}
