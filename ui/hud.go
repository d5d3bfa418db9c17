package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pthm-cable/eddy/fluid"
	"github.com/pthm-cable/eddy/systems"
	"github.com/pthm-cable/eddy/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Tick         int32
	SimTime      float64
	FPS          int32
	Paused       bool
	GridW, GridH int
	Precision    int
	Transport    string
	Emitters     int
	Viewers      int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Grid: %dx%d @ %dpx | Transport: %s", data.GridW, data.GridH, data.Precision, data.Transport),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %.1fs | FPS: %d | Emitters: %d | Viewers: %d",
			data.Tick, data.SimTime, data.FPS, data.Emitters, data.Viewers),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsPanel renders the current field statistics.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new field statistics panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the panel and returns the Y position below it.
func (s *StatsPanel) Draw(stats fluid.Stats, maxColor rl.Color) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*9 + padding*2

	r.DrawPanel(s.x, s.y, s.width, height)
	x := s.x + padding
	y := s.y + padding
	inner := s.width - padding*2

	y = r.DrawSectionHeader(x, y, "Density")
	y = r.DrawLabelValue(x, y, "Total", fmt.Sprintf("%.2f", stats.TotalDensity))
	y = r.DrawBar(x, y, "Mean", stats.MeanDensity, 1, inner)
	y = r.DrawBar(x, y, "Max", stats.MaxDensity, 1, inner)
	y = r.DrawColorSwatch(x, y, "Max colour", maxColor)

	y = r.DrawSectionHeader(x, y, "Flow")
	y = r.DrawLabelValue(x, y, "Max speed", fmt.Sprintf("%.3f", stats.MaxSpeed))
	r.DrawLabelValue(x, y, "Divergence", fmt.Sprintf("%.4f", stats.DivergenceNorm))

	return s.y + height
}

// PerfPanel renders the tick phase timings.
type PerfPanel struct {
	renderer *Renderer
	registry *systems.SystemRegistry
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32, registry *systems.SystemRegistry) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: registry,
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel with phases in registry order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s | %.0f ticks/s", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, info := range p.registry.All() {
		avg, ok := stats.PhaseAvg[info.ID]
		if !ok {
			continue
		}
		pct := stats.PhasePct[info.ID]

		color := rl.LightGray
		if pct > 20 {
			color = rl.Red
		} else if pct > 10 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", p.registry.GetName(info.ID), avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
