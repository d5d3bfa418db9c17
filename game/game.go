// Package game wires the fluid, its input systems and telemetry into a
// frame loop, with or without a window.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/eddy/camera"
	"github.com/pthm-cable/eddy/config"
	"github.com/pthm-cable/eddy/fluid"
	"github.com/pthm-cable/eddy/renderer"
	"github.com/pthm-cable/eddy/stream"
	"github.com/pthm-cable/eddy/systems"
	"github.com/pthm-cable/eddy/telemetry"
	"github.com/pthm-cable/eddy/ui"
)

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed           int64   // Seed for the randomized initial density
	Headless       bool    // No raylib calls at all
	LogStats       bool    // Log each stats window via slog
	StatsWindowSec float64 // Stats window length in sim seconds (0 = config)
	OutputDir      string  // Directory for CSV output (empty = disabled)
	StreamAddr     string  // Websocket listen address (empty = disabled)
	SnapshotDir    string  // Directory for bookmark snapshots (empty = disabled)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	opts Options

	fluid    *fluid.Fluid
	world    *ecs.World
	cam      *camera.Camera
	brush    *systems.Brush
	emitters *systems.EmitterSystem
	registry *systems.SystemRegistry

	cmap    *renderer.Colormap
	raster  *renderer.Raster
	density *renderer.DensityRenderer

	theme         ui.Theme
	overlays      *ui.OverlayRegistry
	hud           *ui.HUD
	statsPanel    *ui.StatsPanel
	perfPanel     *ui.PerfPanel
	controlsPanel *ui.ControlsPanel

	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector
	statsCallback func(telemetry.WindowStats)

	hub          *stream.Hub
	stopStream   context.CancelFunc
	streamDone   chan struct{}
	frameCounter int

	pointer    systems.Pointer
	middleHeld bool
	tick       int32
	paused     bool
}

// NewGame builds a game from cfg. cfg must already be finalized.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	transport, err := fluid.ParseTransport(cfg.Fluid.Transport)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:           cfg,
		opts:          opts,
		registry:      systems.NewSystemRegistry(),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}

	g.fluid, err = fluid.New(
		cfg.Derived.GridW, cfg.Derived.GridH,
		cfg.Fluid.StartDensity, cfg.Fluid.DiffusionRate,
		fluid.WithTransport(transport),
		fluid.WithPressureIterations(cfg.Fluid.PressureIterations),
		fluid.WithDiffusionIterations(cfg.Fluid.DiffusionIterations),
		fluid.WithPhaseHook(func(p fluid.Phase) { g.perfCollector.StartPhase(p.String()) }),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fluid: %w", err)
	}
	if cfg.Init.Randomize {
		g.fluid.RandomizeDensity(opts.Seed, cfg.Init.Smoothing)
	}

	g.cam = camera.New(cfg.Brush.Precision, cfg.Derived.GridW, cfg.Derived.GridH)
	g.brush = systems.NewBrush(g.cam, cfg.Brush.Radius, cfg.Brush.DensityRate, cfg.Brush.VelocityScale)
	g.world = ecs.NewWorld()
	g.emitters = systems.NewEmitterSystem(g.world)

	g.cmap, err = renderer.NewColormap(cfg.Display.Palette, cfg.Derived.MaxColor, cfg.Display.Inverse)
	if err != nil {
		return nil, err
	}
	g.raster = renderer.NewRaster(cfg.Derived.GridW, cfg.Derived.GridH, cfg.Brush.Precision)

	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(windowSec)
	g.bookmarks = telemetry.NewBookmarkDetector(10)
	g.collector.Begin(g.fluid.Stats().TotalDensity)

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.outputManager.Close()
		return nil, err
	}

	if !opts.Headless {
		g.density = renderer.NewDensityRenderer(g.raster, g.cmap)
		g.theme = ui.DefaultTheme()
		g.overlays = ui.NewOverlayRegistry()
		g.hud = ui.NewHUD()
		g.statsPanel = ui.NewStatsPanel(int32(cfg.Screen.Width)-230, 10, 220)
		g.perfPanel = ui.NewPerfPanel(10, 100, g.registry)
		g.controlsPanel = ui.NewControlsPanel(int32(cfg.Screen.Width)-230, 200, 220)
	}

	if opts.StreamAddr != "" {
		g.startStream(opts.StreamAddr)
	}

	slog.Info("game created",
		"grid_w", cfg.Derived.GridW,
		"grid_h", cfg.Derived.GridH,
		"transport", transport.String(),
		"headless", opts.Headless,
	)
	return g, nil
}

func (g *Game) startStream(addr string) {
	ctx, cancel := context.WithCancel(context.Background())
	g.hub = stream.NewHub()
	g.stopStream = cancel
	g.streamDone = make(chan struct{})
	go func() {
		defer close(g.streamDone)
		if err := g.hub.Serve(ctx, addr); err != nil {
			slog.Error("stream server stopped", "error", err)
		}
	}()
}

// SetPointer sets the pointer sample used by the next update. A pointer
// outside the grid resets the brush, so re-entering does not register as
// one long stroke.
func (g *Game) SetPointer(p systems.Pointer) {
	g.pointer = p
	if !g.cam.InGrid(g.cam.ScreenToGrid(p.X, p.Y)) {
		g.brush.Reset()
	}
}

// SetStatsCallback registers fn to receive every flushed stats window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// UpdateHeadless advances the simulation by dt without touching raylib.
// dt is clamped to fluid.max_dt like a graphical frame; dt <= 0 is a no-op.
func (g *Game) UpdateHeadless(dt float64) {
	if g.paused || dt <= 0 {
		return
	}
	g.step(math.Min(dt, g.cfg.Fluid.MaxDT))
}

// step runs one tick: pointer and emitter injection, the fluid step, then
// telemetry.
func (g *Game) step(dt float64) {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseInput)
	brushCells := g.brush.Apply(g.fluid, g.pointer, dt)
	if g.pointer.Middle && !g.middleHeld {
		g.placeEmitter()
	}
	g.middleHeld = g.pointer.Middle

	g.perfCollector.StartPhase(telemetry.PhaseEmitters)
	emitterCells := g.emitters.Update(g.fluid, dt)

	g.fluid.Step(dt)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.collector.RecordTick(dt, brushCells, emitterCells)
	g.flushTelemetry()
	g.broadcastFrame()

	g.perfCollector.EndTick()
}

// placeEmitter drops a permanent emitter under the pointer carrying the
// current pointer velocity.
func (g *Game) placeEmitter() {
	gx, gy := g.cam.ScreenToGrid(g.pointer.X, g.pointer.Y)
	if !g.cam.IsInteriorTarget(gx, gy) {
		return
	}
	g.emitters.Spawn(float32(gx), float32(gy), emitterFromBrush(g.brush, g.cam))
	slog.Debug("emitter placed", "x", gx, "y", gy, "count", g.emitters.Count())
}

// Reset restores the initial field and removes all emitters.
func (g *Game) Reset() {
	g.fluid.Reset()
	if g.cfg.Init.Randomize {
		g.fluid.RandomizeDensity(g.opts.Seed, g.cfg.Init.Smoothing)
	}
	g.emitters.Clear()
	g.brush.Reset()
	g.collector.Reset()
	g.collector.Begin(g.fluid.Stats().TotalDensity)
}

// TogglePause flips the paused state and returns the new value.
func (g *Game) TogglePause() bool {
	g.paused = !g.paused
	return g.paused
}

// Fluid returns the simulated fluid.
func (g *Game) Fluid() *fluid.Fluid { return g.fluid }

// Emitters returns the emitter system.
func (g *Game) Emitters() *systems.EmitterSystem { return g.emitters }

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 { return g.tick }

// Paused reports whether updates are suspended.
func (g *Game) Paused() bool { return g.paused }

// PerfStats returns the rolling tick timings.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// Unload releases GPU resources, stops the stream server and closes output
// files.
func (g *Game) Unload() {
	if g.density != nil {
		g.density.Unload()
	}
	if g.stopStream != nil {
		g.stopStream()
		<-g.streamDone
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
