package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/eddy/config"
	"github.com/pthm-cable/eddy/game"
	"github.com/pthm-cable/eddy/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	showSettings := flag.Bool("settings", false, "Show the settings window before launching")
	headless := flag.Bool("headless", false, "Run without graphics")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	dt := flag.Float64("dt", 1.0/60.0, "Seconds per tick in headless mode")
	seed := flag.Int64("seed", 0, "Noise seed for randomized density (0 = config, then time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshots (empty = disabled)")
	restore := flag.String("restore", "", "Snapshot file to restore before the first tick")
	streamAddr := flag.String("stream-addr", "", "Serve density frames over websocket at this address (e.g. :8080)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *showSettings && !*headless {
		s, ok := ui.NewSettingsPanel(cfg).Run()
		if !ok {
			return
		}
		if err := s.Apply(cfg); err != nil {
			slog.Error("invalid settings", "error", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Init.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		Headless:       *headless,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		StreamAddr:     *streamAddr,
		SnapshotDir:    *snapshotDir,
	}

	if *headless {
		if *dt <= 0 {
			slog.Error("-dt must be positive", "dt", *dt)
			os.Exit(1)
		}
		if *dt > cfg.Fluid.MaxDT {
			slog.Warn("-dt exceeds fluid.max_dt, ticks will be clamped", "dt", *dt, "max_dt", cfg.Fluid.MaxDT)
		}
		runHeadless(cfg, opts, *restore, *dt, *maxTicks)
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "eddy")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		return
	}
	defer g.Unload()

	if *restore != "" {
		if err := g.RestoreSnapshot(*restore); err != nil {
			slog.Error("failed to restore snapshot", "error", err)
			return
		}
	}

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}

// runHeadless steps the simulation at a fixed dt until max ticks or an
// interrupt.
func runHeadless(cfg *config.Config, opts game.Options, restore string, dt float64, maxTicks int) {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	if restore != "" {
		if err := g.RestoreSnapshot(restore); err != nil {
			slog.Error("failed to restore snapshot", "error", err)
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"dt", dt,
		"max_ticks", maxTicks,
		"stream", opts.StreamAddr,
	)

	for ctx.Err() == nil {
		g.UpdateHeadless(dt)

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
	slog.Info("interrupted", "tick", g.Tick())
}
