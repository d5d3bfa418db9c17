package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/eddy/stream"
	"github.com/pthm-cable/eddy/telemetry"
)

// flushTelemetry closes the stats window once it has covered its duration.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush() {
		return
	}

	stats := g.collector.Flush(g.tick, g.fluid.Stats(), g.fluid.DensityValues(), g.emitters.Count())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(stats) {
		if g.opts.LogStats {
			bm.LogBookmark()
		}
		if g.opts.SnapshotDir != "" {
			if _, err := g.SaveSnapshot(g.opts.SnapshotDir, &bm); err != nil {
				slog.Error("failed to save snapshot", "error", err)
			}
		}
	}
}

// SaveSnapshot writes the fluid and emitters to dir, tagged with bm when
// it is not nil. Returns the file path.
func (g *Game) SaveSnapshot(dir string, bm *telemetry.Bookmark) (string, error) {
	snapshot := telemetry.CaptureFluid(g.fluid)
	snapshot.Seed = g.opts.Seed
	snapshot.Tick = g.tick
	snapshot.SimTimeSec = g.collector.SimTime()
	snapshot.Bookmark = bm
	for _, em := range g.emitters.All() {
		snapshot.Emitters = append(snapshot.Emitters, telemetry.NewEmitterState(em.Position, em.Emitter))
	}

	path, err := telemetry.SaveSnapshot(snapshot, dir)
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
	return path, nil
}

// RestoreSnapshot loads a snapshot file and replaces the fluid fields and
// emitters with its contents. The tick counter continues from the
// snapshot's tick.
func (g *Game) RestoreSnapshot(path string) error {
	snapshot, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snapshot.Restore(g.fluid); err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}

	g.emitters.Clear()
	for _, es := range snapshot.Emitters {
		pos, em := es.Components()
		g.emitters.Spawn(pos.X, pos.Y, em)
	}
	g.tick = snapshot.Tick
	g.brush.Reset()
	g.collector.Reset()
	g.collector.Begin(g.fluid.Stats().TotalDensity)

	slog.Info("snapshot restored", "path", path, "tick", g.tick, "emitters", len(snapshot.Emitters))
	return nil
}

// broadcastFrame sends the density field to stream viewers every
// frame_interval ticks.
func (g *Game) broadcastFrame() {
	if g.hub == nil {
		return
	}
	g.frameCounter++
	if g.frameCounter < g.cfg.Stream.FrameInterval {
		return
	}
	g.frameCounter = 0
	if g.hub.Count() == 0 {
		return
	}
	g.hub.Broadcast(stream.EncodeFrame(g.fluid))
}
