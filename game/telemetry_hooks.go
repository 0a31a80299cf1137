package game

import (
	"log/slog"
)

// flushTelemetry samples this frame and flushes the stats window when due.
func (g *Game) flushTelemetry() {
	g.collector.SampleFrame(g.field.TurbulenceLevel(), len(g.drops))
	if !g.collector.ShouldFlush(g.frameCount) {
		return
	}

	stats := g.collector.Flush(g.frameCount, g.scheduler.Now().String(), len(g.drips))
	perfStats := g.perf.Stats()
	g.history.Add(stats)

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// saveSnapshot writes the composited frame when the snapshot interval is due.
func (g *Game) saveSnapshot() {
	if !g.snapshots.Due(g.frameCount) {
		return
	}
	path, err := g.snapshots.Save(g.frameCount, g.frame.Image())
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", g.frameCount, "clock", g.scheduler.Now().String())
}
