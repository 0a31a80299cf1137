package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/inkclock/particles"
)

// guard runs fn, turning a panic into an error so one bad entity cannot take
// down the frame.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// retire releases a handle back to the pool. A stale handle means the
// bookkeeping is off somewhere; it is logged, not fatal.
func (g *Game) retire(h particles.Handle) {
	if err := g.pool.Release(h); err != nil {
		slog.Warn("release_failed", "kind", h.Kind().String(), "error", err)
	}
}

// removeBroken drops an entity whose update failed.
func (g *Game) removeBroken(h particles.Handle, err error) {
	g.collector.RecordEntityError()
	slog.Error("entity_removed", "kind", h.Kind().String(), "frame", g.frameCount, "error", err)
	g.retire(h)
}

// resetHour wipes the hour's residue: history and trail are cleared, every
// drop and drip goes back to the pool, chime patterns end and the fluid calms.
func (g *Game) resetHour() {
	g.layers.ResetHour()

	drops := g.pool.ReleaseAll(particles.KindDrop)
	drips := g.pool.ReleaseAll(particles.KindDrip)
	clear(g.drops)
	clear(g.drips)
	clear(g.pendingDrops)
	clear(g.pendingDrips)
	g.drops = g.drops[:0]
	g.drips = g.drips[:0]
	g.pendingDrops = g.pendingDrops[:0]
	g.pendingDrips = g.pendingDrips[:0]
	g.patterns = nil

	g.field.SetTurbulence(0)
	g.collector.RecordHourReset()

	slog.Info("hour_reset",
		"clock", g.scheduler.Now().String(),
		"released_drops", drops,
		"released_drips", drips,
	)
}
