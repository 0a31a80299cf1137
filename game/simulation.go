package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/inkclock/palette"
	"github.com/pthm-cable/inkclock/particles"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
	"github.com/pthm-cable/inkclock/telemetry"
)

// Step runs one frame. Only compositor failures are returned; entity failures
// remove the entity and are logged.
func (g *Game) Step() error {
	g.perf.RecordFrame()
	g.perf.BeginStep()
	running := !g.paused

	if running {
		g.perf.StartPhase(telemetry.PhaseSchedule)
		g.scheduler.Tick(g.dt)
		for _, ev := range g.scheduler.Drain() {
			g.handleEvent(ev)
		}

		g.perf.StartPhase(telemetry.PhaseTurbulence)
		g.field.DecayTurbulence()
		g.audio.SetTurbulence(g.field.TurbulenceLevel())

		g.perf.StartPhase(telemetry.PhaseField)
		g.field.Update()

		g.perf.StartPhase(telemetry.PhaseSun)
		g.sun.SetTint(palette.SunTint(g.scheduler.Now().Hour))
		g.sun.Update(float64(g.scheduler.Now().Minute))
	}

	g.perf.StartPhase(telemetry.PhaseEffects)
	g.layers.ClearEffects()
	g.updatePatterns(running)

	g.perf.StartPhase(telemetry.PhaseParticles)
	if running {
		g.layers.FadeTrail(renderer.FadeAlpha(g.cfg.Trail.FadeAlpha, g.field.TurbulenceLevel(), g.cfg.Trail.TurbulenceHold))
	}
	g.layers.ClearActive()
	g.updateDrops(running)
	g.updateDrips(running)
	g.admitPending()
	if running {
		g.sun.DisplayTrail(g.layers.Trail())
	}
	g.sun.Display(g.layers.Active())

	g.perf.StartPhase(telemetry.PhaseComposite)
	if err := g.layers.Composite(g.frame); err != nil {
		g.perf.EndStep()
		return fmt.Errorf("frame %d: %w", g.frameCount, err)
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	if running {
		g.frameCount++
		g.flushTelemetry()
		g.saveSnapshot()
	}
	g.perf.EndStep()
	return nil
}

// handleEvent turns one clock event into spawns.
func (g *Game) handleEvent(ev systems.Event) {
	w, h := float64(g.width), float64(g.height)
	var err error
	switch ev.Kind {
	case systems.EventHourComplete:
		g.resetHour()
	case systems.EventHour:
		_, err = g.spawnDrop(particles.DropHour, w/2, h/2, systems.Vec2{})
	case systems.EventMinute:
		_, err = g.spawnDrop(particles.DropMinute, g.sun.Position().X, g.rng.Float64()*h, systems.Vec2{})
	case systems.EventChime:
		if err = g.spawnCymatic(ev.Minute); err == nil {
			_, err = g.spawnDrop(particles.DropChime, w/2, h/2, systems.Vec2{})
		}
	case systems.EventSecond:
		_, err = g.spawnDrop(particles.DropSecond, g.rng.Float64()*w, g.rng.Float64()*h, systems.Vec2{})
	}
	if err != nil {
		slog.Warn("event_dropped", "event", ev.Kind.String(), "clock", ev.ClockTime.String(), "error", err)
	}
}

// updatePatterns advances chime patterns, feeds their rings to the field
// (applied on the next field update) and draws them on the effects layer.
func (g *Game) updatePatterns(running bool) {
	effects := g.layers.Effects()
	kept := g.patterns[:0]
	for _, p := range g.patterns {
		if running {
			g.field.ApplyRadialImpulses(p.Update())
		}
		if p.Complete() {
			continue
		}
		p.Render(effects)
		kept = append(kept, p)
	}
	clear(g.patterns[len(kept):])
	g.patterns = kept
}

// updateDrops runs the drop update template, stamps finished drops into
// history and returns dead ones to the pool.
func (g *Game) updateDrops(running bool) {
	active, trail, history := g.layers.Active(), g.layers.Trail(), g.layers.History()
	kept := g.drops[:0]
	for _, ld := range g.drops {
		d := ld.drop
		err := guard(func() {
			if running {
				d.Update()
				if d.Stamp(history) {
					g.collector.RecordStamp()
				}
			}
			if !d.IsDead() {
				if running {
					d.DisplayTrail(trail)
				}
				d.Display(active)
			}
		})
		if err != nil {
			g.removeBroken(ld.handle, err)
			continue
		}
		if d.IsDead() {
			g.retire(ld.handle)
			continue
		}
		kept = append(kept, ld)
	}
	clear(g.drops[len(kept):])
	g.drops = kept
}

// updateDrips mirrors updateDrops for drips.
func (g *Game) updateDrips(running bool) {
	active, trail, history := g.layers.Active(), g.layers.Trail(), g.layers.History()
	kept := g.drips[:0]
	for _, ld := range g.drips {
		d := ld.drip
		err := guard(func() {
			if running {
				d.Update()
				if d.Stamp(history) {
					g.collector.RecordStamp()
				}
			}
			if !d.IsDead() {
				if running {
					d.DisplayTrail(trail)
				}
				d.Display(active)
			}
		})
		if err != nil {
			g.removeBroken(ld.handle, err)
			continue
		}
		if d.IsDead() {
			g.retire(ld.handle)
			continue
		}
		kept = append(kept, ld)
	}
	clear(g.drips[len(kept):])
	g.drips = kept
}

// admitPending draws this frame's spawns once where they appeared and moves
// them to the active lists. Their first update happens next frame.
func (g *Game) admitPending() {
	active := g.layers.Active()
	for _, ld := range g.pendingDrops {
		if err := guard(func() { ld.drop.Display(active) }); err != nil {
			g.removeBroken(ld.handle, err)
			continue
		}
		g.drops = append(g.drops, ld)
	}
	for _, ld := range g.pendingDrips {
		if err := guard(func() { ld.drip.Display(active) }); err != nil {
			g.removeBroken(ld.handle, err)
			continue
		}
		g.drips = append(g.drips, ld)
	}
	clear(g.pendingDrops)
	clear(g.pendingDrips)
	g.pendingDrops = g.pendingDrops[:0]
	g.pendingDrips = g.pendingDrips[:0]
}
