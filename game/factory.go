package game

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/inkclock/particles"
	"github.com/pthm-cable/inkclock/systems"
	"github.com/pthm-cable/inkclock/telemetry"
)

// pointerVelocityScale converts the last drag delta (px/frame) into a
// launch velocity for pointer-spawned drops.
const pointerVelocityScale = 0.25

// maxLaunchSpeed caps pointer launch velocity.
const maxLaunchSpeed = 6.0

// newPool builds the drop/drip pool against the game's env.
func (g *Game) newPool() (*particles.Pool, error) {
	// A probe catches a bad env here so the factories below cannot fail.
	if _, err := particles.NewBlankInkDrop(g.env); err != nil {
		return nil, err
	}
	env := g.env
	return particles.NewPool(
		map[particles.Kind]int{
			particles.KindDrop: g.cfg.Pool.Drops,
			particles.KindDrip: g.cfg.Pool.Drips,
		},
		map[particles.Kind]func() particles.Poolable{
			particles.KindDrop: func() particles.Poolable {
				d, _ := particles.NewBlankInkDrop(env)
				return d
			},
			particles.KindDrip: func() particles.Poolable {
				d, _ := particles.NewBlankInkDrip(env)
				return d
			},
		},
	)
}

// acquire takes a particle from the pool, counting fresh allocations.
func (g *Game) acquire(kind particles.Kind, x, y float64, params particles.SpawnParams) (particles.Handle, particles.Poolable, error) {
	misses := g.pool.Stats(kind).Misses
	h, obj, err := g.pool.Acquire(kind, x, y, params)
	if g.pool.Stats(kind).Misses > misses {
		g.collector.RecordPoolMiss()
	}
	return h, obj, err
}

// spawnDrop queues a drop of type t at (x, y). It joins the active list at the
// end of the frame, after being drawn once where it spawned.
func (g *Game) spawnDrop(t particles.DropType, x, y float64, vel systems.Vec2) (*particles.InkDrop, error) {
	now := g.scheduler.Now()
	c := g.colors.Color(now.Minute, now.Hour, g.field.TurbulenceLevel())
	if t == particles.DropChime {
		if cc, ok := g.colors.(chimeColorer); ok {
			c = cc.ChimeColor(now.Minute)
		}
	}

	h, obj, err := g.acquire(particles.KindDrop, x, y, particles.SpawnParams{Color: c, Type: t, Velocity: vel})
	if err != nil {
		g.collector.RecordEntityError()
		slog.Warn("spawn_failed", "type", t.String(), "error", err)
		return nil, fmt.Errorf("spawn %s drop: %w", t, err)
	}
	d := obj.(*particles.InkDrop)
	g.pendingDrops = append(g.pendingDrops, liveDrop{handle: h, drop: d})
	g.collector.RecordSpawn(spawnKind(t))
	g.audio.PlaySpawn(x, now.Minute)
	return d, nil
}

func spawnKind(t particles.DropType) int {
	switch t {
	case particles.DropMinute:
		return telemetry.SpawnMinute
	case particles.DropHour:
		return telemetry.SpawnHour
	case particles.DropChime:
		return telemetry.SpawnChime
	default:
		return telemetry.SpawnSecond
	}
}

// SpawnDrip hands a pooled drip to a dripping drop. The drip starts at the
// parent's position and is queued like any other spawn.
func (g *Game) SpawnDrip(parent *particles.InkDrop) *particles.InkDrip {
	pos := parent.Position()
	params := particles.SpawnParams{
		Color:      parent.Color(),
		Parent:     parent,
		ParentSize: parent.Size(),
	}
	h, obj, err := g.acquire(particles.KindDrip, pos.X, pos.Y, params)
	if err != nil {
		g.collector.RecordEntityError()
		slog.Warn("spawn_failed", "type", "drip", "error", err)
		return nil
	}
	d := obj.(*particles.InkDrip)
	g.pendingDrips = append(g.pendingDrips, liveDrip{handle: h, drip: d})
	g.collector.RecordDripSpawn()
	return d
}

// spawnCymatic starts a chime pattern at the canvas center.
func (g *Game) spawnCymatic(minute int) error {
	c := g.colors.Color(minute, g.scheduler.Now().Hour, g.field.TurbulenceLevel())
	if cc, ok := g.colors.(chimeColorer); ok {
		c = cc.ChimeColor(minute)
	}
	w, h := float64(g.width), float64(g.height)
	p, err := particles.NewCymaticPattern(w/2, h/2, minute, math.Min(w, h), g.cfg.Chime, c)
	if err != nil {
		return fmt.Errorf("spawn chime: %w", err)
	}
	g.patterns = append(g.patterns, p)
	g.collector.RecordChime()
	return nil
}
