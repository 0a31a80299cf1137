package game

import (
	"math"

	"github.com/pthm-cable/inkclock/particles"
	"github.com/pthm-cable/inkclock/systems"
)

// PointerMove feeds a pointer drag into the fluid. Speed raises turbulence
// and pushes the field along the drag direction. Ignored while paused.
func (g *Game) PointerMove(x, y, dx, dy float64) {
	if g.paused {
		return
	}
	speed := math.Hypot(dx, dy)
	if !(speed > 0) || math.IsInf(speed, 0) {
		return
	}
	g.collector.RecordPointerEvent()
	g.lastDrag = systems.Vec2{X: dx, Y: dy}
	g.field.AddTurbulence(speed)
	dir := g.lastDrag.Scale(1 / speed)
	g.field.AddLocalImpulse(x, y, dir, speed*g.cfg.Fluid.DragForce)
}

// PointerPress drops a second-type ink drop at the pointer, thrown along the
// last drag. Ignored while paused.
func (g *Game) PointerPress(x, y float64) error {
	if g.paused {
		return nil
	}
	g.collector.RecordPointerEvent()
	vel := g.lastDrag.Scale(pointerVelocityScale).Limit(maxLaunchSpeed)
	_, err := g.spawnDrop(particles.DropSecond, x, y, vel)
	return err
}
