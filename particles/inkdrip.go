package particles

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

// InkDrip is a small gravity-driven trail running off a drop.
type InkDrip struct {
	Particle
	env *Env

	parent      *InkDrop
	color       colorful.Color
	startRadius float64
	radius      float64
	deathRadius float64
	parentDied  bool
	stamped     bool
}

// NewBlankInkDrip allocates a dead drip for the pool.
func NewBlankInkDrip(env *Env) (*InkDrip, error) {
	if err := env.prepare(); err != nil {
		return nil, err
	}
	d := &InkDrip{env: env}
	d.Init(d, env.Rand)
	d.Dead = true
	return d, nil
}

// OnReset binds the drip to its parent and sizes it from the parent.
func (d *InkDrip) OnReset(params SpawnParams) error {
	if !ValidColor(params.Color) {
		d.Dead = true
		return ErrInvalidColor
	}
	d.parent = params.Parent
	d.color = params.Color
	d.Vel = params.Velocity
	d.Lifespan = math.Inf(1)
	d.startRadius = params.ParentSize * d.env.Cfg.Drip.StartFraction
	d.radius = d.startRadius
	d.deathRadius = 0
	d.parentDied = false
	d.stamped = false
	return nil
}

// UpdatePhysics falls under gravity with a little flow and wobble. Leaving
// the bottom of the canvas kills the drip.
func (d *InkDrip) UpdatePhysics() {
	cfg := d.env.Cfg.Drip
	d.Acc = systems.Vec2{Y: cfg.Gravity}
	d.Acc = d.Acc.Add(d.env.Fluid.SampleAt(d.Pos.X, d.Pos.Y).Scale(cfg.FluidScale))
	d.Acc.X += (d.rng.Float64()*2 - 1) * cfg.Wobble

	d.Vel = d.Vel.Add(d.Acc).Limit(cfg.MaxSpeed)
	d.Pos = d.Pos.Add(d.Vel)
	d.Pos.X = systems.Wrap(d.Pos.X, d.env.Width)

	if d.Pos.Y > d.env.Height {
		d.deathRadius = d.radius
		d.Kill()
	}
}

// OnAfterUpdate shrinks the drip, twice as fast once the parent is gone.
func (d *InkDrip) OnAfterUpdate() {
	rate := d.env.Cfg.Drip.ShrinkRate
	if d.parentDied {
		rate *= 2
	}
	d.radius -= rate
	if d.radius <= 0 {
		d.radius = 0
		d.deathRadius = 0
		d.Kill()
	}
}

// MarkParentDied accelerates the fade. Only the current parent may call it.
func (d *InkDrip) MarkParentDied(parent *InkDrop) {
	if d.parent == parent && !d.Dead {
		d.parentDied = true
	}
}

// OnRecycle forgets the parent, which may itself be recycled.
func (d *InkDrip) OnRecycle() {
	d.parent = nil
	d.parentDied = false
	d.deathRadius = 0
}

// ShouldStamp is true once after death if the drip still had ink. A drip
// that shrank away leaves nothing.
func (d *InkDrip) ShouldStamp() bool {
	return d.Dead && !d.stamped && d.deathRadius > 0
}

// Stamp leaves a faint smaller residue mark on history.
func (d *InkDrip) Stamp(history renderer.Surface) bool {
	if !d.ShouldStamp() {
		return false
	}
	d.stamped = true
	cfg := d.env.Cfg
	residue := ResidueColor(d.color, cfg.Drop.ResidueDarken, cfg.Drop.ResidueDesat)
	r := d.deathRadius * cfg.Drip.ResidueScale
	y := math.Min(d.Pos.Y, d.env.Height-r)
	d.env.Stamp.Stamp(history, d.Pos.X, y, r, residue, cfg.Drip.ResidueAlpha)
	return true
}

// Display draws the drip as a short streak along its velocity.
func (d *InkDrip) Display(s renderer.Surface) {
	if d.radius <= 0 {
		return
	}
	c := renderer.Ink(d.color, d.env.Cfg.Drip.Opacity)
	tail := d.Pos.Sub(d.Vel.Scale(2))
	s.Line(tail.X, tail.Y, d.Pos.X, d.Pos.Y, d.radius*1.6, c)
	s.FillEllipse(d.Pos.X, d.Pos.Y, d.radius, d.radius, c)
}

// DisplayTrail leaves the running streak on the trail layer.
func (d *InkDrip) DisplayTrail(s renderer.Surface) {
	if d.radius <= 0 {
		return
	}
	r := d.radius * 0.6
	s.FillEllipse(d.Pos.X, d.Pos.Y, r, r, renderer.Ink(d.color, d.env.Cfg.Drip.Opacity*0.4))
}

func (d *InkDrip) Parent() *InkDrop      { return d.parent }
func (d *InkDrip) ParentDied() bool      { return d.parentDied }
func (d *InkDrip) Radius() float64       { return d.radius }
func (d *InkDrip) StartRadius() float64  { return d.startRadius }
func (d *InkDrip) Color() colorful.Color { return d.color }
