package particles

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

var (
	// ErrInvalidColor is returned for colors with NaN or out-of-range channels.
	ErrInvalidColor = errors.New("invalid color")
	// ErrUnknownDropType is returned for drop types missing from the table.
	ErrUnknownDropType = errors.New("unknown drop type")
)

// DropType selects a row of the drop table.
type DropType uint8

const (
	DropSecond DropType = iota
	DropMinute
	DropHour
	DropChime
	dropTypeCount
)

var dropTypeNames = [...]string{"second", "minute", "hour", "chime"}

func (t DropType) String() string {
	if t < dropTypeCount {
		return dropTypeNames[t]
	}
	return fmt.Sprintf("drop(%d)", uint8(t))
}

// ParseDropType maps a table name to its DropType.
func ParseDropType(name string) (DropType, error) {
	for i, n := range dropTypeNames {
		if strings.EqualFold(n, name) {
			return DropType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDropType, name)
}

// ValidColor reports whether every channel is a finite value in [0, 1].
func ValidColor(c colorful.Color) bool {
	for _, v := range [...]float64{c.R, c.G, c.B} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// FadeOpacity interpolates from initial to residue as age approaches lifespan,
// then holds at residue.
func FadeOpacity(initial, residue, age, lifespan float64) float64 {
	p := 0.0
	if lifespan > 0 && !math.IsInf(lifespan, 1) {
		p = systems.Clamp01(age / lifespan)
	} else if lifespan <= 0 {
		p = 1
	}
	return systems.Lerp(initial, residue, p)
}

// ResidueColor darkens and desaturates c while keeping its hue.
func ResidueColor(c colorful.Color, darken, desat float64) colorful.Color {
	h, s, l := c.Hsl()
	return colorful.Hsl(h, s*desat, l*darken).Clamped()
}

// InkDrop is one time-marker ink mark.
type InkDrop struct {
	Particle
	env *Env

	color      colorful.Color
	dropType   DropType
	typeCfg    config.DropTypeConfig
	targetSize float64
	size       float64
	birthScale float64
	opacity    float64
	splats     []renderer.Splat
	children   []*InkDrip
	dripTimer  int
	stamped    bool
}

// NewBlankInkDrop allocates a dead drop for the pool. It comes alive on Reset.
func NewBlankInkDrop(env *Env) (*InkDrop, error) {
	if err := env.prepare(); err != nil {
		return nil, err
	}
	d := &InkDrop{env: env}
	d.Init(d, env.Rand)
	d.Dead = true
	return d, nil
}

// NewInkDrop builds a live drop at (x, y).
func NewInkDrop(env *Env, x, y float64, c colorful.Color, t DropType, vel systems.Vec2) (*InkDrop, error) {
	d, err := NewBlankInkDrop(env)
	if err != nil {
		return nil, err
	}
	if err := d.Reset(x, y, SpawnParams{Color: c, Type: t, Velocity: vel}); err != nil {
		return nil, err
	}
	return d, nil
}

// OnReset restores drop fields from the spawn params.
func (d *InkDrop) OnReset(params SpawnParams) error {
	if !ValidColor(params.Color) {
		d.Dead = true
		return fmt.Errorf("ink drop: %w: %v", ErrInvalidColor, params.Color)
	}
	if params.Type >= dropTypeCount {
		d.Dead = true
		return fmt.Errorf("ink drop: %w: %v", ErrUnknownDropType, params.Type)
	}
	tc, ok := d.env.Cfg.DropType(params.Type.String())
	if !ok {
		d.Dead = true
		return fmt.Errorf("ink drop: %w: %v", ErrUnknownDropType, params.Type)
	}
	dc := d.env.Cfg.Drop

	d.color = params.Color
	d.dropType = params.Type
	d.typeCfg = tc
	d.Lifespan = tc.Lifespan
	d.Friction = dc.Damping
	d.Vel = params.Velocity
	d.targetSize = dc.BaseSize * tc.SizeMultiplier
	d.birthScale = dc.BirthStart
	d.size = d.targetSize * d.birthScale
	d.opacity = tc.Opacity
	d.splats = generateSplats(d.rng, d.env.Cfg.Splatter, params.Velocity, d.splats)
	d.children = d.children[:0]
	d.dripTimer = 0
	d.stamped = false
	return nil
}

func (d *InkDrop) birthDone() bool {
	return d.Age >= float64(d.env.Cfg.Drop.BirthFrames)
}

// OnBeforeUpdate advances the birth animation and timed dripping.
func (d *InkDrop) OnBeforeUpdate() {
	d.pruneChildren()

	frames := float64(d.env.Cfg.Drop.BirthFrames)
	if !d.birthDone() {
		start := d.env.Cfg.Drop.BirthStart
		d.birthScale = start + (1-start)*systems.EaseOutCubic((d.Age+d.DeltaTime)/frames)
		return
	}
	d.birthScale = 1

	if !d.typeCfg.Drips {
		return
	}
	d.dripTimer++
	if d.dripTimer >= d.env.Cfg.Drop.DripInterval {
		d.dripTimer = 0
		if child := d.env.Drips.SpawnDrip(d); child != nil {
			d.children = append(d.children, child)
		}
	}
}

// UpdatePhysics drifts the drop with the fluid, away from the sun, and wraps it.
func (d *InkDrop) UpdatePhysics() {
	dc := d.env.Cfg.Drop
	d.Acc = systems.Vec2{}

	flow := d.env.Fluid.SampleAt(d.Pos.X+d.NoiseOffset.X*dc.OffsetScale, d.Pos.Y+d.NoiseOffset.Y*dc.OffsetScale)
	d.Acc = d.Acc.Add(flow.Scale(dc.FluidInfluence))
	d.Acc = d.Acc.Add(d.env.Repulsor.RepulsionForce(d.Pos.X, d.Pos.Y))

	d.Friction = EffectiveDamping(dc.Damping, d.env.Turbulence.TurbulenceLevel(), d.env.Cfg.Turbulence.ViscosityGain)
	d.Vel = d.Vel.Add(d.Acc).Scale(d.Friction)
	d.Pos = d.Pos.Add(d.Vel)
	d.Pos.X = systems.Wrap(d.Pos.X, d.env.Width)
	d.Pos.Y = systems.Wrap(d.Pos.Y, d.env.Height)
}

// EffectiveDamping thins the fluid as turbulence rises.
func EffectiveDamping(damping, turbulence, gain float64) float64 {
	d := damping + (1-damping)*systems.Clamp01(turbulence)*systems.Clamp01(gain)
	return math.Min(d, 0.999)
}

// OnAfterUpdate applies the fade and shrink curves.
func (d *InkDrop) OnAfterUpdate() {
	d.opacity = FadeOpacity(d.typeCfg.Opacity, d.env.Cfg.Drop.ResidueOpacity, d.Age, d.Lifespan)
	p := systems.Clamp01(d.Age / d.Lifespan)
	d.size = d.targetSize * d.birthScale * (1 - 0.5*p)
}

// OnDeath tells still-bound children their parent is gone.
func (d *InkDrop) OnDeath() {
	for _, c := range d.children {
		c.MarkParentDied(d)
	}
	d.pruneChildren()
}

// OnRecycle unbinds children that still point here and drops every child
// reference, so a later acquisition of this instance is not their parent.
func (d *InkDrop) OnRecycle() {
	for _, c := range d.children {
		if c.parent == d {
			c.parent = nil
		}
	}
	clear(d.children)
	d.children = d.children[:0]
	d.dripTimer = 0
}

// pruneChildren drops references to children that died or were recycled
// into another parent.
func (d *InkDrop) pruneChildren() {
	kept := d.children[:0]
	for _, c := range d.children {
		if c.parent == d && !c.Dead {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(d.children); i++ {
		d.children[i] = nil
	}
	d.children = kept
}

// ShouldStamp is true exactly once, from the moment age reaches lifespan.
func (d *InkDrop) ShouldStamp() bool {
	return !d.stamped && d.Age >= d.Lifespan
}

// Stamp draws the permanent residue mark. Returns false if already stamped
// or not yet due.
func (d *InkDrop) Stamp(history renderer.Surface) bool {
	if !d.ShouldStamp() {
		return false
	}
	d.stamped = true
	dc := d.env.Cfg.Drop
	residue := ResidueColor(d.color, dc.ResidueDarken, dc.ResidueDesat)
	d.env.Stamp.Stamp(history, d.Pos.X, d.Pos.Y, d.size/2, residue, math.Max(d.opacity, dc.ResidueOpacity))
	d.env.Splatter.Splatter(history, d.Pos.X, d.Pos.Y, d.size, d.splats, residue, dc.ResidueOpacity)
	return true
}

// Display draws the drop and its splatter.
func (d *InkDrop) Display(s renderer.Surface) {
	d.env.Splatter.Splatter(s, d.Pos.X, d.Pos.Y, d.size, d.splats, d.color, d.opacity)
	r := d.size / 2
	s.FillEllipse(d.Pos.X, d.Pos.Y, r*1.15, r*1.15, renderer.Ink(d.color, d.opacity*0.35))
	s.FillEllipse(d.Pos.X, d.Pos.Y, r, r, renderer.Ink(d.color, d.opacity))
}

// DisplayTrail leaves a faint mark on the trail layer.
func (d *InkDrop) DisplayTrail(s renderer.Surface) {
	dc := d.env.Cfg.Drop
	r := d.size / 2 * dc.TrailSize
	s.FillEllipse(d.Pos.X, d.Pos.Y, r, r, renderer.Ink(d.color, d.opacity*dc.TrailAlpha))
}

func (d *InkDrop) Color() colorful.Color { return d.color }
func (d *InkDrop) Type() DropType        { return d.dropType }
func (d *InkDrop) Size() float64         { return d.size }
func (d *InkDrop) TargetSize() float64   { return d.targetSize }
func (d *InkDrop) Opacity() float64      { return d.opacity }
func (d *InkDrop) Stamped() bool         { return d.stamped }

// BirthScale is the fraction of full size reached by the birth animation.
func (d *InkDrop) BirthScale() float64 { return d.birthScale }

// Splats returns the splatter pattern generated at spawn.
func (d *InkDrop) Splats() []renderer.Splat { return d.splats }

// Children returns the drips still bound to this drop.
func (d *InkDrop) Children() []*InkDrip { return d.children }
