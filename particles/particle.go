// Package particles implements the moving entities of the ink clock: drops,
// drips, the sun and chime ripples, plus the pool that recycles them.
package particles

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

// Behavior holds the override points of the particle update template.
// Concrete particles embed Particle and install themselves as its behavior;
// any hook they do not define falls through to Particle's default.
type Behavior interface {
	OnBeforeUpdate()
	UpdatePhysics()
	OnAfterUpdate()
	OnDeath()
	OnReset(params SpawnParams) error
	OnRecycle()
}

// Entity is a live particle the frame loop drives.
type Entity interface {
	Update()
	Display(s renderer.Surface)
	DisplayTrail(s renderer.Surface)
	IsDead() bool
}

// SpawnParams carries what a particle needs to come (back) to life.
type SpawnParams struct {
	Color    colorful.Color
	Type     DropType
	Velocity systems.Vec2
	// Parent and ParentSize are set for drips.
	Parent     *InkDrop
	ParentSize float64
}

// Particle is the shared integrator and lifecycle.
type Particle struct {
	Pos, Vel, Acc systems.Vec2
	Age           float64
	Lifespan      float64 // frames, may be +Inf
	Dead          bool
	NoiseOffset   systems.Vec2
	Friction      float64
	DeltaTime     float64

	rng      *rand.Rand
	behavior Behavior
}

// Init wires the behavior and random source. b may be nil for a bare particle.
func (p *Particle) Init(b Behavior, rng *rand.Rand) {
	if b == nil {
		b = p
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	p.behavior = b
	p.rng = rng
	if p.DeltaTime == 0 {
		p.DeltaTime = 1
	}
	if p.Friction == 0 {
		p.Friction = 1
	}
	if p.Lifespan == 0 {
		p.Lifespan = math.Inf(1)
	}
}

// Update runs one frame of the fixed template. Dead particles are untouched.
func (p *Particle) Update() {
	if p.Dead {
		return
	}
	b := p.behavior
	if b == nil {
		p.Init(nil, nil)
		b = p.behavior
	}
	b.OnBeforeUpdate()
	if p.Dead {
		return
	}
	b.UpdatePhysics()
	if p.Dead {
		return
	}
	p.Age += p.DeltaTime
	b.OnAfterUpdate()
	if !p.Dead && p.Age >= p.Lifespan {
		p.die()
	}
}

// Kill ends the particle early. OnDeath still runs exactly once.
func (p *Particle) Kill() {
	p.die()
}

func (p *Particle) die() {
	if p.Dead {
		return
	}
	p.Dead = true
	if p.behavior != nil {
		p.behavior.OnDeath()
	}
}

// Integrate is the default physics step.
func (p *Particle) Integrate() {
	p.Vel = p.Vel.Add(p.Acc).Scale(p.Friction)
	p.Pos = p.Pos.Add(p.Vel)
	p.Acc = systems.Vec2{}
}

// Reset restores the particle to a freshly spawned state at (x, y) and then
// lets the behavior restore its own fields.
func (p *Particle) Reset(x, y float64, params SpawnParams) error {
	if p.behavior == nil {
		p.Init(nil, nil)
	}
	p.Pos = systems.Vec2{X: x, Y: y}
	p.Vel = systems.Vec2{}
	p.Acc = systems.Vec2{}
	p.Age = 0
	p.Dead = false
	p.NoiseOffset = systems.Vec2{X: p.rng.Float64()*2 - 1, Y: p.rng.Float64()*2 - 1}
	return p.behavior.OnReset(params)
}

// Recycle marks a released particle dead and lets the behavior drop its
// references to other particles. OnDeath does not run.
func (p *Particle) Recycle() {
	if p.behavior == nil {
		p.Init(nil, nil)
	}
	p.Dead = true
	p.Vel = systems.Vec2{}
	p.Acc = systems.Vec2{}
	p.behavior.OnRecycle()
}

// IsDead reports whether the particle has died.
func (p *Particle) IsDead() bool { return p.Dead }

// Position returns the current position.
func (p *Particle) Position() systems.Vec2 { return p.Pos }

// Rand returns the particle's random source.
func (p *Particle) Rand() *rand.Rand { return p.rng }

func (p *Particle) OnBeforeUpdate()                  {}
func (p *Particle) UpdatePhysics()                   { p.Integrate() }
func (p *Particle) OnAfterUpdate()                   {}
func (p *Particle) OnDeath()                         {}
func (p *Particle) OnReset(params SpawnParams) error { return nil }
func (p *Particle) OnRecycle()                       {}
