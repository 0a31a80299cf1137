package particles

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

// FluidSampler provides flow vectors at canvas positions.
type FluidSampler interface {
	SampleAt(x, y float64) systems.Vec2
}

// Repulsor pushes particles away from itself.
type Repulsor interface {
	RepulsionForce(x, y float64) systems.Vec2
}

// TurbulenceSource exposes the shared turbulence level.
type TurbulenceSource interface {
	TurbulenceLevel() float64
}

// DripSpawner creates a drip for a parent drop. It may return nil.
type DripSpawner interface {
	SpawnDrip(parent *InkDrop) *InkDrip
}

type stillFluid struct{}

func (stillFluid) SampleAt(x, y float64) systems.Vec2 { return systems.Vec2{} }

type noRepulsion struct{}

func (noRepulsion) RepulsionForce(x, y float64) systems.Vec2 { return systems.Vec2{} }

type calm struct{}

func (calm) TurbulenceLevel() float64 { return 0 }

type noDrips struct{}

func (noDrips) SpawnDrip(*InkDrop) *InkDrip { return nil }

// Env is the shared context drops and drips are built against.
// Optional collaborators left nil are swapped for null objects the first
// time the Env is used.
type Env struct {
	Cfg           *config.Config
	Width, Height float64
	Rand          *rand.Rand

	Stamp    renderer.StampStrategy
	Splatter renderer.SplatterStrategy

	Fluid      FluidSampler
	Repulsor   Repulsor
	Turbulence TurbulenceSource
	Drips      DripSpawner

	ready bool
}

// prepare validates required fields and fills in null objects once.
func (e *Env) prepare() error {
	if e == nil {
		return errors.New("particles: nil env")
	}
	if e.ready {
		return nil
	}
	if e.Cfg == nil {
		return errors.New("particles: env has no config")
	}
	if !(e.Width > 0) || !(e.Height > 0) {
		return errors.New("particles: env canvas size must be positive")
	}
	if e.Stamp == nil || e.Splatter == nil {
		return errors.New("particles: env needs stamp and splatter strategies")
	}
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	if e.Fluid == nil {
		slog.Warn("dependency_missing", "dependency", "fluid_sampler", "effect", "drops will not drift")
		e.Fluid = stillFluid{}
	}
	if e.Repulsor == nil {
		slog.Warn("dependency_missing", "dependency", "repulsor", "effect", "no sun repulsion")
		e.Repulsor = noRepulsion{}
	}
	if e.Turbulence == nil {
		slog.Warn("dependency_missing", "dependency", "turbulence", "effect", "viscosity fixed")
		e.Turbulence = calm{}
	}
	if e.Drips == nil {
		slog.Warn("dependency_missing", "dependency", "drip_spawner", "effect", "drops will not drip")
		e.Drips = noDrips{}
	}
	e.ready = true
	return nil
}
