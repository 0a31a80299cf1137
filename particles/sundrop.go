package particles

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

// SunDrop marks the minute of the hour by its horizontal position.
// It never dies and is never pushed by anything.
type SunDrop struct {
	Particle
	cfg           config.SunConfig
	width, height float64
	minute        float64
	phase         float64
	tint          colorful.Color
}

// NewSunDrop places the sun at minute 0.
func NewSunDrop(cfg config.SunConfig, width, height float64) *SunDrop {
	s := &SunDrop{
		cfg:    cfg,
		width:  width,
		height: height,
		tint:   colorful.Color{R: 1, G: 0.78, B: 0.3},
	}
	s.Lifespan = math.Inf(1)
	s.Init(s, nil)
	s.Pos = systems.Vec2{X: 0, Y: cfg.YFraction * height}
	return s
}

// Update moves the sun to minuteOfHour and advances the pulse.
func (s *SunDrop) Update(minuteOfHour float64) {
	s.minute = minuteOfHour
	s.Particle.Update()
}

// UpdatePhysics ignores velocity: position is a function of the minute.
func (s *SunDrop) UpdatePhysics() {
	s.Pos.X = systems.Clamp01(s.minute/59) * s.width
	s.Pos.Y = s.cfg.YFraction * s.height
	s.phase = math.Mod(s.phase+s.cfg.PulseSpeed, 2*math.Pi)
}

// RepulsionForce returns the push the sun exerts on a point.
// Zero at or beyond the repulsion radius and at the sun's exact center.
func (s *SunDrop) RepulsionForce(x, y float64) systems.Vec2 {
	r := s.cfg.RepulsionRadius
	dx, dy := x-s.Pos.X, y-s.Pos.Y
	d := math.Hypot(dx, dy)
	if !(r > 0) || !(d > 0) || d >= r {
		return systems.Vec2{}
	}
	mag := s.cfg.RepulsionStrength * (1 - d/r)
	return systems.Vec2{X: dx / d * mag, Y: dy / d * mag}
}

// Resize keeps the sun on the same relative track.
func (s *SunDrop) Resize(width, height float64) {
	s.width, s.height = width, height
	s.Pos.X = systems.Clamp01(s.minute/59) * width
	s.Pos.Y = s.cfg.YFraction * height
}

// SetTint changes the sun color, typically once per hour.
func (s *SunDrop) SetTint(c colorful.Color) {
	if ValidColor(c) {
		s.tint = c
	}
}

// CoronaRadius is the current pulsing halo radius.
func (s *SunDrop) CoronaRadius() float64 {
	return s.cfg.CoreRadius * s.cfg.CoronaScale * (1 + s.cfg.CoronaPulse*math.Sin(s.phase))
}

// Display draws the corona and the core.
func (s *SunDrop) Display(surf renderer.Surface) {
	cr := s.CoronaRadius()
	surf.FillEllipse(s.Pos.X, s.Pos.Y, cr, cr, renderer.Ink(s.tint, 0.12))
	surf.FillEllipse(s.Pos.X, s.Pos.Y, cr*0.6, cr*0.6, renderer.Ink(s.tint, 0.18))
	surf.FillEllipse(s.Pos.X, s.Pos.Y, s.cfg.CoreRadius, s.cfg.CoreRadius, renderer.Ink(s.tint, 0.92))
}

// DisplayTrail leaves a faint mark as the sun walks across the hour.
func (s *SunDrop) DisplayTrail(surf renderer.Surface) {
	r := s.cfg.CoreRadius * 0.5
	surf.FillEllipse(s.Pos.X, s.Pos.Y, r, r, renderer.Ink(s.tint, 0.2))
}

func (s *SunDrop) Minute() float64      { return s.minute }
func (s *SunDrop) Tint() colorful.Color { return s.tint }
func (s *SunDrop) Phase() float64       { return s.phase }
