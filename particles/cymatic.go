package particles

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

// ErrNotChime is returned for a pattern requested outside minutes 15, 30 and 45.
var ErrNotChime = errors.New("minute is not a chime")

// Ring is one expanding wave front.
type Ring struct {
	Radius float64
	Target float64
	Start  float64 // pattern age at which the ring starts growing
	Alpha  float64
}

// CymaticPattern is the ripple a quarter-hour chime sends across the canvas.
type CymaticPattern struct {
	X, Y     float64
	minute   int
	rings    []Ring
	age      float64
	duration float64
	strength float64
	stroke   float64
	color    colorful.Color
	complete bool
	active   []systems.RadialImpulse
}

// NewCymaticPattern builds 3, 6 or 9 rings for a 15, 30 or 45 minute chime.
func NewCymaticPattern(x, y float64, minute int, minDim float64, cfg config.ChimeConfig, c colorful.Color) (*CymaticPattern, error) {
	if !systems.IsChimeMinute(minute) {
		return nil, fmt.Errorf("cymatic pattern: %w: %d", ErrNotChime, minute)
	}
	if !ValidColor(c) {
		return nil, fmt.Errorf("cymatic pattern: %w: %v", ErrInvalidColor, c)
	}
	if !(minDim > 0) || !(cfg.Duration > 0) {
		return nil, fmt.Errorf("cymatic pattern: need positive size and duration, got %v, %v", minDim, cfg.Duration)
	}
	count := minute / 15 * 3
	maxRadius := minDim * cfg.MaxRadiusFraction
	p := &CymaticPattern{
		X:        x,
		Y:        y,
		minute:   minute,
		rings:    make([]Ring, count),
		duration: cfg.Duration,
		strength: cfg.Strength,
		stroke:   cfg.StrokeWidth,
		color:    c,
	}
	for i := range p.rings {
		p.rings[i] = Ring{
			Target: float64(i+1) * maxRadius / float64(count),
			Start:  float64(i) * cfg.StaggerFrames,
		}
	}
	return p, nil
}

// Update ages the pattern, grows every started ring and returns the rings
// currently pushing on the fluid. The slice is reused on the next call.
func (p *CymaticPattern) Update() []systems.RadialImpulse {
	p.active = p.active[:0]
	if p.complete {
		return p.active
	}
	p.age++
	for i := range p.rings {
		r := &p.rings[i]
		if p.age < r.Start {
			continue
		}
		progress := 1.0
		if span := p.duration - r.Start; span > 0 {
			progress = systems.Clamp01((p.age - r.Start) / span)
		}
		r.Radius = r.Target * systems.EaseOutCubic(progress)
		r.Alpha = 1 - progress
		if r.Alpha > 0 && r.Radius > 0 {
			p.active = append(p.active, systems.RadialImpulse{
				X:        p.X,
				Y:        p.Y,
				Radius:   r.Radius,
				Strength: p.strength * r.Alpha,
			})
		}
	}
	if p.age > p.duration {
		p.complete = true
	}
	return p.active
}

// Render draws every visible ring as three concentric strokes that thin and
// fade outward from the wave front.
func (p *CymaticPattern) Render(s renderer.Surface) {
	for _, r := range p.rings {
		if r.Radius <= 0 || r.Alpha <= 0 {
			continue
		}
		for k, f := range [...]float64{1, 0.55, 0.25} {
			offset := float64(k) * p.stroke * 1.5
			strokeCircle(s, p.X, p.Y, r.Radius+offset, p.stroke*f, renderer.Ink(p.color, r.Alpha*f*0.8))
		}
	}
}

// strokeCircle draws a circle outline as a closed polyline.
func strokeCircle(s renderer.Surface, cx, cy, radius, width float64, c color.Color) {
	segments := int(math.Min(180, math.Max(24, radius/3)))
	px, py := cx+radius, cy
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		nx, ny := cx+radius*math.Cos(a), cy+radius*math.Sin(a)
		s.Line(px, py, nx, ny, width, c)
		px, py = nx, ny
	}
}

// Rings returns a copy of the ring state.
func (p *CymaticPattern) Rings() []Ring {
	out := make([]Ring, len(p.rings))
	copy(out, p.rings)
	return out
}

func (p *CymaticPattern) RingCount() int        { return len(p.rings) }
func (p *CymaticPattern) Minute() int           { return p.minute }
func (p *CymaticPattern) Age() float64          { return p.age }
func (p *CymaticPattern) Complete() bool        { return p.complete }
func (p *CymaticPattern) Color() colorful.Color { return p.color }
