// Package palette maps clock time and turbulence to ink colors.
package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/colorgrad"

	"github.com/pthm-cable/inkclock/config"
)

// Palette is a pure color provider: the same inputs always give the same color.
type Palette struct {
	grad            colorgrad.Gradient
	chime           [3]colorful.Color
	nightDarken     float64
	turbulenceDesat float64
}

// New builds the minute-of-hour gradient and the chime colors.
func New(cfg config.PaletteConfig) (*Palette, error) {
	grad, err := colorgrad.NewGradient().
		HtmlColors(cfg.Colors...).
		Domain(0, 59).
		Build()
	if err != nil {
		return nil, fmt.Errorf("palette gradient: %w", err)
	}
	if len(cfg.ChimeColors) != 3 {
		return nil, fmt.Errorf("palette: need 3 chime colors, got %d", len(cfg.ChimeColors))
	}
	p := &Palette{
		grad:            grad,
		nightDarken:     cfg.NightDarken,
		turbulenceDesat: cfg.TurbulenceDesat,
	}
	for i, hex := range cfg.ChimeColors {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette chime color %q: %w", hex, err)
		}
		p.chime[i] = c
	}
	return p, nil
}

// nightness is 1 at midnight and 0 at noon.
func nightness(hour int) float64 {
	return (1 + math.Cos(2*math.Pi*float64(hour%24)/24)) / 2
}

// Color returns the ink for a spawn at minute/hour under the given turbulence.
// Night hours darken the ink, turbulence drains its saturation.
func (p *Palette) Color(minute, hour int, turbulence float64) colorful.Color {
	m := ((minute % 60) + 60) % 60
	c := p.grad.At(float64(m))
	h, s, l := c.Hsl()
	l *= 1 - p.nightDarken*nightness(hour)
	t := math.Max(0, math.Min(1, turbulence))
	if math.IsNaN(turbulence) {
		t = 0
	}
	s *= 1 - p.turbulenceDesat*t
	return colorful.Hsl(h, s, l).Clamped()
}

// ChimeColor returns the ring color for a quarter-hour chime.
func (p *Palette) ChimeColor(minute int) colorful.Color {
	switch minute {
	case 15:
		return p.chime[0]
	case 30:
		return p.chime[1]
	case 45:
		return p.chime[2]
	default:
		return p.grad.At(float64(((minute % 60) + 60) % 60))
	}
}
