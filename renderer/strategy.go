package renderer

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Splat is one splatter dot relative to its drop, in units of drop size.
type Splat struct {
	DX, DY float64
	Size   float64
	Alpha  float64
}

// StampStrategy renders a permanent ink mark.
type StampStrategy interface {
	Stamp(s Surface, x, y, radius float64, c colorful.Color, alpha float64)
}

// SplatterStrategy renders the dots scattered around a drop.
type SplatterStrategy interface {
	Splatter(s Surface, x, y, scale float64, splats []Splat, c colorful.Color, alpha float64)
}

// BleedStamp draws a dried-ink mark: a soft bled halo, the body, and a
// darker rim where pigment collects at the edge.
type BleedStamp struct {
	Bleed float64 // halo radius as a multiple of the body radius
	Steps int     // halo rings
}

// NewBleedStamp returns the default stamp.
func NewBleedStamp() *BleedStamp {
	return &BleedStamp{Bleed: 1.35, Steps: 4}
}

func (b *BleedStamp) Stamp(s Surface, x, y, radius float64, c colorful.Color, alpha float64) {
	if radius <= 0 || alpha <= 0 {
		return
	}
	steps := max(b.Steps, 1)
	for i := steps; i >= 1; i-- {
		f := float64(i) / float64(steps)
		r := radius * (1 + (b.Bleed-1)*f)
		s.FillEllipse(x, y, r, r, Ink(c, alpha*0.25*(1-f*0.6)))
	}
	s.FillEllipse(x, y, radius, radius, Ink(c, alpha*0.6))

	h, sat, l := c.Hsl()
	rim := colorful.Hsl(h, sat, l*0.8)
	segments := max(12, int(radius))
	w := math.Max(0.75, radius*0.08)
	px, py := x+radius, y
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		nx, ny := x+radius*math.Cos(a), y+radius*math.Sin(a)
		s.Line(px, py, nx, ny, w, Ink(rim, alpha*0.5))
		px, py = nx, ny
	}
}

// DotSplatter draws each splat as a filled dot.
type DotSplatter struct{}

func (DotSplatter) Splatter(s Surface, x, y, scale float64, splats []Splat, c colorful.Color, alpha float64) {
	if scale <= 0 || alpha <= 0 {
		return
	}
	for _, sp := range splats {
		r := sp.Size * scale
		s.FillEllipse(x+sp.DX*scale, y+sp.DY*scale, r, r, Ink(c, alpha*sp.Alpha))
	}
}
