package renderer

import (
	"fmt"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Background paints the static paper layer.
type Background struct {
	Paper colorful.Color
	Seed  int64
	// GrainDensity is the number of paper fibre specks per 1000 px².
	GrainDensity float64
}

// NewBackground parses a hex paper color.
func NewBackground(hex string, seed int64) (*Background, error) {
	paper, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("background color %q: %w", hex, err)
	}
	return &Background{Paper: paper, Seed: seed, GrainDensity: 2.5}, nil
}

// Paint fills c with the paper color and a fixed speckle of grain.
// The same seed always produces the same paper.
func (b *Background) Paint(c *Canvas) {
	c.Clear(Ink(b.Paper, 1))

	rng := rand.New(rand.NewSource(b.Seed))
	w, h := float64(c.Width()), float64(c.Height())
	n := int(w * h / 1000 * b.GrainDensity)
	h0, s0, l0 := b.Paper.Hsl()
	for i := 0; i < n; i++ {
		shade := colorful.Hsl(h0, s0, l0*(0.85+rng.Float64()*0.1))
		r := 0.4 + rng.Float64()*0.9
		c.FillEllipse(rng.Float64()*w, rng.Float64()*h, r, r*(0.5+rng.Float64()), Ink(shade, 0.08+rng.Float64()*0.08))
	}
}
