package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// pluck applies a fast attack and exponential decay to a note.
type pluck struct {
	beep.Streamer
	pos, total int
}

func (p *pluck) Stream(samples [][2]float64) (int, bool) {
	n, ok := p.Streamer.Stream(samples)
	attack := p.total / 50
	for i := 0; i < n; i++ {
		g := math.Exp(-5 * float64(p.pos) / float64(max(p.total, 1)))
		if p.pos < attack {
			g *= float64(p.pos) / float64(attack)
		}
		samples[i][0] *= g
		samples[i][1] *= g
		p.pos++
	}
	return n, ok
}

// lowpass is a one-pole filter whose smoothing follows turbulence.
// Calm is fully open; full turbulence keeps a tenth of the new signal.
type lowpass struct {
	beep.Streamer
	alpha float64
	prev  [2]float64
}

func newLowpass(s beep.Streamer) *lowpass {
	return &lowpass{Streamer: s, alpha: 1}
}

func (l *lowpass) setTurbulence(level float64) {
	if math.IsNaN(level) {
		level = 0
	}
	level = math.Max(0, math.Min(1, level))
	l.alpha = 1 - 0.9*level
}

func (l *lowpass) Stream(samples [][2]float64) (int, bool) {
	n, ok := l.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		for c := 0; c < 2; c++ {
			l.prev[c] += l.alpha * (samples[i][c] - l.prev[c])
			samples[i][c] = l.prev[c]
		}
	}
	return n, ok
}
