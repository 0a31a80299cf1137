package systems

import (
	"math"

	"github.com/pthm-cable/inkclock/config"
)

// Turbulence converts pointer speed samples into a decaying scalar level.
// The level is read by drop viscosity, palette desaturation, trail fading and audio.
type Turbulence struct {
	cfg   config.TurbulenceConfig
	level float64
}

// NewTurbulence creates a controller at level 0.
func NewTurbulence(cfg config.TurbulenceConfig) *Turbulence {
	return &Turbulence{cfg: cfg}
}

// Add feeds one pointer speed sample (px/frame). Samples at or below the
// threshold are ignored.
func (t *Turbulence) Add(speed float64) {
	if !(speed > t.cfg.Threshold) {
		return
	}
	step := (speed - t.cfg.Threshold) * t.cfg.Gain
	if step > t.cfg.MaxStep {
		step = t.cfg.MaxStep
	}
	t.level = Clamp(t.level+step, 0, t.cfg.Max)
}

// Decay must run exactly once per frame.
func (t *Turbulence) Decay() {
	t.level *= t.cfg.Decay
	if t.level < t.cfg.Epsilon {
		t.level = 0
	}
}

// Set overrides the level, clamped to [0, max].
func (t *Turbulence) Set(level float64) {
	if math.IsNaN(level) {
		level = 0
	}
	t.level = Clamp(level, 0, t.cfg.Max)
}

// Level returns the current turbulence.
func (t *Turbulence) Level() float64 {
	return t.level
}
