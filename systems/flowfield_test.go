package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/inkclock/config"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

// flatNoise returns the same value everywhere.
type flatNoise float64

func (n flatNoise) Eval3(x, y, z float64) float64 { return float64(n) }

func newTestField(t *testing.T, mutate func(*config.FluidConfig)) *VectorField {
	t.Helper()
	cfg := config.Cfg()
	fluid := cfg.Fluid
	if mutate != nil {
		mutate(&fluid)
	}
	f, err := NewVectorField(400, 300, fluid, cfg.Turbulence, flatNoise(0))
	if err != nil {
		t.Fatalf("NewVectorField: %v", err)
	}
	return f
}

func TestVectorFieldGridSize(t *testing.T) {
	f := newTestField(t, func(c *config.FluidConfig) { c.Resolution = 7 })
	cols, rows := f.GridSize()
	if cols != 58 || rows != 43 {
		t.Errorf("expected 58x43 grid, got %dx%d", cols, rows)
	}
}

func TestVectorFieldRejectsBadInput(t *testing.T) {
	cfg := config.Cfg()
	if _, err := NewVectorField(400, 300, cfg.Fluid, cfg.Turbulence, nil); err == nil {
		t.Error("expected error for nil noise")
	}
	fluid := cfg.Fluid
	fluid.Resolution = 0
	if _, err := NewVectorField(400, 300, fluid, cfg.Turbulence, flatNoise(0)); err == nil {
		t.Error("expected error for zero resolution")
	}
	if _, err := NewVectorField(0, 300, cfg.Fluid, cfg.Turbulence, flatNoise(0)); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestVectorFieldSampleAtClamps(t *testing.T) {
	cfg := config.Cfg()
	f, err := NewVectorField(400, 300, cfg.Fluid, cfg.Turbulence, NewSimplexNoise(7))
	if err != nil {
		t.Fatal(err)
	}
	f.Update()

	points := [][2]float64{
		{0, 0}, {399.9, 299.9}, {-50, 20}, {1e9, -1e9},
		{math.Inf(1), math.Inf(-1)}, {math.NaN(), 10}, {10, math.NaN()},
	}
	for _, p := range points {
		v := f.SampleAt(p[0], p[1])
		if !v.IsFinite() {
			t.Errorf("SampleAt(%v, %v) = %v, want finite", p[0], p[1], v)
		}
	}

	if got, want := f.SampleAt(-50, -50), f.CellAt(0, 0); got != want {
		t.Errorf("negative coords should clamp to cell 0,0: got %v want %v", got, want)
	}
	cols, rows := f.GridSize()
	if got, want := f.SampleAt(5000, 5000), f.CellAt(cols-1, rows-1); got != want {
		t.Errorf("large coords should clamp to last cell: got %v want %v", got, want)
	}
}

func TestVectorFieldSampleReturnsCopy(t *testing.T) {
	f := newTestField(t, nil)
	v := f.SampleAt(100, 100)
	v.X += 1000
	if f.SampleAt(100, 100) == v {
		t.Error("mutating a sample changed the stored vector")
	}
}

func TestVectorFieldNoiseToAngle(t *testing.T) {
	// noise 0 with spread 2 maps to angle 2pi mod 2pi = 0
	f := newTestField(t, func(c *config.FluidConfig) {
		c.AngleSpread = 2
		c.Magnitude = 3
	})
	f.Update()
	v := f.SampleAt(10, 10)
	if math.Abs(v.X-3) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Errorf("expected (3, 0), got %v", v)
	}
}

func TestVectorFieldLocalImpulseLandsNextUpdate(t *testing.T) {
	f := newTestField(t, func(c *config.FluidConfig) { c.Magnitude = 0 })
	res := f.Resolution()
	x, y := 5.5*res, 5.5*res

	f.AddLocalImpulse(x, y, Vec2{0, 10}, 1)
	if v := f.SampleAt(x, y); v != (Vec2{}) {
		t.Fatalf("impulse should not be visible before Update, got %v", v)
	}

	f.Update()
	if v := f.SampleAt(x, y); math.Abs(v.Y-10) > 1e-9 {
		t.Errorf("expected full impulse at the center cell, got %v", v)
	}
	if v := f.SampleAt(x+2*f.cfg.ImpulseRadius, y); v != (Vec2{}) {
		t.Errorf("expected no impulse outside the radius, got %v", v)
	}

	f.Update()
	if v := f.SampleAt(x, y); v != (Vec2{}) {
		t.Errorf("impulse should be consumed after one frame, got %v", v)
	}
}

func TestVectorFieldLocalImpulseFalloff(t *testing.T) {
	f := newTestField(t, func(c *config.FluidConfig) {
		c.Magnitude = 0
		c.ImpulseRadius = 100
	})
	res := f.Resolution()
	x, y := 5.5*res, 5.5*res
	f.AddLocalImpulse(x, y, Vec2{1, 0}, 1)
	f.Update()

	near := f.SampleAt(x+res, y).X
	far := f.SampleAt(x+3*res, y).X
	if !(near > far && far > 0) {
		t.Errorf("expected linear falloff, near=%v far=%v", near, far)
	}
}

func TestVectorFieldRadialImpulse(t *testing.T) {
	f := newTestField(t, func(c *config.FluidConfig) {
		c.Magnitude = 0
		c.RingBand = 30
		c.RingRadialMix = 0.3
	})
	cx, cy := 200.0, 150.0
	f.ApplyRadialImpulses([]RadialImpulse{{X: cx, Y: cy, Radius: 100, Strength: 1}})
	f.Update()

	if v := f.SampleAt(cx, cy); v != (Vec2{}) {
		t.Errorf("ring center should be untouched, got %v", v)
	}

	// Cell centered at (290, 150) sits 90px right of the center, inside the band.
	v := f.SampleAt(290, 150)
	if v == (Vec2{}) {
		t.Fatal("expected a push on the ring")
	}
	if v.X <= 0 {
		t.Errorf("expected an outward component, got %v", v)
	}
	if math.Abs(v.Y) <= math.Abs(v.X) {
		t.Errorf("expected the push to be mostly tangential, got %v", v)
	}

	if v := f.SampleAt(5, 5); v != (Vec2{}) {
		t.Errorf("far corner should be untouched, got %v", v)
	}
}

func TestNoiseBackendsInRange(t *testing.T) {
	cfg := config.Cfg().Fluid
	for _, backend := range []string{"simplex", "perlin"} {
		cfg.NoiseBackend = backend
		n, err := NewNoise(cfg, 42)
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		for i := 0; i < 500; i++ {
			v := n.Eval3(float64(i)*0.37, float64(i)*0.11, float64(i)*0.013)
			if v < -1 || v > 1 || math.IsNaN(v) {
				t.Fatalf("%s: Eval3 out of range: %v", backend, v)
			}
		}
	}

	cfg.NoiseBackend = "worley"
	if _, err := NewNoise(cfg, 1); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNoiseIsCoherent(t *testing.T) {
	n := NewSimplexNoise(3)
	a := n.Eval3(1.0, 1.0, 0)
	b := n.Eval3(1.001, 1.0, 0)
	if math.Abs(a-b) > 0.05 {
		t.Errorf("nearby samples differ too much: %v vs %v", a, b)
	}
}
