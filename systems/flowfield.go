package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/inkclock/config"
)

// RadialImpulse is one expanding ring pushing on the flow.
type RadialImpulse struct {
	X, Y     float64
	Radius   float64
	Strength float64
}

// VectorField is a grid of flow vectors regenerated from noise every frame.
// Impulses are buffered and land on top of the next regeneration.
type VectorField struct {
	cfg    config.FluidConfig
	noise  Noise
	turb   *Turbulence
	width  float64
	height float64

	cols, rows int
	cells      []Vec2
	pending    []Vec2
	hasPending bool
	frame      int
}

// NewVectorField creates a field covering a width x height canvas.
func NewVectorField(width, height float64, cfg config.FluidConfig, turb config.TurbulenceConfig, noise Noise) (*VectorField, error) {
	if noise == nil {
		return nil, errors.New("vector field: nil noise source")
	}
	if !(cfg.Resolution > 0) {
		return nil, fmt.Errorf("vector field: resolution must be > 0, got %v", cfg.Resolution)
	}
	f := &VectorField{
		cfg:   cfg,
		noise: noise,
		turb:  NewTurbulence(turb),
	}
	if err := f.Resize(width, height); err != nil {
		return nil, err
	}
	return f, nil
}

// Resize reallocates the grid for a new canvas size. Pending impulses are dropped.
func (f *VectorField) Resize(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return fmt.Errorf("vector field: canvas must be positive, got %vx%v", width, height)
	}
	f.width, f.height = width, height
	f.cols = int(math.Ceil(width / f.cfg.Resolution))
	f.rows = int(math.Ceil(height / f.cfg.Resolution))
	f.cells = make([]Vec2, f.cols*f.rows)
	f.pending = make([]Vec2, f.cols*f.rows)
	f.hasPending = false
	f.regenerate()
	return nil
}

// Update regenerates the base flow and applies buffered impulses.
// Must run once per frame before any sampling.
func (f *VectorField) Update() {
	f.regenerate()
	if f.hasPending {
		for i := range f.cells {
			f.cells[i] = f.cells[i].Add(f.pending[i])
			f.pending[i] = Vec2{}
		}
		f.hasPending = false
	}
	f.frame++
}

func (f *VectorField) regenerate() {
	t := float64(f.frame) * f.cfg.NoiseSpeed
	for cy := 0; cy < f.rows; cy++ {
		for cx := 0; cx < f.cols; cx++ {
			n := f.noise.Eval3(float64(cx)*f.cfg.NoiseScale, float64(cy)*f.cfg.NoiseScale, t)
			angle := math.Mod((n+1)*math.Pi*f.cfg.AngleSpread, 2*math.Pi)
			if angle < 0 {
				angle += 2 * math.Pi
			}
			f.cells[cy*f.cols+cx] = Vec2{math.Cos(angle) * f.cfg.Magnitude, math.Sin(angle) * f.cfg.Magnitude}
		}
	}
}

// cellIndex converts canvas coordinates to a clamped grid index.
func (f *VectorField) cellIndex(x, y float64) (int, int) {
	if math.IsNaN(x) {
		x = 0
	}
	if math.IsNaN(y) {
		y = 0
	}
	cx := int(Clamp(math.Floor(x/f.cfg.Resolution), 0, float64(f.cols-1)))
	cy := int(Clamp(math.Floor(y/f.cfg.Resolution), 0, float64(f.rows-1)))
	return cx, cy
}

// SampleAt returns a copy of the flow at (x, y). Out-of-range queries clamp.
func (f *VectorField) SampleAt(x, y float64) Vec2 {
	cx, cy := f.cellIndex(x, y)
	return f.cells[cy*f.cols+cx]
}

// CellAt returns the flow stored in grid cell (cx, cy), clamped to the grid.
func (f *VectorField) CellAt(cx, cy int) Vec2 {
	if cx < 0 {
		cx = 0
	} else if cx >= f.cols {
		cx = f.cols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= f.rows {
		cy = f.rows - 1
	}
	return f.cells[cy*f.cols+cx]
}

// forCellsNear calls fn with the index and center of every cell whose
// center lies within reach of (x, y).
func (f *VectorField) forCellsNear(x, y, reach float64, fn func(i int, px, py float64)) {
	res := f.cfg.Resolution
	x0, y0 := f.cellIndex(x-reach, y-reach)
	x1, y1 := f.cellIndex(x+reach, y+reach)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			fn(cy*f.cols+cx, (float64(cx)+0.5)*res, (float64(cy)+0.5)*res)
		}
	}
}

// AddLocalImpulse pushes cells within the impulse radius along force,
// with a linear falloff toward the edge. Applied at the next Update.
func (f *VectorField) AddLocalImpulse(x, y float64, force Vec2, strength float64) {
	radius := f.cfg.ImpulseRadius
	if !force.IsFinite() || math.IsNaN(x) || math.IsNaN(y) || !(radius > 0) {
		return
	}
	f.forCellsNear(x, y, radius, func(i int, px, py float64) {
		d := Distance(x, y, px, py)
		if d >= radius {
			return
		}
		f.pending[i] = f.pending[i].Add(force.Scale(strength * (1 - d/radius)))
		f.hasPending = true
	})
}

// ApplyRadialImpulses perturbs cells near each ring's current radius.
// The push is mostly tangential, with ring_radial_mix of it pointing outward
// so the wave visibly travels. Applied at the next Update.
func (f *VectorField) ApplyRadialImpulses(rings []RadialImpulse) {
	band := f.cfg.RingBand
	mix := Clamp01(f.cfg.RingRadialMix)
	for _, r := range rings {
		if !(r.Radius > 0) || r.Strength == 0 || math.IsNaN(r.X) || math.IsNaN(r.Y) {
			continue
		}
		f.forCellsNear(r.X, r.Y, r.Radius+band, func(i int, px, py float64) {
			dx, dy := px-r.X, py-r.Y
			d := math.Hypot(dx, dy)
			if d == 0 {
				return
			}
			off := math.Abs(d - r.Radius)
			if off >= band {
				return
			}
			w := (1 - off/band) * r.Strength
			ux, uy := dx/d, dy/d
			push := Vec2{-uy, ux}.Scale(1 - mix).Add(Vec2{ux, uy}.Scale(mix))
			f.pending[i] = f.pending[i].Add(push.Scale(w))
			f.hasPending = true
		})
	}
}

// Turbulence exposes the shared turbulence controller.
func (f *VectorField) Turbulence() *Turbulence { return f.turb }

// TurbulenceLevel returns the current turbulence in [0, max].
func (f *VectorField) TurbulenceLevel() float64 { return f.turb.Level() }

// SetTurbulence overrides the turbulence level.
func (f *VectorField) SetTurbulence(level float64) { f.turb.Set(level) }

// AddTurbulence feeds a pointer speed sample.
func (f *VectorField) AddTurbulence(speed float64) { f.turb.Add(speed) }

// DecayTurbulence runs the per-frame decay.
func (f *VectorField) DecayTurbulence() { f.turb.Decay() }

// GridSize returns the grid dimensions in cells.
func (f *VectorField) GridSize() (int, int) { return f.cols, f.rows }

// Resolution returns the cell size in pixels.
func (f *VectorField) Resolution() float64 { return f.cfg.Resolution }

// Frame returns the number of completed updates.
func (f *VectorField) Frame() int { return f.frame }

// Bounds returns the canvas size the field covers.
func (f *VectorField) Bounds() (float64, float64) { return f.width, f.height }
