package systems

import "math"

// Vec2 is a 2D vector in canvas pixels (or pixels per frame).
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Limit caps the length of v at max.
func (v Vec2) Limit(max float64) Vec2 {
	l := v.Len()
	if l > max && l > 0 {
		return v.Scale(max / l)
	}
	return v
}

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Clamp clamps v between lo and hi.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 clamps v to the [0, 1] range.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Lerp interpolates linearly from a to b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseOutCubic maps t in [0,1] onto a curve that starts fast and settles.
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}

// Wrap wraps v into [0, size). Exiting one side re-enters the other.
func Wrap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
