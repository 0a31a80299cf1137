package particles

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
)

func newTestSun() *SunDrop {
	return NewSunDrop(config.Cfg().Sun, 590, 400)
}

func TestSunPositionFollowsMinute(t *testing.T) {
	s := newTestSun()
	cases := []struct{ minute, x float64 }{{0, 0}, {29.5, 295}, {59, 590}, {59.9, 590}}
	for _, c := range cases {
		s.Update(c.minute)
		if math.Abs(s.Position().X-c.x) > 1e-9 {
			t.Errorf("minute %v: x = %v, want %v", c.minute, s.Position().X, c.x)
		}
		if want := config.Cfg().Sun.YFraction * 400; s.Position().Y != want {
			t.Errorf("y = %v, want %v", s.Position().Y, want)
		}
	}
}

func TestSunNeverDies(t *testing.T) {
	s := newTestSun()
	for i := 0; i < 100000; i++ {
		s.Update(float64(i % 60))
	}
	if s.IsDead() {
		t.Fatal("sun died")
	}
}

func TestSunRepulsionDistanceLimited(t *testing.T) {
	s := newTestSun()
	s.Update(29.5)
	p := s.Position()
	radius := config.Cfg().Sun.RepulsionRadius

	zero := [][2]float64{
		{p.X + radius, p.Y},
		{p.X, p.Y - radius - 1},
		{p.X + radius*3, p.Y + radius*3},
		{p.X, p.Y},
	}
	for _, q := range zero {
		if f := s.RepulsionForce(q[0], q[1]); f.X != 0 || f.Y != 0 {
			t.Errorf("force at %v = %v, want zero", q, f)
		}
	}

	for _, d := range []float64{0.5, radius / 2, radius - 0.01} {
		for _, dir := range [][2]float64{{1, 0}, {0, 1}, {-0.6, 0.8}} {
			x, y := p.X+dir[0]*d, p.Y+dir[1]*d
			f := s.RepulsionForce(x, y)
			if f.Len() == 0 {
				t.Errorf("force at distance %v is zero", d)
				continue
			}
			if f.X*dir[0]+f.Y*dir[1] <= 0 {
				t.Errorf("force %v at distance %v does not point away", f, d)
			}
		}
	}

	near := s.RepulsionForce(p.X+10, p.Y).Len()
	far := s.RepulsionForce(p.X+radius-10, p.Y).Len()
	if near <= far {
		t.Errorf("force should weaken with distance: near %v far %v", near, far)
	}
}

func TestSunTint(t *testing.T) {
	s := newTestSun()
	s.SetTint(colorful.Color{R: math.NaN()})
	if !ValidColor(s.Tint()) {
		t.Error("invalid tint accepted")
	}
	s.SetTint(colorful.Color{B: 1})
	if s.Tint() != (colorful.Color{B: 1}) {
		t.Error("valid tint rejected")
	}
}

func TestSunDisplay(t *testing.T) {
	s := newTestSun()
	s.Update(10)
	c := renderer.NewCanvas(590, 400)
	s.Display(c)
	p := s.Position()
	if px := c.RGBA().RGBAAt(int(p.X), int(p.Y)); px.A < 200 {
		t.Errorf("expected an opaque core, got %v", px)
	}
}
