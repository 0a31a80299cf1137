package particles

import (
	"errors"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
)

var chimeInk = colorful.Color{R: 0.5, G: 0.2, B: 0.9}

func newTestPattern(t *testing.T, minute int) *CymaticPattern {
	t.Helper()
	p, err := NewCymaticPattern(300, 200, minute, 600, config.Cfg().Chime, chimeInk)
	if err != nil {
		t.Fatalf("NewCymaticPattern(%d): %v", minute, err)
	}
	return p
}

func TestCymaticRingCount(t *testing.T) {
	for minute, want := range map[int]int{15: 3, 30: 6, 45: 9} {
		if got := newTestPattern(t, minute).RingCount(); got != want {
			t.Errorf("minute %d: %d rings, want %d", minute, got, want)
		}
	}
	for _, minute := range []int{0, 10, 20, 59} {
		if _, err := NewCymaticPattern(0, 0, minute, 600, config.Cfg().Chime, chimeInk); !errors.Is(err, ErrNotChime) {
			t.Errorf("minute %d: expected ErrNotChime, got %v", minute, err)
		}
	}
}

func TestCymaticTargetRadii(t *testing.T) {
	p := newTestPattern(t, 30)
	maxRadius := 600 * config.Cfg().Chime.MaxRadiusFraction
	rings := p.Rings()
	for i, r := range rings {
		want := float64(i+1) * maxRadius / 6
		if r.Target != want {
			t.Errorf("ring %d target %v, want %v", i, r.Target, want)
		}
	}
}

func TestCymaticRingActivationOrdering(t *testing.T) {
	p := newTestPattern(t, 30)
	cfg := config.Cfg().Chime
	prev := make([]float64, p.RingCount())

	for frame := 1; float64(frame) <= cfg.Duration; frame++ {
		p.Update()
		for i, r := range p.Rings() {
			switch {
			case p.Age() < r.Start:
				if r.Radius != 0 {
					t.Fatalf("ring %d radius %v before start %v (age %v)", i, r.Radius, r.Start, p.Age())
				}
			case p.Age() > r.Start && r.Radius < r.Target:
				if r.Radius <= prev[i] {
					t.Fatalf("ring %d radius not increasing at age %v: %v <= %v", i, p.Age(), r.Radius, prev[i])
				}
			}
			if r.Radius > r.Target+1e-9 {
				t.Fatalf("ring %d overshot its target", i)
			}
			prev[i] = r.Radius
		}
	}
}

func TestCymaticImpulsesAndCompletion(t *testing.T) {
	p := newTestPattern(t, 15)
	cfg := config.Cfg().Chime

	// Only ring 0 has started after one frame.
	impulses := p.Update()
	if len(impulses) != 1 {
		t.Fatalf("expected 1 active ring, got %d", len(impulses))
	}
	if imp := impulses[0]; imp.X != 300 || imp.Y != 200 || imp.Radius <= 0 || imp.Strength <= 0 {
		t.Errorf("bad impulse %+v", imp)
	}

	for !p.Complete() {
		p.Update()
		if p.Age() > cfg.Duration+2 {
			t.Fatal("pattern never completed")
		}
	}
	if len(p.Update()) != 0 {
		t.Error("complete pattern should not push the fluid")
	}
}

func TestCymaticRender(t *testing.T) {
	p := newTestPattern(t, 45)
	for i := 0; i < 40; i++ {
		p.Update()
	}
	c := renderer.NewCanvas(600, 400)
	p.Render(c)
	r := p.Rings()[0]
	if px := c.RGBA().RGBAAt(300+int(r.Radius), 200); px.A == 0 {
		t.Errorf("expected a stroke on ring 0 at radius %v", r.Radius)
	}
}
