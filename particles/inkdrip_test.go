package particles

import (
	"math"
	"testing"

	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

func newTestDrip(t *testing.T, env *Env, x, y float64, parent *InkDrop) *InkDrip {
	t.Helper()
	d, err := NewBlankInkDrip(env)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Reset(x, y, SpawnParams{Color: testInk, Parent: parent, ParentSize: 20}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestInkDripShrinks(t *testing.T) {
	env := newTestEnv()
	d := newTestDrip(t, env, 100, 10, nil)
	rate := env.Cfg.Drip.ShrinkRate
	if want := 20 * env.Cfg.Drip.StartFraction; math.Abs(d.Radius()-want) > 1e-12 {
		t.Fatalf("start radius %v, want %v", d.Radius(), want)
	}

	r0 := d.Radius()
	d.Update()
	if math.Abs(r0-d.Radius()-rate) > 1e-12 {
		t.Errorf("shrank by %v, want %v", r0-d.Radius(), rate)
	}

	d.parentDied = true
	r1 := d.Radius()
	d.Update()
	if math.Abs(r1-d.Radius()-2*rate) > 1e-12 {
		t.Errorf("shrank by %v after parent death, want %v", r1-d.Radius(), 2*rate)
	}
}

func TestInkDripShrunkAwayLeavesNoStamp(t *testing.T) {
	env := newTestEnv()
	cfg := *env.Cfg
	cfg.Drip.Gravity = 0
	env.Cfg = &cfg
	d := newTestDrip(t, env, 100, 10, nil)
	for i := 0; i < 10000 && !d.IsDead(); i++ {
		d.Update()
	}
	if !d.IsDead() {
		t.Fatal("drip never died")
	}
	if d.Radius() != 0 {
		t.Errorf("radius at death = %v", d.Radius())
	}
	history := renderer.NewCanvas(400, 300)
	if d.ShouldStamp() || d.Stamp(history) {
		t.Error("a drip with no ink left should not stamp")
	}
}

func TestInkDripLeavingBottomDies(t *testing.T) {
	env := newTestEnv()
	d := newTestDrip(t, env, 100, env.Height-0.5, nil)
	d.Vel = systems.Vec2{Y: 2}
	d.Update()
	if !d.IsDead() {
		t.Fatalf("drip below the canvas should die, pos %v", d.Position())
	}
	if !d.ShouldStamp() {
		t.Fatal("drip with ink left should stamp")
	}
	history := renderer.NewCanvas(400, 300)
	if !d.Stamp(history) {
		t.Fatal("expected a residue stamp")
	}
	if d.ShouldStamp() || d.Stamp(history) {
		t.Error("stamped twice")
	}
}

func TestInkDripWrapsHorizontally(t *testing.T) {
	env := newTestEnv()
	d := newTestDrip(t, env, env.Width-0.5, 50, nil)
	d.Vel = systems.Vec2{X: 2}
	d.Update()
	if x := d.Position().X; x < 0 || x > 5 {
		t.Errorf("expected horizontal wrap, x=%v", x)
	}
}

func TestInkDripSpeedCapped(t *testing.T) {
	env := newTestEnv()
	d := newTestDrip(t, env, 100, 0, nil)
	d.Vel = systems.Vec2{X: 50, Y: 50}
	d.Update()
	if s := d.Vel.Len(); s > env.Cfg.Drip.MaxSpeed+1e-9 {
		t.Errorf("speed %v exceeds cap %v", s, env.Cfg.Drip.MaxSpeed)
	}
}
