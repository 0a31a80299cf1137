package particles

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

var testInk = colorful.Color{R: 0.2, G: 0.35, B: 0.6}

func newTestEnv() *Env {
	return &Env{
		Cfg:      config.Cfg(),
		Width:    400,
		Height:   300,
		Rand:     rand.New(rand.NewSource(1)),
		Stamp:    renderer.NewBleedStamp(),
		Splatter: renderer.DotSplatter{},
	}
}

// recorder logs the hooks the template calls.
type recorder struct {
	Particle
	calls  []string
	deaths int
}

func newRecorder(lifespan float64) *recorder {
	r := &recorder{}
	r.Lifespan = lifespan
	r.Init(r, rand.New(rand.NewSource(2)))
	return r
}

func (r *recorder) OnBeforeUpdate() { r.calls = append(r.calls, "before") }
func (r *recorder) UpdatePhysics() {
	r.calls = append(r.calls, "physics")
	r.Integrate()
}
func (r *recorder) OnAfterUpdate() { r.calls = append(r.calls, "after") }
func (r *recorder) OnDeath() {
	r.calls = append(r.calls, "death")
	r.deaths++
}
func (r *recorder) OnReset(params SpawnParams) error {
	r.calls = append(r.calls, "reset")
	return nil
}

func TestParticleLifecycleMonotonic(t *testing.T) {
	const lifespan = 10
	p := &Particle{Lifespan: lifespan}
	p.Init(nil, rand.New(rand.NewSource(1)))

	for n := 1; n <= 15; n++ {
		p.Update()
		if n < lifespan {
			if p.Dead {
				t.Fatalf("dead after %d updates, lifespan %d", n, lifespan)
			}
			if p.Age != float64(n) {
				t.Fatalf("age after %d updates = %v", n, p.Age)
			}
		} else if !p.Dead {
			t.Fatalf("alive after %d updates, lifespan %d", n, lifespan)
		}
	}
	if p.Age != lifespan {
		t.Errorf("age kept advancing after death: %v", p.Age)
	}
}

func TestParticleHookOrder(t *testing.T) {
	r := newRecorder(2)
	r.Update()
	r.Update()
	r.Update()

	want := []string{"before", "physics", "after", "before", "physics", "after", "death"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", r.calls, want)
		}
	}
}

func TestParticleDeathHookOnce(t *testing.T) {
	r := newRecorder(math.Inf(1))
	r.Kill()
	r.Kill()
	r.Update()
	if r.deaths != 1 {
		t.Errorf("OnDeath ran %d times, want 1", r.deaths)
	}
}

func TestParticleResetIdempotent(t *testing.T) {
	r := newRecorder(3)
	r.Vel = systems.Vec2{X: 4, Y: -2}
	for i := 0; i < 5; i++ {
		r.Update()
	}
	if !r.Dead {
		t.Fatal("expected particle to be dead")
	}

	for i := 0; i < 2; i++ {
		if err := r.Reset(12.5, 7.25, SpawnParams{}); err != nil {
			t.Fatal(err)
		}
		if r.Dead || r.Age != 0 {
			t.Fatalf("after reset: dead=%v age=%v", r.Dead, r.Age)
		}
		if r.Pos != (systems.Vec2{X: 12.5, Y: 7.25}) {
			t.Fatalf("after reset: pos=%v", r.Pos)
		}
		if r.Vel != (systems.Vec2{}) || r.Acc != (systems.Vec2{}) {
			t.Fatalf("after reset: vel=%v acc=%v", r.Vel, r.Acc)
		}
	}
	if r.calls[len(r.calls)-1] != "reset" {
		t.Errorf("OnReset not called last: %v", r.calls)
	}
}

func TestParticleResetDrawsNoiseOffsets(t *testing.T) {
	r := newRecorder(3)
	_ = r.Reset(0, 0, SpawnParams{})
	first := r.NoiseOffset
	_ = r.Reset(0, 0, SpawnParams{})
	if first == r.NoiseOffset {
		t.Error("expected fresh noise offsets on each reset")
	}
	if math.Abs(first.X) > 1 || math.Abs(first.Y) > 1 {
		t.Errorf("noise offset out of range: %v", first)
	}
}

func TestParticleIntegrate(t *testing.T) {
	p := &Particle{Friction: 0.5}
	p.Init(nil, nil)
	p.Acc = systems.Vec2{X: 2}
	p.Vel = systems.Vec2{X: 2, Y: 4}
	p.Update()
	if p.Vel != (systems.Vec2{X: 2, Y: 2}) {
		t.Errorf("vel = %v, want (2, 2)", p.Vel)
	}
	if p.Pos != (systems.Vec2{X: 2, Y: 2}) {
		t.Errorf("pos = %v, want (2, 2)", p.Pos)
	}
	if p.Acc != (systems.Vec2{}) {
		t.Errorf("acc not cleared: %v", p.Acc)
	}
}
