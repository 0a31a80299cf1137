package game

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/particles"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

// smallConfig keeps canvases small so full frames stay cheap.
func smallConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("screen: {width: 200, height: 150}\n" + extra))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

type countingColors struct{ calls int }

func (c *countingColors) Color(minute, hour int, turbulence float64) colorful.Color {
	c.calls++
	return colorful.Color{R: 0.2, G: 0.3, B: 0.6}
}

type recordingSink struct {
	spawns     []float64
	turbulence []float64
	width      float64
}

func (s *recordingSink) PlaySpawn(x float64, minute int) { s.spawns = append(s.spawns, x) }
func (s *recordingSink) SetTurbulence(level float64)     { s.turbulence = append(s.turbulence, level) }
func (s *recordingSink) SetWidth(width float64)          { s.width = width }

func clockAt(h, m, s int, frac time.Duration) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + frac
}

func newTestGame(t *testing.T, cfg *config.Config, start time.Duration) (*Game, *countingColors, *recordingSink) {
	t.Helper()
	colors := &countingColors{}
	sink := &recordingSink{}
	g, err := New(cfg, Options{Seed: 7, Start: start, Colors: colors, Audio: sink})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g, colors, sink
}

func step(t *testing.T, g *Game, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
}

func TestScenario_SecondTickSpawnsDrop(t *testing.T) {
	g, colors, sink := newTestGame(t, smallConfig(t, ""), clockAt(0, 0, 10, 990*time.Millisecond))

	step(t, g, 1)
	if n := len(g.Drops()); n != 0 {
		t.Fatalf("baseline frame spawned %d drops", n)
	}

	step(t, g, 1)
	drops := g.Drops()
	if len(drops) != 1 {
		t.Fatalf("expected exactly one drop, got %d", len(drops))
	}
	d := drops[0]
	if d.Type() != particles.DropSecond {
		t.Errorf("type = %v, want second", d.Type())
	}
	if d.Age != 0 || d.IsDead() {
		t.Errorf("new drop age=%v dead=%v, want 0/false", d.Age, d.IsDead())
	}
	if colors.calls != 1 {
		t.Errorf("color provider asked %d times, want 1", colors.calls)
	}
	if len(sink.spawns) != 1 {
		t.Errorf("audio sink got %d spawns, want 1", len(sink.spawns))
	}
}

func TestScenario_HourResetClearsHistory(t *testing.T) {
	cfg := smallConfig(t, "")
	g, _, _ := newTestGame(t, cfg, clockAt(3, 20, 0, 0))

	for i := 0; i < 5; i++ {
		if _, err := g.spawnDrop(particles.DropMinute, 50+float64(i)*20, 60, systems.Vec2{}); err != nil {
			t.Fatal(err)
		}
	}
	step(t, g, 3)
	g.layers.History().FillEllipse(100, 75, 30, 30, renderer.Ink(colorful.Color{R: 0.5}, 1))
	g.field.SetTurbulence(0.8)
	if len(g.Drops()) == 0 {
		t.Fatal("setup: expected live drops")
	}

	g.handleEvent(systems.Event{Kind: systems.EventHourComplete})

	fresh := renderer.NewCanvas(cfg.Screen.Width, cfg.Screen.Height)
	if !bytes.Equal(g.layers.History().RGBA().Pix, fresh.RGBA().Pix) {
		t.Error("history not back to its empty state")
	}
	if !bytes.Equal(g.layers.Trail().RGBA().Pix, fresh.RGBA().Pix) {
		t.Error("trail not cleared")
	}
	if len(g.Drops()) != 0 || len(g.Drips()) != 0 {
		t.Errorf("collections not empty: %d drops, %d drips", len(g.Drops()), len(g.Drips()))
	}
	if g.pool.Live() != 0 {
		t.Errorf("pool still has %d live particles", g.pool.Live())
	}
	if g.Turbulence() != 0 {
		t.Errorf("turbulence = %v, want 0", g.Turbulence())
	}
}

func TestScenario_HourBoundaryThroughScheduler(t *testing.T) {
	cfg := smallConfig(t, "")
	g, _, _ := newTestGame(t, cfg, clockAt(4, 59, 59, 990*time.Millisecond))

	step(t, g, 2)
	if c := g.Clock(); c.Hour != 5 || c.Minute != 0 {
		t.Fatalf("clock = %v, want 05:00", c)
	}

	// hour, minute and second drops for the new hour, nothing older
	got := map[particles.DropType]int{}
	for _, d := range g.Drops() {
		got[d.Type()]++
	}
	if got[particles.DropHour] != 1 || got[particles.DropMinute] != 1 || got[particles.DropSecond] != 1 || len(g.Drops()) != 3 {
		t.Errorf("unexpected drops after the boundary: %v", got)
	}
	fresh := renderer.NewCanvas(cfg.Screen.Width, cfg.Screen.Height)
	if !bytes.Equal(g.layers.History().RGBA().Pix, fresh.RGBA().Pix) {
		t.Error("history should be empty right after the hour turns")
	}
}

func TestScenario_ChimeRingCounts(t *testing.T) {
	for _, tc := range []struct{ minute, rings int }{{15, 3}, {30, 6}, {45, 9}} {
		g, _, sink := newTestGame(t, smallConfig(t, ""), clockAt(1, tc.minute, 0, 0))
		g.handleEvent(systems.Event{Kind: systems.EventChime, ClockTime: systems.ClockTime{Hour: 1, Minute: tc.minute}})

		patterns := g.Patterns()
		if len(patterns) != 1 {
			t.Fatalf("minute %d: %d patterns, want 1", tc.minute, len(patterns))
		}
		if n := patterns[0].RingCount(); n != tc.rings {
			t.Errorf("minute %d: %d rings, want %d", tc.minute, n, tc.rings)
		}
		if len(g.pendingDrops) != 1 || g.pendingDrops[0].drop.Type() != particles.DropChime {
			t.Errorf("minute %d: expected one pending chime drop", tc.minute)
		}
		if len(sink.spawns) != 1 {
			t.Errorf("minute %d: %d audio cues, want 1", tc.minute, len(sink.spawns))
		}
	}
}

func TestChimeFromScheduler(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(2, 29, 59, 990*time.Millisecond))
	step(t, g, 2)

	patterns := g.Patterns()
	if len(patterns) != 1 || patterns[0].RingCount() != 6 {
		t.Fatalf("expected one 6-ring pattern at :30, got %d patterns", len(patterns))
	}

	// Run the pattern to completion; it must leave the effects layer
	frames := int(g.cfg.Chime.Duration) + 2
	step(t, g, frames)
	if len(g.Patterns()) != 0 {
		t.Error("completed pattern should be removed")
	}
}

func TestSunRepulsionIsDistanceLimited(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(0, 30, 0, 0))
	sun := g.Sun().Position()
	r := g.cfg.Sun.RepulsionRadius

	if f := g.Sun().RepulsionForce(sun.X+r, sun.Y); f.Len() != 0 {
		t.Errorf("force at radius = %v, want zero", f)
	}
	f := g.Sun().RepulsionForce(sun.X+r/2, sun.Y)
	if !(f.X > 0) {
		t.Errorf("force inside radius should point away from the sun, got %v", f)
	}
}

func TestSunTracksWholeMinute(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(0, 59, 30, 0))
	w, _ := g.Size()
	if x := g.Sun().Position().X; x != float64(w) {
		t.Errorf("sun at 59:30 x = %v, want right edge %d", x, w)
	}

	g, _, _ = newTestGame(t, smallConfig(t, ""), clockAt(0, 30, 45, 0))
	want := 30.0 / 59 * float64(w)
	step(t, g, 1)
	if x := g.Sun().Position().X; math.Abs(x-want) > 1e-9 {
		t.Errorf("sun at 30:45 x = %v, want %v", x, want)
	}
}

func TestPauseFreezesSimulation(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(0, 0, 0, 0))
	if _, err := g.spawnDrop(particles.DropMinute, 100, 75, systems.Vec2{}); err != nil {
		t.Fatal(err)
	}
	step(t, g, 3)
	d := g.Drops()[0]
	age, clock, frame := d.Age, g.Clock(), g.FrameCount()

	g.TogglePause()
	if !g.Paused() {
		t.Fatal("TogglePause did not pause")
	}
	step(t, g, 5)
	if d.Age != age || g.Clock() != clock || g.FrameCount() != frame {
		t.Error("paused frames must not advance the simulation")
	}
	if img := g.Frame(); img.Bounds().Dx() != 200 {
		t.Error("paused frames still composite")
	}

	g.SetPaused(false)
	step(t, g, 1)
	if d.Age <= age {
		t.Error("simulation should resume")
	}
}

func TestPointerInput(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(0, 0, 0, 0))

	g.PointerMove(100, 75, 3, 4)
	if g.Turbulence() != 0 {
		t.Error("slow drag should stay under the threshold")
	}
	g.PointerMove(100, 75, 30, 40)
	if g.Turbulence() <= 0 {
		t.Error("fast drag should raise turbulence")
	}
	g.PointerMove(100, 75, math.NaN(), 1)

	if err := g.PointerPress(80, 60); err != nil {
		t.Fatal(err)
	}
	if len(g.pendingDrops) != 1 {
		t.Fatalf("press should queue one drop, got %d", len(g.pendingDrops))
	}
	vel := g.pendingDrops[0].drop.Vel
	if vel.Len() == 0 || vel.Len() > maxLaunchSpeed+1e-9 {
		t.Errorf("launch velocity %v out of range", vel)
	}
	if vel.X <= 0 || vel.Y <= 0 {
		t.Errorf("launch velocity %v should follow the drag", vel)
	}

	// Impulse lands on the next field update
	step(t, g, 1)
	if len(g.Drops()) != 1 {
		t.Errorf("pointer drop should be active after a frame, got %d", len(g.Drops()))
	}
}

func TestDripsComeFromThePool(t *testing.T) {
	cfg := smallConfig(t, "sun: {repulsion_strength: 0}\n")
	g, _, _ := newTestGame(t, cfg, clockAt(0, 0, 0, 0))
	if _, err := g.spawnDrop(particles.DropHour, 100, 40, systems.Vec2{}); err != nil {
		t.Fatal(err)
	}
	step(t, g, cfg.Drop.BirthFrames+cfg.Drop.DripInterval+2)

	if g.PoolStats(particles.KindDrip).Acquired == 0 {
		t.Fatal("hour drop should have dripped")
	}
	var parent *particles.InkDrop
	for _, d := range g.Drops() {
		if d.Type() == particles.DropHour {
			parent = d
		}
	}
	if parent == nil {
		t.Fatal("hour drop missing")
	}
	found := false
	for _, d := range g.Drips() {
		if d.Parent() == parent {
			found = true
		}
	}
	if !found {
		t.Error("active drips should include the hour drop's child")
	}
}

func TestNilServicesFallBack(t *testing.T) {
	g, err := New(smallConfig(t, ""), Options{Seed: 1, Start: clockAt(0, 0, 10, 990*time.Millisecond)})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	if _, ok := g.audio.(silentSink); !ok {
		t.Errorf("nil audio should become the silent sink, got %T", g.audio)
	}
	step(t, g, 2)
	if len(g.Drops()) != 1 {
		t.Error("palette-backed spawn failed")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("nil config should fail")
	}
	cfg := smallConfig(t, "")
	cfg.Fluid.NoiseBackend = "worley"
	if _, err := New(cfg, Options{}); err == nil {
		t.Error("unknown noise backend should fail")
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	err := guard(func() { panic("boom") })
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("guard = %v", err)
	}
	if guard(func() {}) != nil {
		t.Error("clean call should return nil")
	}
}

func TestRemoveBrokenReleasesHandle(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(0, 0, 0, 0))
	if _, err := g.spawnDrop(particles.DropSecond, 10, 10, systems.Vec2{}); err != nil {
		t.Fatal(err)
	}
	h := g.pendingDrops[0].handle
	g.removeBroken(h, errors.New("bad entity"))
	if err := g.pool.Release(h); !errors.Is(err, particles.ErrStaleHandle) {
		t.Errorf("handle should be stale after removal, got %v", err)
	}
}

func TestResize(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(0, 0, 0, 0))
	if err := g.Resize(0, 10); err == nil {
		t.Error("zero width should fail")
	}
	if err := g.Resize(120, 90); err != nil {
		t.Fatal(err)
	}
	step(t, g, 1)
	if b := g.Frame().Bounds(); b.Dx() != 120 || b.Dy() != 90 {
		t.Errorf("frame size %v after resize", b)
	}
}

func TestResizeUpdatesAudioWidth(t *testing.T) {
	g, _, sink := newTestGame(t, smallConfig(t, ""), clockAt(0, 0, 0, 0))
	if err := g.Resize(320, 90); err != nil {
		t.Fatal(err)
	}
	if sink.width != 320 {
		t.Errorf("audio width = %v after resize, want 320", sink.width)
	}
}

func TestTrailFadeKeepsPaperVisible(t *testing.T) {
	g, _, _ := newTestGame(t, smallConfig(t, ""), clockAt(0, 0, 0, 0))
	step(t, g, 300)

	frame := g.FrameRGBA()
	layers := g.Layers()
	paper := layers.Background().RGBA()
	overlays := []*renderer.Canvas{layers.Trail(), layers.History(), layers.Effects(), layers.Active()}

	w, h := g.Size()
	bare := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inked := false
			for _, c := range overlays {
				if c.RGBA().RGBAAt(x, y).A != 0 {
					inked = true
					break
				}
			}
			if inked {
				continue
			}
			bare++
			if got, want := frame.RGBAAt(x, y), paper.RGBAAt(x, y); got != want {
				t.Fatalf("uninked pixel (%d,%d) = %v, want paper %v", x, y, got, want)
			}
		}
	}
	if bare == 0 {
		t.Fatal("no pixel shows the paper after 300 frames")
	}
}

func TestTelemetryOutput(t *testing.T) {
	out := t.TempDir()
	snaps := t.TempDir()
	cfg := smallConfig(t, "telemetry: {stats_window: 0.05}\n")
	g, err := New(cfg, Options{
		Seed:          3,
		Start:         clockAt(0, 0, 10, 990*time.Millisecond),
		Audio:         &recordingSink{},
		OutputDir:     out,
		SnapshotDir:   snaps,
		SnapshotEvery: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	step(t, g, 6)
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(out, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	rows := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(rows) < 2 {
		t.Errorf("expected header and windows, got:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(out, "config.yaml")); err != nil {
		t.Errorf("config not written: %v", err)
	}
	pngs, _ := filepath.Glob(filepath.Join(snaps, "*.png"))
	if len(pngs) != 3 {
		t.Errorf("expected 3 snapshots, got %d", len(pngs))
	}
	if !strings.Contains(g.Summary(), "windows=") {
		t.Error("summary missing totals")
	}
}
