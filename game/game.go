package game

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/palette"
	"github.com/pthm-cable/inkclock/particles"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
	"github.com/pthm-cable/inkclock/telemetry"
)

type liveDrop struct {
	handle particles.Handle
	drop   *particles.InkDrop
}

type liveDrip struct {
	handle particles.Handle
	drip   *particles.InkDrip
}

// Game holds the complete application state. Nothing outside it is global
// except the loaded config.
type Game struct {
	cfg *config.Config
	rng *rand.Rand
	dt  time.Duration

	width, height int

	// Services
	colors ColorProvider
	audio  AudioSink

	// Simulation
	field     *systems.VectorField
	scheduler *systems.Scheduler
	sun       *particles.SunDrop
	env       *particles.Env
	pool      *particles.Pool

	// Collections
	drops        []liveDrop
	drips        []liveDrip
	pendingDrops []liveDrop
	pendingDrips []liveDrip
	patterns     []*particles.CymaticPattern

	// Rendering
	layers *renderer.Layers
	frame  *renderer.Canvas

	// Input
	lastDrag systems.Vec2

	// State
	frameCount int64
	paused     bool

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	history   telemetry.History
	output    *telemetry.OutputManager
	snapshots *telemetry.Snapshotter
	logStats  bool
}

// New builds a game from cfg. Construction fails fast on any bad setting.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		return nil, errors.New("game: nil config")
	}
	g := &Game{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		dt:        cfg.FrameDuration(),
		width:     cfg.Screen.Width,
		height:    cfg.Screen.Height,
		audio:     audioOrSilent(opts.Audio),
		scheduler: systems.NewScheduler(opts.Start),
		logStats:  opts.LogStats,
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Clock.FrameSeconds),
	}

	g.colors = opts.Colors
	if g.colors == nil {
		p, err := palette.New(cfg.Palette)
		if err != nil {
			return nil, fmt.Errorf("game: %w", err)
		}
		g.colors = p
	}

	noise := opts.Noise
	if noise == nil {
		n, err := systems.NewNoise(cfg.Fluid, opts.Seed)
		if err != nil {
			return nil, fmt.Errorf("game: %w", err)
		}
		noise = n
	}
	w, h := float64(g.width), float64(g.height)
	field, err := systems.NewVectorField(w, h, cfg.Fluid, cfg.Turbulence, noise)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g.field = field

	g.sun = particles.NewSunDrop(cfg.Sun, w, h)

	bg, err := renderer.NewBackground(cfg.Screen.Background, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	fade, err := colorful.Hex(cfg.Trail.FadeColor)
	if err != nil {
		return nil, fmt.Errorf("game: trail fade color: %w", err)
	}
	if g.layers, err = renderer.NewLayers(g.width, g.height, bg, fade); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g.frame = renderer.NewCanvas(g.width, g.height)

	g.env = &particles.Env{
		Cfg:        cfg,
		Width:      w,
		Height:     h,
		Rand:       g.rng,
		Stamp:      renderer.NewBleedStamp(),
		Splatter:   renderer.DotSplatter{},
		Fluid:      g.field,
		Repulsor:   g.sun,
		Turbulence: g.field,
		Drips:      g,
	}
	if g.pool, err = g.newPool(); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	if g.output, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if err := g.output.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if g.snapshots, err = telemetry.NewSnapshotter(opts.SnapshotDir, opts.SnapshotEvery); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	g.sun.SetTint(palette.SunTint(g.scheduler.Now().Hour))
	g.sun.Update(float64(g.scheduler.Now().Minute))
	return g, nil
}

// Resize reallocates every canvas-sized resource. Trail and history are lost;
// live particles are kept and wrap into the new bounds on their next update.
func (g *Game) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("game: resize to %dx%d", w, h)
	}
	if w == g.width && h == g.height {
		return nil
	}
	if err := g.field.Resize(float64(w), float64(h)); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	g.width, g.height = w, h
	g.layers.Resize(w, h)
	g.frame = renderer.NewCanvas(w, h)
	g.sun.Resize(float64(w), float64(h))
	g.env.Width, g.env.Height = float64(w), float64(h)
	if wa, ok := g.audio.(widthAware); ok {
		wa.SetWidth(float64(w))
	}
	return nil
}

// Close flushes telemetry output.
func (g *Game) Close() error {
	return g.output.Close()
}

// SetPaused freezes or resumes the simulation. Paused frames still composite.
func (g *Game) SetPaused(p bool) { g.paused = p }

// TogglePause flips the paused state.
func (g *Game) TogglePause() { g.paused = !g.paused }

func (g *Game) Paused() bool { return g.paused }

// Frame returns the last composited frame.
func (g *Game) Frame() image.Image { return g.frame.Image() }

// FrameRGBA returns the last composited frame as RGBA pixels for upload.
func (g *Game) FrameRGBA() *image.RGBA { return g.frame.RGBA() }

func (g *Game) FrameCount() int64           { return g.frameCount }
func (g *Game) Clock() systems.ClockTime    { return g.scheduler.Now() }
func (g *Game) Size() (int, int)            { return g.width, g.height }
func (g *Game) Field() *systems.VectorField { return g.field }
func (g *Game) Layers() *renderer.Layers    { return g.layers }
func (g *Game) Sun() *particles.SunDrop     { return g.sun }
func (g *Game) Turbulence() float64         { return g.field.TurbulenceLevel() }

func (g *Game) Patterns() []*particles.CymaticPattern {
	return append([]*particles.CymaticPattern(nil), g.patterns...)
}

// Drops returns the active drops.
func (g *Game) Drops() []*particles.InkDrop {
	out := make([]*particles.InkDrop, len(g.drops))
	for i, ld := range g.drops {
		out[i] = ld.drop
	}
	return out
}

// Drips returns the active drips.
func (g *Game) Drips() []*particles.InkDrip {
	out := make([]*particles.InkDrip, len(g.drips))
	for i, ld := range g.drips {
		out[i] = ld.drip
	}
	return out
}

// PoolStats reports pool traffic for kind.
func (g *Game) PoolStats(kind particles.Kind) particles.PoolStats { return g.pool.Stats(kind) }

// PerfStats reports step timing over the collector window.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perf.Stats() }

// Summary renders the telemetry history for the end of a headless run.
func (g *Game) Summary() string { return g.history.Summary() }
