package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/inkclock/audio"
	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/game"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	start := flag.String("start", "", "Clock start as HH:MM:SS or \"now\" (empty = use config)")
	timeScale := flag.Float64("time-scale", 0, "Simulated seconds per real second (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for PNG frame snapshots")
	snapshotEvery := flag.Int64("snapshot-every", 600, "Frames between snapshots")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if err := cfg.OverrideClock(*start, *timeScale); err != nil {
		slog.Error("invalid clock flags", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:          rngSeed,
		Start:         cfg.StartOffset(time.Now()),
		LogStats:      *logStats,
		OutputDir:     *outputDir,
		SnapshotDir:   *snapshotDir,
		SnapshotEvery: *snapshotEvery,
	}

	var err error
	if *headless {
		err = runHeadless(cfg, opts, *maxFrames)
	} else {
		err = runWindow(cfg, opts, *maxFrames)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless steps the simulation without a window and prints a summary.
func runHeadless(cfg *config.Config, opts game.Options, maxFrames int64) error {
	opts.Audio = silent{}
	g, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"clock", g.Clock().String(),
		"max_frames", maxFrames,
	)

	for maxFrames <= 0 || g.FrameCount() < maxFrames {
		if err := g.Step(); err != nil {
			return err
		}
	}
	slog.Info("max frames reached", "frame", g.FrameCount(), "clock", g.Clock().String())
	fmt.Print(g.Summary())
	return nil
}

// runWindow drives the simulation from the raylib frame loop.
func runWindow(cfg *config.Config, opts game.Options, maxFrames int64) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Ink Clock")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	if cfg.Audio.Enabled {
		synth := audio.NewSynth(cfg.Audio, float64(cfg.Screen.Width))
		if err := synth.Start(); err != nil {
			slog.Warn("audio_unavailable", "error", err)
		} else {
			defer synth.Close()
			opts.Audio = synth
		}
	}

	g, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	presenter := renderer.NewPresenter(cfg.Screen.Width, cfg.Screen.Height)
	presenter.Init()
	defer presenter.Unload()

	hud := ui.NewHUD()
	perfPanel := ui.NewPerfPanel(int32(cfg.Screen.Width)-260, 8)
	showHUD := false
	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() {
			w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
			if err := g.Resize(w, h); err != nil {
				slog.Warn("resize_failed", "error", err)
			} else {
				presenter.Resize(w, h)
				perfPanel.SetPosition(int32(w)-260, 8)
			}
		}
		handleInput(g, &showHUD)

		if err := g.Step(); err != nil {
			return err
		}
		presenter.Upload(g.FrameRGBA())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		presenter.Draw()
		if showHUD {
			hud.Draw(hudData(g))
			perfPanel.Draw(g.PerfStats())
			hud.DrawControls(int32(rl.GetScreenHeight()), "SPACE pause  H hud  F11 fullscreen  drag stir  click drop")
		}
		rl.EndDrawing()

		if maxFrames > 0 && g.FrameCount() >= maxFrames {
			break
		}
	}
	return nil
}

// handleInput forwards pointer and keyboard input to the game.
func handleInput(g *game.Game, showHUD *bool) {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		*showHUD = !*showHUD
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	pos := rl.GetMousePosition()
	delta := rl.GetMouseDelta()
	if delta.X != 0 || delta.Y != 0 {
		g.PointerMove(float64(pos.X), float64(pos.Y), float64(delta.X), float64(delta.Y))
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if err := g.PointerPress(float64(pos.X), float64(pos.Y)); err != nil {
			slog.Warn("pointer_spawn_failed", "error", err)
		}
	}
}

func hudData(g *game.Game) ui.HUDData {
	return ui.HUDData{
		Clock:      g.Clock().String(),
		Frame:      g.FrameCount(),
		Drops:      len(g.Drops()),
		Drips:      len(g.Drips()),
		Patterns:   len(g.Patterns()),
		Turbulence: g.Turbulence(),
		SunTint:    g.Sun().Tint(),
		FPS:        rl.GetFPS(),
		Paused:     g.Paused(),
	}
}

// silent is the headless audio sink.
type silent struct{}

func (silent) PlaySpawn(float64, int) {}
func (silent) SetTurbulence(float64)  {}
