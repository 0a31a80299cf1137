// Flow field preview tool - interactive tuning of the fluid noise with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/systems"
)

const (
	windowWidth  = 1040
	windowHeight = 720
	previewW     = 640
	previewH     = 400
	panelX       = previewW + 30
	panelWidth   = windowWidth - panelX - 20
)

// FieldParams holds the tunable fluid settings.
type FieldParams struct {
	Resolution  float32
	NoiseScale  float32
	NoiseSpeed  float32
	AngleSpread float32
	Magnitude   float32
	Perlin      bool
	Seed        int64
}

func paramsFrom(cfg config.FluidConfig) FieldParams {
	return FieldParams{
		Resolution:  float32(cfg.Resolution),
		NoiseScale:  float32(cfg.NoiseScale),
		NoiseSpeed:  float32(cfg.NoiseSpeed),
		AngleSpread: float32(cfg.AngleSpread),
		Magnitude:   float32(cfg.Magnitude),
		Perlin:      cfg.NoiseBackend == "perlin",
		Seed:        1,
	}
}

func (p FieldParams) apply(cfg config.FluidConfig) config.FluidConfig {
	cfg.Resolution = math.Round(float64(p.Resolution))
	cfg.NoiseScale = float64(p.NoiseScale)
	cfg.NoiseSpeed = float64(p.NoiseSpeed)
	cfg.AngleSpread = float64(p.AngleSpread)
	cfg.Magnitude = float64(p.Magnitude)
	cfg.NoiseBackend = "simplex"
	if p.Perlin {
		cfg.NoiseBackend = "perlin"
	}
	return cfg
}

func (p FieldParams) yaml() string {
	backend := "simplex"
	if p.Perlin {
		backend = "perlin"
	}
	return fmt.Sprintf(`fluid:
  resolution: %.0f
  noise_scale: %.4f
  noise_speed: %.4f
  noise_backend: %s
  angle_spread: %.2f
  magnitude: %.2f`,
		math.Round(float64(p.Resolution)), p.NoiseScale, p.NoiseSpeed, backend, p.AngleSpread, p.Magnitude)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	defaults := paramsFrom(cfg.Fluid)
	params := defaults

	rl.InitWindow(windowWidth, windowHeight, "Flow Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(previewW, previewH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	pixels := make([]color.RGBA, previewW*previewH)

	field, err := buildField(cfg, params)
	if err != nil {
		slog.Error("failed to build field", "error", err)
		os.Exit(1)
	}

	animating := true
	showArrows := true
	needsRebuild := false

	for !rl.WindowShouldClose() {
		if needsRebuild {
			f, err := buildField(cfg, params)
			if err != nil {
				slog.Warn("field_rebuild_failed", "error", err)
			} else {
				field = f
			}
			needsRebuild = false
		}
		if animating || field.Frame() == 0 {
			field.Update()
		}

		// Drag inside the preview to test impulses and turbulence
		mouse := rl.GetMousePosition()
		delta := rl.GetMouseDelta()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) && mouse.X < previewW+10 && mouse.Y < previewH+10 {
			speed := math.Hypot(float64(delta.X), float64(delta.Y))
			if speed > 0 {
				x, y := float64(mouse.X-10), float64(mouse.Y-10)
				dir := systems.Vec2{X: float64(delta.X), Y: float64(delta.Y)}.Scale(1 / speed)
				field.AddLocalImpulse(x, y, dir, speed*cfg.Fluid.DragForce)
				field.AddTurbulence(speed)
			}
		}
		field.DecayTurbulence()

		paintField(pixels, field)
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexture(texture, 10, 10, rl.White)
		if showArrows {
			drawArrows(field)
		}
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		cols, rows := field.GridSize()
		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Grid: %dx%d  Frame: %d  Turbulence: %.3f", cols, rows, field.Frame(), field.TurbulenceLevel()), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("Drag on the preview to push the fluid", 15, statsY+22, 14, rl.Gray)

		// Control panel
		y := float32(10)
		rl.DrawText("Flow Field Parameters", panelX, int32(y), 20, rl.DarkGray)
		y += 35

		if slider(&y, "Resolution (px per cell)", "%.0f", &params.Resolution, 6, 60) {
			needsRebuild = true
		}
		if slider(&y, "Noise scale", "%.4f", &params.NoiseScale, 0.005, 0.3) {
			needsRebuild = true
		}
		if slider(&y, "Noise speed (per frame)", "%.4f", &params.NoiseSpeed, 0, 0.03) {
			needsRebuild = true
		}
		if slider(&y, "Angle spread (turns)", "%.2f", &params.AngleSpread, 0.25, 4) {
			needsRebuild = true
		}
		if slider(&y, "Magnitude", "%.2f", &params.Magnitude, 0, 3) {
			needsRebuild = true
		}
		y += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 150, Height: 30}, toggleText(params.Perlin, "Backend: perlin", "Backend: simplex")) {
			params.Perlin = !params.Perlin
			needsRebuild = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: y, Width: 150, Height: 30}, toggleText(animating, "Pause", "Animate")) {
			animating = !animating
		}
		y += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 150, Height: 30}, toggleText(showArrows, "Hide Arrows", "Show Arrows")) {
			showArrows = !showArrows
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: y, Width: 150, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(1, 99999))
			needsRebuild = true
		}
		y += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 150, Height: 30}, "Reset All") {
			params = defaults
			needsRebuild = true
		}
		y += 50

		rl.DrawText("YAML Config:", panelX, int32(y), 16, rl.DarkGray)
		y += 25
		for _, line := range strings.Split(params.yaml(), "\n") {
			rl.DrawText(line, panelX, int32(y), 14, rl.Gray)
			y += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", panelX, windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(params.yaml())
		}

		rl.EndDrawing()
	}
}

func buildField(cfg *config.Config, p FieldParams) (*systems.VectorField, error) {
	fluid := p.apply(cfg.Fluid)
	noise, err := systems.NewNoise(fluid, p.Seed)
	if err != nil {
		return nil, err
	}
	return systems.NewVectorField(previewW, previewH, fluid, cfg.Turbulence, noise)
}

// slider draws a labelled slider and reports whether the value changed.
func slider(y *float32, label, format string, v *float32, min, max float32) bool {
	rl.DrawText(label, panelX, int32(*y), 14, rl.Gray)
	*y += 18
	nv := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		*v, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, *v), int32(panelX+panelWidth-70), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	if nv != *v {
		*v = nv
		return true
	}
	return false
}

// paintField colors each pixel by the flow direction of its cell.
func paintField(pixels []color.RGBA, field *systems.VectorField) {
	for y := 0; y < previewH; y++ {
		for x := 0; x < previewW; x++ {
			v := field.SampleAt(float64(x), float64(y))
			hue := math.Mod(math.Atan2(v.Y, v.X)*180/math.Pi+360, 360)
			val := 0.55 + 0.35*systems.Clamp01(v.Len()/2)
			r, g, b := colorful.Hsv(hue, 0.45, val).RGB255()
			pixels[y*previewW+x] = color.RGBA{R: r, G: g, B: b, A: 255}
		}
	}
}

func drawArrows(field *systems.VectorField) {
	res := field.Resolution()
	cols, rows := field.GridSize()
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			x := (float64(cx) + 0.5) * res
			y := (float64(cy) + 0.5) * res
			if x >= previewW || y >= previewH {
				continue
			}
			v := field.CellAt(cx, cy).Scale(res * 0.4)
			rl.DrawLine(int32(x)+10, int32(y)+10, int32(x+v.X)+10, int32(y+v.Y)+10, rl.Fade(rl.Black, 0.5))
		}
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
