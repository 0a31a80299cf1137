package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkclock/telemetry"
)

// HUDData holds all the data needed to render the clock HUD.
type HUDData struct {
	Clock      string
	Frame      int64
	Drops      int
	Drips      int
	Patterns   int
	Turbulence float64
	SunTint    colorful.Color
	FPS        int32
	Paused     bool
}

// HUD renders the heads-up display.
type HUD struct {
	renderer *Renderer
	sections []SectionDescriptor
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		sections: hudSections(),
		width:    240,
	}
}

func hudData(d any) HUDData {
	v, _ := d.(HUDData)
	return v
}

func hudSections() []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID: "ink",
			Fields: []FieldDescriptor{
				{ID: "drops", Label: "Drops", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float32 { return float32(hudData(d).Drops) }},
				{ID: "drips", Label: "Drips", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float32 { return float32(hudData(d).Drips) }},
				{ID: "rings", Label: "Rings", Widget: WidgetText, Format: "%.0f",
					Getter:  func(d any) float32 { return float32(hudData(d).Patterns) },
					Visible: func(d any) bool { return hudData(d).Patterns > 0 }},
				{ID: "turbulence", Label: "Turbulence", Widget: WidgetBar,
					Getter: func(d any) float32 { return float32(hudData(d).Turbulence) }},
				{ID: "sun", Label: "Sun", Widget: WidgetColorSwatch,
					ColorGetter: func(d any) rl.Color {
						r, g, b := hudData(d).SunTint.Clamped().RGB255()
						return rl.Color{R: r, G: g, B: b, A: 255}
					}},
			},
		},
		{
			ID: "status",
			Fields: []FieldDescriptor{
				{ID: "frame", Label: "Frame", Widget: WidgetText,
					TextGetter: func(d any) string { return fmt.Sprintf("%d", hudData(d).Frame) }},
				{ID: "fps", Label: "FPS", Widget: WidgetText,
					TextGetter: func(d any) string { return fmt.Sprintf("%d", hudData(d).FPS) }},
			},
		},
	}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding

	height := pad*2 + 24
	for _, sd := range h.sections {
		height += r.SectionHeight(sd, data)
	}
	r.DrawPanel(8, 8, h.width, height)

	x, y := 8+pad, 8+pad
	title := data.Clock
	if data.Paused {
		title += "  PAUSED"
	}
	rl.DrawText(title, x, y, 20, r.Theme.ValueColor)
	y += 24

	for _, sd := range h.sections {
		y = r.DrawSection(x, y, sd, data, h.width-pad*2)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	lines := PerfLines(stats)
	r.DrawPanel(p.x, p.y, 250, int32(len(lines))*14+46)

	x, y := p.x+r.Theme.Padding, p.y+r.Theme.Padding
	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Step: %s", stats.AvgStepDuration.Round(time.Microsecond)), x, y, 14, r.Theme.SectionHeader)
	y += 16

	for _, line := range lines {
		color := rl.LightGray
		if line.Pct > 40 {
			color = rl.Red
		} else if line.Pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(line.Text, x, y, 12, color)
		y += 14
	}
}

// PerfLine is one formatted row of the perf panel.
type PerfLine struct {
	Phase string
	Pct   float64
	Text  string
}

// PerfLines formats the phases that recorded time, in execution order.
func PerfLines(stats telemetry.PerfStats) []PerfLine {
	var out []PerfLine
	for _, phase := range telemetry.Phases {
		avg, ok := stats.PhaseAvg[phase]
		if !ok {
			continue
		}
		pct := stats.PhasePct[phase]
		out = append(out, PerfLine{
			Phase: phase,
			Pct:   pct,
			Text:  fmt.Sprintf("%-11s %7s %5.1f%%", phase, avg.Round(time.Microsecond), pct),
		})
	}
	return out
}
