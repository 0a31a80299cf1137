package telemetry

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// maxPlotWidth caps the chart width; longer runs are downsampled.
const maxPlotWidth = 72

// History keeps every flushed window for the end-of-run summary.
type History struct {
	windows []WindowStats
}

// Add appends a flushed window.
func (h *History) Add(s WindowStats) {
	h.windows = append(h.windows, s)
}

// Len returns the number of recorded windows.
func (h *History) Len() int { return len(h.windows) }

// Series extracts one value per window.
func (h *History) Series(f func(WindowStats) float64) []float64 {
	out := make([]float64, len(h.windows))
	for i, w := range h.windows {
		out[i] = f(w)
	}
	return out
}

// downsample averages data into at most n buckets.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(data) / n
		hi := (i + 1) * len(data) / n
		sum := 0.0
		for _, v := range data[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// Summary renders turbulence and spawn charts for a headless run.
func (h *History) Summary() string {
	if len(h.windows) == 0 {
		return "no telemetry windows recorded\n"
	}

	var b strings.Builder
	turb := h.Series(func(s WindowStats) float64 { return s.TurbulenceMean })
	spawns := h.Series(func(s WindowStats) float64 { return float64(s.Spawns()) })

	b.WriteString(plot(turb, "mean turbulence per window"))
	b.WriteString("\n\n")
	b.WriteString(plot(spawns, "drops spawned per window"))
	b.WriteString("\n")

	var stamps, misses, errs int
	for _, w := range h.windows {
		stamps += w.Stamps
		misses += w.PoolMisses
		errs += w.EntityErrors
	}
	fmt.Fprintf(&b, "\nwindows=%d stamps=%d pool_misses=%d entity_errors=%d\n",
		len(h.windows), stamps, misses, errs)
	return b.String()
}

func plot(data []float64, caption string) string {
	data = downsample(data, maxPlotWidth)
	if len(data) == 1 {
		// asciigraph needs two points to draw a line
		data = []float64{data[0], data[0]}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(len(data)),
		asciigraph.Caption(caption),
	)
}
