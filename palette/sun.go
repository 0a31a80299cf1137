package palette

import (
	"math"

	"github.com/crazy3lf/colorconv"
	"github.com/lucasb-eyer/go-colorful"
)

// SunTint returns the sun color for an hour of day: a warm yellow at noon,
// orange-red toward dawn and dusk, a pale blue at night.
func SunTint(hour int) colorful.Color {
	daylight := math.Sin(math.Pi * float64((hour%24+24)%24-6) / 12)

	var hue, sat, val float64
	if daylight > 0 {
		hue = 15 + 40*daylight
		sat = 0.9 - 0.25*daylight
		val = 1
	} else {
		hue = 215
		sat = 0.35
		val = 0.95 + 0.2*daylight
	}

	r, g, b, err := colorconv.HSVToRGB(hue, sat, val)
	if err != nil {
		return colorful.Color{R: 1, G: 0.85, B: 0.4}
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
