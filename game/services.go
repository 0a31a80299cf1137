package game

import (
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorProvider picks the ink color for a spawn. Implementations must be pure.
type ColorProvider interface {
	Color(minute, hour int, turbulence float64) colorful.Color
}

// chimeColorer is implemented by providers with dedicated chime colors.
type chimeColorer interface {
	ChimeColor(minute int) colorful.Color
}

// AudioSink receives fire-and-forget sound cues.
type AudioSink interface {
	PlaySpawn(x float64, minute int)
	SetTurbulence(level float64)
}

// widthAware is implemented by sinks that pan by canvas position.
type widthAware interface {
	SetWidth(width float64)
}

type silentSink struct{}

func (silentSink) PlaySpawn(float64, int) {}
func (silentSink) SetTurbulence(float64)  {}

func audioOrSilent(a AudioSink) AudioSink {
	if a == nil {
		slog.Warn("dependency_missing", "dependency", "audio_sink", "effect", "silent")
		return silentSink{}
	}
	return a
}
