package game

import (
	"time"

	"github.com/pthm-cable/inkclock/systems"
)

// Options holds configuration for game initialization.
type Options struct {
	Seed  int64
	Start time.Duration // time of day the simulated clock starts at

	Colors ColorProvider // nil uses the configured palette
	Audio  AudioSink     // nil plays nothing
	Noise  systems.Noise // nil builds the configured backend from Seed

	LogStats      bool
	OutputDir     string
	SnapshotDir   string
	SnapshotEvery int64
}
