package telemetry

// Collector accumulates frame events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec    float64
	windowDurationFrames int64
	frameSeconds         float64

	windowStartFrame int64

	// Event counters for current window
	spawns        [4]int
	stamps        int
	dripSpawns    int
	poolMisses    int
	entityErrors  int
	chimes        int
	hourResets    int
	pointerEvents int

	// Per-frame samples for the current window
	turbulence []float64
	liveDrops  []float64
}

// Spawn kinds, indexed the same way as particles.DropType.
const (
	SpawnSecond = iota
	SpawnMinute
	SpawnHour
	SpawnChime
)

// NewCollector creates a new stats collector.
// windowDurationSec is measured in simulated seconds; frameSeconds is the
// simulated time one frame advances.
func NewCollector(windowDurationSec, frameSeconds float64) *Collector {
	frames := int64(1)
	if frameSeconds > 0 {
		frames = int64(windowDurationSec / frameSeconds)
	}
	if frames < 1 {
		frames = 1
	}
	return &Collector{
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: frames,
		frameSeconds:         frameSeconds,
	}
}

// RecordSpawn records a drop spawn of the given kind.
func (c *Collector) RecordSpawn(kind int) {
	if kind >= 0 && kind < len(c.spawns) {
		c.spawns[kind]++
	}
}

func (c *Collector) RecordStamp()        { c.stamps++ }
func (c *Collector) RecordDripSpawn()    { c.dripSpawns++ }
func (c *Collector) RecordPoolMiss()     { c.poolMisses++ }
func (c *Collector) RecordEntityError()  { c.entityErrors++ }
func (c *Collector) RecordChime()        { c.chimes++ }
func (c *Collector) RecordHourReset()    { c.hourResets++ }
func (c *Collector) RecordPointerEvent() { c.pointerEvents++ }

// SampleFrame records the per-frame gauges.
func (c *Collector) SampleFrame(turbulence float64, liveDrops int) {
	c.turbulence = append(c.turbulence, turbulence)
	c.liveDrops = append(c.liveDrops, float64(liveDrops))
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int64) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces a WindowStats and resets counters for the next window.
// clock is the simulated wall-clock reading at the end of the window.
func (c *Collector) Flush(currentFrame int64, clock string, liveDrips int) WindowStats {
	turbMean, turbP50, turbP90, turbMax := Summarize(c.turbulence)
	dropMean, _, _, dropMax := Summarize(c.liveDrops)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       float64(currentFrame) * c.frameSeconds,
		Clock:            clock,
		SecondDrops:      c.spawns[SpawnSecond],
		MinuteDrops:      c.spawns[SpawnMinute],
		HourDrops:        c.spawns[SpawnHour],
		ChimeDrops:       c.spawns[SpawnChime],
		Drips:            c.dripSpawns,
		Stamps:           c.stamps,
		Chimes:           c.chimes,
		HourResets:       c.hourResets,
		PoolMisses:       c.poolMisses,
		EntityErrors:     c.entityErrors,
		PointerEvents:    c.pointerEvents,
		LiveDropsMean:    dropMean,
		LiveDropsMax:     int(dropMax),
		LiveDrips:        liveDrips,
		TurbulenceMean:   turbMean,
		TurbulenceP50:    turbP50,
		TurbulenceP90:    turbP90,
		TurbulenceMax:    turbMax,
	}

	c.windowStartFrame = currentFrame
	c.spawns = [4]int{}
	c.stamps = 0
	c.dripSpawns = 0
	c.poolMisses = 0
	c.entityErrors = 0
	c.chimes = 0
	c.hourResets = 0
	c.pointerEvents = 0
	c.turbulence = c.turbulence[:0]
	c.liveDrops = c.liveDrops[:0]

	return stats
}

// WindowDurationFrames returns the window length in frames.
func (c *Collector) WindowDurationFrames() int64 {
	return c.windowDurationFrames
}
