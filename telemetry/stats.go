package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Clock            string  `csv:"clock"`

	// Spawns during window
	SecondDrops int `csv:"second_drops"`
	MinuteDrops int `csv:"minute_drops"`
	HourDrops   int `csv:"hour_drops"`
	ChimeDrops  int `csv:"chime_drops"`
	Drips       int `csv:"drips"`

	Stamps        int `csv:"stamps"`
	Chimes        int `csv:"chimes"`
	HourResets    int `csv:"hour_resets"`
	PoolMisses    int `csv:"pool_misses"`
	EntityErrors  int `csv:"entity_errors"`
	PointerEvents int `csv:"pointer_events"`

	// Population
	LiveDropsMean float64 `csv:"live_drops_mean"`
	LiveDropsMax  int     `csv:"live_drops_max"`
	LiveDrips     int     `csv:"live_drips"`

	// Turbulence distribution over the window's frames
	TurbulenceMean float64 `csv:"turbulence_mean"`
	TurbulenceP50  float64 `csv:"turbulence_p50"`
	TurbulenceP90  float64 `csv:"turbulence_p90"`
	TurbulenceMax  float64 `csv:"turbulence_max"`
}

// Summarize returns mean, median, 90th percentile and max of values.
// Returns zeros for an empty slice.
func Summarize(values []float64) (mean, p50, p90, max float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	max = floats.Max(sorted)
	return mean, p50, p90, max
}

// Spawns returns the total number of drops spawned in the window.
func (s WindowStats) Spawns() int {
	return s.SecondDrops + s.MinuteDrops + s.HourDrops + s.ChimeDrops
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("clock", s.Clock),
		slog.Int("spawns", s.Spawns()),
		slog.Int("drips", s.Drips),
		slog.Int("stamps", s.Stamps),
		slog.Int("chimes", s.Chimes),
		slog.Int("hour_resets", s.HourResets),
		slog.Int("pool_misses", s.PoolMisses),
		slog.Int("entity_errors", s.EntityErrors),
		slog.Float64("live_drops_mean", s.LiveDropsMean),
		slog.Float64("turbulence_mean", s.TurbulenceMean),
		slog.Float64("turbulence_p90", s.TurbulenceP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"clock", s.Clock,
		"second_drops", s.SecondDrops,
		"minute_drops", s.MinuteDrops,
		"hour_drops", s.HourDrops,
		"chime_drops", s.ChimeDrops,
		"drips", s.Drips,
		"stamps", s.Stamps,
		"chimes", s.Chimes,
		"hour_resets", s.HourResets,
		"pool_misses", s.PoolMisses,
		"entity_errors", s.EntityErrors,
		"pointer_events", s.PointerEvents,
		"live_drops_mean", s.LiveDropsMean,
		"live_drops_max", s.LiveDropsMax,
		"live_drips", s.LiveDrips,
		"turbulence_mean", s.TurbulenceMean,
		"turbulence_p50", s.TurbulenceP50,
		"turbulence_p90", s.TurbulenceP90,
		"turbulence_max", s.TurbulenceMax,
	)
}
