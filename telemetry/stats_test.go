package telemetry

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5, 0.3, 0.7, 0.2, 0.4, 0.6, 0.8, 1.0}
	mean, p50, p90, max := Summarize(values)

	if math.Abs(mean-0.55) > 1e-9 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if p50 != 0.5 {
		t.Errorf("p50 = %v, want 0.5", p50)
	}
	if p90 != 0.9 {
		t.Errorf("p90 = %v, want 0.9", p90)
	}
	if max != 1.0 {
		t.Errorf("max = %v, want 1.0", max)
	}
	if values[0] != 0.9 {
		t.Error("Summarize must not reorder its input")
	}
}

func TestSummarize_Empty(t *testing.T) {
	mean, p50, p90, max := Summarize(nil)
	if mean != 0 || p50 != 0 || p90 != 0 || max != 0 {
		t.Errorf("expected zeros, got %v %v %v %v", mean, p50, p90, max)
	}
}

func TestCollector_WindowAggregation(t *testing.T) {
	c := NewCollector(1.0, 0.25) // four frames per window

	if c.WindowDurationFrames() != 4 {
		t.Fatalf("window frames = %d, want 4", c.WindowDurationFrames())
	}

	c.RecordSpawn(SpawnSecond)
	c.RecordSpawn(SpawnSecond)
	c.RecordSpawn(SpawnMinute)
	c.RecordSpawn(SpawnChime)
	c.RecordSpawn(99)
	c.RecordStamp()
	c.RecordDripSpawn()
	c.RecordPoolMiss()
	c.RecordChime()
	for i, turb := range []float64{0, 0.2, 0.4, 0.6} {
		c.SampleFrame(turb, i+1)
	}

	if c.ShouldFlush(3) {
		t.Error("window should not flush before four frames")
	}
	if !c.ShouldFlush(4) {
		t.Fatal("window should flush after four frames")
	}

	s := c.Flush(4, "10:00:01", 2)
	if s.SecondDrops != 2 || s.MinuteDrops != 1 || s.ChimeDrops != 1 || s.HourDrops != 0 {
		t.Errorf("spawn counts wrong: %+v", s)
	}
	if s.Spawns() != 4 {
		t.Errorf("Spawns() = %d, want 4", s.Spawns())
	}
	if s.Stamps != 1 || s.Drips != 1 || s.PoolMisses != 1 || s.Chimes != 1 {
		t.Errorf("event counts wrong: %+v", s)
	}
	if math.Abs(s.TurbulenceMean-0.3) > 1e-9 || s.TurbulenceMax != 0.6 {
		t.Errorf("turbulence summary wrong: mean %v max %v", s.TurbulenceMean, s.TurbulenceMax)
	}
	if s.LiveDropsMax != 4 || s.LiveDrips != 2 {
		t.Errorf("population wrong: %+v", s)
	}
	if s.SimTimeSec != 1.0 || s.Clock != "10:00:01" {
		t.Errorf("time wrong: %v %q", s.SimTimeSec, s.Clock)
	}

	// Next window starts clean
	next := c.Flush(8, "10:00:02", 0)
	if next.Spawns() != 0 || next.Stamps != 0 || next.TurbulenceMean != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartFrame != 4 {
		t.Errorf("window start = %d, want 4", next.WindowStartFrame)
	}
}

func TestNewCollector_DegenerateWindow(t *testing.T) {
	if got := NewCollector(0, 1.0/60).WindowDurationFrames(); got != 1 {
		t.Errorf("zero window should clamp to 1 frame, got %d", got)
	}
	if got := NewCollector(10, 0).WindowDurationFrames(); got != 1 {
		t.Errorf("zero frame time should clamp to 1 frame, got %d", got)
	}
}
