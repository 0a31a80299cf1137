package config

import (
	"fmt"
	"time"
)

// ParseClock parses an HH:MM:SS (or HH:MM) time of day into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("expected HH:MM:SS, got %q", s)
}

// StartOffset resolves clock.start into an offset from midnight.
// "now" reads the local wall clock once; everything after runs on simulated time.
func (c *Config) StartOffset(now time.Time) time.Duration {
	if c.Clock.Start == "now" {
		return time.Duration(now.Hour())*time.Hour +
			time.Duration(now.Minute())*time.Minute +
			time.Duration(now.Second())*time.Second +
			time.Duration(now.Nanosecond())
	}
	d, _ := ParseClock(c.Clock.Start)
	return d
}

// FrameDuration is the simulated time one frame advances the clock by.
func (c *Config) FrameDuration() time.Duration {
	return time.Duration(c.Derived.FrameStep * float64(time.Second))
}

// OverrideClock applies command-line clock settings. An empty start or a
// zero scale leaves the loaded value in place.
func (c *Config) OverrideClock(start string, timeScale float64) error {
	if start != "" {
		if start != "now" {
			if _, err := ParseClock(start); err != nil {
				return fmt.Errorf("clock.start: %w", err)
			}
		}
		c.Clock.Start = start
	}
	if timeScale != 0 {
		if !(timeScale > 0) {
			return fmt.Errorf("clock.time_scale must be positive, got %v", timeScale)
		}
		c.Clock.TimeScale = timeScale
	}
	c.computeDerived()
	return nil
}
