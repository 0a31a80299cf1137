package systems

import (
	"fmt"
	"time"
)

// EventKind names a time transition.
type EventKind uint8

const (
	EventSecond EventKind = iota
	EventMinute
	EventHour
	EventChime
	EventHourComplete
)

func (k EventKind) String() string {
	switch k {
	case EventSecond:
		return "second"
	case EventMinute:
		return "minute"
	case EventHour:
		return "hour"
	case EventChime:
		return "chime"
	case EventHourComplete:
		return "hour_complete"
	default:
		return fmt.Sprintf("event(%d)", k)
	}
}

// ClockTime is a time of day broken into fields.
type ClockTime struct {
	Hour, Minute, Second int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Event is one time transition carrying the new clock values.
type Event struct {
	Kind EventKind
	ClockTime
}

// IsChimeMinute reports whether a minute value rings a quarter-hour chime.
func IsChimeMinute(minute int) bool {
	return minute == 15 || minute == 30 || minute == 45
}

// Scheduler models a simulated clock advanced by frame deltas.
// Transitions are queued and drained once per frame by the caller.
type Scheduler struct {
	elapsed time.Duration
	last    ClockTime
	started bool
	queue   []Event
}

// NewScheduler starts the clock at the given offset from midnight.
func NewScheduler(start time.Duration) *Scheduler {
	if start < 0 {
		start = 0
	}
	return &Scheduler{elapsed: start, queue: make([]Event, 0, 8)}
}

func clockAt(d time.Duration) ClockTime {
	s := int64(d / time.Second)
	return ClockTime{
		Hour:   int(s/3600) % 24,
		Minute: int(s/60) % 60,
		Second: int(s % 60),
	}
}

// Tick compares the current clock against the last seen values, queues
// events for every field that changed, then advances by dt.
// The first call only records the baseline.
func (s *Scheduler) Tick(dt time.Duration) {
	now := clockAt(s.elapsed)
	if !s.started {
		s.started = true
	} else {
		if now.Hour != s.last.Hour {
			s.queue = append(s.queue, Event{EventHourComplete, now}, Event{EventHour, now})
		}
		if now.Minute != s.last.Minute {
			s.queue = append(s.queue, Event{EventMinute, now})
			if IsChimeMinute(now.Minute) {
				s.queue = append(s.queue, Event{EventChime, now})
			}
		}
		if now.Second != s.last.Second {
			s.queue = append(s.queue, Event{EventSecond, now})
		}
	}
	s.last = now
	if dt > 0 {
		s.elapsed += dt
	}
}

// Drain returns the queued events and empties the queue.
func (s *Scheduler) Drain() []Event {
	if len(s.queue) == 0 {
		return nil
	}
	out := make([]Event, len(s.queue))
	copy(out, s.queue)
	s.queue = s.queue[:0]
	return out
}

// Now returns the clock fields at the current elapsed time.
func (s *Scheduler) Now() ClockTime {
	return clockAt(s.elapsed)
}

// Elapsed returns the simulated offset from midnight.
func (s *Scheduler) Elapsed() time.Duration {
	return s.elapsed
}
