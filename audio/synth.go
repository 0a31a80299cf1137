// Package audio plays a short tone for every spawned drop.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/inkclock/config"
)

// pentatonic steps in semitones
var pentatonic = [...]int{0, 2, 4, 7, 9}

// NoteFrequency maps minute-of-hour onto three octaves of a major pentatonic
// scale above base.
func NoteFrequency(base float64, minute int) float64 {
	m := ((minute % 60) + 60) % 60
	i := m * 15 / 60
	semis := 12*(i/len(pentatonic)) + pentatonic[i%len(pentatonic)]
	return base * math.Pow(2, float64(semis)/12)
}

// PanFor maps a canvas x to a stereo pan in [-1, 1].
func PanFor(x, width float64) float64 {
	if !(width > 0) || math.IsNaN(x) {
		return 0
	}
	return math.Max(-1, math.Min(1, x/width*2-1))
}

// Synth mixes spawn tones through a turbulence-driven lowpass.
// All mixer access from the frame loop goes through speaker.Lock.
type Synth struct {
	cfg config.AudioConfig
	sr  beep.SampleRate

	mu      sync.Mutex
	width   float64
	mixer   *beep.Mixer
	filter  *lowpass
	started bool
}

// NewSynth creates a synth for a canvas of the given width. Call Start to
// open the audio device.
func NewSynth(cfg config.AudioConfig, width float64) *Synth {
	mixer := &beep.Mixer{}
	return &Synth{
		cfg:    cfg,
		sr:     beep.SampleRate(cfg.SampleRate),
		width:  width,
		mixer:  mixer,
		filter: newLowpass(mixer),
	}
}

// Start initializes the speaker and begins playback.
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := speaker.Init(s.sr, s.sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: speaker init: %w", err)
	}
	speaker.Play(s.filter)
	s.started = true
	return nil
}

// Close stops every sound.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.started = false
}

// SetWidth updates the canvas width used for stereo panning.
func (s *Synth) SetWidth(width float64) {
	s.mu.Lock()
	s.width = width
	s.mu.Unlock()
}

func (s *Synth) pan(x float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PanFor(x, s.width)
}

// voice builds the streamer for one note.
func (s *Synth) voice(x float64, minute int) (beep.Streamer, error) {
	tone, err := generators.SineTone(s.sr, NoteFrequency(s.cfg.BaseFreq, minute))
	if err != nil {
		return nil, err
	}
	n := s.sr.N(time.Duration(s.cfg.NoteMillis) * time.Millisecond)
	shaped := &pluck{Streamer: beep.Take(n, tone), total: n}
	vol := &effects.Volume{Streamer: shaped, Base: 2, Silent: s.cfg.Volume <= 0}
	if s.cfg.Volume > 0 {
		vol.Volume = math.Log2(s.cfg.Volume)
	}
	return &effects.Pan{Streamer: vol, Pan: s.pan(x)}, nil
}

// PlaySpawn plays a short plucked note for a drop spawned at canvas x.
func (s *Synth) PlaySpawn(x float64, minute int) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	v, err := s.voice(x, minute)
	if err != nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(v)
	speaker.Unlock()
}

// SetTurbulence muffles the mix as turbulence rises.
func (s *Synth) SetTurbulence(level float64) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	s.filter.setTurbulence(level)
}
