// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DropTypeNames lists the drop categories every config must describe.
var DropTypeNames = []string{"second", "minute", "hour", "chime"}

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig              `yaml:"screen"`
	Clock      ClockConfig               `yaml:"clock"`
	Fluid      FluidConfig               `yaml:"fluid"`
	Turbulence TurbulenceConfig          `yaml:"turbulence"`
	Drop       DropConfig                `yaml:"drop"`
	Drops      map[string]DropTypeConfig `yaml:"drops"`
	Splatter   SplatterConfig            `yaml:"splatter"`
	Drip       DripConfig                `yaml:"drip"`
	Sun        SunConfig                 `yaml:"sun"`
	Chime      ChimeConfig               `yaml:"chime"`
	Trail      TrailConfig               `yaml:"trail"`
	Pool       PoolConfig                `yaml:"pool"`
	Palette    PaletteConfig             `yaml:"palette"`
	Audio      AudioConfig               `yaml:"audio"`
	Telemetry  TelemetryConfig           `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TargetFPS  int    `yaml:"target_fps"`
	Background string `yaml:"background"` // paper color, hex
}

// ClockConfig drives the simulated elapsed-time clock.
type ClockConfig struct {
	FrameSeconds float64 `yaml:"frame_seconds"` // simulated seconds per frame at time_scale 1
	TimeScale    float64 `yaml:"time_scale"`    // multiplier on frame_seconds
	Start        string  `yaml:"start"`         // "now" or HH:MM:SS
}

// FluidConfig holds vector field parameters.
type FluidConfig struct {
	Resolution    float64 `yaml:"resolution"`      // grid cell size in pixels
	NoiseScale    float64 `yaml:"noise_scale"`     // noise frequency per cell
	NoiseSpeed    float64 `yaml:"noise_speed"`     // noise time step per frame
	NoiseBackend  string  `yaml:"noise_backend"`   // simplex | perlin
	AngleSpread   float64 `yaml:"angle_spread"`    // turns of the circle covered by the noise range
	Magnitude     float64 `yaml:"magnitude"`       // base vector length
	ImpulseRadius float64 `yaml:"impulse_radius"`  // pointer impulse radius in pixels
	DragForce     float64 `yaml:"drag_force"`      // pointer impulse strength per px/frame
	RingBand      float64 `yaml:"ring_band"`       // half-width of a ring's influence band
	RingRadialMix float64 `yaml:"ring_radial_mix"` // outward share of a ring push
	PerlinAlpha   float64 `yaml:"perlin_alpha"`    // perlin backend: amplitude falloff
	PerlinBeta    float64 `yaml:"perlin_beta"`     // perlin backend: frequency growth
	PerlinOctaves int     `yaml:"perlin_octaves"`  // perlin backend: octave count
}

// TurbulenceConfig holds pointer-driven turbulence parameters.
type TurbulenceConfig struct {
	Threshold     float64 `yaml:"threshold"`      // px/frame below which drags are ignored
	Gain          float64 `yaml:"gain"`           // level added per px/frame above threshold
	MaxStep       float64 `yaml:"max_step"`       // largest single increase
	Max           float64 `yaml:"max"`            // ceiling
	Decay         float64 `yaml:"decay"`          // per-frame multiplier
	Epsilon       float64 `yaml:"epsilon"`        // snap-to-zero threshold
	ViscosityGain float64 `yaml:"viscosity_gain"` // how much turbulence thins drop damping
}

// DropConfig holds shared ink drop tuning.
type DropConfig struct {
	BaseSize       float64 `yaml:"base_size"`        // px, multiplied by the type multiplier
	ResidueOpacity float64 `yaml:"residue_opacity"`  // opacity a fully aged drop settles to
	BirthFrames    int     `yaml:"birth_frames"`     // growth animation length
	BirthStart     float64 `yaml:"birth_start"`      // size fraction at frame 0 of birth
	FluidInfluence float64 `yaml:"fluid_influence"`  // share of the flow added to acceleration
	OffsetScale    float64 `yaml:"offset_scale"`     // px per unit of per-instance noise offset
	Damping        float64 `yaml:"damping"`          // velocity multiplier per frame
	DripInterval   int     `yaml:"drip_interval"`    // frames between drips
	ResidueDarken  float64 `yaml:"residue_darken"`   // lightness multiplier of the residue color
	ResidueDesat   float64 `yaml:"residue_desat"`    // saturation multiplier of the residue color
	TrailSize      float64 `yaml:"trail_size"`       // trail mark radius as a fraction of size
	TrailAlpha     float64 `yaml:"trail_alpha"`      // trail mark alpha relative to opacity
}

// DropTypeConfig is one row of the per-type drop table.
type DropTypeConfig struct {
	SizeMultiplier float64 `yaml:"size_multiplier"`
	Lifespan       float64 `yaml:"lifespan"` // frames
	Opacity        float64 `yaml:"opacity"`
	Drips          bool    `yaml:"drips"`
}

// SplatterConfig holds splatter sub-particle tuning.
type SplatterConfig struct {
	MinCount     int     `yaml:"min_count"`
	MaxCount     int     `yaml:"max_count"`
	MaxDistance  float64 `yaml:"max_distance"`  // multiple of drop size
	MinSize      float64 `yaml:"min_size"`      // fraction of drop size at the far edge
	MaxSize      float64 `yaml:"max_size"`      // fraction of drop size next to the drop
	VelocityBias float64 `yaml:"velocity_bias"` // pull of splatter toward the launch direction
}

// DripConfig holds ink drip tuning.
type DripConfig struct {
	Gravity       float64 `yaml:"gravity"`
	FluidScale    float64 `yaml:"fluid_scale"`
	Wobble        float64 `yaml:"wobble"`
	MaxSpeed      float64 `yaml:"max_speed"`
	ShrinkRate    float64 `yaml:"shrink_rate"`
	StartFraction float64 `yaml:"start_fraction"` // start radius as a fraction of parent size
	ResidueAlpha  float64 `yaml:"residue_alpha"`
	ResidueScale  float64 `yaml:"residue_scale"`
	Opacity       float64 `yaml:"opacity"`
}

// SunConfig holds the hourly sun parameters.
type SunConfig struct {
	YFraction         float64 `yaml:"y_fraction"`
	CoreRadius        float64 `yaml:"core_radius"`
	CoronaScale       float64 `yaml:"corona_scale"`
	CoronaPulse       float64 `yaml:"corona_pulse"` // fractional size swing of the corona
	PulseSpeed        float64 `yaml:"pulse_speed"`  // radians per frame
	RepulsionRadius   float64 `yaml:"repulsion_radius"`
	RepulsionStrength float64 `yaml:"repulsion_strength"`
}

// ChimeConfig holds quarter-hour ripple parameters.
type ChimeConfig struct {
	MaxRadiusFraction float64 `yaml:"max_radius_fraction"`
	StaggerFrames     float64 `yaml:"stagger_frames"`
	Duration          float64 `yaml:"duration"` // frames
	Strength          float64 `yaml:"strength"`
	StrokeWidth       float64 `yaml:"stroke_width"`
}

// TrailConfig holds trail layer fading parameters.
type TrailConfig struct {
	FadeColor      string  `yaml:"fade_color"`
	FadeAlpha      float64 `yaml:"fade_alpha"`
	TurbulenceHold float64 `yaml:"turbulence_hold"` // 1 = full turbulence stops fading
}

// PoolConfig holds particle pool preallocation sizes.
type PoolConfig struct {
	Drops int `yaml:"drops"`
	Drips int `yaml:"drips"`
}

// PaletteConfig holds the color provider gradient.
type PaletteConfig struct {
	Colors          []string `yaml:"colors"`           // minute-of-hour gradient stops
	ChimeColors     []string `yaml:"chime_colors"`     // 15, 30, 45
	NightDarken     float64  `yaml:"night_darken"`     // lightness drop at midnight
	TurbulenceDesat float64  `yaml:"turbulence_desat"` // chroma drop at full turbulence
}

// AudioConfig holds audio sink parameters.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	BaseFreq   float64 `yaml:"base_freq"` // Hz at minute 0
	NoteMillis int     `yaml:"note_millis"`
	Volume     float64 `yaml:"volume"` // 0..1
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds of frames per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW   float64 // Screen.Width as float64
	ScreenH   float64 // Screen.Height as float64
	MinDim    float64 // smaller screen dimension
	FrameStep float64 // simulated seconds per frame after time scale
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Parse builds a config from YAML bytes laid over the embedded defaults.
// Used by tests that need a tweaked config without touching the filesystem.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects missing or out-of-range tuning values.
// Every problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", name, v))
		}
	}
	unit := func(name string, v float64) {
		if v < 0 || v > 1 || math.IsNaN(v) {
			errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", name, v))
		}
	}

	positive("screen.width", float64(c.Screen.Width))
	positive("screen.height", float64(c.Screen.Height))
	positive("clock.frame_seconds", c.Clock.FrameSeconds)
	positive("clock.time_scale", c.Clock.TimeScale)

	positive("fluid.resolution", c.Fluid.Resolution)
	positive("fluid.noise_scale", c.Fluid.NoiseScale)
	positive("fluid.angle_spread", c.Fluid.AngleSpread)
	positive("fluid.impulse_radius", c.Fluid.ImpulseRadius)
	positive("fluid.ring_band", c.Fluid.RingBand)
	if c.Fluid.Magnitude < 0 {
		errs = append(errs, fmt.Errorf("fluid.magnitude must be >= 0, got %v", c.Fluid.Magnitude))
	}
	switch c.Fluid.NoiseBackend {
	case "simplex", "perlin":
	default:
		errs = append(errs, fmt.Errorf("fluid.noise_backend must be simplex or perlin, got %q", c.Fluid.NoiseBackend))
	}

	positive("turbulence.max", c.Turbulence.Max)
	positive("turbulence.epsilon", c.Turbulence.Epsilon)
	if !(c.Turbulence.Decay > 0 && c.Turbulence.Decay < 1) {
		errs = append(errs, fmt.Errorf("turbulence.decay must be in (0,1), got %v", c.Turbulence.Decay))
	}

	positive("drop.base_size", c.Drop.BaseSize)
	positive("drop.birth_frames", float64(c.Drop.BirthFrames))
	positive("drop.drip_interval", float64(c.Drop.DripInterval))
	unit("drop.residue_opacity", c.Drop.ResidueOpacity)
	unit("drop.damping", c.Drop.Damping)
	unit("drop.birth_start", c.Drop.BirthStart)
	for _, name := range DropTypeNames {
		dt, ok := c.Drops[name]
		if !ok {
			errs = append(errs, fmt.Errorf("drops.%s is missing", name))
			continue
		}
		positive("drops."+name+".size_multiplier", dt.SizeMultiplier)
		positive("drops."+name+".lifespan", dt.Lifespan)
		unit("drops."+name+".opacity", dt.Opacity)
		if dt.Opacity < c.Drop.ResidueOpacity {
			errs = append(errs, fmt.Errorf("drops.%s.opacity %v is below drop.residue_opacity %v", name, dt.Opacity, c.Drop.ResidueOpacity))
		}
	}

	if c.Splatter.MinCount < 0 || c.Splatter.MaxCount < c.Splatter.MinCount {
		errs = append(errs, fmt.Errorf("splatter counts must satisfy 0 <= min_count <= max_count, got %d..%d", c.Splatter.MinCount, c.Splatter.MaxCount))
	}

	positive("drip.shrink_rate", c.Drip.ShrinkRate)
	positive("drip.max_speed", c.Drip.MaxSpeed)
	positive("drip.start_fraction", c.Drip.StartFraction)

	positive("sun.core_radius", c.Sun.CoreRadius)
	positive("sun.repulsion_radius", c.Sun.RepulsionRadius)

	positive("chime.max_radius_fraction", c.Chime.MaxRadiusFraction)
	positive("chime.duration", c.Chime.Duration)
	if c.Chime.StaggerFrames < 0 || c.Chime.StaggerFrames*8 >= c.Chime.Duration {
		errs = append(errs, fmt.Errorf("chime.stagger_frames %v must leave the last of 9 rings time to grow within duration %v", c.Chime.StaggerFrames, c.Chime.Duration))
	}

	unit("trail.fade_alpha", c.Trail.FadeAlpha)
	unit("trail.turbulence_hold", c.Trail.TurbulenceHold)

	if len(c.Palette.Colors) < 2 {
		errs = append(errs, fmt.Errorf("palette.colors needs at least 2 stops, got %d", len(c.Palette.Colors)))
	}
	if len(c.Palette.ChimeColors) != 3 {
		errs = append(errs, fmt.Errorf("palette.chime_colors needs exactly 3 entries, got %d", len(c.Palette.ChimeColors)))
	}

	if c.Clock.Start != "now" {
		if _, err := ParseClock(c.Clock.Start); err != nil {
			errs = append(errs, fmt.Errorf("clock.start: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW = float64(c.Screen.Width)
	c.Derived.ScreenH = float64(c.Screen.Height)
	c.Derived.MinDim = math.Min(c.Derived.ScreenW, c.Derived.ScreenH)
	c.Derived.FrameStep = c.Clock.FrameSeconds * c.Clock.TimeScale
}

// DropType returns the table row for a drop type name.
func (c *Config) DropType(name string) (DropTypeConfig, bool) {
	dt, ok := c.Drops[strings.ToLower(name)]
	return dt, ok
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
