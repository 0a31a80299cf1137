package systems

import (
	"fmt"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/inkclock/config"
)

// Noise is a coherent 3D noise source returning values in [-1, 1].
type Noise interface {
	Eval3(x, y, z float64) float64
}

// NewSimplexNoise returns an OpenSimplex noise source.
func NewSimplexNoise(seed int64) Noise {
	return opensimplex.New(seed)
}

// PerlinNoise adapts go-perlin to the Noise interface.
type PerlinNoise struct {
	p *perlin.Perlin
}

// NewPerlinNoise creates a Perlin noise source.
// alpha is the amplitude falloff per octave, beta the frequency growth.
func NewPerlinNoise(alpha, beta float64, octaves int, seed int64) *PerlinNoise {
	return &PerlinNoise{p: perlin.NewPerlin(alpha, beta, int32(octaves), seed)}
}

// Eval3 returns a noise value for 3D coordinates, clamped to [-1, 1].
func (n *PerlinNoise) Eval3(x, y, z float64) float64 {
	return Clamp(n.p.Noise3D(x, y, z), -1, 1)
}

// NewNoise builds the backend named by fluid.noise_backend.
func NewNoise(cfg config.FluidConfig, seed int64) (Noise, error) {
	switch cfg.NoiseBackend {
	case "simplex", "":
		return NewSimplexNoise(seed), nil
	case "perlin":
		return NewPerlinNoise(cfg.PerlinAlpha, cfg.PerlinBeta, cfg.PerlinOctaves, seed), nil
	default:
		return nil, fmt.Errorf("unknown noise backend %q", cfg.NoiseBackend)
	}
}
