package particles

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/inkclock/config"
	"github.com/pthm-cable/inkclock/renderer"
	"github.com/pthm-cable/inkclock/systems"
)

// splatInner is where splatter starts, in drop sizes from the center.
const splatInner = 0.55

// generateSplats scatters dots around a drop once, at spawn. Dots near the
// drop are larger and stronger; a moving drop throws them forward.
func generateSplats(rng *rand.Rand, cfg config.SplatterConfig, vel systems.Vec2, out []renderer.Splat) []renderer.Splat {
	out = out[:0]
	count := cfg.MinCount
	if cfg.MaxCount > cfg.MinCount {
		count += rng.Intn(cfg.MaxCount - cfg.MinCount + 1)
	}
	maxDist := math.Max(cfg.MaxDistance, splatInner)
	bias := systems.Clamp01(cfg.VelocityBias)
	moving := vel.Len() > 1e-6
	heading := math.Atan2(vel.Y, vel.X)

	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		if moving {
			angle = heading + (rng.Float64()*2-1)*math.Pi*(1-bias)
		}
		dist := splatInner + rng.Float64()*(maxDist-splatInner)
		t := 0.0
		if maxDist > splatInner {
			t = (dist - splatInner) / (maxDist - splatInner)
		}
		out = append(out, renderer.Splat{
			DX:    math.Cos(angle) * dist,
			DY:    math.Sin(angle) * dist,
			Size:  systems.Lerp(cfg.MaxSize, cfg.MinSize, t) * (0.7 + 0.6*rng.Float64()),
			Alpha: systems.Lerp(0.9, 0.3, t),
		})
	}
	return out
}
