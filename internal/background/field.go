package background

import (
	"math"
	"math/rand/v2"
)

const (
	// Bound is the largest coordinate magnitude before a particle bounces.
	Bound float32 = 7.5
	// Restitution scales a reflected coordinate.
	Restitution float32 = 0.95
	// Damping scales a reflected velocity.
	Damping float32 = 0.9
)

// ParticleField holds particle state as flat xyz triples. Positions always
// has Count*3 entries; Velocities is nil for MotionWave.
type ParticleField struct {
	Count      int
	Positions  []float32
	Velocities []float32
	Colors     []float32
}

// NewParticleField lays out cfg.Count particles uniformly in a cube of side
// cfg.Spread centered on the origin.
func NewParticleField(cfg Config, rng *rand.Rand) *ParticleField {
	n := cfg.Count * 3
	f := &ParticleField{
		Count:     cfg.Count,
		Positions: make([]float32, n),
	}
	if cfg.Motion == MotionDrift {
		f.Velocities = make([]float32, n)
	}
	if len(cfg.Palette) > 0 {
		f.Colors = make([]float32, n)
	}

	for i := 0; i < n; i += 3 {
		for k := 0; k < 3; k++ {
			f.Positions[i+k] = (rng.Float32() - 0.5) * cfg.Spread
		}
		if f.Velocities != nil {
			for k := 0; k < 3; k++ {
				f.Velocities[i+k] = (rng.Float32() - 0.5) * cfg.Speed
			}
		}
		if f.Colors != nil {
			c := cfg.Palette[rng.IntN(len(cfg.Palette))]
			f.Colors[i], f.Colors[i+1], f.Colors[i+2] = c.R, c.G, c.B
		}
	}
	return f
}

// Step advances the field by one frame. ms is the frame timestamp in
// milliseconds; only MotionWave uses it.
func (f *ParticleField) Step(ms float64) {
	if f.Velocities != nil {
		f.drift()
		return
	}
	f.wave(ms)
}

func (f *ParticleField) drift() {
	pos, vel := f.Positions, f.Velocities
	for i := range pos {
		pos[i] += vel[i]
		if abs(pos[i]) > Bound {
			pos[i] = -pos[i] * Restitution
			vel[i] = -vel[i] * Damping
		}
	}
}

func (f *ParticleField) wave(ms float64) {
	pos := f.Positions
	for i := 0; i < len(pos); i += 3 {
		pos[i] += float32(math.Sin(ms*0.001+float64(i)) * 0.001)
		pos[i+1] += float32(math.Cos(ms*0.0015+float64(i)) * 0.001)
		for k := i; k < i+2; k++ {
			if abs(pos[k]) > Bound {
				pos[k] = -pos[k] * Restitution
			}
		}
	}
}

// Extent is the largest coordinate magnitude in the field.
func (f *ParticleField) Extent() float32 {
	var m float32
	for _, p := range f.Positions {
		m = max(m, abs(p))
	}
	return m
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
