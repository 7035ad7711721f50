package inspection

import "math/rand/v2"

// MaxNoise is the exclusive upper bound of the wear noise applied to a score.
const MaxNoise = 20.0

// NoiseSource yields wear noise in [0, MaxNoise).
//
// Each call consumes one draw. Elements draw in insertion order, so a run
// with the same source state always yields the same findings.
type NoiseSource interface {
	Noise() float64
}

// FixedNoise returns the same noise for every element.
type FixedNoise float64

func (f FixedNoise) Noise() float64 { return float64(f) }

// RandomNoise draws uniform noise from a seeded PCG generator.
type RandomNoise struct {
	rng *rand.Rand
}

// pcgStream is the stream selector paired with the caller's seed.
const pcgStream = 0x9e3779b97f4a7c15

// NewRandomNoise creates a reproducible noise source from seed.
func NewRandomNoise(seed uint64) *RandomNoise {
	return &RandomNoise{rng: rand.New(rand.NewPCG(seed, pcgStream))}
}

func (r *RandomNoise) Noise() float64 {
	return r.rng.Float64() * MaxNoise
}
