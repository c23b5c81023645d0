package randx

import (
	"math/rand/v2"
)

func Uniform(min, max float32, rng *rand.Rand) float32 {
	return min + (max-min)*rng.Float32()
}

// Bernoulli は確率pでtrueを返す。
func Bernoulli(p float32, rng *rand.Rand) bool {
	return rng.Float32() < p
}
