package particles

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// RandomSource produces the uniform samples used to seed records, sizes and alphas.
type RandomSource interface {
	// Uniform returns a value in [min, max). When min == max it returns min.
	Uniform(min, max float64) float64
}

// UniformSource is a seeded RandomSource. Two sources built from the same
// seed produce the same sequence.
type UniformSource struct {
	src rand.Source
}

// NewRandomSource creates a deterministic source for the given seed.
func NewRandomSource(seed uint64) *UniformSource {
	return &UniformSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Uniform implements RandomSource.
func (u *UniformSource) Uniform(min, max float64) float64 {
	if min == max {
		return min
	}
	d := distuv.Uniform{Min: min, Max: max, Src: u.src}
	return d.Rand()
}
