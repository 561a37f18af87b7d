// Package random provides the seeded random variates the simulation draws
// from: uniform and normal reals, Poisson counts and index permutations.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is the capability the network engine and the driver consume.
// Implementations are not safe for concurrent use.
type Source interface {
	UniformDouble(low, high float64) float64
	UniformFill(dst []float64, low, high float64)
	Normal(mean, sd float64) float64
	NormalFill(dst []float64, mean, sd float64)
	Poisson(mean float64) int
	PoissonFill(dst []int, mean float64)
	IntN(n int) int
	Shuffle(indices []int)
}

// Generator is a Source backed by a PCG stream and gonum distributions.
type Generator struct {
	seed uint64
	src  rand.Source
	rng  *rand.Rand
}

var _ Source = (*Generator)(nil)

// New returns a Generator for seed. A zero seed is replaced by one read
// from system entropy; Seed reports the value actually used.
func New(seed uint64) *Generator {
	if seed == 0 {
		seed = entropySeed()
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Generator{
		seed: seed,
		src:  src,
		rng:  rand.New(src),
	}
}

func (g *Generator) Seed() uint64 {
	return g.seed
}

func (g *Generator) UniformDouble(low, high float64) float64 {
	if !(high > low) {
		return low
	}
	return distuv.Uniform{Min: low, Max: high, Src: g.src}.Rand()
}

func (g *Generator) UniformFill(dst []float64, low, high float64) {
	for i := range dst {
		dst[i] = g.UniformDouble(low, high)
	}
}

func (g *Generator) Normal(mean, sd float64) float64 {
	if !(sd > 0) {
		return mean
	}
	return distuv.Normal{Mu: mean, Sigma: sd, Src: g.src}.Rand()
}

func (g *Generator) NormalFill(dst []float64, mean, sd float64) {
	if !(sd > 0) {
		for i := range dst {
			dst[i] = mean
		}
		return
	}
	dist := distuv.Normal{Mu: mean, Sigma: sd, Src: g.src}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}

func (g *Generator) Poisson(mean float64) int {
	if !(mean > 0) || math.IsInf(mean, 1) {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: g.src}.Rand())
}

func (g *Generator) PoissonFill(dst []int, mean float64) {
	for i := range dst {
		dst[i] = g.Poisson(mean)
	}
}

// IntN draws uniformly from [0, n). It returns 0 when n <= 0.
func (g *Generator) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rng.IntN(n)
}

func (g *Generator) Shuffle(indices []int) {
	g.rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
}

func entropySeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err == nil {
		if seed := binary.LittleEndian.Uint64(buf[:]); seed != 0 {
			return seed
		}
	}
	seed := rand.Uint64()
	if seed == 0 {
		seed = 1
	}
	return seed
}
