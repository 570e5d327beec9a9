// Package synth implements the deterministic synthesis pipeline: a seeded
// generator that produces the member's interlocking event, daily, lab,
// fitness, intervention, chat, and KPI tables. All randomness flows through
// one RNG in a fixed traversal order so a run is reproducible byte for byte.
package synth

import (
	"math"
	"math/rand/v2"

	"github.com/elyxlabs/careloop/internal/config"
)

// RNG is the single seeded random source for a pipeline run. It is not safe
// for concurrent use; the pipeline is single-goroutine by design.
type RNG struct {
	r *rand.Rand
}

// NewRNG seeds a PCG source. The same seed always yields the same stream.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Float64 returns a uniform draw in [0,1).
func (g *RNG) Float64() float64 { return g.r.Float64() }

// Uniform returns a uniform draw in [lo,hi).
func (g *RNG) Uniform(lo, hi float64) float64 { return lo + (hi-lo)*g.r.Float64() }

// Draw samples a configured [lo,hi] range.
func (g *RNG) Draw(r config.Range) float64 { return g.Uniform(r.Lo(), r.Hi()) }

// Gauss returns a normal draw with the given mean and standard deviation.
func (g *RNG) Gauss(mu, sigma float64) float64 { return mu + sigma*g.r.NormFloat64() }

// IntN returns a uniform int in [0,n).
func (g *RNG) IntN(n int) int { return g.r.IntN(n) }

// IntBetween returns a uniform int in [lo,hi] inclusive.
func (g *RNG) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.r.IntN(hi-lo+1)
}

// Bernoulli returns true with probability p.
func (g *RNG) Bernoulli(p float64) bool { return g.r.Float64() < p }

// Poisson samples a Poisson count by Knuth multiplication. Suitable for the
// small lambdas used by the chat synthesizer.
func (g *RNG) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= g.r.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
