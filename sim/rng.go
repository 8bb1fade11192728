package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// rng bundles the uniform and standard-normal sources used by every
// stochastic operation. A single seeded PCG backs both, threaded
// explicitly through the engine so a fixed seed replays a run exactly.
type rng struct {
	uni  *rand.Rand
	norm distuv.Normal
}

func newRNG(seed int64) *rng {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &rng{
		uni:  rand.New(src),
		norm: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Float64 returns a uniform sample in [0, 1).
func (r *rng) Float64() float64 {
	return r.uni.Float64()
}

// Norm returns a standard-normal sample.
func (r *rng) Norm() float64 {
	return r.norm.Rand()
}
