package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/species"
)

// restingLength is the pair resting length at time t: it grows linearly
// from epsilon to sMature over the first time unit, then holds.
func restingLength(pp species.PairParams, t float64) float64 {
	return math.Min(pp.MatureLength, (pp.MatureLength-pp.ExpansionRate)*t+pp.ExpansionRate)
}

// pairForce returns the spring force exerted on the cell of kind a at
// pa by the cell of kind b at pb. Zero beyond the pair cutoff.
//
// Stiffness is mu, except for a stretched cross-species pair where the
// heterotypic factor applies. The factor is suppressed during the
// initial transient t < 1 while resting lengths are still ramping.
func (s *Simulation) pairForce(a species.Kind, pa r2.Vec, b species.Kind, pb r2.Vec, t float64) r2.Vec {
	d := r2.Sub(pb, pa)
	dist := r2.Norm(d)
	pp := s.pairs[a][b]
	if dist > pp.Cutoff || dist == 0 {
		return r2.Vec{}
	}

	rest := restingLength(pp, t)
	mu := pp.Mu
	if a != b && t >= 1 && dist > rest {
		mu *= pp.MuHet
	}

	// mu*(dist-rest) along the unit vector toward the neighbor.
	return r2.Scale(mu*(dist-rest)/dist, d)
}

// thermalForce draws one random force for a cell of kind k.
func (s *Simulation) thermalForce(k species.Kind) r2.Vec {
	scale := math.Sqrt(2 * s.table[k].Diffusivity / s.dt)
	return r2.Vec{X: scale * s.rng.Norm(), Y: scale * s.rng.Norm()}
}

// move integrates all alive cells one explicit-Euler step.
//
// The update is two-phase: every velocity is computed against the
// positions as they stood at the start of the phase, and no position is
// written until all velocities exist. Thermal forces are drawn
// sequentially in store order before the compute phase so the parallel
// workers stay deterministic.
func (s *Simulation) move() {
	s.buildMoveSnapshots()
	n := len(s.parallel.snapshots)
	if n == 0 {
		return
	}

	if cap(s.parallel.intents) < n {
		s.parallel.intents = make([]moveIntent, n)
	}
	s.parallel.intents = s.parallel.intents[:n]

	if n < parallelThreshold {
		s.computeChunk(0, n)
	} else {
		s.computeParallel(n)
	}

	s.applyIntents()
}

// buildMoveSnapshots captures the alive cells in store order, with
// their thermal forces pre-drawn.
func (s *Simulation) buildMoveSnapshots() {
	s.parallel.snapshots = s.parallel.snapshots[:0]
	for _, id := range s.store.AliveIDs() {
		c := s.store.Get(id)
		s.parallel.snapshots = append(s.parallel.snapshots, cellSnapshot{
			ID:      id,
			Kind:    c.Kind,
			Pos:     c.Pos,
			Thermal: s.thermalForce(c.Kind),
		})
	}
}

// computeVelocity evaluates one cell's net force against the snapshot
// positions. Read-only: safe to run concurrently across disjoint cells.
func (s *Simulation) computeVelocity(snap *cellSnapshot) r2.Vec {
	force := snap.Thermal
	for _, nid := range s.snap.Neighbors(snap.ID) {
		if s.store.IsDead(nid) {
			continue
		}
		nc := s.store.Get(nid)
		if nc == nil {
			continue
		}
		force = r2.Add(force, s.pairForce(snap.Kind, snap.Pos, nc.Kind, nc.Pos, s.now))
	}
	return r2.Scale(1/s.table[snap.Kind].Drag, force)
}

// applyIntents commits velocities and positions single-threaded.
// A proposed position outside the domain is rejected: the cell keeps
// its exact prior position while the computed velocity is recorded.
func (s *Simulation) applyIntents() {
	for i := range s.parallel.snapshots {
		snap := &s.parallel.snapshots[i]
		c := s.store.Get(snap.ID)
		c.Vel = s.parallel.intents[i].Vel

		next := r2.Add(snap.Pos, r2.Scale(s.dt, c.Vel))
		if s.inDomain(next) {
			c.Pos = next
		}
	}
}
