package sim

import (
	"errors"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/geom"
)

// growthRate returns the per-time proliferation rate G for id:
// beta*(1 - 1/(K*A)) floored at zero, gated to zero outside the
// species' division age window, below the minimum region area, or when
// the id has no region in the current snapshot.
func (s *Simulation) growthRate(id int64) float64 {
	if !s.store.Alive(id) || !s.snap.HasRegion(id) {
		return 0
	}
	c := s.store.Get(id)
	p := s.table[c.Kind]

	age := s.now - c.BirthTime
	if age < p.DivideMinAge || age > p.DivideMaxAge {
		return 0
	}

	area := s.snap.RegionArea(id)
	if area <= 0 || area < p.MinArea {
		return 0
	}

	g := p.ProlifRate * (1 - 1/(p.CarryingK*area))
	if g < 0 {
		return 0
	}
	return g
}

// cumulativeRates builds the cumulative event-probability array over
// all store ids. Dead and geometry-excluded ids contribute zero, so the
// array is monotone non-decreasing and its last entry is the total
// event probability for the step.
func (s *Simulation) cumulativeRates() []float64 {
	n := s.store.Len()
	if n == 0 {
		return nil
	}
	rates := make([]float64, n)
	for id := int64(0); id < int64(n); id++ {
		rates[id] = s.growthRate(id) * s.dt
	}
	return floats.CumSum(rates, rates)
}

// selectEvent returns the id whose half-open cumulative interval
// [cum[id-1], cum[id]) contains u. Any id it returns has a strictly
// positive contribution. Pure function of the cumulative array.
func selectEvent(cum []float64, u float64) int64 {
	return int64(sort.Search(len(cum), func(i int) bool { return cum[i] > u }))
}

// pickParent resolves a draw u in [0, total] to the owning id. The
// closed upper bound belongs to no interval; rounding can produce it
// when the uniform sample is near 1, and it resolves to no event.
func pickParent(cum []float64, u float64) (int64, bool) {
	id := selectEvent(cum, u)
	if id >= int64(len(cum)) {
		return 0, false
	}
	return id, true
}

// proliferate runs the per-step division event: at most one cell is
// inserted per step. The parent is drawn in proportion to its G*dt
// contribution; the daughter is placed uniformly inside the parent's
// bounded region.
func (s *Simulation) proliferate() {
	cum := s.cumulativeRates()
	if len(cum) == 0 {
		return
	}
	total := cum[len(cum)-1]
	if total <= 0 {
		return
	}

	parent, ok := pickParent(cum, s.rng.Float64()*total)
	if !ok {
		return
	}

	pos, err := s.samplePointInRegion(parent)
	if err != nil {
		// A collapsed region means this cell simply skips dividing
		// this step; the run continues.
		slog.Warn("proliferation: daughter placement failed",
			"parent", parent, "step", s.stepCount, "error", err)
		return
	}

	c := s.store.Get(parent)
	kind := c.Kind
	if s.rng.Float64() < s.table[kind].MutationProb {
		kind = kind.Next()
	}
	s.store.Add(kind, pos, s.now)
}

// samplePointInRegion draws a uniform point inside id's bounded region:
// fan-triangulate the convex region, pick one triangle area-weighted in
// a single streaming pass, then sample inside it by parallelogram
// folding.
func (s *Simulation) samplePointInRegion(id int64) (r2.Vec, error) {
	verts := s.snap.RegionVertices(id)
	tris, err := s.snap.TriangulateConvex(verts)
	if err != nil {
		return r2.Vec{}, err
	}

	// Weighted reservoir over the triangle stream.
	var chosen geom.Triangle
	acc := 0.0
	for _, tr := range tris {
		a := tr.Area()
		acc += a
		if a > 0 && s.rng.Float64() < a/acc {
			chosen = tr
		}
	}
	if acc <= 0 {
		return r2.Vec{}, errors.Join(geom.ErrEmptyRegion, errors.New("sim: all sampling triangles degenerate"))
	}

	u1, u2 := s.rng.Float64(), s.rng.Float64()
	if u1+u2 > 1 {
		u1, u2 = 1-u1, 1-u2
	}
	e1 := r2.Sub(chosen.B, chosen.A)
	e2 := r2.Sub(chosen.C, chosen.A)
	return r2.Add(r2.Add(chosen.A, r2.Scale(u1, e1)), r2.Scale(u2, e2)), nil
}
