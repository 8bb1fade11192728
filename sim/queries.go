package sim

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/petri/species"
)

// Census is a point-in-time population summary.
type Census struct {
	Step   int
	Time   float64
	Total  int
	Dead   int
	ByKind [species.KindCount]int
}

// Census returns alive counts by species plus totals. Read-only.
func (s *Simulation) Census() Census {
	return Census{
		Step:   s.stepCount,
		Time:   s.now,
		Total:  s.store.AliveCount(),
		Dead:   s.store.DeadCount(),
		ByKind: s.store.CountByKind(),
	}
}

// AliveCount returns the number of alive cells.
func (s *Simulation) AliveCount() int {
	return s.store.AliveCount()
}

// SpeciesName returns the configured name for k.
func (s *Simulation) SpeciesName(k species.Kind) string {
	return s.table[k].Name
}

// RegionArea returns id's bounded-region area in the current snapshot,
// 0 if the id has no region.
func (s *Simulation) RegionArea(id int64) float64 {
	return s.snap.RegionArea(id)
}

// RegionVertices returns id's bounded-region polygon, nil if absent.
func (s *Simulation) RegionVertices(id int64) []r2.Vec {
	return s.snap.RegionVertices(id)
}

// RegionDiameter returns the largest pairwise vertex distance of id's
// bounded region, 0 if the id has no region.
func (s *Simulation) RegionDiameter(id int64) float64 {
	verts := s.snap.RegionVertices(id)
	best := 0.0
	for i := 0; i < len(verts); i++ {
		for j := i + 1; j < len(verts); j++ {
			if d := r2.Norm(r2.Sub(verts[j], verts[i])); d > best {
				best = d
			}
		}
	}
	return best
}

// MeanRegionArea returns the mean bounded-region area over alive cells
// that have a region in the current snapshot.
func (s *Simulation) MeanRegionArea() float64 {
	areas := make([]float64, 0, s.store.AliveCount())
	for _, id := range s.store.AliveIDs() {
		if s.snap.HasRegion(id) {
			areas = append(areas, s.snap.RegionArea(id))
		}
	}
	if len(areas) == 0 {
		return 0
	}
	return stat.Mean(areas, nil)
}

// MeanSpringLength returns the mean Euclidean separation over all solid
// edges whose endpoints are both alive.
func (s *Simulation) MeanSpringLength() float64 {
	lengths := make([]float64, 0, 64)
	for _, e := range s.snap.SolidEdges() {
		if s.store.IsDead(e.A) || s.store.IsDead(e.B) {
			continue
		}
		a, b := s.store.Get(e.A), s.store.Get(e.B)
		if a == nil || b == nil {
			continue
		}
		lengths = append(lengths, r2.Norm(r2.Sub(b.Pos, a.Pos)))
	}
	if len(lengths) == 0 {
		return 0
	}
	return stat.Mean(lengths, nil)
}
