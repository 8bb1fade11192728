package sim

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/geom"
	"github.com/pthm-cable/petri/population"
	"github.com/pthm-cable/petri/species"
)

// stubSnapshot is a hand-wired geometry snapshot for unit tests.
type stubSnapshot struct {
	neighbors map[int64][]int64
	regions   map[int64][]r2.Vec
	areas     map[int64]float64
	edges     []geom.Edge
	ids       []int64
}

func (s *stubSnapshot) Neighbors(id int64) []int64       { return s.neighbors[id] }
func (s *stubSnapshot) HasRegion(id int64) bool          { _, ok := s.regions[id]; return ok }
func (s *stubSnapshot) RegionVertices(id int64) []r2.Vec { return s.regions[id] }
func (s *stubSnapshot) RegionArea(id int64) float64      { return s.areas[id] }
func (s *stubSnapshot) SolidVertices() []int64           { return s.ids }
func (s *stubSnapshot) SolidEdges() []geom.Edge          { return s.edges }

func (s *stubSnapshot) TriangulateConvex(vertices []r2.Vec) ([]geom.Triangle, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("stub: %d vertices: %w", len(vertices), geom.ErrEmptyRegion)
	}
	tris := make([]geom.Triangle, 0, len(vertices)-2)
	total := 0.0
	for i := 1; i < len(vertices)-1; i++ {
		tr := geom.Triangle{A: vertices[0], B: vertices[i], C: vertices[i+1]}
		total += tr.Area()
		tris = append(tris, tr)
	}
	if total < 1e-12 {
		return nil, fmt.Errorf("stub: zero-area polygon: %w", geom.ErrEmptyRegion)
	}
	return tris, nil
}

// testConfig loads the embedded defaults and strips the stochastic
// terms that would blur deterministic assertions. Tests re-enable the
// pieces they exercise.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	for i := range cfg.Species {
		cfg.Species[i].Diffusivity = 0
		cfg.Species[i].SickRate = 0
		cfg.Species[i].MutationProb = 0
	}
	return cfg
}

// newTestSim wires a Simulation around a stub snapshot without running
// the seeding or geometry build that New performs.
func newTestSim(t *testing.T, cfg *config.Config, seed int64, snap geom.Snapshot) *Simulation {
	t.Helper()
	table := species.FromConfig(cfg.Species)
	s := &Simulation{
		cfg:      cfg,
		table:    table,
		pairs:    table.Pairs(),
		store:    population.NewStore(),
		snap:     snap,
		rng:      newRNG(seed),
		domain:   r2.Vec{X: cfg.Domain.X, Y: cfg.Domain.Y},
		dt:       cfg.Physics.DT,
		parallel: newParallelState(),
	}
	t.Cleanup(s.Close)
	return s
}
