// Package population holds the append-only arena of cell records.
//
// Cells are never physically removed: death is a soft deletion that
// adds the id to a dead set and stamps the record's death time. Ids are
// assigned monotonically and never reused, so historical records remain
// valid keys for geometry and telemetry queries after death.
package population

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/geom"
	"github.com/pthm-cable/petri/species"
)

// Cell is one individual's biological record.
// DeathTime is meaningful only once the store marks the cell dead.
type Cell struct {
	ID        int64
	Kind      species.Kind
	Pos       r2.Vec
	Vel       r2.Vec
	BirthTime float64
	DeathTime float64
}

// Store is the append-only cell arena plus its dead set.
type Store struct {
	cells []Cell
	dead  map[int64]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		cells: make([]Cell, 0, 256),
		dead:  make(map[int64]struct{}),
	}
}

// Add appends a new cell and returns its id. Ids start at 0 and grow
// strictly monotonically.
func (s *Store) Add(kind species.Kind, pos r2.Vec, t float64) int64 {
	id := int64(len(s.cells))
	s.cells = append(s.cells, Cell{
		ID:        id,
		Kind:      kind,
		Pos:       pos,
		BirthTime: t,
	})
	return id
}

// Get returns the cell record for id, nil if the id was never assigned.
// The pointer stays valid only until the next Add.
func (s *Store) Get(id int64) *Cell {
	if id < 0 || id >= int64(len(s.cells)) {
		return nil
	}
	return &s.cells[id]
}

// Len returns the total number of ids ever assigned, dead included.
func (s *Store) Len() int {
	return len(s.cells)
}

// Kill marks id dead at time t. Death is set exactly once.
func (s *Store) Kill(id int64, t float64) error {
	c := s.Get(id)
	if c == nil {
		return fmt.Errorf("population: kill of unknown id %d", id)
	}
	if _, ok := s.dead[id]; ok {
		return fmt.Errorf("population: id %d is already dead", id)
	}
	if t < c.BirthTime {
		return fmt.Errorf("population: death time %g precedes birth time %g for id %d", t, c.BirthTime, id)
	}
	c.DeathTime = t
	s.dead[id] = struct{}{}
	return nil
}

// IsDead reports whether id is in the dead set.
func (s *Store) IsDead(id int64) bool {
	_, ok := s.dead[id]
	return ok
}

// Alive reports whether id was assigned and is not dead.
func (s *Store) Alive(id int64) bool {
	if id < 0 || id >= int64(len(s.cells)) {
		return false
	}
	return !s.IsDead(id)
}

// AliveIDs returns alive ids in ascending id (store) order.
func (s *Store) AliveIDs() []int64 {
	ids := make([]int64, 0, len(s.cells)-len(s.dead))
	for i := range s.cells {
		id := int64(i)
		if !s.IsDead(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// AlivePoints returns the id-tagged positions of all alive cells, the
// input to each step's geometry rebuild.
func (s *Store) AlivePoints() []geom.Point {
	pts := make([]geom.Point, 0, len(s.cells)-len(s.dead))
	for i := range s.cells {
		id := int64(i)
		if !s.IsDead(id) {
			pts = append(pts, geom.Point{ID: id, Pos: s.cells[i].Pos})
		}
	}
	return pts
}

// AliveCount returns the number of alive cells.
func (s *Store) AliveCount() int {
	return len(s.cells) - len(s.dead)
}

// DeadCount returns the number of dead cells.
func (s *Store) DeadCount() int {
	return len(s.dead)
}

// CountByKind returns alive counts per species.
func (s *Store) CountByKind() [species.KindCount]int {
	var counts [species.KindCount]int
	for i := range s.cells {
		if !s.IsDead(int64(i)) {
			counts[s.cells[i].Kind]++
		}
	}
	return counts
}
