// Package voronoi is the reference implementation of the geometry port.
//
// The neighbor graph is a Delaunay triangulation; each cell's bounded
// region is its Voronoi region clipped to the convex hull of the alive
// points, built by successively clipping the hull polygon against the
// perpendicular-bisector half-plane of every Delaunay neighbor. For any
// valid input the regions tile the hull interior exactly.
package voronoi

import (
	"fmt"
	"sort"

	"github.com/fogleman/delaunay"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/geom"
)

// Tessellator builds Voronoi snapshots from alive point sets.
type Tessellator struct{}

// New creates a Tessellator.
func New() *Tessellator {
	return &Tessellator{}
}

// Build triangulates the point set and derives the clipped dual regions.
// Returns geom.ErrDegenerate when no triangulation exists.
func (t *Tessellator) Build(points []geom.Point) (geom.Snapshot, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("voronoi: %d points: %w", len(points), geom.ErrDegenerate)
	}

	dpts := make([]delaunay.Point, len(points))
	ids := make([]int64, len(points))
	for i, p := range points {
		dpts[i] = delaunay.Point{X: p.Pos.X, Y: p.Pos.Y}
		ids[i] = p.ID
	}

	tri, err := delaunay.Triangulate(dpts)
	if err != nil {
		return nil, fmt.Errorf("voronoi: triangulation failed (%v): %w", err, geom.ErrDegenerate)
	}
	if len(tri.Triangles) == 0 {
		return nil, fmt.Errorf("voronoi: no triangles (collinear input): %w", geom.ErrDegenerate)
	}

	// Index-level adjacency from triangle edges, deduplicated.
	adj := make([]map[int]struct{}, len(points))
	for i := range adj {
		adj[i] = make(map[int]struct{}, 8)
	}
	for i := 0; i < len(tri.Triangles); i += 3 {
		a, b, c := tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]
		adj[a][b] = struct{}{}
		adj[a][c] = struct{}{}
		adj[b][a] = struct{}{}
		adj[b][c] = struct{}{}
		adj[c][a] = struct{}{}
		adj[c][b] = struct{}{}
	}

	hull := hullPolygon(tri.ConvexHull)

	snap := &snapshot{
		ids:       make([]int64, len(ids)),
		neighbors: make(map[int64][]int64, len(points)),
		regions:   make(map[int64][]r2.Vec, len(points)),
		areas:     make(map[int64]float64, len(points)),
	}
	copy(snap.ids, ids)

	for i, p := range points {
		nbrIdx := make([]int, 0, len(adj[i]))
		for j := range adj[i] {
			nbrIdx = append(nbrIdx, j)
		}
		sort.Ints(nbrIdx)

		nbrs := make([]int64, len(nbrIdx))
		region := append([]r2.Vec(nil), hull...)
		for k, j := range nbrIdx {
			nbrs[k] = ids[j]
			region = clipBisector(region, p.Pos, points[j].Pos)
		}
		snap.neighbors[p.ID] = nbrs

		if len(region) >= 3 {
			snap.regions[p.ID] = region
			snap.areas[p.ID] = polygonArea(region)
		}
	}

	// Each adjacency once, id-ordered.
	for i := range points {
		for j := range adj[i] {
			a, b := ids[i], ids[j]
			if a < b {
				snap.edges = append(snap.edges, geom.Edge{A: a, B: b})
			}
		}
	}
	sort.Slice(snap.edges, func(i, j int) bool {
		if snap.edges[i].A != snap.edges[j].A {
			return snap.edges[i].A < snap.edges[j].A
		}
		return snap.edges[i].B < snap.edges[j].B
	})

	return snap, nil
}

// snapshot is one step's immutable tessellation.
type snapshot struct {
	ids       []int64
	neighbors map[int64][]int64
	regions   map[int64][]r2.Vec
	areas     map[int64]float64
	edges     []geom.Edge
}

func (s *snapshot) Neighbors(id int64) []int64 {
	return s.neighbors[id]
}

func (s *snapshot) HasRegion(id int64) bool {
	_, ok := s.regions[id]
	return ok
}

func (s *snapshot) RegionVertices(id int64) []r2.Vec {
	return s.regions[id]
}

func (s *snapshot) RegionArea(id int64) float64 {
	return s.areas[id]
}

func (s *snapshot) SolidVertices() []int64 {
	return s.ids
}

func (s *snapshot) SolidEdges() []geom.Edge {
	return s.edges
}

// TriangulateConvex fan-triangulates a convex polygon from its first
// vertex. Returns geom.ErrEmptyRegion for polygons too collapsed to
// sample from.
func (s *snapshot) TriangulateConvex(vertices []r2.Vec) ([]geom.Triangle, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("voronoi: %d vertices: %w", len(vertices), geom.ErrEmptyRegion)
	}
	tris := make([]geom.Triangle, 0, len(vertices)-2)
	total := 0.0
	for i := 1; i < len(vertices)-1; i++ {
		tr := geom.Triangle{A: vertices[0], B: vertices[i], C: vertices[i+1]}
		total += tr.Area()
		tris = append(tris, tr)
	}
	if total < 1e-12 {
		return nil, fmt.Errorf("voronoi: zero-area polygon: %w", geom.ErrEmptyRegion)
	}
	return tris, nil
}

// hullPolygon converts the triangulation's convex hull to a CCW polygon.
func hullPolygon(hull []delaunay.Point) []r2.Vec {
	poly := make([]r2.Vec, len(hull))
	for i, p := range hull {
		poly[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	if signedArea(poly) < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	return poly
}

// clipBisector keeps the part of poly on p's side of the perpendicular
// bisector between p and q (Sutherland-Hodgman against one half-plane).
func clipBisector(poly []r2.Vec, p, q r2.Vec) []r2.Vec {
	if len(poly) == 0 {
		return poly
	}
	mid := r2.Vec{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
	n := r2.Sub(q, p) // points away from p; inside when dot(x-mid, n) <= 0

	inside := func(x r2.Vec) bool {
		return r2.Dot(r2.Sub(x, mid), n) <= 0
	}
	cross := func(a, b r2.Vec) r2.Vec {
		d := r2.Sub(b, a)
		denom := r2.Dot(d, n)
		s := r2.Dot(r2.Sub(mid, a), n) / denom
		return r2.Add(a, r2.Scale(s, d))
	}

	out := make([]r2.Vec, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevIn := inside(prev)
	for _, cur := range poly {
		curIn := inside(cur)
		switch {
		case prevIn && curIn:
			out = append(out, cur)
		case prevIn && !curIn:
			out = append(out, cross(prev, cur))
		case !prevIn && curIn:
			out = append(out, cross(prev, cur), cur)
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// signedArea is the shoelace sum, positive for CCW winding.
func signedArea(poly []r2.Vec) float64 {
	sum := 0.0
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// polygonArea is the unsigned polygon area.
func polygonArea(poly []r2.Vec) float64 {
	a := signedArea(poly)
	if a < 0 {
		return -a
	}
	return a
}
