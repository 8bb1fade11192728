// Package geom defines the contract between the simulation engine and
// the planar tessellation engine it consumes. The engine never builds
// or mutates geometry itself; it hands a labeled point set to a
// Tessellator and queries the resulting Snapshot for one timestep.
package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrDegenerate reports a point set that admits no triangulation
	// (fewer than three points, or all points collinear). Fatal for the
	// step that produced it.
	ErrDegenerate = errors.New("geom: degenerate point set")

	// ErrEmptyRegion reports a bounded region too collapsed to
	// triangulate for sampling. Local to one cell, never fatal.
	ErrEmptyRegion = errors.New("geom: region has no usable area")
)

// Point is an id-tagged position handed to a Tessellator.
type Point struct {
	ID  int64
	Pos r2.Vec
}

// Edge is an adjacency between two solid (non-ghost) point ids.
type Edge struct {
	A, B int64
}

// Triangle is one element of a convex-polygon triangulation.
type Triangle struct {
	A, B, C r2.Vec
}

// Area returns the triangle's unsigned area.
func (t Triangle) Area() float64 {
	return math.Abs((t.B.X-t.A.X)*(t.C.Y-t.A.Y)-(t.C.X-t.A.X)*(t.B.Y-t.A.Y)) / 2
}

// Tessellator builds a Snapshot from an alive point set. Build is a
// pure function of its input; repeated builds of the same points yield
// equivalent snapshots.
type Tessellator interface {
	Build(points []Point) (Snapshot, error)
}

// Snapshot is the neighbor graph and bounded dual tessellation of one
// point set. It is immutable for the step in which it was built and is
// replaced wholesale, never patched.
//
// Neighbors, SolidVertices and SolidEdges report only solid elements;
// ghost/boundary artifacts of the underlying representation are
// filtered before they reach the caller.
type Snapshot interface {
	// Neighbors returns the ids adjacent to id in the neighbor graph.
	Neighbors(id int64) []int64

	// HasRegion reports whether id has a bounded region in this snapshot.
	HasRegion(id int64) bool

	// RegionVertices returns the ordered vertices of id's convex bounded
	// region, clipped to the hull of the input points.
	RegionVertices(id int64) []r2.Vec

	// RegionArea returns the area of id's bounded region, 0 if absent.
	RegionArea(id int64) float64

	// SolidVertices returns all ids present in the snapshot.
	SolidVertices() []int64

	// SolidEdges returns every adjacency once (A < B).
	SolidEdges() []Edge

	// TriangulateConvex triangulates an arbitrary convex polygon for
	// sampling. Returns ErrEmptyRegion if the polygon has fewer than
	// three vertices or no usable area.
	TriangulateConvex(vertices []r2.Vec) ([]Triangle, error)
}
