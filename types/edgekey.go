package types

import (
	"fmt"
	"math"
)

// EdgeKey packs an unordered pair of cell indices into a single comparable
// value, always stored with the lower index first, so that the same edge
// looked up from either endpoint hashes identically.
type EdgeKey uint64

// NewEdgeKey packs two non-negative cell indices into an EdgeKey. It panics
// on a negative or overflowing index; those indicate a geometry-construction
// bug upstream, not a runtime condition callers should recover from.
func NewEdgeKey(i, j int) EdgeKey {
	const limit = math.MaxUint32
	if i < 0 || j < 0 || i > limit || j > limit {
		panic(fmt.Errorf("edge key out of range: (%d,%d)", i, j))
	}
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	return EdgeKey(uint64(lo) | uint64(hi)<<32)
}

// Cells returns the two cell indices, lower index first — the orientation
// spec.md §3 requires ("its normal points from the lower-indexed cell to
// the higher-indexed cell").
func (k EdgeKey) Cells() (i, j int) {
	i = int(uint32(k))
	j = int(uint32(k >> 32))
	return
}

// ElementTopology names a primal-element reference shape. Geometry derives
// the dual mesh from the reference-element face list associated with each
// topology, so adding a shape means adding its face list, not new
// dual-construction code.
type ElementTopology uint8

const (
	Triangle ElementTopology = iota
	Quadrilateral
	Tetrahedron
	Hexahedron
	Prism
	Pyramid
)

// FaceVertices returns, for each reference face of the topology, the local
// vertex indices (into the element's vertex list) that bound it. 2D
// topologies return edges (2 vertices per "face"); 3D topologies return
// polygonal faces.
func (t ElementTopology) FaceVertices() [][]int {
	switch t {
	case Triangle:
		return [][]int{{0, 1}, {1, 2}, {2, 0}}
	case Quadrilateral:
		return [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	case Tetrahedron:
		return [][]int{{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}}
	case Hexahedron:
		return [][]int{
			{0, 1, 2, 3}, {4, 5, 6, 7},
			{0, 1, 5, 4}, {1, 2, 6, 5},
			{2, 3, 7, 6}, {3, 0, 4, 7},
		}
	case Prism:
		return [][]int{
			{0, 1, 2}, {3, 4, 5},
			{0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5},
		}
	case Pyramid:
		return [][]int{
			{0, 1, 2, 3},
			{0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
		}
	default:
		panic(fmt.Errorf("unknown element topology %d", t))
	}
}

// Edges returns the local vertex-index pairs of every straight edge of the
// reference element, distinct from FaceVertices: a 3D face has more than
// two vertices, but Geometry's dual construction walks vertex-to-vertex
// edges of the primal graph, not faces.
func (t ElementTopology) Edges() [][2]int {
	switch t {
	case Triangle:
		return [][2]int{{0, 1}, {1, 2}, {2, 0}}
	case Quadrilateral:
		return [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	case Tetrahedron:
		return [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	case Hexahedron:
		return [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
			{4, 5}, {5, 6}, {6, 7}, {7, 4},
			{0, 4}, {1, 5}, {2, 6}, {3, 7},
		}
	case Prism:
		return [][2]int{
			{0, 1}, {1, 2}, {2, 0},
			{3, 4}, {4, 5}, {5, 3},
			{0, 3}, {1, 4}, {2, 5},
		}
	case Pyramid:
		return [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
			{0, 4}, {1, 4}, {2, 4}, {3, 4},
		}
	default:
		panic(fmt.Errorf("unknown element topology %d", t))
	}
}

// NDim reports the ambient dimension implied by a topology.
func (t ElementTopology) NDim() int {
	switch t {
	case Triangle, Quadrilateral:
		return 2
	default:
		return 3
	}
}

func (t ElementTopology) String() string {
	names := []string{"triangle", "quadrilateral", "tetrahedron", "hexahedron", "prism", "pyramid"}
	if int(t) >= len(names) {
		return "unknown"
	}
	return names[t]
}
