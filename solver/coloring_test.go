package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/types"
)

// colorEdges' whole contract: every edge appears in exactly one color, and
// within a color no two edges share a cell — otherwise concurrent
// assembleEdge calls in that color would race on the shared cell's R/M
// slots.
func assertValidColoring(t *testing.T, mesh *geometry.Mesh, colors [][]int) {
	t.Helper()
	seen := make([]bool, mesh.EdgeCount())
	for _, color := range colors {
		touched := make(map[int]bool)
		for _, e := range color {
			assert.False(t, seen[e], "edge %d assigned to more than one color", e)
			seen[e] = true
			edge := mesh.Edge(e)
			assert.False(t, touched[edge.I], "cell %d shared by two edges in one color", edge.I)
			assert.False(t, touched[edge.J], "cell %d shared by two edges in one color", edge.J)
			touched[edge.I] = true
			touched[edge.J] = true
		}
	}
	for e, ok := range seen {
		assert.True(t, ok, "edge %d missing from coloring", e)
	}
}

func TestColorEdges_TwoTriangleMeshNeedsThreeColors(t *testing.T) {
	mesh := wallSquare(t)
	colors := colorEdges(mesh)
	assertValidColoring(t, mesh, colors)
	assert.Equal(t, 5, mesh.EdgeCount(), "four outer edges plus the shared diagonal")
	assert.Len(t, colors, 3)
}

// A grid of triangles gives many cells touched by several edges, so a
// valid coloring must use more than one color.
func TestColorEdges_LargerMeshHasNoCrossColorCollision(t *testing.T) {
	// A 3x3 grid of unit squares, each split into two triangles: enough
	// cells and shared edges to exercise the greedy coloring beyond the
	// trivial two-triangle case.
	const nx, ny = 4, 4
	var points [][]float64
	idx := func(i, j int) int { return j*nx + i }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			points = append(points, []float64{float64(i), float64(j)})
		}
	}
	var elems []geometry.RawElement
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			elems = append(elems,
				geometry.RawElement{Topology: types.Triangle, Vertices: []int{a, b, c}},
				geometry.RawElement{Topology: types.Triangle, Vertices: []int{a, c, d}},
			)
		}
	}
	var bfaces []geometry.RawBoundaryFace
	for i := 0; i < nx-1; i++ {
		bfaces = append(bfaces,
			geometry.RawBoundaryFace{Marker: "farfield", Vertices: []int{idx(i, 0), idx(i+1, 0)}},
			geometry.RawBoundaryFace{Marker: "farfield", Vertices: []int{idx(i, ny-1), idx(i+1, ny-1)}},
		)
	}
	for j := 0; j < ny-1; j++ {
		bfaces = append(bfaces,
			geometry.RawBoundaryFace{Marker: "farfield", Vertices: []int{idx(0, j), idx(0, j+1)}},
			geometry.RawBoundaryFace{Marker: "farfield", Vertices: []int{idx(nx-1, j), idx(nx-1, j+1)}},
		)
	}

	mesh, err := geometry.NewMesh(geometry.FromArrays(2, points, elems, bfaces))
	require.NoError(t, err)

	colors := colorEdges(mesh)
	assertValidColoring(t, mesh, colors)
	assert.Greater(t, len(colors), 1, "a grid mesh has cells of degree > 1 and needs multiple colors")
}
