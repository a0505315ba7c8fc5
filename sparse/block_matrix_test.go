package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/types"
)

// twoTriMesh mirrors geometry's own two-triangle fixture: a unit square
// split along its diagonal, dual cells at the four vertices.
func twoTriMesh(t *testing.T) *geometry.Mesh {
	t.Helper()
	points := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	elems := []geometry.RawElement{
		{Topology: types.Triangle, Vertices: []int{0, 1, 2}},
		{Topology: types.Triangle, Vertices: []int{1, 3, 2}},
	}
	bfaces := []geometry.RawBoundaryFace{
		{Marker: "farfield", Vertices: []int{0, 1}},
		{Marker: "farfield", Vertices: []int{0, 2}},
		{Marker: "farfield", Vertices: []int{1, 3}},
		{Marker: "farfield", Vertices: []int{3, 2}},
	}
	m, err := geometry.NewMesh(geometry.FromArrays(2, points, elems, bfaces))
	require.NoError(t, err)
	return m
}

func TestNewFromMesh_PatternMatchesDualGraph(t *testing.T) {
	mesh := twoTriMesh(t)
	bm := NewFromMesh(mesh, 4)

	require.Equal(t, mesh.CellCount(), bm.NRows)
	for i := 0; i < bm.NRows; i++ {
		// every row must contain its own diagonal
		assert.GreaterOrEqual(t, bm.find(i, i), 0)
	}
	// every mesh edge must show up as a symmetric off-diagonal pair
	for e := 0; e < mesh.EdgeCount(); e++ {
		edge := mesh.Edge(e)
		assert.GreaterOrEqual(t, bm.find(edge.I, edge.J), 0)
		assert.GreaterOrEqual(t, bm.find(edge.J, edge.I), 0)
	}
}

func TestBlockMatrix_AddAtAndDiag(t *testing.T) {
	mesh := twoTriMesh(t)
	bm := NewFromMesh(mesh, 2)

	blk := bm.Diag(0)
	blk.SetIdentity(3.0)
	assert.Equal(t, 3.0, bm.Diag(0).At(0, 0))

	bm.Zero()
	assert.Equal(t, 0.0, bm.Diag(0).At(0, 0))
}

func TestBlockMatrix_SpMV_Identity(t *testing.T) {
	mesh := twoTriMesh(t)
	nv := 2
	bm := NewFromMesh(mesh, nv)
	for i := 0; i < bm.NRows; i++ {
		bm.Diag(i).SetIdentity(1.0)
	}
	x := make([]float64, bm.NRows*nv)
	for i := range x {
		x[i] = float64(i + 1)
	}
	y := make([]float64, bm.NRows*nv)
	bm.SpMV(x, y)
	assert.Equal(t, x, y)
}

func TestBlockMatrix_BlockDiagInverse(t *testing.T) {
	mesh := twoTriMesh(t)
	bm := NewFromMesh(mesh, 2)
	for i := 0; i < bm.NRows; i++ {
		d := bm.Diag(i)
		d.Set(0, 0, 2)
		d.Set(1, 1, 4)
	}
	dinv := bm.BlockDiagInverse()
	nv := bm.NVar
	for i := 0; i < bm.NRows; i++ {
		off := i * nv * nv
		assert.InDelta(t, 0.5, dinv[off+0], 1e-12)
		assert.InDelta(t, 0.25, dinv[off+3], 1e-12)
	}
}
