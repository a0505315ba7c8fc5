package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ranscfd/types"
)

// twoTriMesh builds two right triangles sharing the diagonal edge (1,2) of
// a unit square, with the three outer edges tagged as farfield.
func twoTriMesh() RawMesh {
	points := [][]float64{
		{0, 0}, // 0
		{1, 0}, // 1
		{0, 1}, // 2
		{1, 1}, // 3
	}
	elems := []RawElement{
		{Topology: types.Triangle, Vertices: []int{0, 1, 2}},
		{Topology: types.Triangle, Vertices: []int{1, 3, 2}},
	}
	bfaces := []RawBoundaryFace{
		{Marker: "farfield", Vertices: []int{0, 1}},
		{Marker: "farfield", Vertices: []int{0, 2}},
		{Marker: "farfield", Vertices: []int{1, 3}},
		{Marker: "farfield", Vertices: []int{3, 2}},
	}
	return FromArrays(2, points, elems, bfaces)
}

func TestNewMesh_TwoTriangles(t *testing.T) {
	m, err := NewMesh(twoTriMesh())
	require.NoError(t, err)

	assert.Equal(t, 4, m.CellCount())
	assert.Equal(t, 5, m.EdgeCount()) // 4 outer + 1 shared diagonal
	assert.InDelta(t, 1.0, m.TotalVolume(), 1e-12)

	for c := 0; c < m.CellCount(); c++ {
		assert.Greater(t, m.Volume(c), 0.0)
	}

	// Every internal edge normal must be nonzero.
	for e := 0; e < m.EdgeCount(); e++ {
		n := m.Normal(e)
		assert.Greater(t, vecNorm(n), 0.0)
	}
}

func TestNewMesh_EdgeOrientation(t *testing.T) {
	m, err := NewMesh(twoTriMesh())
	require.NoError(t, err)
	for e := 0; e < m.EdgeCount(); e++ {
		edge := m.Edge(e)
		assert.Less(t, edge.I, edge.J, "edge normals must be stored with lower index first")
	}
}

func TestNewMesh_UnknownMarker(t *testing.T) {
	raw := twoTriMesh()
	raw.BFaces[0].Marker = "not_a_marker"
	_, err := NewMesh(raw)
	require.Error(t, err)
}

// distortedHex builds a single, mildly skewed hexahedron to exercise the 3D
// dual-face construction path (spec.md §8 scenario 5's mesh class).
func distortedHex() RawMesh {
	points := [][]float64{
		{0, 0, 0}, {1, 0.05, 0}, {1.05, 1, 0}, {0, 0.95, 0},
		{0.02, 0.02, 1}, {0.98, 0, 1.02}, {1, 1.02, 0.98}, {0.03, 1, 1},
	}
	elems := []RawElement{
		{Topology: types.Hexahedron, Vertices: []int{0, 1, 2, 3, 4, 5, 6, 7}},
	}
	// Tag all six faces as farfield so the mesh is closed.
	faceIdx := types.Hexahedron.FaceVertices()
	var bfaces []RawBoundaryFace
	for _, fv := range faceIdx {
		g := make([]int, len(fv))
		for i, lv := range fv {
			g[i] = lv
		}
		bfaces = append(bfaces, RawBoundaryFace{Marker: "farfield", Vertices: g})
	}
	return FromArrays(3, points, elems, bfaces)
}

func TestNewMesh_DistortedHex(t *testing.T) {
	m, err := NewMesh(distortedHex())
	require.NoError(t, err)
	assert.Equal(t, 8, m.CellCount())
	assert.Equal(t, 12, m.EdgeCount())
	assert.Greater(t, m.TotalVolume(), 0.0)
	for c := 0; c < m.CellCount(); c++ {
		assert.Greater(t, m.Volume(c), 0.0)
	}
	for e := 0; e < m.EdgeCount(); e++ {
		assert.Greater(t, vecNorm(m.Normal(e)), 0.0)
	}
}

func TestNewMesh_DegenerateVolume(t *testing.T) {
	raw := twoTriMesh()
	// Collapse a point onto another to force a zero-area element.
	raw.Points[2] = []float64{1, 0}
	_, err := NewMesh(raw)
	require.Error(t, err)
}

func TestWallDistance_NoWalls(t *testing.T) {
	m, err := NewMesh(twoTriMesh())
	require.NoError(t, err)
	for c := 0; c < m.CellCount(); c++ {
		assert.True(t, math.IsInf(m.WallDistance(c), 1))
	}
}

func TestWallDistance_WithWall(t *testing.T) {
	raw := twoTriMesh()
	raw.BFaces[0].Marker = "wall_heatflux" // edge (0,1), y=0
	m, err := NewMesh(raw)
	require.NoError(t, err)
	// Point 2 (0,1) is farthest from the wall segment on y=0.
	assert.Greater(t, m.WallDistance(2), m.WallDistance(0))
}
