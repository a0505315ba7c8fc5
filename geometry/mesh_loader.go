package geometry

import "github.com/notargets/ranscfd/types"

// RawMesh is the contract consumed from the external Mesh Loader
// (spec.md §6): point coordinates, primal elements tagged with a topology,
// and marker-tagged boundary faces, all already validated for duplicate
// points and positive element Jacobians by the loader. Geometry never
// parses a mesh file itself.
type RawMesh struct {
	NDim   int
	Points [][]float64 // len(Points) points, each len == NDim
	Elems  []RawElement
	BFaces []RawBoundaryFace
}

// RawElement is one primal element: a topology tag plus an ordered vertex
// list matching that topology's local numbering.
type RawElement struct {
	Topology types.ElementTopology
	Vertices []int
}

// RawBoundaryFace is a marker-tagged face lying on the domain boundary,
// with an ordered vertex list (a 2-vertex edge in 2D, a polygon in 3D).
type RawBoundaryFace struct {
	Marker   string
	Vertices []int
}

// FromArrays builds a RawMesh from plain slices. It exists so tests (and
// small embedded examples) can construct meshes in-process without a file
// format, exactly the role Notargets-gocfd's mesh_test_helpers.go plays for
// its own DG3D tests.
func FromArrays(ndim int, points [][]float64, elems []RawElement, bfaces []RawBoundaryFace) RawMesh {
	return RawMesh{NDim: ndim, Points: points, Elems: elems, BFaces: bfaces}
}
