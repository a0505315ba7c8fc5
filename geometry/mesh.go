// Package geometry implements the static mesh data model of spec.md §4.1:
// points, primal elements, dual control volumes, edges between adjacent
// cell centers, and marker-tagged boundary faces. A Mesh is built once from
// a geometry.RawMesh and never mutated afterward.
package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/ranscfd/ranserr"
	"github.com/notargets/ranscfd/types"
)

// Edge is an unordered pair of cell indices with an associated dual face:
// an area-scaled outward normal n_ij oriented i->j, and the face midpoint.
// Edges form the sparsity pattern of every assembled operator.
type Edge struct {
	I, J     int
	Normal   []float64 // area(2D length)-scaled, oriented I->J, len NDim
	Midpoint []float64
}

// BoundaryFace is a face lying on the domain boundary: an owning cell,
// a marker kind, an outward (into the exterior) area-scaled normal, and
// the face midpoint.
type BoundaryFace struct {
	Owner    int
	Marker   types.BCKind
	Normal   []float64
	Midpoint []float64
}

// Mesh is the immutable, preprocessed Geometry component. Every accessor is
// O(1); there are no mutating operations after NewMesh returns successfully.
type Mesh struct {
	NDim int

	points   [][]float64 // point positions, len NDim each
	volumes  []float64   // dual control volume per cell (== per point)
	wallDist []float64

	cellEdges [][]int // edge indices incident to each cell
	edges     []Edge
	edgeIndex map[types.EdgeKey]int

	bfaces      []BoundaryFace
	byMarker    map[types.BCKind][]int
	markerOrder []types.BCKind
}

// NewMesh constructs the Geometry component from raw points and primal
// elements per the canonical dual-face rule of spec.md §4.1: for each edge
// (i,j) of the primal graph, the dual face is the union, over primal
// elements incident to both i and j, of the polygon connecting the element
// centroid, the midpoints of element edges touching both i and j, and (in
// 3D) the centroids of element faces touching both. Construction fails if
// any dual volume is non-positive, any normal is the zero vector, or any
// marker references a nonexistent tag.
func NewMesh(raw RawMesh) (*Mesh, error) {
	if raw.NDim != 2 && raw.NDim != 3 {
		return nil, fmt.Errorf("%w: nDim must be 2 or 3, got %d", ranserr.ErrInputInvalid, raw.NDim)
	}
	for _, p := range raw.Points {
		if len(p) != raw.NDim {
			return nil, fmt.Errorf("%w: point dimension mismatch", ranserr.ErrInputInvalid)
		}
	}

	m := &Mesh{
		NDim:      raw.NDim,
		points:    raw.Points,
		volumes:   make([]float64, len(raw.Points)),
		wallDist:  make([]float64, len(raw.Points)),
		cellEdges: make([][]int, len(raw.Points)),
		edgeIndex: make(map[types.EdgeKey]int),
		byMarker:  make(map[types.BCKind][]int),
	}

	edgeContrib := make(map[types.EdgeKey][]float64) // accumulated normal
	edgeMidSum := make(map[types.EdgeKey][]float64)
	edgeMidCount := make(map[types.EdgeKey]int)

	for _, el := range raw.Elems {
		if err := m.accumulateElement(el, edgeContrib, edgeMidSum, edgeMidCount); err != nil {
			return nil, err
		}
	}

	// Materialize the edge list in a stable order (sorted by key) so
	// results are reproducible independent of map iteration order.
	keys := make([]types.EdgeKey, 0, len(edgeContrib))
	for k := range edgeContrib {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	for _, k := range keys {
		i, j := k.Cells()
		n := edgeContrib[k]
		if vecNorm(n) == 0 {
			return nil, fmt.Errorf("%w: zero-vector normal on edge (%d,%d)", ranserr.ErrGeometryDegenerate, i, j)
		}
		mid := vecScale(edgeMidSum[k], 1.0/float64(edgeMidCount[k]))
		ei := len(m.edges)
		m.edges = append(m.edges, Edge{I: i, J: j, Normal: n, Midpoint: mid})
		m.edgeIndex[k] = ei
		m.cellEdges[i] = append(m.cellEdges[i], ei)
		m.cellEdges[j] = append(m.cellEdges[j], ei)
	}

	if err := m.accumulateBoundaryFaces(raw); err != nil {
		return nil, err
	}

	for c, v := range m.volumes {
		if v <= 0 {
			return nil, fmt.Errorf("%w: non-positive dual volume at cell %d (%g)", ranserr.ErrGeometryDegenerate, c, v)
		}
	}

	m.computeWallDistance()

	return m, nil
}

// accumulateElement walks every primal-graph edge (i,j) of element el and
// adds this element's dual-face contribution (and its share of dual
// volume) to the running totals.
func (m *Mesh) accumulateElement(el RawElement,
	edgeContrib, edgeMidSum map[types.EdgeKey][]float64, edgeMidCount map[types.EdgeKey]int) error {
	verts := el.Vertices
	pts := make([][]float64, len(verts))
	for li, gi := range verts {
		if gi < 0 || gi >= len(m.points) {
			return fmt.Errorf("%w: element references out-of-range vertex %d", ranserr.ErrInputInvalid, gi)
		}
		pts[li] = m.points[gi]
	}
	elCentroid := centroid(pts)

	// Distribute the element's volume/area equally across its own dual
	// sub-volumes (one per vertex) via a simple centroid-fan partition:
	// each vertex's share is the element's total measure divided by its
	// vertex count. This is exact for the regular topologies FaceVertices
	// supports and keeps the total dual volume equal to the mesh volume
	// (spec.md §3 invariant) without needing per-topology quadrature.
	measure := elementMeasure(el.Topology, pts)
	share := measure / float64(len(verts))
	for _, gi := range verts {
		m.volumes[gi] += share
	}

	faces := el.Topology.FaceVertices()
	faceCentroids := make([][]float64, len(faces))
	for fi, fv := range faces {
		fp := make([][]float64, len(fv))
		for k, lv := range fv {
			fp[k] = pts[lv]
		}
		faceCentroids[fi] = centroid(fp)
	}

	for _, e := range el.Topology.Edges() {
		li, lj := e[0], e[1]
		gi, gj := verts[li], verts[lj]
		if gi == gj {
			continue
		}
		key := types.NewEdgeKey(gi, gj)
		mid := vecScale(vecAdd(pts[li], pts[lj]), 0.5)

		var contrib []float64
		if m.NDim == 2 {
			contrib = vecRot90_2D(vecSub(mid, elCentroid))
		} else {
			// Faces of this element touching both gi and gj (in a
			// well-formed element, exactly two for tets/hexes/prisms).
			var touching [][]float64
			for fi, fv := range faces {
				if containsBoth(fv, li, lj) {
					touching = append(touching, faceCentroids[fi])
				}
			}
			contrib = make([]float64, 3)
			switch len(touching) {
			case 2:
				contrib = quadNormal(elCentroid, touching[0], mid, touching[1])
			default:
				// Degenerate topology (e.g. a boundary edge with only one
				// touching face on a non-manifold input); fall back to a
				// triangle fan from the centroid through the midpoint and
				// whatever face centroids do touch.
				pts3 := append([][]float64{elCentroid}, touching...)
				pts3 = append(pts3, mid)
				contrib = fanNormal(pts3)
			}
		}
		// Orient this contribution so it points, on net, from the
		// lower-indexed to the higher-indexed cell; individual element
		// contributions to the same edge are summed afterward.
		lo, hi := gi, gj
		if lo > hi {
			lo, hi = hi, lo
		}
		dir := vecSub(m.points[hi], m.points[lo])
		if vecDot(contrib, dir) < 0 {
			contrib = vecScale(contrib, -1)
		}

		if _, ok := edgeContrib[key]; !ok {
			edgeContrib[key] = make([]float64, m.NDim)
			edgeMidSum[key] = make([]float64, m.NDim)
		}
		edgeContrib[key] = vecAdd(edgeContrib[key], contrib)
		edgeMidSum[key] = vecAdd(edgeMidSum[key], mid)
		edgeMidCount[key]++
	}
	return nil
}

func containsBoth(vs []int, a, b int) bool {
	var ha, hb bool
	for _, v := range vs {
		if v == a {
			ha = true
		}
		if v == b {
			hb = true
		}
	}
	return ha && hb
}

// quadNormal returns the vector area of the (possibly non-planar)
// quadrilateral a-b-c-d via triangle-fan accumulation from a.
func quadNormal(a, b, c, d []float64) []float64 {
	return fanNormal([][]float64{a, b, c, d})
}

// fanNormal returns the summed vector area of the triangle fan from
// pts[0] through consecutive pairs of the remaining points, i.e. the
// vector area of the (possibly non-planar) polygon pts[0..n-1].
func fanNormal(pts [][]float64) []float64 {
	total := make([]float64, 3)
	if len(pts) < 3 {
		return total
	}
	for i := 1; i < len(pts)-1; i++ {
		e1 := vecSub(pts[i], pts[0])
		e2 := vecSub(pts[i+1], pts[0])
		total = vecAdd(total, vecScale(vecCross3(e1, e2), 0.5))
	}
	return total
}

// elementMeasure returns the element's area (2D) or volume (3D).
func elementMeasure(t types.ElementTopology, pts [][]float64) float64 {
	switch len(pts[0]) {
	case 2:
		return polygonArea2D(pts)
	default:
		return polyhedronVolume3D(t, pts)
	}
}

func polygonArea2D(pts [][]float64) float64 {
	var a float64
	n := len(pts)
	for i := 0; i < n; i++ {
		p0 := pts[i]
		p1 := pts[(i+1)%n]
		a += p0[0]*p1[1] - p1[0]*p0[1]
	}
	return math.Abs(a) * 0.5
}

// polyhedronVolume3D computes the volume by summing tetrahedra formed from
// the element centroid and each triangulated boundary face.
func polyhedronVolume3D(t types.ElementTopology, pts [][]float64) float64 {
	c := centroid(pts)
	var vol float64
	for _, fv := range t.FaceVertices() {
		for k := 1; k < len(fv)-1; k++ {
			p0, p1, p2 := pts[fv[0]], pts[fv[k]], pts[fv[k+1]]
			vol += tetVolume(c, p0, p1, p2)
		}
	}
	return math.Abs(vol)
}

func tetVolume(a, b, c, d []float64) float64 {
	ab := vecSub(b, a)
	ac := vecSub(c, a)
	ad := vecSub(d, a)
	cross := vecCross3(ac, ad)
	return vecDot(ab, cross) / 6.0
}
