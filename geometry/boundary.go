package geometry

import (
	"fmt"

	"github.com/notargets/ranscfd/ranserr"
	"github.com/notargets/ranscfd/types"
)

// accumulateBoundaryFaces resolves each raw boundary face's marker tag,
// computes its owning cell (the single primal-mesh point shared by every
// vertex of the face reduces to: the face lies on the boundary of exactly
// one dual cell per incident vertex, so we attribute the face's flux once
// per bounding vertex, matching the fact that dual boundary faces are
// carved one per boundary vertex, not one per primal boundary facet), and
// its area-scaled outward normal and midpoint.
func (m *Mesh) accumulateBoundaryFaces(raw RawMesh) error {
	for _, bf := range raw.BFaces {
		kind, ok := types.ParseBCKind(bf.Marker)
		if !ok {
			return fmt.Errorf("%w: unknown boundary marker %q", ranserr.ErrGeometryDegenerate, bf.Marker)
		}
		pts := make([][]float64, len(bf.Vertices))
		for k, gi := range bf.Vertices {
			if gi < 0 || gi >= len(m.points) {
				return fmt.Errorf("%w: boundary face references out-of-range vertex %d", ranserr.ErrInputInvalid, gi)
			}
			pts[k] = m.points[gi]
		}
		mid := centroid(pts)
		var normal []float64
		if m.NDim == 2 {
			// A 2D boundary "face" is a segment; its normal is the
			// 90-degree rotation of the segment vector. Which rotation is
			// outward is not derivable from the segment alone, so the
			// normal is oriented against an interior reference point below.
			normal = vecRot90_2D(vecSub(pts[1], pts[0]))
		} else {
			normal = fanNormal(pts)
		}
		// Orient outward: away from the centroid of the primal element that
		// holds the face's first two vertices (and its third, in 3D).
		for _, el := range raw.Elems {
			v := bf.Vertices
			if containsBoth(el.Vertices, v[0], v[1]) && (len(v) == 2 || containsBoth(el.Vertices, v[2], v[2])) {
				ep := make([][]float64, len(el.Vertices))
				for k, ev := range el.Vertices {
					ep[k] = m.points[ev]
				}
				if vecDot(normal, vecSub(mid, centroid(ep))) < 0 {
					normal = vecScale(normal, -1)
				}
				break
			}
		}

		// Every vertex of the face gets a share of the boundary flux,
		// attributed once per incident vertex (the standard finite-volume
		// dual-boundary convention: each boundary vertex integrates the
		// portion of the boundary face nearest to it).
		share := 1.0 / float64(len(bf.Vertices))
		for _, gi := range bf.Vertices {
			n := vecScale(normal, share)
			m.bfaces = append(m.bfaces, BoundaryFace{
				Owner:    gi,
				Marker:   kind,
				Normal:   n,
				Midpoint: mid,
			})
			idx := len(m.bfaces) - 1
			if _, seen := m.byMarker[kind]; !seen {
				m.markerOrder = append(m.markerOrder, kind)
			}
			m.byMarker[kind] = append(m.byMarker[kind], idx)
		}
	}
	return nil
}

// BoundaryFacesByMarker returns the boundary faces tagged with kind, in
// construction order.
func (m *Mesh) BoundaryFacesByMarker(kind types.BCKind) []BoundaryFace {
	idxs := m.byMarker[kind]
	out := make([]BoundaryFace, len(idxs))
	for i, idx := range idxs {
		out[i] = m.bfaces[idx]
	}
	return out
}

// Markers returns the distinct marker kinds present in the mesh, in the
// order first encountered during construction.
func (m *Mesh) Markers() []types.BCKind {
	return append([]types.BCKind(nil), m.markerOrder...)
}
