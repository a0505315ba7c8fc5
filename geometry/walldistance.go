package geometry

import "math"

// computeWallDistance runs a one-time brute-force query for the nearest
// wall boundary face midpoint (spec.md §4.1); distances are measured to
// face midpoints, not to the closest point on each face. For meshes with no wall
// markers (e.g. a pure farfield/symmetry case) every cell gets +Inf, which
// callers must treat as "wall distance not meaningful" (e.g. skip the
// turbulence wall-distance-dependent terms).
func (m *Mesh) computeWallDistance() {
	var wallMidpoints [][]float64
	for _, bf := range m.bfaces {
		if bf.Marker.IsWall() {
			wallMidpoints = append(wallMidpoints, bf.Midpoint)
		}
	}
	for c := range m.points {
		if len(wallMidpoints) == 0 {
			m.wallDist[c] = math.Inf(1)
			continue
		}
		best := math.Inf(1)
		for _, wm := range wallMidpoints {
			d := vecNorm(vecSub(m.points[c], wm))
			if d < best {
				best = d
			}
		}
		m.wallDist[c] = best
	}
}
