package geometry

// CellCount, EdgeCount and BoundaryFaceCount give the sizes needed to
// allocate per-cell / per-edge / per-boundary-face arrays elsewhere in the
// core; all Geometry accessors below are O(1).
func (m *Mesh) CellCount() int          { return len(m.points) }
func (m *Mesh) EdgeCount() int          { return len(m.edges) }
func (m *Mesh) BoundaryFaceCount() int  { return len(m.bfaces) }

func (m *Mesh) Edge(e int) Edge                 { return m.edges[e] }
func (m *Mesh) Normal(e int) []float64          { return m.edges[e].Normal }
func (m *Mesh) Volume(c int) float64            { return m.volumes[c] }
func (m *Mesh) WallDistance(c int) float64      { return m.wallDist[c] }
func (m *Mesh) EdgesOfCell(c int) []int         { return m.cellEdges[c] }
func (m *Mesh) BoundaryFace(i int) BoundaryFace { return m.bfaces[i] }
func (m *Mesh) Point(c int) []float64           { return m.points[c] }

// TotalVolume sums the dual control volumes; for a closed domain this must
// equal the primal mesh volume (spec.md §3 invariant).
func (m *Mesh) TotalVolume() float64 {
	var v float64
	for _, vc := range m.volumes {
		v += vc
	}
	return v
}
