package solver

import "github.com/notargets/ranscfd/geometry"

// colorEdges partitions a mesh's edges into color classes such that no two
// edges of the same color touch a common cell, the graph-coloring scheme
// spec.md §5 requires before an edge loop can run its accumulation phase
// (R_i += F, R_j -= F, and the corresponding Jacobian blocks) across
// goroutines without a lock: within one color, concurrent calls to
// assembleEdge never write the same cell's slot.
//
// It is a standard greedy coloring over the mesh's cell-adjacency graph
// (color an edge with the lowest color not already used at either of its
// two cells), applied here to the dual mesh rather than any structure the
// teacher's DG assembly needs, since the teacher has no shared-accumulation
// edge loop to race in the first place.
func colorEdges(mesh *geometry.Mesh) [][]int {
	n := mesh.CellCount()
	ne := mesh.EdgeCount()
	used := make([]map[int]bool, n)
	for c := range used {
		used[c] = make(map[int]bool)
	}

	colorOf := make([]int, ne)
	maxColor := 0
	for e := 0; e < ne; e++ {
		edge := mesh.Edge(e)
		i, j := edge.I, edge.J
		c := 0
		for used[i][c] || used[j][c] {
			c++
		}
		colorOf[e] = c
		used[i][c] = true
		used[j][c] = true
		if c+1 > maxColor {
			maxColor = c + 1
		}
	}

	colors := make([][]int, maxColor)
	for e := 0; e < ne; e++ {
		c := colorOf[e]
		colors[c] = append(colors[c], e)
	}
	return colors
}
