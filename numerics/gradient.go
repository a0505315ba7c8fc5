package numerics

import "gonum.org/v1/gonum/mat"

// GradientMethod selects Green-Gauss or weighted least squares for
// reconstructing cell-centered gradients, per spec.md §4.3.
type GradientMethod int

const (
	GradientGreenGauss GradientMethod = iota
	GradientLeastSquares
)

func ParseGradientMethod(tag string) (GradientMethod, bool) {
	switch tag {
	case "green_gauss", "green-gauss":
		return GradientGreenGauss, true
	case "least_squares", "weighted_least_squares":
		return GradientLeastSquares, true
	default:
		return 0, false
	}
}

// GreenGauss computes ∇V for one cell from its neighbor primitive states
// via the area-weighted divergence theorem:
// ∇V ≈ (1/Vol) Σ_faces V_f * n_f * |A_f|, with V_f the arithmetic average
// of the two cell states bordering the face.
//
// neighVals holds, per incident edge, the neighbor's primitive vector;
// faceNormal holds the corresponding outward-oriented area-weighted
// normal (already signed relative to this cell); vol is the cell volume.
func GreenGauss(selfVal []float64, neighVals [][]float64, faceNormals [][]float64, vol float64) [][]float64 {
	nvp := len(selfVal)
	ndim := len(faceNormals[0])
	grad := make([][]float64, ndim)
	for d := 0; d < ndim; d++ {
		grad[d] = make([]float64, nvp)
	}
	for f, nv := range neighVals {
		n := faceNormals[f]
		for k := 0; k < nvp; k++ {
			vf := 0.5 * (selfVal[k] + nv[k])
			for d := 0; d < ndim; d++ {
				grad[d][k] += vf * n[d]
			}
		}
	}
	if vol > 0 {
		for d := 0; d < ndim; d++ {
			for k := 0; k < nvp; k++ {
				grad[d][k] /= vol
			}
		}
	}
	return grad
}

// WeightedLeastSquares computes ∇V for one cell by solving the
// inverse-distance-weighted normal equations over its edge neighbors, the
// alternative reconstruction spec.md §4.3 allows. dx holds, per neighbor,
// the vector from the cell center to the neighbor center.
func WeightedLeastSquares(selfVal []float64, neighVals [][]float64, dx [][]float64) [][]float64 {
	nvp := len(selfVal)
	ndim := len(dx[0])
	nNeigh := len(dx)

	AtA := mat.NewDense(ndim, ndim, nil)
	AtB := mat.NewDense(ndim, nvp, nil)
	for f := 0; f < nNeigh; f++ {
		var dist2 float64
		for d := 0; d < ndim; d++ {
			dist2 += dx[f][d] * dx[f][d]
		}
		if dist2 == 0 {
			continue
		}
		w := 1.0 / dist2
		for i := 0; i < ndim; i++ {
			for j := 0; j < ndim; j++ {
				AtA.Set(i, j, AtA.At(i, j)+w*dx[f][i]*dx[f][j])
			}
			for k := 0; k < nvp; k++ {
				dv := neighVals[f][k] - selfVal[k]
				AtB.Set(i, k, AtB.At(i, k)+w*dx[f][i]*dv)
			}
		}
	}

	var lu mat.LU
	lu.Factorize(AtA)
	var sol mat.Dense
	grad := make([][]float64, ndim)
	for d := 0; d < ndim; d++ {
		grad[d] = make([]float64, nvp)
	}
	if err := lu.SolveTo(&sol, false, AtB); err != nil {
		return grad // singular neighborhood (e.g. isolated cell): zero gradient
	}
	for d := 0; d < ndim; d++ {
		for k := 0; k < nvp; k++ {
			grad[d][k] = sol.At(d, k)
		}
	}
	return grad
}
