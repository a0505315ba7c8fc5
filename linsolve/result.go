// Package linsolve implements the preconditioned Krylov solvers of
// spec.md §2/§4.6: right-preconditioned restarted GMRES(m) and BiCGStab
// over sparse.BlockMatrix, grounded on Notargets-gocfd's
// utils.BlockSparse.GMRES (Arnoldi basis + Hessenberg least squares) but
// with a real Givens-rotation least-squares solve in place of the
// teacher's placeholder SolveLeastSquares stub.
package linsolve

import "math"

// SpMV is the operator contract both solvers need: y = A*x.
type SpMV interface {
	SpMV(x, y []float64)
}

// Preconditioner mirrors sparse.Preconditioner without importing the
// sparse package, so linsolve stays usable against any block operator.
type Preconditioner interface {
	Apply(r, z []float64)
}

// Result reports how a Krylov solve terminated.
type Result struct {
	Iterations int
	ResNorm    float64 // ||b - A x|| at the returned x
	Converged  bool
	Stagnated  bool // true if returned early per spec.md §4.6's stagnation rule
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm2(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

func axpy(alpha float64, x, y []float64) {
	for i := range y {
		y[i] += alpha * x[i]
	}
}

func scaleCopy(dst []float64, alpha float64, x []float64) {
	for i := range dst {
		dst[i] = alpha * x[i]
	}
}
