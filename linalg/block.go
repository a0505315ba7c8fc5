// Package linalg wraps gonum's dense linear algebra for the small,
// fixed-size (nVar x nVar) dense blocks used throughout SparseBlockMatrix,
// the same way Notargets-gocfd's utils.Matrix wraps gonum.org/v1/gonum/mat
// for its DG element operators.
package linalg

import "gonum.org/v1/gonum/mat"

// Block is a small dense nVar x nVar matrix, backed by a flat row-major
// slice so it can live inline inside SparseBlockMatrix's contiguous block
// storage without a per-block heap allocation.
type Block struct {
	N    int
	Data []float64 // len N*N, row-major
}

// NewBlock allocates a zeroed n x n block.
func NewBlock(n int) Block { return Block{N: n, Data: make([]float64, n*n)} }

// View wraps an existing flat slice (e.g. a slot inside a larger
// contiguous buffer) as a Block without copying.
func View(n int, data []float64) Block { return Block{N: n, Data: data} }

func (b Block) At(i, j int) float64     { return b.Data[i*b.N+j] }
func (b Block) Set(i, j int, v float64) { b.Data[i*b.N+j] = v }

func (b Block) Zero() {
	for i := range b.Data {
		b.Data[i] = 0
	}
}

func (b Block) SetIdentity(scale float64) {
	b.Zero()
	for i := 0; i < b.N; i++ {
		b.Set(i, i, scale)
	}
}

// AddScaled adds alpha*src into b, in place.
func (b Block) AddScaled(src Block, alpha float64) {
	for k := range b.Data {
		b.Data[k] += alpha * src.Data[k]
	}
}

// Dense returns a gonum *mat.Dense view over the block's storage, so
// gonum's LU/solve routines can operate on it without copying.
func (b Block) Dense() *mat.Dense { return mat.NewDense(b.N, b.N, b.Data) }

// MulVec computes y = b*x + y (accumulate), the fused-multiply-add pattern
// SpMV needs on every nonzero block.
func (b Block) MulVec(x, y []float64) {
	n := b.N
	for i := 0; i < n; i++ {
		var s float64
		row := b.Data[i*n : i*n+n]
		for j := 0; j < n; j++ {
			s += row[j] * x[j]
		}
		y[i] += s
	}
}

// MulVecTo computes y = b*x, overwriting y.
func (b Block) MulVecTo(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	b.MulVec(x, y)
}

// Invert computes b^-1 into dst via gonum's pivoted LU factorization —
// the "pivoted Gaussian elimination" spec.md §4.6 calls for on small
// blocks — and returns false if the block is numerically singular.
func (b Block) Invert(dst Block) bool {
	var inv mat.Dense
	if err := inv.Inverse(b.Dense()); err != nil {
		return false
	}
	copy(dst.Data, inv.RawMatrix().Data)
	return true
}

// Solve solves b*x = rhs into dst using gonum's pivoted LU, returning
// false if the factorization fails (singular block).
func (b Block) Solve(rhs []float64, dst []float64) bool {
	var lu mat.LU
	lu.Factorize(b.Dense())
	bm := mat.NewDense(b.N, 1, append([]float64(nil), rhs...))
	var xm mat.Dense
	if err := lu.SolveTo(&xm, false, bm); err != nil {
		return false
	}
	copy(dst, xm.RawMatrix().Data)
	return true
}
