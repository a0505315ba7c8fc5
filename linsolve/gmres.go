package linsolve

import "math"

// GMRES solves A x = b with right-preconditioned restarted GMRES(m), per
// spec.md §4.6. Solutions need not be fully converged: a linear residual
// reduction of 1e-2 per nonlinear step is the typical target passed as
// tol. If the residual reduction over one restart cycle (m inner
// iterations) is less than 1%, Result.Stagnated is set and the best
// iterate found is returned — the caller (Solver) is expected to cut CFL
// and retry, per spec.md §4.6's failure-handling rule.
func GMRES(A SpMV, M Preconditioner, b, x []float64, restart, maxIter int, tol float64) Result {
	n := len(b)
	r := make([]float64, n)
	Ax := make([]float64, n)
	A.SpMV(x, Ax)
	for i := range r {
		r[i] = b[i] - Ax[i]
	}
	bnorm := norm2(b)
	if bnorm == 0 {
		bnorm = 1
	}
	resNorm := norm2(r)
	if resNorm/bnorm <= tol {
		return Result{ResNorm: resNorm, Converged: true}
	}

	iters := 0
	for iters < maxIter {
		cycleStart := resNorm
		m := restart
		if maxIter-iters < m {
			m = maxIter - iters
		}
		beta := resNorm
		v := make([][]float64, m+1)
		v[0] = make([]float64, n)
		scaleCopy(v[0], 1/beta, r)

		h := make([][]float64, m+1)
		for i := range h {
			h[i] = make([]float64, m)
		}
		cs := make([]float64, m)
		sn := make([]float64, m)
		g := make([]float64, m+1)
		g[0] = beta

		z := make([][]float64, m) // preconditioned basis vectors, M^-1 v_j
		var j int
		for j = 0; j < m; j++ {
			zj := make([]float64, n)
			if M != nil {
				M.Apply(v[j], zj)
			} else {
				copy(zj, v[j])
			}
			z[j] = zj
			w := make([]float64, n)
			A.SpMV(zj, w)

			for i := 0; i <= j; i++ {
				h[i][j] = dot(v[i], w)
				axpy(-h[i][j], v[i], w)
			}
			hBreak := norm2(w)
			h[j+1][j] = hBreak

			// Apply previous Givens rotations to the new column.
			for i := 0; i < j; i++ {
				temp := cs[i]*h[i][j] + sn[i]*h[i+1][j]
				h[i+1][j] = -sn[i]*h[i][j] + cs[i]*h[i+1][j]
				h[i][j] = temp
			}
			cs[j], sn[j] = givens(h[j][j], h[j+1][j])
			h[j][j] = cs[j]*h[j][j] + sn[j]*h[j+1][j]
			h[j+1][j] = 0
			g[j+1] = -sn[j] * g[j]
			g[j] = cs[j] * g[j]

			iters++
			resNorm = math.Abs(g[j+1])
			last := resNorm/bnorm <= tol || iters >= maxIter || hBreak < 1e-300
			if last {
				j++
				break
			}
			nv := make([]float64, n)
			scaleCopy(nv, 1/hBreak, w)
			v[j+1] = nv
		}

		// Back-substitute for y, then form the correction x += Z*y.
		y := make([]float64, j)
		for i := j - 1; i >= 0; i-- {
			s := g[i]
			for k := i + 1; k < j; k++ {
				s -= h[i][k] * y[k]
			}
			y[i] = s / h[i][i]
		}
		for i := 0; i < j; i++ {
			axpy(y[i], z[i], x)
		}

		A.SpMV(x, Ax)
		for i := range r {
			r[i] = b[i] - Ax[i]
		}
		resNorm = norm2(r)
		if resNorm/bnorm <= tol {
			return Result{Iterations: iters, ResNorm: resNorm, Converged: true}
		}
		if resNorm > 0.99*cycleStart {
			return Result{Iterations: iters, ResNorm: resNorm, Stagnated: true}
		}
	}
	return Result{Iterations: iters, ResNorm: resNorm, Converged: resNorm/bnorm <= tol}
}

// givens computes the rotation (c,s) that zeroes b against a:
// [c s; -s c] * [a; b] = [r; 0].
func givens(a, b float64) (c, s float64) {
	if b == 0 {
		return 1, 0
	}
	if math.Abs(b) > math.Abs(a) {
		t := a / b
		s = 1 / math.Sqrt(1+t*t)
		c = t * s
	} else {
		t := b / a
		c = 1 / math.Sqrt(1+t*t)
		s = t * c
	}
	return
}
