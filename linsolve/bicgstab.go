package linsolve

import "math"

// BiCGStab solves A x = b with (right-)preconditioned BiCGStab, the second
// Krylov method spec.md §4.6 names. Like GMRES it need not fully converge;
// Result.Stagnated signals the caller should cut CFL and retry.
func BiCGStab(A SpMV, M Preconditioner, b, x []float64, maxIter int, tol float64) Result {
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

	rhat := append([]float64(nil), r...)
	rho, alpha, omega := 1.0, 1.0, 1.0
	p := make([]float64, n)
	v := make([]float64, n)

	prevBest := resNorm
	stallCount := 0

	for it := 0; it < maxIter; it++ {
		rhoNew := dot(rhat, r)
		if rhoNew == 0 {
			return Result{Iterations: it, ResNorm: resNorm, Stagnated: true}
		}
		if it == 0 {
			copy(p, r)
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			for i := range p {
				p[i] = r[i] + beta*(p[i]-omega*v[i])
			}
		}
		rho = rhoNew

		ph := make([]float64, n)
		if M != nil {
			M.Apply(p, ph)
		} else {
			copy(ph, p)
		}
		A.SpMV(ph, v)
		alpha = rho / dot(rhat, v)

		s := make([]float64, n)
		for i := range s {
			s[i] = r[i] - alpha*v[i]
		}
		if norm2(s)/bnorm <= tol {
			axpy(alpha, ph, x)
			return Result{Iterations: it + 1, ResNorm: norm2(s), Converged: true}
		}

		sh := make([]float64, n)
		if M != nil {
			M.Apply(s, sh)
		} else {
			copy(sh, s)
		}
		t := make([]float64, n)
		A.SpMV(sh, t)
		tt := dot(t, t)
		if tt == 0 {
			omega = 0
		} else {
			omega = dot(t, s) / tt
		}

		axpy(alpha, ph, x)
		axpy(omega, sh, x)
		for i := range r {
			r[i] = s[i] - omega*t[i]
		}
		resNorm = norm2(r)

		if resNorm < 0.99*prevBest {
			prevBest = resNorm
			stallCount = 0
		} else {
			stallCount++
		}
		if resNorm/bnorm <= tol {
			return Result{Iterations: it + 1, ResNorm: resNorm, Converged: true}
		}
		if omega == 0 || stallCount > 20 || math.IsNaN(resNorm) {
			return Result{Iterations: it + 1, ResNorm: resNorm, Stagnated: true}
		}
	}
	return Result{Iterations: maxIter, ResNorm: resNorm, Converged: resNorm/bnorm <= tol}
}
