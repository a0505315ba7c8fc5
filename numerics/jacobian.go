package numerics

import (
	"math"

	"github.com/notargets/ranscfd/linalg"
	"github.com/notargets/ranscfd/variables"
)

// SpectralRadiusInviscid is the inviscid spectral radius at a face,
// (|u·n|+c)*|A_face|, used both for CFL-limited time stepping and as the
// scalar Jacobian for JST, per spec.md §4.3/§4.4.
func SpectralRadiusInviscid(gas variables.Gas, U []float64, n []float64, area float64, ndim int) float64 {
	rho := U[0]
	var un, ke float64
	for d := 0; d < ndim; d++ {
		u := U[1+d] / rho
		un += u * n[d]
		ke += u * u
	}
	p := (gas.Gamma - 1) * (U[ndim+1] - 0.5*rho*ke)
	c := math.Sqrt(gas.Gamma * p / rho)
	return (math.Abs(un) + c) * area
}

// SpectralRadiusViscous is the viscous spectral radius at a face, per
// spec.md §4.4's local time-step formula: (mu+mu_t)*gamma/(Pr*rho*d^2) *
// |A_face|^2, using d as a characteristic length (edge distance).
func SpectralRadiusViscous(gas variables.Gas, rho, mu, muT, dist, area float64) float64 {
	if dist <= 0 {
		return 0
	}
	const prEff = 0.72
	return gas.Gamma / prEff * (mu + muT) / rho / (dist * dist) * area * area
}

// FrozenRoeJacobianContribution forms the Jacobian block contribution of
// a Roe-flux edge onto the diagonal and off-diagonal blocks of the
// implicit system, per spec.md §4.3's frozen-dissipation approximation:
// d(F_Roe)/dU_i ≈ 0.5*(dF/dU)_i + 0.5*|Ã|, d(F_Roe)/dU_j ≈ 0.5*(dF/dU)_j
// - 0.5*|Ã|, with |Ã| treated as constant (not differentiated).
//
// The exact flux Jacobian dF/dU is formed analytically for the Euler
// equations; |Ã| is approximated by its spectral radius scaled identity,
// which keeps the implicit system diagonally dominant without the cost
// of assembling the full Roe dissipation Jacobian.
func FrozenRoeJacobianContribution(gas variables.Gas, U []float64, n []float64, ndim int, roeSpecRadius float64, dFi, dFj linalg.Block) {
	nvar := ndim + 2
	dF := eulerFluxJacobian(gas, U, n, ndim)
	for i := 0; i < nvar; i++ {
		for j := 0; j < nvar; j++ {
			half := 0.5 * dF.At(i, j)
			dFi.Set(i, j, half)
			dFj.Set(i, j, half)
		}
		dFi.Set(i, i, dFi.At(i, i)+0.5*roeSpecRadius)
		dFj.Set(i, i, dFj.At(i, i)-0.5*roeSpecRadius)
	}
}

// JSTScalarJacobianContribution is the scalar first-order Jacobian
// spec.md §4.3 specifies for JST: the exact central-flux Jacobian plus a
// scalar dissipation term lambda_inv*I split symmetrically between the
// two cells sharing the face.
func JSTScalarJacobianContribution(gas variables.Gas, U []float64, n []float64, ndim int, specRadius float64, dFi, dFj linalg.Block) {
	nvar := ndim + 2
	dF := eulerFluxJacobian(gas, U, n, ndim)
	for i := 0; i < nvar; i++ {
		for j := 0; j < nvar; j++ {
			half := 0.5 * dF.At(i, j)
			dFi.Set(i, j, half)
			dFj.Set(i, j, half)
		}
		dFi.Set(i, i, dFi.At(i, i)+0.5*specRadius)
		dFj.Set(i, i, dFj.At(i, i)-0.5*specRadius)
	}
}

// eulerFluxJacobian forms the analytic Euler flux Jacobian dF(U)·n / dU
// at a state U, the standard closed form used by both Jacobian routines
// above (Roe frozen-dissipation and JST scalar approximations share the
// same central-flux linearization).
func eulerFluxJacobian(gas variables.Gas, U []float64, n []float64, ndim int) linalg.Block {
	nvar := ndim + 2
	rho := U[0]
	u := make([]float64, ndim)
	var un, q2 float64
	for d := 0; d < ndim; d++ {
		u[d] = U[1+d] / rho
		un += u[d] * n[d]
		q2 += u[d] * u[d]
	}
	gm1 := gas.Gamma - 1
	E := U[ndim+1]
	e := E / rho
	phi2 := 0.5 * gm1 * q2

	blk := linalg.NewBlock(nvar)
	blk.Set(0, 0, 0)
	for d := 0; d < ndim; d++ {
		blk.Set(0, 1+d, n[d])
	}
	for i := 0; i < ndim; i++ {
		blk.Set(1+i, 0, n[i]*phi2-u[i]*un)
		for j := 0; j < ndim; j++ {
			var delta float64
			if i == j {
				delta = 1
			}
			blk.Set(1+i, 1+j, u[i]*n[j]+un*delta-gm1*u[j]*n[i])
		}
		blk.Set(1+i, nvar-1, gm1*n[i])
	}
	blk.Set(nvar-1, 0, un*(2*phi2-gas.Gamma*e))
	for j := 0; j < ndim; j++ {
		blk.Set(nvar-1, 1+j, n[j]*(gas.Gamma*e-phi2)-gm1*u[j]*un)
	}
	blk.Set(nvar-1, nvar-1, gas.Gamma*un)
	return blk
}
