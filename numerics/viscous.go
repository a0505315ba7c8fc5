package numerics

import (
	"math"

	"github.com/notargets/ranscfd/variables"
)

// ViscousFlux computes the Navier-Stokes diffusive flux across an edge
// per spec.md §4.3: an averaged face gradient corrected along the edge
// direction (the Mathur-Murthy correction), a Newtonian stress tensor
// using Sutherland's law for mu(T), and a Fourier heat flux with a
// laminar/turbulent composite Prandtl number.
//
// gradVi/gradVj are the cell-centered gradients of the primitive vector
// (row d, entry k is d(V_k)/dx_d), xij is x_j-x_i, and Vi/Vj are the
// cell-centered primitive states themselves (needed for the correction's
// (V_j-V_i)/|x_j-x_i| term).
func ViscousFlux(idx variables.PrimIndex, gas variables.Gas, Vi, Vj []float64, gradVi, gradVj [][]float64, xij []float64, n []float64,
	muTLocal, prLam, prTurb float64) []float64 {
	ndim := idx.NDim
	nvp := len(Vi)

	dist := 0.0
	for d := 0; d < ndim; d++ {
		dist += xij[d] * xij[d]
	}
	dist = math.Sqrt(dist)
	tHat := make([]float64, ndim)
	if dist > 0 {
		for d := 0; d < ndim; d++ {
			tHat[d] = xij[d] / dist
		}
	}

	gradF := make([][]float64, ndim)
	for d := 0; d < ndim; d++ {
		gradF[d] = make([]float64, nvp)
		for k := 0; k < nvp; k++ {
			gradF[d][k] = 0.5 * (gradVi[d][k] + gradVj[d][k])
		}
	}
	// Mathur-Murthy edge correction: replace the component of the averaged
	// gradient along t̂ with the exact directional derivative.
	for k := 0; k < nvp; k++ {
		var proj float64
		for d := 0; d < ndim; d++ {
			proj += gradF[d][k] * tHat[d]
		}
		exact := 0.0
		if dist > 0 {
			exact = (Vj[k] - Vi[k]) / dist
		}
		for d := 0; d < ndim; d++ {
			gradF[d][k] += (exact - proj) * tHat[d]
		}
	}

	T := 0.5 * (Vi[idx.Temp] + Vj[idx.Temp])
	muLam := variables.Sutherland(T)
	muTurb := muTLocal
	mu := muLam + muTurb

	u := make([]float64, ndim)
	for d := 0; d < ndim; d++ {
		u[d] = 0.5 * (Vi[idx.VelX+d] + Vj[idx.VelX+d])
	}

	// Strain-rate tensor S_ij = 0.5*(du_i/dx_j + du_j/dx_i), divergence
	// via trace, Stokes hypothesis lambda = -2/3 mu.
	div := 0.0
	for d := 0; d < ndim; d++ {
		div += gradF[d][idx.VelX+d]
	}
	tau := make([][]float64, ndim)
	for i := 0; i < ndim; i++ {
		tau[i] = make([]float64, ndim)
	}
	for i := 0; i < ndim; i++ {
		for j := 0; j < ndim; j++ {
			dudj := gradF[j][idx.VelX+i]
			dvdi := gradF[i][idx.VelX+j]
			tau[i][j] = mu * (dudj + dvdi)
		}
		tau[i][i] -= (2.0 / 3.0) * mu * div
	}

	// Composite conductivity: k = cp*(mu_lam/Pr_lam + mu_turb/Pr_turb), cp
	// from the calorically-perfect closure rather than a hardcoded value so
	// a non-default gamma/R (config.RunConfig.Gamma/GasConstant) is honored.
	cp := gas.Gamma * gas.R / (gas.Gamma - 1)
	k := cp * (muLam/prLam + muTurb/prTurb)

	flux := make([]float64, ndim+2)
	var qn, work float64
	for d := 0; d < ndim; d++ {
		var tauN float64
		for j := 0; j < ndim; j++ {
			tauN += tau[d][j] * n[j]
		}
		flux[1+d] = tauN
		work += tauN * u[d]
		qn -= k * gradF[d][idx.Temp] * n[d]
	}
	flux[ndim+1] = work - qn
	return flux
}

// WallViscousFlux computes the no-slip stress and heat-flux terms of a
// solid-wall boundary face for spec.md §4.4's viscous solver modes. There is
// no neighbor cell to average a gradient against, so the wall-normal
// derivative of velocity (and, for an isothermal wall, of temperature) is
// the one-sided estimate over the distance from the owning cell center to
// the face, the same edge-correction idea ViscousFlux applies along the
// cell-to-cell direction but here applied along the face normal against the
// wall's no-slip/prescribed-temperature condition instead of a neighbor
// state. muT is the eddy viscosity at the owning cell; for a wall_heatflux
// marker with no q_wall parameter this reduces to the adiabatic case
// (qWall==0).
func WallViscousFlux(idx variables.PrimIndex, gas variables.Gas, Vi []float64, gradVi [][]float64, dist float64, n []float64,
	isothermal bool, Twall, qWall, muT, prLam, prTurb float64) []float64 {
	ndim := idx.NDim
	nvp := len(Vi)
	if dist <= 0 {
		dist = 1e-12
	}

	muLam := variables.Sutherland(Vi[idx.Temp])
	mu := muLam + muT

	gradF := make([][]float64, ndim)
	for d := 0; d < ndim; d++ {
		gradF[d] = make([]float64, nvp)
		copy(gradF[d], gradVi[d])
	}
	// No-slip: the wall velocity is zero, so the exact normal derivative of
	// each velocity component is (0-Vi)/dist; swap that in for the
	// cell-centered gradient's component along n.
	for k := idx.VelX; k < idx.VelX+ndim; k++ {
		var proj float64
		for d := 0; d < ndim; d++ {
			proj += gradF[d][k] * n[d]
		}
		exact := -Vi[k] / dist
		for d := 0; d < ndim; d++ {
			gradF[d][k] += (exact - proj) * n[d]
		}
	}

	div := 0.0
	for d := 0; d < ndim; d++ {
		div += gradF[d][idx.VelX+d]
	}
	tau := make([][]float64, ndim)
	for i := 0; i < ndim; i++ {
		tau[i] = make([]float64, ndim)
	}
	for i := 0; i < ndim; i++ {
		for j := 0; j < ndim; j++ {
			tau[i][j] = mu * (gradF[j][idx.VelX+i] + gradF[i][idx.VelX+j])
		}
		tau[i][i] -= (2.0 / 3.0) * mu * div
	}

	cp := gas.Gamma * gas.R / (gas.Gamma - 1)
	k := cp * (muLam/prLam + muT/prTurb)

	flux := make([]float64, ndim+2)
	for d := 0; d < ndim; d++ {
		var tauN float64
		for j := 0; j < ndim; j++ {
			tauN += tau[d][j] * n[j]
		}
		flux[1+d] = tauN
	}
	// Viscous work at the wall is zero (no-slip: u_wall=0), so the energy
	// term is the heat flux alone: qn is q.n in the same sign convention
	// ViscousFlux's interior qn uses (positive qn means heat flows in the
	// +n direction, i.e. out of the owning cell through this face). An
	// isothermal wall derives qn from the one-sided temperature gradient
	// toward Twall; a prescribed q_wall (wall_heatflux) is defined as that
	// same outward-positive quantity directly, so a positive q_wall cools
	// the owning cell exactly like a colder isothermal wall would.
	var qn float64
	if isothermal {
		dTdn := (Twall - Vi[idx.Temp]) / dist
		qn = -k * dTdn
	} else {
		qn = qWall
	}
	flux[ndim+1] = -qn
	return flux
}
