package solver

import (
	"math"

	"github.com/notargets/ranscfd/concurrency"
	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/linalg"
	"github.com/notargets/ranscfd/numerics"
)

// computeGradientsAndLimiter is step 2 of spec.md §4.4: cell-centered
// primitive gradients (Green-Gauss or weighted least squares), the
// Venkatakrishnan/Barth neighborhood bounds V_min/V_max, and the limiter
// φ, plus the per-cell undivided Laplacian of the conservative state used
// as JST's fourth-difference dissipation driver.
func (s *MeanFlow) computeGradientsAndLimiter() {
	mesh := s.Mesh
	mf := s.State
	n := mesh.CellCount()
	nvp := mf.NVP
	nvar := mf.NVar

	if s.lapU == nil || len(s.lapU) != n {
		s.lapU = make([][]float64, n)
		for c := range s.lapU {
			s.lapU[c] = make([]float64, nvar)
		}
	}

	concurrency.For(n, func(c int) {
		edges := mesh.EdgesOfCell(c)
		selfV := mf.Prim(c)
		neighVals := make([][]float64, 0, len(edges))
		normals := make([][]float64, 0, len(edges))
		dx := make([][]float64, 0, len(edges))

		vmin := append([]float64(nil), selfV...)
		vmax := append([]float64(nil), selfV...)

		for k := range s.lapU[c] {
			s.lapU[c][k] = 0
		}
		selfU := mf.Cell(c)

		for _, e := range edges {
			edge := mesh.Edge(e)
			var j int
			var normal []float64
			if edge.I == c {
				j = edge.J
				normal = edge.Normal
			} else {
				j = edge.I
				normal = negate(edge.Normal, mesh.NDim)
			}
			nv := mf.Prim(j)
			neighVals = append(neighVals, nv)
			normals = append(normals, normal)

			p := mesh.Point(j)
			pc := mesh.Point(c)
			d := make([]float64, mesh.NDim)
			for k := 0; k < mesh.NDim; k++ {
				d[k] = p[k] - pc[k]
			}
			dx = append(dx, d)

			for k := 0; k < nvp; k++ {
				if nv[k] < vmin[k] {
					vmin[k] = nv[k]
				}
				if nv[k] > vmax[k] {
					vmax[k] = nv[k]
				}
			}
			nu := mf.Cell(j)
			for k := 0; k < nvar; k++ {
				s.lapU[c][k] += nu[k] - selfU[k]
			}
		}

		var grad [][]float64
		if s.grad == numerics.GradientGreenGauss {
			grad = numerics.GreenGauss(selfV, neighVals, normals, mesh.Volume(c))
		} else {
			grad = numerics.WeightedLeastSquares(selfV, neighVals, dx)
		}
		gc := mf.Grad(c)
		for d := 0; d < mesh.NDim; d++ {
			for k := 0; k < nvp; k++ {
				gc[k*mesh.NDim+d] = grad[d][k]
			}
		}
		copy(mf.VMin[c*nvp:(c+1)*nvp], vmin)
		copy(mf.VMax[c*nvp:(c+1)*nvp], vmax)

		volAvg := cellLengthScale(mesh.Volume(c), mesh.NDim)
		phi := mf.Phi[c*nvp : (c+1)*nvp]
		for k := range phi {
			phi[k] = 1
		}
		if s.limit != numerics.LimiterNone {
			for _, e := range edges {
				edge := mesh.Edge(e)
				mid := edge.Midpoint
				for k := 0; k < nvp; k++ {
					var delta float64
					for d := 0; d < mesh.NDim; d++ {
						delta += gc[k*mesh.NDim+d] * (mid[d] - mesh.Point(c)[d]) / 2
					}
					var f float64
					if s.limit == numerics.LimiterVenkatakrishnan {
						f = numerics.VenkatakrishnanLimiter(delta, selfV[k], vmax[k], vmin[k], volAvg, s.Cfg.LimiterCoef)
					} else {
						f = numerics.BarthJespersenLimiter(delta, selfV[k], vmax[k], vmin[k])
					}
					if f < phi[k] {
						phi[k] = f
					}
				}
			}
		}
	})
}

func negate(v []float64, ndim int) []float64 {
	out := make([]float64, ndim)
	for d := 0; d < ndim; d++ {
		out[d] = -v[d]
	}
	return out
}

// cellLengthScale is the characteristic cell size the Venkatakrishnan
// limiter uses to scale its smoothing threshold, per spec.md §4.3.
func cellLengthScale(vol float64, ndim int) float64 {
	if vol <= 0 {
		return 0
	}
	if ndim == 2 {
		return math.Sqrt(vol)
	}
	return math.Cbrt(vol)
}

// assembleEdge is step 4 of spec.md §4.4: reconstruct left/right states at
// the face, evaluate the convective (and, for viscous solver modes, the
// diffusive) flux and its Jacobian blocks, and accumulate into R and M
// with the sign convention R_i += F, R_j -= F.
func (s *MeanFlow) assembleEdge(e int, implicit bool) {
	mesh := s.Mesh
	mf := s.State
	ndim := mesh.NDim
	nvar := mf.NVar
	nvp := mf.NVP

	edge := mesh.Edge(e)
	i, j := edge.I, edge.J
	area := vecLen(edge.Normal, ndim)
	if area == 0 {
		return
	}
	nHat := unit(edge.Normal, ndim)

	Vi, Vj := mf.Prim(i), mf.Prim(j)
	gi, gj := mf.Grad(i), mf.Grad(j)
	phiI, phiJ := mf.Phi[i*nvp:(i+1)*nvp], mf.Phi[j*nvp:(j+1)*nvp]
	pi, pj := mesh.Point(i), mesh.Point(j)
	mid := edge.Midpoint

	deltaI := make([]float64, nvp)
	deltaJ := make([]float64, nvp)
	for k := 0; k < nvp; k++ {
		var dI, dJ float64
		for d := 0; d < ndim; d++ {
			dI += gi[k*ndim+d] * (mid[d] - pi[d])
			dJ += gj[k*ndim+d] * (mid[d] - pj[d])
		}
		deltaI[k] = dI / 2
		deltaJ[k] = dJ / 2
	}
	VL := numerics.MUSCLReconstruct(Vi, phiI, deltaI)
	VR := numerics.MUSCLReconstruct(Vj, phiJ, deltaJ)
	UL := s.Gas.ToConservative(VL, ndim)
	UR := s.Gas.ToConservative(VR, ndim)

	jst := numerics.JSTParams{
		K2: s.Cfg.JSTK2, K4: s.Cfg.JSTK4,
		SpecRadius: numerics.SpectralRadiusInviscid(s.Gas, mf.Cell(i), nHat, area, ndim),
	}
	if s.scheme == numerics.SchemeJST {
		pI := (s.Gas.Gamma - 1) * (mf.Cell(i)[ndim+1] - 0.5*mf.Cell(i)[0]*speed2(mf.Cell(i), ndim))
		pJ := (s.Gas.Gamma - 1) * (mf.Cell(j)[ndim+1] - 0.5*mf.Cell(j)[0]*speed2(mf.Cell(j), ndim))
		lapI, lapJ := s.lapU[i], s.lapU[j]
		lap4 := make([]float64, nvar)
		for k := range lap4 {
			lap4[k] = 0.5 * (lapJ[k] - lapI[k])
		}
		jst.Sensor = numerics.PressureSensor(pI, pJ, pI-pJ, pJ-pI)
		jst.Laplacian = lap4
	}

	flux := numerics.ConvectiveFlux(s.scheme, s.Gas, UL, UR, nHat, ndim, s.Cfg.EntropyFixEps, s.Cfg.LowMachMref, jst)

	if s.Cfg.Solver != "euler" {
		muT := 0.0
		if s.muTurbAt != nil {
			muT = 0.5 * (s.muTurbAt(i) + s.muTurbAt(j))
		}
		xij := make([]float64, ndim)
		for d := 0; d < ndim; d++ {
			xij[d] = pj[d] - pi[d]
		}
		gradVi := unflatten(gi, nvp, ndim)
		gradVj := unflatten(gj, nvp, ndim)
		visc := numerics.ViscousFlux(mf.Idx, s.Gas, Vi, Vj, gradVi, gradVj, xij, nHat, muT, s.Cfg.PrandtlLaminar, s.Cfg.PrandtlTurbulent)
		for k := 0; k < nvar; k++ {
			flux[k] -= visc[k]
		}
	}

	for k := 0; k < nvar; k++ {
		s.R[i*nvar+k] += flux[k] * area
		s.R[j*nvar+k] -= flux[k] * area
	}

	if !implicit {
		return
	}
	dFi := linalg.NewBlock(nvar)
	dFj := linalg.NewBlock(nvar)
	if s.scheme == numerics.SchemeJST {
		numerics.JSTScalarJacobianContribution(s.Gas, UL, nHat, ndim, jst.SpecRadius, dFi, dFj)
	} else {
		numerics.FrozenRoeJacobianContribution(s.Gas, UL, nHat, ndim, jst.SpecRadius, dFi, dFj)
	}
	for k := 0; k < nvar*nvar; k++ {
		dFi.Data[k] *= area
		dFj.Data[k] *= area
	}
	s.M.Diag(i).AddScaled(dFi, 1)
	s.M.Block(i, j).AddScaled(dFj, 1)
	s.M.Diag(j).AddScaled(dFj, -1)
	s.M.Block(j, i).AddScaled(dFi, -1)
}

func speed2(U []float64, ndim int) float64 {
	rho := U[0]
	var ke float64
	for d := 0; d < ndim; d++ {
		u := U[1+d] / rho
		ke += u * u
	}
	return ke
}

func unflatten(flat []float64, nvp, ndim int) [][]float64 {
	out := make([][]float64, ndim)
	for d := 0; d < ndim; d++ {
		out[d] = make([]float64, nvp)
		for k := 0; k < nvp; k++ {
			out[d][k] = flat[k*ndim+d]
		}
	}
	return out
}

// computeTimeSteps is step 6 of spec.md §4.4: per-cell Δt = CFL * V_i /
// (λ_inv + λ_visc), where λ_inv and λ_visc are the sums of
// SpectralRadiusInviscid and SpectralRadiusViscous over the cell's edges.
// No separate Cv = 4*max_face(μ/ρ)*|n|/V factor is applied to λ_visc, and
// boundary faces add nothing to either sum.
func (s *MeanFlow) computeTimeSteps() {
	mesh := s.Mesh
	mf := s.State
	ndim := mesh.NDim
	n := mesh.CellCount()

	concurrency.For(n, func(c int) {
		mf.LambdaInv[c] = 0
		mf.LambdaVis[c] = 0
	})
	// Same cell-collision hazard as assembleEdge (LambdaInv/LambdaVis are
	// accumulated at both edge endpoints), so this loop dispatches through
	// the same edge coloring rather than a plain concurrency.For.
	for _, color := range s.edgeColors {
		concurrency.ForIndices(color, func(e int) {
			edge := mesh.Edge(e)
			area := vecLen(edge.Normal, ndim)
			if area == 0 {
				return
			}
			nHat := unit(edge.Normal, ndim)
			li := numerics.SpectralRadiusInviscid(s.Gas, mf.Cell(edge.I), nHat, area, ndim)
			lj := numerics.SpectralRadiusInviscid(s.Gas, mf.Cell(edge.J), nHat, area, ndim)
			mf.LambdaInv[edge.I] += li
			mf.LambdaInv[edge.J] += lj

			if s.Cfg.Solver != "euler" {
				Vi, Vj := mf.Prim(edge.I), mf.Prim(edge.J)
				dist := cellDistance(mesh, edge.I, edge.J)
				svI := numerics.SpectralRadiusViscous(s.Gas, Vi[mf.Idx.Rho], Vi[mf.Idx.MuLam], Vi[mf.Idx.MuTurb], dist, area)
				svJ := numerics.SpectralRadiusViscous(s.Gas, Vj[mf.Idx.Rho], Vj[mf.Idx.MuLam], Vj[mf.Idx.MuTurb], dist, area)
				mf.LambdaVis[edge.I] += svI
				mf.LambdaVis[edge.J] += svJ
			}
		})
	}
	concurrency.For(n, func(c int) {
		denom := mf.LambdaInv[c] + mf.LambdaVis[c]
		if denom <= 0 {
			mf.Dt[c] = 0
			return
		}
		mf.Dt[c] = s.CFL * mesh.Volume(c) / denom
	})
}

// addDualTimeSource is the BDF2 physical-time-derivative term spec.md
// §4.7's dual-time-stepping mode adds to the inner pseudo-time residual:
// V/(2*dtPhys) * (3*U - 4*Un + Unm1), read against the two prior physical-
// time levels State.Un/State.Unm1. Differentiating that term with respect
// to the current U gives a constant 3*V/(2*dtPhys) contribution to the
// diagonal block, added alongside the pseudo-time V/Dt term already
// assembled in Iterate. Only called when Cfg.TimeIntegration is
// dual_time_bdf2 (always the implicit path).
func (s *MeanFlow) addDualTimeSource() {
	mesh := s.Mesh
	mf := s.State
	nvar := mf.NVar
	n := mesh.CellCount()
	dt := s.Cfg.PhysicalDT
	if dt <= 0 {
		return
	}
	coef := 1.0 / (2 * dt)
	concurrency.For(n, func(c int) {
		vol := mesh.Volume(c)
		Uc := mf.Cell(c)
		Un := mf.Un[c*nvar : (c+1)*nvar]
		Unm1 := mf.Unm1[c*nvar : (c+1)*nvar]
		for k := 0; k < nvar; k++ {
			s.R[c*nvar+k] += vol * coef * (3*Uc[k] - 4*Un[k] + Unm1[k])
		}
		d := s.M.Diag(c)
		for k := 0; k < nvar; k++ {
			d.Set(k, k, d.At(k, k)+3*vol*coef)
		}
	})
}

func cellDistance(mesh *geometry.Mesh, i, j int) float64 {
	pi, pj := mesh.Point(i), mesh.Point(j)
	var s float64
	for d := 0; d < mesh.NDim; d++ {
		diff := pj[d] - pi[d]
		s += diff * diff
	}
	return math.Sqrt(s)
}

// faceDistance is cellDistance's boundary-face counterpart: the distance
// from a cell center to a boundary face midpoint, the one-sided-derivative
// length scale numerics.WallViscousFlux needs.
func faceDistance(mesh *geometry.Mesh, owner int, mid []float64) float64 {
	p := mesh.Point(owner)
	var s float64
	for d := 0; d < mesh.NDim; d++ {
		diff := mid[d] - p[d]
		s += diff * diff
	}
	return math.Sqrt(s)
}

// explicitRKStage is step 8 of spec.md §4.4 for TimeIntegration ==
// explicit_rk: an m-stage low-storage update U^(k) = U^(0) -
// alpha_k*(dt/V)*R(U^(k-1)), grounded on the teacher's RungeKutta4SSP
// stage-update pattern but without the DG-specific sharded storage. Each
// call to Iterate advances exactly one stage; rkStage cycles back to 0
// (and RKSave is refreshed) once the last stage completes.
func (s *MeanFlow) explicitRKStage() {
	mesh := s.Mesh
	mf := s.State
	nvar := mf.NVar
	n := mesh.CellCount()

	if s.rkStage == 0 {
		mf.SaveOld()
	}
	alphas := rkAlphas(s.Cfg.RKStages)
	alpha := alphas[s.rkStage]
	concurrency.For(n, func(c int) {
		if mf.Dt[c] <= 0 {
			return
		}
		dtOverVol := mf.Dt[c] / mesh.Volume(c)
		base := mf.RKSave[c*nvar : (c+1)*nvar]
		cur := mf.Cell(c)
		res := s.R[c*nvar : (c+1)*nvar]
		for k := 0; k < nvar; k++ {
			cur[k] = base[k] - alpha*dtOverVol*res[k]
		}
	})
	s.rkStage++
	if s.rkStage >= len(alphas) {
		s.rkStage = 0
	}
}

// rkAlphas returns the low-storage stage coefficients for an m-stage
// scheme; 4 stages is the teacher's default (RK4-SSP-like damping
// profile for CFL-limited explicit marching).
func rkAlphas(stages int) []float64 {
	switch stages {
	case 1:
		return []float64{1.0}
	case 2:
		return []float64{0.5, 1.0}
	case 3:
		return []float64{0.6, 0.6, 1.0}
	default:
		return []float64{0.25, 1.0 / 3.0, 0.5, 1.0}
	}
}
