package solver

import (
	"math"

	"github.com/notargets/ranscfd/config"
	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/linsolve"
	"github.com/notargets/ranscfd/numerics"
	"github.com/notargets/ranscfd/sparse"
	"github.com/notargets/ranscfd/variables"
)

// Turbulence orchestrates one loose-coupled subiteration of the SA or SST
// closure, per spec.md §4.5: the mean-flow solver supplies frozen velocity,
// density, and gradients; this solver advances its own transported
// variable(s) on the same mesh connectivity and returns an eddy-viscosity
// field the mean flow reads back on its next iteration.
type Turbulence struct {
	Mesh *geometry.Mesh
	Gas  variables.Gas
	Cfg  config.RunConfig
	Fs   Freestream

	State *variables.Turbulence
	M     *sparse.BlockMatrix
	R     []float64

	CFL float64

	mean *MeanFlow
}

// NewTurbulence builds a Turbulence solver coupled to an already-built
// MeanFlow; it returns nil if the config selects no turbulence model.
func NewTurbulence(mesh *geometry.Mesh, cfg config.RunConfig, mean *MeanFlow) *Turbulence {
	model := turbulenceModelFromTag(cfg.Turbulence)
	if model == variables.TurbNone {
		return nil
	}
	n := mesh.CellCount()
	st := variables.NewTurbulence(model, mesh.NDim, n)
	initFreestreamTurbulence(st, mean.Gas, mean.Fs, model)

	nvar := model.NEq()
	bm := sparse.NewFromMesh(mesh, nvar)
	return &Turbulence{
		Mesh: mesh, Gas: mean.Gas, Cfg: cfg, Fs: mean.Fs,
		State: st, M: bm, R: make([]float64, n*nvar),
		CFL: cfg.CFLInit, mean: mean,
	}
}

// initFreestreamTurbulence seeds every cell with the standard freestream
// nu-tilde (SA) or k/omega (SST) ratios, the same "low ambient turbulence
// intensity" convention numerics.FreestreamMuT uses for mu_t.
func initFreestreamTurbulence(st *variables.Turbulence, gas variables.Gas, fs Freestream, model variables.TurbulenceModel) {
	idx := variables.NewPrimIndex(st.NDim)
	rho := fs.Prim[idx.Rho]
	muLam := fs.Prim[idx.MuLam]
	nuLam := muLam / rho

	switch model {
	case variables.TurbSA:
		nuTilde := 3 * nuLam
		for c := 0; c < st.N; c++ {
			st.Phi[c] = nuTilde
			st.MuT[c] = numerics.SAEddyViscosity(nuTilde, muLam, rho)
		}
	case variables.TurbSST:
		var speed2 float64
		for d := 0; d < st.NDim; d++ {
			u := fs.Prim[idx.VelX+d]
			speed2 += u * u
		}
		const intensity = 1e-3
		k := 1.5 * intensity * intensity * speed2
		if k <= 0 {
			k = 1e-6
		}
		muTInit := numerics.FreestreamMuT(model, muLam)
		omega := rho * k / math.Max(muTInit, 1e-20)
		for c := 0; c < st.N; c++ {
			st.Phi[c*2+0] = k
			st.Phi[c*2+1] = omega
			st.MuT[c] = muTInit
		}
	}
}

// Iterate advances the turbulence transport equation(s) by one implicit
// pseudo-time step against the mean flow's current (frozen) state, per
// spec.md §4.5, and refreshes State.MuT for the mean flow to read back.
func (t *Turbulence) Iterate() (IterationResult, error) {
	mesh := t.Mesh
	st := t.State
	mf := t.mean.State
	ndim := mesh.NDim
	neq := st.NEq
	n := mesh.CellCount()

	t.computeGradients()

	for i := range t.R {
		t.R[i] = 0
	}
	t.M.Zero()

	for e := 0; e < mesh.EdgeCount(); e++ {
		t.assembleEdge(e)
	}

	idx := mf.Idx
	for c := 0; c < n; c++ {
		wallDist := mesh.WallDistance(c)
		rho := mf.Prim(c)[idx.Rho]
		muLam := mf.Prim(c)[idx.MuLam]
		vort, strain := velocityInvariants(mf.Grad(c), idx, ndim)
		vol := mesh.Volume(c)

		switch st.Model {
		case variables.TurbSA:
			nuTilde := st.Phi[c]
			prod, dest := numerics.SASource(nuTilde, muLam, rho, wallDist, vort)
			t.R[c] -= (prod - dest) * vol
			jac := t.M.Diag(c)
			if nuTilde > 1e-20 {
				jac.Set(0, 0, jac.At(0, 0)+2*dest/nuTilde*vol)
			}
		case variables.TurbSST:
			k, omega := st.Phi[c*2], st.Phi[c*2+1]
			cdKw := crossDiffusion(st.Grad(c), ndim)
			f1 := numerics.SSTBlendF1(k, omega, wallDist, muLam, rho,
				2*rho*numerics.SST.Sigma_w2/math.Max(omega, 1e-20)*cdKw)
			st.F1[c] = f1
			st.F2[c] = numerics.SSTBlendF2(k, omega, wallDist, muLam, rho)
			muT := numerics.SSTEddyViscosity(k, omega, rho, strain, st.F2[c])
			st.MuT[c] = muT
			prodK, destK, prodW, destW := numerics.SSTSource(k, omega, rho, muT, strain, f1, cdKw)
			t.R[c*2] -= (prodK - destK) * vol
			t.R[c*2+1] -= (prodW - destW) * vol
			jac := t.M.Diag(c)
			if k > 1e-20 {
				jac.Set(0, 0, jac.At(0, 0)+2*destK/k*vol)
			}
			if omega > 1e-20 {
				jac.Set(1, 1, jac.At(1, 1)+2*destW/omega*vol)
			}
		}
	}

	for bIdx := 0; bIdx < mesh.BoundaryFaceCount(); bIdx++ {
		t.assembleBoundary(bIdx)
	}

	for c := 0; c < n; c++ {
		dt := t.CFL * mesh.Volume(c) / math.Max(mf.LambdaInv[c]+mf.LambdaVis[c], 1e-20)
		jac := t.M.Diag(c)
		for k := 0; k < neq; k++ {
			jac.Set(k, k, jac.At(k, k)+mesh.Volume(c)/dt)
		}
	}

	b := make([]float64, n*neq)
	for i := range b {
		b[i] = -t.R[i]
	}
	x := make([]float64, n*neq)
	pc := sparse.NewILU0(t.M)
	lr := linsolve.GMRES(t.M, pc, b, x, t.Cfg.GMRESRestart, t.Cfg.LinearMaxIter, t.Cfg.LinearTol)

	for c := 0; c < n; c++ {
		for k := 0; k < neq; k++ {
			v := st.Phi[c*neq+k] + x[c*neq+k]
			if v < 0 {
				v = 0
			}
			st.Phi[c*neq+k] = v
		}
	}
	if st.Model == variables.TurbSA {
		for c := 0; c < n; c++ {
			muLam := mf.Prim(c)[idx.MuLam]
			rho := mf.Prim(c)[idx.Rho]
			st.MuT[c] = numerics.SAEddyViscosity(st.Phi[c], muLam, rho)
		}
	}

	return IterationResult{ResidualNorm: residualNorm(t.R, n, neq), LinearIters: lr.Iterations, LinearStalled: lr.Stagnated}, nil
}

// MuTAt exposes the eddy viscosity field for MeanFlow.SetTurbulenceCoupling.
func (t *Turbulence) MuTAt(c int) float64 { return t.State.MuT[c] }

func (t *Turbulence) computeGradients() {
	mesh := t.Mesh
	st := t.State
	neq := st.NEq
	n := mesh.CellCount()
	for c := 0; c < n; c++ {
		edges := mesh.EdgesOfCell(c)
		self := st.Cell(c)
		neighVals := make([][]float64, 0, len(edges))
		normals := make([][]float64, 0, len(edges))
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
			neighVals = append(neighVals, st.Cell(j))
			normals = append(normals, normal)
		}
		grad := numerics.GreenGauss(self, neighVals, normals, mesh.Volume(c))
		gc := st.Grad(c)
		for d := 0; d < mesh.NDim; d++ {
			for k := 0; k < neq; k++ {
				gc[k*mesh.NDim+d] = grad[d][k]
			}
		}
	}
}

func (t *Turbulence) assembleEdge(e int) {
	mesh := t.Mesh
	st := t.State
	mf := t.mean.State
	ndim := mesh.NDim
	neq := st.NEq

	edge := mesh.Edge(e)
	i, j := edge.I, edge.J
	area := vecLen(edge.Normal, ndim)
	if area == 0 {
		return
	}
	nHat := unit(edge.Normal, ndim)

	Vi, Vj := mf.Prim(i), mf.Prim(j)
	idx := mf.Idx
	var un float64
	for d := 0; d < ndim; d++ {
		u := 0.5 * (Vi[idx.VelX+d] + Vj[idx.VelX+d])
		un += u * nHat[d]
	}
	dist := cellDistance(mesh, i, j)
	if dist <= 0 {
		return
	}
	muLamAvg := 0.5 * (Vi[idx.MuLam] + Vj[idx.MuLam])

	for k := 0; k < neq; k++ {
		phiI := st.Phi[i*neq+k]
		phiJ := st.Phi[j*neq+k]
		conv := numerics.SAConvective(phiI, phiJ, un) * area
		gradN := (phiJ - phiI) / dist
		visc := numerics.SAViscous(muLamAvg, 0.5*(phiI+phiJ), gradN) * area
		flux := conv - visc

		t.R[i*neq+k] += flux
		t.R[j*neq+k] -= flux

		diffCoef := (1.0 / numerics.SA.Sigma) * muLamAvg / dist * area
		convUp := 0.0
		if un >= 0 {
			convUp = un * area
		}
		convDn := 0.0
		if un < 0 {
			convDn = -un * area
		}
		di := t.M.Diag(i)
		dj := t.M.Diag(j)
		di.Set(k, k, di.At(k, k)+convUp+diffCoef)
		dj.Set(k, k, dj.At(k, k)+convDn+diffCoef)
		t.M.Block(i, j).Set(k, k, t.M.Block(i, j).At(k, k)-diffCoef)
		t.M.Block(j, i).Set(k, k, t.M.Block(j, i).At(k, k)-diffCoef)
	}
}

func (t *Turbulence) assembleBoundary(bIdx int) {
	mesh := t.Mesh
	st := t.State
	ndim := mesh.NDim
	neq := st.NEq
	bf := mesh.BoundaryFace(bIdx)
	c := bf.Owner
	area := vecLen(bf.Normal, ndim)
	if area == 0 {
		return
	}

	var target []float64
	if bf.Marker.IsWall() {
		target = make([]float64, neq)
		if st.Model == variables.TurbSST {
			nuLam := t.mean.State.Prim(c)[t.mean.State.Idx.MuLam] / t.mean.State.Prim(c)[t.mean.State.Idx.Rho]
			d := mesh.WallDistance(c)
			if d > 0 {
				target[1] = 60 * nuLam / (0.075 * d * d)
			}
		}
	} else {
		freestreamPhi := make([]float64, neq)
		switch st.Model {
		case variables.TurbSA:
			freestreamPhi[0] = st.Phi[0]
		case variables.TurbSST:
			copy(freestreamPhi, []float64{st.Phi[0], st.Phi[1]})
		}
		target = freestreamPhi
	}

	const penalty = 1e6
	for k := 0; k < neq; k++ {
		cur := st.Phi[c*neq+k]
		t.R[c*neq+k] += penalty * (cur - target[k]) * area
		d := t.M.Diag(c)
		d.Set(k, k, d.At(k, k)+penalty*area)
	}
}

// velocityInvariants returns the vorticity and strain-rate magnitudes from
// a cell's primitive gradient block, per spec.md §4.5's production terms.
func velocityInvariants(gradV []float64, idx variables.PrimIndex, ndim int) (vorticity, strain float64) {
	dudx := func(i, j int) float64 { return gradV[(idx.VelX+i)*ndim+j] }
	var w2, s2 float64
	for i := 0; i < ndim; i++ {
		for j := 0; j < ndim; j++ {
			wij := 0.5 * (dudx(i, j) - dudx(j, i))
			sij := 0.5 * (dudx(i, j) + dudx(j, i))
			w2 += wij * wij
			s2 += sij * sij
		}
	}
	return math.Sqrt(2 * w2), math.Sqrt(2 * s2)
}

// crossDiffusion approximates SST's cross-diffusion term CDkw = 2*rho*
// sigma_w2/omega * grad(k).grad(omega); this returns just the gradient dot
// product. Iterate applies the 2*rho*sigma_w2/omega factor before calling
// numerics.SSTBlendF1, and numerics.SSTSource applies it internally.
func crossDiffusion(gradPhi []float64, ndim int) float64 {
	var dot float64
	for d := 0; d < ndim; d++ {
		dk := gradPhi[0*ndim+d]
		dw := gradPhi[1*ndim+d]
		dot += dk * dw
	}
	return dot
}
