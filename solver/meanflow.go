package solver

import (
	"math"

	"github.com/notargets/ranscfd/concurrency"
	"github.com/notargets/ranscfd/config"
	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/linsolve"
	"github.com/notargets/ranscfd/numerics"
	"github.com/notargets/ranscfd/ranserr"
	"github.com/notargets/ranscfd/sparse"
	"github.com/notargets/ranscfd/types"
	"github.com/notargets/ranscfd/variables"
)

// IterationResult reports what one nonlinear iteration did, the
// bookkeeping Integration needs to drive CFL ramping/cutback and
// convergence testing per spec.md §4.7.
type IterationResult struct {
	ResidualNorm  []float64 // per-variable L2 norm of R
	LinearIters   int
	LinearStalled bool
	Admissible    bool // false if any cell failed the admissibility check after update
}

// MeanFlow orchestrates one nonlinear iteration of the mean-flow system,
// per spec.md §4.4's eight-step sequence, using the shared edge/cell
// loops but dispatching flux and Jacobian evaluation to numerics.
type MeanFlow struct {
	Mesh *geometry.Mesh
	Gas  variables.Gas
	Cfg  config.RunConfig
	Fs   Freestream
	BCs  map[types.BCKind]config.BCSpec

	State *variables.MeanFlow
	M     *sparse.BlockMatrix
	R     []float64

	CFL float64

	scheme numerics.ConvectiveScheme
	grad   numerics.GradientMethod
	limit  numerics.LimiterKind

	// lapU is the per-cell undivided Laplacian of the conservative state,
	// recomputed each iteration in computeGradientsAndLimiter and consumed
	// by assembleEdge's JST fourth-difference dissipation.
	lapU [][]float64

	// rkStage cycles 0..RKStages-1 across successive Iterate calls when
	// TimeIntegration is explicit_rk; RKSave holds the stage-0 state each
	// stage update is taken relative to.
	rkStage int

	// muTurbAt supplies eddy viscosity per cell for coupling with a
	// turbulence solver; nil means inviscid/no-turbulence closure.
	muTurbAt func(c int) float64

	// edgeColors is the mesh's edge coloring (colorEdges), computed once at
	// construction since the mesh's connectivity never changes across
	// iterations; the edge loop and the edge-accumulation half of
	// computeTimeSteps both dispatch color-by-color through it via
	// concurrency.ForIndices.
	edgeColors [][]int
}

// NewMeanFlow builds a MeanFlow solver over a preprocessed mesh and
// resolved config.
func NewMeanFlow(mesh *geometry.Mesh, gas variables.Gas, cfg config.RunConfig) (*MeanFlow, error) {
	scheme, ok := numerics.ParseConvectiveScheme(cfg.Convective)
	if !ok {
		return nil, ranserr.ErrInputInvalid
	}
	gm, ok := numerics.ParseGradientMethod(cfg.GradientMethod)
	if !ok {
		return nil, ranserr.ErrInputInvalid
	}
	lk := numerics.LimiterNone
	if cfg.MUSCL {
		lk, ok = numerics.ParseLimiterKind(cfg.Limiter)
		if !ok {
			return nil, ranserr.ErrInputInvalid
		}
	}

	n := mesh.CellCount()
	mf := variables.NewMeanFlow(gas, mesh.NDim, n)
	fs := NewFreestream(gas, cfg, mesh.NDim)
	mf.InitFreestream(fs.Cons)

	nvar := variables.NVarCons(mesh.NDim)
	bm := sparse.NewFromMesh(mesh, nvar)

	bcs := make(map[types.BCKind]config.BCSpec, len(cfg.BoundaryConditions))
	for marker, spec := range cfg.BoundaryConditions {
		kind, ok := types.ParseBCKind(marker)
		if !ok {
			return nil, ranserr.ErrInputInvalid
		}
		if _, ok := types.ParseBCKind(spec.Kind); !ok {
			return nil, ranserr.ErrInputInvalid
		}
		bcs[kind] = spec
	}

	return &MeanFlow{
		Mesh: mesh, Gas: gas, Cfg: cfg, Fs: fs, BCs: bcs,
		State: mf, M: bm, R: make([]float64, n*nvar),
		CFL: cfg.CFLInit, scheme: scheme, grad: gm, limit: lk,
		edgeColors: colorEdges(mesh),
	}, nil
}

// SetTurbulenceCoupling wires the eddy viscosity source for loose
// coupling per spec.md §4.5.
func (s *MeanFlow) SetTurbulenceCoupling(muTurbAt func(c int) float64) {
	s.muTurbAt = muTurbAt
}

// Iterate runs one nonlinear iteration per spec.md §4.4.
func (s *MeanFlow) Iterate() (IterationResult, error) {
	mesh := s.Mesh
	mf := s.State
	ndim := mesh.NDim
	nvar := mf.NVar
	n := mesh.CellCount()
	implicit := s.Cfg.TimeIntegration != "explicit_rk"

	// 1. Refresh primitives.
	mf.RefreshPrimitives(s.muTurbAt)

	// 2. Gradients, neighborhood bounds, limiter.
	s.computeGradientsAndLimiter()

	// 3. Zero R and M.
	concurrency.For(len(s.R), func(i int) { s.R[i] = 0 })
	if implicit {
		s.M.Zero()
		concurrency.For(n, func(c int) { s.M.Diag(c).Zero() })
	}

	// 4. Edge loop: convective + viscous flux and Jacobian. Colors are
	// processed one at a time (the barrier spec.md §5 calls the "color
	// boundary" sync point); within a color, edges touch disjoint cells, so
	// concurrency.ForIndices's goroutines never race on s.R/s.M.
	for _, color := range s.edgeColors {
		concurrency.ForIndices(color, func(e int) { s.assembleEdge(e, implicit) })
	}

	// 5. Boundary faces. Owners repeat (geometry.Mesh splits each primal
	// boundary face into one share per vertex, and a vertex can touch
	// several faces), so the parallel pass only writes each face's own
	// outcomes slot; accumulation into s.R and s.M is a sequential pass.
	type boundaryOutcome struct {
		flux []float64
		err  error
	}
	outcomes := make([]boundaryOutcome, mesh.BoundaryFaceCount())
	concurrency.For(mesh.BoundaryFaceCount(), func(bIdx int) {
		bf := mesh.BoundaryFace(bIdx)
		spec := s.BCs[bf.Marker]
		nHat := unit(bf.Normal, ndim)
		flux, err := BoundaryFlux(s.Gas, bf.Marker, spec, mf.Cell(bf.Owner), nHat, ndim, s.Fs, s.Cfg.EntropyFixEps)
		if err != nil {
			outcomes[bIdx] = boundaryOutcome{err: err}
			return
		}
		if s.Cfg.Solver != "euler" && bf.Marker.IsWall() {
			muT := 0.0
			if s.muTurbAt != nil {
				muT = s.muTurbAt(bf.Owner)
			}
			dist := faceDistance(mesh, bf.Owner, bf.Midpoint)
			gradOwner := unflatten(mf.Grad(bf.Owner), mf.NVP, ndim)
			isothermal := bf.Marker == types.BCWallIsothermal
			visc := numerics.WallViscousFlux(mf.Idx, s.Gas, mf.Prim(bf.Owner), gradOwner, dist, nHat,
				isothermal, spec.Parameters["T_wall"], spec.Parameters["q_wall"], muT, s.Cfg.PrandtlLaminar, s.Cfg.PrandtlTurbulent)
			for k := 0; k < nvar; k++ {
				flux[k] -= visc[k]
			}
		}
		outcomes[bIdx] = boundaryOutcome{flux: flux}
	})
	for bIdx, out := range outcomes {
		if out.err != nil {
			return IterationResult{}, out.err
		}
		bf := mesh.BoundaryFace(bIdx)
		area := vecLen(bf.Normal, ndim)
		for k := 0; k < nvar; k++ {
			s.R[bf.Owner*nvar+k] += out.flux[k] * area
		}
	}

	// 5.5. Dual-time BDF2 physical-time source, only for dual_time_bdf2.
	if s.Cfg.TimeIntegration == "dual_time_bdf2" {
		s.addDualTimeSource()
	}

	// 6. Local time step.
	s.computeTimeSteps()

	res := IterationResult{ResidualNorm: residualNorm(s.R, n, nvar)}

	// 7/8. Update.
	if implicit {
		concurrency.For(n, func(c int) {
			d := s.M.Diag(c)
			for k := 0; k < nvar; k++ {
				d.Set(k, k, d.At(k, k)+mesh.Volume(c)/mf.Dt[c])
			}
		})
		b := make([]float64, n*nvar)
		for i := range b {
			b[i] = -s.R[i]
		}
		x := make([]float64, n*nvar)
		var pc sparse.Preconditioner
		switch s.Cfg.LinearPreconditioner {
		case "jacobi":
			pc = sparse.NewBlockJacobi(s.M)
		case "sgs":
			pc = sparse.NewSGS(s.M)
		default:
			pc = sparse.NewILU0(s.M)
		}
		var lr linsolve.Result
		if s.Cfg.LinearSolver == "bicgstab" {
			lr = linsolve.BiCGStab(s.M, pc, b, x, s.Cfg.LinearMaxIter, s.Cfg.LinearTol)
		} else {
			lr = linsolve.GMRES(s.M, pc, b, x, s.Cfg.GMRESRestart, s.Cfg.LinearMaxIter, s.Cfg.LinearTol)
		}
		res.LinearIters = lr.Iterations
		res.LinearStalled = lr.Stagnated
		if lr.Stagnated {
			return res, ranserr.ErrLinearSolverDiverged
		}
		cellOK := make([]bool, n)
		concurrency.For(n, func(c int) {
			Unew := make([]float64, nvar)
			copy(Unew, mf.Cell(c))
			for k := 0; k < nvar; k++ {
				Unew[k] += x[c*nvar+k]
			}
			if !s.Gas.Admissible(Unew, ndim) {
				cellOK[c] = false
				return
			}
			cellOK[c] = true
			copy(mf.Cell(c), Unew)
		})
		admissible := true
		for _, ok := range cellOK {
			if !ok {
				admissible = false
				break
			}
		}
		res.Admissible = admissible
		if !admissible {
			return res, ranserr.ErrNumericNonAdmissible
		}
	} else {
		s.explicitRKStage()
		res.Admissible = true
	}

	return res, nil
}

func residualNorm(R []float64, n, nvar int) []float64 {
	out := make([]float64, nvar)
	for c := 0; c < n; c++ {
		for k := 0; k < nvar; k++ {
			v := R[c*nvar+k]
			out[k] += v * v
		}
	}
	for k := range out {
		out[k] = math.Sqrt(out[k])
	}
	return out
}

func unit(v []float64, ndim int) []float64 {
	l := vecLen(v, ndim)
	if l == 0 {
		return v
	}
	out := make([]float64, ndim)
	for d := 0; d < ndim; d++ {
		out[d] = v[d] / l
	}
	return out
}

func vecLen(v []float64, ndim int) float64 {
	var s float64
	for d := 0; d < ndim; d++ {
		s += v[d] * v[d]
	}
	return math.Sqrt(s)
}
