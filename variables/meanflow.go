package variables

import "github.com/notargets/ranscfd/concurrency"

// MeanFlow is the struct-of-arrays per-cell state for the mean-flow
// system: conservative vector U, cached primitives V, reconstructed
// gradients and Venkatakrishnan limiter, per-cell time step, spectral
// radii, the undivided Laplacian used by the JST sensor, and the
// old-solution slots needed by explicit RK stages and BDF2 dual-time
// stepping. All slices are flat (cell-major) so the edge loop in
// numerics/solver sees plain arrays, per spec.md §9's
// struct-of-arrays directive.
type MeanFlow struct {
	Gas  Gas
	NDim int
	N    int // cell count
	NVar int // conservative vars per cell
	NVP  int // primitive vars per cell
	Idx  PrimIndex

	U     []float64 // N*NVar, canonical state
	V     []float64 // N*NVP, derived cache
	GradV []float64 // N*NVP*NDim
	VMin  []float64 // N*NVP, neighborhood minima (Venkatakrishnan bounds)
	VMax  []float64 // N*NVP, neighborhood maxima
	Phi   []float64 // N*NVP, limiter in [0,1]

	Dt        []float64 // N, local pseudo-time step
	LambdaInv []float64 // N, inviscid spectral radius
	LambdaVis []float64 // N, viscous spectral radius
	UndivLap  []float64 // N, undivided Laplacian of pressure (JST sensor)

	// Old-solution slots. Un/Unm1 hold the two prior physical-time levels
	// dual-time BDF2 stepping reads in solver.MeanFlow.addDualTimeSource;
	// RKSave holds the state at the start of the current explicit RK stage
	// sequence.
	Un, Unm1 []float64
	RKSave   []float64
}

// NewMeanFlow allocates a MeanFlow for n cells at the given dimension.
func NewMeanFlow(gas Gas, ndim, n int) *MeanFlow {
	nvar := NVarCons(ndim)
	nvp := NVarPrim(ndim)
	return &MeanFlow{
		Gas: gas, NDim: ndim, N: n, NVar: nvar, NVP: nvp, Idx: NewPrimIndex(ndim),
		U:         make([]float64, n*nvar),
		V:         make([]float64, n*nvp),
		GradV:     make([]float64, n*nvp*ndim),
		VMin:      make([]float64, n*nvp),
		VMax:      make([]float64, n*nvp),
		Phi:       make([]float64, n*nvp),
		Dt:        make([]float64, n),
		LambdaInv: make([]float64, n),
		LambdaVis: make([]float64, n),
		UndivLap:  make([]float64, n),
		Un:        make([]float64, n*nvar),
		Unm1:      make([]float64, n*nvar),
		RKSave:    make([]float64, n*nvar),
	}
}

// Cell returns a view of cell c's conservative vector.
func (m *MeanFlow) Cell(c int) []float64 { return m.U[c*m.NVar : (c+1)*m.NVar] }

// Prim returns a view of cell c's cached primitive vector.
func (m *MeanFlow) Prim(c int) []float64 { return m.V[c*m.NVP : (c+1)*m.NVP] }

// Grad returns a view of cell c's gradient block, NVP rows x NDim columns,
// row-major: Grad(c)[k*NDim+d] = d(V_k)/dx_d.
func (m *MeanFlow) Grad(c int) []float64 {
	return m.GradV[c*m.NVP*m.NDim : (c+1)*m.NVP*m.NDim]
}

// InitFreestream sets every cell to the given freestream conservative
// state, used both to initialize a run and by the freestream-preservation
// test (spec.md §8).
func (m *MeanFlow) InitFreestream(Uinf []float64) {
	for c := 0; c < m.N; c++ {
		copy(m.Cell(c), Uinf)
	}
	m.RefreshPrimitives(nil)
}

// RefreshPrimitives recomputes V from U for every cell (spec.md §4.2:
// "V <- primitivesFrom(U) on demand"). muTurbCell, if non-nil, supplies the
// eddy viscosity to carry into V[MuTurb] per cell (loose coupling with the
// turbulence solver); if nil the previous V's eddy viscosity is preserved.
func (m *MeanFlow) RefreshPrimitives(muTurbFn func(c int) float64) {
	concurrency.For(m.N, func(c int) {
		prevMuT := m.Prim(c)[m.Idx.MuTurb]
		if muTurbFn != nil {
			prevMuT = muTurbFn(c)
		}
		copy(m.Prim(c), m.Gas.FromConservative(m.Cell(c), m.NDim, prevMuT))
	})
}

// SaveOld snapshots U into RKSave, the state an RK stage sequence restarts
// increments from.
func (m *MeanFlow) SaveOld() { copy(m.RKSave, m.U) }

// ShiftTimeLevels advances the BDF2 history: Unm1 <- Un, Un <- U. Called
// once per physical time step in dual-time integration, never per
// pseudo-time subiteration.
func (m *MeanFlow) ShiftTimeLevels() {
	copy(m.Unm1, m.Un)
	copy(m.Un, m.U)
}

// InitTimeLevels seeds Un and Unm1 with the current state U, the BDF2
// history a dual-time run assumes before any physical time step has been
// taken (both prior levels equal to the initial condition).
func (m *MeanFlow) InitTimeLevels() {
	copy(m.Un, m.U)
	copy(m.Unm1, m.U)
}
