package variables

// TurbulenceModel names the closed set of supported turbulence closures
// (spec.md §9: tagged variants, not a class hierarchy).
type TurbulenceModel uint8

const (
	TurbNone TurbulenceModel = iota
	TurbSA                   // Spalart-Allmaras, one equation (nu-tilde)
	TurbSST                  // Menter SST, two equations (k, omega)
)

// NEq returns the block size of the turbulence system: 0 (no closure),
// 1 (SA) or 2 (SST).
func (t TurbulenceModel) NEq() int {
	switch t {
	case TurbSA:
		return 1
	case TurbSST:
		return 2
	default:
		return 0
	}
}

// Turbulence is the struct-of-arrays per-cell turbulence state: one or two
// transported variables, their gradients, eddy viscosity, and (SST only)
// the blending functions F1/F2, recomputed and cached once per turbulence
// subiteration (spec.md §4.5).
type Turbulence struct {
	Model TurbulenceModel
	NDim  int
	N     int
	NEq   int

	Phi     []float64 // N*NEq, transported variable(s)
	GradPhi []float64 // N*NEq*NDim
	Old     []float64 // N*NEq, previous subiteration's Phi

	MuT    []float64 // N, eddy viscosity derived from Phi
	F1, F2 []float64 // N each, SST blending functions (unused for SA)
}

// NewTurbulence allocates a Turbulence state; for TurbNone it returns nil,
// since there is nothing to couple to the mean flow.
func NewTurbulence(model TurbulenceModel, ndim, n int) *Turbulence {
	neq := model.NEq()
	if neq == 0 {
		return nil
	}
	return &Turbulence{
		Model: model, NDim: ndim, N: n, NEq: neq,
		Phi:     make([]float64, n*neq),
		GradPhi: make([]float64, n*neq*ndim),
		Old:     make([]float64, n*neq),
		MuT:     make([]float64, n),
		F1:      make([]float64, n),
		F2:      make([]float64, n),
	}
}

func (t *Turbulence) Cell(c int) []float64 { return t.Phi[c*t.NEq : (c+1)*t.NEq] }

func (t *Turbulence) Grad(c int) []float64 {
	return t.GradPhi[c*t.NEq*t.NDim : (c+1)*t.NEq*t.NDim]
}

func (t *Turbulence) SaveOld() { copy(t.Old, t.Phi) }
