// Package variables holds the per-cell solution state of spec.md §3/§4.2:
// the conservative vector U, cached primitives V, reconstructed gradients
// and limiters, per-cell time step, spectral radii, and the old-solution
// slots needed by multi-stage RK and dual-time stepping. Conservatives are
// the canonical state (spec.md §9); primitives are a derived view
// recomputed at well-defined phase boundaries, never mutated independently.
package variables

import "math"

// Gas is the equation of state: calorically perfect ideal gas, the only
// closure spec.md's data model assumes.
type Gas struct {
	Gamma float64 // ratio of specific heats
	R     float64 // specific gas constant
}

// DefaultGas matches spec.md's default freestream_* configuration
// (dry air, gamma=1.4).
var DefaultGas = Gas{Gamma: 1.4, R: 287.058}

// NVarPrim returns the number of cached primitive fields for a given
// spatial dimension: temperature, ndim velocity components, pressure,
// density, enthalpy, sound speed, laminar viscosity, eddy viscosity.
func NVarPrim(ndim int) int { return ndim + 7 }

// NVarCons returns the number of conserved variables: density, ndim
// momentum components, total energy.
func NVarCons(ndim int) int { return ndim + 2 }

// Primitive field offsets within a per-cell primitive slice of length
// NVarPrim(ndim). Velocity occupies [IVelX, IVelX+ndim).
const (
	ITemp = iota
	IVelX
)

func offsets(ndim int) (iPress, iRho, iEnth, iSound, iMuLam, iMuTurb int) {
	iPress = IVelX + ndim
	iRho = iPress + 1
	iEnth = iRho + 1
	iSound = iEnth + 1
	iMuLam = iSound + 1
	iMuTurb = iMuLam + 1
	return
}

// PrimIndex names the field offsets a caller needs, resolved once per ndim.
type PrimIndex struct {
	NDim                                     int
	Temp, VelX, Press, Rho, Enth, Sound, MuLam, MuTurb int
}

// NewPrimIndex resolves field offsets for a given spatial dimension.
func NewPrimIndex(ndim int) PrimIndex {
	iPress, iRho, iEnth, iSound, iMuLam, iMuTurb := offsets(ndim)
	return PrimIndex{
		NDim: ndim, Temp: ITemp, VelX: IVelX,
		Press: iPress, Rho: iRho, Enth: iEnth, Sound: iSound,
		MuLam: iMuLam, MuTurb: iMuTurb,
	}
}

// FromConservative computes the primitive vector V from a conservative
// vector U (length NVarCons(ndim)), via the ideal-gas equation of state.
// Sutherland's law is applied for laminar viscosity; eddy viscosity mu_t
// is left untouched (it is owned by the turbulence closure, not the gas
// law) and must be copied in by the caller from the previous value.
func (g Gas) FromConservative(U []float64, ndim int, muTurbPrev float64) []float64 {
	idx := NewPrimIndex(ndim)
	V := make([]float64, NVarPrim(ndim))
	rho := U[0]
	var ke float64
	for d := 0; d < ndim; d++ {
		u := U[1+d] / rho
		V[idx.VelX+d] = u
		ke += u * u
	}
	ke *= 0.5
	E := U[ndim+1]
	p := (g.Gamma - 1) * (E - rho*ke)
	T := p / (rho * g.R)
	c := math.Sqrt(g.Gamma * p / rho)
	h := (E + p) / rho

	V[idx.Temp] = T
	V[idx.Press] = p
	V[idx.Rho] = rho
	V[idx.Enth] = h
	V[idx.Sound] = c
	V[idx.MuLam] = Sutherland(T)
	V[idx.MuTurb] = muTurbPrev
	return V
}

// ToConservative computes the conservative vector U from a primitive
// vector V. It is the inverse of FromConservative up to the eddy
// viscosity field, which conservatives carry no counterpart for.
func (g Gas) ToConservative(V []float64, ndim int) []float64 {
	idx := NewPrimIndex(ndim)
	U := make([]float64, NVarCons(ndim))
	rho := V[idx.Rho]
	p := V[idx.Press]
	U[0] = rho
	var ke float64
	for d := 0; d < ndim; d++ {
		u := V[idx.VelX+d]
		U[1+d] = rho * u
		ke += u * u
	}
	ke *= 0.5
	U[ndim+1] = p/(g.Gamma-1) + rho*ke
	return U
}

// Sutherland's law for laminar viscosity of air, mu(T), with the standard
// reference constants (mu_ref at T_ref=273.15K, Sutherland constant S=110.4K).
func Sutherland(T float64) float64 {
	const (
		muRef = 1.716e-5
		Tref  = 273.15
		S     = 110.4
	)
	return muRef * math.Pow(T/Tref, 1.5) * (Tref + S) / (T + S)
}

// Admissible reports whether a conservative state has positive density and
// pressure, the physical-admissibility test spec.md §4.2/§4.6 requires
// after every update.
func (g Gas) Admissible(U []float64, ndim int) bool {
	rho := U[0]
	if rho <= 0 {
		return false
	}
	var ke float64
	for d := 0; d < ndim; d++ {
		u := U[1+d] / rho
		ke += u * u
	}
	p := (g.Gamma - 1) * (U[ndim+1] - 0.5*rho*ke)
	return p > 0
}
