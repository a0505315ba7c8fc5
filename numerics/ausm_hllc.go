package numerics

import (
	"math"

	"github.com/notargets/ranscfd/variables"
)

// decompose extracts (rho, u[], p, a, H) from a conservative state along
// normal n, the small bundle every low-diffusion scheme needs.
func decompose(gas variables.Gas, U []float64, n []float64, ndim int) (rho float64, u []float64, un, p, a, h float64) {
	rho = U[0]
	u = make([]float64, ndim)
	var ke float64
	for d := 0; d < ndim; d++ {
		u[d] = U[1+d] / rho
		un += u[d] * n[d]
		ke += u[d] * u[d]
	}
	ke *= 0.5
	p = (gas.Gamma - 1) * (U[ndim+1] - rho*ke)
	a = math.Sqrt(gas.Gamma * p / rho)
	h = (U[ndim+1] + p) / rho
	return
}

// AUSMplusUpFlux is the low-Mach-consistent AUSM family variant of
// spec.md §4.3 (Liou's AUSM+-up), selectable as an alternative to Roe.
// Kp/Ku/sigma are the standard pressure/velocity diffusion and shock-fix
// coefficients; Mref is the reference Mach used in the low-Mach scaling.
func AUSMplusUpFlux(gas variables.Gas, UL, UR []float64, n []float64, ndim int, Mref float64) []float64 {
	const (
		Kp    = 0.25
		Ku    = 0.75
		sigma = 1.0
		beta  = 1.0 / 8.0
	)
	rhoL, uL, unL, pL, aL, hL := decompose(gas, UL, n, ndim)
	rhoR, uR, unR, pR, aR, hR := decompose(gas, UR, n, ndim)

	aHalf := 0.5 * (aL + aR)
	ML := unL / aHalf
	MR := unR / aHalf
	rhoHalf := 0.5 * (rhoL + rhoR)

	M2Bar := 0.5 * (ML*ML + MR*MR)
	Mref2 := math.Min(1, math.Max(M2Bar, Mref*Mref))
	fa := math.Sqrt(Mref2) * (2 - math.Sqrt(Mref2))

	m4 := func(M float64, sign float64) float64 {
		if math.Abs(M) >= 1 {
			return 0.5 * (M + sign*math.Abs(M))
		}
		m2 := 0.25 * sign * (M + sign) * (M + sign)
		if sign > 0 {
			return m2 + beta*(M*M-1)*(M*M-1)
		}
		return m2 - beta*(M*M-1)*(M*M-1)
	}
	// Quartic pressure splitting, standard AUSM+-up form.
	pQuart := func(M float64, sign float64) float64 {
		if math.Abs(M) >= 1 {
			if M*sign >= 0 {
				return 1
			}
			return 0
		}
		alpha := 3.0 / 16.0 * (-4 + 5*fa*fa)
		return sign*0.25*(M+sign)*(M+sign)*(2*sign-M) + sign*alpha*M*(M*M-1)*(M*M-1)
	}

	Mp := -Kp / fa * math.Max(1-sigma*M2Bar, 0) * (pR - pL) / (rhoHalf * aHalf * aHalf)
	Mhalf := m4(ML, 1) + m4(MR, -1) + Mp

	pu := -Ku * pQuart(ML, 1) * pQuart(MR, -1) * (rhoL + rhoR) * fa * aHalf * (unR - unL)
	pHalf := pQuart(ML, 1)*pL + pQuart(MR, -1)*pR + pu

	var mdot float64
	if Mhalf > 0 {
		mdot = aHalf * Mhalf * rhoL
	} else {
		mdot = aHalf * Mhalf * rhoR
	}

	flux := make([]float64, ndim+2)
	pick := func(L, R float64) float64 {
		if mdot >= 0 {
			return L
		}
		return R
	}
	flux[0] = mdot
	for d := 0; d < ndim; d++ {
		flux[1+d] = mdot*pick(uL[d], uR[d]) + pHalf*n[d]
	}
	flux[ndim+1] = mdot * pick(hL, hR)
	return flux
}

// HLLCFlux is the Harten-Lax-van Leer-Contact approximate Riemann solver
// of spec.md §4.3: an HLL-type flux with an added contact/shear wave,
// using Roe-averaged speeds for the wave-speed estimates.
func HLLCFlux(gas variables.Gas, UL, UR []float64, n []float64, ndim int) []float64 {
	rhoL, uL, unL, pL, aL, _ := decompose(gas, UL, n, ndim)
	rhoR, uR, unR, pR, aR, _ := decompose(gas, UR, n, ndim)

	rhoLs, rhoRs := math.Sqrt(rhoL), math.Sqrt(rhoR)
	uRoe := (rhoLs*unL + rhoRs*unR) / (rhoLs + rhoRs)
	hL := (UL[ndim+1] + pL) / rhoL
	hR := (UR[ndim+1] + pR) / rhoR
	hRoe := (rhoLs*hL + rhoRs*hR) / (rhoLs + rhoRs)
	var q2 float64
	for d := 0; d < ndim; d++ {
		ud := (rhoLs*uL[d] + rhoRs*uR[d]) / (rhoLs + rhoRs)
		q2 += ud * ud
	}
	aRoe := math.Sqrt((gas.Gamma - 1) * (hRoe - 0.5*q2))

	SL := math.Min(unL-aL, uRoe-aRoe)
	SR := math.Max(unR+aR, uRoe+aRoe)
	SM := (rhoR*unR*(SR-unR) - rhoL*unL*(SL-unL) + pL - pR) / (rhoR*(SR-unR) - rhoL*(SL-unL))

	FL := cartesianFlux(gas, UL, n, ndim)
	FR := cartesianFlux(gas, UR, n, ndim)

	if SL >= 0 {
		return FL
	}
	if SR <= 0 {
		return FR
	}

	starState := func(rho float64, u []float64, un, p, E float64, S float64) []float64 {
		factor := rho * (S - un) / (S - SM)
		Ustar := make([]float64, ndim+2)
		Ustar[0] = factor
		for d := 0; d < ndim; d++ {
			ud := u[d] + (SM-un)*n[d]
			Ustar[1+d] = factor * ud
		}
		Ustar[ndim+1] = factor * (E/rho + (SM-un)*(SM+p/(rho*(S-un))))
		return Ustar
	}

	if SM >= 0 {
		UstarL := starState(rhoL, uL, unL, pL, UL[ndim+1], SL)
		flux := make([]float64, ndim+2)
		for i := range flux {
			flux[i] = FL[i] + SL*(UstarL[i]-UL[i])
		}
		return flux
	}
	UstarR := starState(rhoR, uR, unR, pR, UR[ndim+1], SR)
	flux := make([]float64, ndim+2)
	for i := range flux {
		flux[i] = FR[i] + SR*(UstarR[i]-UR[i])
	}
	return flux
}
