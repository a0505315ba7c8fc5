package numerics

import (
	"math"

	"github.com/notargets/ranscfd/variables"
)

// SA holds the closed set of Spalart-Allmaras model constants (the
// standard 1994 calibration), grouped so the source-term routine below
// reads like the model's defining equations rather than a wall of magic
// numbers.
var SA = struct {
	Cb1, Cb2, Sigma, Kappa, Cw1, Cw2, Cw3, Cv1 float64
}{
	Cb1: 0.1355, Cb2: 0.622, Sigma: 2.0 / 3.0, Kappa: 0.41,
	Cw2: 0.3, Cw3: 2.0, Cv1: 7.1,
}

func init() {
	SA.Cw1 = SA.Cb1/(SA.Kappa*SA.Kappa) + (1+SA.Cb2)/SA.Sigma
}

// SAConvective is the scalar first-order upwind convective flux for the
// transported variable nu-tilde, per spec.md §4.5's "loose coupling"
// requirement: the same edge loop the mean flow uses, but a 1x1 scalar
// system advected by the frozen mean-flow velocity at the face.
func SAConvective(nuL, nuR, un float64) float64 {
	if un >= 0 {
		return un * nuL
	}
	return un * nuR
}

// SAViscous is the diffusive term of the SA transport equation across an
// edge: (1/sigma)*(nu+nu_tilde)*d(nu_tilde)/dn, using the averaged
// molecular viscosity nu=mu/rho and the edge-normal gradient.
func SAViscous(nuLam, nuTilde, gradN float64) float64 {
	return (1.0 / SA.Sigma) * (nuLam + nuTilde) * gradN
}

// fv1/fv2/fw are the standard SA damping functions.
func fv1(chi float64) float64 {
	c3 := SA.Cv1 * SA.Cv1 * SA.Cv1
	return chi * chi * chi / (chi*chi*chi + c3)
}
func fv2(chi float64) float64 {
	return 1 - chi/(1+chi*fv1(chi))
}
func fw(g float64) float64 {
	c6 := SA.Cw3 * SA.Cw3 * SA.Cw3 * SA.Cw3 * SA.Cw3 * SA.Cw3
	g6 := g * g * g * g * g * g
	return g * math.Pow((1+c6)/(g6+c6), 1.0/6.0)
}

// SASource evaluates the SA production-destruction source term for one
// cell, per spec.md §4.5: production scaled by the modified vorticity
// Stilde, wall destruction scaled by (nu_tilde/d)^2. The molecular
// kinematic viscosity nu enters only through chi = nu_tilde/nu. An infinite
// wall distance (no wall markers) drops the wall-dependent terms: Stilde is
// the vorticity and destruction is zero.
func SASource(nuTilde, nuLam, rho, wallDist, vorticity float64) (production, destruction float64) {
	if wallDist <= 0 {
		return 0, 0
	}
	if math.IsInf(wallDist, 1) {
		return SA.Cb1 * math.Max(vorticity, 0) * nuTilde, 0
	}
	nu := nuLam / rho
	chi := nuTilde / nu
	fv2c := fv2(chi)
	d2 := wallDist * wallDist
	sBar := nuTilde / (SA.Kappa * SA.Kappa * d2) * fv2c
	sTilde := math.Max(vorticity+sBar, 0.3*vorticity)

	production = SA.Cb1 * sTilde * nuTilde
	r := math.Min(nuTilde/(sTilde*SA.Kappa*SA.Kappa*d2), 10)
	g := r + SA.Cw2*(math.Pow(r, 6)-r)
	destruction = SA.Cw1 * fw(g) * (nuTilde * nuTilde) / d2
	return
}

// SAEddyViscosity converts the transported nu-tilde into the eddy
// viscosity mu_t the mean-flow solver consumes, per spec.md §4.5.
func SAEddyViscosity(nuTilde, nuLam, rho float64) float64 {
	nu := nuLam / rho
	chi := nuTilde / nu
	return rho * nuTilde * fv1(chi)
}

// SST holds the blended Menter SST 2003 constants for both zones (1:
// k-omega near-wall, 2: k-epsilon far-field); production/destruction and
// eddy-viscosity routines blend between them with F1.
var SST = struct {
	Sigma_k1, Sigma_k2, Sigma_w1, Sigma_w2       float64
	Beta1, Beta2, BetaStar, Gamma1, Gamma2, A1   float64
}{
	Sigma_k1: 0.85, Sigma_k2: 1.0, Sigma_w1: 0.5, Sigma_w2: 0.856,
	Beta1: 0.075, Beta2: 0.0828, BetaStar: 0.09, A1: 0.31,
}

func init() {
	kappa := 0.41
	SST.Gamma1 = SST.Beta1/SST.BetaStar - SST.Sigma_w1*kappa*kappa/math.Sqrt(SST.BetaStar)
	SST.Gamma2 = SST.Beta2/SST.BetaStar - SST.Sigma_w2*kappa*kappa/math.Sqrt(SST.BetaStar)
}

// SSTBlendF1 computes the near-wall/far-field blending function per
// spec.md §4.5's SST coupling requirement, from turbulent kinetic energy
// k, specific dissipation omega, wall distance d, molecular viscosity
// nuLam and density rho (giving nu = nuLam/rho), and the cross-diffusion
// term CDkw.
func SSTBlendF1(k, omega, d, nuLam, rho, cdKw float64) float64 {
	if d <= 0 {
		return 1
	}
	nu := nuLam / rho
	arg1a := math.Sqrt(k) / (SST.BetaStar * omega * d)
	arg1b := 500 * nu / (d * d * omega)
	cdPos := math.Max(cdKw, 1e-20)
	arg1c := 4 * rho * SST.Sigma_w2 * k / (cdPos * d * d)
	arg1 := math.Min(math.Max(arg1a, arg1b), arg1c)
	return math.Tanh(arg1 * arg1 * arg1 * arg1)
}

// SSTBlendF2 is the second blending function gating the eddy-viscosity
// limiter (Bradshaw's assumption), per the SST closure.
func SSTBlendF2(k, omega, d, nuLam, rho float64) float64 {
	if d <= 0 {
		return 1
	}
	nu := nuLam / rho
	arg2a := 2 * math.Sqrt(k) / (SST.BetaStar * omega * d)
	arg2b := 500 * nu / (d * d * omega)
	arg2 := math.Max(arg2a, arg2b)
	return math.Tanh(arg2 * arg2)
}

// SSTEddyViscosity applies the SST limiter mu_t = rho*a1*k /
// max(a1*omega, S*F2), where S is the strain-rate magnitude, per
// spec.md §4.5.
func SSTEddyViscosity(k, omega, rho, strainMag, f2 float64) float64 {
	denom := math.Max(SST.A1*omega, strainMag*f2)
	if denom <= 0 {
		return 0
	}
	return rho * SST.A1 * k / denom
}

// SSTSource evaluates the blended k and omega production-destruction
// source terms for one cell, per spec.md §4.5.
func SSTSource(k, omega, rho, muT, strainMag, f1, cdKw float64) (prodK, destK, prodW, destW float64) {
	pk := math.Min(muT*strainMag*strainMag, 20*SST.BetaStar*rho*k*omega)
	prodK = pk
	destK = SST.BetaStar * rho * k * omega

	gamma := f1*SST.Gamma1 + (1-f1)*SST.Gamma2
	beta := f1*SST.Beta1 + (1-f1)*SST.Beta2
	prodW = gamma * rho / math.Max(muT, 1e-20) * pk
	destW = beta * rho * omega * omega
	prodW += (1 - f1) * 2 * rho * SST.Sigma_w2 * cdKw / math.Max(omega, 1e-20)
	return
}

// FreestreamMuT gives the standard SA/SST freestream initial eddy
// viscosity ratio used by the solver package's freestream state and
// Turbulence initialization, kept here so both read the same convention.
func FreestreamMuT(model variables.TurbulenceModel, muLam float64) float64 {
	switch model {
	case variables.TurbSA:
		return 0.1 * muLam
	case variables.TurbSST:
		return 1e-5 * muLam
	default:
		return 0
	}
}
