package numerics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/ranscfd/variables"
)

func freestreamState(gas variables.Gas, ndim int) []float64 {
	rho := 1.2
	vel := make([]float64, ndim)
	vel[0] = 100
	p := 101325.0
	U := make([]float64, ndim+2)
	U[0] = rho
	var ke float64
	for d := 0; d < ndim; d++ {
		U[1+d] = rho * vel[d]
		ke += vel[d] * vel[d]
	}
	U[ndim+1] = p/(gas.Gamma-1) + 0.5*rho*ke
	return U
}

func TestRoeFlux_FreestreamPreservation(t *testing.T) {
	gas := variables.DefaultGas
	for _, ndim := range []int{2, 3} {
		U := freestreamState(gas, ndim)
		n := make([]float64, ndim)
		n[0], n[1] = 0.6, 0.8
		if ndim == 3 {
			n[0], n[1], n[2] = 0.6, 0.48, 0.64
		}
		flux := RoeFlux(gas, U, U, n, ndim, 0.1)
		exact := cartesianFlux(gas, U, n, ndim)
		for i := range flux {
			assert.InDelta(t, exact[i], flux[i], 1e-8, "component %d ndim %d", i, ndim)
		}
	}
}

func TestRoeFlux_Antisymmetry(t *testing.T) {
	gas := variables.DefaultGas
	ndim := 2
	UL := freestreamState(gas, ndim)
	UR := append([]float64(nil), UL...)
	UR[0] *= 1.05
	UR[ndim+1] *= 1.02
	n := []float64{1, 0}
	nRev := []float64{-1, 0}
	f1 := RoeFlux(gas, UL, UR, n, ndim, 0.1)
	f2 := RoeFlux(gas, UR, UL, nRev, ndim, 0.1)
	for i := range f1 {
		assert.InDelta(t, f1[i], -f2[i], 1e-9)
	}
}

func TestHLLC_FreestreamPreservation(t *testing.T) {
	gas := variables.DefaultGas
	ndim := 2
	U := freestreamState(gas, ndim)
	n := []float64{0.6, 0.8}
	flux := HLLCFlux(gas, U, U, n, ndim)
	exact := cartesianFlux(gas, U, n, ndim)
	for i := range flux {
		assert.InDelta(t, exact[i], flux[i], 1e-8)
	}
}

func TestVenkatakrishnanLimiter_BoundsToUnitInterval(t *testing.T) {
	phi := VenkatakrishnanLimiter(10, 5, 6, 4, 1.0, 5.0)
	assert.GreaterOrEqual(t, phi, 0.0)
	assert.LessOrEqual(t, phi, 1.0)

	phiZeroDelta := VenkatakrishnanLimiter(0, 5, 6, 4, 1.0, 5.0)
	assert.Equal(t, 1.0, phiZeroDelta)
}

func TestBarthJespersenLimiter_ClipsToBounds(t *testing.T) {
	phi := BarthJespersenLimiter(2, 5, 6, 4)
	assert.InDelta(t, 0.5, phi, 1e-12)
	phiOver := BarthJespersenLimiter(0.1, 5, 6, 4)
	assert.Equal(t, 1.0, phiOver)
}

func TestGreenGauss_ExactOnLinearField(t *testing.T) {
	// A linear scalar field f(x,y)=2x+3y over a symmetric square
	// neighborhood must reproduce grad=(2,3) exactly.
	self := []float64{0}
	neigh := [][]float64{{2}, {-2}, {3}, {-3}}
	normals := [][]float64{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	vol := 1.0
	grad := GreenGauss(self, neigh, normals, vol)
	assert.InDelta(t, 2.0, grad[0][0], 1e-9)
	assert.InDelta(t, 3.0, grad[1][0], 1e-9)
}

func TestWeightedLeastSquares_ExactOnLinearField(t *testing.T) {
	self := []float64{0}
	dx := [][]float64{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	neigh := [][]float64{{2}, {-2}, {3}, {-3}}
	grad := WeightedLeastSquares(self, neigh, dx)
	assert.InDelta(t, 2.0, grad[0][0], 1e-9)
	assert.InDelta(t, 3.0, grad[1][0], 1e-9)
}

func TestSAEddyViscosity_ZeroAtZeroNuTilde(t *testing.T) {
	mut := SAEddyViscosity(0, 1.8e-5, 1.2)
	assert.Equal(t, 0.0, mut)
}

func TestSSTBlendF1_NearOneVeryCloseToWall(t *testing.T) {
	f1 := SSTBlendF1(0.01, 1000, 1e-6, 1.8e-5, 1.2, 1e-10)
	assert.Greater(t, f1, 0.9)
}

func TestSpectralRadiusInviscid_MatchesAnalyticFormula(t *testing.T) {
	gas := variables.DefaultGas
	ndim := 2
	U := freestreamState(gas, ndim)
	n := []float64{1, 0}
	area := 2.0
	got := SpectralRadiusInviscid(gas, U, n, area, ndim)
	rho := U[0]
	u := U[1] / rho
	v := U[2] / rho
	p := (gas.Gamma - 1) * (U[3] - 0.5*rho*(u*u+v*v))
	c := math.Sqrt(gas.Gamma * p / rho)
	want := (math.Abs(u) + c) * area
	assert.InDelta(t, want, got, 1e-9)
}
