package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGas_Idempotence(t *testing.T) {
	g := DefaultGas
	for ndim := 2; ndim <= 3; ndim++ {
		U := make([]float64, NVarCons(ndim))
		U[0] = 1.2
		for d := 0; d < ndim; d++ {
			U[1+d] = 1.2 * (10.0 + float64(d))
		}
		var ke float64
		for d := 0; d < ndim; d++ {
			u := U[1+d] / U[0]
			ke += u * u
		}
		U[ndim+1] = 101325.0/(g.Gamma-1) + 0.5*U[0]*ke

		V := g.FromConservative(U, ndim, 0)
		U2 := g.ToConservative(V, ndim)
		for i := range U {
			assert.InDelta(t, U[i], U2[i], 1e-8*(1+abs(U[i])))
		}

		V2 := g.FromConservative(U2, ndim, 0)
		for i := range V {
			assert.InDelta(t, V[i], V2[i], 1e-6*(1+abs(V[i])))
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestGas_Admissible(t *testing.T) {
	g := DefaultGas
	U := []float64{1.0, 2.0, 0.0, 3e5}
	assert.True(t, g.Admissible(U, 2))
	U[0] = -1
	assert.False(t, g.Admissible(U, 2))
	U[0] = 1.0
	U[3] = -1 // drives negative pressure
	assert.False(t, g.Admissible(U, 2))
}

func TestSutherland_Monotonic(t *testing.T) {
	assert.Greater(t, Sutherland(400), Sutherland(300))
}
