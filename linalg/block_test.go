package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_SetGet(t *testing.T) {
	b := NewBlock(3)
	b.Set(0, 0, 1)
	b.Set(1, 2, 5)
	assert.Equal(t, 1.0, b.At(0, 0))
	assert.Equal(t, 5.0, b.At(1, 2))
	assert.Equal(t, 0.0, b.At(2, 2))
}

func TestBlock_SetIdentity(t *testing.T) {
	b := NewBlock(3)
	b.SetIdentity(2.0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.Equal(t, 2.0, b.At(i, j))
			} else {
				assert.Equal(t, 0.0, b.At(i, j))
			}
		}
	}
}

func TestBlock_AddScaled(t *testing.T) {
	a := NewBlock(2)
	a.SetIdentity(1.0)
	src := NewBlock(2)
	src.SetIdentity(1.0)
	a.AddScaled(src, 3.0)
	assert.Equal(t, 4.0, a.At(0, 0))
	assert.Equal(t, 4.0, a.At(1, 1))
	assert.Equal(t, 0.0, a.At(0, 1))
}

func TestBlock_MulVec(t *testing.T) {
	b := NewBlock(2)
	b.Set(0, 0, 2)
	b.Set(0, 1, 1)
	b.Set(1, 0, 0)
	b.Set(1, 1, 3)
	x := []float64{1, 2}
	y := make([]float64, 2)
	b.MulVecTo(x, y)
	assert.InDelta(t, 4.0, y[0], 1e-12)
	assert.InDelta(t, 6.0, y[1], 1e-12)

	// MulVec accumulates rather than overwriting.
	b.MulVec(x, y)
	assert.InDelta(t, 8.0, y[0], 1e-12)
	assert.InDelta(t, 12.0, y[1], 1e-12)
}

func TestBlock_InvertAndSolve(t *testing.T) {
	b := NewBlock(2)
	b.Set(0, 0, 4)
	b.Set(0, 1, 3)
	b.Set(1, 0, 6)
	b.Set(1, 1, 3)

	inv := NewBlock(2)
	ok := b.Invert(inv)
	require.True(t, ok)

	// b * inv should be the identity.
	prod := NewBlock(2)
	for j := 0; j < 2; j++ {
		col := []float64{inv.At(0, j), inv.At(1, j)}
		out := make([]float64, 2)
		b.MulVecTo(col, out)
		prod.Set(0, j, out[0])
		prod.Set(1, j, out[1])
	}
	assert.InDelta(t, 1.0, prod.At(0, 0), 1e-9)
	assert.InDelta(t, 0.0, prod.At(0, 1), 1e-9)
	assert.InDelta(t, 0.0, prod.At(1, 0), 1e-9)
	assert.InDelta(t, 1.0, prod.At(1, 1), 1e-9)

	rhs := []float64{10, 18}
	x := make([]float64, 2)
	ok = b.Solve(rhs, x)
	require.True(t, ok)
	check := make([]float64, 2)
	b.MulVecTo(x, check)
	assert.InDelta(t, rhs[0], check[0], 1e-9)
	assert.InDelta(t, rhs[1], check[1], 1e-9)
}

func TestBlock_InvertSingular(t *testing.T) {
	b := NewBlock(2)
	b.Set(0, 0, 1)
	b.Set(0, 1, 2)
	b.Set(1, 0, 2)
	b.Set(1, 1, 4) // row 2 = 2*row 1, singular
	inv := NewBlock(2)
	assert.False(t, b.Invert(inv))
}

func TestBlock_View(t *testing.T) {
	buf := make([]float64, 4)
	b := View(2, buf)
	b.Set(0, 1, 9)
	assert.Equal(t, 9.0, buf[1])
}
