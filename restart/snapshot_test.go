package restart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ranscfd/variables"
)

func TestWriteRead_RoundTrip_MeanFlowOnly(t *testing.T) {
	mf := variables.NewMeanFlow(variables.DefaultGas, 2, 3)
	for i := range mf.U {
		mf.U[i] = float64(i) * 1.5
	}
	runID := NewRunID()
	snap := FromMeanFlow(mf, nil, 42, 12.5, runID)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))

	got, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, snap.NDim, got.NDim)
	assert.Equal(t, snap.NVar, got.NVar)
	assert.Equal(t, snap.CellCount, got.CellCount)
	assert.Equal(t, snap.Iteration, got.Iteration)
	assert.InDelta(t, snap.CFL, got.CFL, 1e-12)
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, snap.U, got.U)
	assert.Empty(t, got.TurbPhi)
}

func TestWriteRead_RoundTrip_WithTurbulence(t *testing.T) {
	mf := variables.NewMeanFlow(variables.DefaultGas, 2, 4)
	turb := variables.NewTurbulence(variables.TurbSA, 2, 4)
	for i := range turb.Phi {
		turb.Phi[i] = float64(i) + 0.25
	}
	snap := FromMeanFlow(mf, turb, 7, 1.0, NewRunID())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))
	got, err := Read(&buf)
	require.NoError(t, err)

	require.Equal(t, variables.TurbSA, got.TurbModel)
	assert.Equal(t, turb.Phi, got.TurbPhi)
}

func TestRead_RejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("XXXX")
	_, err := Read(&buf)
	assert.Error(t, err)
}

func TestApply_RejectsMismatchedDimensions(t *testing.T) {
	mf := variables.NewMeanFlow(variables.DefaultGas, 2, 4)
	snap := FromMeanFlow(mf, nil, 0, 1.0, NewRunID())

	other := variables.NewMeanFlow(variables.DefaultGas, 2, 5)
	err := Apply(snap, other, nil)
	assert.Error(t, err)
}

func TestApply_CopiesStateIntoTarget(t *testing.T) {
	src := variables.NewMeanFlow(variables.DefaultGas, 2, 3)
	for i := range src.U {
		src.U[i] = float64(i + 1)
	}
	snap := FromMeanFlow(src, nil, 0, 1.0, NewRunID())

	dst := variables.NewMeanFlow(variables.DefaultGas, 2, 3)
	require.NoError(t, Apply(snap, dst, nil))
	assert.Equal(t, src.U, dst.U)
}
