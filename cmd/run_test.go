package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/ranscfd/ranserr"
)

func TestClassifyExit(t *testing.T) {
	assert.Equal(t, exitInputError, classifyExit(ranserr.ErrInputInvalid))
	assert.Equal(t, exitInputError, classifyExit(ranserr.ErrGeometryDegenerate))
	assert.Equal(t, exitDiverged, classifyExit(ranserr.ErrDiverged))
	assert.Equal(t, exitIOError, classifyExit(ranserr.ErrLinearSolverDiverged))
}
