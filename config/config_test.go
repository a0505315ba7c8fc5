package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ranscfd/ranserr"
)

func TestDefault_IsValidExceptForMeshFile(t *testing.T) {
	rc := Default()
	err := rc.Validate()
	require.Error(t, err) // mesh_file is required and Default leaves it empty
	assert.ErrorIs(t, err, ranserr.ErrInputInvalid)

	rc.MeshFile = "case.su2"
	assert.NoError(t, rc.Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	yamlDoc := []byte(`
mesh_file: naca0012.su2
solver: navier_stokes
turbulence: sa
cfl_init: 2.5
boundary_conditions:
  farfield:
    kind: farfield
    parameters:
      mach: 0.3
`)
	rc, err := Load(yamlDoc)
	require.NoError(t, err)

	assert.Equal(t, "naca0012.su2", rc.MeshFile)
	assert.Equal(t, "navier_stokes", rc.Solver)
	assert.Equal(t, "sa", rc.Turbulence)
	assert.InDelta(t, 2.5, rc.CFLInit, 1e-12)
	// Fields not present in the YAML keep Default()'s values.
	assert.Equal(t, "roe", rc.Convective)
	assert.Equal(t, 1.4, rc.Gamma)

	bc, ok := rc.BoundaryConditions["farfield"]
	require.True(t, ok)
	assert.Equal(t, "farfield", bc.Kind)
	assert.InDelta(t, 0.3, bc.Parameters["mach"], 1e-12)
}

func TestLoad_RejectsUnrecognizedEnum(t *testing.T) {
	_, err := Load([]byte("mesh_file: a.su2\nsolver: quantum\n"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ranserr.ErrInputInvalid))
}

func TestValidate_RejectsBadCFLSchedule(t *testing.T) {
	rc := Default()
	rc.MeshFile = "a.su2"
	rc.CFLMax = 0.5
	rc.CFLInit = 1.0
	assert.Error(t, rc.Validate())
}

func TestValidate_RejectsBadDimension(t *testing.T) {
	rc := Default()
	rc.MeshFile = "a.su2"
	rc.NDim = 1
	assert.Error(t, rc.Validate())
}

func TestValidate_RejectsMarkerWithoutKind(t *testing.T) {
	rc := Default()
	rc.MeshFile = "a.su2"
	rc.BoundaryConditions = map[string]BCSpec{"wing": {}}
	assert.Error(t, rc.Validate())
}

func TestValidate_RejectsDualTimeWithoutPhysicalDT(t *testing.T) {
	rc := Default()
	rc.MeshFile = "a.su2"
	rc.TimeIntegration = "dual_time_bdf2"
	rc.PhysicalDT = 0
	err := rc.Validate()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ranserr.ErrInputInvalid))

	rc.PhysicalDT = 1e-3
	assert.NoError(t, rc.Validate())
}

func TestMarkerKinds_SortedDeterministic(t *testing.T) {
	rc := Default()
	rc.BoundaryConditions = map[string]BCSpec{
		"zeta":  {Kind: "farfield"},
		"alpha": {Kind: "symmetry"},
	}
	assert.Equal(t, []string{"alpha", "zeta"}, rc.MarkerKinds())
}
