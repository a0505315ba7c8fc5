package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBCKind(t *testing.T) {
	cases := []struct {
		tag  string
		want BCKind
	}{
		{"wall_heatflux", BCWallHeatflux},
		{"wall_isothermal", BCWallIsothermal},
		{"farfield", BCFarfield},
		{"symmetry", BCSymmetry},
		{"inlet_total", BCInletTotal},
		{"outlet_pressure", BCOutletPressure},
	}
	for _, c := range cases {
		kind, ok := ParseBCKind(c.tag)
		assert.True(t, ok, c.tag)
		assert.Equal(t, c.want, kind)
		assert.Equal(t, c.tag, kind.String())
	}

	_, ok := ParseBCKind("not_a_marker")
	assert.False(t, ok)
}

func TestBCKind_IsWall(t *testing.T) {
	assert.True(t, BCWallHeatflux.IsWall())
	assert.True(t, BCWallIsothermal.IsWall())
	assert.False(t, BCFarfield.IsWall())
	assert.False(t, BCSymmetry.IsWall())
	assert.False(t, BCInletTotal.IsWall())
	assert.False(t, BCOutletPressure.IsWall())
}

func TestBCKind_StringUnknown(t *testing.T) {
	assert.Equal(t, "unknown", BCKind(200).String())
}
