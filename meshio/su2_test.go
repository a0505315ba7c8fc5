package meshio

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ranscfd/types"
)

const twoTriSU2 = `%
% two right triangles filling a unit square
%
NDIME= 2
NELEM= 2
5 0 1 2 0
5 1 3 2 1
NPOIN= 4
0.0 0.0 0
1.0 0.0 1
0.0 1.0 2
1.0 1.0 3
NMARK= 1
MARKER_TAG= farfield
MARKER_ELEMS= 4
3 0 1
3 0 2
3 1 3
3 3 2
`

func TestReadSU2_ParsesElementsPointsAndMarkers(t *testing.T) {
	raw, err := ReadSU2(bufio.NewReader(strings.NewReader(twoTriSU2)))
	require.NoError(t, err)

	assert.Equal(t, 2, raw.NDim)
	require.Len(t, raw.Points, 4)
	assert.Equal(t, []float64{1.0, 0.0}, raw.Points[1])

	require.Len(t, raw.Elems, 2)
	assert.Equal(t, types.Triangle, raw.Elems[0].Topology)
	assert.Equal(t, []int{0, 1, 2}, raw.Elems[0].Vertices)

	require.Len(t, raw.BFaces, 4)
	for _, bf := range raw.BFaces {
		assert.Equal(t, "farfield", bf.Marker)
		assert.Len(t, bf.Vertices, 2)
	}
}

func TestReadSU2_RejectsNon2D(t *testing.T) {
	_, err := ReadSU2(bufio.NewReader(strings.NewReader("NDIME= 3\n")))
	assert.Error(t, err)
}

func TestReadSU2_RejectsMalformedHeader(t *testing.T) {
	_, err := ReadSU2(bufio.NewReader(strings.NewReader("NOTAKEY= 2\n")))
	assert.Error(t, err)
}

func TestReadSU2_RejectsUnsupportedElementType(t *testing.T) {
	doc := `NDIME= 2
NELEM= 1
12 0 1 2 3 4 5 6 7 0
NPOIN= 1
0.0 0.0 0
NMARK= 0
`
	_, err := ReadSU2(bufio.NewReader(strings.NewReader(doc)))
	assert.Error(t, err)
}
