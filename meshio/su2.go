// Package meshio implements the external Mesh Loader collaborator
// referenced by geometry.RawMesh's doc comment: it reads a mesh file
// format and produces a geometry.RawMesh, validated but not yet
// dual-processed. Grounded on Notargets-gocfd's readfiles.ReadSU2
// (readfiles/readSU2Grid.go), generalized from a triangle-only, panic-on-
// error 2D reader to a 2D tri/quad reader that returns errors, per
// spec.md §7's requirement that malformed input never panics.
package meshio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/ranserr"
	"github.com/notargets/ranscfd/types"
)

// su2ElementType mirrors the SU2 mesh format's element-type codes
// (https://su2code.github.io/docs_v7/Mesh-File/).
type su2ElementType int

const (
	su2Line          su2ElementType = 3
	su2Triangle      su2ElementType = 5
	su2Quadrilateral su2ElementType = 9
)

// ReadSU2File opens filename and parses it as a 2D SU2 mesh.
func ReadSU2File(filename string) (geometry.RawMesh, error) {
	f, err := os.Open(filename)
	if err != nil {
		return geometry.RawMesh{}, fmt.Errorf("%w: opening mesh file: %v", ranserr.ErrInputInvalid, err)
	}
	defer f.Close()
	return ReadSU2(bufio.NewReader(f))
}

// ReadSU2 parses the SU2 ASCII mesh format from r: NDIME, NELEM/element
// list, NPOIN/point list, and NMARK marker blocks of boundary line
// elements. Only 2D (triangle/quadrilateral) meshes are supported.
func ReadSU2(r *bufio.Reader) (geometry.RawMesh, error) {
	p := &su2Parser{r: r}

	ndim, err := p.readKeyedInt("NDIME")
	if err != nil {
		return geometry.RawMesh{}, err
	}
	if ndim != 2 {
		return geometry.RawMesh{}, fmt.Errorf("%w: meshio only supports 2D SU2 meshes, got NDIME=%d", ranserr.ErrInputInvalid, ndim)
	}

	nElem, err := p.readKeyedInt("NELEM")
	if err != nil {
		return geometry.RawMesh{}, err
	}
	elems := make([]geometry.RawElement, nElem)
	for k := 0; k < nElem; k++ {
		elems[k], err = p.readElement()
		if err != nil {
			return geometry.RawMesh{}, err
		}
	}

	nPoin, err := p.readKeyedInt("NPOIN")
	if err != nil {
		return geometry.RawMesh{}, err
	}
	points := make([][]float64, nPoin)
	for i := 0; i < nPoin; i++ {
		points[i], err = p.readPoint()
		if err != nil {
			return geometry.RawMesh{}, err
		}
	}

	nMark, err := p.readKeyedInt("NMARK")
	if err != nil {
		return geometry.RawMesh{}, err
	}
	var bfaces []geometry.RawBoundaryFace
	for m := 0; m < nMark; m++ {
		label, err := p.readKeyedString("MARKER_TAG")
		if err != nil {
			return geometry.RawMesh{}, err
		}
		nElemMark, err := p.readKeyedInt("MARKER_ELEMS")
		if err != nil {
			return geometry.RawMesh{}, err
		}
		for i := 0; i < nElemMark; i++ {
			bf, err := p.readBoundaryFace(label)
			if err != nil {
				return geometry.RawMesh{}, err
			}
			bfaces = append(bfaces, bf)
		}
	}

	return geometry.RawMesh{NDim: 2, Points: points, Elems: elems, BFaces: bfaces}, nil
}

type su2Parser struct {
	r *bufio.Reader
}

func (p *su2Parser) readLine() (string, error) {
	for {
		line, err := p.r.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("%w: unexpected end of mesh file: %v", ranserr.ErrInputInvalid, err)
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			if err != nil {
				return "", fmt.Errorf("%w: unexpected end of mesh file", ranserr.ErrInputInvalid)
			}
			continue
		}
		return line, nil
	}
}

func (p *su2Parser) readKeyedInt(key string) (int, error) {
	tok, err := p.readKeyedToken(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %s value %q is not an integer", ranserr.ErrInputInvalid, key, tok)
	}
	return n, nil
}

func (p *su2Parser) readKeyedString(key string) (string, error) {
	return p.readKeyedToken(key)
}

func (p *su2Parser) readKeyedToken(key string) (string, error) {
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	idx := strings.Index(line, "=")
	if idx < 0 || !strings.EqualFold(strings.TrimSpace(line[:idx]), key) {
		return "", fmt.Errorf("%w: expected %s=..., got %q", ranserr.ErrInputInvalid, key, line)
	}
	return strings.TrimSpace(line[idx+1:]), nil
}

func (p *su2Parser) readElement() (geometry.RawElement, error) {
	line, err := p.readLine()
	if err != nil {
		return geometry.RawElement{}, err
	}
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return geometry.RawElement{}, fmt.Errorf("%w: malformed element line %q", ranserr.ErrInputInvalid, line)
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return geometry.RawElement{}, fmt.Errorf("%w: malformed element type in %q", ranserr.ErrInputInvalid, line)
	}
	var topo types.ElementTopology
	var nVert int
	switch su2ElementType(code) {
	case su2Triangle:
		topo, nVert = types.Triangle, 3
	case su2Quadrilateral:
		topo, nVert = types.Quadrilateral, 4
	default:
		return geometry.RawElement{}, fmt.Errorf("%w: unsupported SU2 element type %d", ranserr.ErrInputInvalid, code)
	}
	if len(fields) < 1+nVert {
		return geometry.RawElement{}, fmt.Errorf("%w: element line %q too short for %d vertices", ranserr.ErrInputInvalid, line, nVert)
	}
	verts := make([]int, nVert)
	for i := 0; i < nVert; i++ {
		v, err := strconv.Atoi(fields[1+i])
		if err != nil {
			return geometry.RawElement{}, fmt.Errorf("%w: malformed vertex index in %q", ranserr.ErrInputInvalid, line)
		}
		verts[i] = v
	}
	return geometry.RawElement{Topology: topo, Vertices: verts}, nil
}

func (p *su2Parser) readPoint() ([]float64, error) {
	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: malformed point line %q", ranserr.ErrInputInvalid, line)
	}
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: malformed coordinates in %q", ranserr.ErrInputInvalid, line)
	}
	return []float64{x, y}, nil
}

func (p *su2Parser) readBoundaryFace(marker string) (geometry.RawBoundaryFace, error) {
	line, err := p.readLine()
	if err != nil {
		return geometry.RawBoundaryFace{}, err
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return geometry.RawBoundaryFace{}, fmt.Errorf("%w: malformed boundary line %q", ranserr.ErrInputInvalid, line)
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil || su2ElementType(code) != su2Line {
		return geometry.RawBoundaryFace{}, fmt.Errorf("%w: boundary elements must be lines in 2D, got %q", ranserr.ErrInputInvalid, line)
	}
	v1, err1 := strconv.Atoi(fields[1])
	v2, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil {
		return geometry.RawBoundaryFace{}, fmt.Errorf("%w: malformed boundary vertices in %q", ranserr.ErrInputInvalid, line)
	}
	return geometry.RawBoundaryFace{Marker: marker, Vertices: []int{v1, v2}}, nil
}
