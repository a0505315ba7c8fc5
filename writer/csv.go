// Package writer implements the field-output collaborator contract of
// spec.md §6. No Tecplot/ParaView format is implemented (explicitly out
// of scope); CSVWriter is the one concrete reference implementation used
// by tests to prove the contract is exercised, grounded on the same
// encoding/csv choice monitor.CSVSink uses (no pack dependency provides
// structured field-file writing).
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/variables"
)

// FieldWriter is the external collaborator contract of spec.md §6: dump
// the mesh geometry and the current mean-flow primitive state to a
// stream.
type FieldWriter interface {
	WriteFields(w io.Writer, mesh *geometry.Mesh, mf *variables.MeanFlow) error
}

// CSVWriter writes one row per cell: coordinates, then the primitive
// vector in the order variables.PrimIndex defines it.
type CSVWriter struct{}

func (CSVWriter) WriteFields(w io.Writer, mesh *geometry.Mesh, mf *variables.MeanFlow) error {
	cw := csv.NewWriter(w)
	idx := mf.Idx
	header := make([]string, 0, mesh.NDim+mf.NVP)
	for d := 0; d < mesh.NDim; d++ {
		header = append(header, fmt.Sprintf("x%d", d))
	}
	header = append(header, "T")
	for d := 0; d < mesh.NDim; d++ {
		header = append(header, fmt.Sprintf("u%d", d))
	}
	header = append(header, "p", "rho", "h", "a", "mu", "muT")
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for c := 0; c < mesh.CellCount(); c++ {
		p := mesh.Point(c)
		v := mf.Prim(c)
		col := 0
		for d := 0; d < mesh.NDim; d++ {
			row[col] = strconv.FormatFloat(p[d], 'g', -1, 64)
			col++
		}
		row[col] = strconv.FormatFloat(v[idx.Temp], 'g', -1, 64)
		col++
		for d := 0; d < mesh.NDim; d++ {
			row[col] = strconv.FormatFloat(v[idx.VelX+d], 'g', -1, 64)
			col++
		}
		row[col] = strconv.FormatFloat(v[idx.Press], 'g', -1, 64)
		col++
		row[col] = strconv.FormatFloat(v[idx.Rho], 'g', -1, 64)
		col++
		row[col] = strconv.FormatFloat(v[idx.Enth], 'g', -1, 64)
		col++
		row[col] = strconv.FormatFloat(v[idx.Sound], 'g', -1, 64)
		col++
		row[col] = strconv.FormatFloat(v[idx.MuLam], 'g', -1, 64)
		col++
		row[col] = strconv.FormatFloat(v[idx.MuTurb], 'g', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
