// Package monitor implements the progress-reporting collaborator of
// spec.md §6: a small Sink contract plus two concrete implementations,
// grounded on Notargets-gocfd's Euler.PrintUpdate/PrintFinal fixed-width
// Printf tables (model_problems/Euler2D/euler.go).
package monitor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Sink receives one report per completed nonlinear iteration: the
// per-variable residual norm, the current CFL, and the lift/drag/moment
// coefficients integrated over the wall boundary (spec.md §1's "flow-field
// outputs and aerodynamic force/moment coefficients"; zero on meshes with
// no wall marker or before the first report).
type Sink interface {
	Report(iter int, resNorm []float64, cfl, cl, cd, cm float64)
}

// StdoutSink prints a fixed-width table, one row per iteration, in the
// same style as the teacher's PrintUpdate: an iteration counter, the CFL,
// and the per-variable residual norm columns.
type StdoutSink struct {
	w        io.Writer
	printed  bool
	interval int
}

// NewStdoutSink returns a StdoutSink that prints every interval
// iterations (interval <= 1 prints every iteration).
func NewStdoutSink(w io.Writer, interval int) *StdoutSink {
	if interval < 1 {
		interval = 1
	}
	return &StdoutSink{w: w, interval: interval}
}

func (s *StdoutSink) Report(iter int, resNorm []float64, cfl, cl, cd, cm float64) {
	if iter%s.interval != 0 && iter != 1 {
		return
	}
	if !s.printed {
		fmt.Fprintf(s.w, "%8s %10s", "iter", "CFL")
		for k := range resNorm {
			fmt.Fprintf(s.w, " %12s", fmt.Sprintf("res[%d]", k))
		}
		fmt.Fprintf(s.w, " %10s %10s %10s", "CL", "CD", "CM")
		fmt.Fprintln(s.w)
		s.printed = true
	}
	fmt.Fprintf(s.w, "%8d %10.4g", iter, cfl)
	for _, r := range resNorm {
		fmt.Fprintf(s.w, " %12.5e", r)
	}
	fmt.Fprintf(s.w, " %10.5f %10.5f %10.5f", cl, cd, cm)
	fmt.Fprintln(s.w)
}

// CSVSink writes one row per iteration to a csv.Writer: iteration, CFL,
// then one column per residual component. This is a small addition
// beyond the teacher's stdout-only reporting, kept on encoding/csv since
// no pack dependency provides CSV writing (see DESIGN.md).
type CSVSink struct {
	w      *csv.Writer
	header bool
}

// NewCSVSink wraps an io.Writer in a csv.Writer, flushing after every row
// so a tailing process sees progress without waiting for Close.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (s *CSVSink) Report(iter int, resNorm []float64, cfl, cl, cd, cm float64) {
	if !s.header {
		row := []string{"iteration", "cfl"}
		for k := range resNorm {
			row = append(row, fmt.Sprintf("res_%d", k))
		}
		row = append(row, "cl", "cd", "cm")
		s.w.Write(row)
		s.header = true
	}
	row := make([]string, 0, len(resNorm)+5)
	row = append(row, strconv.Itoa(iter), strconv.FormatFloat(cfl, 'g', -1, 64))
	for _, r := range resNorm {
		row = append(row, strconv.FormatFloat(r, 'e', -1, 64))
	}
	row = append(row,
		strconv.FormatFloat(cl, 'g', -1, 64),
		strconv.FormatFloat(cd, 'g', -1, 64),
		strconv.FormatFloat(cm, 'g', -1, 64),
	)
	s.w.Write(row)
	s.w.Flush()
}
