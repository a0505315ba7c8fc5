// Package restart implements the persisted-state collaborator of
// spec.md §6: a versioned binary snapshot of the mean-flow (and, if
// active, turbulence) state that a run can resume from. No third-party
// binary-codec library appears anywhere in the retrieval pack for this
// concern, so encoding/binary is used directly (see DESIGN.md).
package restart

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/notargets/ranscfd/ranserr"
	"github.com/notargets/ranscfd/variables"
)

const (
	magic         = "RCFD"
	formatVersion = uint16(1)
)

// Snapshot is the full restart record: enough to resume a run bit-for-bit
// (state, CFL, iteration count) and identify which run it came from.
type Snapshot struct {
	NDim      int
	NVar      int
	CellCount int
	Iteration int
	CFL       float64
	RunID     uuid.UUID

	U []float64 // mean-flow conservative state, CellCount*NVar

	TurbModel variables.TurbulenceModel
	TurbNEq   int
	TurbPhi   []float64 // CellCount*TurbNEq, empty if TurbModel == TurbNone
}

// NewRunID mints a fresh run identifier for a snapshot written at the
// start of a run (subsequent snapshots in the same run should reuse it).
func NewRunID() uuid.UUID { return uuid.New() }

// Write serializes s to w: magic, version, endian marker, then the fixed
// header fields, then the raw state doubles.
func Write(w io.Writer, s Snapshot) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	const endianMarker = byte(1) // 1 = little-endian
	if err := bw.WriteByte(endianMarker); err != nil {
		return err
	}

	header := []int64{
		int64(s.NDim), int64(s.NVar), int64(s.CellCount), int64(s.Iteration),
		int64(s.TurbModel), int64(s.TurbNEq),
	}
	for _, h := range header {
		if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
			return err
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, s.CFL); err != nil {
		return err
	}
	runIDBytes, err := s.RunID.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := bw.Write(runIDBytes); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, s.U); err != nil {
		return err
	}
	if len(s.TurbPhi) > 0 {
		if err := binary.Write(bw, binary.LittleEndian, s.TurbPhi); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read deserializes a Snapshot from r, validating the magic and version
// before trusting the rest of the stream.
func Read(r io.Reader) (Snapshot, error) {
	var s Snapshot
	magicBuf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, magicBuf); err != nil {
		return s, fmt.Errorf("%w: reading restart magic: %v", ranserr.ErrInputInvalid, err)
	}
	if string(magicBuf) != magic {
		return s, fmt.Errorf("%w: not a ranscfd restart file", ranserr.ErrInputInvalid)
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return s, fmt.Errorf("%w: reading restart version: %v", ranserr.ErrInputInvalid, err)
	}
	if version != formatVersion {
		return s, fmt.Errorf("%w: unsupported restart version %d", ranserr.ErrInputInvalid, version)
	}
	endianBuf := make([]byte, 1)
	if _, err := io.ReadFull(r, endianBuf); err != nil {
		return s, fmt.Errorf("%w: reading endian marker: %v", ranserr.ErrInputInvalid, err)
	}
	if endianBuf[0] != 1 {
		return s, fmt.Errorf("%w: unsupported restart endianness", ranserr.ErrInputInvalid)
	}

	header := make([]int64, 6)
	for i := range header {
		if err := binary.Read(r, binary.LittleEndian, &header[i]); err != nil {
			return s, fmt.Errorf("%w: reading restart header: %v", ranserr.ErrInputInvalid, err)
		}
	}
	s.NDim = int(header[0])
	s.NVar = int(header[1])
	s.CellCount = int(header[2])
	s.Iteration = int(header[3])
	s.TurbModel = variables.TurbulenceModel(header[4])
	s.TurbNEq = int(header[5])

	if err := binary.Read(r, binary.LittleEndian, &s.CFL); err != nil {
		return s, fmt.Errorf("%w: reading CFL: %v", ranserr.ErrInputInvalid, err)
	}
	runIDBytes := make([]byte, 16)
	if _, err := io.ReadFull(r, runIDBytes); err != nil {
		return s, fmt.Errorf("%w: reading run id: %v", ranserr.ErrInputInvalid, err)
	}
	if err := s.RunID.UnmarshalBinary(runIDBytes); err != nil {
		return s, fmt.Errorf("%w: parsing run id: %v", ranserr.ErrInputInvalid, err)
	}

	s.U = make([]float64, s.CellCount*s.NVar)
	if err := binary.Read(r, binary.LittleEndian, s.U); err != nil {
		return s, fmt.Errorf("%w: reading mean-flow state: %v", ranserr.ErrInputInvalid, err)
	}
	if s.TurbNEq > 0 {
		s.TurbPhi = make([]float64, s.CellCount*s.TurbNEq)
		if err := binary.Read(r, binary.LittleEndian, s.TurbPhi); err != nil {
			return s, fmt.Errorf("%w: reading turbulence state: %v", ranserr.ErrInputInvalid, err)
		}
	}
	return s, nil
}

// FromMeanFlow builds a Snapshot from live solver state, ready for Write.
func FromMeanFlow(mf *variables.MeanFlow, turb *variables.Turbulence, iteration int, cfl float64, runID uuid.UUID) Snapshot {
	s := Snapshot{
		NDim: mf.NDim, NVar: mf.NVar, CellCount: mf.N,
		Iteration: iteration, CFL: cfl, RunID: runID,
		U: append([]float64(nil), mf.U...),
	}
	if turb != nil {
		s.TurbModel = turb.Model
		s.TurbNEq = turb.NEq
		s.TurbPhi = append([]float64(nil), turb.Phi...)
	}
	return s
}

// Apply copies a Snapshot's state back into live solver structures. The
// caller must have already allocated mf/turb at matching dimensions.
func Apply(s Snapshot, mf *variables.MeanFlow, turb *variables.Turbulence) error {
	if s.CellCount != mf.N || s.NVar != mf.NVar {
		return fmt.Errorf("%w: restart dimensions do not match mesh", ranserr.ErrInputInvalid)
	}
	copy(mf.U, s.U)
	if turb != nil && s.TurbNEq == turb.NEq {
		copy(turb.Phi, s.TurbPhi)
	}
	return nil
}
