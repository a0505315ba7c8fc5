// Package ranserr defines the behavioral error taxonomy of spec.md §7:
// each sentinel names how the caller must respond, not a Go type name.
package ranserr

import "errors"

var (
	// ErrInputInvalid: mesh topology or configuration keys are malformed.
	// Abort before any iteration begins.
	ErrInputInvalid = errors.New("input invalid")

	// ErrGeometryDegenerate: a dual volume is non-positive, a normal is the
	// zero vector, or a marker references a nonexistent tag. Abort.
	ErrGeometryDegenerate = errors.New("geometry degenerate")

	// ErrNumericNonAdmissible: an update produced negative density or
	// pressure. The caller should cut back CFL and retry the iteration,
	// aborting once the CFL reaches its floor.
	ErrNumericNonAdmissible = errors.New("state not admissible")

	// ErrLinearSolverDiverged: GMRES/BiCGStab stagnated or blew up. Cut back
	// CFL and retry the nonlinear iteration.
	ErrLinearSolverDiverged = errors.New("linear solver diverged")

	// ErrDiverged: CFL collapsed below its floor, or a residual went NaN.
	// Terminate the run.
	ErrDiverged = errors.New("run diverged")
)

// Is reports whether err ultimately wraps target, delegating to errors.Is.
// Present to keep call sites from importing both errors and ranserr.
func Is(err, target error) bool { return errors.Is(err, target) }
