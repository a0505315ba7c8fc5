// Package integration drives the nonlinear iteration to convergence per
// spec.md §4.7: CFL ramping and cutback, admissibility/stagnation
// recovery, loose mean-flow/turbulence coupling, and dual-time stepping
// for unsteady cases. Grounded on Notargets-gocfd's Euler.Solve driver
// loop (model_problems/Euler2D/euler.go), generalized from a fixed-dt RK
// marcher to CFL-scheduled pseudo-time iteration with an implicit inner
// solve.
package integration

import (
	"errors"
	"math"

	"github.com/notargets/ranscfd/config"
	"github.com/notargets/ranscfd/monitor"
	"github.com/notargets/ranscfd/ranserr"
	"github.com/notargets/ranscfd/solver"
)

// Report is what Driver hands the monitor sink after every nonlinear
// iteration.
type Report struct {
	Iteration int
	ResNorm   []float64
	CFL       float64
	CL, CD, CM float64
}

// Driver owns one MeanFlow (and, if configured, a coupled Turbulence
// solver) and runs it to convergence or a hard iteration cap, per
// spec.md §4.7's steady pseudo-time loop.
type Driver struct {
	Mean  *solver.MeanFlow
	Turb  *solver.Turbulence
	Cfg   config.RunConfig
	Sink  monitor.Sink
}

// NewDriver wires a MeanFlow to its optional Turbulence solver's
// eddy-viscosity coupling, the loose-coupling contract of spec.md §4.5.
func NewDriver(mean *solver.MeanFlow, turb *solver.Turbulence, cfg config.RunConfig, sink monitor.Sink) *Driver {
	if turb != nil {
		mean.SetTurbulenceCoupling(turb.MuTAt)
	}
	return &Driver{Mean: mean, Turb: turb, Cfg: cfg, Sink: sink}
}

// RunSteady advances the pseudo-time loop until the residual falls below
// cfg.ResidualTarget or cfg.MaxIterations is reached, per spec.md §4.7.
// It returns the iteration count reached and the terminal residual. The
// error is ErrDiverged when CFL cutback reaches its floor, the error of a
// mean-flow iteration that is not a recoverable cutback signal, or the
// error of a turbulence iteration; otherwise it is nil.
func (d *Driver) RunSteady() (int, []float64, error) {
	cfl := d.Mean.CFL
	var lastRes []float64

	for it := 1; it <= d.Cfg.MaxIterations; it++ {
		res, err := d.Mean.Iterate()
		if err != nil {
			if recoverableCutback(err) {
				cfl = math.Max(cfl*d.Cfg.CFLCutback, d.Cfg.CFLFloor)
				d.Mean.CFL = cfl
				if cfl <= d.Cfg.CFLFloor {
					return it, res.ResidualNorm, ranserr.ErrDiverged
				}
				continue
			}
			return it, res.ResidualNorm, err
		}
		if hasNaN(res.ResidualNorm) {
			cfl = math.Max(cfl*d.Cfg.CFLCutback, d.Cfg.CFLFloor)
			d.Mean.CFL = cfl
			if cfl <= d.Cfg.CFLFloor {
				return it, res.ResidualNorm, ranserr.ErrDiverged
			}
			continue
		}
		lastRes = res.ResidualNorm

		if d.Turb != nil {
			if _, terr := d.Turb.Iterate(); terr != nil {
				return it, lastRes, terr
			}
		}

		cfl = math.Min(cfl*d.Cfg.CFLGrowth, d.Cfg.CFLMax)
		d.Mean.CFL = cfl

		if d.Sink != nil {
			aero := solver.ForceCoefficients(d.Mean.Mesh, d.Mean.State, d.Mean.Gas, d.Mean.Fs, d.Cfg)
			d.Sink.Report(it, lastRes, cfl, aero.CL, aero.CD, aero.CM)
		}

		if converged(lastRes, d.Cfg.ResidualTarget) {
			return it, lastRes, nil
		}
	}
	return d.Cfg.MaxIterations, lastRes, nil
}

// RunUnsteady wraps RunSteady in a BDF2 dual-time outer loop: each
// physical time step reruns the pseudo-time inner iteration (capped at
// cfg.InnerIterations) against the BDF2 source term, then shifts the time
// levels, per spec.md §4.7's dual-time-stepping requirement. Un/Unm1 are
// seeded from the current state (the initial condition, or a restart's
// state if one was loaded before the driver was built) so the first
// physical step's BDF2 history is well-defined.
func (d *Driver) RunUnsteady() error {
	d.Mean.State.InitTimeLevels()
	inner := d.Cfg
	inner.MaxIterations = d.Cfg.InnerIterations
	for step := 0; step < d.Cfg.PhysicalSteps; step++ {
		saved := d.Cfg
		d.Cfg = inner
		_, _, err := d.RunSteady()
		d.Cfg = saved
		if err != nil {
			return err
		}
		d.Mean.State.ShiftTimeLevels()
		if d.Turb != nil {
			d.Turb.State.SaveOld()
		}
	}
	return nil
}

func recoverableCutback(err error) bool {
	return errors.Is(err, ranserr.ErrNumericNonAdmissible) || errors.Is(err, ranserr.ErrLinearSolverDiverged)
}

func converged(res []float64, target float64) bool {
	if len(res) == 0 {
		return false
	}
	var norm float64
	for _, r := range res {
		norm += r * r
	}
	return math.Sqrt(norm) < target
}

// hasNaN reports whether any residual component went NaN, spec.md §4.7's
// divergence trigger alongside a failed admissibility check or a stalled
// linear solve: a NaN residual makes converged always return false, which
// without this check would run the loop to MaxIterations instead of
// cutting back CFL and retrying like the other divergence signals.
func hasNaN(res []float64) bool {
	for _, r := range res {
		if math.IsNaN(r) {
			return true
		}
	}
	return false
}
