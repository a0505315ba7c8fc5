// Package config parses the run configuration of spec.md §6: a keyed bag
// of typed options recognized by the numerical core, grounded on
// Notargets-gocfd's InputParameters.InputParameters2D (a flat YAML struct
// parsed with ghodss/yaml) generalized to the full RANS key set. RunConfig
// is read from YAML only; no environment or flag overlay is applied to it.
package config

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/ranscfd/ranserr"
)

// BCSpec is one marker's boundary-condition assignment: a kind tag (must
// parse via types.ParseBCKind) plus a bag of named numeric parameters
// (e.g. T_wall, p_total, T_total, p_static).
type BCSpec struct {
	Kind       string             `json:"kind"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
}

// RunConfig is the full recognized key set of spec.md §6.
type RunConfig struct {
	NDim int `json:"nDim"`

	Solver      string `json:"solver"`      // euler | navier_stokes | rans
	Turbulence  string `json:"turbulence"`  // none | sa | sst
	Convective  string `json:"convective_scheme"`
	MUSCL       bool   `json:"muscl"`
	Limiter     string `json:"limiter"`
	LimiterCoef float64 `json:"limiter_coefficient"`
	GradientMethod string `json:"gradient_method"` // green_gauss | least_squares

	TimeIntegration string `json:"time_integration"` // explicit_rk | implicit_euler | dual_time_bdf2
	RKStages        int    `json:"rk_stages"`

	CFLInit    float64 `json:"cfl_init"`
	CFLMax     float64 `json:"cfl_max"`
	CFLGrowth  float64 `json:"cfl_growth"`
	CFLCutback float64 `json:"cfl_cutback"`
	CFLFloor   float64 `json:"cfl_floor"`

	LinearSolver        string  `json:"linear_solver"`        // gmres | bicgstab
	LinearPreconditioner string `json:"linear_preconditioner"` // jacobi | ilu0 | sgs
	LinearTol           float64 `json:"linear_tol"`
	LinearMaxIter       int     `json:"linear_max_iter"`
	GMRESRestart        int     `json:"gmres_restart"`

	EntropyFixEps float64 `json:"entropy_fix_eps"`
	JSTK2         float64 `json:"jst_k2"`
	JSTK4         float64 `json:"jst_k4"`
	LowMachPrecond bool   `json:"low_mach_preconditioner"`
	LowMachMref    float64 `json:"low_mach_mref"`

	FreestreamMach        float64 `json:"freestream_mach"`
	FreestreamTemperature float64 `json:"freestream_temperature"`
	FreestreamPressure    float64 `json:"freestream_pressure"`
	AoA                   float64 `json:"aoa"`
	Sideslip              float64 `json:"sideslip"`
	Gamma                 float64 `json:"gamma"`
	GasConstant           float64 `json:"gas_constant"`
	PrandtlLaminar        float64 `json:"prandtl_laminar"`
	PrandtlTurbulent      float64 `json:"prandtl_turbulent"`
	Reynolds              float64 `json:"reynolds"`
	ReferenceLength       float64 `json:"reference_length"`
	ReferenceArea         float64 `json:"reference_area"`
	MomentRefX            float64 `json:"moment_ref_x"`
	MomentRefY            float64 `json:"moment_ref_y"`
	MomentRefZ            float64 `json:"moment_ref_z"`

	MaxIterations   int     `json:"max_iterations"`
	ResidualTarget  float64 `json:"residual_target"`
	PhysicalDT      float64 `json:"physical_dt"`       // dual-time outer step
	PhysicalSteps   int     `json:"physical_steps"`
	InnerIterations int     `json:"inner_iterations"` // dual-time pseudo-time inner cap

	BoundaryConditions map[string]BCSpec `json:"boundary_conditions"`

	MeshFile    string `json:"mesh_file"`
	OutputFile  string `json:"output_file"`
	RestartFile string `json:"restart_file,omitempty"`
}

// Default returns a RunConfig populated with the defaults implied by
// spec.md's data model (calorically perfect air, Roe+MUSCL+Venkat,
// implicit Euler, GMRES+ILU0), the same role InputParameters2D's zero
// value plays for the teacher's DG solver before YAML overlay.
func Default() RunConfig {
	return RunConfig{
		NDim:                 2,
		Solver:               "euler",
		Turbulence:           "none",
		Convective:           "roe",
		MUSCL:                true,
		Limiter:              "venkat",
		LimiterCoef:          5.0,
		GradientMethod:       "least_squares",
		TimeIntegration:      "implicit_euler",
		RKStages:             4,
		CFLInit:              1.0,
		CFLMax:               100.0,
		CFLGrowth:            1.2,
		CFLCutback:           0.5,
		CFLFloor:             1e-4,
		LinearSolver:         "gmres",
		LinearPreconditioner: "ilu0",
		LinearTol:            1e-2,
		LinearMaxIter:        100,
		GMRESRestart:         30,
		EntropyFixEps:        0.1,
		JSTK2:                0.5,
		JSTK4:                1.0 / 64.0,
		LowMachMref:          1.0,
		FreestreamMach:       0.3,
		FreestreamTemperature: 288.15,
		FreestreamPressure:   101325.0,
		Gamma:                1.4,
		GasConstant:          287.058,
		PrandtlLaminar:       0.72,
		PrandtlTurbulent:     0.9,
		Reynolds:             1e6,
		ReferenceLength:      1.0,
		ReferenceArea:        1.0,
		MaxIterations:        10000,
		ResidualTarget:       1e-8,
		PhysicalDT:           1e-3,
		PhysicalSteps:        1,
		InnerIterations:      50,
	}
}

// Load reads a YAML config file's raw bytes into a RunConfig seeded with
// Default(), the same "defaults then Unmarshal-overlay" flow the
// teacher's InputParameters2D.Parse expects its caller to drive.
func Load(data []byte) (RunConfig, error) {
	rc := Default()
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return rc, fmt.Errorf("%w: parsing config: %v", ranserr.ErrInputInvalid, err)
	}
	if err := rc.Validate(); err != nil {
		return rc, err
	}
	return rc, nil
}

var (
	validSolvers     = set("euler", "navier_stokes", "rans")
	validTurbulence  = set("none", "sa", "sst")
	validConvective  = set("roe", "jst", "ausm", "hllc")
	validLimiters    = set("none", "venkat", "barth")
	validTimeInteg   = set("explicit_rk", "implicit_euler", "dual_time_bdf2")
	validLinSolvers  = set("gmres", "bicgstab")
	validPreconds    = set("jacobi", "ilu0", "sgs")
	validGradients   = set("green_gauss", "least_squares")
)

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// Validate rejects malformed or out-of-range config, the InputInvalid
// class of spec.md §7 that must abort before any iteration begins.
func (rc RunConfig) Validate() error {
	if rc.NDim != 2 && rc.NDim != 3 {
		return fmt.Errorf("%w: nDim must be 2 or 3, got %d", ranserr.ErrInputInvalid, rc.NDim)
	}
	checks := []struct {
		name string
		val  string
		set  map[string]bool
	}{
		{"solver", rc.Solver, validSolvers},
		{"turbulence", rc.Turbulence, validTurbulence},
		{"convective_scheme", rc.Convective, validConvective},
		{"limiter", rc.Limiter, validLimiters},
		{"time_integration", rc.TimeIntegration, validTimeInteg},
		{"linear_solver", rc.LinearSolver, validLinSolvers},
		{"linear_preconditioner", rc.LinearPreconditioner, validPreconds},
		{"gradient_method", rc.GradientMethod, validGradients},
	}
	for _, c := range checks {
		if !c.set[c.val] {
			return fmt.Errorf("%w: unrecognized %s %q", ranserr.ErrInputInvalid, c.name, c.val)
		}
	}
	if rc.CFLInit <= 0 || rc.CFLMax <= 0 || rc.CFLMax < rc.CFLInit {
		return fmt.Errorf("%w: invalid CFL schedule (init=%g max=%g)", ranserr.ErrInputInvalid, rc.CFLInit, rc.CFLMax)
	}
	if rc.Gamma <= 1 {
		return fmt.Errorf("%w: gamma must exceed 1, got %g", ranserr.ErrInputInvalid, rc.Gamma)
	}
	if rc.TimeIntegration == "dual_time_bdf2" && rc.PhysicalDT <= 0 {
		return fmt.Errorf("%w: dual_time_bdf2 requires physical_dt > 0, got %g", ranserr.ErrInputInvalid, rc.PhysicalDT)
	}
	for marker, bc := range rc.BoundaryConditions {
		if bc.Kind == "" {
			return fmt.Errorf("%w: marker %q has no BC kind", ranserr.ErrInputInvalid, marker)
		}
	}
	if rc.MeshFile == "" {
		return fmt.Errorf("%w: mesh_file is required", ranserr.ErrInputInvalid)
	}
	return nil
}

// MarkerKinds returns the configured markers sorted for deterministic
// diagnostic output, the same "sort keys before printing" pattern the
// teacher's InputParameters2D.Print uses for its BCs map.
func (rc RunConfig) MarkerKinds() []string {
	keys := make([]string, 0, len(rc.BoundaryConditions))
	for k := range rc.BoundaryConditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
