package cmd

import (
	"errors"
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/notargets/ranscfd/config"
	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/integration"
	"github.com/notargets/ranscfd/meshio"
	"github.com/notargets/ranscfd/monitor"
	"github.com/notargets/ranscfd/ranserr"
	"github.com/notargets/ranscfd/restart"
	"github.com/notargets/ranscfd/solver"
	"github.com/notargets/ranscfd/variables"
	"github.com/notargets/ranscfd/writer"
)

var (
	runReportInterval int
	runCSVReport      string
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run a steady or unsteady RANS case to convergence",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCase(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runReportInterval, "report-interval", 10, "iterations between stdout progress reports")
	runCmd.Flags().StringVar(&runCSVReport, "csv-report", "", "optional path to write a per-iteration CSV convergence trail")
}

// runCase wires config -> mesh -> solvers -> driver -> outputs, per
// spec.md §6's collaborator boundary, and returns the process exit code.
func runCase(configPath string) int {
	expanded, err := homedir.Expand(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitInputError
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error reading config:", err)
		return exitIOError
	}
	cfg, err := config.Load(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitInputError
	}

	meshPath, err := homedir.Expand(cfg.MeshFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitInputError
	}
	raw, err := meshio.ReadSU2File(meshPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error reading mesh:", err)
		return classifyExit(err)
	}
	mesh, err := geometry.NewMesh(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error building mesh:", err)
		return classifyExit(err)
	}

	gas := variables.Gas{Gamma: cfg.Gamma, R: cfg.GasConstant}
	mean, err := solver.NewMeanFlow(mesh, gas, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return classifyExit(err)
	}
	turb := solver.NewTurbulence(mesh, cfg, mean)

	if cfg.RestartFile != "" {
		if err := loadRestart(cfg.RestartFile, mean, turb); err != nil {
			fmt.Fprintln(os.Stderr, "error reading restart file:", err)
			return classifyExit(err)
		}
	}

	sink, closeSink, err := buildSink()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIOError
	}
	if closeSink != nil {
		defer closeSink()
	}

	driver := integration.NewDriver(mean, turb, cfg, sink)

	var runErr error
	if cfg.TimeIntegration == "dual_time_bdf2" && cfg.PhysicalSteps > 1 {
		runErr = driver.RunUnsteady()
	} else {
		_, _, runErr = driver.RunSteady()
	}

	if cfg.OutputFile != "" {
		if err := writeFields(cfg.OutputFile, mesh, mean); err != nil {
			fmt.Fprintln(os.Stderr, "error writing output:", err)
			return exitIOError
		}
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "run did not converge:", runErr)
		return classifyExit(runErr)
	}
	return exitConverged
}

func buildSink() (monitor.Sink, func(), error) {
	stdout := monitor.NewStdoutSink(os.Stdout, runReportInterval)
	if runCSVReport == "" {
		return stdout, nil, nil
	}
	f, err := os.Create(runCSVReport)
	if err != nil {
		return nil, nil, err
	}
	return monitor.NewCSVSink(f), func() { f.Close() }, nil
}

func writeFields(path string, mesh *geometry.Mesh, mean *solver.MeanFlow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var w writer.CSVWriter
	return w.WriteFields(f, mesh, mean.State)
}

func loadRestart(path string, mean *solver.MeanFlow, turb *solver.Turbulence) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	snap, err := restart.Read(f)
	if err != nil {
		return err
	}
	var turbState *variables.Turbulence
	if turb != nil {
		turbState = turb.State
	}
	if err := restart.Apply(snap, mean.State, turbState); err != nil {
		return err
	}
	mean.CFL = snap.CFL
	return nil
}

func classifyExit(err error) int {
	switch {
	case errors.Is(err, ranserr.ErrInputInvalid):
		return exitInputError
	case errors.Is(err, ranserr.ErrGeometryDegenerate):
		return exitInputError
	case errors.Is(err, ranserr.ErrDiverged):
		return exitDiverged
	default:
		return exitIOError
	}
}
