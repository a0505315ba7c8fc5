package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/notargets/ranscfd/restart"
)

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Inspect restart snapshot files",
}

var restartInspectCmd = &cobra.Command{
	Use:   "inspect <restart-file>",
	Short: "Print the header of a restart snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(inspectRestart(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(restartCmd)
	restartCmd.AddCommand(restartInspectCmd)
}

func inspectRestart(path string) int {
	expanded, err := homedir.Expand(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitInputError
	}
	f, err := os.Open(expanded)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitIOError
	}
	defer f.Close()

	snap, err := restart.Read(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitInputError
	}

	fmt.Printf("run id:       %s\n", snap.RunID)
	fmt.Printf("dimension:    %d\n", snap.NDim)
	fmt.Printf("cells:        %d\n", snap.CellCount)
	fmt.Printf("conserved:    %d vars/cell\n", snap.NVar)
	fmt.Printf("iteration:    %d\n", snap.Iteration)
	fmt.Printf("cfl:          %g\n", snap.CFL)
	if snap.TurbNEq > 0 {
		fmt.Printf("turbulence:   model=%d, %d eqns/cell\n", snap.TurbModel, snap.TurbNEq)
	} else {
		fmt.Printf("turbulence:   none\n")
	}
	return exitConverged
}
