package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command every subcommand attaches to, the same
// cobra-cli scaffold shape the teacher's cmd package started from.
var rootCmd = &cobra.Command{
	Use:   "ranscfd",
	Short: "A compressible-flow finite-volume RANS solver",
	Long: `ranscfd runs a vertex-centered (median-dual) finite-volume solver for the
compressible Euler, Navier-Stokes, and RANS equations on unstructured
2D meshes.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInputError)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ranscfd.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in a bare defaults file and ENV variables if set,
// mirroring the cobra-cli scaffold's viper wiring: viper reads the file
// named by the persistent --config flag, or $HOME/.ranscfd.yaml when the
// flag is empty, and RANSCFD_* environment variables override its values.
// The run config itself is not read through viper: run loads its
// positional YAML path with ghodss/yaml (config.Load), and no viper value
// is overlaid onto RunConfig.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigName(".ranscfd")
	}

	viper.SetEnvPrefix("RANSCFD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

// Exit codes per spec.md §7: 0 converged, 1 diverged, 2 input error, 3 I/O
// error.
const (
	exitConverged  = 0
	exitDiverged   = 1
	exitInputError = 2
	exitIOError    = 3
)
