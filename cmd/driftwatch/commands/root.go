package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	drifterrors "github.com/yairfalse/driftwatch/internal/errors"
	"github.com/yairfalse/driftwatch/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// errRegressionDetected marks a run that completed but found drift. It maps
// to exit code 1, distinct from "could not run" errors (exit code 2).
var errRegressionDetected = errors.New("regression detected")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "driftwatch",
	Short: "Snapshot-based regression testing for JSON endpoints",
	Long: `driftwatch captures baseline responses from JSON endpoints and re-fetches
them later to detect behavioral drift field by field.

Numeric values are allowed to fluctuate within a relative tolerance (counts
and timings rarely repeat exactly); structural shape and everything else must
stay identical.

Typical flow:
  driftwatch capture --endpoint /api/dashboard/stats --name dashboard
  driftwatch test --endpoint /api/dashboard/stats --snapshot dashboard

Exit codes: 0 = passed, 1 = drift detected, 2 = the test could not run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			runVersion(cmd)
			return nil
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the CLI and maps errors to exit codes.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if errors.Is(err, errRegressionDetected) {
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(drifterrors.ExitCode(err))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.driftwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("base-url", "", "base URL of the service under test")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("version", false, "show version information")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("service.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(newCaptureCommand())
	rootCmd.AddCommand(newTestCommand())
	rootCmd.AddCommand(newBatchCommand())
	rootCmd.AddCommand(newSnapshotsCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return drifterrors.New(drifterrors.ErrorTypeConfiguration, "failed to load configuration").WithCause(err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return drifterrors.New(drifterrors.ErrorTypeConfiguration, "failed to expand config paths").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return drifterrors.New(drifterrors.ErrorTypeConfiguration, "invalid configuration").WithCause(err)
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
