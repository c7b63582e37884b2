// Package cmd wires shpctl's cobra command tree, grounded on
// maiko-SDBX's cmd/sdbx/cmd/root.go (persistent flags bound through
// viper, one verb per file).
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moonyfringers/shpctl/internal/shepherd/app"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

var (
	cfgFile    string
	verboseFlag bool
	yesFlag    bool
	jsonFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "shpctl",
	Short: "Manage the declared lifecycle of containerized environments",
	Long: `shpctl is a multi-environment workload controller: it manages the
declared lifecycle of environments -- named, versioned bundles of
containerized services with their networks, volumes, and health probes --
on top of an external container-composition engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config document path (not read: the document is always <SHPD_PATH>/.shpd.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "assume yes to confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "emit machine-readable JSON output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("yes", rootCmd.PersistentFlags().Lookup("yes"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	viper.SetEnvPrefix("SHPD")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCodeFor maps a command error to shpctl's process exit code
// (spec.md §6: 0 success, 1 fatal, 2 invalid usage).
func ExitCodeFor(err error) int {
	return shperr.ExitCode(err)
}

// IsYes reports whether confirmation prompts should be auto-accepted.
func IsYes() bool { return yesFlag || viper.GetBool("yes") }

// IsJSON reports whether output should be machine-readable JSON.
func IsJSON() bool { return jsonFlag || viper.GetBool("json") }

// mustApp bootstraps the app or prints a fatal error and returns it,
// for commands' RunE to return directly.
func mustApp() (*app.App, error) {
	a, err := app.Bootstrap()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigureLogging(a.Mgr.Config().Logging); err != nil {
		return nil, err
	}
	return a, nil
}
