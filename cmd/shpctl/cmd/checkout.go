package cmd

import (
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <env-tag>",
	Short: "Set the active environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		if err := a.Mgr.SetActiveEnvironment(args[0]); err != nil {
			return err
		}
		return a.Mgr.Store()
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}
