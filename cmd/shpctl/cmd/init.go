package cmd

import (
	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var initCmd = &cobra.Command{
	Use:   "init <env-template> <env-tag>",
	Short: "Create a new environment from a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		envTemplate, tag := args[0], args[1]

		env, err := a.Mgr.EnvFromTag(envTemplate, tag)
		if err != nil {
			return err
		}
		handle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, env)
		if err := handle.Realize(); err != nil {
			return err
		}
		return a.Mgr.Store()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
