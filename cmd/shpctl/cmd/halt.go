package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var haltCmd = &cobra.Command{
	Use:   "halt [env|svc <tag>...]",
	Short: "Stop the active environment, or individual services within it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		env, err := a.RequireActiveEnvironment()
		if err != nil {
			return err
		}
		tags, err := parseResourceArgs(args)
		if err != nil {
			return err
		}

		if len(tags) == 0 {
			handle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, env)
			if err := handle.Stop(context.Background()); err != nil {
				return err
			}
			return a.Mgr.Store()
		}

		for _, tag := range tags {
			svc, err := findService(env, tag)
			if err != nil {
				return err
			}
			svcHandle := lifecycle.NewServiceHandle(a.Mgr, a.Drv, env, svc)
			if err := svcHandle.Stop(context.Background()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(haltCmd)
}
