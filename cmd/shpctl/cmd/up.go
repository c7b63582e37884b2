package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var upCmd = &cobra.Command{
	Use:   "up [env|svc <tag>...]",
	Short: "Start the active environment, or individual services within it",
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
			resolved, err := a.Mgr.ResolvedEnvironment(env.Tag)
			if err != nil {
				return err
			}
			raw := *env
			handle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, resolved)
			if err := handle.Start(context.Background()); err != nil {
				return err
			}
			// Start() persists the resolved view under env.Tag; restore
			// the declared (unresolved) fields, keeping only the
			// rendered_config it just computed.
			raw.Status = resolved.Status
			a.Mgr.AddOrSetEnvironment(raw)
			return a.Mgr.Store()
		}

		for _, tag := range tags {
			svc, err := findService(env, tag)
			if err != nil {
				return err
			}
			svcHandle := lifecycle.NewServiceHandle(a.Mgr, a.Drv, env, svc)
			if err := svcHandle.Start(context.Background()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
}
