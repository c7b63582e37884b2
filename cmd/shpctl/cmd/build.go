package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
	"github.com/moonyfringers/shpctl/internal/shepherd/model"
)

var buildCmd = &cobra.Command{
	Use:   "build <svc-template|svc-tag>",
	Short: "Build container images for a service or service template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		arg := args[0]

		if env, ok := a.Mgr.GetActiveEnvironment(); ok {
			if svc, err := findService(env, arg); err == nil {
				handle := lifecycle.NewServiceHandle(a.Mgr, a.Drv, env, svc)
				return handle.Build(context.Background())
			}
		}

		st, err := a.Mgr.GetServiceTemplate(arg)
		if err != nil {
			return err
		}
		transient, err := a.Mgr.SvcFromServiceTemplate(st, st.Tag, "")
		if err != nil {
			return err
		}
		handle := lifecycle.NewServiceHandle(a.Mgr, a.Drv, &model.Environment{}, transient)
		return handle.Build(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
