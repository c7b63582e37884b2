package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

var (
	getTarget   bool
	getResolved bool
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Render a resource's declared (or engine-ready) configuration",
}

var getEnvCmd = &cobra.Command{
	Use:   "env <tag> [-oyaml] [-t] [-r]",
	Short: "Render an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		env, err := a.Mgr.GetEnvironment(args[0])
		if err != nil {
			return err
		}
		handle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, env)
		if getTarget {
			docs, err := handle.RenderTarget(getResolved)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(docs)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}
		out, err := handle.Render(getResolved)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var getSvcCmd = &cobra.Command{
	Use:   "svc <tag> [-oyaml] [-t] [-r]",
	Short: "Render a service of the active environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		env, err := a.RequireActiveEnvironment()
		if err != nil {
			return err
		}
		svc, err := findService(env, args[0])
		if err != nil {
			return err
		}
		handle := lifecycle.NewServiceHandle(a.Mgr, a.Drv, env, svc)
		var out string
		if getTarget {
			out, err = handle.RenderTarget(getResolved)
		} else {
			out, err = handle.Render(getResolved)
		}
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var getProbeCmd = &cobra.Command{
	Use:   "probe <tag>",
	Short: "Render a probe of the active environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		env, err := a.RequireActiveEnvironment()
		if err != nil {
			return err
		}
		for _, p := range env.Probes {
			if p.Tag == args[0] {
				data, err := yaml.Marshal(p)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}
		}
		return shperr.Precondition("probe %q not found in environment %q", args[0], env.Tag)
	},
}

func init() {
	for _, c := range []*cobra.Command{getEnvCmd, getSvcCmd} {
		c.Flags().BoolVarP(&getTarget, "target", "t", false, "render the engine-ready target instead of the declared config")
		c.Flags().BoolVarP(&getResolved, "resolved", "r", false, "resolve ${VAR}/#{ref} placeholders before rendering")
		c.Flags().StringP("output", "o", "yaml", "output format; yaml is the only supported format")
	}
	getCmd.AddCommand(getEnvCmd, getSvcCmd, getProbeCmd)
	rootCmd.AddCommand(getCmd)
}
