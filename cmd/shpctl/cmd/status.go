package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/display"
	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

var statusPorcelain bool

var statusCmd = &cobra.Command{
	Use:   "status env",
	Short: "Show the runtime status of the active environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != "env" {
			return shperr.Usage("unknown resource %q; expected \"env\"", args[0])
		}
		a, err := mustApp()
		if err != nil {
			return err
		}
		env, err := a.RequireActiveEnvironment()
		if err != nil {
			return err
		}
		handle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, env)
		rows, err := handle.Status(context.Background())
		if err != nil {
			return err
		}
		header := []string{"SERVICE", "STATE", "HEALTH"}
		var out [][]string
		for _, r := range rows {
			state := r.State
			if !statusPorcelain {
				state = display.StateStyle(r.State)
			}
			out = append(out, []string{r.Service, state, r.Health})
		}
		fmt.Print(display.Table(header, out, statusPorcelain))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusPorcelain, "porcelain", false, "stable, script-parseable output")
	rootCmd.AddCommand(statusCmd)
}
