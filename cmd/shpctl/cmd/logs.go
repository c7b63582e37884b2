package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var (
	logsFollow bool
	logsTail   int
)

var logsCmd = &cobra.Command{
	Use:   "logs <svc>",
	Short: "Show captured stdout/stderr for a service's containers",
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
		out, err := handle.Stdout(context.Background(), logsTail, logsFollow)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output")
	logsCmd.Flags().IntVar(&logsTail, "tail", 0, "number of lines to show from the end of the logs (0 = all)")
	rootCmd.AddCommand(logsCmd)
}
