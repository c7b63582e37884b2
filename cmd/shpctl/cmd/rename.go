package cmd

import (
	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var renameCmd = &cobra.Command{
	Use:   "rename <src> <dst>",
	Short: "Rename an environment (atomic directory move + tag swap)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		src, dst := args[0], args[1]

		env, err := a.Mgr.GetEnvironment(src)
		if err != nil {
			return err
		}
		handle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, env)
		if err := handle.MoveTo(dst); err != nil {
			return err
		}
		return a.Mgr.Store()
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
