package cmd

import (
	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <src> <dst>",
	Short: "Clone an environment by hard-linking its directory tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		src, dst := args[0], args[1]

		srcEnv, err := a.Mgr.GetEnvironment(src)
		if err != nil {
			return err
		}
		srcHandle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, srcEnv)
		dstHandle := srcHandle.Clone(dst)

		if err := dstHandle.RealizeFrom(srcHandle); err != nil {
			return err
		}
		return a.Mgr.Store()
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
