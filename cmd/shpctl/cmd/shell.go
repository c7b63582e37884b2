package cmd

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var shellPath string

var shellCmd = &cobra.Command{
	Use:   "shell <svc>",
	Short: "Open an interactive shell inside a service's container",
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
		argv, err := handle.ShellArgv(shellPath)
		if err != nil {
			return err
		}
		c := exec.Command(a.Drv.Bin, argv...)
		c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
		return c.Run()
	},
}

func init() {
	shellCmd.Flags().StringVar(&shellPath, "shell", "/bin/sh", "shell binary to exec inside the container")
	rootCmd.AddCommand(shellCmd)
}
