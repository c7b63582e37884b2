package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/lifecycle"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <env-tag>",
	Short: "Remove an environment's directory and config entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		tag := args[0]

		if !IsYes() {
			confirmed, err := confirm(fmt.Sprintf("delete environment %q? [y/N] ", tag))
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("aborted")
				return nil
			}
		}

		env, err := a.Mgr.GetEnvironment(tag)
		if err != nil {
			return err
		}
		handle := lifecycle.NewEnvironmentHandle(a.Mgr, a.Drv, env)
		if err := handle.Delete(); err != nil {
			return err
		}
		return a.Mgr.Store()
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func confirm(prompt string) (bool, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
