package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/display"
)

var (
	listPorcelain bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List environments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		header := []string{"TAG", "TEMPLATE", "ACTIVE", "RUNNING"}
		var rows [][]string
		for _, e := range a.Mgr.GetEnvironments() {
			rows = append(rows, []string{
				e.Tag,
				e.Template,
				fmt.Sprintf("%v", e.Status.Active),
				fmt.Sprintf("%v", e.Status.IsRunning()),
			})
		}
		fmt.Print(display.Table(header, rows, listPorcelain))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listPorcelain, "porcelain", false, "stable, script-parseable output")
	rootCmd.AddCommand(listCmd)
}
