package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/display"
	"github.com/moonyfringers/shpctl/internal/shepherd/probe"
)

var (
	checkFailFast bool
	checkTimeout  int
)

var checkCmd = &cobra.Command{
	Use:   "check [<probe-tag>] [--fail-fast] [--timeout S]",
	Short: "Run health probes against the active (running) environment",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		env, err := a.RequireActiveEnvironment()
		if err != nil {
			return err
		}
		resolved, err := a.Mgr.ResolvedEnvironment(env.Tag)
		if err != nil {
			return err
		}

		tag := ""
		if len(args) == 1 {
			tag = args[0]
		}

		opts := probe.Options{
			ProbeTag:    tag,
			FailFast:    checkFailFast,
			Timeout:     time.Duration(checkTimeout) * time.Second,
			ProjectName: env.Tag,
		}
		results, err := probe.CheckProbes(context.Background(), a.Drv, resolved, opts)
		if err != nil {
			return err
		}

		if IsJSON() {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(results)
		}

		header := []string{"PROBE", "EXIT", "TIMED_OUT", "DURATION_MS"}
		var rows [][]string
		for _, r := range results {
			rows = append(rows, []string{
				r.Tag,
				fmt.Sprintf("%d", r.ExitCode),
				fmt.Sprintf("%v", r.TimedOut),
				fmt.Sprintf("%d", r.DurationMs),
			})
		}
		fmt.Print(display.Table(header, rows, false))
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkFailFast, "fail-fast", false, "stop at the first failing or timed-out probe")
	checkCmd.Flags().IntVar(&checkTimeout, "timeout", 0, "per-probe timeout in seconds (0 = no timeout)")
	rootCmd.AddCommand(checkCmd)
}
