// Command shpctl is the CLI entrypoint for the shepherd multi-environment
// workload controller.
package main

import (
	"fmt"
	"os"

	"github.com/moonyfringers/shpctl/cmd/shpctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cmd.ExitCodeFor(err))
	}
}
