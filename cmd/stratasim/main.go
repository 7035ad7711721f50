// Command stratasim runs strata management simulations from scenario files.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/stratasim/internal/cli"
	"github.com/roach88/stratasim/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}

	if err := cli.NewRootCommandWithConfig(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
