package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stratasim/internal/harness"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Seed uint64
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:       "demo <documents|inspection|assignment>",
		Short:     "Run a pipeline on built-in sample data",
		ValidArgs: harness.Pipelines(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Example: `  stratasim demo documents
  stratasim demo inspection --seed 42
  stratasim demo assignment --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, args[0], cmd)
		},
	}

	seed := uint64(0)
	if rootOpts.Config.Seed != nil {
		seed = *rootOpts.Config.Seed
	}
	cmd.Flags().Uint64Var(&opts.Seed, "seed", seed, "random seed for inspection noise")

	return cmd
}

func runDemo(opts *DemoOptions, pipeline string, cmd *cobra.Command) error {
	s, err := harness.DemoScenario(pipeline, opts.Seed)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build demo", err)
	}

	run, err := executeScenario(s)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("demo %s failed", pipeline), err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return f.Success(run)
	}
	printScenarioRun(f.Writer, run)
	return nil
}
