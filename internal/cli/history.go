package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/stratasim/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Scenario string
}

// HistoryEntry is one journaled run as listed by history.
type HistoryEntry struct {
	Seq      int64    `json:"seq"`
	ID       string   `json:"id"`
	Scenario string   `json:"scenario"`
	Pipeline string   `json:"pipeline"`
	Seed     uint64   `json:"seed"`
	Pass     bool     `json:"pass"`
	Errors   []string `json:"errors,omitempty"`
	Digest   string   `json:"digest"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled runs",
		Long: `List runs recorded in the journal, oldest first.

Examples:
  stratasim history --db runs.db
  stratasim history --db runs.db --scenario documents_demo --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "path to the run journal")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only list runs of this scenario")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	var runs []journal.Run
	if opts.Scenario != "" {
		runs, err = j.ListScenario(ctx, opts.Scenario)
	} else {
		runs, err = j.List(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = HistoryEntry{
			Seq:      r.Seq,
			ID:       r.ID,
			Scenario: r.Scenario,
			Pipeline: r.Pipeline,
			Seed:     r.Seed,
			Pass:     r.Pass,
			Errors:   r.Errors,
			Digest:   r.Digest,
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return f.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(f.Writer, "No runs journaled.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(f.Writer, "%4d %s %s %s (%s) seed=%d digest %s\n",
			e.Seq, mark(e.Pass), e.ID, e.Scenario, e.Pipeline, e.Seed, shortDigest(e.Digest))
		if opts.Verbose {
			for _, msg := range e.Errors {
				fmt.Fprintf(f.Writer, "       %s\n", msg)
			}
		}
	}
	return nil
}
