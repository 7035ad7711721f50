package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/stratasim/internal/journal"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// VerifyResult holds the outcome of replaying journaled runs.
type VerifyResult struct {
	Runs       []journal.Verification `json:"runs"`
	Matched    int                    `json:"matched"`
	Mismatched int                    `json:"mismatched"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay journaled runs and compare digests",
		Long: `Replay runs recorded with "stratasim run --db" and check that each
replay reproduces the recorded output digest.

Exit codes:
  0 - Every replay matched
  1 - At least one replay produced a different digest
  2 - Command error (journal not found, unknown run, etc.)

Examples:
  stratasim verify --db runs.db
  stratasim verify --db runs.db --run 0192c5e4-...
  stratasim verify --run latest`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "path to the run journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", `verify a single run by ID ("latest" for the newest)`)

	return cmd
}

// openExistingJournal opens a journal that must already exist; Open would
// otherwise create an empty one.
func openExistingJournal(path string) (*journal.Journal, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no journal given (use --db or STRATASIM_DB)")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
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

	var verifications []journal.Verification
	if opts.RunID != "" {
		var run journal.Run
		if opts.RunID == "latest" {
			run, err = j.Latest(ctx)
		} else {
			run, err = j.Get(ctx, opts.RunID)
		}
		if errors.Is(err, journal.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		v, err := journal.Replay(run)
		if err != nil {
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
		verifications = []journal.Verification{v}
	} else {
		verifications, err = j.VerifyAll(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
	}

	result := VerifyResult{Runs: verifications}
	for _, v := range verifications {
		if v.Match {
			result.Matched++
		} else {
			result.Mismatched++
			slog.Warn("digest mismatch", "run", v.RunID, "recorded", v.RecordedDigest, "replayed", v.ReplayedDigest)
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	failMsg := fmt.Sprintf("%d run(s) did not reproduce", result.Mismatched)
	if opts.Format == "json" {
		if err := f.Result(result, result.Mismatched > 0, "E_DIGEST_MISMATCH", failMsg); err != nil {
			return err
		}
	} else {
		printVerifyText(f, result)
	}

	if result.Mismatched > 0 {
		return NewExitError(ExitFailure, failMsg)
	}
	return nil
}

func printVerifyText(f *OutputFormatter, result VerifyResult) {
	w := f.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs journaled.")
		return
	}
	for _, v := range result.Runs {
		fmt.Fprintf(w, "%s %s %s digest %s\n", mark(v.Match), v.RunID, v.Scenario, shortDigest(v.RecordedDigest))
		if !v.Match {
			fmt.Fprintf(w, "  replayed digest %s\n", shortDigest(v.ReplayedDigest))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Verify Summary: %d matched, %d mismatched\n", result.Matched, result.Mismatched)
}
