package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/stratasim/internal/harness"
	"github.com/roach88/stratasim/internal/journal"
	"github.com/roach88/stratasim/internal/metrics"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Seed     uint64
	Metrics  bool
	Jobs     int

	// IDGenerator overrides run ID generation (for testing). Defaults to
	// journal.UUIDv7Generator.
	IDGenerator journal.IDGenerator
}

// ScenarioRun is the outcome of one scenario file.
type ScenarioRun struct {
	File     string        `json:"file,omitempty"`
	Name     string        `json:"name"`
	Pipeline string        `json:"pipeline"`
	Seed     uint64        `json:"seed"`
	Pass     bool          `json:"pass"`
	Errors   []string      `json:"errors,omitempty"`
	Digest   string        `json:"digest"`
	RunID    string        `json:"run_id,omitempty"`
	Rows     []harness.Row `json:"rows"`

	scenario *harness.Scenario
	result   *harness.Result
}

// RunResult holds the outcome of a run command.
type RunResult struct {
	Runs    []ScenarioRun         `json:"runs"`
	Passed  int                   `json:"passed"`
	Failed  int                   `json:"failed"`
	Metrics []metrics.SystemStats `json:"metrics,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenario files",
		Long: `Run one or more scenario files and print their read-back rows.

Independent scenario files run concurrently. With --db every run is
recorded in the journal so "stratasim verify" can replay it later.

Exit codes:
  0 - All assertions held
  1 - One or more assertions failed
  2 - Command error (unreadable scenario, journal error, etc.)

Examples:
  stratasim run scenarios/documents.yaml
  stratasim run --db runs.db --seed 7 scenarios/*.yaml
  stratasim run --metrics --format json scenarios/assignment.cue`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "journal runs to this SQLite database")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "override the random seed of every scenario")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "report per-system metrics")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "scenario files run in parallel")

	return cmd
}

// seedOverride returns the seed that replaces scenario seeds, if any. The
// flag wins over the environment.
func (o *RunOptions) seedOverride(cmd *cobra.Command) *uint64 {
	if cmd.Flags().Changed("seed") {
		seed := o.Seed
		return &seed
	}
	return o.Config.Seed
}

func runScenarios(opts *RunOptions, files []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		reg       = prometheus.NewRegistry()
		harnessOp []harness.Option
	)
	if opts.Metrics {
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to set up metrics", err)
		}
		harnessOp = append(harnessOp, harness.WithObserver(collector))
	}

	runs, err := executeFiles(ctx, files, opts.seedOverride(cmd), opts.Jobs, harnessOp...)
	if err != nil {
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	if opts.Database != "" {
		if err := journalRuns(ctx, opts.Database, opts.IDGenerator, runs); err != nil {
			return WrapExitError(ExitCommandError, "failed to journal runs", err)
		}
	}

	result := RunResult{Runs: runs}
	for _, r := range runs {
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}
	if opts.Metrics {
		result.Metrics, err = metrics.Summarize(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read metrics", err)
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if err := printRunResult(f, result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// executeFiles loads and runs scenario files concurrently. Results keep the
// argument order. The first load or kernel error cancels the remaining work.
func executeFiles(ctx context.Context, files []string, seed *uint64, jobs int, opts ...harness.Option) ([]ScenarioRun, error) {
	runs := make([]ScenarioRun, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := harness.LoadScenario(file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			if seed != nil {
				s.Seed = *seed
			}

			run, err := executeScenario(s, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			run.File = filepath.ToSlash(file)
			runs[i] = run
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

func executeScenario(s *harness.Scenario, opts ...harness.Option) (ScenarioRun, error) {
	slog.Debug("running scenario", "name", s.Name, "pipeline", s.Pipeline, "seed", s.Seed)

	result, err := harness.Run(s, opts...)
	if err != nil {
		return ScenarioRun{}, err
	}
	return ScenarioRun{
		Name:     s.Name,
		Pipeline: s.Pipeline,
		Seed:     s.Seed,
		Pass:     result.Pass,
		Errors:   result.Errors,
		Digest:   result.Output.Digest,
		Rows:     result.Output.Rows,
		scenario: s,
		result:   result,
	}, nil
}

// journalRuns records runs in argument order so journal order is stable
// regardless of which file finished first.
func journalRuns(ctx context.Context, path string, gen journal.IDGenerator, runs []ScenarioRun) error {
	if gen == nil {
		gen = journal.UUIDv7Generator{}
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	for i := range runs {
		rec, err := journal.NewRun(gen.Generate(), runs[i].scenario, runs[i].result)
		if err != nil {
			return err
		}
		if err := j.Record(ctx, rec); err != nil {
			return err
		}
		runs[i].RunID = rec.ID
		slog.Info("run journaled", "id", rec.ID, "scenario", rec.Scenario, "digest", rec.Digest)
	}
	return nil
}

func printRunResult(f *OutputFormatter, result RunResult) error {
	if f.Format == "json" {
		return f.Result(result, result.Failed > 0, "E_ASSERTION",
			fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	w := f.Writer
	for _, r := range result.Runs {
		printScenarioRun(w, r)
	}
	if len(result.Metrics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Systems:")
		for _, m := range result.Metrics {
			fmt.Fprintf(w, "  %-22s runs=%d commands=%d time=%.6fs\n", m.System, m.Runs, m.CommandsApplied, m.TotalSeconds)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, len(result.Runs))
	return nil
}
