package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const selectRuns = `
	SELECT seq, id, scenario, pipeline, seed, pass, input, output, digest
	FROM runs
`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run           Run
		seed          int64
		pass          int
		input, output string
	)
	if err := row.Scan(&run.Seq, &run.ID, &run.Scenario, &run.Pipeline, &seed, &pass, &input, &output, &run.Digest); err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	run.Pass = pass == 1
	run.Input = []byte(input)
	run.Output = []byte(output)
	return run, nil
}

// Get returns the run with the given ID, or ErrNotFound.
func (j *Journal) Get(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(j.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}

	run.Errors, err = j.runErrors(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// List returns every run in recording order. An empty journal yields an
// empty, non-nil slice.
func (j *Journal) List(ctx context.Context) ([]Run, error) {
	return j.list(ctx, selectRuns+` ORDER BY seq ASC`)
}

// ListScenario returns the runs of one scenario in recording order.
func (j *Journal) ListScenario(ctx context.Context, scenario string) ([]Run, error) {
	return j.list(ctx, selectRuns+` WHERE scenario = ? ORDER BY seq ASC`, scenario)
}

// Latest returns the most recently recorded run, or ErrNotFound when the
// journal is empty.
func (j *Journal) Latest(ctx context.Context) (Run, error) {
	var id string
	err := j.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return j.Get(ctx, id)
}

func (j *Journal) list(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	// The pool holds a single connection, so rows must be released before
	// the per-run error queries below.
	rows.Close()

	for i := range runs {
		runs[i].Errors, err = j.runErrors(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (j *Journal) runErrors(ctx context.Context, id string) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT message FROM run_errors WHERE run_id = ? ORDER BY idx ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query run errors: %w", err)
	}
	defer rows.Close()

	msgs := []string{}
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scan run error: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run errors: %w", err)
	}
	return msgs, nil
}
