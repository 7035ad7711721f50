package journal

import (
	"context"
	"errors"
	"fmt"
)

// Record appends a run and its assertion failures in one transaction.
//
// Recording the same run ID twice is a no-op: the first write wins, matching
// replays that re-record a run they just verified.
func (j *Journal) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("record run: empty id")
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, pipeline, seed, pass, input, output, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.Pipeline,
		// go-sqlite3 rejects uint64 values with the high bit set; the
		// conversion is bit-preserving and reversed on read.
		int64(run.Seed),
		boolToInt(run.Pass),
		string(run.Input),
		string(run.Output),
		run.Digest,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	if inserted == 0 {
		return nil
	}

	for i, msg := range run.Errors {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_errors (run_id, idx, message) VALUES (?, ?, ?)
		`, run.ID, i, msg); err != nil {
			return fmt.Errorf("record run %s error %d: %w", run.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run %s: commit: %w", run.ID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
