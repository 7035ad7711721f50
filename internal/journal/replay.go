package journal

import (
	"context"
	"fmt"

	"github.com/roach88/stratasim/internal/harness"
)

// NewRun builds the journal record for an executed scenario. The scenario is
// stored as YAML so the exact input can be replayed.
func NewRun(id string, s *harness.Scenario, result *harness.Result) (Run, error) {
	input, err := s.EncodeYAML()
	if err != nil {
		return Run{}, fmt.Errorf("encode scenario %s: %w", s.Name, err)
	}

	return Run{
		ID:       id,
		Scenario: s.Name,
		Pipeline: s.Pipeline,
		Seed:     s.Seed,
		Pass:     result.Pass,
		Errors:   append([]string{}, result.Errors...),
		Input:    input,
		Output:   result.Output.Canonical,
		Digest:   result.Output.Digest,
	}, nil
}

// Verification compares a journaled run with a fresh execution of its input.
type Verification struct {
	RunID          string `json:"run_id"`
	Scenario       string `json:"scenario"`
	RecordedDigest string `json:"recorded_digest"`
	ReplayedDigest string `json:"replayed_digest"`
	Match          bool   `json:"match"`
}

// Replay re-executes the stored scenario of run and reports whether the
// output digest is unchanged.
func Replay(run Run, opts ...harness.Option) (Verification, error) {
	s, err := harness.ParseYAML(run.Input)
	if err != nil {
		return Verification{}, fmt.Errorf("replay run %s: %w", run.ID, err)
	}

	result, err := harness.Run(s, opts...)
	if err != nil {
		return Verification{}, fmt.Errorf("replay run %s: %w", run.ID, err)
	}

	return Verification{
		RunID:          run.ID,
		Scenario:       run.Scenario,
		RecordedDigest: run.Digest,
		ReplayedDigest: result.Output.Digest,
		Match:          result.Output.Digest == run.Digest,
	}, nil
}

// VerifyAll replays every journaled run in recording order.
func (j *Journal) VerifyAll(ctx context.Context, opts ...harness.Option) ([]Verification, error) {
	runs, err := j.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Verification, 0, len(runs))
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := Replay(run, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
