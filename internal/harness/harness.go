package harness

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/stratasim/internal/assignment"
	"github.com/roach88/stratasim/internal/canon"
	"github.com/roach88/stratasim/internal/documents"
	"github.com/roach88/stratasim/internal/ecs"
	"github.com/roach88/stratasim/internal/inspection"
)

// Option configures a harness run.
type Option func(*config)

type config struct {
	scheduleOpts []ecs.Option
}

// WithObserver attaches a scheduler observer (for example a metrics
// collector) to the run.
func WithObserver(o ecs.Observer) Option {
	return func(c *config) {
		c.scheduleOpts = append(c.scheduleOpts, ecs.WithObserver(o))
	}
}

// WithLogger sets the logger for schedule lifecycle events and per-entity
// system logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.scheduleOpts = append(c.scheduleOpts, ecs.WithLogger(l))
	}
}

// Run executes a scenario and returns the result.
//
// Each run builds a fresh world, seeds it from the scenario, runs the
// pipeline schedule once and reads the rows back. Assertion failures are
// reported on the result; only kernel errors are returned as errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		rows []Row
		err  error
	)
	switch scenario.Pipeline {
	case PipelineDocuments:
		rows, err = runDocuments(scenario, cfg)
	case PipelineInspection:
		rows, err = runInspection(scenario, cfg)
	case PipelineAssignment:
		rows, err = runAssignment(scenario, cfg)
	default:
		return nil, fmt.Errorf("unknown pipeline %q", scenario.Pipeline)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	output, err := buildOutput(scenario, rows)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Output = output
	for _, msg := range EvaluateAssertions(rows, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func buildOutput(scenario *Scenario, rows []Row) (*Output, error) {
	data, digest, err := canon.MarshalDigest(canon.DomainOutput, map[string]any{
		"scenario": scenario.Name,
		"pipeline": scenario.Pipeline,
		"rows":     canonicalRows(rows),
	})
	if err != nil {
		return nil, err
	}
	return &Output{
		Scenario:  scenario.Name,
		Pipeline:  scenario.Pipeline,
		Rows:      rows,
		Canonical: data,
		Digest:    digest,
	}, nil
}

func runDocuments(s *Scenario, cfg config) ([]Row, error) {
	docs := make([]documents.Document, len(s.Documents))
	for i, d := range s.Documents {
		docs[i] = documents.Document{ID: d.ID, Filename: d.Filename, FileType: d.FileType, Content: d.Content}
	}
	reports, err := documents.Run(docs, documents.WithScheduleOptions(cfg.scheduleOpts...))
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(reports))
	for i, r := range reports {
		row := Row{
			"id":        r.ID,
			"filename":  r.Filename,
			"file_type": r.FileType,
			"status":    string(r.Status),
		}
		if r.Result != nil {
			row["word_count"] = r.Result.WordCount
			row["key_entities"] = slices.Clone(r.Result.KeyEntities)
			row["sentiment_score"] = r.Result.SentimentScore
			row["summary"] = r.Result.Summary
		}
		rows[i] = row
	}
	return rows, nil
}

func runInspection(s *Scenario, cfg config) ([]Row, error) {
	elements := make([]inspection.BuildingElement, len(s.Elements))
	for i, el := range s.Elements {
		elements[i] = inspection.BuildingElement{Name: el.Name, Category: el.Category, AgeYears: el.AgeYears}
	}

	noise := inspection.WithSeed(s.Seed)
	if s.Noise != nil {
		noise = inspection.WithNoise(inspection.FixedNoise(*s.Noise))
	}
	reports, err := inspection.Run(elements, noise, inspection.WithScheduleOptions(cfg.scheduleOpts...))
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(reports))
	for i, r := range reports {
		rows[i] = Row{
			"name":            r.Element.Name,
			"category":        r.Element.Category,
			"age_years":       r.Element.AgeYears,
			"condition_score": r.Finding.ConditionScore,
			"band":            string(r.Finding.Band),
			"observation":     r.Finding.Observation,
			"recommendation":  r.Finding.Recommendation,
			"estimated_cost":  r.Finding.EstimatedCost,
		}
	}
	return rows, nil
}

func runAssignment(s *Scenario, cfg config) ([]Row, error) {
	inspectors := make([]assignment.Inspector, len(s.Inspectors))
	for i, in := range s.Inspectors {
		inspectors[i] = assignment.Inspector{
			ID:         in.ID,
			Name:       in.Name,
			Location:   assignment.Location{Lat: in.Lat, Lng: in.Lng},
			SkillLevel: in.SkillLevel,
		}
	}
	jobs := make([]assignment.InspectionJob, len(s.Jobs))
	for i, j := range s.Jobs {
		jobs[i] = assignment.InspectionJob{
			ID:                 j.ID,
			Location:           assignment.Location{Lat: j.Lat, Lng: j.Lng},
			Priority:           j.Priority,
			EstimatedHours:     j.EstimatedHours,
			RequiredSkillLevel: j.RequiredSkillLevel,
		}
	}

	reports, err := assignment.Run(inspectors, jobs, assignment.WithScheduleOptions(cfg.scheduleOpts...))
	if err != nil {
		return nil, err
	}

	// Coordinates are left out of rows: they may be non-finite, which
	// canonical JSON cannot represent.
	rows := make([]Row, len(reports))
	for i, r := range reports {
		row := Row{
			"id":                   r.Job.ID,
			"priority":             r.Job.Priority,
			"required_skill_level": r.Job.RequiredSkillLevel,
		}
		if r.Result != nil {
			row["assigned_inspector_id"] = r.Result.AssignedInspectorID
			row["score"] = r.Result.Score
		}
		rows[i] = row
	}
	return rows, nil
}
