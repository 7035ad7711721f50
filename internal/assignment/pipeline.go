// Package assignment matches inspection jobs to inspectors.
//
// Matching is greedy per job: every open job is scored against every
// feasible inspector and the best one is attached as an AssignmentResult.
// Inspectors are never mutated, so one inspector may win several jobs.
package assignment

import (
	"fmt"

	"github.com/roach88/stratasim/internal/ecs"
)

// Component kinds owned by the assignment pipeline.
const (
	KindInspector ecs.Kind = "assignment.inspector"
	KindJob       ecs.Kind = "assignment.job"
	KindResult    ecs.Kind = "assignment.result"
)

// SystemAssignment is the name of the matching system.
const SystemAssignment = "assignment.greedy"

// Inspector is a person who can be sent to jobs.
type Inspector struct {
	ID         string
	Name       string
	Location   Location
	SkillLevel uint8
}

func (Inspector) Kind() ecs.Kind { return KindInspector }

// InspectionJob is a site visit waiting for an inspector.
type InspectionJob struct {
	ID                 string
	Location           Location
	Priority           uint8
	EstimatedHours     float64
	RequiredSkillLevel uint8
}

func (InspectionJob) Kind() ecs.Kind { return KindJob }

// AssignmentResult records the inspector chosen for a job.
type AssignmentResult struct {
	AssignedInspectorID string
	Score               float64
}

func (AssignmentResult) Kind() ecs.Kind { return KindResult }

// JobReport is the read-back view of one job. Result is nil when no
// feasible inspector was found.
type JobReport struct {
	Job    InspectionJob
	Result *AssignmentResult
}

// Option configures the pipeline.
type Option func(*options)

type options struct {
	scheduleOpts []ecs.Option
}

// WithScheduleOptions passes options through to the underlying schedule.
func WithScheduleOptions(opts ...ecs.Option) Option {
	return func(o *options) {
		o.scheduleOpts = append(o.scheduleOpts, opts...)
	}
}

// NewWorld creates a world with the assignment kinds registered.
func NewWorld() *ecs.World {
	w := ecs.NewWorld()
	ecs.Register[Inspector](w)
	ecs.Register[InspectionJob](w)
	ecs.Register[AssignmentResult](w)
	return w
}

// Seed spawns inspectors first and then jobs, each group in order.
func Seed(w *ecs.World, inspectors []Inspector, jobs []InspectionJob) error {
	for _, in := range inspectors {
		if _, err := w.Spawn(in); err != nil {
			return fmt.Errorf("seed inspector %q: %w", in.ID, err)
		}
	}
	for _, j := range jobs {
		if _, err := w.Spawn(j); err != nil {
			return fmt.Errorf("seed job %q: %w", j.ID, err)
		}
	}
	return nil
}

// best returns the highest scoring feasible inspector for job.
// Ties keep the earlier inspector.
func best(inspectors []ecs.Row[Inspector], job InspectionJob) (Inspector, float64, bool) {
	var (
		chosen    Inspector
		bestScore float64
		found     bool
	)
	for _, r := range inspectors {
		in := r.Value
		if !in.Location.Finite() || !Feasible(in, job) {
			continue
		}
		score := Score(in, job)
		if !found || score > bestScore {
			chosen, bestScore, found = in, score, true
		}
	}
	return chosen, bestScore, found
}

// AssignmentSystem returns the system that matches every open job.
func AssignmentSystem() ecs.System {
	return ecs.NewSystem(SystemAssignment, func(w *ecs.World, cmd *ecs.Commands) error {
		log := cmd.Logger()
		inspectors, err := ecs.Collect[Inspector](w)
		if err != nil {
			return err
		}
		return ecs.Each(w, func(e ecs.Entity, job *InspectionJob) {
			if !job.Location.Finite() {
				log.Debug("job skipped: non-finite location", "job", job.ID)
				return
			}
			in, score, ok := best(inspectors, *job)
			if !ok {
				log.Info("job unassigned", "job", job.ID, "required_skill", job.RequiredSkillLevel)
				return
			}
			log.Info("job assigned", "job", job.ID, "inspector", in.ID, "score", score)
			cmd.Insert(e, AssignmentResult{AssignedInspectorID: in.ID, Score: score})
		}, ecs.Without(KindResult))
	})
}

// NewSchedule builds the one-system assignment schedule.
func NewSchedule(opts ...Option) (*ecs.Schedule, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	s := ecs.NewSchedule(o.scheduleOpts...)
	if err := s.Add(AssignmentSystem()); err != nil {
		return nil, err
	}
	return s, nil
}

// Results reads back every job in seed order, assigned or not.
func Results(w *ecs.World) ([]JobReport, error) {
	jobs, err := ecs.Collect[InspectionJob](w)
	if err != nil {
		return nil, err
	}
	reports := make([]JobReport, len(jobs))
	for i, r := range jobs {
		reports[i] = JobReport{Job: r.Value}
		if res, ok := ecs.Get[AssignmentResult](w, r.Entity); ok {
			reports[i].Result = &res
		}
	}
	return reports, nil
}

// Assigned reads back only the jobs that received an inspector.
func Assigned(w *ecs.World) ([]ecs.Row2[InspectionJob, AssignmentResult], error) {
	return ecs.Collect2[InspectionJob, AssignmentResult](w)
}

// Run builds a fresh world, seeds it, runs once and reads back every job.
func Run(inspectors []Inspector, jobs []InspectionJob, opts ...Option) ([]JobReport, error) {
	w := NewWorld()
	if err := Seed(w, inspectors, jobs); err != nil {
		return nil, err
	}
	s, err := NewSchedule(opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Run(w); err != nil {
		return nil, fmt.Errorf("assignment: %w", err)
	}
	return Results(w)
}
