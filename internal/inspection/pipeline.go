// Package inspection simulates condition findings for building elements.
//
// Each element without a finding gets a condition score derived from its
// age and an injected noise draw, and the score's band decides the
// observation, recommendation and estimated cost.
package inspection

import (
	"fmt"

	"github.com/roach88/stratasim/internal/ecs"
)

// Component kinds owned by the inspection pipeline.
const (
	KindElement ecs.Kind = "inspection.element"
	KindFinding ecs.Kind = "inspection.finding"
)

// SystemFindings is the name of the single inspection system.
const SystemFindings = "inspection.findings"

// BuildingElement is one inspectable part of a building.
type BuildingElement struct {
	Name     string
	Category string
	AgeYears uint32
}

func (BuildingElement) Kind() ecs.Kind { return KindElement }

// SimulatedFinding is attached to an element once it has been inspected.
type SimulatedFinding struct {
	ConditionScore uint8
	Band           Band
	Observation    string
	Recommendation string
	EstimatedCost  uint32
}

func (SimulatedFinding) Kind() ecs.Kind { return KindFinding }

// Report pairs an element with its finding.
type Report struct {
	Element BuildingElement
	Finding SimulatedFinding
}

// Option configures the pipeline.
type Option func(*options)

type options struct {
	noise        NoiseSource
	scheduleOpts []ecs.Option
}

// WithNoise sets the noise source. The default is NewRandomNoise(0).
func WithNoise(src NoiseSource) Option {
	return func(o *options) {
		if src != nil {
			o.noise = src
		}
	}
}

// WithSeed uses a seeded random noise source.
func WithSeed(seed uint64) Option {
	return WithNoise(NewRandomNoise(seed))
}

// WithScheduleOptions passes options through to the underlying schedule.
func WithScheduleOptions(opts ...ecs.Option) Option {
	return func(o *options) {
		o.scheduleOpts = append(o.scheduleOpts, opts...)
	}
}

// NewWorld creates a world with the inspection kinds registered.
func NewWorld() *ecs.World {
	w := ecs.NewWorld()
	ecs.Register[BuildingElement](w)
	ecs.Register[SimulatedFinding](w)
	return w
}

// Seed spawns one entity per element, in order.
func Seed(w *ecs.World, elements []BuildingElement) ([]ecs.Entity, error) {
	entities := make([]ecs.Entity, 0, len(elements))
	for _, el := range elements {
		e, err := w.Spawn(el)
		if err != nil {
			return nil, fmt.Errorf("seed element %q: %w", el.Name, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// FindingSystem returns the system that attaches a finding to every element
// that lacks one.
func FindingSystem(noise NoiseSource) ecs.System {
	return ecs.NewSystem(SystemFindings, func(w *ecs.World, cmd *ecs.Commands) error {
		return ecs.Each(w, func(e ecs.Entity, el *BuildingElement) {
			finding := Classify(ConditionScore(el.AgeYears, noise.Noise()))
			cmd.Logger().Debug("element inspected",
				"entity", e,
				"element", el.Name,
				"score", finding.ConditionScore,
				"band", finding.Band,
			)
			cmd.Insert(e, finding)
		}, ecs.Without(KindFinding))
	})
}

// NewSchedule builds the one-system inspection schedule.
func NewSchedule(opts ...Option) (*ecs.Schedule, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.noise == nil {
		o.noise = NewRandomNoise(0)
	}
	s := ecs.NewSchedule(o.scheduleOpts...)
	if err := s.Add(FindingSystem(o.noise)); err != nil {
		return nil, err
	}
	return s, nil
}

// Results reads back every inspected element in seed order.
// Elements without a finding are omitted.
func Results(w *ecs.World) ([]Report, error) {
	rows, err := ecs.Collect2[BuildingElement, SimulatedFinding](w)
	if err != nil {
		return nil, err
	}
	reports := make([]Report, len(rows))
	for i, r := range rows {
		reports[i] = Report{Element: r.First, Finding: r.Second}
	}
	return reports, nil
}

// Run builds a fresh world, seeds elements, runs once and reads back.
func Run(elements []BuildingElement, opts ...Option) ([]Report, error) {
	w := NewWorld()
	if _, err := Seed(w, elements); err != nil {
		return nil, err
	}
	s, err := NewSchedule(opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Run(w); err != nil {
		return nil, fmt.Errorf("inspection: %w", err)
	}
	return Results(w)
}
