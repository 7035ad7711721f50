package harness

import (
	"fmt"

	"github.com/roach88/stratasim/internal/assignment"
	"github.com/roach88/stratasim/internal/documents"
	"github.com/roach88/stratasim/internal/inspection"
)

// DemoScenario builds a scenario from the built-in sample data of a pipeline.
func DemoScenario(pipeline string, seed uint64) (*Scenario, error) {
	s := &Scenario{
		Name:        "demo_" + pipeline,
		Description: "built-in sample data",
		Pipeline:    pipeline,
		Seed:        seed,
	}

	switch pipeline {
	case PipelineDocuments:
		for _, d := range documents.DemoDocuments() {
			s.Documents = append(s.Documents, DocumentSpec{
				ID: d.ID, Filename: d.Filename, FileType: d.FileType, Content: d.Content,
			})
		}
	case PipelineInspection:
		for _, el := range inspection.DemoElements() {
			s.Elements = append(s.Elements, ElementSpec{Name: el.Name, Category: el.Category, AgeYears: el.AgeYears})
		}
	case PipelineAssignment:
		for _, in := range assignment.DemoInspectors() {
			s.Inspectors = append(s.Inspectors, InspectorSpec{
				ID: in.ID, Name: in.Name, Lat: in.Location.Lat, Lng: in.Location.Lng, SkillLevel: in.SkillLevel,
			})
		}
		for _, j := range assignment.DemoJobs() {
			s.Jobs = append(s.Jobs, JobSpec{
				ID: j.ID, Lat: j.Location.Lat, Lng: j.Location.Lng, Priority: j.Priority,
				EstimatedHours: j.EstimatedHours, RequiredSkillLevel: j.RequiredSkillLevel,
			})
		}
	default:
		return nil, fmt.Errorf("unknown pipeline %q", pipeline)
	}
	return s, nil
}

// Pipelines lists every pipeline name in a stable order.
func Pipelines() []string {
	return []string{PipelineDocuments, PipelineInspection, PipelineAssignment}
}
