package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Pipeline names accepted in scenario files.
const (
	PipelineDocuments  = "documents"
	PipelineInspection = "inspection"
	PipelineAssignment = "assignment"
)

// Scenario defines one simulation run and the checks applied to its output.
// Scenarios are written in YAML or CUE; both decode into this struct.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name" validate:"required"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Pipeline selects which pipeline the seed data feeds.
	Pipeline string `yaml:"pipeline" json:"pipeline" validate:"required,oneof=documents inspection assignment"`

	// Seed drives the random noise source of the inspection pipeline.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Noise, when set, replaces random noise with a fixed value.
	Noise *float64 `yaml:"noise,omitempty" json:"noise,omitempty" validate:"omitempty,gte=0,lt=20"`

	Documents  []DocumentSpec  `yaml:"documents,omitempty" json:"documents,omitempty" validate:"dive"`
	Elements   []ElementSpec   `yaml:"elements,omitempty" json:"elements,omitempty" validate:"dive"`
	Inspectors []InspectorSpec `yaml:"inspectors,omitempty" json:"inspectors,omitempty" validate:"dive"`
	Jobs       []JobSpec       `yaml:"jobs,omitempty" json:"jobs,omitempty" validate:"dive"`

	// Assertions validate the read-back rows.
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty" validate:"dive"`
}

// DocumentSpec seeds one document. A missing content field seeds the
// document without raw content.
type DocumentSpec struct {
	ID       string  `yaml:"id" json:"id" validate:"required"`
	Filename string  `yaml:"filename,omitempty" json:"filename,omitempty"`
	FileType string  `yaml:"file_type,omitempty" json:"file_type,omitempty"`
	Content  *string `yaml:"content,omitempty" json:"content,omitempty"`
}

// ElementSpec seeds one building element.
type ElementSpec struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	AgeYears uint32 `yaml:"age_years" json:"age_years"`
}

// InspectorSpec seeds one inspector.
// Coordinates are not range checked; non-finite values are excluded at run time.
type InspectorSpec struct {
	ID         string  `yaml:"id" json:"id" validate:"required"`
	Name       string  `yaml:"name,omitempty" json:"name,omitempty"`
	Lat        float64 `yaml:"lat" json:"lat"`
	Lng        float64 `yaml:"lng" json:"lng"`
	SkillLevel uint8   `yaml:"skill_level" json:"skill_level"`
}

// JobSpec seeds one inspection job.
type JobSpec struct {
	ID                 string  `yaml:"id" json:"id" validate:"required"`
	Lat                float64 `yaml:"lat" json:"lat"`
	Lng                float64 `yaml:"lng" json:"lng"`
	Priority           uint8   `yaml:"priority" json:"priority"`
	EstimatedHours     float64 `yaml:"estimated_hours,omitempty" json:"estimated_hours,omitempty" validate:"gte=0"`
	RequiredSkillLevel uint8   `yaml:"required_skill_level" json:"required_skill_level"`
}

// Assertion validates the read-back rows of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "status": document has the given processing status
	// - "entities": document extracted exactly the given entities
	// - "band": element was classified into the given band
	// - "assigned": job was assigned to the given inspector
	// - "unassigned": job has no assignment
	// - "count": read-back has exactly Count rows
	Type string `yaml:"type" json:"type" validate:"required,oneof=status entities band assigned unassigned count"`

	// Document is the document id (status, entities).
	Document string `yaml:"document,omitempty" json:"document,omitempty"`

	// Element is the element name (band).
	Element string `yaml:"element,omitempty" json:"element,omitempty"`

	// Job is the job id (assigned, unassigned).
	Job string `yaml:"job,omitempty" json:"job,omitempty"`

	Status    string   `yaml:"status,omitempty" json:"status,omitempty"`
	Entities  []string `yaml:"entities,omitempty" json:"entities,omitempty"`
	Band      string   `yaml:"band,omitempty" json:"band,omitempty"`
	Inspector string   `yaml:"inspector,omitempty" json:"inspector,omitempty"`

	// Count is a pointer so that an expected count of zero is expressible.
	Count *int `yaml:"count,omitempty" json:"count,omitempty" validate:"omitempty,gte=0"`
}

// Assertion type constants.
const (
	AssertStatus     = "status"
	AssertEntities   = "entities"
	AssertBand       = "band"
	AssertAssigned   = "assigned"
	AssertUnassigned = "unassigned"
	AssertCount      = "count"
)

// scenarioValidate checks struct tags on decoded scenarios.
var scenarioValidate = validator.New()

//go:embed schema.cue
var scenarioSchema string

// LoadScenario reads a scenario file. Files ending in .cue are decoded
// through the CUE schema; everything else is parsed as YAML.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return ParseCUE(filepath.Base(path), data)
	}
	return ParseYAML(data)
}

// ParseYAML parses a YAML scenario.
// Unknown fields are rejected so typos like "assertion:" fail loudly.
func ParseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := Validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ParseCUE evaluates a CUE scenario against the embedded #Scenario schema.
// The schema is closed, so unknown fields are rejected as in YAML.
func ParseCUE(filename string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", formatCUEError(err))
	}

	unified := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", formatCUEError(err))
	}

	var scenario Scenario
	if err := unified.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", formatCUEError(err))
	}
	if err := Validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// EncodeYAML renders s as YAML. The journal stores scenarios in this form
// because YAML, unlike JSON, can carry non-finite coordinates.
func (s *Scenario) EncodeYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode scenario: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode scenario: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks struct tags and then the per-assertion requirements.
func Validate(s *Scenario) error {
	if err := scenarioValidate.Struct(s); err != nil {
		return err
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertStatus:
		if a.Document == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: document and status are required for status", index)
		}
	case AssertEntities:
		if a.Document == "" {
			return fmt.Errorf("assertions[%d]: document is required for entities", index)
		}
	case AssertBand:
		if a.Element == "" || a.Band == "" {
			return fmt.Errorf("assertions[%d]: element and band are required for band", index)
		}
	case AssertAssigned:
		if a.Job == "" || a.Inspector == "" {
			return fmt.Errorf("assertions[%d]: job and inspector are required for assigned", index)
		}
	case AssertUnassigned:
		if a.Job == "" {
			return fmt.Errorf("assertions[%d]: job is required for unassigned", index)
		}
	case AssertCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// CUEError carries the source position of a CUE evaluation failure.
type CUEError struct {
	Message string
	File    string
	Line    int
	Column  int
}

func (e *CUEError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return e.Message
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	ce := &CUEError{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		ce.File = positions[0].Filename()
		ce.Line = positions[0].Line()
		ce.Column = positions[0].Column()
	}
	return ce
}
