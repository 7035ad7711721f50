package harness

import (
	"fmt"
	"slices"
)

// EvaluateAssertions checks every assertion against the read-back rows.
// It returns one message per failed assertion; an empty slice means all
// assertions passed.
func EvaluateAssertions(rows []Row, assertions []Assertion) []string {
	errs := []string{}
	for i, a := range assertions {
		if err := evaluateAssertion(rows, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(rows []Row, a Assertion) error {
	switch a.Type {
	case AssertStatus:
		return assertStatus(rows, a.Document, a.Status)
	case AssertEntities:
		return assertEntities(rows, a.Document, a.Entities)
	case AssertBand:
		return assertBand(rows, a.Element, a.Band)
	case AssertAssigned:
		return assertAssigned(rows, a.Job, a.Inspector)
	case AssertUnassigned:
		return assertUnassigned(rows, a.Job)
	case AssertCount:
		return assertCount(rows, a.Count)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// findRow returns the first row whose key field equals value.
func findRow(rows []Row, key, value string) (Row, bool) {
	for _, r := range rows {
		if v, ok := r[key].(string); ok && v == value {
			return r, true
		}
	}
	return nil, false
}

func assertStatus(rows []Row, doc, want string) error {
	row, ok := findRow(rows, "id", doc)
	if !ok {
		return fmt.Errorf("document %q not found", doc)
	}
	if got := row["status"]; got != want {
		return fmt.Errorf("document %q: expected status %q, got %q", doc, want, got)
	}
	return nil
}

func assertEntities(rows []Row, doc string, want []string) error {
	row, ok := findRow(rows, "id", doc)
	if !ok {
		return fmt.Errorf("document %q not found", doc)
	}
	raw, ok := row["key_entities"]
	if !ok {
		return fmt.Errorf("document %q has no analysis result", doc)
	}
	got, _ := raw.([]string)
	if !slices.Equal(got, want) {
		return fmt.Errorf("document %q: expected entities %v, got %v", doc, want, got)
	}
	return nil
}

func assertBand(rows []Row, element, want string) error {
	row, ok := findRow(rows, "name", element)
	if !ok {
		return fmt.Errorf("element %q has no finding", element)
	}
	if got := row["band"]; got != want {
		return fmt.Errorf("element %q: expected band %q, got %q", element, want, got)
	}
	return nil
}

func assertAssigned(rows []Row, job, want string) error {
	row, ok := findRow(rows, "id", job)
	if !ok {
		return fmt.Errorf("job %q not found", job)
	}
	got, ok := row["assigned_inspector_id"]
	if !ok {
		return fmt.Errorf("job %q: expected inspector %q, got no assignment", job, want)
	}
	if got != want {
		return fmt.Errorf("job %q: expected inspector %q, got %q", job, want, got)
	}
	return nil
}

func assertUnassigned(rows []Row, job string) error {
	row, ok := findRow(rows, "id", job)
	if !ok {
		return fmt.Errorf("job %q not found", job)
	}
	if got, ok := row["assigned_inspector_id"]; ok {
		return fmt.Errorf("job %q: expected no assignment, got inspector %q", job, got)
	}
	return nil
}

func assertCount(rows []Row, want *int) error {
	if want == nil {
		return fmt.Errorf("count is required")
	}
	if len(rows) != *want {
		return fmt.Errorf("expected %d rows, got %d", *want, len(rows))
	}
	return nil
}
