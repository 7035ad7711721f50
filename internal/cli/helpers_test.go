package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const docsScenario = `name: docs
pipeline: documents
documents:
  - { id: d1, filename: budget.pdf, content: "Strata Budget review" }
  - { id: d2, filename: lost.pdf }
assertions:
  - { type: status, document: d1, status: Completed }
  - { type: status, document: d2, status: Failed }
  - { type: entities, document: d1, entities: ["Strata Corp", "Financials"] }
`

const inspectionScenario = `name: insp
pipeline: inspection
seed: 3
elements:
  - { name: Roof, category: Envelope, age_years: 18 }
  - { name: Boiler, category: Mechanical, age_years: 5 }
  - { name: Lobby, category: Cosmetic, age_years: 10 }
assertions:
  - { type: count, count: 3 }
`

const assignmentScenario = `name:     "assign"
pipeline: "assignment"
inspectors: [
	{id: "A", lat: 49.2827, lng: -123.1207, skill_level: 5},
	{id: "B", lat: 49.2000, lng: -123.0000, skill_level: 3},
]
jobs: [
	{id: "X", lat: 49.2800, lng: -123.1100, priority: 2, estimated_hours: 2.0, required_skill_level: 3},
	{id: "Z", lat: 49.2800, lng: -123.1100, priority: 1, estimated_hours: 1.0, required_skill_level: 9},
]
assertions: [
	{type: "assigned", job: "X", inspector: "A"},
	{type: "unassigned", job: "Z"},
]
`

const failingScenario = `name: failing
pipeline: documents
documents:
  - { id: d1, filename: a.pdf, content: "hello" }
assertions:
  - { type: status, document: d1, status: Failed }
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// scenarioDir writes the three passing scenarios into a fresh directory.
func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "docs.yaml", docsScenario)
	writeFile(t, dir, "insp.yml", inspectionScenario)
	writeFile(t, dir, "assign.cue", assignmentScenario)
	return dir
}

// execute runs the root command with args and returns stdout, stderr and the
// command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeResponse parses a JSON envelope and decodes its data into v.
func decodeResponse(t *testing.T, raw string, v any) CLIResponse {
	t.Helper()
	var envelope struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope), raw)
	if v != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, v))
	}
	return envelope.CLIResponse
}
