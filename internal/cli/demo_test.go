package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoText(t *testing.T) {
	tests := []struct {
		pipeline string
		want     []string
	}{
		{"documents", []string{"doc-1  Budget_2024.pdf", "entities=[Strata Corp, Financials]"}},
		{"inspection", []string{"Asphalt Shingle Roof", "Lobby Interiors"}},
		{"assignment", []string{"job-A -> insp-1", "job-B -> insp-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.pipeline, func(t *testing.T) {
			out, _, err := execute(t, "demo", tt.pipeline)
			require.NoError(t, err)
			assert.Contains(t, out, "demo_"+tt.pipeline)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestDemoJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "demo", "inspection", "--seed", "42")
	require.NoError(t, err)

	var run ScenarioRun
	resp := decodeResponse(t, out, &run)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "demo_inspection", run.Name)
	assert.Equal(t, uint64(42), run.Seed)
	assert.Len(t, run.Rows, 4)
}

func TestDemoSeedIsDeterministic(t *testing.T) {
	first, _, err := execute(t, "--format", "json", "demo", "inspection", "--seed", "5")
	require.NoError(t, err)
	second, _, err := execute(t, "--format", "json", "demo", "inspection", "--seed", "5")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDemoRejectsUnknownPipeline(t *testing.T) {
	_, _, err := execute(t, "demo", "payroll")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
