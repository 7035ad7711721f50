package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden files hold the canonical output bytes. To regenerate:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_DocumentsDemo(t *testing.T) {
	result, err := RunWithGolden(t, mustLoad(t, "testdata/scenarios/documents_demo.yaml"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunWithGolden_InspectionFixedNoise(t *testing.T) {
	result, err := RunWithGolden(t, mustLoad(t, "testdata/scenarios/inspection_fixed_noise.yaml"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertGolden_ReusesComputedResult(t *testing.T) {
	s := mustLoad(t, "testdata/scenarios/documents_demo.yaml")
	result, err := Run(s)
	require.NoError(t, err)

	AssertGolden(t, "documents_demo", result)
}
