package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stratasim/internal/documents"
	"github.com/roach88/stratasim/internal/harness"
)

func TestCollector_SystemFinished(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.SystemFinished("a", 2*time.Millisecond, 3)
	c.SystemFinished("a", time.Millisecond, 1)
	c.SystemFinished("b", 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.systemsRun.WithLabelValues("a")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.commandsApplied.WithLabelValues("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.systemsRun.WithLabelValues("b")))

	expected := `
# HELP stratasim_commands_applied_total Deferred commands applied after each system
# TYPE stratasim_commands_applied_total counter
stratasim_commands_applied_total{system="a"} 4
stratasim_commands_applied_total{system="b"} 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "stratasim_commands_applied_total"))
}

func TestNewCollector_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestSummarize(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.SystemFinished("zeta", 500*time.Millisecond, 2)
	c.SystemFinished("alpha", 250*time.Millisecond, 5)
	c.SystemFinished("alpha", 250*time.Millisecond, 0)

	stats, err := Summarize(reg)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, SystemStats{System: "alpha", Runs: 2, CommandsApplied: 5, TotalSeconds: 0.5}, stats[0])
	assert.Equal(t, SystemStats{System: "zeta", Runs: 1, CommandsApplied: 2, TotalSeconds: 0.5}, stats[1])
}

func TestSummarize_EmptyRegistry(t *testing.T) {
	stats, err := Summarize(prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestCollector_ObservesDocumentPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	s, err := harness.DemoScenario(harness.PipelineDocuments, 0)
	require.NoError(t, err)
	_, err = harness.Run(s, harness.WithObserver(c))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.systemsRun.WithLabelValues(documents.SystemIngestion)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.systemsRun.WithLabelValues(documents.SystemAnalysis)))
	// Status moves happen in place; only the three analysis results are
	// deferred inserts.
	assert.Equal(t, 0.0, testutil.ToFloat64(c.commandsApplied.WithLabelValues(documents.SystemIngestion)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.commandsApplied.WithLabelValues(documents.SystemAnalysis)))
}
