package documents

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/stratasim/internal/ecs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func text(s string) *string { return &s }

func TestRun_DemoDocuments(t *testing.T) {
	reports, err := Run(DemoDocuments())
	require.NoError(t, err)
	require.Len(t, reports, 3)

	budget := reports[0]
	assert.Equal(t, "doc-1", budget.ID)
	assert.Equal(t, "pdf", budget.FileType)
	assert.Equal(t, StatusCompleted, budget.Status)
	require.NotNil(t, budget.Result)
	assert.Equal(t, 7, budget.Result.WordCount)
	assert.Equal(t, []string{"Strata Corp", "Financials"}, budget.Result.KeyEntities)
	assert.Equal(t, 0.85, budget.Result.SentimentScore)

	for _, r := range reports {
		assert.Equal(t, StatusCompleted, r.Status, r.ID)
	}
	assert.Empty(t, reports[1].Result.KeyEntities)
}

func TestRun_EveryDocumentReachesTerminalStatus(t *testing.T) {
	docs := []Document{
		{ID: "ok", Content: text("Strata minutes")},
		{ID: "missing"},
		{ID: "blank", Content: text("   ")},
		{ID: "binary", Content: text("\xfe\xff")},
		{ID: "typed", FileType: "docx", Content: text("Budget")},
	}

	reports, err := Run(docs)
	require.NoError(t, err)
	require.Len(t, reports, len(docs))

	want := map[string]ProcessingStatus{
		"ok":      StatusCompleted,
		"missing": StatusFailed,
		"blank":   StatusCompleted,
		"binary":  StatusFailed,
		"typed":   StatusCompleted,
	}
	for i, r := range reports {
		assert.Equal(t, docs[i].ID, r.ID, "reports keep seed order")
		assert.True(t, r.Status.Terminal(), r.ID)
		assert.Equal(t, want[r.ID], r.Status, r.ID)
		if r.Status == StatusFailed {
			assert.Nil(t, r.Result, "failed document %s must have no result", r.ID)
		} else {
			assert.NotNil(t, r.Result, r.ID)
		}
	}
	assert.Equal(t, "docx", reports[4].FileType)
}

func TestRun_EmptyContentCompletesWithZeroWords(t *testing.T) {
	reports, err := Run([]Document{{ID: "d", Content: text("")}})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, StatusCompleted, reports[0].Status)
	require.NotNil(t, reports[0].Result)
	assert.Equal(t, 0, reports[0].Result.WordCount)
	assert.Empty(t, reports[0].Result.KeyEntities)
}

func TestRun_AnalyzerErrorFailsOnlyThatDocument(t *testing.T) {
	flaky := AnalyzerFunc(func(text string) (AnalysisResult, error) {
		if text == "poison" {
			return AnalysisResult{}, errors.New("analyzer crashed")
		}
		return AnalysisResult{WordCount: 42}, nil
	})

	reports, err := Run([]Document{
		{ID: "a", Content: text("fine")},
		{ID: "b", Content: text("poison")},
		{ID: "c", Content: text("also fine")},
	}, WithAnalyzer(flaky))
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, reports[0].Status)
	assert.Equal(t, StatusFailed, reports[1].Status)
	assert.Equal(t, StatusCompleted, reports[2].Status)
	assert.Equal(t, 42, reports[2].Result.WordCount)
}

func TestSchedule_SystemOrder(t *testing.T) {
	s, err := NewSchedule()
	require.NoError(t, err)
	assert.Equal(t, []string{SystemIngestion, SystemAnalysis}, s.Systems())
}

func TestSchedule_AlreadyTerminalDocumentsUntouched(t *testing.T) {
	w := NewWorld()
	done, err := w.Spawn(DocumentMetadata{ID: "done"}, StatusCompleted, RawContent{Text: "Strata"})
	require.NoError(t, err)

	s, err := NewSchedule()
	require.NoError(t, err)
	require.NoError(t, s.Run(w))

	st, _ := ecs.Get[ProcessingStatus](w, done)
	assert.Equal(t, StatusCompleted, st)
	assert.False(t, w.Has(done, KindAnalysisResult))
}

func TestSchedule_RunsOnce(t *testing.T) {
	w := NewWorld()
	_, err := Seed(w, DemoDocuments())
	require.NoError(t, err)

	s, err := NewSchedule()
	require.NoError(t, err)
	require.NoError(t, s.Run(w))

	err = s.Run(w)
	assert.True(t, ecs.HasCode(err, ecs.ErrCodeScheduleState))
}

func TestResults_ReturnsCopies(t *testing.T) {
	w := NewWorld()
	_, err := Seed(w, DemoDocuments()[:1])
	require.NoError(t, err)
	s, err := NewSchedule()
	require.NoError(t, err)
	require.NoError(t, s.Run(w))

	first, err := Results(w)
	require.NoError(t, err)
	first[0].Result.KeyEntities[0] = "mutated"

	again, err := Results(w)
	require.NoError(t, err)
	assert.Equal(t, "Strata Corp", again[0].Result.KeyEntities[0])
}

func TestProcessingStatus_Advance(t *testing.T) {
	tests := []struct {
		from, to ProcessingStatus
		ok       bool
	}{
		{StatusPending, StatusAnalyzing, true},
		{StatusPending, StatusFailed, true},
		{StatusAnalyzing, StatusCompleted, true},
		{StatusAnalyzing, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusAnalyzing, StatusPending, false},
		{StatusCompleted, StatusAnalyzing, false},
		{StatusFailed, StatusPending, false},
		{StatusCompleted, StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			got, err := tt.from.Advance(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, got)
		})
	}
}

func TestProcessingStatus_Valid(t *testing.T) {
	assert.True(t, StatusAnalyzing.Valid())
	assert.False(t, ProcessingStatus("Archived").Valid())
}
