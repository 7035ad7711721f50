package assignment

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/stratasim/internal/ecs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	inspectorA = Inspector{ID: "A", Location: Location{Lat: 49.2827, Lng: -123.1207}, SkillLevel: 5}
	inspectorB = Inspector{ID: "B", Location: Location{Lat: 49.1666, Lng: -123.1336}, SkillLevel: 3}
	jobX       = InspectionJob{ID: "X", Location: Location{Lat: 49.2606, Lng: -123.2460}, Priority: 2, EstimatedHours: 2, RequiredSkillLevel: 2}
	jobY       = InspectionJob{ID: "Y", Location: Location{Lat: 49.1304, Lng: -123.0697}, Priority: 5, EstimatedHours: 4, RequiredSkillLevel: 3}
)

func TestScore_ConcreteScenario(t *testing.T) {
	tests := []struct {
		name string
		in   Inspector
		job  InspectionJob
		want float64
	}{
		{"A for X", inspectorA, jobX, 108.72765963673241},
		{"B for X", inspectorB, jobX, 108.53474370842513},
		{"A for Y", inspectorA, jobY, 123.39387765098672},
		{"B for Y", inspectorB, jobY, 124.26558526703228},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.in, tt.job), 1e-9)
		})
	}
}

func TestRun_ConcreteScenario(t *testing.T) {
	reports, err := Run([]Inspector{inspectorA, inspectorB}, []InspectionJob{jobX, jobY})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	x, y := reports[0], reports[1]
	require.NotNil(t, x.Result)
	require.NotNil(t, y.Result)

	// The winner is whichever inspector scores higher by the formula.
	scoreAX, scoreBX := Score(inspectorA, jobX), Score(inspectorB, jobX)
	require.Greater(t, scoreAX, scoreBX)
	assert.Equal(t, "A", x.Result.AssignedInspectorID)
	assert.InDelta(t, 108.72765963673241, x.Result.Score, 1e-9)

	scoreAY, scoreBY := Score(inspectorA, jobY), Score(inspectorB, jobY)
	require.Greater(t, scoreBY, scoreAY)
	assert.Equal(t, "B", y.Result.AssignedInspectorID)
	assert.InDelta(t, 124.26558526703228, y.Result.Score, 1e-9)
}

func TestRun_InfeasibleJobStaysUnassigned(t *testing.T) {
	hard := InspectionJob{ID: "hard", Location: Location{}, Priority: 9, RequiredSkillLevel: 6}

	reports, err := Run([]Inspector{inspectorA, inspectorB}, []InspectionJob{hard, jobX})
	require.NoError(t, err)

	assert.Nil(t, reports[0].Result)
	require.NotNil(t, reports[1].Result)
}

func TestRun_EveryAssignmentIsFeasible(t *testing.T) {
	inspectors := []Inspector{
		{ID: "junior", Location: Location{Lat: 0, Lng: 0}, SkillLevel: 1},
		{ID: "mid", Location: Location{Lat: 5, Lng: 5}, SkillLevel: 3},
		{ID: "senior", Location: Location{Lat: 10, Lng: 10}, SkillLevel: 5},
	}
	jobs := []InspectionJob{
		{ID: "j1", Location: Location{Lat: 0.1, Lng: 0}, RequiredSkillLevel: 1},
		{ID: "j2", Location: Location{Lat: 0.1, Lng: 0}, RequiredSkillLevel: 2},
		{ID: "j3", Location: Location{Lat: 0.1, Lng: 0}, RequiredSkillLevel: 4},
		{ID: "j4", Location: Location{Lat: 0.1, Lng: 0}, RequiredSkillLevel: 7},
	}
	skill := map[string]uint8{"junior": 1, "mid": 3, "senior": 5}

	reports, err := Run(inspectors, jobs)
	require.NoError(t, err)

	want := map[string]string{"j1": "junior", "j2": "mid", "j3": "senior"}
	for _, r := range reports {
		if r.Job.ID == "j4" {
			assert.Nil(t, r.Result)
			continue
		}
		require.NotNil(t, r.Result, r.Job.ID)
		assert.Equal(t, want[r.Job.ID], r.Result.AssignedInspectorID, r.Job.ID)
		assert.GreaterOrEqual(t, skill[r.Result.AssignedInspectorID], r.Job.RequiredSkillLevel)
	}
}

func TestRun_TieGoesToFirstInspector(t *testing.T) {
	job := InspectionJob{ID: "mid", Location: Location{Lat: 0, Lng: 0}, RequiredSkillLevel: 1}
	inspectors := []Inspector{
		{ID: "east", Location: Location{Lat: 0, Lng: 1}, SkillLevel: 1},
		{ID: "west", Location: Location{Lat: 0, Lng: -1}, SkillLevel: 1},
	}

	reports, err := Run(inspectors, []InspectionJob{job})
	require.NoError(t, err)
	require.NotNil(t, reports[0].Result)
	assert.Equal(t, "east", reports[0].Result.AssignedInspectorID)

	reports, err = Run([]Inspector{inspectors[1], inspectors[0]}, []InspectionJob{job})
	require.NoError(t, err)
	assert.Equal(t, "west", reports[0].Result.AssignedInspectorID)
}

func TestRun_NegativeScoresStillAssign(t *testing.T) {
	far := Inspector{ID: "far", Location: Location{Lat: 1000, Lng: 0}, SkillLevel: 1}
	job := InspectionJob{ID: "remote", Location: Location{}, RequiredSkillLevel: 1}

	reports, err := Run([]Inspector{far}, []InspectionJob{job})
	require.NoError(t, err)
	require.NotNil(t, reports[0].Result)
	assert.Equal(t, "far", reports[0].Result.AssignedInspectorID)
	assert.InDelta(t, -9900.0, reports[0].Result.Score, 1e-9)
}

func TestRun_NonFiniteCoordinatesExcluded(t *testing.T) {
	lost := Inspector{ID: "lost", Location: Location{Lat: math.NaN(), Lng: 0}, SkillLevel: 9}
	good := Inspector{ID: "good", Location: Location{Lat: 3, Lng: 3}, SkillLevel: 1}
	broken := InspectionJob{ID: "broken", Location: Location{Lat: math.Inf(1)}, RequiredSkillLevel: 1}
	fine := InspectionJob{ID: "fine", Location: Location{}, RequiredSkillLevel: 1}

	reports, err := Run([]Inspector{lost, good}, []InspectionJob{broken, fine})
	require.NoError(t, err)

	assert.Nil(t, reports[0].Result)
	require.NotNil(t, reports[1].Result)
	assert.Equal(t, "good", reports[1].Result.AssignedInspectorID)
}

func TestRun_NoInspectors(t *testing.T) {
	reports, err := Run(nil, []InspectionJob{jobX})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Nil(t, reports[0].Result)
}

func TestAssignmentSystem_LeavesInspectorsAndPriorResults(t *testing.T) {
	w := NewWorld()
	require.NoError(t, Seed(w, []Inspector{inspectorA}, nil))
	prior := AssignmentResult{AssignedInspectorID: "someone-else", Score: 1}
	done, err := w.Spawn(jobX, prior)
	require.NoError(t, err)

	s, err := NewSchedule()
	require.NoError(t, err)
	require.NoError(t, s.Run(w))

	got, _ := ecs.Get[AssignmentResult](w, done)
	assert.Equal(t, prior, got, "a job is assigned at most once")

	rows, err := ecs.Collect[Inspector](w)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inspectorA, rows[0].Value)
}

func TestAssigned_OmitsOpenJobs(t *testing.T) {
	w := NewWorld()
	hard := InspectionJob{ID: "hard", RequiredSkillLevel: 9}
	require.NoError(t, Seed(w, []Inspector{inspectorA}, []InspectionJob{hard, jobX}))

	s, err := NewSchedule()
	require.NoError(t, err)
	require.NoError(t, s.Run(w))

	rows, err := Assigned(w)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "X", rows[0].First.ID)
}

func TestRun_DemoData(t *testing.T) {
	reports, err := Run(DemoInspectors(), DemoJobs())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "insp-1", reports[0].Result.AssignedInspectorID)
	assert.Equal(t, "insp-2", reports[1].Result.AssignedInspectorID)
}

func TestFeasible(t *testing.T) {
	assert.True(t, Feasible(Inspector{SkillLevel: 3}, InspectionJob{RequiredSkillLevel: 3}))
	assert.False(t, Feasible(Inspector{SkillLevel: 2}, InspectionJob{RequiredSkillLevel: 3}))
}

func TestRun_LogsThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := Run([]Inspector{inspectorA}, []InspectionJob{jobX, {ID: "Z", RequiredSkillLevel: 9}},
		WithScheduleOptions(ecs.WithLogger(logger)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "msg=\"job assigned\" system=assignment.greedy job=X inspector=A")
	assert.Contains(t, out, "msg=\"job unassigned\" system=assignment.greedy job=Z")
}
