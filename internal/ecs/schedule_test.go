package ecs

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	names   []string
	applied []int
}

func (o *recordingObserver) SystemFinished(name string, _ time.Duration, applied int) {
	o.names = append(o.names, name)
	o.applied = append(o.applied, applied)
}

func TestSchedule_StateMachine(t *testing.T) {
	w := newTestWorld(t)
	s := NewSchedule()

	var seen State
	require.NoError(t, s.Add(NewSystem("watcher", func(*World, *Commands) error {
		seen = s.State()
		return nil
	})))

	assert.Equal(t, StateIdle, s.State())
	require.NoError(t, s.Run(w))
	assert.Equal(t, StateRunning, seen)
	assert.Equal(t, StateDone, s.State())
}

func TestSchedule_RunsOnceInDeclaredOrder(t *testing.T) {
	w := newTestWorld(t)
	s := NewSchedule()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		require.NoError(t, s.Add(NewSystem(name, func(*World, *Commands) error {
			order = append(order, name)
			return nil
		})))
	}

	require.NoError(t, s.Run(w))
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, []string{"first", "second", "third"}, s.Systems())

	err := s.Run(w)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeScheduleState))
	assert.Len(t, order, 3, "a finished schedule must not run again")
}

func TestSchedule_LaterSystemsSeeFlushedCommands(t *testing.T) {
	w := newTestWorld(t)
	e, _ := w.Spawn(position{})
	s := NewSchedule()

	require.NoError(t, s.Add(NewSystem("tagger", func(w *World, cmd *Commands) error {
		return Each(w, func(e Entity, _ *position) {
			cmd.Insert(e, marker{})
		})
	})))

	var observed bool
	require.NoError(t, s.Add(NewSystem("reader", func(w *World, _ *Commands) error {
		observed = w.Has(e, "marker")
		return nil
	}), After("tagger")))

	require.NoError(t, s.Run(w))
	assert.True(t, observed)
}

func TestSchedule_SystemDoesNotSeeOwnCommands(t *testing.T) {
	w := newTestWorld(t)
	for i := 0; i < 3; i++ {
		_, _ = w.Spawn(position{X: i})
	}
	s := NewSchedule()

	visits := 0
	require.NoError(t, s.Add(NewSystem("spawner", func(w *World, cmd *Commands) error {
		return Each(w, func(_ Entity, p *position) {
			visits++
			cmd.Spawn(position{X: p.X + 100})
		})
	})))

	require.NoError(t, s.Run(w))
	assert.Equal(t, 3, visits)
	assert.Equal(t, 6, w.Len())
}

func TestSchedule_AddValidation(t *testing.T) {
	noop := func(*World, *Commands) error { return nil }

	t.Run("nil system", func(t *testing.T) {
		s := NewSchedule()
		var sys System
		err := s.Add(sys)
		assert.True(t, HasCode(err, ErrCodeInvalidSystem))
		assert.Empty(t, s.Systems())
	})

	t.Run("empty name", func(t *testing.T) {
		s := NewSchedule()
		err := s.Add(NewSystem("", noop))
		assert.True(t, HasCode(err, ErrCodeInvalidSystem))
	})

	t.Run("duplicate name", func(t *testing.T) {
		s := NewSchedule()
		require.NoError(t, s.Add(NewSystem("a", noop)))
		err := s.Add(NewSystem("a", noop))
		assert.True(t, HasCode(err, ErrCodeInvalidSystem))
	})

	t.Run("dependency declared later", func(t *testing.T) {
		s := NewSchedule()
		err := s.Add(NewSystem("analysis", noop), After("ingestion"))
		assert.True(t, HasCode(err, ErrCodeInvalidSystem))
		assert.Empty(t, s.Systems())
	})

	t.Run("add after run", func(t *testing.T) {
		s := NewSchedule()
		require.NoError(t, s.Run(NewWorld()))
		err := s.Add(NewSystem("late", noop))
		assert.True(t, HasCode(err, ErrCodeScheduleState))
	})
}

func TestSchedule_HardErrorStopsRun(t *testing.T) {
	w := newTestWorld(t)
	s := NewSchedule()
	boom := errors.New("boom")

	ranSecond := false
	require.NoError(t, s.Add(NewSystem("broken", func(*World, *Commands) error { return boom })))
	require.NoError(t, s.Add(NewSystem("second", func(*World, *Commands) error {
		ranSecond = true
		return nil
	})))

	err := s.Run(w)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "system broken")
	assert.False(t, ranSecond)
	assert.Equal(t, StateDone, s.State())
}

func TestSchedule_UnknownKindInSystemPropagates(t *testing.T) {
	w := newTestWorld(t)
	s := NewSchedule()
	require.NoError(t, s.Add(NewSystem("bad-query", func(w *World, _ *Commands) error {
		_, err := w.Match(NewQuery(With("velocity")))
		return err
	})))

	err := s.Run(w)
	assert.True(t, IsUnknownKindError(err))
}

func TestSchedule_FlushErrorPropagates(t *testing.T) {
	w := newTestWorld(t)
	s := NewSchedule()
	require.NoError(t, s.Add(NewSystem("ghost-writer", func(_ *World, cmd *Commands) error {
		cmd.Insert(Entity(404), marker{})
		return nil
	})))

	err := s.Run(w)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeUnknownEntity))
	assert.Contains(t, err.Error(), "flush")
}

func TestSchedule_ObserverNotified(t *testing.T) {
	w := newTestWorld(t)
	e, _ := w.Spawn()
	obs := &recordingObserver{}
	s := NewSchedule(WithObserver(obs), WithObserver(nil))

	require.NoError(t, s.Add(NewSystem("two-inserts", func(_ *World, cmd *Commands) error {
		cmd.Insert(e, marker{})
		cmd.Insert(e, health{HP: 1})
		return nil
	})))
	require.NoError(t, s.Add(NewSystem("idle", func(*World, *Commands) error { return nil })))

	require.NoError(t, s.Run(w))
	assert.Equal(t, []string{"two-inserts", "idle"}, obs.names)
	assert.Equal(t, []int{2, 0}, obs.applied)
}

func TestSchedule_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSchedule(WithLogger(logger))
	require.NoError(t, s.Add(NewSystem("quiet", func(*World, *Commands) error { return nil })))

	require.NoError(t, s.Run(newTestWorld(t)))
	out := buf.String()
	assert.Contains(t, out, "schedule starting")
	assert.Contains(t, out, "system=quiet")
	assert.Contains(t, out, "schedule finished")
}

func TestSchedule_SystemsLogThroughScheduleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewSchedule(WithLogger(logger))
	require.NoError(t, s.Add(NewSystem("loud", func(_ *World, cmd *Commands) error {
		cmd.Logger().Info("row handled", "row", 7)
		return nil
	})))

	require.NoError(t, s.Run(newTestWorld(t)))
	assert.Contains(t, buf.String(), "msg=\"row handled\" system=loud row=7")
}

func TestCommands_LoggerDefaultsOutsideSchedule(t *testing.T) {
	cmd := NewCommands(newTestWorld(t))
	assert.Same(t, slog.Default(), cmd.Logger())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(9)", State(9).String())
}
