package ecs

import (
	"fmt"
	"log/slog"
	"time"
)

// State is the lifecycle state of a Schedule.
type State int

const (
	// StateIdle means the pipeline is built but has not run.
	StateIdle State = iota
	// StateRunning means systems are executing.
	StateRunning
	// StateDone means every system ran and every buffer was flushed,
	// or the run stopped on a hard error.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// System is one ordered pass over the world.
//
// Run may read and mutate component values in place. Structural changes
// must be recorded on cmd; they are applied after Run returns.
// Returning an error aborts the schedule, so only return errors for wiring
// bugs. Bad entity data is recorded as component state.
type System interface {
	Name() string
	Run(w *World, cmd *Commands) error
}

type funcSystem struct {
	name string
	fn   func(w *World, cmd *Commands) error
}

func (s funcSystem) Name() string { return s.name }

func (s funcSystem) Run(w *World, cmd *Commands) error { return s.fn(w, cmd) }

// NewSystem wraps a function as a named System.
func NewSystem(name string, fn func(w *World, cmd *Commands) error) System {
	return funcSystem{name: name, fn: fn}
}

// Observer receives a callback after each system's buffer is flushed.
type Observer interface {
	SystemFinished(name string, elapsed time.Duration, applied int)
}

// Option configures a Schedule.
type Option func(*Schedule)

// WithObserver adds an observer notified after every system.
func WithObserver(o Observer) Option {
	return func(s *Schedule) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithLogger sets the logger used for schedule lifecycle events. Systems
// reach the same logger through Commands.Logger.
// The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Schedule) {
		if l != nil {
			s.logger = l
		}
	}
}

// SystemOption configures one system registration.
type SystemOption func(*entry)

// After declares that the system must run after the named systems.
// Each name must already be registered on the schedule.
func After(names ...string) SystemOption {
	return func(e *entry) {
		e.after = append(e.after, names...)
	}
}

type entry struct {
	system System
	after  []string
}

// Schedule runs an ordered list of systems exactly once.
//
// INVARIANTS:
//   - systems run strictly in registration order
//   - each system's commands are flushed before the next system starts
//   - a schedule runs at most once; it is discarded with its world
type Schedule struct {
	systems   []entry
	index     map[string]int
	state     State
	observers []Observer
	logger    *slog.Logger
}

// NewSchedule creates an idle schedule with no systems.
func NewSchedule(opts ...Option) *Schedule {
	s := &Schedule{
		index:  make(map[string]int),
		state:  StateIdle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a system to the schedule.
//
// Registration validates that:
//   - the system name is non-empty and unique
//   - every After dependency names a system registered earlier
//
// Because dependencies must already be present, declaration order is always
// a valid execution order and no graph resolution is needed.
func (s *Schedule) Add(sys System, opts ...SystemOption) error {
	if sys == nil {
		return &KernelError{Code: ErrCodeInvalidSystem, Message: "system is nil"}
	}
	if s.state != StateIdle {
		return &KernelError{
			Code:    ErrCodeScheduleState,
			Message: fmt.Sprintf("cannot add systems to a %s schedule", s.state),
			System:  sys.Name(),
		}
	}
	name := sys.Name()
	if name == "" {
		return &KernelError{Code: ErrCodeInvalidSystem, Message: "system name is required"}
	}
	if _, dup := s.index[name]; dup {
		return &KernelError{Code: ErrCodeInvalidSystem, Message: "duplicate system name", System: name}
	}

	e := entry{system: sys}
	for _, opt := range opts {
		opt(&e)
	}
	for _, dep := range e.after {
		if _, ok := s.index[dep]; !ok {
			return &KernelError{
				Code:    ErrCodeInvalidSystem,
				Message: fmt.Sprintf("dependency %q must be registered before this system", dep),
				System:  name,
			}
		}
	}

	s.index[name] = len(s.systems)
	s.systems = append(s.systems, e)
	return nil
}

// Systems returns system names in execution order.
func (s *Schedule) Systems() []string {
	names := make([]string, len(s.systems))
	for i, e := range s.systems {
		names[i] = e.system.Name()
	}
	return names
}

// State returns the current lifecycle state.
func (s *Schedule) State() State {
	return s.state
}

// Run executes every system once against w, in order.
//
// After each system returns, its command buffer is applied before the next
// system starts. A system error or a failed flush stops the run and is
// returned wrapped with the system name; the schedule still ends in
// StateDone. Running a schedule that is not idle fails with
// ErrCodeScheduleState.
func (s *Schedule) Run(w *World) error {
	if s.state != StateIdle {
		return &KernelError{
			Code:    ErrCodeScheduleState,
			Message: fmt.Sprintf("schedule already %s", s.state),
		}
	}
	s.state = StateRunning
	defer func() { s.state = StateDone }()

	s.logger.Info("schedule starting", "systems", len(s.systems), "entities", w.Len())

	for _, e := range s.systems {
		name := e.system.Name()
		start := time.Now()

		cmd := NewCommands(w)
		cmd.logger = s.logger.With("system", name)
		if err := e.system.Run(w, cmd); err != nil {
			s.logger.Error("system failed", "system", name, "error", err)
			return fmt.Errorf("system %s: %w", name, err)
		}

		pending := cmd.Len()
		applied, err := cmd.Apply()
		if err != nil {
			s.logger.Error("command flush failed",
				"system", name,
				"pending", pending,
				"applied", applied,
				"error", err,
			)
			return fmt.Errorf("system %s: flush: %w", name, err)
		}

		elapsed := time.Since(start)
		s.logger.Debug("system finished",
			"system", name,
			"commands", applied,
			"entities", w.Len(),
			"elapsed", elapsed,
		)
		for _, o := range s.observers {
			o.SystemFinished(name, elapsed, applied)
		}
	}

	s.logger.Info("schedule finished", "systems", len(s.systems), "entities", w.Len())
	return nil
}
