package ecs

import (
	"fmt"
	"log/slog"
)

type opType int

const (
	opSpawn opType = iota
	opInsert
	opRemove
)

func (o opType) String() string {
	switch o {
	case opSpawn:
		return "spawn"
	case opInsert:
		return "insert"
	case opRemove:
		return "remove"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

type command struct {
	op         opType
	entity     Entity
	kind       Kind
	components []Component
}

// Commands buffers structural mutations issued by a system.
//
// Nothing recorded here touches the store until the scheduler flushes the
// buffer after the system returns. Commands are applied in issue order.
type Commands struct {
	world  *World
	ops    []command
	logger *slog.Logger
}

// NewCommands creates an empty buffer bound to w.
func NewCommands(w *World) *Commands {
	return &Commands{world: w, logger: slog.Default()}
}

// Logger returns the logger of the schedule running the current system,
// tagged with the system name. Outside a schedule it is slog.Default().
func (c *Commands) Logger() *slog.Logger {
	return c.logger
}

// Spawn records the creation of an entity with the given components.
// The returned id is reserved now; the entity becomes visible on flush.
func (c *Commands) Spawn(components ...Component) Entity {
	e := c.world.reserve()
	c.ops = append(c.ops, command{op: opSpawn, entity: e, components: components})
	return e
}

// Insert records attaching comp to e.
func (c *Commands) Insert(e Entity, comp Component) {
	c.ops = append(c.ops, command{op: opInsert, entity: e, kind: comp.Kind(), components: []Component{comp}})
}

// Remove records detaching the component of kind k from e.
func (c *Commands) Remove(e Entity, k Kind) {
	c.ops = append(c.ops, command{op: opRemove, entity: e, kind: k})
}

// Len returns the number of pending commands.
func (c *Commands) Len() int {
	return len(c.ops)
}

// Apply flushes every pending command into the world in issue order and
// empties the buffer. It returns the number of commands applied.
//
// The first failing command stops the flush. Commands before it stay applied.
func (c *Commands) Apply() (int, error) {
	applied := 0
	for i, cmd := range c.ops {
		if err := c.applyOne(cmd); err != nil {
			c.ops = nil
			return applied, fmt.Errorf("command %d (%s %s): %w", i, cmd.op, cmd.entity, err)
		}
		applied++
	}
	c.ops = nil
	return applied, nil
}

func (c *Commands) applyOne(cmd command) error {
	w := c.world
	switch cmd.op {
	case opSpawn:
		if err := w.checkComponents(cmd.components); err != nil {
			return err
		}
		w.materialize(cmd.entity)
		for _, comp := range cmd.components {
			if err := w.Insert(cmd.entity, comp); err != nil {
				return err
			}
		}
		return nil
	case opInsert:
		return w.Insert(cmd.entity, cmd.components[0])
	case opRemove:
		return w.Remove(cmd.entity, cmd.kind)
	default:
		return fmt.Errorf("unknown command type: %d", int(cmd.op))
	}
}
