package ecs

import (
	"fmt"
	"slices"
)

// Entity is an opaque identity. It carries no data of its own.
//
// Ids are handed out by the world's logical counter, starting at 1, so the
// zero value never names a live entity.
type Entity uint64

// String renders the entity for logs.
func (e Entity) String() string {
	return fmt.Sprintf("entity(%d)", uint64(e))
}

// World owns every entity and component created during one simulation run.
//
// A World is not safe for concurrent use. Each run builds its own world and
// discards it afterwards.
type World struct {
	next     uint64
	entities []Entity // insertion order
	alive    map[Entity]struct{}
	columns  map[Kind]storage
}

// NewWorld creates an empty world with no registered kinds.
func NewWorld() *World {
	return &World{
		alive:   make(map[Entity]struct{}),
		columns: make(map[Kind]storage),
	}
}

// Register creates the column for component type T and returns its kind.
// Registering the same type twice is a no-op.
func Register[T Component](w *World) Kind {
	k := kindOf[T]()
	if _, ok := w.columns[k]; !ok {
		w.columns[k] = newColumn[T](k)
	}
	return k
}

// Registered reports whether kind k has a column.
func (w *World) Registered(k Kind) bool {
	_, ok := w.columns[k]
	return ok
}

// Spawn creates a new entity carrying the given components.
// Fails without creating anything if a component's kind is not registered
// or its column holds a different Go type.
func (w *World) Spawn(components ...Component) (Entity, error) {
	if err := w.checkComponents(components); err != nil {
		return 0, err
	}
	e := w.reserve()
	w.materialize(e)
	for _, c := range components {
		if err := w.Insert(e, c); err != nil {
			return 0, fmt.Errorf("spawn %s: %w", e, err)
		}
	}
	return e, nil
}

// checkComponents verifies that every component can be stored, so a spawn
// either attaches all of them or leaves the world untouched.
func (w *World) checkComponents(components []Component) error {
	for _, c := range components {
		col, ok := w.columns[c.Kind()]
		if !ok {
			return newUnknownKindError(c.Kind())
		}
		if !col.accepts(c) {
			return &KernelError{
				Code:    ErrCodeKindMismatch,
				Message: fmt.Sprintf("value of type %T does not belong to this column", c),
				Kind:    c.Kind(),
			}
		}
	}
	return nil
}

// reserve allocates the next entity id without adding it to the world.
func (w *World) reserve() Entity {
	w.next++
	return Entity(w.next)
}

// materialize makes a reserved entity visible to queries.
func (w *World) materialize(e Entity) {
	if _, ok := w.alive[e]; ok {
		return
	}
	w.alive[e] = struct{}{}
	w.entities = append(w.entities, e)
}

// Contains reports whether e is a live entity of this world.
func (w *World) Contains(e Entity) bool {
	_, ok := w.alive[e]
	return ok
}

// Insert attaches c to e, replacing an existing component of the same kind.
//
// Inside a system, use Commands.Insert instead so the running pass never
// observes its own structural changes.
func (w *World) Insert(e Entity, c Component) error {
	col, ok := w.columns[c.Kind()]
	if !ok {
		return newUnknownKindError(c.Kind())
	}
	if !w.Contains(e) {
		return &KernelError{
			Code:    ErrCodeUnknownEntity,
			Message: fmt.Sprintf("cannot insert into %s", e),
			Kind:    c.Kind(),
		}
	}
	return col.insertAny(e, c)
}

// Remove detaches the component of kind k from e.
// Removing an absent component is a no-op.
func (w *World) Remove(e Entity, k Kind) error {
	col, ok := w.columns[k]
	if !ok {
		return newUnknownKindError(k)
	}
	col.remove(e)
	return nil
}

// Has reports whether e carries a component of kind k.
func (w *World) Has(e Entity, k Kind) bool {
	col, ok := w.columns[k]
	if !ok {
		return false
	}
	return col.has(e)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.entities)
}

// Count returns the number of components of kind k.
func (w *World) Count(k Kind) (int, error) {
	col, ok := w.columns[k]
	if !ok {
		return 0, newUnknownKindError(k)
	}
	return col.len(), nil
}

// Entities returns a copy of the entity list in insertion order.
func (w *World) Entities() []Entity {
	return slices.Clone(w.entities)
}

// Get returns a copy of e's component of type T.
func Get[T Component](w *World, e Entity) (T, bool) {
	p, ok := GetMut[T](w, e)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// GetMut returns a pointer to e's component of type T for in-place updates.
//
// The pointer is only valid until the next structural change to the world.
// Systems may hold it for the duration of their pass.
func GetMut[T Component](w *World, e Entity) (*T, bool) {
	col, ok := w.columns[kindOf[T]()]
	if !ok {
		return nil, false
	}
	typed, ok := col.(*column[T])
	if !ok {
		return nil, false
	}
	return typed.get(e)
}
