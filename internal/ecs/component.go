package ecs

import "fmt"

// Kind identifies a component kind. Each kind has exactly one column in a world.
type Kind string

// Component is a typed value attachable to an entity.
//
// Implementations must be value types with a value-receiver Kind method so
// the kind can be read from the zero value.
type Component interface {
	Kind() Kind
}

// kindOf returns the kind of component type T without an instance.
func kindOf[T Component]() Kind {
	var zero T
	return zero.Kind()
}

// storage is the untyped view of a column used by queries and commands.
type storage interface {
	kind() Kind
	has(e Entity) bool
	accepts(c Component) bool
	insertAny(e Entity, c Component) error
	remove(e Entity) bool
	len() int
}

// column is a sparse set holding every value of one component kind.
//
// INVARIANTS:
//   - sparse[owners[i]] == i for every i
//   - an entity appears at most once (one component per kind)
//
// Pointers into dense stay valid until the next structural change to this
// column. Structural changes only happen between systems (command flush) or
// during seeding, so pointers handed out inside a system pass are stable.
type column[T Component] struct {
	k      Kind
	sparse map[Entity]int
	dense  []T
	owners []Entity
}

func newColumn[T Component](k Kind) *column[T] {
	return &column[T]{
		k:      k,
		sparse: make(map[Entity]int),
	}
}

func (c *column[T]) kind() Kind { return c.k }

func (c *column[T]) len() int { return len(c.dense) }

func (c *column[T]) has(e Entity) bool {
	_, ok := c.sparse[e]
	return ok
}

func (c *column[T]) get(e Entity) (*T, bool) {
	i, ok := c.sparse[e]
	if !ok {
		return nil, false
	}
	return &c.dense[i], true
}

// insert attaches v to e, replacing any existing value of this kind.
func (c *column[T]) insert(e Entity, v T) {
	if i, ok := c.sparse[e]; ok {
		c.dense[i] = v
		return
	}
	c.sparse[e] = len(c.dense)
	c.dense = append(c.dense, v)
	c.owners = append(c.owners, e)
}

func (c *column[T]) accepts(comp Component) bool {
	_, ok := comp.(T)
	return ok
}

func (c *column[T]) insertAny(e Entity, comp Component) error {
	v, ok := comp.(T)
	if !ok {
		return &KernelError{
			Code:    ErrCodeKindMismatch,
			Message: fmt.Sprintf("value of type %T does not belong to this column", comp),
			Kind:    c.k,
		}
	}
	c.insert(e, v)
	return nil
}

// remove detaches the value from e using swap-remove.
func (c *column[T]) remove(e Entity) bool {
	i, ok := c.sparse[e]
	if !ok {
		return false
	}
	last := len(c.dense) - 1
	if i != last {
		c.dense[i] = c.dense[last]
		c.owners[i] = c.owners[last]
		c.sparse[c.owners[i]] = i
	}
	var zero T
	c.dense[last] = zero
	c.dense = c.dense[:last]
	c.owners = c.owners[:last]
	delete(c.sparse, e)
	return true
}
