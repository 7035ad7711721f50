package ecs

// Term is one predicate of a query shape.
//
// This is a sealed interface: only With and Without produce terms, so the
// matcher can switch over every case.
type Term interface {
	queryTerm() // Marker method - seals interface to this package
}

type withTerm struct {
	kinds []Kind
}

func (withTerm) queryTerm() {}

type withoutTerm struct {
	kinds []Kind
}

func (withoutTerm) queryTerm() {}

// With requires every listed kind to be present.
func With(kinds ...Kind) Term {
	return withTerm{kinds: kinds}
}

// Without requires every listed kind to be absent.
func Without(kinds ...Kind) Term {
	return withoutTerm{kinds: kinds}
}

// Query is a conjunction of presence and absence predicates.
//
// An empty query matches every entity. A kind listed in both With and
// Without matches nothing.
type Query struct {
	with    []Kind
	without []Kind
}

// NewQuery builds a query from terms.
func NewQuery(terms ...Term) Query {
	var q Query
	for _, t := range terms {
		switch term := t.(type) {
		case withTerm:
			q.with = append(q.with, term.kinds...)
		case withoutTerm:
			q.without = append(q.without, term.kinds...)
		}
	}
	return q
}

// shape builds a query from terms plus the component kinds being fetched.
func shape(terms []Term, fetched ...Kind) Query {
	q := NewQuery(terms...)
	q.with = append(q.with, fetched...)
	return q
}

// Match returns the entities satisfying q, in insertion order.
//
// The result is a snapshot owned by the caller. Zero matches is an empty
// slice, not an error. Unregistered kinds fail with ErrCodeUnknownKind.
func (w *World) Match(q Query) ([]Entity, error) {
	with := make([]storage, 0, len(q.with))
	for _, k := range q.with {
		col, ok := w.columns[k]
		if !ok {
			return nil, newUnknownKindError(k)
		}
		with = append(with, col)
	}
	without := make([]storage, 0, len(q.without))
	for _, k := range q.without {
		col, ok := w.columns[k]
		if !ok {
			return nil, newUnknownKindError(k)
		}
		without = append(without, col)
	}

	matched := make([]Entity, 0)
	for _, e := range w.entities {
		if matches(e, with, without) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func matches(e Entity, with, without []storage) bool {
	for _, col := range with {
		if !col.has(e) {
			return false
		}
	}
	for _, col := range without {
		if col.has(e) {
			return false
		}
	}
	return true
}

// Single returns the one entity matching q.
// Zero or multiple matches fail with ErrCodeCardinality.
func (w *World) Single(q Query) (Entity, error) {
	matched, err := w.Match(q)
	if err != nil {
		return 0, err
	}
	if len(matched) != 1 {
		return 0, newCardinalityError(len(matched))
	}
	return matched[0], nil
}

// Each calls fn for every entity carrying A and satisfying terms.
// fn receives a mutable pointer to the entity's A.
func Each[A Component](w *World, fn func(Entity, *A), terms ...Term) error {
	matched, err := w.Match(shape(terms, kindOf[A]()))
	if err != nil {
		return err
	}
	for _, e := range matched {
		a, _ := GetMut[A](w, e)
		fn(e, a)
	}
	return nil
}

// Each2 calls fn for every entity carrying A and B and satisfying terms.
func Each2[A, B Component](w *World, fn func(Entity, *A, *B), terms ...Term) error {
	matched, err := w.Match(shape(terms, kindOf[A](), kindOf[B]()))
	if err != nil {
		return err
	}
	for _, e := range matched {
		a, _ := GetMut[A](w, e)
		b, _ := GetMut[B](w, e)
		fn(e, a, b)
	}
	return nil
}

// Each3 calls fn for every entity carrying A, B and C and satisfying terms.
func Each3[A, B, C Component](w *World, fn func(Entity, *A, *B, *C), terms ...Term) error {
	matched, err := w.Match(shape(terms, kindOf[A](), kindOf[B](), kindOf[C]()))
	if err != nil {
		return err
	}
	for _, e := range matched {
		a, _ := GetMut[A](w, e)
		b, _ := GetMut[B](w, e)
		c, _ := GetMut[C](w, e)
		fn(e, a, b, c)
	}
	return nil
}

// Row is a read-back copy of one component.
type Row[A Component] struct {
	Entity Entity
	Value  A
}

// Row2 is a read-back copy of a component pair.
type Row2[A, B Component] struct {
	Entity Entity
	First  A
	Second B
}

// Row3 is a read-back copy of a component triple.
type Row3[A, B, C Component] struct {
	Entity Entity
	First  A
	Second B
	Third  C
}

// Collect copies every A matching terms, in insertion order.
func Collect[A Component](w *World, terms ...Term) ([]Row[A], error) {
	rows := make([]Row[A], 0)
	err := Each(w, func(e Entity, a *A) {
		rows = append(rows, Row[A]{Entity: e, Value: *a})
	}, terms...)
	return rows, err
}

// Collect2 copies every (A, B) pair matching terms, in insertion order.
func Collect2[A, B Component](w *World, terms ...Term) ([]Row2[A, B], error) {
	rows := make([]Row2[A, B], 0)
	err := Each2(w, func(e Entity, a *A, b *B) {
		rows = append(rows, Row2[A, B]{Entity: e, First: *a, Second: *b})
	}, terms...)
	return rows, err
}

// Collect3 copies every (A, B, C) triple matching terms, in insertion order.
func Collect3[A, B, C Component](w *World, terms ...Term) ([]Row3[A, B, C], error) {
	rows := make([]Row3[A, B, C], 0)
	err := Each3(w, func(e Entity, a *A, b *B, c *C) {
		rows = append(rows, Row3[A, B, C]{Entity: e, First: *a, Second: *b, Third: *c})
	}, terms...)
	return rows, err
}

// Single1 returns the one entity carrying A and satisfying terms, with a
// mutable pointer to its A.
func Single1[A Component](w *World, terms ...Term) (Entity, *A, error) {
	e, err := w.Single(shape(terms, kindOf[A]()))
	if err != nil {
		return 0, nil, err
	}
	a, _ := GetMut[A](w, e)
	return e, a, nil
}
