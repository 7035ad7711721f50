// Package testutil holds deterministic stand-ins used by tests across
// packages.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator returns predetermined run IDs in order.
//
// It satisfies journal.IDGenerator. Safe for concurrent use.
type SequenceGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewSequenceGenerator creates a generator that returns ids in order.
//
//	gen := NewSequenceGenerator("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // panic: all ids exhausted
func NewSequenceGenerator(ids ...string) *SequenceGenerator {
	return &SequenceGenerator{ids: ids}
}

// Generate returns the next ID. Panics when the list is exhausted so a test
// that records more runs than expected fails loudly.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// CountingGenerator returns "<prefix>-1", "<prefix>-2", ... without limit.
type CountingGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCountingGenerator creates a counting generator. An empty prefix
// defaults to "run".
func NewCountingGenerator(prefix string) *CountingGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &CountingGenerator{prefix: prefix}
}

// Generate returns the next numbered ID.
func (g *CountingGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
