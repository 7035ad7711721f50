// Package ecs implements the stratasim simulation kernel.
//
// A World holds entities (opaque identities) and components (typed values
// attached to entities). Systems are ordered passes over queried subsets of
// the world. A Schedule runs its systems exactly once, in declaration order.
//
// ARCHITECTURE:
//
// Component Store:
// Every component kind has its own sparse-set column (map from entity to a
// dense index, plus dense value and owner slices). A kind must be registered
// with Register before it can be inserted or queried.
//
// Queries:
// A query is a conjunction of With and Without terms. Matching walks the
// world's entity list in insertion order and keeps the entities present in
// every With column and absent from every Without column. The match is a
// snapshot: mutating component values through GetMut never changes it.
//
// Command Buffer:
// Structural changes made by a system (spawn, insert, remove) go through
// Commands. The scheduler applies them, in issue order, right after the
// system returns and before the next one starts.
//
// CRITICAL PATTERNS:
//
// Deterministic Iteration:
// Entity ids come from a monotonic counter and queries iterate in insertion
// order. No map iteration order ever leaks into results.
//
// Single Writer:
// A world is used from one goroutine. The kernel starts no goroutines and
// takes no locks.
//
// Hard Errors Only For Wiring Bugs:
// Unknown kinds, cardinality violations and misuse of a finished schedule
// are returned as *KernelError. Bad entity data is a pipeline concern and is
// recorded as component state instead.
package ecs
