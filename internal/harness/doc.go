// Package harness runs stratasim scenarios and checks their output.
//
// A scenario seeds one pipeline, runs it once in a fresh world and reads the
// results back as canonical rows. Assertions are evaluated against those
// rows, and the canonical output can be compared with a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML (or CUE) files with the following structure:
//
//	name: assignment_demo
//	description: "Closest feasible inspector wins each job"
//	pipeline: assignment
//	inspectors:
//	  - { id: insp-1, lat: 49.2827, lng: -123.1207, skill_level: 5 }
//	jobs:
//	  - { id: job-A, lat: 49.2606, lng: -123.2460, priority: 2, required_skill_level: 2 }
//	assertions:
//	  - type: assigned
//	    job: job-A
//	    inspector: insp-1
//
// CUE files are unified with the embedded #Scenario definition before
// decoding, so both formats reject unknown fields.
//
// # Assertion Types
//
//   - status: a document ended with the given processing status
//   - entities: a document extracted exactly the given entities, in order
//   - band: an element was classified into the given band
//   - assigned: a job was assigned to the given inspector
//   - unassigned: a job has no assignment
//   - count: the read-back has exactly N rows
//
// # Deterministic Testing
//
// Inspection noise comes from a PCG generator seeded with scenario.seed, or
// from scenario.noise when set. Rows keep entity insertion order and the
// output is canonical JSON, so the same scenario always yields the same
// digest.
package harness
