// Package orchestrator wires the catalog → transformer → assembler → renderer
// pipeline, providing dependency injection friendly helpers for consumers
// that prefer a single entry point.
package orchestrator
