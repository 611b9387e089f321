// Package schema synthesises validation contracts from field descriptors.
//
// Synthesize walks an ordered descriptor list and picks a rule per field from
// a dispatch table keyed by model.FieldType. Types without an entry fall into
// the string bucket, so a field type added by designers before this package
// learns about it still renders and validates as text instead of blocking the
// form. The resulting Validator is immutable and deterministic; validating a
// FormValue returns coerced values plus a per-field error map whose messages
// are ready for inline display ("Serial Number is required").
//
// ToOpenAPI exports the same contract as an OpenAPI object schema for
// consumers that validate payloads outside of Go.
package schema
