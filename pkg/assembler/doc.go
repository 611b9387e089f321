// Package assembler composes field sets into ordered, renderable form stages.
//
// Core fields (owned by an asset type) and custom fields (owned by a form
// definition) are never interleaved: Assemble always yields the core stage
// first and the custom stage second, each sorted by SortOrder with hidden and
// system fields removed. Keys that appear in both stages are reported as
// configuration issues but both fields still render.
package assembler
