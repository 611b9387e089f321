// Package model defines the field descriptor model consumed by the schema
// synthesizer, renderers and wizard. A FieldDescriptor mirrors one row of the
// asset_type_fields or form_fields tables: struct tags use the persisted
// snake_case column names so records decode straight from the backend client
// or from YAML catalog fixtures. Descriptors are immutable for the duration of
// a render/submit cycle; helpers in this package return copies instead of
// mutating their inputs.
//
// Runtime-shaped JSON columns (options, validation_rules) stay raw on the
// descriptor and are resolved once through NormalizeOptions, which yields an
// OptionList tagged with the shape that was found.
package model
